// Command tripctl is the operator CLI for TripMate: it applies database
// migrations, seeds users, mints development tokens and runs ad-hoc place
// searches against the configured Kakao key.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
)

// cliEnv is the subset of the server configuration tripctl reads. Nothing is
// required up front; each command checks what it needs.
type cliEnv struct {
	DatabaseURL  string        `env:"DATABASE_URL"`
	JWTSecret    string        `env:"JWT_SECRET"`
	KakaoAPIKey  string        `env:"KAKAO_API_KEY"`
	KakaoBaseURL string        `env:"KAKAO_BASE_URL"`
	PlaceTimeout time.Duration `env:"PLACE_TIMEOUT" envDefault:"5s"`
}

func loadEnv() (cliEnv, error) {
	cfg, err := env.ParseAs[cliEnv]()
	if err != nil {
		return cliEnv{}, fmt.Errorf("tripctl: %w", err)
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tripctl",
		Short:         "Operate a TripMate deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(), newUserCmd(), newTokenCmd(), newPlaceCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
