package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/gbsb/tripmate/internal/domain"
	"github.com/gbsb/tripmate/internal/repo"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage mirrored user accounts",
	}

	var id, email, nickname string
	upsert := &cobra.Command{
		Use:   "upsert",
		Short: "Create a user or refresh its e-mail and nickname",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u := domain.User{Email: email, Nickname: nickname}
			if id != "" {
				parsed, err := uuid.Parse(id)
				if err != nil {
					return fmt.Errorf("--id: %w", err)
				}
				u.ID = parsed
			}

			cfg, err := loadEnv()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is not set")
			}
			pool, err := pgxpool.New(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer pool.Close()

			saved, err := repo.NewStore(pool).Repos().Users.Upsert(cmd.Context(), u)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(saved, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	upsert.Flags().StringVar(&id, "id", "", "user id (generated when empty)")
	upsert.Flags().StringVar(&email, "email", "", "e-mail address")
	upsert.Flags().StringVar(&nickname, "nickname", "", "display name")
	_ = upsert.MarkFlagRequired("email")
	_ = upsert.MarkFlagRequired("nickname")

	cmd.AddCommand(upsert)
	return cmd
}
