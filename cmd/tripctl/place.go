package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gbsb/tripmate/internal/place"
)

func newPlaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "place",
		Short: "Query the place search backend",
	}

	var page, size int
	search := &cobra.Command{
		Use:   "search [query]",
		Short: "Search places by keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadEnv()
			if err != nil {
				return err
			}
			client := place.NewClient(place.Options{
				BaseURL: cfg.KakaoBaseURL,
				APIKey:  cfg.KakaoAPIKey,
				Timeout: cfg.PlaceTimeout,
			})

			result, err := client.Search(cmd.Context(), args[0], page, size)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	search.Flags().IntVar(&page, "page", 1, "result page (1-45)")
	search.Flags().IntVar(&size, "size", place.MaxSize, "results per page (1-15)")

	cmd.AddCommand(search)
	return cmd
}
