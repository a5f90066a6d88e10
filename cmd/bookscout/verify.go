package main

import (
	"github.com/spf13/cobra"

	"github.com/csheth/bookscout/internal/config"
)

func verifyCMD() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "verify <isbn> [isbn...]",
		Short: "Look up ISBNs against the openBD verified-metadata source",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			client := buildOpenBDClient(cfg)
			verified := client.VerifyISBNs(cmd.Context(), args)

			for _, isbn := range args {
				book, ok := verified[isbn]
				if !ok {
					cmd.Printf("%s: unverified\n", isbn)
					continue
				}
				cmd.Printf("%s: %s / %s (%s, %s)", isbn, book.Title, book.Author, book.Publisher, book.Year)
				if book.Price != "" {
					cmd.Printf(" %s", book.Price)
				}
				cmd.Println()
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file")
	return cmd
}
