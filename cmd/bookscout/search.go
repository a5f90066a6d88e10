package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/csheth/bookscout/internal/config"
	"github.com/csheth/bookscout/internal/ndl"
)

func searchCMD() *cobra.Command {
	var cfgPath string
	var keywords []string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "search [title]",
		Short: "Search the NDL catalog by exact title or by keywords",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			client := buildNDLClient(cfg, !noCache)
			ctx := cmd.Context()

			var books []ndl.Book
			switch {
			case len(keywords) > 0:
				books, err = client.SearchKeywords(ctx, keywords)
			case len(args) > 0:
				books, err = client.SearchTitle(ctx, strings.Join(args, " "))
			default:
				return fmt.Errorf("provide a title argument or --keyword flags")
			}
			if err != nil {
				return err
			}

			if len(books) == 0 {
				cmd.Println("no books found")
				return nil
			}
			for _, b := range books {
				printBook(cmd, b)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file")
	cmd.Flags().StringArrayVarP(&keywords, "keyword", "k", nil, "keyword query term (repeatable, ANDed)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the on-disk response cache")
	return cmd
}

func printBook(cmd *cobra.Command, b ndl.Book) {
	line := b.Title
	if len(b.Authors) > 0 {
		line += " / " + strings.Join(b.Authors, "、")
	}
	var details []string
	if b.Publisher != "" {
		details = append(details, b.Publisher)
	}
	if b.Year != "" {
		details = append(details, b.Year)
	}
	if b.ISBN != "" {
		details = append(details, "ISBN "+b.ISBN)
	}
	if len(details) > 0 {
		line += " (" + strings.Join(details, ", ") + ")"
	}
	cmd.Println(line)
}
