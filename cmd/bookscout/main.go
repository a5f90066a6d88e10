package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "bookscout",
		Short: "Book metadata pipeline for prerequisite reading guides",
	}
	root.AddCommand(serveCMD(), searchCMD(), verifyCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
