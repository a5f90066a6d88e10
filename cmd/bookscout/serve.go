package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/csheth/bookscout/internal/config"
	"github.com/csheth/bookscout/internal/llm"
	"github.com/csheth/bookscout/internal/server"
)

func serveCMD() *cobra.Command {
	var cfgPath string
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Address = addr
			}

			selector, err := llm.NewFromEnv(llm.Config{
				Model:    cfg.LLM.Model,
				Endpoint: cfg.LLM.Endpoint,
				APIKey:   cfg.LLM.APIKey,
			})
			if err != nil {
				fmt.Fprintln(os.Stderr, "AI selection disabled:", err)
				selector = nil
			}

			srv := server.New(buildNDLClient(cfg, true), buildOpenBDClient(cfg), selector, nil)
			return srv.Run(cfg.Server.Address)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default searches . and ~/.config/bookscout)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
