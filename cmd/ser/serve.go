package main

import (
	"github.com/spf13/cobra"

	"github.com/sercheck/ser/internal/daemon"
)

func serveCmd() *cobra.Command {
	var socketPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the check daemon, serving POST /check and /check/batch over a Unix socket",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if socketPath != "" {
				cfg.SocketPath = socketPath
			}
			return daemon.Run(cfg)
		},
	}
	cmd.Flags().StringVar(&socketPath, "socket", "", "override the configured Unix socket path")
	return cmd
}
