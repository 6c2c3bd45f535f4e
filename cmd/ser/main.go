// Command ser decides whether request histories admitted by a .ser program
// are all serializable, either as a one-shot check or against a running
// daemon (see cmd/ser serve).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sercheck/ser/internal/config"
	"github.com/sercheck/ser/internal/logger"
)

func main() {
	var logLevel string

	root := &cobra.Command{
		Use:   "ser [file]",
		Short: "ser — decide serializability of Network System programs",
		Long:  "Checks whether every interleaving of concurrent requests a .ser program admits is equivalent to some serial execution.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(logLevel, "")
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "trace, debug, info, warn, or error")

	root.AddCommand(
		checkCmd(),
		serveCmd(),
		doctorCmd(),
		fmtCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
