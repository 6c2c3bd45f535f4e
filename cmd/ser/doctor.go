package main

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/sercheck/ser/internal/oracle"
	"github.com/sercheck/ser/internal/smt"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check availability of the external oracle and SMT solver",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()

			fmt.Println("ser doctor")
			fmt.Println()

			fmt.Println("external binaries:")
			reportBinary("oracle", cfg.OracleCommand)
			reportBinary("smt", cfg.SMTCommand)
			fmt.Println()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			fmt.Println("adapter health:")
			oc := oracle.NewSubprocess(oracle.Config{Command: cfg.OracleCommand, Args: cfg.OracleArgs})
			reportHealth("oracle", oc.Health(ctx))
			sc := smt.NewSubprocess(smt.Config{Command: cfg.SMTCommand, Args: cfg.SMTArgs})
			reportHealth("smt", sc.Health(ctx))
			fmt.Println()

			fmt.Println("config:")
			fmt.Printf("  socket_path:     %s\n", cfg.SocketPath)
			fmt.Printf("  timeout_seconds: %d\n", cfg.TimeoutSeconds)
			fmt.Printf("  bound:           %d\n", cfg.Bound)
			fmt.Printf("  interner:        %s\n", cfg.Interner)

			return nil
		},
	}
}

func reportBinary(label, cmd string) {
	path, err := exec.LookPath(cmd)
	if err != nil {
		fmt.Printf("  %-8s %-16s not found\n", label, cmd)
		return
	}
	fmt.Printf("  %-8s %-16s %s\n", label, cmd, path)
}

func reportHealth(label string, err error) {
	if err != nil {
		fmt.Printf("  %-8s unhealthy: %v\n", label, err)
		return
	}
	fmt.Printf("  %-8s healthy\n", label)
}
