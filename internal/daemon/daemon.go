// Package daemon runs the Unix-socket check server (cmd/ser serve):
// it wires a Checker against the configured oracle/SMT subprocess adapters,
// starts package transport's HTTP+JSON server, and shuts down cleanly on
// SIGINT/SIGTERM.
package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sercheck/ser/internal/config"
	"github.com/sercheck/ser/internal/logger"
	"github.com/sercheck/ser/internal/oracle"
	"github.com/sercheck/ser/internal/orchestrator"
	"github.com/sercheck/ser/internal/smt"
	"github.com/sercheck/ser/internal/transport"
)

func Run(cfg *config.Config) error {
	checker := &orchestrator.Checker{
		Oracle: oracle.NewSubprocess(oracle.Config{Command: cfg.OracleCommand, Args: cfg.OracleArgs}),
		SMT:    smt.NewSubprocess(smt.Config{Command: cfg.SMTCommand, Args: cfg.SMTArgs}),
		Bound:  cfg.Bound,
	}

	srv := transport.NewServer(checker, cfg.SocketPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("transport listening", "socket", cfg.SocketPath)
		errCh <- srv.ListenAndServe(ctx)
	}()

	logger.Info("ser daemon started", "oracle", cfg.OracleCommand, "smt", cfg.SMTCommand)

	select {
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
		cancel()
		time.Sleep(200 * time.Millisecond)
	case err := <-errCh:
		if err != nil && err != context.Canceled {
			cancel()
			return fmt.Errorf("daemon error: %w", err)
		}
	}

	return nil
}
