package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/sercheck/ser/internal/logger"
	"github.com/sercheck/ser/internal/orchestrator"
	"github.com/sercheck/ser/internal/resultcache"
	"github.com/sercheck/ser/internal/transport"
)

func checkCmd() *cobra.Command {
	var remote bool
	var timeoutSeconds int
	var bound int
	var cachePath string
	var watch bool

	cmd := &cobra.Command{
		Use:   "check [file...]",
		Short: "Check one or more .ser programs for serializability",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run := func() (bool, error) {
				sources := make([]string, len(args))
				for i, path := range args {
					data, err := os.ReadFile(path)
					if err != nil {
						return false, fmt.Errorf("read %s: %w", path, err)
					}
					sources[i] = string(data)
				}

				ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSeconds)*time.Second)
				defer cancel()

				if remote {
					return checkRemote(ctx, args, sources)
				}
				return checkLocal(ctx, args, sources, bound, cachePath)
			}

			if !watch {
				failed, err := run()
				if err != nil {
					return err
				}
				if failed {
					os.Exit(1)
				}
				return nil
			}
			return watchAndCheck(args, run)
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "dial a running 'ser serve' daemon instead of checking in-process")
	cmd.Flags().IntVar(&timeoutSeconds, "timeout", 30, "overall timeout in seconds")
	cmd.Flags().IntVar(&bound, "bound", 0, "override the inferred value-domain bound (0 infers automatically)")
	cmd.Flags().StringVar(&cachePath, "cache", "", "path to a resultcache database memoizing decisions by source+bound (empty disables caching)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-check whenever any argument file changes on disk")
	return cmd
}

// watchAndCheck runs run once immediately, then again every time one of
// paths is written to, until interrupted. Unlike the one-shot path, a
// failing verdict here is just printed — the process keeps watching
// instead of exiting, since the whole point of --watch is to stay up
// across edits.
func watchAndCheck(paths []string, run func() (bool, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start file watcher: %w", err)
	}
	defer watcher.Close()

	for _, p := range paths {
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
	}

	runOnce := func() {
		failed, err := run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		if failed {
			fmt.Fprintln(os.Stderr, "(failing)")
		}
	}

	runOnce()
	logger.Info("watching for changes", "files", paths)

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fmt.Printf("\n--- %s changed, re-checking ---\n", ev.Name)
			runOnce()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)
		}
	}
}

func checkLocal(ctx context.Context, paths, sources []string, bound int, cachePath string) (bool, error) {
	checker := orchestrator.New()
	checker.Bound = bound

	var cache *resultcache.Store
	if cachePath != "" {
		c, err := resultcache.Open(cachePath)
		if err != nil {
			return false, fmt.Errorf("open result cache: %w", err)
		}
		defer c.Close()
		cache = c
	}

	failed := false
	for i, src := range sources {
		dec, err := checkOne(ctx, checker, cache, src, bound)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", paths[i], err)
			failed = true
			continue
		}
		printDecision(paths[i], dec)
		if dec.Verdict == orchestrator.NotSerializable {
			failed = true
		}
	}
	return failed, nil
}

func checkOne(ctx context.Context, checker *orchestrator.Checker, cache *resultcache.Store, src string, bound int) (orchestrator.Decision, error) {
	var key string
	if cache != nil {
		key = resultcache.Key(src, bound)
		if dec, ok, err := cache.Get(key); err == nil && ok {
			return dec, nil
		}
	}
	dec, err := checker.Check(ctx, src)
	if err != nil {
		return orchestrator.Decision{}, err
	}
	if cache != nil {
		if err := cache.Put(key, dec); err != nil {
			fmt.Fprintf(os.Stderr, "warning: cache write failed: %v\n", err)
		}
	}
	return dec, nil
}

func checkRemote(ctx context.Context, paths, sources []string) (bool, error) {
	cfg := loadConfig()
	client := transport.NewClient(cfg.SocketPath)

	results, err := client.CheckBatch(ctx, sources)
	if err != nil {
		return false, fmt.Errorf("check batch: %w", err)
	}

	failed := false
	for i, r := range results {
		if r.Error != "" {
			fmt.Fprintf(os.Stderr, "%s: %s\n", paths[i], r.Error)
			failed = true
			continue
		}
		fmt.Printf("%s: %s (%s)\n", paths[i], colorVerdictString(r.Verdict), humanize.Comma(r.ElapsedMS)+"ms")
		if r.Verdict == "not serializable" {
			failed = true
		}
	}
	return failed, nil
}

func printDecision(path string, dec orchestrator.Decision) {
	fmt.Printf("%s: %s (%s)\n", path, colorVerdict(dec.Verdict), dec.Elapsed)
	if dec.Certificate == nil {
		return
	}
	fmt.Printf("  witness:\n")
	keys := make([]string, 0, len(dec.Certificate.Witness))
	for k := range dec.Certificate.Witness {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("    %s = %s\n", k, humanize.Comma(int64(dec.Certificate.Witness[k])))
	}
	fmt.Printf("  obligation ok: %v\n", dec.Certificate.ObligationOK)
}
