//go:build !linux

package sandbox

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// posixSandbox applies resource limits on platforms without cgroups (e.g.
// macOS) by wrapping the target command in a shell that sets limits with
// ulimit before exec'ing it in place. Go's os/exec has no pre-exec hook to
// call setrlimit in the child before it execs the real binary — ulimit in
// an intermediate /bin/sh is the portable substitute, and it only affects
// the child's own limits since exec replaces the shell process image.
type posixSandbox struct {
	cfg    Config
	tmpDir string
}

func newPlatform(cfg Config) (Sandbox, error) {
	dir, err := os.MkdirTemp("", "ser-sandbox-*")
	if err != nil {
		return nil, fmt.Errorf("create sandbox tmpdir: %w", err)
	}
	return &posixSandbox{cfg: cfg, tmpDir: dir}, nil
}

func (s *posixSandbox) Exec(ctx context.Context, name string, args []string) (*exec.Cmd, error) {
	prefix := s.ulimitPrefix()
	if prefix == "" {
		cmd := exec.CommandContext(ctx, name, args...)
		cmd.Dir = s.tmpDir
		return cmd, nil
	}

	parts := make([]string, 0, len(args)+1)
	parts = append(parts, shellQuote(name))
	for _, a := range args {
		parts = append(parts, shellQuote(a))
	}
	script := prefix + "exec " + strings.Join(parts, " ")
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", script)
	cmd.Dir = s.tmpDir
	return cmd, nil
}

// PostStart is a no-op here: the limits are already in effect by the time
// the process starts, set by the ulimit prefix inside the shell that
// exec'd it, unlike linuxSandbox's after-the-fact prlimit call.
func (s *posixSandbox) PostStart(pid int) error { return nil }

func (s *posixSandbox) scratchDir() string { return s.tmpDir }

func (s *posixSandbox) Destroy() error {
	return os.RemoveAll(s.tmpDir)
}

// ulimitPrefix builds the "ulimit ...; " shell prefix for the limits cfg
// asks for, empty if none are set.
func (s *posixSandbox) ulimitPrefix() string {
	var b strings.Builder
	if s.cfg.CPULimit > 0 {
		fmt.Fprintf(&b, "ulimit -t %d; ", int(s.cfg.CPULimit.Seconds()))
	}
	if s.cfg.MemLimit > 0 {
		fmt.Fprintf(&b, "ulimit -v %d; ", s.cfg.MemLimit/1024) // ulimit -v is in KiB
	}
	if s.cfg.MaxFDs > 0 {
		fmt.Fprintf(&b, "ulimit -n %d; ", s.cfg.MaxFDs)
	}
	return b.String()
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
