//go:build linux

package sandbox

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"

	"golang.org/x/sys/unix"
)

type linuxSandbox struct {
	cfg    Config
	tmpDir string
	cgroup *cgroupManager
}

// newPlatform creates a scratch directory and, when cfg.MemLimit is set,
// a best-effort cgroup v2 sub-cgroup to enforce it (prlimit's RLIMIT_AS
// only bounds virtual address space, not RSS, and doesn't cover a
// process's children). Failure to create the cgroup degrades to
// prlimit-only enforcement rather than failing the invocation.
func newPlatform(cfg Config) (Sandbox, error) {
	dir, err := os.MkdirTemp("", "ser-sandbox-*")
	if err != nil {
		return nil, fmt.Errorf("create sandbox tmpdir: %w", err)
	}
	cg, err := newCgroupManager(filepath.Base(dir), cfg.MemLimit, 0)
	if err != nil {
		log.Printf("sandbox: cgroup setup failed, falling back to prlimit only: %v", err)
		cg = nil
	}
	return &linuxSandbox{cfg: cfg, tmpDir: dir, cgroup: cg}, nil
}

func (s *linuxSandbox) Exec(ctx context.Context, name string, args []string) (*exec.Cmd, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = s.tmpDir
	return cmd, nil
}

// PostStart moves the process into the cgroup (if any) and applies
// rlimits via prlimit. Both are best-effort: a failure here is logged,
// not returned, since a subprocess that's already running shouldn't be
// killed just because its limits couldn't be tightened further.
func (s *linuxSandbox) PostStart(pid int) error {
	if s.cgroup != nil {
		if err := s.cgroup.AddPID(pid); err != nil {
			log.Printf("sandbox: add pid %d to cgroup: %v", pid, err)
		}
	}
	for _, rl := range s.rlimits() {
		lim := unix.Rlimit{Cur: rl.value, Max: rl.value}
		if err := unix.Prlimit(pid, rl.resource, &lim, nil); err != nil {
			log.Printf("sandbox: prlimit(%d, %d, %d) failed: %v", pid, rl.resource, rl.value, err)
		}
	}
	return nil
}

func (s *linuxSandbox) scratchDir() string { return s.tmpDir }

func (s *linuxSandbox) Destroy() error {
	if s.cgroup != nil {
		if err := s.cgroup.Destroy(); err != nil {
			log.Printf("sandbox: cgroup cleanup failed: %v", err)
		}
	}
	return os.RemoveAll(s.tmpDir)
}

// rlimits returns the resource limits cfg asks for — only the ones
// explicitly configured, no platform defaults.
func (s *linuxSandbox) rlimits() []rlimitPair {
	var pairs []rlimitPair
	if s.cfg.CPULimit > 0 {
		pairs = append(pairs, rlimitPair{unix.RLIMIT_CPU, uint64(s.cfg.CPULimit.Seconds())})
	}
	if s.cfg.MemLimit > 0 {
		pairs = append(pairs, rlimitPair{unix.RLIMIT_AS, s.cfg.MemLimit})
	}
	if s.cfg.MaxFDs > 0 {
		pairs = append(pairs, rlimitPair{unix.RLIMIT_NOFILE, uint64(s.cfg.MaxFDs)})
	}
	return pairs
}

type rlimitPair struct {
	resource int
	value    uint64
}
