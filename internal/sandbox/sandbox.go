// Package sandbox bounds the resource usage of the external subprocesses
// the checker invokes: the reachability oracle (package oracle) and the
// SMT solver (package smt). Neither binary is untrusted code — the
// operator configured both — but a pathological or very large program can
// still drive either one into unbounded memory or CPU use, and a hung
// invocation should not be left to run forever. A Sandbox wraps one
// invocation: it builds the exec.Cmd, applies whatever resource limits the
// platform supports once the process has started, and cleans up its
// scratch directory afterward.
package sandbox

import (
	"context"
	"os/exec"
	"time"
)

// Sandbox wraps one subprocess invocation with resource-limit enforcement.
type Sandbox interface {
	Exec(ctx context.Context, name string, args []string) (*exec.Cmd, error)
	PostStart(pid int) error // apply limits once the process has a pid
	Destroy() error
}

// Config holds the resource ceilings for one sandboxed invocation. A zero
// value for any field means "don't limit it" — Config{} still gets a
// scratch directory and cleanup, just no enforcement.
type Config struct {
	CPULimit time.Duration // RLIMIT_CPU equivalent (0 = unbounded)
	MemLimit uint64        // bytes; RLIMIT_AS / cgroup memory.max (0 = unbounded)
	MaxFDs   uint32        // RLIMIT_NOFILE equivalent (0 = unbounded)
}

// New creates a platform-appropriate sandbox for cfg. Unlike a security
// sandbox guarding against a hostile binary, there is no "enforcement
// failure" case worth treating as fatal here: if a platform can't enforce
// one of the limits, the invocation still runs, just unbounded on that
// axis, and the reason is logged.
func New(cfg Config) (Sandbox, error) {
	return newPlatform(cfg)
}
