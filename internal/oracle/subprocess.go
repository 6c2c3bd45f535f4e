package oracle

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sercheck/ser/internal/sandbox"
)

// Subprocess is the real Adapter: it writes q's net and query text to a
// per-invocation scratch directory, runs the configured binary against
// them, and parses its stdout contract. The scratch directory is removed
// in a defer regardless of outcome — scoped acquisition with guaranteed
// cleanup, the same pattern the rest of this repository uses for any
// resource that must not outlive one Check call.
type Subprocess struct {
	cfg Config
}

func NewSubprocess(cfg Config) *Subprocess {
	if cfg.Command == "" {
		cfg = DefaultConfig()
	}
	return &Subprocess{cfg: cfg}
}

func (s *Subprocess) Health(ctx context.Context) error {
	if _, err := exec.LookPath(s.cfg.Command); err != nil {
		return &ErrNotConfigured{Command: s.cfg.Command, Cause: err}
	}
	return nil
}

func (s *Subprocess) Check(ctx context.Context, q Query) (Result, error) {
	dir, err := os.MkdirTemp("", "ser-oracle-")
	if err != nil {
		return Result{}, fmt.Errorf("oracle scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	netPath := filepath.Join(dir, "net.txt")
	queryPath := filepath.Join(dir, "query.xml")
	if err := os.WriteFile(netPath, []byte(q.NetText), 0o644); err != nil {
		return Result{}, fmt.Errorf("write net file: %w", err)
	}
	if err := os.WriteFile(queryPath, []byte(q.QueryText), 0o644); err != nil {
		return Result{}, fmt.Errorf("write query file: %w", err)
	}

	args := append(append([]string{}, s.cfg.Args...), netPath, queryPath)
	cmd, sb, err := buildCmd(ctx, s.cfg.Sandbox, s.cfg.Command, args)
	if err != nil {
		return Result{}, fmt.Errorf("build oracle command: %w", err)
	}
	if sb != nil {
		defer sb.Destroy()
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Start()
	if runErr == nil {
		if sb != nil {
			if err := sb.PostStart(cmd.Process.Pid); err != nil {
				return Result{}, fmt.Errorf("apply oracle sandbox limits: %w", err)
			}
		}
		runErr = cmd.Wait()
	}
	if runErr != nil {
		if ctx.Err() != nil {
			return Result{Status: Timeout}, nil
		}
		return Result{}, fmt.Errorf("run oracle: %w (stderr: %s)", runErr, stderr.String())
	}

	return parseStdout(stdout.Bytes())
}

// buildCmd constructs the exec.Cmd for one oracle invocation, routing it
// through internal/sandbox when cfg is non-nil.
func buildCmd(ctx context.Context, cfg *sandbox.Config, name string, args []string) (*exec.Cmd, sandbox.Sandbox, error) {
	if cfg == nil {
		return exec.CommandContext(ctx, name, args...), nil, nil
	}
	sb, err := sandbox.New(*cfg)
	if err != nil {
		return nil, nil, err
	}
	cmd, err := sb.Exec(ctx, name, args)
	if err != nil {
		sb.Destroy()
		return nil, nil, err
	}
	return cmd, sb, nil
}

// parseStdout reads the oracle's line-oriented stdout contract: the
// first line is one of "reachable", "unreachable", "unknown"; a
// "reachable" verdict is followed by zero or more "proof: ..." lines
// which are joined (newline-separated) into Result.Proof for package
// proof to parse into a Presburger formula.
func parseStdout(out []byte) (Result, error) {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 1<<16), 1<<20)

	var res Result
	var proofLines []string
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if first {
			first = false
			switch line {
			case "reachable":
				res.Status = Reachable
			case "unreachable":
				res.Status = Unreachable
			default:
				res.Status = Unknown
			}
			continue
		}
		if rest, ok := strings.CutPrefix(line, "proof:"); ok {
			proofLines = append(proofLines, strings.TrimSpace(rest))
		}
	}
	if first {
		return Result{}, fmt.Errorf("oracle produced no output")
	}
	res.Proof = strings.Join(proofLines, "\n")
	return res, nil
}
