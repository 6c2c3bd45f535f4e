package main

import (
	"os"

	"github.com/mattn/go-isatty"

	"github.com/sercheck/ser/internal/orchestrator"
)

// colorEnabled reports whether stdout is a terminal that can render ANSI
// color codes. Piped or redirected output (scripts, CI logs, `| less`)
// gets plain text instead.
var colorEnabled = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

const (
	ansiGreen  = "\x1b[32m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

// colorVerdict renders a verdict's display string wrapped in its status
// color when stdout supports it, plain otherwise.
func colorVerdict(v orchestrator.Verdict) string {
	s := v.String()
	if !colorEnabled {
		return s
	}
	switch v {
	case orchestrator.Serializable:
		return ansiGreen + s + ansiReset
	case orchestrator.NotSerializable:
		return ansiRed + s + ansiReset
	default:
		return ansiYellow + s + ansiReset
	}
}

func colorVerdictString(s string) string {
	if !colorEnabled {
		return s
	}
	switch s {
	case "serializable":
		return ansiGreen + s + ansiReset
	case "not serializable":
		return ansiRed + s + ansiReset
	default:
		return ansiYellow + s + ansiReset
	}
}
