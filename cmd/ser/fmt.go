package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sercheck/ser/internal/ast"
	"github.com/sercheck/ser/internal/parse"
)

func fmtCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "fmt [file...]",
		Short: "Reformat .ser source files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				prog, err := parse.Program(string(data))
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}

				out := renderProgram(prog)
				if write {
					if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
						return fmt.Errorf("write %s: %w", path, err)
					}
					continue
				}
				fmt.Print(out)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the formatted source back to each file instead of stdout")
	return cmd
}

func renderProgram(prog *ast.Program) string {
	var out string
	for _, name := range prog.Order {
		out += fmt.Sprintf("request %s {\n", name)
		out += indentLines(parse.Format(prog.Requests[name]))
		out += "\n}\n\n"
	}
	return out
}

func indentLines(body string) string {
	out := "  "
	for _, r := range body {
		out += string(r)
		if r == '\n' {
			out += "  "
		}
	}
	return out
}
