// Command pyx is a cobra-based CLI front end over the pyx core
// packages (pkgs/parser, pkgs/walk, pkgs/transform, pkgs/safety),
// giving the library a runnable host the way the teacher's cmd/devcmd
// and cmd/devcmd-parser give devcmd one (spec §1's "usable from any
// host runtime" framing; SPEC_FULL §4 supplemental feature). No
// config file, no authentication, no telemetry: flags in, a result or
// a rendered PyxError out.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aledsdavies/pyx/pkgs/ast"
	"github.com/aledsdavies/pyx/pkgs/parser"
	"github.com/aledsdavies/pyx/pkgs/pyxerrors"
	"github.com/aledsdavies/pyx/pkgs/safety"
	"github.com/aledsdavies/pyx/pkgs/transform"
	"github.com/aledsdavies/pyx/pkgs/walk"
)

// Exit codes, following the teacher's cmd/devcmd constants.
const (
	exitSuccess = 0
	exitUsage   = 1
	exitIOError = 2
	exitParse   = 3
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}
}

func newRootCmd() *cobra.Command {
	var fromStdin bool
	var file string

	root := &cobra.Command{
		Use:           "pyx",
		Short:         "Python 3.12 static-analysis toolkit",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&fromStdin, "from-stdin", true, "read source from stdin")
	root.PersistentFlags().StringVar(&file, "file", "", "read source from a file instead of stdin")

	readSource := func() (string, error) {
		if file != "" {
			b, err := os.ReadFile(file)
			return string(b), err
		}
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}

	root.AddCommand(newParseCmd(readSource))
	root.AddCommand(newWalkCmd(readSource))
	root.AddCommand(newAnalyzeCmd(readSource))
	root.AddCommand(newTransformCmd(readSource))
	return root
}

func newParseCmd(readSource func() (string, error)) *cobra.Command {
	var expression bool
	var format string
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse source into an AST and print its JSON shape",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource()
			if err != nil {
				return fmt.Errorf("reading source: %w", err)
			}
			var node ast.Node
			if expression {
				node, err = parser.ParseExpression(src)
			} else {
				node, err = parser.ParseModule(src)
			}
			if err != nil {
				printParseError(err)
				os.Exit(exitParse)
			}
			return emitNode(cmd.OutOrStdout(), node, format)
		},
	}
	cmd.Flags().BoolVar(&expression, "expression", false, "parse a single expression instead of a module")
	cmd.Flags().StringVar(&format, "format", "json", "output format: json")
	return cmd
}

func newWalkCmd(readSource func() (string, error)) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "walk",
		Short: "Parse source and list every node, optionally filtered by kind",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource()
			if err != nil {
				return fmt.Errorf("reading source: %w", err)
			}
			mod, err := parser.ParseModule(src)
			if err != nil {
				printParseError(err)
				os.Exit(exitParse)
			}
			var nodes []ast.Node
			if kind != "" {
				nodes = walk.NodesOfKind(mod, kind)
			} else {
				nodes = walk.Walk(mod)
			}
			tags := make([]string, len(nodes))
			for i, n := range nodes {
				tags[i] = n.Type()
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(tags)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "only list nodes whose type matches this tag")
	return cmd
}

func newAnalyzeCmd(readSource func() (string, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the safety analyzer and print a SafetyReport as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource()
			if err != nil {
				return fmt.Errorf("reading source: %w", err)
			}
			report := safety.Analyze(src)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
			if !report.Safe {
				os.Exit(exitParse)
			}
			return nil
		},
	}
	return cmd
}

var transformPasses = map[string]func(string) string{
	"wrap-async":           transform.WrapAsync,
	"wrap-top-level-await": transform.WrapTopLevelAwait,
	"rewrite-imports":      transform.RewriteImports,
	"capture-print":        transform.CapturePrint,
	"extract-return-value": transform.ExtractReturnValue,
	"mock-input":           transform.MockInput,
	"wrap-exceptions":      transform.WrapExceptions,
	"compose":              transform.Compose,
}

func newTransformCmd(readSource func() (string, error)) *cobra.Command {
	var pass string
	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Run one text-level transformation pass over source",
		RunE: func(cmd *cobra.Command, args []string) error {
			fn, ok := transformPasses[pass]
			if !ok {
				return fmt.Errorf("unknown pass %q (want one of: wrap-async, wrap-top-level-await, rewrite-imports, capture-print, extract-return-value, mock-input, wrap-exceptions, compose)", pass)
			}
			src, err := readSource()
			if err != nil {
				return fmt.Errorf("reading source: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), fn(src))
			return nil
		},
	}
	cmd.Flags().StringVar(&pass, "pass", "compose", "which pass to run")
	return cmd
}

func emitNode(w io.Writer, node ast.Node, format string) error {
	if format != "json" {
		return fmt.Errorf("unsupported format %q", format)
	}
	m, err := ast.NodeToJSON(node)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

func printParseError(err error) {
	if pe, ok := err.(*pyxerrors.PyxError); ok {
		fmt.Fprintln(os.Stderr, pe.Error())
		return
	}
	fmt.Fprintln(os.Stderr, err)
}
