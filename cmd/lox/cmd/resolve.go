package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/loxlang/golox/internal/diagnostics"
	"github.com/loxlang/golox/internal/lox"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <file>",
	Short: "Run static resolution and print the scope-distance table",
	Long: `Parse a Lox file and run the resolver over it, printing the scope
distance of every expression node it bound to a local scope, ordered by node
ID. Nodes left unresolved (globals) are not listed.

This is a debugging aid with no counterpart in the language itself; it
exists to make the resolver's side-table observable from the command line.`,
	Args: cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", args[0], err)
		}

		sink := diagnostics.NewSink(os.Stderr, !noColor)
		pipeline := lox.New(os.Stdout)
		stmts := pipeline.ParseProgram(string(content), sink)
		if sink.HadError() {
			os.Exit(sink.ExitCode())
		}

		locals := pipeline.Resolve(stmts, sink)
		ids := make([]int, 0, len(locals))
		for id := range locals {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			fmt.Printf("expr#%d -> %d\n", id, locals[id])
		}

		if code := sink.ExitCode(); code != 0 {
			os.Exit(code)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
