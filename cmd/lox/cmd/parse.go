package cmd

import (
	"fmt"
	"os"

	"github.com/loxlang/golox/internal/diagnostics"
	"github.com/loxlang/golox/internal/lox"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Print the parsed AST for a Lox file",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", args[0], err)
		}

		sink := diagnostics.NewSink(os.Stderr, !noColor)
		pipeline := lox.New(os.Stdout)
		for _, stmt := range pipeline.ParseProgram(string(content), sink) {
			fmt.Println(stmt.String())
		}

		if code := sink.ExitCode(); code != 0 {
			os.Exit(code)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
