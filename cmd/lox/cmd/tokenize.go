package cmd

import (
	"fmt"
	"os"

	"github.com/loxlang/golox/internal/diagnostics"
	"github.com/loxlang/golox/internal/lox"
	"github.com/spf13/cobra"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize <file>",
	Short: "Print the token stream for a Lox file",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", args[0], err)
		}

		sink := diagnostics.NewSink(os.Stderr, !noColor)
		pipeline := lox.New(os.Stdout)
		for _, tok := range pipeline.Tokenize(string(content), sink) {
			fmt.Println(tok.String())
		}

		if code := sink.ExitCode(); code != 0 {
			os.Exit(code)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenizeCmd)
}
