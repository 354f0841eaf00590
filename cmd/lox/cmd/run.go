package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/loxlang/golox/internal/diagnostics"
	"github.com/loxlang/golox/internal/lox"
	"github.com/spf13/cobra"
)

var evalExpr string

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a Lox program",
	Long: `Execute a Lox program from a file or inline expression.

Examples:
  lox run script.lox
  lox run -e "print 1 + 2;"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		if evalExpr != "" {
			return runSource(evalExpr, "<eval>")
		}
		if len(args) != 1 {
			return fmt.Errorf("either provide a file path or use -e/--eval")
		}
		return runScript(args[0])
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
}

func runScript(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return runSource(string(content), path)
}

func runSource(source, _ string) error {
	sink := diagnostics.NewSink(os.Stderr, !noColor)
	pipeline := lox.New(os.Stdout)
	pipeline.Run(source, sink)

	if code := sink.ExitCode(); code != 0 {
		os.Exit(code)
	}
	return nil
}

// runREPL implements the bare invocation mode: one persistent Pipeline
// across lines, so top-level var/fun/class declarations accumulate, the
// way archevan-glox's runPrompt does; the loop ends at end of input (Ctrl-D).
// A fresh Sink per line means a typo on one line never blocks a correct line
// afterward.
func runREPL() {
	fmt.Println("Lox", Version, "— press Ctrl-D to exit")

	pipeline := lox.New(os.Stdout)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		sink := diagnostics.NewSink(os.Stderr, !noColor)
		pipeline.REPL(line, sink)
	}
}
