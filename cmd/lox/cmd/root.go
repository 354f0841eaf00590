package cmd

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// Version is set by build flags, following CWBudde-go-dws's dwscript command
// tree convention for a plain, linker-settable version string.
var Version = "0.1.0-dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:     "lox",
	Short:   "A tree-walking interpreter for the Lox language",
	Version: Version,
	// Invoking with no subcommand and no file argument starts the REPL;
	// with exactly one file argument it behaves like `lox run FILE`.
	Args: cobra.MaximumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		if len(args) == 1 {
			return runScript(args[0])
		}
		runREPL()
		return nil
	},
}

// Execute runs the root command, returning any error cobra itself reports
// (bad flags, unknown subcommands); exit-code mapping for lexical/syntax/
// runtime errors happens inside each subcommand via os.Exit using the
// standard 0/65/70 convention.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", !isatty.IsTerminal(os.Stderr.Fd()),
		"disable colored diagnostic output")
}
