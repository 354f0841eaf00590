// Command lox is the CLI front end: a tokenize/parse/resolve/run command
// tree plus a bare REPL, restructured into cobra subcommands the way
// CWBudde-go-dws's cmd/dwscript does.
package main

import (
	"os"

	"github.com/loxlang/golox/cmd/lox/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
