// Command pyvm is the lex/parse/compile/run/dump CLI front end for the
// interpreter.
package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-pyvm/cmd/pyvm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
