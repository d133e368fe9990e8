package cmd

import (
	"fmt"
	"os"

	cerrors "github.com/cwbudde/go-pyvm/internal/errors"
	"github.com/cwbudde/go-pyvm/internal/lexer"
	"github.com/cwbudde/go-pyvm/internal/parser"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a source file and print its AST",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(_ *cobra.Command, args []string) error {
	input, filename, err := readSource(args)
	if err != nil {
		return err
	}

	l := lexer.New(input)
	p := parser.New(l)
	program := p.ParseProgram()

	if errs := p.Errors(); len(errs) > 0 {
		compilerErrs := cerrors.FromPositions(p.ErrorPositions(), errs, input, filename)
		fmt.Fprint(os.Stderr, cerrors.FormatErrors(compilerErrs, false))
		return fmt.Errorf("parsing failed with %d error(s)", len(errs))
	}

	for _, stmt := range program.Statements {
		fmt.Println(stmt.String())
	}
	return nil
}
