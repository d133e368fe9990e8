package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-pyvm/internal/bytecode"
	"github.com/cwbudde/go-pyvm/internal/compiler"
	cerrors "github.com/cwbudde/go-pyvm/internal/errors"
	"github.com/cwbudde/go-pyvm/internal/lexer"
	"github.com/cwbudde/go-pyvm/internal/parser"
	"github.com/spf13/cobra"
)

var dumpQuery string

var dumpCmd = &cobra.Command{
	Use:   "dump [file]",
	Short: "Render a compiled program's bytecode as JSON for inspection",
	Long: `Compile a source file and render its Code object (instructions,
constant pool, except table, recursively for nested function/class bodies)
as JSON.

With --query, evaluate a gjson path against that document and print just
the matched value instead of the whole document.`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().StringVar(&dumpQuery, "query", "", "gjson path to extract from the dumped document")
}

func runDump(_ *cobra.Command, args []string) error {
	filename := args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	input := string(content)
	l := lexer.New(input)
	p := parser.New(l)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		compilerErrs := cerrors.FromPositions(p.ErrorPositions(), errs, input, filename)
		fmt.Fprint(os.Stderr, cerrors.FormatErrors(compilerErrs, false))
		return fmt.Errorf("parsing failed with %d error(s)", len(errs))
	}

	code, err := compiler.Compile(program)
	if err != nil {
		return fmt.Errorf("compilation failed: %w", err)
	}

	doc, err := bytecode.DumpJSON(code)
	if err != nil {
		return fmt.Errorf("failed to render bytecode as JSON: %w", err)
	}

	if dumpQuery != "" {
		fmt.Println(bytecode.QueryJSON(doc, dumpQuery))
		return nil
	}
	fmt.Println(doc)
	return nil
}
