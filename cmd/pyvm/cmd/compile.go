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

var compileShowJSON bool

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a source file to bytecode and print it",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().BoolVar(&compileShowJSON, "json", false, "print the compiled Code object as JSON")
}

func runCompile(_ *cobra.Command, args []string) error {
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

	if compileShowJSON {
		doc, err := bytecode.DumpJSON(code)
		if err != nil {
			return fmt.Errorf("failed to render bytecode as JSON: %w", err)
		}
		fmt.Println(doc)
		return nil
	}

	for i, instr := range code.Instructions {
		if instr.Name != "" {
			fmt.Printf("%4d %-16s %-6d %s\n", i, instr.Op, instr.Arg, instr.Name)
		} else {
			fmt.Printf("%4d %-16s %d\n", i, instr.Op, instr.Arg)
		}
	}
	return nil
}
