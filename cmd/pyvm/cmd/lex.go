package cmd

import (
	"fmt"
	"os"

	cerrors "github.com/cwbudde/go-pyvm/internal/errors"
	"github.com/cwbudde/go-pyvm/internal/lexer"
	"github.com/spf13/cobra"
)

var (
	evalExpr string
	showPos  bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a source file or expression",
	Long: `Tokenize a program and print the resulting tokens, one per line.

Examples:
  pyvm lex script.py
  pyvm lex -e "x = 1 + 2"
  pyvm lex --show-pos script.py`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "tokenize inline code instead of reading from a file")
	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token positions (line:column)")
}

func readSource(args []string) (input, filename string, err error) {
	if evalExpr != "" {
		return evalExpr, "<eval>", nil
	}
	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(content), args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e for inline code")
}

func runLex(_ *cobra.Command, args []string) error {
	input, filename, err := readSource(args)
	if err != nil {
		return err
	}

	l := lexer.New(input)
	for {
		tok := l.NextToken()
		if showPos {
			fmt.Printf("%-12v %-18q @%d:%d\n", tok.Type, tok.Literal, tok.Pos.Line, tok.Pos.Column)
		} else {
			fmt.Printf("%-12v %q\n", tok.Type, tok.Literal)
		}
		if tok.Type == lexer.EOF {
			break
		}
	}

	if errs := l.Errors(); len(errs) > 0 {
		positions := make([]lexer.Position, len(errs))
		messages := make([]string, len(errs))
		for i, e := range errs {
			positions[i] = e.Pos
			messages[i] = e.Msg
		}
		compilerErrs := cerrors.FromPositions(positions, messages, input, filename)
		fmt.Fprint(os.Stderr, cerrors.FormatErrors(compilerErrs, false))
		return fmt.Errorf("lexing failed with %d error(s)", len(errs))
	}
	return nil
}
