package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-pyvm/internal/builtins"
	"github.com/cwbudde/go-pyvm/internal/bytecode"
	"github.com/cwbudde/go-pyvm/internal/compiler"
	"github.com/cwbudde/go-pyvm/internal/config"
	cerrors "github.com/cwbudde/go-pyvm/internal/errors"
	"github.com/cwbudde/go-pyvm/internal/lexer"
	"github.com/cwbudde/go-pyvm/internal/object"
	"github.com/cwbudde/go-pyvm/internal/parser"
	"github.com/spf13/cobra"
)

var (
	runTrace        bool
	runDumpBytecode bool
	runConfigPath   string
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Run a source file",
	Long: `Lex, parse, compile and execute a program with a fresh environment
into which builtins are loaded.

Examples:
  pyvm run script.py
  pyvm run --config pyvm.yaml script.py`,
	Args: cobra.ExactArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runTrace, "trace", false, "trace executed instructions to stderr")
	runCmd.Flags().BoolVar(&runDumpBytecode, "dump-bytecode", false, "print compiled bytecode before executing")
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "path to a pyvm.yaml config file supplying flag defaults")
}

func runScript(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if runConfigPath != "" {
		loaded, err := config.Load(runConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	// explicit flags always win over the config file
	trace, dumpBytecode := cfg.Trace, cfg.DumpBytecode
	if cmd.Flags().Changed("trace") {
		trace = runTrace
	}
	if cmd.Flags().Changed("dump-bytecode") {
		dumpBytecode = runDumpBytecode
	}
	bytecode.MaxRecursionDepth = cfg.MaxRecursion

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

	if dumpBytecode {
		for i, instr := range code.Instructions {
			fmt.Fprintf(os.Stderr, "%4d %-16s %d %s\n", i, instr.Op, instr.Arg, instr.Name)
		}
	}
	if trace {
		fmt.Fprintf(os.Stderr, "[trace] executing %s\n", filename)
	}

	env := builtins.NewGlobalEnvironment()
	if _, err := bytecode.Run(code, env); err != nil {
		if _, ok := object.AsPyError(err); ok {
			fmt.Fprintln(os.Stderr, err.Error())
			return fmt.Errorf("execution failed")
		}
		return err
	}
	return nil
}
