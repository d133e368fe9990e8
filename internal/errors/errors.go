// Package errors formats lexer/parser/compiler failures with source
// context, line/column information, and a caret pointing at the offending
// column — the same rendering go-dws uses for its compiler diagnostics.
package errors

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-pyvm/internal/lexer"
)

// CompilerError represents a single lex/parse/compile failure.
type CompilerError struct {
	Message string
	Source  string
	File    string
	Pos     lexer.Position
}

// NewCompilerError creates a new CompilerError.
func NewCompilerError(pos lexer.Position, message, source, file string) *CompilerError {
	return &CompilerError{Pos: pos, Message: message, Source: source, File: file}
}

// Error implements the error interface.
func (e *CompilerError) Error() string { return e.Format(false) }

// Format renders the error with a source line and caret. If color is true,
// ANSI escapes highlight the caret and message for terminal output.
func (e *CompilerError) Format(color bool) string {
	var sb strings.Builder

	if e.File != "" {
		fmt.Fprintf(&sb, "Error in %s:%d:%d\n", e.File, e.Pos.Line, e.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "Error at line %d:%d\n", e.Pos.Line, e.Pos.Column)
	}

	if line := e.sourceLine(e.Pos.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")

		sb.WriteString(strings.Repeat(" ", len(prefix)+max0(e.Pos.Column-1)))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m")
	}
	return sb.String()
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func (e *CompilerError) sourceLine(lineNum int) string {
	if e.Source == "" {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// FromPositions converts a batch of (position, message) failures, sharing
// the same source text and file name, into CompilerErrors.
func FromPositions(positions []lexer.Position, messages []string, source, file string) []*CompilerError {
	n := len(positions)
	if len(messages) < n {
		n = len(messages)
	}
	out := make([]*CompilerError, n)
	for i := 0; i < n; i++ {
		out[i] = NewCompilerError(positions[i], messages[i], source, file)
	}
	return out
}

// FormatErrors renders a batch of errors one after another.
func FormatErrors(errs []*CompilerError, color bool) string {
	var sb strings.Builder
	for i, e := range errs {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(e.Format(color))
		sb.WriteString("\n")
	}
	return sb.String()
}
