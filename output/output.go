// Package output provides consistent CLI status/result formatting for
// ragctl commands that don't need the full progress renderer in ui.
package output

import (
	"fmt"
	"io"
	"strings"
)

// Writer formats status lines and result blocks for CLI output.
type Writer struct {
	out io.Writer
}

// New creates a Writer over out.
func New(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Status prints a message with an icon, or indented if icon is empty.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message with a checkmark.
func (w *Writer) Success(msg string) { w.Status("✅", msg) }

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) { w.Success(fmt.Sprintf(format, args...)) }

// Warning prints a warning message.
func (w *Writer) Warning(msg string) { w.Status("⚠️ ", msg) }

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) { w.Warning(fmt.Sprintf(format, args...)) }

// Error prints an error message.
func (w *Writer) Error(msg string) { w.Status("❌", msg) }

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) { w.Error(fmt.Sprintf(format, args...)) }

// Code prints an indented block, bracketed by blank lines.
func (w *Writer) Code(content string) {
	fmt.Fprintln(w.out)
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(w.out, "  %s\n", line)
	}
	fmt.Fprintln(w.out)
}

// Newline prints an empty line.
func (w *Writer) Newline() { fmt.Fprintln(w.out) }
