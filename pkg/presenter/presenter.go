// Package presenter provides consistent CLI output for user-facing messages:
// chat labels, tool invocation lines, and error/success/info reporting with
// color support and quiet mode.
package presenter

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorMode controls colored output.
type ColorMode int

const (
	// ColorAuto detects terminal capabilities.
	ColorAuto ColorMode = iota
	// ColorAlways forces colored output.
	ColorAlways
	// ColorNever disables colored output.
	ColorNever
)

// Presenter writes user-facing output to a terminal.
type Presenter struct {
	out    io.Writer
	errOut io.Writer
	quiet  bool

	userLabel      *color.Color
	assistantLabel *color.Color
	toolLine       *color.Color
	errorLine      *color.Color
	successLine    *color.Color
	infoLine       *color.Color
}

// New creates a Presenter writing to stdout/stderr with auto color detection.
func New() *Presenter {
	return NewWithOptions(os.Stdout, os.Stderr, detectColorMode())
}

// NewWithOptions creates a Presenter with explicit outputs and color mode.
func NewWithOptions(out, errOut io.Writer, mode ColorMode) *Presenter {
	switch mode {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	}
	return &Presenter{
		out:            out,
		errOut:         errOut,
		userLabel:      color.New(color.FgBlue, color.Bold),
		assistantLabel: color.New(color.FgGreen, color.Bold),
		toolLine:       color.New(color.Faint),
		errorLine:      color.New(color.FgRed),
		successLine:    color.New(color.FgGreen),
		infoLine:       color.New(color.FgCyan),
	}
}

func detectColorMode() ColorMode {
	if os.Getenv("NO_COLOR") != "" {
		return ColorNever
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return ColorNever
	}
	return ColorAuto
}

// SetQuiet suppresses informational output. Errors are still printed.
func (p *Presenter) SetQuiet(quiet bool) { p.quiet = quiet }

// IsQuiet reports whether quiet mode is active.
func (p *Presenter) IsQuiet() bool { return p.quiet }

// User prints the user-turn label followed by the message.
func (p *Presenter) User(message string) {
	if p.quiet {
		return
	}
	p.userLabel.Fprint(p.out, "You: ")
	fmt.Fprintln(p.out, message)
}

// Assistant prints assistant output.
func (p *Presenter) Assistant(message string) {
	if p.quiet || message == "" {
		return
	}
	fmt.Fprintln(p.out, message)
}

// ToolCall prints a dim one-liner describing a tool invocation.
func (p *Presenter) ToolCall(name, args string) {
	if p.quiet {
		return
	}
	p.toolLine.Fprintf(p.out, "Running tool: %s %s\n", name, args)
}

// Error reports an error with optional context.
func (p *Presenter) Error(err error, context string) {
	if context != "" {
		p.errorLine.Fprintf(p.errOut, "Error: %s: %v\n", context, err)
		return
	}
	p.errorLine.Fprintf(p.errOut, "Error: %v\n", err)
}

// Success reports a successful operation.
func (p *Presenter) Success(message string) {
	if p.quiet {
		return
	}
	p.successLine.Fprintf(p.out, "%s\n", message)
}

// Info prints an informational message.
func (p *Presenter) Info(message string) {
	if p.quiet {
		return
	}
	p.infoLine.Fprintf(p.out, "%s\n", message)
}

// Plain prints a message with no styling regardless of color mode.
func (p *Presenter) Plain(message string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.out, message)
}
