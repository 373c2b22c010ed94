// Package console prints the few messages meant for the human running a
// tool rather than for the log: fatal errors, follow-up actions and the
// final listings.
package console

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

//nolint:gochecknoglobals // Color attributes are immutable once built.
var (
	errorColor   = color.New(color.FgRed)
	warningColor = color.New(color.FgYellow)
	successColor = color.New(color.FgGreen)
)

// Fatal prints err in red.
func Fatal(w io.Writer, err error) {
	_, _ = errorColor.Fprintf(w, "Error: %v\n", err)
}

// Actionf prints a yellow line asking the operator to do something by hand.
func Actionf(w io.Writer, format string, args ...any) {
	_, _ = warningColor.Fprintf(w, format+"\n", args...)
}

// Successf prints a green summary line.
func Successf(w io.Writer, format string, args ...any) {
	_, _ = successColor.Fprintf(w, format+"\n", args...)
}

// List prints a heading followed by one "- item" line per item.
func List(w io.Writer, heading string, items []string) {
	_, _ = fmt.Fprintf(w, "\n%s:\n", heading)
	for _, item := range items {
		_, _ = fmt.Fprintf(w, "- %s\n", item)
	}
}
