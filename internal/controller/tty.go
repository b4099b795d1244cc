package controller

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// IsTerminal reports whether w writes to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewUI returns the TUI when the command writes to a terminal and plain is
// false, otherwise the SimpleUI.
func NewUI(cmd *cobra.Command, plain bool) UI {
	out := cmd.OutOrStdout()
	if !plain && IsTerminal(out) {
		return NewTUI(out)
	}

	return NewSimpleUI(cmd)
}
