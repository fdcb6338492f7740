package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiCyan  = "\x1b[36m"
)

func colorForStatus(status string, colorize bool) string {
	if !colorize {
		return status
	}
	switch status {
	case "ok":
		return ansiGreen + status + ansiReset
	case "error", "timeout":
		return ansiRed + status + ansiReset
	default:
		return ansiCyan + status + ansiReset
	}
}

func shouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
