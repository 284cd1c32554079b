package review

import (
	"os"

	"golang.org/x/term"
)

// IsTTY checks if the given file descriptor is a terminal.
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// IsOutputTerminal checks if stdout is a TTY, meaning output is being read
// by a person rather than piped into another tool. Used to choose between
// decorated and plain run summaries.
func IsOutputTerminal() bool {
	return IsTTY(os.Stdout.Fd())
}
