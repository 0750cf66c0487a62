package main

import (
	"os"

	"golang.org/x/sys/unix"
)

// terminalWidth returns the current terminal's column count via a TIOCGWINSZ
// ioctl on stderr, falling back to 80 when stderr isn't a terminal (piped
// output, CI logs) or the ioctl fails.
func terminalWidth() int {
	ws, err := unix.IoctlGetWinsize(int(os.Stderr.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 {
		return 80
	}
	return int(ws.Col)
}
