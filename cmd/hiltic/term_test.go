package main

import "testing"

func TestTerminalWidthFallsBackWhenNotATerminal(t *testing.T) {
	// Under `go test`, stderr is typically redirected to a pipe, so the
	// ioctl fails and the 80-column fallback applies.
	if w := terminalWidth(); w <= 0 {
		t.Fatalf("terminalWidth() = %d, want a positive width", w)
	}
}
