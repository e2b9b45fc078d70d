//go:build windows

package main

import (
	"os"

	"golang.org/x/sys/windows"
)

// enableColorSupport turns on ANSI escape processing for stdout on Windows
// consoles, which do not interpret them by default. Non-Windows terminals
// need no such call.
func enableColorSupport() {
	handle := windows.Handle(os.Stdout.Fd())
	var mode uint32
	if err := windows.GetConsoleMode(handle, &mode); err != nil {
		return
	}
	mode |= windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING
	_ = windows.SetConsoleMode(handle, mode)
}
