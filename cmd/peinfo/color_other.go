//go:build !windows

package main

// enableColorSupport is a no-op outside Windows: terminals there already
// interpret ANSI escapes natively.
func enableColorSupport() {}
