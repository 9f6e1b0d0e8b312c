package main

import (
	"fmt"
	"os"
)

// Terminal paint codes. Human-facing report lines go to stderr so command
// stdout stays pipeable (browse writes its Markdown there).
const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
)

func paint(code, s string) string {
	if noColor {
		return s
	}
	return code + s + ansiReset
}

func printStep(format string, args ...any) {
	fmt.Fprintln(os.Stderr, paint(ansiCyan, "→ "+fmt.Sprintf(format, args...)))
}

func printSuccess(format string, args ...any) {
	fmt.Fprintln(os.Stderr, paint(ansiGreen, "✓ "+fmt.Sprintf(format, args...)))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(os.Stderr, paint(ansiYellow, "⚠ "+fmt.Sprintf(format, args...)))
}

func printError(format string, args ...any) {
	fmt.Fprintln(os.Stderr, paint(ansiRed, "✗ "+fmt.Sprintf(format, args...)))
}

// printStatus renders one "Label: value" line of a report block.
func printStatus(label, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "  %s %s\n", paint(ansiBold, label+":"), fmt.Sprintf(format, args...))
}

// printRepo renders a per-repository report line; the repository name is the
// label.
func printRepo(repo, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "  %s  %s\n", paint(ansiBold, repo), fmt.Sprintf(format, args...))
}
