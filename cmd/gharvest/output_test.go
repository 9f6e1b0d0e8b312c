package main

import "testing"

func TestPaint(t *testing.T) {
	noColor = false
	t.Cleanup(func() { noColor = false })

	if got := paint(ansiGreen, "done"); got != ansiGreen+"done"+ansiReset {
		t.Errorf("paint = %q", got)
	}

	noColor = true
	if got := paint(ansiGreen, "done"); got != "done" {
		t.Errorf("paint with noColor = %q, want unchanged text", got)
	}
}
