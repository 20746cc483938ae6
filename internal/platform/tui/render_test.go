package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/wormtrack/internal/core"
)

func TestRenderScreenKeepsText(t *testing.T) {
	s := core.NewScreen(6, 2)
	s.DrawTextWithColor(0, 0, "ab", core.ColorRed)
	s.DrawTextWithColor(2, 0, "cd", core.ColorBlue)
	s.SetWithColor(0, 1, '◆', core.ColorBrightYellow)

	out := RenderScreen(s)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}

	// Styling may add escape codes but never changes the visible width.
	for i, line := range lines {
		if w := lipgloss.Width(line); w != 6 {
			t.Errorf("line %d: expected width 6, got %d", i, w)
		}
	}
	if !strings.Contains(out, "ab") || !strings.Contains(out, "cd") || !strings.Contains(out, "◆") {
		t.Errorf("Expected cell text in output, got %q", out)
	}
}

func TestEveryColorHasStyle(t *testing.T) {
	for c := core.ColorDefault; c <= core.ColorDarkGray; c++ {
		if _, ok := colorStyles[c]; !ok {
			t.Errorf("color %d has no style", c)
		}
	}
}

func TestCenterText(t *testing.T) {
	if got := centerText("abc", 9); got != "   abc" {
		t.Errorf("Expected 3 spaces of padding, got %q", got)
	}
	if got := centerText("abcdef", 4); got != "abcdef" {
		t.Errorf("Expected text unchanged when wider than width, got %q", got)
	}
}

func TestTierStars(t *testing.T) {
	tests := map[int]string{
		-1: "☆☆☆",
		0:  "☆☆☆",
		2:  "★★☆",
		3:  "★★★",
		5:  "★★★",
	}
	for tier, want := range tests {
		if got := tierStars(tier); got != want {
			t.Errorf("tierStars(%d): expected %q, got %q", tier, want, got)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Windy Junction", 6); got != "Windy." {
		t.Errorf("Expected %q, got %q", "Windy.", got)
	}
	if got := truncate("Short", 6); got != "Short" {
		t.Errorf("Expected %q, got %q", "Short", got)
	}
}
