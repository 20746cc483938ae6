package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/wormtrack/internal/core"
)

// keyMsg builds the key message a terminal would send for name.
func keyMsg(name string) tea.KeyMsg {
	switch name {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name)}
}

func TestMapKey(t *testing.T) {
	km := NewKeyMapper()

	tests := []struct {
		key    string
		action core.Action
		quit   bool
	}{
		{"q", core.ActionQuit, true},
		{"ctrl+c", core.ActionQuit, true},
		{"tab", core.ActionNext, false},
		{"right", core.ActionNext, false},
		{"l", core.ActionNext, false},
		{"shift+tab", core.ActionPrev, false},
		{"left", core.ActionPrev, false},
		{"h", core.ActionPrev, false},
		{" ", core.ActionSwitch, false},
		{"enter", core.ActionConfirm, false},
		{"esc", core.ActionBack, false},
		{"b", core.ActionBack, false},
		{"p", core.ActionPause, false},
		{"r", core.ActionRestart, false},
		{"3", core.ActionSelect, false},
		{"0", core.ActionNone, false},
		{"x", core.ActionNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			action, quit := km.MapKey(keyMsg(tt.key))
			if action != tt.action {
				t.Errorf("Expected %v, got %v", tt.action, action)
			}
			if quit != tt.quit {
				t.Errorf("Expected quit=%v, got %v", tt.quit, quit)
			}
		})
	}
}

func TestMapKeyToFrameKeepsSlot(t *testing.T) {
	km := NewKeyMapper()
	frame := core.NewInputFrame()

	if km.MapKeyToFrame(keyMsg("7"), &frame) {
		t.Fatal("digit reported as quit")
	}
	if !frame.Has(core.ActionSelect) || frame.Slot != 7 {
		t.Errorf("Expected select slot 7, got %+v", frame)
	}

	km.MapKeyToFrame(keyMsg(" "), &frame)
	if !frame.Has(core.ActionSwitch) || !frame.Has(core.ActionSelect) {
		t.Error("Expected switch and select buffered in the same frame")
	}

	km.MapKeyToFrame(keyMsg("x"), &frame)
	if len(frame.Actions) != 2 {
		t.Errorf("Expected unmapped key to add nothing, got %v", frame.Actions)
	}

	if !km.MapKeyToFrame(keyMsg("q"), &frame) {
		t.Error("Expected q to request quit")
	}
}

func TestMapKeyToMenuAction(t *testing.T) {
	km := NewKeyMapper()

	tests := map[string]MenuAction{
		"up":    MenuActionUp,
		"k":     MenuActionUp,
		"down":  MenuActionDown,
		"j":     MenuActionDown,
		"enter": MenuActionSelect,
		" ":     MenuActionSelect,
		"esc":   MenuActionBack,
		"tab":   MenuActionScoreboard,
		"q":     MenuActionQuit,
		"z":     MenuActionNone,
	}
	for key, want := range tests {
		if got := km.MapKeyToMenuAction(keyMsg(key)); got != want {
			t.Errorf("key %q: expected %v, got %v", key, want, got)
		}
	}
}
