package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/leafstorm/railgen/internal/testnet"
)

func press(m BrowseModel, keys ...string) BrowseModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(BrowseModel)
	}
	return m
}

func TestBrowseNavigation(t *testing.T) {
	m := NewBrowseModel(testnet.Metro(t))

	tests := []struct {
		name       string
		keys       []string
		wantTab    browseTab
		wantCursor int
	}{
		{"start", nil, tabLines, 0},
		{"down", []string{"down", "j"}, tabLines, 2},
		{"clamped at end", []string{"j", "j", "j", "j"}, tabLines, 2},
		{"up at start", []string{"k"}, tabLines, 0},
		{"end then home", []string{"G", "g"}, tabLines, 0},
		{"tab resets cursor", []string{"j", "tab"}, tabStations, 0},
		{"stations end", []string{"tab", "G"}, tabStations, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := press(m, tt.keys...)
			if got.Tab != tt.wantTab || got.Cursor != tt.wantCursor {
				t.Errorf("tab=%d cursor=%d, want tab=%d cursor=%d", got.Tab, got.Cursor, tt.wantTab, tt.wantCursor)
			}
		})
	}
}

func TestBrowseScroll(t *testing.T) {
	m := NewBrowseModel(testnet.Metro(t))
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 3})
	m = next.(BrowseModel)
	if m.Height != 5 {
		t.Fatalf("Height = %d, want the minimum 5", m.Height)
	}
	m.Height = 1
	m = press(m, "j", "j")
	if m.Offset != 2 {
		t.Errorf("Offset = %d, want 2", m.Offset)
	}
	m = press(m, "k")
	if m.Offset != 1 {
		t.Errorf("Offset = %d, want 1", m.Offset)
	}
}

func TestBrowseQuit(t *testing.T) {
	m := NewBrowseModel(testnet.Metro(t))
	for _, k := range []string{"q", "esc"} {
		var msg tea.KeyMsg
		if k == "esc" {
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		} else {
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		if _, cmd := m.Update(msg); cmd == nil {
			t.Errorf("%s returned no command", k)
		}
	}
}

func TestBrowseView(t *testing.T) {
	m := NewBrowseModel(testnet.Metro(t))

	view := m.View()
	for _, want := range []string{"Metro", "Lines", "Red", "Harbour Shuttle", "Eastbound", "Platform 2", "(waypoint)", "[1/3]"} {
		if !strings.Contains(view, want) {
			t.Errorf("lines view lacks %q", want)
		}
	}

	view = press(m, "tab", "j", "j").View()
	for _, want := range []string{"Old Town", "1 - Red", "3 - Circle", "[3/3]"} {
		if !strings.Contains(view, want) {
			t.Errorf("stations view lacks %q", want)
		}
	}
}
