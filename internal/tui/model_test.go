package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/arvese/streakbook/internal/roster"
)

func writePNG(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("png"), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func newTestModel(t *testing.T, pngs ...string) Model {
	t.Helper()
	dir := t.TempDir()
	media := filepath.Join(dir, "media")
	if err := os.MkdirAll(media, 0o755); err != nil {
		t.Fatalf("failed to create media dir: %v", err)
	}
	for _, name := range pngs {
		writePNG(t, media, name)
	}
	sets := roster.CategorySets{
		Killer:   []string{"4k", "3k"},
		Survivor: []string{"Solo escape"},
	}
	st := roster.NewStore(filepath.Join(dir, "streaks.json"), media, sets, roster.Options{}, nil)
	st.Load()
	m := NewModel(st, nil, nil, media, nil)
	resized, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return resized.(Model)
}

func press(t *testing.T, m Model, key string) Model {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func TestRecordKeysUpdateStreaks(t *testing.T) {
	m := newTestModel(t, "Nurse.png")

	m = press(t, m, "w")
	m = press(t, m, "w")
	st, ok := m.store.SelectedStreak()
	if !ok {
		t.Fatalf("expected a selected streak")
	}
	if st.Current != 2 || st.Best != 2 {
		t.Fatalf("expected current 2 best 2, got %d/%d", st.Current, st.Best)
	}
	if m.sessionWins != 2 || m.sessionLosses != 0 {
		t.Fatalf("expected session tally 2W 0L, got %dW %dL", m.sessionWins, m.sessionLosses)
	}

	m = press(t, m, "l")
	st, _ = m.store.SelectedStreak()
	if st.Current != 0 || st.Best != 2 {
		t.Fatalf("expected current 0 best 2 after loss, got %d/%d", st.Current, st.Best)
	}
	if m.sessionLosses != 1 {
		t.Fatalf("expected 1 session loss, got %d", m.sessionLosses)
	}
}

func TestCategoryKeysCycle(t *testing.T) {
	m := newTestModel(t, "Nurse.png")

	m = press(t, m, "right")
	if st, _ := m.store.SelectedStreak(); st.Name != "3k" {
		t.Fatalf("expected 3k after right, got %q", st.Name)
	}
	m = press(t, m, "right")
	if st, _ := m.store.SelectedStreak(); st.Name != "4k" {
		t.Fatalf("expected wrap to 4k, got %q", st.Name)
	}
	m = press(t, m, "left")
	if st, _ := m.store.SelectedStreak(); st.Name != "3k" {
		t.Fatalf("expected 3k after left, got %q", st.Name)
	}
}

func TestCharacterKeysMoveSelection(t *testing.T) {
	m := newTestModel(t, "Nurse.png", "Oni.png")

	m = press(t, m, "right")
	m = press(t, m, "down")
	c, ok := m.store.Selected()
	if !ok || c.Name != "Oni" {
		t.Fatalf("expected Oni selected, got %q", c.Name)
	}
	if st, _ := m.store.SelectedStreak(); st.Name != "4k" {
		t.Fatalf("expected category reset to 4k on character change, got %q", st.Name)
	}

	m = press(t, m, "up")
	if c, _ := m.store.Selected(); c.Name != "Nurse" {
		t.Fatalf("expected Nurse selected, got %q", c.Name)
	}
}

func TestFilterNarrowsRoster(t *testing.T) {
	m := newTestModel(t, "Nurse.png", "Oni.png", "Trapper.png")

	m = press(t, m, "/")
	if !m.filterMode {
		t.Fatalf("expected filter mode after /")
	}
	m = press(t, m, "oni")
	if len(m.visible) != 1 || m.visible[0] != "Oni" {
		t.Fatalf("expected visible [Oni], got %v", m.visible)
	}
	if c, _ := m.store.Selected(); c.Name != "Oni" {
		t.Fatalf("expected selection snapped to Oni, got %q", c.Name)
	}

	m = press(t, m, "enter")
	if m.filterMode {
		t.Fatalf("expected filter mode off after enter")
	}
	if len(m.visible) != 1 {
		t.Fatalf("expected filter kept after enter, got %v", m.visible)
	}

	m = press(t, m, "esc")
	if len(m.visible) != 3 {
		t.Fatalf("expected full roster after esc, got %v", m.visible)
	}
	if c, _ := m.store.Selected(); c.Name != "Oni" {
		t.Fatalf("expected Oni to stay selected, got %q", c.Name)
	}
}

func TestRescanKeyAddsPortraits(t *testing.T) {
	m := newTestModel(t, "Nurse.png")

	writePNG(t, m.mediaDir, "Oni.png")
	m = press(t, m, "r")
	if len(m.visible) != 2 {
		t.Fatalf("expected 2 visible characters after rescan, got %v", m.visible)
	}
	if c, _ := m.store.Selected(); c.Name != "Nurse" {
		t.Fatalf("expected selection to survive rescan, got %q", c.Name)
	}
}

func TestMediaChangedMessageRescans(t *testing.T) {
	m := newTestModel(t, "Nurse.png")

	writePNG(t, m.mediaDir, "Oni.png")
	updated, _ := m.Update(mediaChangedMsg{})
	m = updated.(Model)
	if len(m.visible) != 2 {
		t.Fatalf("expected 2 visible characters after media change, got %v", m.visible)
	}
}

func TestQuitKeyReturnsQuit(t *testing.T) {
	m := newTestModel(t, "Nurse.png")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestViewShowsRosterAndFooter(t *testing.T) {
	m := newTestModel(t, "Nurse.png")
	m = press(t, m, "w")

	out := m.View()
	if out == "" {
		t.Fatalf("expected view output")
	}
	if !containsAll(out, []string{"streakbook", "Nurse", "Current", "Best", "Session 1W 0L", "Win: w"}) {
		t.Fatalf("view missing expected segments: %s", out)
	}
}

func TestViewEmptyRoster(t *testing.T) {
	m := newTestModel(t)
	out := m.View()
	if !containsAll(out, []string{"No portraits found", "press r to rescan"}) {
		t.Fatalf("empty view missing hint: %s", out)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
