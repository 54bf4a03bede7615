// Package tui provides the Bubble Tea streak tracking interface.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arvese/streakbook/internal/discovery"
	"github.com/arvese/streakbook/internal/history"
	"github.com/arvese/streakbook/internal/roster"
)

var (
	titleStyle          = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	headerStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	nameStyle           = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	pathStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	activeCategoryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	categoryStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	counterLabelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	counterValueStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	statusStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	warnStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

const (
	headerHeight = 2
	footerHeight = 2
	numColWidth  = 7
)

// Model drives the interactive tracker: a roster table on the left, the
// selected character's streak detail on the right. All mutations go through
// the store; the model itself only holds view state.
type Model struct {
	store    *roster.Store
	journal  *history.Journal
	watcher  *discovery.Watcher
	mediaDir string
	logger   *zap.Logger

	sessionID string

	width  int
	height int

	rosterWidth int
	bodyHeight  int

	rosterTable table.Model
	filterInput textinput.Model
	filterMode  bool

	visible []string
	status  string

	sessionWins   int
	sessionLosses int
}

// NewModel builds the tracker UI over a loaded store. The journal and the
// watcher may be nil; history recording and live refresh are then skipped.
func NewModel(st *roster.Store, journal *history.Journal, watcher *discovery.Watcher, mediaDir string, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := table.New(
		table.WithColumns(rosterColumns(34)),
		table.WithHeight(10),
		table.WithFocused(true),
	)
	t.SetStyles(rosterTableStyles())

	m := Model{
		store:       st,
		journal:     journal,
		watcher:     watcher,
		mediaDir:    mediaDir,
		logger:      logger,
		sessionID:   uuid.NewString(),
		rosterTable: t,
		filterInput: newFilterInput("filter: "),
	}
	m.applyFilter()
	return m
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func rosterColumns(width int) []table.Column {
	return []table.Column{
		{Title: "Character", Width: maxInt(width-2*numColWidth-4, 12)},
		{Title: "Current", Width: numColWidth},
		{Title: "Best", Width: numColWidth},
	}
}

func rosterTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#C89A3A")).
		Bold(true)
	return styles
}

// mediaChangedMsg arrives when the media watcher reports a settled burst of
// portrait changes.
type mediaChangedMsg struct{}

func waitForMedia(w *discovery.Watcher) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-w.Events(); !ok {
			return nil
		}
		return mediaChangedMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	return waitForMedia(m.watcher)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case mediaChangedMsg:
		if m.store.Rescan() {
			m.status = "media changed, roster updated"
		}
		m.applyFilter()
		if m.watcher == nil {
			return m, nil
		}
		return m, waitForMedia(m.watcher)

	case tea.KeyMsg:
		if m.filterMode {
			return m.updateFilter(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "/":
		m.filterMode = true
		return m, m.filterInput.Focus()

	case "esc":
		if m.filterInput.Value() != "" {
			m.filterInput.SetValue("")
			m.applyFilter()
		}
		m.status = ""
		return m, nil

	case "left":
		m.cycleCategory(-1)
		return m, nil

	case "right":
		m.cycleCategory(1)
		return m, nil

	case "w":
		m.record(true)
		return m, nil

	case "l":
		m.record(false)
		return m, nil

	case "r":
		if m.store.Rescan() {
			m.status = "media rescanned, new portraits added"
		} else {
			m.status = "media rescanned, no changes"
		}
		m.applyFilter()
		return m, nil

	case "up", "down", "k", "j", "pgup", "pgdown", "home", "end":
		var cmd tea.Cmd
		m.rosterTable, cmd = m.rosterTable.Update(msg)
		m.syncSelection()
		return m, cmd
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterInput.Blur()
		m.filterInput.SetValue("")
		m.applyFilter()
		return m, nil
	case tea.KeyEnter:
		m.filterMode = false
		m.filterInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.applyFilter()
	return m, cmd
}

// record applies the outcome to the selected streak and journals it.
func (m *Model) record(win bool) {
	c, ok := m.store.Selected()
	if !ok {
		return
	}
	st, ok := m.store.SelectedStreak()
	if !ok {
		return
	}
	current, best := m.store.Record(win)
	if win {
		m.sessionWins++
	} else {
		m.sessionLosses++
	}
	outcome := "loss"
	if win {
		outcome = "win"
	}
	m.status = fmt.Sprintf("%s %s: %s (current %d, best %d)", c.Name, st.Name, outcome, current, best)
	m.appendOutcome(c.Name, st.Name, win, current, best)
	m.reloadRows()
}

func (m *Model) appendOutcome(character, category string, win bool, current, best int) {
	if m.journal == nil {
		return
	}
	o := history.Outcome{
		RecordedAt: time.Now(),
		SessionID:  m.sessionID,
		Character:  character,
		Category:   category,
		Win:        win,
		Current:    current,
		Best:       best,
	}
	if err := m.journal.Append(context.Background(), o); err != nil {
		m.logger.Warn("failed to append outcome to history", zap.Error(err))
	}
}

func (m *Model) cycleCategory(delta int) {
	names := m.store.CategoryNames()
	if len(names) == 0 {
		return
	}
	idx := 0
	if st, ok := m.store.SelectedStreak(); ok {
		for i, name := range names {
			if name == st.Name {
				idx = i
				break
			}
		}
	}
	idx = (idx + delta + len(names)) % len(names)
	m.store.SelectCategory(names[idx])
	m.reloadRows()
}

// applyFilter rebuilds the visible roster from the current filter text and
// keeps the table cursor on the selected character where possible.
func (m *Model) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(m.filterInput.Value()))
	names := m.store.Names()
	if query == "" {
		m.visible = names
	} else {
		visible := make([]string, 0, len(names))
		for _, name := range names {
			if strings.Contains(strings.ToLower(name), query) {
				visible = append(visible, name)
			}
		}
		m.visible = visible
	}
	m.reloadRows()
	m.moveCursorToSelected()
}

func (m *Model) reloadRows() {
	active := m.activeCategory()
	byName := make(map[string]roster.Character, len(m.visible))
	for _, c := range m.store.Snapshot() {
		byName[c.Name] = c
	}
	rows := make([]table.Row, 0, len(m.visible))
	for _, name := range m.visible {
		current, best := "-", "-"
		if c, ok := byName[name]; ok {
			for _, st := range c.Streaks {
				if st.Name != active {
					continue
				}
				current = strconv.Itoa(st.Current)
				best = strconv.Itoa(st.Best)
				break
			}
		}
		rows = append(rows, table.Row{name, current, best})
	}
	m.rosterTable.SetRows(rows)
}

func (m *Model) moveCursorToSelected() {
	if len(m.visible) == 0 {
		return
	}
	if c, ok := m.store.Selected(); ok {
		for i, name := range m.visible {
			if name == c.Name {
				m.rosterTable.SetCursor(i)
				return
			}
		}
	}
	m.rosterTable.SetCursor(0)
	m.store.Select(m.visible[0])
	m.reloadRows()
}

// syncSelection follows the table cursor after navigation keys. Switching
// characters resets the category to the first streak.
func (m *Model) syncSelection() {
	row := m.rosterTable.Cursor()
	if row < 0 || row >= len(m.visible) {
		return
	}
	name := m.visible[row]
	if c, ok := m.store.Selected(); ok && c.Name == name {
		return
	}
	if m.store.Select(name) {
		m.reloadRows()
	}
}

func (m Model) activeCategory() string {
	if st, ok := m.store.SelectedStreak(); ok {
		return st.Name
	}
	return ""
}

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.bodyHeight = maxInt(m.height-headerHeight-footerHeight, 3)
	m.rosterWidth = minInt(maxInt(m.width/2, 34), 46)
	if m.rosterWidth > m.width {
		m.rosterWidth = m.width
	}
	m.rosterTable.SetColumns(rosterColumns(m.rosterWidth))
	m.rosterTable.SetWidth(m.rosterWidth)
	m.rosterTable.SetHeight(m.bodyHeight)
}

func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	return strings.Join([]string{
		m.renderHeader(),
		m.renderBody(),
		m.renderFooter(),
	}, "\n")
}

func (m Model) renderHeader() string {
	total := len(m.store.Names())
	count := fmt.Sprintf("%d characters", total)
	if len(m.visible) != total {
		count = fmt.Sprintf("%d/%d characters", len(m.visible), total)
	}
	top := joinEnds(titleStyle.Render("streakbook"), headerStyle.Render(count), m.width)

	var second string
	switch {
	case m.filterMode:
		second = m.filterInput.View()
	case m.filterInput.Value() != "":
		second = headerStyle.Render("filter: " + m.filterInput.Value() + "  (esc clears)")
	}
	return top + "\n" + padLine(second, m.width)
}

func (m Model) renderBody() string {
	left := fitLines(m.rosterTable.View(), m.rosterWidth, m.bodyHeight)
	detailWidth := m.width - m.rosterWidth - 3
	if detailWidth <= 0 {
		return left
	}
	right := fitLines(m.renderDetail(detailWidth), detailWidth, m.bodyHeight)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "   ", right)
}

func (m Model) renderDetail(width int) string {
	c, ok := m.store.Selected()
	if !ok {
		return strings.Join([]string{
			nameStyle.Render("No portraits found."),
			"",
			pathStyle.Render(truncateLine("Add PNG portraits to "+m.mediaDir, width)),
			pathStyle.Render("and press r to rescan."),
		}, "\n")
	}

	lines := []string{
		nameStyle.Render(truncateLine(c.Name, width)),
		pathStyle.Render(truncateLine(c.ImagePath, width)),
		"",
		m.renderCategories(),
		"",
	}
	if st, ok := m.store.SelectedStreak(); ok {
		lines = append(lines,
			counterLabelStyle.Render("Current  ")+counterValueStyle.Render(strconv.Itoa(st.Current)),
			counterLabelStyle.Render("Best     ")+counterValueStyle.Render(strconv.Itoa(st.Best)),
		)
	} else {
		lines = append(lines, categoryStyle.Render("No categories configured."))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderCategories() string {
	names := m.store.CategoryNames()
	if len(names) == 0 {
		return ""
	}
	active := m.activeCategory()
	parts := make([]string, 0, len(names))
	for _, name := range names {
		if name == active {
			parts = append(parts, activeCategoryStyle.Render("["+name+"]"))
			continue
		}
		parts = append(parts, categoryStyle.Render(name))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	var status string
	switch {
	case m.store.SaveDegraded():
		status = warnStyle.Render("saving failed, progress is held in memory for this run")
	case m.status != "":
		status = statusStyle.Render(truncateLine(m.status, m.width))
	}

	help := footerStyle.Render("Select: up/down  Category: left/right  Win: w  Loss: l  Rescan: r  Filter: /  Quit: q")
	tally := footerStyle.Render(fmt.Sprintf("Session %dW %dL", m.sessionWins, m.sessionLosses))
	return padLine(status, m.width) + "\n" + joinEnds(help, tally, m.width)
}
