package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/wormtrack/internal/levels"
	"github.com/vovakirdan/wormtrack/internal/storage"
)

// PickerItem is one selectable level in the picker.
type PickerItem struct {
	Level    levels.Level
	BestTier int // 0 if never won
}

// PickerModel is the Bubble Tea model for the level picker.
type PickerModel struct {
	items          []PickerItem
	cursor         int
	scrollOffset   int
	width          int
	height         int
	keyMapper      *KeyMapper
	theme          Theme
	selected       *PickerItem
	quitting       bool
	openScoreboard bool
}

// NewPickerModel creates a picker over lvls. Best tiers come from store,
// which may be nil.
func NewPickerModel(lvls []levels.Level, store *storage.Store, width, height int) PickerModel {
	items := make([]PickerItem, 0, len(lvls))
	for _, lvl := range lvls {
		item := PickerItem{Level: lvl}
		if store != nil {
			if tier, err := store.BestTier(lvl.ID); err == nil {
				item.BestTier = tier
			}
		}
		items = append(items, item)
	}

	return PickerModel{
		items:     items,
		width:     width,
		height:    height,
		keyMapper: NewKeyMapper(),
		theme:     GetTheme(),
	}
}

// Init initializes the model.
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateScroll()
		return m, nil
	}
	return m, nil
}

func (m PickerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.keyMapper.MapKeyToMenuAction(msg) {
	case MenuActionQuit, MenuActionBack:
		m.quitting = true
		return m, tea.Quit

	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
			m.updateScroll()
		}

	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
			m.updateScroll()
		}

	case MenuActionSelect:
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
			return m, tea.Quit
		}

	case MenuActionScoreboard:
		m.openScoreboard = true
		return m, tea.Quit
	}

	return m, nil
}

// visibleItems is the number of list rows that fit between header and footer.
func (m PickerModel) visibleItems() int {
	return max(m.height-12, 3)
}

// updateScroll adjusts scroll offset to keep cursor visible.
func (m *PickerModel) updateScroll() {
	visible := m.visibleItems()
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	} else if m.cursor >= m.scrollOffset+visible {
		m.scrollOffset = m.cursor - visible + 1
	}
}

// tierStars renders a best tier as three star slots.
func tierStars(tier int) string {
	tier = min(max(tier, 0), 3)
	return strings.Repeat("★", tier) + strings.Repeat("☆", 3-tier)
}

// View renders the level list.
func (m PickerModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(m.theme.MenuTitle.Render("W O R M T R A C K"), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(m.theme.MenuDescription.Render("Select a level:"), m.width))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(centerText(m.theme.MenuLocked.Render("No levels found"), m.width))
		b.WriteString("\n")
	}

	endIdx := min(m.scrollOffset+m.visibleItems(), len(m.items))

	if m.scrollOffset > 0 {
		b.WriteString(centerText(m.theme.MenuDescription.Render("... more above ..."), m.width))
		b.WriteString("\n")
	}

	for i := m.scrollOffset; i < endIdx; i++ {
		item := m.items[i]
		cursor := "  "
		style := m.theme.MenuItemNormal
		if i == m.cursor {
			cursor = "> "
			style = m.theme.MenuItemActive
		}

		name := fmt.Sprintf("%s%2d. %-20s ", cursor, i+1, item.Level.Name)
		line := style.Render(name) + m.theme.MenuStars.Render(tierStars(item.BestTier))
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	if endIdx < len(m.items) {
		b.WriteString(centerText(m.theme.MenuDescription.Render("... more below ..."), m.width))
		b.WriteString("\n")
	}

	// Description of the highlighted level
	if len(m.items) > 0 {
		b.WriteString("\n")
		desc := strings.TrimSpace(m.items[m.cursor].Level.Description)
		if desc == "" {
			desc = m.items[m.cursor].Level.ID
		}
		b.WriteString(centerText(m.theme.MenuDescription.Render(desc), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := m.theme.Controls.Render("Up/Down: Navigate  |  Enter: Play  |  Tab: Results  |  Q: Quit")
	b.WriteString(centerText(controls, m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the chosen level, or nil if none was chosen.
func (m PickerModel) Selected() *PickerItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m PickerModel) IsQuitting() bool {
	return m.quitting
}

// WantsScoreboard returns true if user requested the results board.
func (m PickerModel) WantsScoreboard() bool {
	return m.openScoreboard
}
