package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sayandeep-bot/spectosoft/cli/reader"
)

// PendingModel is the Bubble Tea model for the pending-backlog browser.
// One summary box per artifact kind, a day breakdown for the selected
// kind below, left/right to move the selection.
type PendingModel struct {
	inventory []reader.KindInventory
	selected  int
	width     int
	height    int
	quitting  bool
}

// NewPendingModel creates the browser model over a backlog inventory.
func NewPendingModel(inventory []reader.KindInventory) PendingModel {
	return PendingModel{inventory: inventory}
}

// Init implements tea.Model.
func (m PendingModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m PendingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Next):
			if len(m.inventory) > 0 {
				m.selected = (m.selected + 1) % len(m.inventory)
			}
			return m, nil

		case key.Matches(msg, keys.Prev):
			if len(m.inventory) > 0 {
				m.selected = (m.selected + len(m.inventory) - 1) % len(m.inventory)
			}
			return m, nil
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m PendingModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Pending Backlog"))
	b.WriteString("\n\n")

	boxes := make([]string, 0, len(m.inventory))
	for i, inv := range m.inventory {
		boxes = append(boxes, m.renderKindBox(inv, i == m.selected))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	b.WriteString("\n\n")
	b.WriteString(m.renderDayBreakdown())

	help := helpStyle.Render("Press ←/→ to switch kinds, q or Ctrl+C to quit")
	return b.String() + "\n" + help
}

func (m PendingModel) renderKindBox(inv reader.KindInventory, selected bool) string {
	color := kindColor(inv.Kind)
	box := statBoxStyle.BorderForeground(color)
	if selected {
		box = box.BorderForeground(accentColor)
	}

	value := statValueStyle.Foreground(color).Render(fmt.Sprintf("%d", inv.Count))
	label := statLabelStyle.Render(inv.Kind)

	content := lipgloss.JoinVertical(lipgloss.Center, value, label)

	return box.Render(content)
}

func (m PendingModel) renderDayBreakdown() string {
	if len(m.inventory) == 0 {
		return boxStyle.Render(valueStyle.Render("nothing pending"))
	}
	inv := m.inventory[m.selected]

	var b strings.Builder
	heading := lipgloss.NewStyle().
		Bold(true).
		Foreground(kindColor(inv.Kind)).
		Render(inv.Kind)
	b.WriteString(heading)
	b.WriteString("\n")

	if len(inv.Days) == 0 {
		b.WriteString(valueStyle.Render("nothing pending"))
		return boxStyle.Render(b.String())
	}

	for _, day := range inv.Days {
		label := labelStyle.Render(day.Day + ":")
		value := valueStyle.Render(fmt.Sprintf("%d artifacts, %s", day.Count, humanBytes(day.Bytes)))
		b.WriteString(fmt.Sprintf("%s %s\n", label, value))
	}

	total := labelStyle.Render("total:")
	b.WriteString(fmt.Sprintf("%s %s",
		total,
		valueStyle.Render(fmt.Sprintf("%d artifacts, %s", inv.Count, humanBytes(inv.Bytes)))))

	return boxStyle.Render(b.String())
}

// humanBytes renders a byte count in the nearest binary unit.
func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for rest := n / unit; rest >= unit; rest /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// keyMap defines key bindings.
type keyMap struct {
	Next key.Binding
	Prev key.Binding
	Quit key.Binding
}

var keys = keyMap{
	Next: key.NewBinding(
		key.WithKeys("right", "tab", "l"),
		key.WithHelp("→", "next kind"),
	),
	Prev: key.NewBinding(
		key.WithKeys("left", "shift+tab", "h"),
		key.WithHelp("←", "previous kind"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
