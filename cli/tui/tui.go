package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sayandeep-bot/spectosoft/cli/reader"
)

// Run opens the interactive pending-backlog browser and blocks until
// the user quits.
func Run(inventory []reader.KindInventory) error {
	p := tea.NewProgram(NewPendingModel(inventory), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderStatic renders the browser view once, without entering the
// interactive program.
func RenderStatic(inventory []reader.KindInventory) string {
	m := NewPendingModel(inventory)
	m.width = 80
	m.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(m.View())
}
