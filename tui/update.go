package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hochfrequenz/nudge/internal/domain"
)

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "s":
			m.errMsg = ""
			if err := m.engine.Start(m.session); err != nil {
				if errors.Is(err, domain.ErrAlreadyRunning) {
					m.errMsg = "already running"
				} else {
					m.errMsg = err.Error()
				}
			}
			m.refresh()
		case "x":
			m.engine.Stop()
			m.refresh()
		case "r":
			m.refresh()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case TickMsg:
		m.refresh()
		return m, tickCmd()
	}

	return m, nil
}
