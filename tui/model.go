// Package tui is a thin terminal dashboard over the reminder engine: it
// renders status snapshots and forwards start/stop, nothing more.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hochfrequenz/nudge/internal/domain"
	"github.com/hochfrequenz/nudge/internal/engine"
)

// recentHistory is how many records the dashboard shows.
const recentHistory = 8

// HistoryReader supplies records for the dashboard.
type HistoryReader interface {
	Records() []domain.Record
}

// Model is the TUI application model
type Model struct {
	engine  *engine.Engine
	history HistoryReader
	session domain.SessionConfig

	snapshot engine.Snapshot
	records  []domain.Record
	errMsg   string

	width  int
	height int
}

// ModelConfig holds initial data for the TUI model
type ModelConfig struct {
	Engine  *engine.Engine
	History HistoryReader
	Session domain.SessionConfig
}

// NewModel creates a new TUI model
func NewModel(cfg ModelConfig) Model {
	m := Model{
		engine:  cfg.Engine,
		history: cfg.History,
		session: cfg.Session,
	}
	m.refresh()
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// TickMsg triggers a refresh
type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m *Model) refresh() {
	m.snapshot = m.engine.Status()

	records := m.history.Records()
	if len(records) > recentHistory {
		records = records[len(records)-recentHistory:]
	}
	m.records = records
}
