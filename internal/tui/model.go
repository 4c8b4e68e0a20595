package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/neonlink/neonlink-scriptd/internal/supervisor"
)

// refreshInterval is how often the dashboard polls the registry.
const refreshInterval = 500 * time.Millisecond

// TickMsg is sent periodically to refresh the display.
type TickMsg time.Time

// SnapshotSource provides run-table snapshots. *supervisor.Registry
// satisfies it.
type SnapshotSource interface {
	List() []supervisor.RunRecord
	ActiveCount() int
}

// Model represents the dashboard state.
type Model struct {
	source    SnapshotSource
	records   []supervisor.RunRecord
	active    int
	startTime time.Time

	width  int
	height int

	quitting bool
}

// New creates a dashboard model polling source.
func New(source SnapshotSource) Model {
	return Model{
		source:    source,
		startTime: time.Now(),
		width:     80,
		height:    24,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case TickMsg:
		if m.source != nil {
			m.records = m.source.List()
			m.active = m.source.ActiveCount()
		}
		return m, tick()
	}
	return m, nil
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
