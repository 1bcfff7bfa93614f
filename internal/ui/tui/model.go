package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/tcstack/internal/provisioning"
)

// NodeRow is the display state of one graph node.
type NodeRow struct {
	ID       string
	Kind     provisioning.Kind
	Stage    int
	Status   provisioning.Status
	Duration time.Duration
	Err      error
}

// Model is the Bubble Tea model for the TUI dashboard.
type Model struct {
	StackName string
	Mode      string // "apply", "destroy"

	Nodes []NodeRow
	index map[string]int

	StartTime time.Time

	// Animation
	SpinnerFrame int

	// UI state
	Width  int
	Height int
	Err    error
	Done   bool
}

// NewModel creates a model listing every node of g grouped by stage.
func NewModel(mode, stackName string, g *provisioning.Graph) (Model, error) {
	levels, err := g.Levels()
	if err != nil {
		return Model{}, fmt.Errorf("failed to order graph: %w", err)
	}

	m := Model{
		StackName: stackName,
		Mode:      mode,
		StartTime: time.Now(),
		index:     make(map[string]int, g.Len()),
	}
	for stage, ids := range levels {
		for _, id := range ids {
			n, _ := g.Node(id)
			m.index[id] = len(m.Nodes)
			m.Nodes = append(m.Nodes, NodeRow{
				ID:     id,
				Kind:   n.Kind,
				Stage:  stage,
				Status: provisioning.StatusPending,
			})
		}
	}
	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case NodeEventMsg:
		m.applyEvent(msg.Event)

	case TickMsg:
		m.SpinnerFrame++
		return m, tickCmd()

	case ErrMsg:
		m.Err = msg.Err
		return m, tea.Quit

	case DoneMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) applyEvent(e provisioning.Event) {
	i, ok := m.index[e.Node]
	if !ok {
		return
	}
	row := &m.Nodes[i]
	switch e.Type {
	case provisioning.EventNodeStarted:
		row.Status = provisioning.StatusRunning
	case provisioning.EventNodeCompleted:
		row.Status = provisioning.StatusCompleted
		row.Duration = e.Duration
	case provisioning.EventNodeFailed:
		row.Status = provisioning.StatusFailed
		row.Duration = e.Duration
		row.Err = e.Err
	case provisioning.EventNodeSkipped:
		row.Status = provisioning.StatusSkipped
	}
}

// Count returns the number of nodes in status s.
func (m Model) Count(s provisioning.Status) int {
	n := 0
	for _, row := range m.Nodes {
		if row.Status == s {
			n++
		}
	}
	return n
}

// Row returns the display state of node id.
func (m Model) Row(id string) (NodeRow, bool) {
	i, ok := m.index[id]
	if !ok {
		return NodeRow{}, false
	}
	return m.Nodes[i], true
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	return renderView(m)
}
