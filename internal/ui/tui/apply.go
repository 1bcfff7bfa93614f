package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/tcstack/internal/provisioning"
)

// ExecFunc runs a graph, reporting events to the given observer.
type ExecFunc func(ctx context.Context, observer provisioning.Observer) error

// RunGraphTUI wraps a graph execution with a Bubble Tea TUI. exec runs in a
// background goroutine and its events drive the node table. It returns
// only after exec has returned; quitting the TUI early cancels the run.
func RunGraphTUI(ctx context.Context, mode, stackName string, g *provisioning.Graph, exec ExecFunc) error {
	m, err := NewModel(mode, stackName, g)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	execErr := make(chan error, 1)
	go func() {
		err := exec(ctx, Observer(p))
		execErr <- err
		if err != nil {
			p.Send(ErrMsg{Err: err})
			return
		}
		p.Send(DoneMsg{})
	}()

	_, runErr := p.Run()
	cancel()
	err = <-execErr

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) && err == nil {
		return fmt.Errorf("TUI error: %w", runErr)
	}
	return err
}

// Sender is the part of *tea.Program the observer needs.
type Sender interface {
	Send(msg tea.Msg)
}

// Observer forwards executor events to a Bubble Tea program.
func Observer(s Sender) provisioning.Observer {
	return provisioning.ObserverFunc(func(e provisioning.Event) {
		s.Send(NodeEventMsg{Event: e})
	})
}
