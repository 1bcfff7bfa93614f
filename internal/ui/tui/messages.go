// Package tui provides a Bubble Tea-based terminal UI for graph execution.
package tui

import "github.com/imamik/tcstack/internal/provisioning"

// NodeEventMsg carries an executor event for a single node.
type NodeEventMsg struct {
	Event provisioning.Event
}

// TickMsg is sent periodically to refresh the display.
type TickMsg struct{}

// ErrMsg carries an error.
type ErrMsg struct{ Err error }

// DoneMsg signals that the operation is complete.
type DoneMsg struct{}
