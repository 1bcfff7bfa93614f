package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/tcstack/internal/provisioning"
)

func noopRun(_ context.Context, in provisioning.Inputs) (provisioning.Handle, error) {
	return provisioning.Handle{}, nil
}

func testGraph(t *testing.T) *provisioning.Graph {
	t.Helper()
	g := provisioning.NewGraph()
	nodes := []provisioning.Node{
		{ID: "password/teamcity-1", Kind: provisioning.KindPassword},
		{ID: "role/teamcity-1", Kind: provisioning.KindRole, DependsOn: []string{"password/teamcity-1"}},
		{ID: "database/teamcity-1", Kind: provisioning.KindDatabase, DependsOn: []string{"role/teamcity-1"}},
	}
	for _, n := range nodes {
		n.Run = noopRun
		if err := g.Add(n); err != nil {
			t.Fatalf("Add(%s): %v", n.ID, err)
		}
	}
	return g
}

func testModel(t *testing.T) Model {
	t.Helper()
	m, err := NewModel("apply", "ci", testGraph(t))
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

func send(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func event(typ provisioning.EventType, node string) NodeEventMsg {
	return NodeEventMsg{Event: provisioning.Event{Type: typ, Node: node}}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{30 * time.Second, "30s"},
		{90 * time.Second, "1m30s"},
		{3600 * time.Second, "1h0m"},
		{3661 * time.Second, "1h1m"},
	}
	for _, tt := range tests {
		got := formatDuration(tt.d)
		if got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestNewModel_OrdersByStage(t *testing.T) {
	m := testModel(t)
	if len(m.Nodes) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(m.Nodes))
	}
	want := []string{"password/teamcity-1", "role/teamcity-1", "database/teamcity-1"}
	for i, id := range want {
		if m.Nodes[i].ID != id {
			t.Errorf("row %d = %q, want %q", i, m.Nodes[i].ID, id)
		}
		if m.Nodes[i].Stage != i {
			t.Errorf("row %d stage = %d, want %d", i, m.Nodes[i].Stage, i)
		}
		if m.Nodes[i].Status != provisioning.StatusPending {
			t.Errorf("row %d status = %s, want pending", i, m.Nodes[i].Status)
		}
	}
}

func TestNewModel_InvalidGraph(t *testing.T) {
	g := provisioning.NewGraph()
	if err := g.Add(provisioning.Node{ID: "a", Kind: provisioning.KindRole, DependsOn: []string{"missing"}, Run: noopRun}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := NewModel("apply", "ci", g); err == nil {
		t.Error("expected error for unknown dependency")
	}
}

func TestModelUpdate_NodeEvents(t *testing.T) {
	m := testModel(t)

	m = send(m, event(provisioning.EventNodeStarted, "password/teamcity-1"))
	row, _ := m.Row("password/teamcity-1")
	if row.Status != provisioning.StatusRunning {
		t.Errorf("expected running, got %s", row.Status)
	}

	done := event(provisioning.EventNodeCompleted, "password/teamcity-1")
	done.Event.Duration = 2 * time.Second
	m = send(m, done)
	row, _ = m.Row("password/teamcity-1")
	if row.Status != provisioning.StatusCompleted || row.Duration != 2*time.Second {
		t.Errorf("unexpected row after completion: %+v", row)
	}

	failed := event(provisioning.EventNodeFailed, "role/teamcity-1")
	failed.Event.Err = errors.New("permission denied")
	m = send(m, failed)
	m = send(m, event(provisioning.EventNodeSkipped, "database/teamcity-1"))

	if got := m.Count(provisioning.StatusFailed); got != 1 {
		t.Errorf("failed count = %d, want 1", got)
	}
	if got := m.Count(provisioning.StatusSkipped); got != 1 {
		t.Errorf("skipped count = %d, want 1", got)
	}
	if p := calculateProgress(m); p != 1.0 {
		t.Errorf("expected progress 1.0 once every node finished, got %v", p)
	}
}

func TestModelUpdate_UnknownNodeIgnored(t *testing.T) {
	m := testModel(t)
	m = send(m, event(provisioning.EventNodeStarted, "release/other"))
	if got := m.Count(provisioning.StatusPending); got != 3 {
		t.Errorf("pending count = %d, want 3", got)
	}
}

func TestModelUpdate_DoneAndErr(t *testing.T) {
	m := testModel(t)

	next, cmd := m.Update(DoneMsg{})
	if !next.(Model).Done {
		t.Error("expected Done")
	}
	if cmd == nil {
		t.Error("expected quit command")
	}

	next, _ = m.Update(ErrMsg{Err: errors.New("boom")})
	if next.(Model).Err == nil {
		t.Error("expected Err to be set")
	}
}

func TestModelUpdate_Tick(t *testing.T) {
	m := testModel(t)
	m = send(m, TickMsg{})
	if m.SpinnerFrame != 1 {
		t.Errorf("SpinnerFrame = %d, want 1", m.SpinnerFrame)
	}
}

func TestCalculateProgress(t *testing.T) {
	m := testModel(t)
	if p := calculateProgress(m); p != 0 {
		t.Errorf("expected 0, got %v", p)
	}
	m = send(m, event(provisioning.EventNodeCompleted, "password/teamcity-1"))
	if p := calculateProgress(m); p < 0.33 || p > 0.34 {
		t.Errorf("expected ~0.33, got %v", p)
	}
	if p := calculateProgress(Model{Done: true}); p != 1.0 {
		t.Errorf("expected 1.0 when done, got %v", p)
	}
}

func TestRenderView(t *testing.T) {
	m := testModel(t)
	failed := event(provisioning.EventNodeFailed, "role/teamcity-1")
	failed.Event.Err = errors.New("permission denied")
	m = send(m, failed)

	view := m.View()
	for _, want := range []string{"tcstack apply: ci", "Stage 1", "Stage 3", "role/teamcity-1", "permission denied", "q: quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

type recordingSender struct {
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) { r.msgs = append(r.msgs, msg) }

func TestObserverForwardsEvents(t *testing.T) {
	s := &recordingSender{}
	obs := Observer(s)
	obs.Event(provisioning.Event{Type: provisioning.EventNodeStarted, Node: "role/teamcity-1"})

	if len(s.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(s.msgs))
	}
	msg, ok := s.msgs[0].(NodeEventMsg)
	if !ok || msg.Event.Node != "role/teamcity-1" {
		t.Errorf("unexpected message %#v", s.msgs[0])
	}
}
