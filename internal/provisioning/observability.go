package provisioning

import (
	"sync"
	"time"

	"github.com/go-logr/logr"
)

// Observer receives structured events while a graph executes. The executor
// never calls Event concurrently.
type Observer interface {
	Event(event Event)
}

// Event represents a structured provisioning event.
type Event struct {
	Type      EventType         // Type of event
	Node      string            // Node ID
	Kind      Kind              // Node kind
	Message   string            // Human-readable message
	Duration  time.Duration     // Set on completion and failure
	Err       error             // Set on failure
	Timestamp time.Time         // When the event occurred
	Fields    map[string]string // Additional contextual fields
}

// EventType represents the type of provisioning event.
type EventType string

const (
	// EventNodeStarted indicates a node has started running.
	EventNodeStarted EventType = "node.started"
	// EventNodeCompleted indicates a node completed successfully.
	EventNodeCompleted EventType = "node.completed"
	// EventNodeFailed indicates a node returned an error.
	EventNodeFailed EventType = "node.failed"
	// EventNodeSkipped indicates a node never started because the run failed.
	EventNodeSkipped EventType = "node.skipped"
)

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// Event implements Observer.
func (f ObserverFunc) Event(e Event) { f(e) }

// MultiObserver fans events out to several observers in order.
type MultiObserver []Observer

// Event implements Observer.
func (m MultiObserver) Event(e Event) {
	for _, o := range m {
		if o != nil {
			o.Event(e)
		}
	}
}

// LogObserver writes events to a logr.Logger. Starts are logged at V(1).
type LogObserver struct {
	log logr.Logger
}

// NewLogObserver returns an observer that logs to log.
func NewLogObserver(log logr.Logger) *LogObserver {
	return &LogObserver{log: log}
}

// Event implements Observer.
func (o *LogObserver) Event(e Event) {
	kv := []any{"node", e.Node, "kind", string(e.Kind)}
	for _, k := range sortedKeys(e.Fields) {
		kv = append(kv, k, e.Fields[k])
	}

	switch e.Type {
	case EventNodeStarted:
		o.log.V(1).Info("node started", kv...)
	case EventNodeCompleted:
		o.log.Info("node completed", append(kv, "duration", e.Duration.Round(time.Millisecond).String())...)
	case EventNodeFailed:
		o.log.Error(e.Err, "node failed", append(kv, "duration", e.Duration.Round(time.Millisecond).String())...)
	case EventNodeSkipped:
		o.log.Info("node skipped", kv...)
	default:
		o.log.Info(e.Message, kv...)
	}
}

// RecordingObserver keeps every event it receives. It is safe for
// concurrent use.
type RecordingObserver struct {
	mu     sync.Mutex
	events []Event
}

// Event implements Observer.
func (r *RecordingObserver) Event(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *RecordingObserver) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Of returns the node IDs of the recorded events of type t, in order.
func (r *RecordingObserver) Of(t EventType) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, e := range r.events {
		if e.Type == t {
			ids = append(ids, e.Node)
		}
	}
	return ids
}
