package provisioning

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// DefaultParallelism is the number of nodes run at once when
// Options.Parallelism is not set.
const DefaultParallelism = 4

// Status is the execution state of a node.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Options configures Execute.
type Options struct {
	// Parallelism bounds the number of nodes running at once.
	Parallelism int
	// Observer receives node events. May be nil.
	Observer Observer
}

// NodeResult is the outcome of one node.
type NodeResult struct {
	ID       string
	Kind     Kind
	Status   Status
	Duration time.Duration
	Handle   Handle
	Err      error
}

// Result is the outcome of a graph run.
type Result struct {
	Nodes    map[string]*NodeResult
	Started  []string // node IDs in the order they were started
	Duration time.Duration
}

// Handle returns the handle of a completed node.
func (r *Result) Handle(id string) (Handle, bool) {
	n, ok := r.Nodes[id]
	if !ok || n.Status != StatusCompleted {
		return Handle{}, false
	}
	return n.Handle, true
}

// Count returns the number of nodes with the given status.
func (r *Result) Count(s Status) int {
	count := 0
	for _, n := range r.Nodes {
		if n.Status == s {
			count++
		}
	}
	return count
}

// WithStatus returns the IDs of the nodes with the given status, sorted.
func (r *Result) WithStatus(s Status) []string {
	var ids []string
	for id, n := range r.Nodes {
		if n.Status == s {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

type nodeDone struct {
	id       string
	handle   Handle
	err      error
	duration time.Duration
}

// Execute runs every node of g in dependency order. Nodes whose producers
// have all completed run concurrently, at most opts.Parallelism at a time.
//
// The first failing node cancels the context passed to running nodes. No
// further nodes start, running nodes are awaited, and every node that never
// started is marked skipped. The returned error wraps the first failure
// with its node ID. The Result is returned in every case except an invalid
// graph.
func Execute(ctx context.Context, g *Graph, opts Options) (*Result, error) {
	if err := g.Validate(); err != nil {
		recordRunMetric(err)
		return nil, err
	}

	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	observer := opts.Observer
	if observer == nil {
		observer = MultiObserver(nil)
	}

	start := time.Now()
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	result := &Result{Nodes: make(map[string]*NodeResult, g.Len())}
	indegree := make(map[string]int, g.Len())
	var ready []string
	for _, id := range g.IDs() {
		n := g.nodes[id]
		result.Nodes[id] = &NodeResult{ID: id, Kind: n.Kind, Status: StatusPending}
		indegree[id] = len(n.DependsOn)
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	emit := func(t EventType, r *NodeResult, msg string) {
		observer.Event(Event{
			Type:      t,
			Node:      r.ID,
			Kind:      r.Kind,
			Message:   msg,
			Duration:  r.Duration,
			Err:       r.Err,
			Timestamp: time.Now(),
		})
	}

	done := make(chan nodeDone, g.Len())
	running := 0
	var firstErr error

	for {
		for firstErr == nil && running < parallelism && len(ready) > 0 {
			if err := ctx.Err(); err != nil {
				firstErr = fmt.Errorf("execution canceled: %w", err)
				cancel()
				break
			}

			id := ready[0]
			ready = ready[1:]
			n := g.nodes[id]

			inputs := make(Inputs, len(n.DependsOn))
			for _, dep := range n.DependsOn {
				inputs[dep] = result.Nodes[dep].Handle.Clone()
			}

			r := result.Nodes[id]
			r.Status = StatusRunning
			result.Started = append(result.Started, id)
			emit(EventNodeStarted, r, n.Description)

			running++
			go runNode(runCtx, n, inputs, done)
		}

		if running == 0 {
			break
		}

		d := <-done
		running--
		r := result.Nodes[d.id]
		r.Duration = d.duration

		if d.err != nil {
			r.Status = StatusFailed
			r.Err = d.err
			recordNodeMetric(r.Kind, r.Status, d.duration.Seconds())
			emit(EventNodeFailed, r, d.err.Error())
			if firstErr == nil {
				firstErr = fmt.Errorf("node %s: %w", d.id, d.err)
				cancel()
			}
			continue
		}

		h := d.handle
		if h.Kind == "" {
			h.Kind = r.Kind
		}
		r.Status = StatusCompleted
		r.Handle = h
		recordNodeMetric(r.Kind, r.Status, d.duration.Seconds())
		emit(EventNodeCompleted, r, "")

		for _, dependent := range g.Dependents(d.id) {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = insertSorted(ready, dependent)
			}
		}
	}

	for _, id := range g.IDs() {
		r := result.Nodes[id]
		if r.Status == StatusPending {
			r.Status = StatusSkipped
			recordNodeMetric(r.Kind, r.Status, 0)
			emit(EventNodeSkipped, r, "")
		}
	}

	result.Duration = time.Since(start)
	recordRunMetric(firstErr)
	return result, firstErr
}

func runNode(ctx context.Context, n Node, in Inputs, done chan<- nodeDone) {
	start := time.Now()
	var (
		h   Handle
		err error
	)
	func() {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("panic: %v", p)
			}
		}()
		h, err = n.Run(ctx, in)
	}()
	done <- nodeDone{id: n.ID, handle: h, err: err, duration: time.Since(start)}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
