// Package dispatch maps event type tags to their processors. The mapping is
// data-driven: a new event type is one Register call plus one processor, not
// an edit to dispatch logic.
package dispatch

import (
	"errors"
	"fmt"

	"github.com/syncforge/tracksync/internal/processor"
	"github.com/syncforge/tracksync/internal/reconcile"
)

// ErrUnsupportedEventType is returned for event tags with no registered
// processor. The dispatcher fails closed.
var ErrUnsupportedEventType = errors.New("unsupported event type")

// Registry is a read-only lookup table once construction finishes. It is
// built at startup and shared across request workers without locking.
type Registry struct {
	processors map[string]processor.Processor
}

func NewRegistry(processors ...processor.Processor) *Registry {
	r := &Registry{processors: make(map[string]processor.Processor, len(processors))}
	for _, p := range processors {
		r.Register(p)
	}
	return r
}

// NewDefaultRegistry wires the six recognized (kind, operation) processors.
func NewDefaultRegistry(reconciler *reconcile.Reconciler) *Registry {
	return NewRegistry(
		processor.NewProjectCreated(reconciler),
		processor.NewProjectUpdated(reconciler),
		processor.NewProjectDeleted(reconciler),
		processor.NewIssueCreated(reconciler),
		processor.NewIssueUpdated(reconciler),
		processor.NewIssueDeleted(reconciler),
	)
}

func (r *Registry) Register(p processor.Processor) {
	r.processors[p.EventType()] = p
}

// Lookup returns the processor for an event type tag, or
// ErrUnsupportedEventType when none is registered.
func (r *Registry) Lookup(eventType string) (processor.Processor, error) {
	p, ok := r.processors[eventType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEventType, eventType)
	}
	return p, nil
}

// EventTypes lists the registered tags, for logs and diagnostics.
func (r *Registry) EventTypes() []string {
	types := make([]string, 0, len(r.processors))
	for t := range r.processors {
		types = append(types, t)
	}
	return types
}
