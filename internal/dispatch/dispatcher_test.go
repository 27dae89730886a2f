package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/syncforge/tracksync/internal/models"
	"github.com/syncforge/tracksync/internal/reconcile"
	"github.com/syncforge/tracksync/internal/repository"
)

func TestDefaultRegistry_KnownEventTypes(t *testing.T) {
	reconciler := reconcile.New(repository.NewInMemoryStore(), false)
	registry := NewDefaultRegistry(reconciler)

	known := []string{
		models.EventProjectCreated,
		models.EventProjectUpdated,
		models.EventProjectDeleted,
		models.EventIssueCreated,
		models.EventIssueUpdated,
		models.EventIssueDeleted,
	}

	for _, eventType := range known {
		t.Run(eventType, func(t *testing.T) {
			p, err := registry.Lookup(eventType)
			if err != nil {
				t.Fatalf("Lookup(%q) error = %v", eventType, err)
			}
			if p.EventType() != eventType {
				t.Errorf("processor EventType() = %q, want %q", p.EventType(), eventType)
			}
		})
	}

	if got := len(registry.EventTypes()); got != len(known) {
		t.Errorf("EventTypes() returned %d entries, want %d", got, len(known))
	}
}

func TestRegistry_UnknownEventType(t *testing.T) {
	reconciler := reconcile.New(repository.NewInMemoryStore(), false)
	registry := NewDefaultRegistry(reconciler)

	_, err := registry.Lookup("jira:widget_frobnicated")
	if !errors.Is(err, ErrUnsupportedEventType) {
		t.Errorf("Lookup() error = %v, want ErrUnsupportedEventType", err)
	}
}

type stubProcessor struct {
	eventType string
}

func (s *stubProcessor) EventType() string { return s.eventType }

func (s *stubProcessor) Process(ctx context.Context, env *models.WebhookEnvelope) (models.UpsertOutcome, error) {
	return models.OutcomeMerged, nil
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry(&stubProcessor{eventType: "jira:sprint_started"})

	p, err := registry.Lookup("jira:sprint_started")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if p.EventType() != "jira:sprint_started" {
		t.Errorf("EventType() = %q", p.EventType())
	}

	// Registering the same tag again replaces the processor.
	replacement := &stubProcessor{eventType: "jira:sprint_started"}
	registry.Register(replacement)
	p, err = registry.Lookup("jira:sprint_started")
	if err != nil {
		t.Fatalf("Lookup() after re-register error = %v", err)
	}
	if p != replacement {
		t.Error("Register should replace an existing processor for the same tag")
	}
}
