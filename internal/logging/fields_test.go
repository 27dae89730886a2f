package logging

import (
	"errors"
	"log/slog"
	"testing"
)

func TestService(t *testing.T) {
	attr := Service("tracksync")
	if attr.Key != FieldService {
		t.Errorf("expected key %q, got %q", FieldService, attr.Key)
	}
	if attr.Value.String() != "tracksync" {
		t.Errorf("expected value %q, got %q", "tracksync", attr.Value.String())
	}
}

func TestEventType(t *testing.T) {
	attr := EventType("jira:issue_created")
	if attr.Key != FieldEventType {
		t.Errorf("expected key %q, got %q", FieldEventType, attr.Key)
	}
	if attr.Value.String() != "jira:issue_created" {
		t.Errorf("expected value %q, got %q", "jira:issue_created", attr.Value.String())
	}
}

func TestExternalID(t *testing.T) {
	attr := ExternalID("PRJ-1")
	if attr.Key != FieldExternalID {
		t.Errorf("expected key %q, got %q", FieldExternalID, attr.Key)
	}
	if attr.Value.String() != "PRJ-1" {
		t.Errorf("expected value %q, got %q", "PRJ-1", attr.Value.String())
	}
}

func TestOutcome(t *testing.T) {
	attr := Outcome("merged")
	if attr.Key != FieldOutcome {
		t.Errorf("expected key %q, got %q", FieldOutcome, attr.Key)
	}
	if attr.Value.String() != "merged" {
		t.Errorf("expected value %q, got %q", "merged", attr.Value.String())
	}
}

func TestError(t *testing.T) {
	attr := Error(errors.New("boom"))
	if attr.Key != FieldError {
		t.Errorf("expected key %q, got %q", FieldError, attr.Key)
	}
	if attr.Value.String() != "boom" {
		t.Errorf("expected value %q, got %q", "boom", attr.Value.String())
	}
}

func TestAttrsComposeWithLogger(t *testing.T) {
	logger := New(slog.LevelInfo, "json")
	child := logger.With(Service("tracksync"), EntityKind("issue"))
	if child == nil || child.Logger == nil {
		t.Fatal("expected composed logger")
	}
}
