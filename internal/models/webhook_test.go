package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEventTime_UnmarshalJSON(t *testing.T) {
	want := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
	}{
		{"rfc3339 string", `"2025-01-01T00:00:00Z"`},
		{"epoch milliseconds", `1735689600000`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var et EventTime
			if err := json.Unmarshal([]byte(tt.raw), &et); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.raw, err)
			}
			if !et.Equal(want) {
				t.Errorf("time = %v, want %v", et.Time, want)
			}
		})
	}
}

func TestEventTime_UnmarshalInvalid(t *testing.T) {
	var et EventTime
	if err := json.Unmarshal([]byte(`"not a time"`), &et); err == nil {
		t.Error("expected error for invalid time string")
	}
}

func TestSnapshotModifiedAt(t *testing.T) {
	fallback := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	own := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	withOwn := &ProjectSnapshot{ID: "PRJ-1", LastModified: &EventTime{Time: own}}
	if got := withOwn.ModifiedAt(fallback); !got.Equal(own) {
		t.Errorf("ModifiedAt = %v, want snapshot's own time %v", got, own)
	}

	withoutOwn := &ProjectSnapshot{ID: "PRJ-1"}
	if got := withoutOwn.ModifiedAt(fallback); !got.Equal(fallback) {
		t.Errorf("ModifiedAt = %v, want fallback %v", got, fallback)
	}

	zero := &IssueSnapshot{ID: "ISS-1", LastModified: &EventTime{}}
	if got := zero.ModifiedAt(fallback); !got.Equal(fallback) {
		t.Errorf("ModifiedAt with zero time = %v, want fallback %v", got, fallback)
	}
}
