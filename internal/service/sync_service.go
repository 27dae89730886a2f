package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/syncforge/tracksync/internal/dispatch"
	"github.com/syncforge/tracksync/internal/dlq"
	"github.com/syncforge/tracksync/internal/metrics"
	"github.com/syncforge/tracksync/internal/models"
	"github.com/syncforge/tracksync/internal/parser"
	"github.com/syncforge/tracksync/internal/processor"
	"github.com/syncforge/tracksync/internal/repository"
)

// Disposition tells the endpoint adapter how to answer the delivering
// system. Retriable failures must map to 5xx so the source retries;
// idempotent processing makes the retry safe.
type Disposition int

const (
	DispositionAccepted  Disposition = iota // 2xx, applied (or stale no-op)
	DispositionIgnored                      // 2xx, accepted but ignored
	DispositionRejected                     // 4xx, non-retriable
	DispositionRetriable                    // 5xx, safe to retry
)

// Result is the outcome of one pipeline pass.
type Result struct {
	Disposition Disposition
	Response    models.WebhookResponse
}

// SyncService runs the parse, classify, upsert pipeline for one inbound
// notification. Each request is processed on its own goroutine; the store
// is the only shared resource.
type SyncService struct {
	registry      *dispatch.Registry
	dlqWriter     dlq.Writer
	acceptUnknown bool

	stats   models.SyncStats
	statsMu sync.RWMutex
}

func NewSyncService(registry *dispatch.Registry, dlqWriter dlq.Writer, acceptUnknown bool) *SyncService {
	return &SyncService{
		registry:      registry,
		dlqWriter:     dlqWriter,
		acceptUnknown: acceptUnknown,
	}
}

// Process takes the raw request body through the full pipeline. Parse and
// classify failures never reach the persistence layer; persistence failures
// propagate so the caller can signal a retry.
func (s *SyncService) Process(ctx context.Context, raw []byte) Result {
	start := time.Now()
	defer func() {
		metrics.ProcessingDuration.Observe(time.Since(start).Seconds())
	}()
	metrics.PayloadBytesTotal.Add(float64(len(raw)))

	envelope, err := parser.Parse(raw)
	if err != nil {
		slog.Warn("malformed webhook payload", slog.String("error", err.Error()))
		s.recordEvent(len(raw), false)
		s.deadLetter(ctx, raw, err, "malformed_payload")
		return rejected("malformed payload: " + err.Error())
	}

	logger := slog.With(slog.String("event_type", envelope.EventType))

	proc, err := s.registry.Lookup(envelope.EventType)
	if err != nil {
		s.recordEvent(len(raw), false)
		if s.acceptUnknown {
			logger.Info("unsupported event type ignored")
			metrics.WebhooksTotal.WithLabelValues(envelope.EventType, "unsupported").Inc()
			return Result{
				Disposition: DispositionIgnored,
				Response: models.WebhookResponse{
					Status: models.StatusAccepted,
					Reason: "unsupported event type ignored",
				},
			}
		}
		logger.Warn("unsupported event type rejected")
		metrics.WebhooksTotal.WithLabelValues(envelope.EventType, "unsupported").Inc()
		s.deadLetter(ctx, raw, err, "unsupported_event_type")
		return rejected(err.Error())
	}

	outcome, err := proc.Process(ctx, envelope)
	if err != nil {
		if errors.Is(err, processor.ErrValidation) {
			logger.Warn("webhook validation failed", slog.String("error", err.Error()))
			s.recordEvent(len(raw), false)
			metrics.WebhooksTotal.WithLabelValues(envelope.EventType, "validation_error").Inc()
			s.deadLetter(ctx, raw, err, "validation_error")
			return rejected(err.Error())
		}

		// Persistence failures propagate unmodified; the delivering
		// system retries and idempotence makes that safe.
		logger.Error("webhook processing failed", slog.String("error", err.Error()))
		s.recordEvent(len(raw), false)
		metrics.WebhooksTotal.WithLabelValues(envelope.EventType, "error").Inc()
		metrics.StorageErrors.Inc()
		reason := "internal error"
		if errors.Is(err, repository.ErrConflict) {
			reason = "persistence conflict, retry"
		}
		return Result{
			Disposition: DispositionRetriable,
			Response: models.WebhookResponse{
				Status: models.StatusRejected,
				Reason: reason,
			},
		}
	}

	logger.Info("webhook applied", slog.String("outcome", string(outcome)))
	s.recordEvent(len(raw), true)
	if outcome == models.OutcomeNoOpStale {
		s.recordStale()
	}
	metrics.WebhooksTotal.WithLabelValues(envelope.EventType, string(outcome)).Inc()

	return Result{
		Disposition: DispositionAccepted,
		Response: models.WebhookResponse{
			Status:  models.StatusAccepted,
			Outcome: outcome,
		},
	}
}

func rejected(reason string) Result {
	return Result{
		Disposition: DispositionRejected,
		Response: models.WebhookResponse{
			Status: models.StatusRejected,
			Reason: reason,
		},
	}
}

func (s *SyncService) deadLetter(ctx context.Context, raw []byte, cause error, reason string) {
	if s.dlqWriter == nil {
		return
	}
	if err := s.dlqWriter.Write(ctx, raw, cause, reason); err != nil {
		slog.Error("failed to write to DLQ",
			slog.String("reason", reason),
			slog.String("error", err.Error()),
		)
	}
}

func (s *SyncService) recordEvent(bytes int, accepted bool) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()

	s.stats.TotalEvents++
	s.stats.TotalBytes += int64(bytes)
	s.stats.LastEvent = time.Now()
	if accepted {
		s.stats.AcceptedEvents++
	} else {
		s.stats.RejectedEvents++
	}
}

func (s *SyncService) recordStale() {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.stats.StaleEvents++
}

func (s *SyncService) Stats() models.SyncStats {
	s.statsMu.RLock()
	defer s.statsMu.RUnlock()
	return s.stats
}
