// Package dlq records non-retriable rejected payloads so operators can
// inspect and replay them. The delivering system gets its 4xx either way;
// the DLQ preserves the evidence.
package dlq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/syncforge/tracksync/internal/metrics"
)

// Writer records a rejected payload with the failure that caused it.
type Writer interface {
	Write(ctx context.Context, raw []byte, cause error, reason string) error
	Close()
}

// FailedWebhook is the DLQ entry format.
type FailedWebhook struct {
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
	Error     string          `json:"error"`
	Reason    string          `json:"reason"`
}

const streamName = "TRACKSYNC_DLQ"

// JetStreamQueue writes rejected payloads to NATS JetStream. Safe for use
// across multiple service instances.
type JetStreamQueue struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	stream  jetstream.Stream
	written uint64
}

// NewJetStreamQueue connects to NATS and creates or updates the DLQ stream.
func NewJetStreamQueue(ctx context.Context, natsURL string) (*JetStreamQueue, error) {
	conn, err := nats.Connect(natsURL,
		nats.Name("tracksync-dlq"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      streamName,
		Subjects:  []string{"tracksync.dlq.>"},
		MaxAge:    7 * 24 * time.Hour,
		MaxBytes:  1024 * 1024 * 1024,
		Retention: jetstream.LimitsPolicy,
		Storage:   jetstream.FileStorage,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create dlq stream: %w", err)
	}

	slog.Info("DLQ stream ready", slog.String("stream", streamName))

	return &JetStreamQueue{
		conn:   conn,
		js:     js,
		stream: stream,
	}, nil
}

// Write publishes a rejected payload under tracksync.dlq.<reason>.
func (q *JetStreamQueue) Write(ctx context.Context, raw []byte, cause error, reason string) error {
	failed := FailedWebhook{
		Timestamp: time.Now().UTC(),
		Payload:   raw,
		Error:     cause.Error(),
		Reason:    reason,
	}

	data, err := json.Marshal(failed)
	if err != nil {
		return fmt.Errorf("marshal dlq entry: %w", err)
	}

	subject := fmt.Sprintf("tracksync.dlq.%s", reason)
	if _, err := q.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("publish dlq entry: %w", err)
	}

	atomic.AddUint64(&q.written, 1)
	metrics.DLQWritten.WithLabelValues(reason).Inc()
	return nil
}

// Stats returns DLQ counters from JetStream.
func (q *JetStreamQueue) Stats(ctx context.Context) map[string]interface{} {
	info, err := q.stream.Info(ctx)
	if err != nil {
		return map[string]interface{}{
			"backend":       "jetstream",
			"written_local": atomic.LoadUint64(&q.written),
			"error":         err.Error(),
		}
	}
	return map[string]interface{}{
		"backend":       "jetstream",
		"written_local": atomic.LoadUint64(&q.written),
		"messages":      info.State.Msgs,
		"bytes":         info.State.Bytes,
	}
}

func (q *JetStreamQueue) Close() {
	q.conn.Close()
}
