// README: Domain event publishing (Kafka, log, or in-memory).
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"roadie/internal/types"
)

const (
	PackageCreated  = "package.created"
	PackageAccepted = "package.accepted"
	ShiftStarted    = "shift.started"
	ShiftTransition = "shift.transition"
)

// Event is one state change. Payload carries transition-specific fields.
type Event struct {
	Type        string         `json:"type"`
	AggregateID types.ID       `json:"aggregate_id"`
	ActorID     types.ID       `json:"actor_id,omitempty"`
	From        string         `json:"from,omitempty"`
	To          string         `json:"to,omitempty"`
	Payload     map[string]any `json:"payload,omitempty"`
	At          time.Time      `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// LogPublisher writes events to a structured logger at debug level.
type LogPublisher struct {
	log *slog.Logger
}

func NewLogPublisher(log *slog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(ctx context.Context, e Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	p.log.DebugContext(ctx, "domain_event", "type", e.Type, "event", json.RawMessage(b))
	return nil
}

// Memory keeps every published event; used by tests and the shift simulator.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func (m *Memory) Publish(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Types returns the event types in publish order.
func (m *Memory) Types() []string {
	evs := m.Events()
	out := make([]string, len(evs))
	for i, e := range evs {
		out[i] = e.Type
	}
	return out
}

// PublishBestEffort publishes e and logs, rather than returns, any failure.
func PublishBestEffort(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	if err := p.Publish(ctx, e); err != nil {
		slog.WarnContext(ctx, "publish_failed", "type", e.Type, "aggregate_id", string(e.AggregateID), "error", err)
	}
}
