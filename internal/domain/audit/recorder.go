package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Entry is one audit fact emitted on a mutating operation. Persistence and
// querying belong to an external collaborator; the core only emits.
type Entry struct {
	ID         string
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	Before     interface{}
	After      interface{}
	Reason     string
	At         time.Time
}

// Recorder receives audit facts. Record must not fail the business operation:
// implementations swallow their own errors after reporting them.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

// NewEntry fills in the identity and timestamp for an audit fact.
func NewEntry(actorID, action, entityType, entityID string) Entry {
	return Entry{
		ID:         uuid.NewString(),
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		At:         time.Now().UTC(),
	}
}

// SlogRecorder writes audit facts to the structured log, where an external
// shipper picks them up.
type SlogRecorder struct {
	logger *slog.Logger
}

func NewSlogRecorder(logger *slog.Logger) *SlogRecorder {
	return &SlogRecorder{logger: logger}
}

func (r *SlogRecorder) Record(_ context.Context, entry Entry) {
	r.logger.Info("audit",
		slog.String("audit_id", entry.ID),
		slog.String("actor_id", entry.ActorID),
		slog.String("action", entry.Action),
		slog.String("entity_type", entry.EntityType),
		slog.String("entity_id", entry.EntityID),
		slog.Any("before", entry.Before),
		slog.Any("after", entry.After),
		slog.String("reason", entry.Reason),
		slog.Time("at", entry.At),
	)
}
