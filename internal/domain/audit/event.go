package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Audited entity names
const (
	EntityRequest   = "viatic_request"
	EntityRate      = "viatic_rate_history"
	EntityRendition = "viatic_rendition"
	EntityWorker    = "worker"
	EntityUser      = "user"
)

// Audit actions not named by a workflow action
const (
	ActionCreateRateChange    = "create_rate_change"
	ActionApplyRateChange     = "apply_rate_change"
	ActionCreateRate          = "create_rate"
	ActionUpsertRendition     = "upsert_rendition"
	ActionUpsertRenditionBulk = "upsert_rendition_bulk"
	ActionCreateWorker        = "create_worker"
	ActionCreateUser          = "create_user"
)

// Event is one audit record emitted after a committed change
type Event struct {
	Entity     string
	EntityID   uuid.UUID
	Action     string
	After      map[string]any
	ActorID    uuid.UUID
	OccurredAt time.Time
}

// NewEvent creates an event stamped now
func NewEvent(entity string, entityID uuid.UUID, action string, after map[string]any, actorID uuid.UUID) Event {
	return Event{
		Entity:     entity,
		EntityID:   entityID,
		Action:     action,
		After:      after,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
}

// Sink stores audit events. Callers treat it as best effort.
type Sink interface {
	Record(ctx context.Context, event Event) error
}
