package viatico

import (
	"context"

	"github.com/viaticos/backend/internal/domain/audit"
	"go.uber.org/zap"
)

// auditRecorder forwards events to the sink after commit.
// Failures are logged and never returned to the caller.
type auditRecorder struct {
	sink   audit.Sink
	logger *zap.Logger
}

func newAuditRecorder(sink audit.Sink, logger *zap.Logger) *auditRecorder {
	return &auditRecorder{sink: sink, logger: logger}
}

func (a *auditRecorder) record(ctx context.Context, events ...audit.Event) {
	if a.sink == nil {
		return
	}
	for _, e := range events {
		if err := a.sink.Record(ctx, e); err != nil {
			// Non-blocking: the business change is already committed
			a.logger.Error("Failed to record audit event",
				zap.String("entity", e.Entity),
				zap.String("entity_id", e.EntityID.String()),
				zap.String("action", e.Action),
				zap.Error(err))
		}
	}
}
