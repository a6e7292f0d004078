package ports

import (
	"context"

	"github.com/gabrielmilitaosantos/acquisitions/internal/core/domain"
)

// AuditRepository persists audit events.
type AuditRepository interface {
	// InsertEvent stores a single event in the audit collection.
	InsertEvent(ctx context.Context, event *domain.AuditEvent) error
	// ListByTarget returns the newest events about targetID first.
	ListByTarget(ctx context.Context, targetID int64, limit int) ([]domain.AuditEvent, error)
}
