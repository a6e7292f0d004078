package ports

import (
	"context"

	"github.com/gabrielmilitaosantos/acquisitions/internal/core/domain"
)

// AuditService records user mutations in the audit trail and reads them back.
type AuditService interface {
	Record(ctx context.Context, event domain.AuditEvent) error
	History(ctx context.Context, targetID int64, limit int) ([]domain.AuditEvent, error)
}

// AuditSink accepts audit events for asynchronous recording. Enqueue never
// blocks; it reports false when the event was dropped.
type AuditSink interface {
	Enqueue(event domain.AuditEvent) bool
}
