package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gabrielmilitaosantos/acquisitions/internal/core/domain"
	"github.com/gabrielmilitaosantos/acquisitions/internal/core/ports"
	"github.com/gabrielmilitaosantos/acquisitions/internal/infrastructure/metrics"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService implementation.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Record persists a single audit event. Missing IDs and timestamps are filled
// in before the write.
func (s *auditService) Record(ctx context.Context, event domain.AuditEvent) error {
	start := time.Now()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = start.UTC()
	}

	err := s.repo.InsertEvent(ctx, &event)
	metrics.AuditRecordDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AuditEventsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("record audit event %s: %w", event.ID, err)
	}
	metrics.AuditEventsTotal.WithLabelValues("recorded").Inc()

	s.log.Debug().
		Str("audit_id", event.ID).
		Str("action", string(event.Action)).
		Int64("user_id", event.TargetID).
		Int64("actor_id", event.ActorID).
		Msg("audit event recorded")

	return nil
}

// History returns the most recent events about targetID. limit is clamped
// to [1, 200]; zero means 50.
func (s *auditService) History(ctx context.Context, targetID int64, limit int) ([]domain.AuditEvent, error) {
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}

	events, err := s.repo.ListByTarget(ctx, targetID, limit)
	if err != nil {
		return nil, fmt.Errorf("audit history of user %d: %w", targetID, err)
	}
	return events, nil
}
