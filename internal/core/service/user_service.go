package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gabrielmilitaosantos/acquisitions/internal/core/domain"
	"github.com/gabrielmilitaosantos/acquisitions/internal/core/policy"
	"github.com/gabrielmilitaosantos/acquisitions/internal/core/ports"
	"github.com/gabrielmilitaosantos/acquisitions/internal/infrastructure/metrics"
)

// UserOptions toggles optional rules of the user service.
type UserOptions struct {
	// GuardLastAdminDemotion denies the last admin removing their own admin
	// role. Off by default.
	GuardLastAdminDemotion bool
}

// UserService runs the user use-cases: policy check, repository call, then
// the non-fatal side effects (token revocation and audit).
type UserService struct {
	repo        ports.UserRepository
	revocations ports.RevocationStore // optional
	audit       ports.AuditSink       // optional
	opts        UserOptions
	logger      zerolog.Logger
	now         func() time.Time
}

func NewUserService(
	repo ports.UserRepository,
	revocations ports.RevocationStore,
	audit ports.AuditSink,
	opts UserOptions,
	logger zerolog.Logger,
) *UserService {
	return &UserService{
		repo:        repo,
		revocations: revocations,
		audit:       audit,
		opts:        opts,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// ListAll returns every user. Admin only.
func (s *UserService) ListAll(ctx context.Context, actor domain.Identity) ([]domain.User, error) {
	if err := s.authorize(actor, policy.ListAll(actor)); err != nil {
		return nil, err
	}

	users, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// GetByID returns a single user. Any authenticated identity may read any user.
func (s *UserService) GetByID(ctx context.Context, actor domain.Identity, id int64) (*domain.User, error) {
	if !policy.CanView(actor, id) {
		return nil, &domain.ForbiddenError{Reason: domain.ReasonNotSelf}
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return user, nil
}

// Update applies a partial update to user id.
func (s *UserService) Update(ctx context.Context, actor domain.Identity, id int64, changes domain.UserChanges) (*domain.User, error) {
	if changes.Empty() {
		return nil, &domain.ValidationError{Details: []string{"body: at least one field must be provided for update"}}
	}

	if err := s.authorize(actor, policy.CanUpdate(actor, id, changes.Fields())); err != nil {
		return nil, err
	}

	if s.opts.GuardLastAdminDemotion && policy.NeedsAdminCount(actor, id) && changes.Demotes() {
		count, err := s.repo.CountAdmins(ctx)
		if err != nil {
			return nil, fmt.Errorf("update user %d: count admins: %w", id, err)
		}
		if err := s.authorize(actor, policy.CanDemote(actor, id, changes, count)); err != nil {
			return nil, err
		}
	}

	user, err := s.repo.Update(ctx, id, changes)
	observeMutation(domain.AuditUpdate, err)
	if err != nil {
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}

	s.logger.Info().
		Int64("user_id", id).
		Int64("updated_by", actor.ID).
		Strs("fields", changes.Fields()).
		Msg("user updated")

	// Tokens carry the role, so a role change must invalidate the old ones.
	if changes.Role != nil {
		s.revokeUser(ctx, id)
	}
	s.record(domain.AuditUpdate, actor, id, changes.Fields())

	return user, nil
}

// Delete removes user id and returns its summary.
func (s *UserService) Delete(ctx context.Context, actor domain.Identity, id int64) (*domain.UserSummary, error) {
	adminCount := 0
	if policy.NeedsAdminCount(actor, id) {
		count, err := s.repo.CountAdmins(ctx)
		if err != nil {
			return nil, fmt.Errorf("delete user %d: count admins: %w", id, err)
		}
		adminCount = count
	}

	if err := s.authorize(actor, policy.CanDelete(actor, id, adminCount)); err != nil {
		return nil, err
	}

	summary, err := s.repo.Delete(ctx, id)
	observeMutation(domain.AuditDelete, err)
	if err != nil {
		return nil, fmt.Errorf("delete user %d: %w", id, err)
	}

	s.logger.Info().
		Int64("user_id", id).
		Int64("deleted_by", actor.ID).
		Msg("user deleted")

	s.revokeUser(ctx, id)
	s.record(domain.AuditDelete, actor, id, nil)

	return summary, nil
}

func (s *UserService) authorize(actor domain.Identity, d policy.Decision) error {
	if d.Allowed {
		return nil
	}
	metrics.PolicyDenialsTotal.WithLabelValues(string(d.Reason)).Inc()
	s.logger.Debug().
		Int64("actor_id", actor.ID).
		Str("reason", string(d.Reason)).
		Msg("policy denied request")
	return d.Err()
}

func (s *UserService) revokeUser(ctx context.Context, id int64) {
	if s.revocations == nil {
		return
	}
	if err := s.revocations.RevokeUser(ctx, id, s.now()); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", id).Msg("failed to revoke user tokens")
	}
}

func (s *UserService) record(action domain.AuditAction, actor domain.Identity, target int64, fields []string) {
	if s.audit == nil {
		return
	}
	event := domain.AuditEvent{
		ID:         uuid.NewString(),
		Action:     action,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		TargetID:   target,
		Fields:     fields,
		OccurredAt: s.now(),
	}
	if !s.audit.Enqueue(event) {
		s.logger.Warn().
			Str("action", string(action)).
			Int64("user_id", target).
			Msg("audit event dropped")
	}
}

func observeMutation(action domain.AuditAction, err error) {
	result := "ok"
	if err != nil {
		switch domain.KindOf(err) {
		case domain.KindNotFound:
			result = "not_found"
		case domain.KindConflict:
			result = "conflict"
		default:
			result = "error"
		}
	}
	metrics.UserMutationsTotal.WithLabelValues(string(action), result).Inc()
}
