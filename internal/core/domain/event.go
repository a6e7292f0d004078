package domain

import "time"

// AuditAction names a mutation recorded in the audit trail.
type AuditAction string

const (
	AuditUpdate AuditAction = "update"
	AuditDelete AuditAction = "delete"
)

// AuditEvent records who changed which user and how.
type AuditEvent struct {
	ID         string      `json:"id"`
	Action     AuditAction `json:"action"`
	ActorID    int64       `json:"actor_id"`
	ActorRole  Role        `json:"actor_role"`
	TargetID   int64       `json:"target_id"`
	Fields     []string    `json:"fields,omitempty"` // updated field names; empty for deletes
	OccurredAt time.Time   `json:"occurred_at"`
}
