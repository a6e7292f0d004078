package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gabrielmilitaosantos/acquisitions/internal/core/domain"
	"github.com/gabrielmilitaosantos/acquisitions/internal/core/ports"
)

const auditCollection = "user_audit"

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	col *mongo.Collection
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(auditCollection)}
}

var _ ports.AuditRepository = (*AuditRepository)(nil)

type auditDocument struct {
	ID         string    `bson:"_id"`
	Action     string    `bson:"action"`
	ActorID    int64     `bson:"actor_id"`
	ActorRole  string    `bson:"actor_role"`
	TargetID   int64     `bson:"target_id"`
	Fields     []string  `bson:"fields,omitempty"`
	OccurredAt time.Time `bson:"occurred_at"`
	RecordedAt time.Time `bson:"recorded_at"`
}

// InsertEvent persists an audit event. Re-inserting the same event ID is a
// no-op so that a retried worker does not duplicate entries.
func (r *AuditRepository) InsertEvent(ctx context.Context, event *domain.AuditEvent) error {
	doc := auditDocument{
		ID:         event.ID,
		Action:     string(event.Action),
		ActorID:    event.ActorID,
		ActorRole:  string(event.ActorRole),
		TargetID:   event.TargetID,
		Fields:     event.Fields,
		OccurredAt: event.OccurredAt.UTC(),
		RecordedAt: time.Now().UTC(),
	}

	_, err := r.col.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

// ListByTarget returns up to limit events about targetID, newest first.
func (r *AuditRepository) ListByTarget(ctx context.Context, targetID int64, limit int) ([]domain.AuditEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.col.Find(ctx, bson.M{"target_id": targetID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []auditDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	events := make([]domain.AuditEvent, 0, len(docs))
	for _, d := range docs {
		events = append(events, d.toDomain())
	}
	return events, nil
}

func (d auditDocument) toDomain() domain.AuditEvent {
	return domain.AuditEvent{
		ID:         d.ID,
		Action:     domain.AuditAction(d.Action),
		ActorID:    d.ActorID,
		ActorRole:  domain.Role(d.ActorRole),
		TargetID:   d.TargetID,
		Fields:     d.Fields,
		OccurredAt: d.OccurredAt,
	}
}

// EnsureIndexes creates the indexes used to query a user's history.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "target_id", Value: 1}, {Key: "occurred_at", Value: -1}}},
		{Keys: bson.D{{Key: "actor_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
