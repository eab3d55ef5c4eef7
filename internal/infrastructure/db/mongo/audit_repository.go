package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/user-product-api/internal/core/domain"
)

const collectionAuthEvents = "auth_events"

// AuditRepository appends authentication events. Events are never updated.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionAuthEvents)}
}

type authEventDocument struct {
	ID         string    `bson:"_id"`
	Type       string    `bson:"type"`
	Email      string    `bson:"email"`
	Outcome    string    `bson:"outcome"`
	IP         string    `bson:"ip,omitempty"`
	OccurredAt time.Time `bson:"occurred_at"`
}

func (r *AuditRepository) InsertAuthEvent(ctx context.Context, e *domain.AuthEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, authEventDocument{
		ID:         e.ID,
		Type:       string(e.Type),
		Email:      e.Email,
		Outcome:    string(e.Outcome),
		IP:         e.IP,
		OccurredAt: e.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}

// EnsureIndexes supports per-account history queries, newest first.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}, {Key: "occurred_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create auth event indexes: %w", err)
	}
	return nil
}
