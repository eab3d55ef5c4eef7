package memory

import (
	"context"
	"sync"

	"github.com/99minutos/user-product-api/internal/core/domain"
)

// AuditRepository keeps audit events in insertion order.
type AuditRepository struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

func (r *AuditRepository) InsertAuthEvent(ctx context.Context, event *domain.AuthEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *event)
	return nil
}

// Events returns a copy of the stored events.
func (r *AuditRepository) Events() []domain.AuthEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuthEvent, len(r.events))
	copy(out, r.events)
	return out
}
