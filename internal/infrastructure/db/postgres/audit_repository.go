package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/99minutos/user-product-api/internal/core/domain"
)

type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) InsertAuthEvent(ctx context.Context, e *domain.AuthEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO auth_events (id, type, email, outcome, ip, occurred_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, string(e.Type), e.Email, string(e.Outcome), e.IP, e.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}
