package ports

import (
	"context"

	"github.com/99minutos/user-product-api/internal/core/domain"
)

// AuditRepository persists authentication audit events.
type AuditRepository interface {
	InsertAuthEvent(ctx context.Context, event *domain.AuthEvent) error
}

// AuditRecorder accepts audit events without blocking the caller.
type AuditRecorder interface {
	Record(event domain.AuthEvent)
}
