package partner

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the storage contract for partner applications.
type Repository interface {
	Create(ctx context.Context, a *Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*Application, error)
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Application, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status ApplicationStatus) error
}
