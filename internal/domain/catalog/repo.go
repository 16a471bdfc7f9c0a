package catalog

import (
	"context"

	"github.com/google/uuid"
)

// LabRepository is the storage contract for labs.
type LabRepository interface {
	Create(ctx context.Context, l *Lab) error
	GetByID(ctx context.Context, id uuid.UUID) (*Lab, error)
	Update(ctx context.Context, l *Lab) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Lab, int, error)
}

// TestRepository is the storage contract for tests.
type TestRepository interface {
	Create(ctx context.Context, t *Test) error
	GetByID(ctx context.Context, id uuid.UUID) (*Test, error)
	Update(ctx context.Context, t *Test) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Test, int, error)
}
