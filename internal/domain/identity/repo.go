package identity

import (
	"context"

	"github.com/google/uuid"
)

// ProfileRepository is the storage contract for profiles.
type ProfileRepository interface {
	Upsert(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	List(ctx context.Context, limit, offset int) ([]*Profile, int, error)
}

// RoleRepository is the storage contract for role grants.
type RoleRepository interface {
	HasRole(ctx context.Context, userID uuid.UUID, role string) (bool, error)
	ListRoles(ctx context.Context, userID uuid.UUID) ([]string, error)
	Grant(ctx context.Context, userID uuid.UUID, role string) error
	Revoke(ctx context.Context, userID uuid.UUID, role string) error
}
