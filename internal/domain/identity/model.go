package identity

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the patient-facing account record. The ID is the subject of the
// auth token, so profiles are created lazily on first write.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"fullName"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserRole grants a role to a user. Roles live in their own table and are the
// source of truth for authorization decisions, not token claims.
type UserRole struct {
	UserID    uuid.UUID `json:"userId"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

const RoleAdmin = "admin"
