package partner

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus is the state of a partner application. Applications move
// from pending to exactly one decision and never change again.
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusApproved ApplicationStatus = "approved"
	StatusRejected ApplicationStatus = "rejected"
)

var validDecisions = map[ApplicationStatus]bool{
	StatusApproved: true,
	StatusRejected: true,
}

// Application is a lab owner's request to join the platform.
type Application struct {
	ID        uuid.UUID         `json:"id"`
	LabName   string            `json:"labName"`
	OwnerName string            `json:"ownerName"`
	Email     string            `json:"email"`
	Phone     string            `json:"phone"`
	Address   string            `json:"address"`
	Status    ApplicationStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}
