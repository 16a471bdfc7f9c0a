package booking

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the storage contract for bookings.
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Booking, int, error)
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Booking, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus) error
}
