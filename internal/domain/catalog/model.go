package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Lab is a partner diagnostic laboratory.
type Lab struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Address        string    `json:"address"`
	Phone          string    `json:"phone"`
	Rating         float64   `json:"rating"`
	OperatingHours string    `json:"operatingHours"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Test is a bookable diagnostic test. A test may be offered by a specific
// lab or be lab-agnostic.
type Test struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       int        `json:"price"`
	LabID       *uuid.UUID `json:"labId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
