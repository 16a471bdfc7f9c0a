package booking

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// allowedTransitions is the booking state machine. States absent from the map
// are terminal.
var allowedTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from s.
func IsTerminal(s Status) bool {
	return len(allowedTransitions[s]) == 0
}

var validStatuses = map[Status]bool{
	StatusPending: true, StatusConfirmed: true,
	StatusCompleted: true, StatusCancelled: true,
}

// SampleType says where the sample is collected.
type SampleType string

const (
	SampleHome SampleType = "home"
	SampleLab  SampleType = "lab"
)

var validSampleTypes = map[SampleType]bool{
	SampleHome: true, SampleLab: true,
}

// PaymentStatus tracks whether the booking has been paid for.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// Booking is a patient's reservation of a diagnostic test at a slot. Test and
// lab names are denormalized at creation time so the record stays readable
// even if catalog entries change later.
type Booking struct {
	ID              uuid.UUID     `json:"id"`
	UserID          uuid.UUID     `json:"userId"`
	TestID          uuid.UUID     `json:"testId"`
	LabID           *uuid.UUID    `json:"labId,omitempty"`
	TestName        string        `json:"testName"`
	LabName         string        `json:"labName"`
	AppointmentDate time.Time     `json:"appointmentDate"`
	AppointmentTime string        `json:"appointmentTime"`
	PatientName     string        `json:"patientName"`
	PatientAge      int           `json:"patientAge"`
	PatientGender   string        `json:"patientGender"`
	PatientPhone    string        `json:"patientPhone"`
	PatientEmail    string        `json:"patientEmail"`
	SampleType      SampleType    `json:"sampleType"`
	Address         string        `json:"address,omitempty"`
	Price           int           `json:"price"`
	PaymentStatus   PaymentStatus `json:"paymentStatus"`
	Status          Status        `json:"status"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// TestInfo is the catalog data the booking service needs at creation time.
type TestInfo struct {
	ID      uuid.UUID
	Name    string
	Price   int
	LabID   *uuid.UUID
	LabName string
}
