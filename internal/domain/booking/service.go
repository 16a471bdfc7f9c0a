package booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/patho/patho/internal/platform/notification"
	"github.com/patho/patho/internal/platform/realtime"
)

// CatalogReader resolves the catalog data a booking snapshots at creation.
type CatalogReader interface {
	TestInfo(ctx context.Context, testID uuid.UUID) (*TestInfo, error)
}

// AdminChecker answers whether a user holds the admin role. Implementations
// must fail closed: any lookup problem means "not admin".
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) bool
}

// Mailer sends templated notifications. Satisfied by notification.Manager.
type Mailer interface {
	SendFromTemplate(ctx context.Context, templateID string, data map[string]string, recipient string) (*notification.Notification, error)
}

type Service struct {
	repo      Repository
	catalog   CatalogReader
	admins    AdminChecker
	mailer    Mailer
	publisher realtime.EventPublisher
	logger    zerolog.Logger
}

func NewService(repo Repository, catalog CatalogReader, admins AdminChecker, mailer Mailer, publisher realtime.EventPublisher, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		catalog:   catalog,
		admins:    admins,
		mailer:    mailer,
		publisher: publisher,
		logger:    logger,
	}
}

// Create validates and stores a new booking. The price is always computed
// server-side from the catalog; any price on the incoming record is ignored.
// The slot conflict check happens at insert time via the unique index, so two
// concurrent requests for the same slot cannot both succeed.
func (s *Service) Create(ctx context.Context, b *Booking) error {
	if err := s.validateNew(b); err != nil {
		return err
	}

	info, err := s.catalog.TestInfo(ctx, b.TestID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: unknown test", ErrValidation)
		}
		return fmt.Errorf("test lookup: %w", err)
	}

	b.TestName = info.Name
	if b.LabID == nil {
		b.LabID = info.LabID
	}
	if b.LabName == "" {
		b.LabName = info.LabName
	}
	b.Price = ComputeTotal(info.Price, b.SampleType)
	b.Status = StatusPending
	if b.PaymentStatus == "" {
		b.PaymentStatus = PaymentPending
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return err
	}

	s.publish(ctx, realtime.ActionInsert, b)
	go s.sendConfirmation(*b)

	return nil
}

func (s *Service) validateNew(b *Booking) error {
	if b.UserID == uuid.Nil {
		return fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	if b.TestID == uuid.Nil {
		return fmt.Errorf("%w: test_id is required", ErrValidation)
	}
	if b.AppointmentDate.IsZero() {
		return fmt.Errorf("%w: appointment_date is required", ErrValidation)
	}
	if b.AppointmentTime == "" {
		return fmt.Errorf("%w: appointment_time is required", ErrValidation)
	}
	if b.PatientName == "" {
		return fmt.Errorf("%w: patient_name is required", ErrValidation)
	}
	if b.PatientAge <= 0 {
		return fmt.Errorf("%w: patient_age must be positive", ErrValidation)
	}
	if b.PatientGender == "" {
		return fmt.Errorf("%w: patient_gender is required", ErrValidation)
	}
	if b.PatientPhone == "" {
		return fmt.Errorf("%w: patient_phone is required", ErrValidation)
	}
	if b.PatientEmail == "" {
		return fmt.Errorf("%w: patient_email is required", ErrValidation)
	}
	if !validSampleTypes[b.SampleType] {
		return fmt.Errorf("%w: sample_type must be %q or %q", ErrValidation, SampleHome, SampleLab)
	}
	if b.SampleType == SampleHome && b.Address == "" {
		return fmt.Errorf("%w: address is required for home collection", ErrValidation)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

// GetForUser returns the booking if the caller owns it or holds the admin
// role in the roles table. The same DB-backed gate guards reads and
// transitions, so a forged admin token grants nothing.
func (s *Service) GetForUser(ctx context.Context, id, userID uuid.UUID) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID && !s.admins.IsAdmin(ctx, userID) {
		return nil, ErrUnauthorized
	}
	return b, nil
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Booking, int, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Booking, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}

// UpdateStatus moves a booking through its lifecycle. Only admins may call
// it; the check goes against the roles table, not the token, and fails
// closed. Illegal transitions leave the record untouched.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, to Status, actorID uuid.UUID) (*Booking, error) {
	if !s.admins.IsAdmin(ctx, actorID) {
		return nil, ErrUnauthorized
	}
	if !validStatuses[to] {
		return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, to)
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(b.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, to)
	}

	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}
	b.Status = to

	s.publish(ctx, realtime.ActionUpdate, b)
	go s.sendStatusUpdate(*b)

	return b, nil
}

// Cancel lets the booking's owner cancel it, subject to the same state
// machine as admin transitions.
func (s *Service) Cancel(ctx context.Context, id, userID uuid.UUID) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrUnauthorized
	}
	if !CanTransition(b.Status, StatusCancelled) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, StatusCancelled)
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusCancelled); err != nil {
		return nil, err
	}
	b.Status = StatusCancelled

	s.publish(ctx, realtime.ActionUpdate, b)
	go s.sendStatusUpdate(*b)

	return b, nil
}

// MarkPaid records payment for a booking. Paying twice is a no-op.
func (s *Service) MarkPaid(ctx context.Context, id, userID uuid.UUID) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrUnauthorized
	}
	if b.PaymentStatus == PaymentPaid {
		return b, nil
	}

	if err := s.repo.UpdatePaymentStatus(ctx, id, PaymentPaid); err != nil {
		return nil, err
	}
	b.PaymentStatus = PaymentPaid

	s.publish(ctx, realtime.ActionUpdate, b)

	return b, nil
}

func (s *Service) publish(ctx context.Context, action string, b *Booking) {
	event, err := realtime.NewEvent(action, "bookings", b.ID.String(), b)
	if err != nil {
		s.logger.Error().Err(err).Str("booking_id", b.ID.String()).Msg("failed to build feed event")
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("booking_id", b.ID.String()).Msg("failed to publish feed event")
	}
}

// sendConfirmation emails the patient after a successful booking. Send
// failures are logged and never affect the booking itself.
func (s *Service) sendConfirmation(b Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	_, err := s.mailer.SendFromTemplate(ctx, "booking-confirmation", map[string]string{
		"patient_name":    b.PatientName,
		"test_name":       b.TestName,
		"lab_name":        b.LabName,
		"date":            b.AppointmentDate.Format("2006-01-02"),
		"time":            b.AppointmentTime,
		"collection_type": string(b.SampleType),
		"price":           strconv.Itoa(b.Price),
	}, b.PatientEmail)
	if err != nil {
		s.logger.Error().Err(err).Str("booking_id", b.ID.String()).Msg("booking confirmation email failed")
	}
}

func (s *Service) sendStatusUpdate(b Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	_, err := s.mailer.SendFromTemplate(ctx, "booking-status-update", map[string]string{
		"patient_name": b.PatientName,
		"test_name":    b.TestName,
		"date":         b.AppointmentDate.Format("2006-01-02"),
		"status":       string(b.Status),
	}, b.PatientEmail)
	if err != nil {
		s.logger.Error().Err(err).Str("booking_id", b.ID.String()).Msg("booking status email failed")
	}
}
