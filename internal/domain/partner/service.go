package partner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/patho/patho/internal/platform/notification"
	"github.com/patho/patho/internal/platform/realtime"
)

// AdminChecker answers whether a user holds the admin role. Implementations
// must fail closed.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) bool
}

// Mailer sends templated notifications. Satisfied by notification.Manager.
type Mailer interface {
	SendFromTemplate(ctx context.Context, templateID string, data map[string]string, recipient string) (*notification.Notification, error)
}

type Service struct {
	repo      Repository
	admins    AdminChecker
	mailer    Mailer
	publisher realtime.EventPublisher
	logger    zerolog.Logger
}

func NewService(repo Repository, admins AdminChecker, mailer Mailer, publisher realtime.EventPublisher, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		admins:    admins,
		mailer:    mailer,
		publisher: publisher,
		logger:    logger,
	}
}

// Apply records a new partner application. The endpoint is public, so the
// caller needs no account.
func (s *Service) Apply(ctx context.Context, a *Application) error {
	if err := validateApplication(a); err != nil {
		return err
	}
	a.Status = StatusPending

	if err := s.repo.Create(ctx, a); err != nil {
		return err
	}

	s.publish(ctx, realtime.ActionInsert, a)
	go s.sendReceived(*a)

	return nil
}

func validateApplication(a *Application) error {
	if a.LabName == "" {
		return fmt.Errorf("lab_name is required")
	}
	if a.OwnerName == "" {
		return fmt.Errorf("owner_name is required")
	}
	if a.Email == "" || !strings.Contains(a.Email, "@") {
		return fmt.Errorf("a valid email is required")
	}
	if a.Phone == "" {
		return fmt.Errorf("phone is required")
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Application, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Application, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}

// Decide approves or rejects a pending application. Decisions are one-way:
// an application that has already been decided stays decided.
func (s *Service) Decide(ctx context.Context, id uuid.UUID, decision ApplicationStatus, actorID uuid.UUID) (*Application, error) {
	if !s.admins.IsAdmin(ctx, actorID) {
		return nil, ErrUnauthorized
	}
	if !validDecisions[decision] {
		return nil, fmt.Errorf("decision must be %q or %q", StatusApproved, StatusRejected)
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusPending {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyDecided, a.Status)
	}

	if err := s.repo.UpdateStatus(ctx, id, decision); err != nil {
		return nil, err
	}
	a.Status = decision

	s.publish(ctx, realtime.ActionUpdate, a)
	go s.sendDecision(*a)

	return a, nil
}

func (s *Service) publish(ctx context.Context, action string, a *Application) {
	event, err := realtime.NewEvent(action, "partner_applications", a.ID.String(), a)
	if err != nil {
		s.logger.Error().Err(err).Str("application_id", a.ID.String()).Msg("failed to build feed event")
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("application_id", a.ID.String()).Msg("failed to publish feed event")
	}
}

// sendReceived acknowledges the application by email. Failures are logged
// and never affect the application itself.
func (s *Service) sendReceived(a Application) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	_, err := s.mailer.SendFromTemplate(ctx, "partner-application-received", map[string]string{
		"owner_name": a.OwnerName,
		"lab_name":   a.LabName,
	}, a.Email)
	if err != nil {
		s.logger.Error().Err(err).Str("application_id", a.ID.String()).Msg("application received email failed")
	}
}

func (s *Service) sendDecision(a Application) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	_, err := s.mailer.SendFromTemplate(ctx, "partner-application-decision", map[string]string{
		"owner_name": a.OwnerName,
		"lab_name":   a.LabName,
		"decision":   string(a.Status),
	}, a.Email)
	if err != nil {
		s.logger.Error().Err(err).Str("application_id", a.ID.String()).Msg("application decision email failed")
	}
}
