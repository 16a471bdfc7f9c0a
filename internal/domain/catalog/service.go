package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/patho/patho/internal/platform/realtime"
)

type Service struct {
	labs      LabRepository
	tests     TestRepository
	publisher realtime.EventPublisher
	logger    zerolog.Logger
}

func NewService(labs LabRepository, tests TestRepository, publisher realtime.EventPublisher, logger zerolog.Logger) *Service {
	return &Service{labs: labs, tests: tests, publisher: publisher, logger: logger}
}

func (s *Service) CreateLab(ctx context.Context, l *Lab) error {
	if err := validateLab(l); err != nil {
		return err
	}
	if err := s.labs.Create(ctx, l); err != nil {
		return err
	}
	s.publish(ctx, realtime.ActionInsert, "labs", l.ID, l)
	return nil
}

func (s *Service) GetLab(ctx context.Context, id uuid.UUID) (*Lab, error) {
	return s.labs.GetByID(ctx, id)
}

func (s *Service) UpdateLab(ctx context.Context, l *Lab) error {
	if err := validateLab(l); err != nil {
		return err
	}
	if err := s.labs.Update(ctx, l); err != nil {
		return err
	}
	s.publish(ctx, realtime.ActionUpdate, "labs", l.ID, l)
	return nil
}

func (s *Service) DeleteLab(ctx context.Context, id uuid.UUID) error {
	if err := s.labs.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, realtime.ActionDelete, "labs", id, nil)
	return nil
}

func (s *Service) SearchLabs(ctx context.Context, params map[string]string, limit, offset int) ([]*Lab, int, error) {
	return s.labs.Search(ctx, params, limit, offset)
}

func (s *Service) CreateTest(ctx context.Context, t *Test) error {
	if err := s.validateTest(ctx, t); err != nil {
		return err
	}
	if err := s.tests.Create(ctx, t); err != nil {
		return err
	}
	s.publish(ctx, realtime.ActionInsert, "tests", t.ID, t)
	return nil
}

func (s *Service) GetTest(ctx context.Context, id uuid.UUID) (*Test, error) {
	return s.tests.GetByID(ctx, id)
}

func (s *Service) UpdateTest(ctx context.Context, t *Test) error {
	if err := s.validateTest(ctx, t); err != nil {
		return err
	}
	if err := s.tests.Update(ctx, t); err != nil {
		return err
	}
	s.publish(ctx, realtime.ActionUpdate, "tests", t.ID, t)
	return nil
}

func (s *Service) DeleteTest(ctx context.Context, id uuid.UUID) error {
	if err := s.tests.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, realtime.ActionDelete, "tests", id, nil)
	return nil
}

func (s *Service) SearchTests(ctx context.Context, params map[string]string, limit, offset int) ([]*Test, int, error) {
	return s.tests.Search(ctx, params, limit, offset)
}

func validateLab(l *Lab) error {
	if l.Name == "" {
		return fmt.Errorf("name is required")
	}
	if l.Address == "" {
		return fmt.Errorf("address is required")
	}
	if l.Rating < 0 || l.Rating > 5 {
		return fmt.Errorf("rating must be between 0 and 5")
	}
	return nil
}

func (s *Service) validateTest(ctx context.Context, t *Test) error {
	if t.Name == "" {
		return fmt.Errorf("name is required")
	}
	if t.Price <= 0 {
		return fmt.Errorf("price must be positive")
	}
	if t.LabID != nil {
		if _, err := s.labs.GetByID(ctx, *t.LabID); err != nil {
			return fmt.Errorf("lab lookup: %w", err)
		}
	}
	return nil
}

func (s *Service) publish(ctx context.Context, action, table string, id uuid.UUID, record interface{}) {
	event, err := realtime.NewEvent(action, table, id.String(), record)
	if err != nil {
		s.logger.Error().Err(err).Str("table", table).Str("record_id", id.String()).Msg("failed to build feed event")
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("table", table).Str("record_id", id.String()).Msg("failed to publish feed event")
	}
}
