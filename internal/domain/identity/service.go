package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Service struct {
	profiles ProfileRepository
	roles    RoleRepository
	logger   zerolog.Logger
}

func NewService(profiles ProfileRepository, roles RoleRepository, logger zerolog.Logger) *Service {
	return &Service{profiles: profiles, roles: roles, logger: logger}
}

// IsAdmin reports whether the user holds the admin role in the roles table.
// It fails closed: if the lookup errors for any reason, the answer is false.
// Token claims are deliberately not consulted here.
func (s *Service) IsAdmin(ctx context.Context, userID uuid.UUID) bool {
	ok, err := s.roles.HasRole(ctx, userID, RoleAdmin)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("admin role lookup failed, denying")
		return false
	}
	return ok
}

func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return s.profiles.GetByID(ctx, id)
}

// SaveProfile creates or updates the caller's profile.
func (s *Service) SaveProfile(ctx context.Context, p *Profile) error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("user id is required")
	}
	if p.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	return s.profiles.Upsert(ctx, p)
}

func (s *Service) ListProfiles(ctx context.Context, limit, offset int) ([]*Profile, int, error) {
	return s.profiles.List(ctx, limit, offset)
}

func (s *Service) ListRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return s.roles.ListRoles(ctx, userID)
}

// GrantRole assigns a role to a user. Also reachable from the admin CLI so
// the first admin can be provisioned without an existing one.
func (s *Service) GrantRole(ctx context.Context, userID uuid.UUID, role string) error {
	if role == "" {
		return fmt.Errorf("role is required")
	}
	if err := s.roles.Grant(ctx, userID, role); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", userID.String()).Str("role", role).Msg("role granted")
	return nil
}

func (s *Service) RevokeRole(ctx context.Context, userID uuid.UUID, role string) error {
	if err := s.roles.Revoke(ctx, userID, role); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", userID.String()).Str("role", role).Msg("role revoked")
	return nil
}
