package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/telesdesk/helpdesk-service/internal/auth"
	"github.com/telesdesk/helpdesk-service/internal/config"
	"github.com/telesdesk/helpdesk-service/internal/domain"
	"github.com/telesdesk/helpdesk-service/internal/repository"
	apperrors "github.com/telesdesk/helpdesk-service/pkg/util"
)

// ProvisionService performs privileged user-management operations. Every
// operation requires an admin actor.
type ProvisionService struct {
	profiles    repository.ProfileRepository
	bcryptCost  int
	emailDomain string
}

// NewProvisionService builds the service.
func NewProvisionService(cfg config.Config, profiles repository.ProfileRepository) *ProvisionService {
	return &ProvisionService{
		profiles:    profiles,
		bcryptCost:  cfg.Auth.BcryptCost,
		emailDomain: cfg.Provision.EmailDomain,
	}
}

// CreateUserInput describes the create action payload.
type CreateUserInput struct {
	FirstName string
	LastName  string
	Password  string
	Role      domain.Role
}

// Credentials is returned to the admin after a successful create.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// DeriveUsername builds the login name from first and last name:
// lowercase, dot-separated.
func DeriveUsername(firstName, lastName string) string {
	return strings.ToLower(strings.TrimSpace(firstName)) + "." + strings.ToLower(strings.TrimSpace(lastName))
}

// CreateUser provisions a new account and returns its credentials.
func (s *ProvisionService) CreateUser(ctx context.Context, actor *domain.Profile, input CreateUserInput) (*domain.Profile, *Credentials, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, nil, apperrors.NewValidationError("firstName and lastName required", nil)
	}
	if input.Password == "" {
		return nil, nil, apperrors.NewValidationError("password required", nil)
	}
	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, nil, apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}

	username := DeriveUsername(input.FirstName, input.LastName)
	email := fmt.Sprintf("%s@%s", username, s.emailDomain)

	if _, err := s.profiles.GetByEmail(ctx, email); err == nil {
		return nil, nil, apperrors.NewValidationError("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, apperrors.NewStoreError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	profile := &domain.Profile{
		FullName:     strings.TrimSpace(input.FirstName) + " " + strings.TrimSpace(input.LastName),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, nil, apperrors.NewStoreError(err)
	}

	return profile, &Credentials{Username: username, Password: input.Password, Email: email}, nil
}

// UpdateUser changes a profile's display name and/or password.
func (s *ProvisionService) UpdateUser(ctx context.Context, actor *domain.Profile, userID string, fullName, password *string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return apperrors.NewStoreError(err)
	}

	if fullName != nil && strings.TrimSpace(*fullName) != "" {
		profile.FullName = strings.TrimSpace(*fullName)
		if err := s.profiles.Update(ctx, profile); err != nil {
			return apperrors.NewStoreError(err)
		}
	}
	if password != nil && *password != "" {
		hash, err := auth.HashPassword(*password, s.bcryptCost)
		if err != nil {
			return apperrors.MapError(err)
		}
		if err := s.profiles.UpdatePassword(ctx, userID, hash); err != nil {
			return apperrors.NewStoreError(err)
		}
	}
	return nil
}

// DeleteUser removes a profile and its role.
func (s *ProvisionService) DeleteUser(ctx context.Context, actor *domain.Profile, userID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.profiles.GetByID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return apperrors.NewStoreError(err)
	}
	if err := s.profiles.Delete(ctx, userID); err != nil {
		return apperrors.NewStoreError(err)
	}
	return nil
}

// ListUsers returns all profiles for the admin user-management view.
func (s *ProvisionService) ListUsers(ctx context.Context, actor *domain.Profile) ([]domain.Profile, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	return profiles, nil
}

func requireAdmin(actor *domain.Profile) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if actor.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("admin access required")
	}
	return nil
}
