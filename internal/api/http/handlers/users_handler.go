package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/telesdesk/helpdesk-service/internal/api/dto"
	"github.com/telesdesk/helpdesk-service/internal/auth"
	"github.com/telesdesk/helpdesk-service/internal/domain"
	"github.com/telesdesk/helpdesk-service/internal/service"
	apperrors "github.com/telesdesk/helpdesk-service/pkg/util"
)

// UsersHandler exposes authentication and admin user-management endpoints.
type UsersHandler struct {
	auth      *service.AuthService
	provision *service.ProvisionService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, provisionService *service.ProvisionService) *UsersHandler {
	return &UsersHandler{auth: authService, provision: provisionService}
}

// Login handles POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	profile, token, exp, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": userResponse(profile),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// ChangePassword handles POST /auth/password/change.
func (h *UsersHandler) ChangePassword(c *fiber.Ctx) error {
	actor, ok := auth.ProfileFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("current and new password required", nil)
	}
	if err := h.auth.ChangePassword(c.Context(), actor.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// ListUsers handles GET /admin/users.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	actor, _ := auth.ProfileFromContext(c)
	profiles, err := h.provision.ListUsers(c.Context(), actor)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(profiles))
	for i := range profiles {
		items = append(items, userResponse(&profiles[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ManageUser handles POST /admin/users. A single action-dispatching
// endpoint mirroring the admin console contract.
func (h *UsersHandler) ManageUser(c *fiber.Ctx) error {
	actor, _ := auth.ProfileFromContext(c)
	var req dto.ManageUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	switch req.Action {
	case "create":
		profile, creds, err := h.provision.CreateUser(c.Context(), actor, service.CreateUserInput{
			FirstName: req.UserData.FirstName,
			LastName:  req.UserData.LastName,
			Password:  derefOr(req.UserData.Password, ""),
			Role:      req.UserData.Role,
		})
		if err != nil {
			return err
		}
		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"success": true,
			"user":    userResponse(profile),
			"credentials": dto.CredentialsResponse{
				Username: creds.Username,
				Password: creds.Password,
				Email:    creds.Email,
			},
		})
	case "update":
		if req.UserData.UserID == "" {
			return apperrors.NewValidationError("userId required", nil)
		}
		if err := h.provision.UpdateUser(c.Context(), actor, req.UserData.UserID, req.UserData.FullName, req.UserData.Password); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true})
	case "delete":
		if req.UserData.UserID == "" {
			return apperrors.NewValidationError("userId required", nil)
		}
		if err := h.provision.DeleteUser(c.Context(), actor, req.UserData.UserID); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true})
	default:
		return apperrors.NewValidationError("unknown action", map[string]any{"action": req.Action})
	}
}

func userResponse(profile *domain.Profile) dto.UserResponse {
	return dto.UserResponse{
		ID:        profile.ID,
		FullName:  profile.FullName,
		Email:     profile.Email,
		AvatarURL: profile.AvatarURL,
		Role:      profile.Role,
		CreatedAt: profile.CreatedAt,
	}
}

func derefOr(val *string, fallback string) string {
	if val == nil {
		return fallback
	}
	return *val
}
