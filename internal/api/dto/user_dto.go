package dto

import (
	"time"

	"github.com/telesdesk/helpdesk-service/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries an issued token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ManageUserRequest is the admin user-management envelope. Action selects
// the operation; UserData carries its arguments.
type ManageUserRequest struct {
	Action   string         `json:"action"`
	UserData ManageUserData `json:"userData"`
}

// ManageUserData holds per-action fields.
type ManageUserData struct {
	UserID    string      `json:"userId,omitempty"`
	FirstName string      `json:"firstName,omitempty"`
	LastName  string      `json:"lastName,omitempty"`
	FullName  *string     `json:"fullName,omitempty"`
	Password  *string     `json:"password,omitempty"`
	Role      domain.Role `json:"role,omitempty"`
}

// UserResponse describes a profile.
type UserResponse struct {
	ID        string      `json:"id"`
	FullName  string      `json:"full_name"`
	Email     string      `json:"email"`
	AvatarURL *string     `json:"avatar_url"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

// CredentialsResponse is returned to the admin after a create.
type CredentialsResponse struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}
