package domain

import "time"

// Role determines which ticket operations a profile may perform.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

// CanTriage reports whether the role may accept, reject, message, or
// complete tickets.
func (r Role) CanTriage() bool {
	return r == RoleAgent || r == RoleAdmin
}

// Valid reports whether the role is one of the known literals.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// Profile is the account record for requesters, agents, and admins.
type Profile struct {
	ID           string
	FullName     string
	Email        string
	AvatarURL    *string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
