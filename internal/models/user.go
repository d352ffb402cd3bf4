package models

import "time"

// Auth roles. Purchasing users manage assets; directory and account
// management require admin.
const (
	RoleAdmin      = "admin"
	RolePurchasing = "purchasing"
)

// ValidRole reports whether role is one of the known auth roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RolePurchasing
}

// AuthUser is a login account, distinct from the directory users that own
// assets.
type AuthUser struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
}

// CreateAuthUserRequest is the body for POST /auth/users (admin only).
type CreateAuthUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}
