package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the access level of a portal account.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleParent Role = "parent"
)

// User is a portal account. Parents book classes; admins manage the catalog.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserWithBookings is the admin dashboard view of an account.
type UserWithBookings struct {
	User
	Bookings []BookingWithClass `json:"bookings"`
}

// SignUpRequest is the payload for creating a parent account.
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	Name     string `json:"name" binding:"omitempty,max=100"`
	Phone    string `json:"phone" binding:"omitempty,min=7,max=20"`
}

// SignInRequest is the payload for password authentication.
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// ForgotPasswordRequest asks for a reset link to be emailed.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}

// ResetPasswordRequest completes a password reset.
type ResetPasswordRequest struct {
	Token           string `json:"token" binding:"required,min=16,max=256"`
	Password        string `json:"password" binding:"required,min=6,max=128"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
}

// ChangePasswordRequest updates the password of a signed-in user.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required,min=6,max=128"`
	NewPassword     string `json:"new_password" binding:"required,min=6,max=128"`
}

// UpdateUserRoleRequest is the admin payload for promoting or demoting an account.
type UpdateUserRoleRequest struct {
	Role Role `json:"role" binding:"required,oneof=admin parent"`
}
