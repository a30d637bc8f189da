package models

import (
	"time"
)

// Role is a user role. A user has one primary role and may be granted more through user_roles.
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleAdmin:
		return true
	}
	return false
}

// User defines the user model based on the 'users' table
type User struct {
	ID           int64      `json:"id" example:"1"`
	Email        string     `json:"email" example:"asha@campus.edu"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role" example:"student"`
	LastSignInAt *time.Time `json:"lastSignInAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// UserRole is one row of 'user_roles'
type UserRole struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Role      Role      `json:"role"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// PasswordResetToken is one row of 'password_reset_tokens'
type PasswordResetToken struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// Account groups the rows created together at sign-up
type Account struct {
	User           *User
	Profile        *Profile
	FacultyProfile *FacultyProfile
}
