package dto

import "github.com/yigit/campusdesk/internal/app/models"

// SignUpRequest registers a student or faculty account. The profile starts unverified.
type SignUpRequest struct {
	Email            string `json:"email" binding:"required,email" example:"asha@campus.edu"`
	Password         string `json:"password" binding:"required,password" example:"secret123"`
	Role             string `json:"role" binding:"required,oneof=student faculty" example:"student"`
	FullName         string `json:"fullName" binding:"required,min=2,max=100" example:"Asha Kumar"`
	EnrollmentNumber string `json:"enrollmentNumber" binding:"required_if=Role student,omitempty,enrollment" example:"21CS1042"`
	Department       string `json:"department" binding:"required,max=100" example:"Computer Science"`
	Semester         int    `json:"semester" binding:"required_if=Role student,omitempty,min=1,max=12" example:"5"`
	Section          string `json:"section" binding:"omitempty,max=10" example:"A"`
	Designation      string `json:"designation" binding:"omitempty,max=100" example:"Assistant Professor"`
	Phone            string `json:"phone" binding:"omitempty,max=20"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// ForgotPasswordRequest starts a password reset
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest completes a password reset
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,password"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType" example:"Bearer"`
	ExpiresIn             int64  `json:"expiresIn"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn,omitempty"`
}

// SessionResponse is the signed-in user with roles and profile
type SessionResponse struct {
	User           *models.User           `json:"user"`
	Roles          []models.Role          `json:"roles"`
	Profile        *models.Profile        `json:"profile,omitempty"`
	FacultyProfile *models.FacultyProfile `json:"facultyProfile,omitempty"`
	Verified       bool                   `json:"verified"`
	// RedirectTo names the client route the user belongs on
	RedirectTo string `json:"redirectTo" example:"/student/dashboard"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token   TokenResponse    `json:"token"`
	Session *SessionResponse `json:"session"`
}

// AuthEvent is pushed to a user's sockets when their auth state changes
type AuthEvent struct {
	Event   string           `json:"event" example:"SIGNED_IN"`
	Session *SessionResponse `json:"session,omitempty"`
}
