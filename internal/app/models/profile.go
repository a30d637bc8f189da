package models

import "time"

// Profile is a student's identity record ('profiles')
type Profile struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"userId"`
	EnrollmentNumber string    `json:"enrollmentNumber" example:"21CS1042"`
	FullName         string    `json:"fullName" example:"Asha Kumar"`
	Email            string    `json:"email"`
	Department       string    `json:"department" example:"Computer Science"`
	Semester         int       `json:"semester" example:"5"`
	Section          string    `json:"section" example:"A"`
	Phone            string    `json:"phone,omitempty"`
	Verify           bool      `json:"verify"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// FacultyProfile is a faculty member's identity record ('faculty_profiles')
type FacultyProfile struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	FullName    string    `json:"fullName" example:"Dr. Meera Iyer"`
	Email       string    `json:"email"`
	Department  string    `json:"department"`
	Designation string    `json:"designation" example:"Associate Professor"`
	Phone       string    `json:"phone,omitempty"`
	Verify      bool      `json:"verify"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProfileFilter narrows student listings
type ProfileFilter struct {
	Department string
	Semester   int
	Section    string
	Verify     *bool
	Search     string
	Limit      int
	Offset     int
}
