package models

import "time"

// ApplicationStatus tracks a placement application
type ApplicationStatus string

const (
	ApplicationApplied     ApplicationStatus = "applied"
	ApplicationShortlisted ApplicationStatus = "shortlisted"
	ApplicationRejected    ApplicationStatus = "rejected"
	ApplicationSelected    ApplicationStatus = "selected"
)

// Valid reports whether s is a known status
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationApplied, ApplicationShortlisted, ApplicationRejected, ApplicationSelected:
		return true
	}
	return false
}

// Placement is a recruitment drive
type Placement struct {
	ID          int64     `json:"id"`
	CompanyName string    `json:"companyName"`
	Role        string    `json:"role"`
	Description string    `json:"description,omitempty"`
	Package     string    `json:"package,omitempty" example:"12 LPA"`
	Location    string    `json:"location,omitempty"`
	Eligibility string    `json:"eligibility,omitempty"`
	Deadline    time.Time `json:"deadline"`
	CreatedBy   int64     `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	// HasApplied is filled for student listings so the client can disable the apply action
	HasApplied bool `json:"hasApplied"`
}

// PlacementApplication is one student's application to a drive
type PlacementApplication struct {
	ID               int64             `json:"id"`
	PlacementID      int64             `json:"placementId"`
	EnrollmentNumber string            `json:"enrollmentNumber"`
	Status           ApplicationStatus `json:"status"`
	ResumeURL        string            `json:"resumeUrl,omitempty"`
	AppliedAt        time.Time         `json:"appliedAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
	CompanyName      string            `json:"companyName,omitempty"`
	Role             string            `json:"role,omitempty"`
}
