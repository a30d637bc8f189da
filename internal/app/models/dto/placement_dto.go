package dto

import "time"

// CreatePlacementRequest announces a drive
type CreatePlacementRequest struct {
	CompanyName string    `json:"companyName" binding:"required,max=200"`
	Role        string    `json:"role" binding:"required,max=200"`
	Description string    `json:"description" binding:"omitempty,max=4000"`
	Package     string    `json:"package" binding:"omitempty,max=50"`
	Location    string    `json:"location" binding:"omitempty,max=100"`
	Eligibility string    `json:"eligibility" binding:"omitempty,max=1000"`
	Deadline    time.Time `json:"deadline" binding:"required"`
}

// ApplyPlacementRequest is a student application
type ApplyPlacementRequest struct {
	ResumeURL string `json:"resumeUrl" binding:"omitempty,url,max=500"`
}

// UpdateApplicationStatusRequest changes an application's status
type UpdateApplicationStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=applied shortlisted rejected selected"`
}
