package dto

import (
	"time"

	"github.com/yigit/campusdesk/internal/app/models"
)

// CreateElectionRequest opens a new election in the upcoming state
type CreateElectionRequest struct {
	Title       string    `json:"title" binding:"required,max=200"`
	Description string    `json:"description" binding:"omitempty,max=2000"`
	Position    string    `json:"position" binding:"required,max=100"`
	StartDate   time.Time `json:"startDate" binding:"required"`
	EndDate     time.Time `json:"endDate" binding:"required,gtfield=StartDate"`
}

// UpdateElectionStatusRequest moves an election between states
type UpdateElectionStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=upcoming active closed"`
}

// NominateCandidateRequest is the multipart form of a nomination; the photo is a separate file field
type NominateCandidateRequest struct {
	EnrollmentNumber string `form:"enrollmentNumber" binding:"required,enrollment"`
	Name             string `form:"name" binding:"required,min=2,max=100"`
	Manifesto        string `form:"manifesto" binding:"omitempty,max=4000"`
}

// VoteRequest casts a ballot
type VoteRequest struct {
	CandidateID int64 `json:"candidateId" binding:"required,min=1"`
}

// ElectionResultsResponse is an election with its tally
type ElectionResultsResponse struct {
	Election   *models.Election          `json:"election"`
	Results    []*models.CandidateResult `json:"results"`
	TotalVotes int                       `json:"totalVotes"`
}
