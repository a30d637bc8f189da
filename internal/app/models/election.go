package models

import "time"

// ElectionStatus moves upcoming -> active -> closed
type ElectionStatus string

const (
	ElectionUpcoming ElectionStatus = "upcoming"
	ElectionActive   ElectionStatus = "active"
	ElectionClosed   ElectionStatus = "closed"
)

// Election is a student election for one position
type Election struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Position    string         `json:"position" example:"General Secretary"`
	Status      ElectionStatus `json:"status"`
	StartDate   time.Time      `json:"startDate"`
	EndDate     time.Time      `json:"endDate"`
	CreatedBy   int64          `json:"createdBy"`
	CreatedAt   time.Time      `json:"createdAt"`
	// HasVoted is filled for student listings
	HasVoted bool `json:"hasVoted"`
}

// Candidate stands in an election
type Candidate struct {
	ID               int64     `json:"id"`
	ElectionID       int64     `json:"electionId"`
	EnrollmentNumber string    `json:"enrollmentNumber"`
	Name             string    `json:"name"`
	Manifesto        string    `json:"manifesto,omitempty"`
	PhotoKey         *string   `json:"-"`
	PhotoURL         string    `json:"photoUrl,omitempty"`
	Approved         bool      `json:"approved"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Vote is one ballot. A voter casts at most one per election.
type Vote struct {
	ID              int64     `json:"id"`
	ElectionID      int64     `json:"electionId"`
	CandidateID     int64     `json:"candidateId"`
	VoterEnrollment string    `json:"voterEnrollment"`
	CreatedAt       time.Time `json:"createdAt"`
}

// CandidateResult is a tally line
type CandidateResult struct {
	CandidateID      int64  `json:"candidateId"`
	Name             string `json:"name"`
	EnrollmentNumber string `json:"enrollmentNumber"`
	Votes            int    `json:"votes"`
}
