package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/app/models/dto"
	"github.com/yigit/campusdesk/internal/app/services"
	"github.com/yigit/campusdesk/internal/middleware"
)

// ElectionController handles elections, candidates and voting
type ElectionController struct {
	electionService services.IElectionService
}

// NewElectionController creates a new ElectionController
func NewElectionController(electionService services.IElectionService) *ElectionController {
	return &ElectionController{electionService: electionService}
}

// CreateElection opens a new election
// @Summary Create an election
// @Tags elections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateElectionRequest true "Election"
// @Success 201 {object} dto.APIResponse{data=models.Election} "Election created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Router /faculty/elections [post]
func (c *ElectionController) CreateElection(ctx *gin.Context) {
	var req dto.CreateElectionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	e, err := c.electionService.CreateElection(ctx.Request.Context(), middleware.CurrentUserID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, e, "Election created")
}

// ListElections lists elections
// @Summary List elections
// @Description For students, hasVoted tells whether they already voted in each election.
// @Tags elections
// @Produce json
// @Security BearerAuth
// @Param status query string false "upcoming, active or closed"
// @Success 200 {object} dto.APIResponse{data=[]models.Election} "Elections"
// @Router /elections [get]
func (c *ElectionController) ListElections(ctx *gin.Context) {
	elections, err := c.electionService.ListElections(ctx.Request.Context(),
		models.ElectionStatus(ctx.Query("status")), middleware.CurrentEnrollment(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, elections, "")
}

// GetElection returns one election
// @Summary Get an election
// @Tags elections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Election ID"
// @Success 200 {object} dto.APIResponse{data=models.Election} "Election"
// @Failure 404 {object} dto.ErrorResponse "Election not found"
// @Router /elections/{id} [get]
func (c *ElectionController) GetElection(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	e, err := c.electionService.GetElection(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, e, "")
}

// UpdateElectionStatus moves an election between states
// @Summary Update election status
// @Tags elections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Election ID"
// @Param request body dto.UpdateElectionStatusRequest true "Status"
// @Success 200 {object} dto.APIResponse{data=models.Election} "Status updated"
// @Router /faculty/elections/{id}/status [patch]
func (c *ElectionController) UpdateElectionStatus(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateElectionStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	e, err := c.electionService.UpdateStatus(ctx.Request.Context(), id, models.ElectionStatus(req.Status))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, e, "Election status updated")
}

// DeleteElection removes an election
// @Summary Delete an election
// @Description Candidates, votes and candidate photos are removed with it.
// @Tags elections
// @Security BearerAuth
// @Param id path int true "Election ID"
// @Success 200 {object} dto.APIResponse "Deleted"
// @Router /faculty/elections/{id} [delete]
func (c *ElectionController) DeleteElection(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.electionService.DeleteElection(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Election deleted")
}

// Nominate adds a candidate
// @Summary Nominate a candidate
// @Description Multipart form. The optional "photo" must be an image of at most 5 MB.
// @Tags elections
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Election ID"
// @Param enrollmentNumber formData string true "Candidate enrollment number"
// @Param name formData string true "Candidate name"
// @Param manifesto formData string false "Manifesto"
// @Param photo formData file false "Candidate photo"
// @Success 201 {object} dto.APIResponse{data=models.Candidate} "Candidate nominated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or photo"
// @Failure 409 {object} dto.ErrorResponse "Already a candidate, or election closed"
// @Router /faculty/elections/{id}/candidates [post]
func (c *ElectionController) Nominate(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.NominateCandidateRequest
	if !middleware.BindForm(ctx, &req) {
		return
	}
	photo, ok := optionalFile(ctx, "photo")
	if !ok {
		return
	}

	candidate, err := c.electionService.Nominate(ctx.Request.Context(), id, &req, photo)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, candidate, "Candidate nominated")
}

// ListCandidates lists an election's candidates
// @Summary List candidates
// @Description Students only see approved candidates.
// @Tags elections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Election ID"
// @Param approved query bool false "Only approved candidates (faculty)"
// @Success 200 {object} dto.APIResponse{data=[]models.Candidate} "Candidates"
// @Router /elections/{id}/candidates [get]
func (c *ElectionController) ListCandidates(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	approvedOnly := true
	if claims, ok := middleware.CurrentClaims(ctx); ok &&
		(claims.HasRole(string(models.RoleFaculty)) || claims.HasRole(string(models.RoleAdmin))) {
		approvedOnly, _ = strconv.ParseBool(ctx.Query("approved"))
	}

	candidates, err := c.electionService.ListCandidates(ctx.Request.Context(), id, approvedOnly)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, candidates, "")
}

// ApproveCandidate approves or withdraws a candidate
// @Summary Approve a candidate
// @Tags elections
// @Produce json
// @Security BearerAuth
// @Param candidateId path int true "Candidate ID"
// @Param approved query bool false "Approval (default true)"
// @Success 200 {object} dto.APIResponse{data=models.Candidate} "Candidate updated"
// @Router /faculty/candidates/{candidateId}/approve [patch]
func (c *ElectionController) ApproveCandidate(ctx *gin.Context) {
	id, ok := pathID(ctx, "candidateId")
	if !ok {
		return
	}
	approved := true
	if v := ctx.Query("approved"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "approved must be true or false").WithField("approved")))
			return
		}
		approved = b
	}

	candidate, err := c.electionService.ApproveCandidate(ctx.Request.Context(), id, approved)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, candidate, "Candidate updated")
}

// DeleteCandidate removes a candidate
// @Summary Delete a candidate
// @Tags elections
// @Security BearerAuth
// @Param candidateId path int true "Candidate ID"
// @Success 200 {object} dto.APIResponse "Deleted"
// @Router /faculty/candidates/{candidateId} [delete]
func (c *ElectionController) DeleteCandidate(ctx *gin.Context) {
	id, ok := pathID(ctx, "candidateId")
	if !ok {
		return
	}
	if err := c.electionService.DeleteCandidate(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Candidate deleted")
}

// Vote casts the student's ballot
// @Summary Vote
// @Description One vote per student per election, while the election is active, for an approved candidate.
// @Tags elections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Election ID"
// @Param request body dto.VoteRequest true "Ballot"
// @Success 201 {object} dto.APIResponse{data=models.Vote} "Vote cast"
// @Failure 409 {object} dto.ErrorResponse "Already voted or election not active"
// @Router /student/elections/{id}/vote [post]
func (c *ElectionController) Vote(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	enrollment, ok := studentEnrollment(ctx)
	if !ok {
		return
	}
	var req dto.VoteRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	v, err := c.electionService.Vote(ctx.Request.Context(), id, enrollment, req.CandidateID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, v, "Vote cast")
}

// Results returns an election's tally
// @Summary Election results
// @Tags elections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Election ID"
// @Success 200 {object} dto.APIResponse{data=dto.ElectionResultsResponse} "Results"
// @Router /elections/{id}/results [get]
func (c *ElectionController) Results(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	results, err := c.electionService.Results(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, results, "")
}
