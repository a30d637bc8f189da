package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/app/models/dto"
	"github.com/yigit/campusdesk/internal/app/services"
	"github.com/yigit/campusdesk/internal/middleware"
)

// PlacementController handles recruitment drives
type PlacementController struct {
	placementService services.IPlacementService
}

// NewPlacementController creates a new PlacementController
func NewPlacementController(placementService services.IPlacementService) *PlacementController {
	return &PlacementController{placementService: placementService}
}

// CreatePlacement announces a drive
// @Summary Create a placement drive
// @Tags placements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePlacementRequest true "Drive"
// @Success 201 {object} dto.APIResponse{data=models.Placement} "Placement created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Router /faculty/placements [post]
func (c *PlacementController) CreatePlacement(ctx *gin.Context) {
	var req dto.CreatePlacementRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	p, err := c.placementService.Create(ctx.Request.Context(), middleware.CurrentUserID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, p, "Placement created")
}

// ListPlacements lists drives
// @Summary List placement drives
// @Description For students, hasApplied marks drives they already applied to.
// @Tags placements
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param size query int false "Page size (default 10)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Placement}} "Placements"
// @Router /placements [get]
func (c *PlacementController) ListPlacements(ctx *gin.Context) {
	items, info, err := c.placementService.List(ctx.Request.Context(), middleware.CurrentEnrollment(ctx), pageRequest(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, items, info, "")
}

// GetPlacement returns one drive
// @Summary Get a placement drive
// @Tags placements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Placement ID"
// @Success 200 {object} dto.APIResponse{data=models.Placement} "Placement"
// @Failure 404 {object} dto.ErrorResponse "Placement not found"
// @Router /placements/{id} [get]
func (c *PlacementController) GetPlacement(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	p, err := c.placementService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, p, "")
}

// DeletePlacement removes a drive
// @Summary Delete a placement drive
// @Tags placements
// @Security BearerAuth
// @Param id path int true "Placement ID"
// @Success 200 {object} dto.APIResponse "Deleted"
// @Router /faculty/placements/{id} [delete]
func (c *PlacementController) DeletePlacement(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.placementService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Placement deleted")
}

// Apply submits the student's application
// @Summary Apply to a placement drive
// @Tags placements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Placement ID"
// @Param request body dto.ApplyPlacementRequest false "Application"
// @Success 201 {object} dto.APIResponse{data=models.PlacementApplication} "Applied"
// @Failure 409 {object} dto.ErrorResponse "ALREADY_APPLIED or PLACEMENT_CLOSED"
// @Router /student/placements/{id}/apply [post]
func (c *PlacementController) Apply(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	enrollment, ok := studentEnrollment(ctx)
	if !ok {
		return
	}
	var req dto.ApplyPlacementRequest
	if ctx.Request.ContentLength > 0 && !middleware.BindJSON(ctx, &req) {
		return
	}

	app, err := c.placementService.Apply(ctx.Request.Context(), id, enrollment, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, app, "Application submitted")
}

// MyApplications lists the student's applications
// @Summary List own placement applications
// @Tags placements
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.PlacementApplication} "Applications"
// @Router /student/placements/applications [get]
func (c *PlacementController) MyApplications(ctx *gin.Context) {
	enrollment, ok := studentEnrollment(ctx)
	if !ok {
		return
	}
	apps, err := c.placementService.MyApplications(ctx.Request.Context(), enrollment)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, apps, "")
}

// ListApplications lists a drive's applications
// @Summary List applications of a drive
// @Tags placements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Placement ID"
// @Success 200 {object} dto.APIResponse{data=[]models.PlacementApplication} "Applications"
// @Router /faculty/placements/{id}/applications [get]
func (c *PlacementController) ListApplications(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	apps, err := c.placementService.ListApplications(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, apps, "")
}

// UpdateApplicationStatus moves an application through the pipeline
// @Summary Update application status
// @Tags placements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param applicationId path int true "Application ID"
// @Param request body dto.UpdateApplicationStatusRequest true "Status"
// @Success 200 {object} dto.APIResponse{data=models.PlacementApplication} "Status updated"
// @Router /faculty/applications/{applicationId}/status [patch]
func (c *PlacementController) UpdateApplicationStatus(ctx *gin.Context) {
	id, ok := pathID(ctx, "applicationId")
	if !ok {
		return
	}
	var req dto.UpdateApplicationStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	app, err := c.placementService.UpdateApplicationStatus(ctx.Request.Context(), id, models.ApplicationStatus(req.Status))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, app, "Application status updated")
}
