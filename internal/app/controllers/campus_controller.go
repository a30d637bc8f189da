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

// CampusController handles timetables, feedback, performance reports and class representatives
type CampusController struct {
	timetableService services.ITimetableService
	feedbackService  services.IFeedbackService
	reportService    services.IReportService
}

// NewCampusController creates a new CampusController
func NewCampusController(
	timetableService services.ITimetableService,
	feedbackService services.IFeedbackService,
	reportService services.IReportService,
) *CampusController {
	return &CampusController{
		timetableService: timetableService,
		feedbackService:  feedbackService,
		reportService:    reportService,
	}
}

// UpsertTimetable creates or replaces a slot
// @Summary Upsert a timetable slot
// @Description A slot is keyed by department, semester, section, day and period.
// @Tags timetables
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.TimetableRequest true "Slot"
// @Success 200 {object} dto.APIResponse{data=models.Timetable} "Slot saved"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Router /faculty/timetables [put]
func (c *CampusController) UpsertTimetable(ctx *gin.Context) {
	var req dto.TimetableRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	slot, err := c.timetableService.Upsert(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, slot, "Timetable slot saved")
}

// ListTimetable returns a class's week
// @Summary Get a class timetable
// @Tags timetables
// @Produce json
// @Security BearerAuth
// @Param department query string true "Department"
// @Param semester query int true "Semester"
// @Param section query string true "Section"
// @Success 200 {object} dto.APIResponse{data=[]models.Timetable} "Timetable"
// @Router /timetables [get]
func (c *CampusController) ListTimetable(ctx *gin.Context) {
	var q dto.TimetableQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	slots, err := c.timetableService.List(ctx.Request.Context(), q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, slots, "")
}

// DeleteTimetable removes a slot
// @Summary Delete a timetable slot
// @Tags timetables
// @Security BearerAuth
// @Param id path int true "Slot ID"
// @Success 200 {object} dto.APIResponse "Deleted"
// @Router /faculty/timetables/{id} [delete]
func (c *CampusController) DeleteTimetable(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.timetableService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Timetable slot deleted")
}

// SubmitFeedback stores student feedback
// @Summary Submit feedback
// @Description Anonymous submissions are stored without the enrollment number.
// @Tags feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.FeedbackRequest true "Feedback"
// @Success 201 {object} dto.APIResponse{data=models.Feedback} "Feedback submitted"
// @Router /student/feedback [post]
func (c *CampusController) SubmitFeedback(ctx *gin.Context) {
	var req dto.FeedbackRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	f, err := c.feedbackService.Submit(ctx.Request.Context(), middleware.CurrentEnrollment(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, f, "Feedback submitted")
}

// ListFeedback lists feedback
// @Summary List feedback
// @Tags feedback
// @Produce json
// @Security BearerAuth
// @Param category query string false "course, faculty, facility or general"
// @Param page query int false "Page (default 1)"
// @Param size query int false "Page size (default 10)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Feedback}} "Feedback"
// @Router /faculty/feedback [get]
func (c *CampusController) ListFeedback(ctx *gin.Context) {
	items, info, err := c.feedbackService.List(ctx.Request.Context(), ctx.Query("category"), pageRequest(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, items, info, "")
}

// DeleteFeedback removes a submission
// @Summary Delete feedback
// @Tags feedback
// @Security BearerAuth
// @Param id path int true "Feedback ID"
// @Success 200 {object} dto.APIResponse "Deleted"
// @Router /faculty/feedback/{id} [delete]
func (c *CampusController) DeleteFeedback(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.feedbackService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Feedback deleted")
}

// CreateReport writes a performance report
// @Summary Create a performance report
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.PerformanceReportRequest true "Report"
// @Success 201 {object} dto.APIResponse{data=models.PerformanceReport} "Report created"
// @Router /faculty/reports [post]
func (c *CampusController) CreateReport(ctx *gin.Context) {
	var req dto.PerformanceReportRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	r, err := c.reportService.CreateReport(ctx.Request.Context(), middleware.CurrentUserID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, r, "Report created")
}

// ListReports lists performance reports
// @Summary List performance reports
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param enrollmentNumber query string false "Enrollment number"
// @Param semester query int false "Semester"
// @Success 200 {object} dto.APIResponse{data=[]models.PerformanceReport} "Reports"
// @Router /faculty/reports [get]
func (c *CampusController) ListReports(ctx *gin.Context) {
	c.listReports(ctx, ctx.Query("enrollmentNumber"))
}

// MyReports lists the student's own reports
// @Summary List own performance reports
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param semester query int false "Semester"
// @Success 200 {object} dto.APIResponse{data=[]models.PerformanceReport} "Reports"
// @Router /student/reports [get]
func (c *CampusController) MyReports(ctx *gin.Context) {
	enrollment, ok := studentEnrollment(ctx)
	if !ok {
		return
	}
	c.listReports(ctx, enrollment)
}

func (c *CampusController) listReports(ctx *gin.Context, enrollment string) {
	semester, _ := strconv.Atoi(ctx.Query("semester"))
	reports, err := c.reportService.ListReports(ctx.Request.Context(), enrollment, semester)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, reports, "")
}

// DeleteReport removes a report
// @Summary Delete a performance report
// @Tags reports
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Success 200 {object} dto.APIResponse "Deleted"
// @Router /faculty/reports/{id} [delete]
func (c *CampusController) DeleteReport(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.reportService.DeleteReport(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Report deleted")
}

// AssignClassRep names a class representative
// @Summary Assign a class representative
// @Description One representative per class per academic year.
// @Tags class-representatives
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ClassRepresentativeRequest true "Assignment"
// @Success 201 {object} dto.APIResponse{data=models.ClassRepresentative} "Representative assigned"
// @Failure 409 {object} dto.ErrorResponse "Class already has a representative"
// @Router /faculty/class-reps [post]
func (c *CampusController) AssignClassRep(ctx *gin.Context) {
	var req dto.ClassRepresentativeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	rep, err := c.reportService.AssignClassRep(ctx.Request.Context(), middleware.CurrentUserID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, rep, "Class representative assigned")
}

// ListClassReps lists class representatives
// @Summary List class representatives
// @Tags class-representatives
// @Produce json
// @Security BearerAuth
// @Param department query string false "Department"
// @Param semester query int false "Semester"
// @Param section query string false "Section"
// @Param academicYear query string false "Academic year, e.g. 2025-26"
// @Success 200 {object} dto.APIResponse{data=[]models.ClassRepresentative} "Representatives"
// @Router /class-reps [get]
func (c *CampusController) ListClassReps(ctx *gin.Context) {
	semester, _ := strconv.Atoi(ctx.Query("semester"))
	filter := models.ClassFilter{
		Department: ctx.Query("department"),
		Semester:   semester,
		Section:    ctx.Query("section"),
	}
	reps, err := c.reportService.ListClassReps(ctx.Request.Context(), filter, ctx.Query("academicYear"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, reps, "")
}

// RemoveClassRep removes an assignment
// @Summary Remove a class representative
// @Tags class-representatives
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Success 200 {object} dto.APIResponse "Deleted"
// @Router /faculty/class-reps/{id} [delete]
func (c *CampusController) RemoveClassRep(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.reportService.RemoveClassRep(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Class representative removed")
}
