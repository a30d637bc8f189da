package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/campusdesk/internal/app/models/dto"
	"github.com/yigit/campusdesk/internal/app/services"
	"github.com/yigit/campusdesk/internal/middleware"
)

// AcademicController handles attendance and marks
type AcademicController struct {
	attendanceService services.IAttendanceService
	markService       services.IMarkService
}

// NewAcademicController creates a new AcademicController
func NewAcademicController(attendanceService services.IAttendanceService, markService services.IMarkService) *AcademicController {
	return &AcademicController{
		attendanceService: attendanceService,
		markService:       markService,
	}
}

// MarkAttendance records a class's attendance
// @Summary Mark attendance
// @Description Upserts one record per student for the subject and date. Re-marking overwrites the status.
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.MarkAttendanceRequest true "Attendance sheet"
// @Success 201 {object} dto.APIResponse{data=[]models.Attendance} "Attendance recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Router /faculty/attendance [post]
func (c *AcademicController) MarkAttendance(ctx *gin.Context) {
	var req dto.MarkAttendanceRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	records, err := c.attendanceService.MarkAttendance(ctx.Request.Context(), middleware.CurrentUserID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, records, "Attendance recorded")
}

// ListAttendance lists attendance records
// @Summary List attendance
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param enrollmentNumber query string false "Enrollment number"
// @Param subject query string false "Subject"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param page query int false "Page (default 1)"
// @Param size query int false "Page size (default 10)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Attendance}} "Attendance"
// @Router /faculty/attendance [get]
func (c *AcademicController) ListAttendance(ctx *gin.Context) {
	var q dto.AttendanceQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	c.listAttendance(ctx, q)
}

// MyAttendance lists the student's own attendance
// @Summary List own attendance
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param subject query string false "Subject"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param page query int false "Page (default 1)"
// @Param size query int false "Page size (default 10)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Attendance}} "Attendance"
// @Router /student/attendance [get]
func (c *AcademicController) MyAttendance(ctx *gin.Context) {
	var q dto.AttendanceQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	enrollment, ok := studentEnrollment(ctx)
	if !ok {
		return
	}
	q.EnrollmentNumber = enrollment
	c.listAttendance(ctx, q)
}

func (c *AcademicController) listAttendance(ctx *gin.Context, q dto.AttendanceQuery) {
	items, info, err := c.attendanceService.List(ctx.Request.Context(), q, pageRequest(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, items, info, "")
}

// AttendanceSummary returns the student's per-subject percentages
// @Summary Own attendance summary
// @Description Percentage is (present + late) / total per subject.
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.AttendanceSummary} "Summary"
// @Router /student/attendance/summary [get]
func (c *AcademicController) AttendanceSummary(ctx *gin.Context) {
	enrollment, ok := studentEnrollment(ctx)
	if !ok {
		return
	}
	summary, err := c.attendanceService.Summary(ctx.Request.Context(), enrollment)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, summary, "")
}

// DeleteAttendance removes one record
// @Summary Delete an attendance record
// @Tags attendance
// @Security BearerAuth
// @Param id path int true "Record ID"
// @Success 200 {object} dto.APIResponse "Deleted"
// @Failure 404 {object} dto.ErrorResponse "Not found"
// @Router /faculty/attendance/{id} [delete]
func (c *AcademicController) DeleteAttendance(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.attendanceService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Attendance record deleted")
}

// CreateMark records a mark
// @Summary Create a mark
// @Description The new row is pushed to the student's notifications.
// @Tags marks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.MarkRequest true "Mark"
// @Success 201 {object} dto.APIResponse{data=models.Mark} "Mark created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Router /faculty/marks [post]
func (c *AcademicController) CreateMark(ctx *gin.Context) {
	var req dto.MarkRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	m, err := c.markService.Create(ctx.Request.Context(), middleware.CurrentUserID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, m, "Mark created")
}

// UpdateMark replaces a mark
// @Summary Update a mark
// @Tags marks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Mark ID"
// @Param request body dto.MarkRequest true "Mark"
// @Success 200 {object} dto.APIResponse{data=models.Mark} "Mark updated"
// @Router /faculty/marks/{id} [put]
func (c *AcademicController) UpdateMark(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.MarkRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	m, err := c.markService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, m, "Mark updated")
}

// DeleteMark removes a mark
// @Summary Delete a mark
// @Tags marks
// @Security BearerAuth
// @Param id path int true "Mark ID"
// @Success 200 {object} dto.APIResponse "Deleted"
// @Router /faculty/marks/{id} [delete]
func (c *AcademicController) DeleteMark(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.markService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Mark deleted")
}

// ListMarks lists marks
// @Summary List marks
// @Tags marks
// @Produce json
// @Security BearerAuth
// @Param enrollmentNumber query string false "Enrollment number"
// @Param subject query string false "Subject"
// @Param semester query int false "Semester"
// @Param page query int false "Page (default 1)"
// @Param size query int false "Page size (default 10)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Mark}} "Marks"
// @Router /faculty/marks [get]
func (c *AcademicController) ListMarks(ctx *gin.Context) {
	var q dto.MarkQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	c.listMarks(ctx, q)
}

// MyMarks lists the student's own marks
// @Summary List own marks
// @Tags marks
// @Produce json
// @Security BearerAuth
// @Param subject query string false "Subject"
// @Param semester query int false "Semester"
// @Param page query int false "Page (default 1)"
// @Param size query int false "Page size (default 10)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Mark}} "Marks"
// @Router /student/marks [get]
func (c *AcademicController) MyMarks(ctx *gin.Context) {
	var q dto.MarkQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	enrollment, ok := studentEnrollment(ctx)
	if !ok {
		return
	}
	q.EnrollmentNumber = enrollment
	c.listMarks(ctx, q)
}

func (c *AcademicController) listMarks(ctx *gin.Context, q dto.MarkQuery) {
	items, info, err := c.markService.List(ctx.Request.Context(), q, pageRequest(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, items, info, "")
}
