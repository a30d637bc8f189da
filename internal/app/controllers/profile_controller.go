package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yigit/campusdesk/internal/app/models/dto"
	"github.com/yigit/campusdesk/internal/app/services"
	"github.com/yigit/campusdesk/internal/middleware"
)

// ProfileController handles student and faculty profiles
type ProfileController struct {
	profileService services.IProfileService
}

// NewProfileController creates a new ProfileController
func NewProfileController(profileService services.IProfileService) *ProfileController {
	return &ProfileController{profileService: profileService}
}

// GetStudentProfile returns the caller's student profile
// @Summary Get own student profile
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.Profile} "Profile"
// @Failure 404 {object} dto.ErrorResponse "Profile not found"
// @Router /student/profile [get]
func (c *ProfileController) GetStudentProfile(ctx *gin.Context) {
	p, err := c.profileService.GetStudentProfile(ctx.Request.Context(), middleware.CurrentUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, p, "")
}

// UpdateStudentProfile edits the caller's student profile
// @Summary Update own student profile
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Profile} "Profile updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Router /student/profile [put]
func (c *ProfileController) UpdateStudentProfile(ctx *gin.Context) {
	var req dto.UpdateProfileRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	p, err := c.profileService.UpdateStudentProfile(ctx.Request.Context(), middleware.CurrentUserID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, p, "Profile updated")
}

// GetFacultyProfile returns the caller's faculty profile
// @Summary Get own faculty profile
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.FacultyProfile} "Profile"
// @Router /faculty/profile [get]
func (c *ProfileController) GetFacultyProfile(ctx *gin.Context) {
	p, err := c.profileService.GetFacultyProfile(ctx.Request.Context(), middleware.CurrentUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, p, "")
}

// UpdateFacultyProfile edits the caller's faculty profile
// @Summary Update own faculty profile
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.FacultyProfile} "Profile updated"
// @Router /faculty/profile [put]
func (c *ProfileController) UpdateFacultyProfile(ctx *gin.Context) {
	var req dto.UpdateProfileRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	p, err := c.profileService.UpdateFacultyProfile(ctx.Request.Context(), middleware.CurrentUserID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, p, "Profile updated")
}

// ListStudents lists the student directory
// @Summary List students
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Param department query string false "Department"
// @Param semester query int false "Semester"
// @Param section query string false "Section"
// @Param verify query bool false "Verification state"
// @Param search query string false "Name, email or enrollment number"
// @Param page query int false "Page (default 1)"
// @Param size query int false "Page size (default 10)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Profile}} "Students"
// @Router /faculty/students [get]
func (c *ProfileController) ListStudents(ctx *gin.Context) {
	var q dto.ProfileListQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	items, info, err := c.profileService.ListStudents(ctx.Request.Context(), q, pageRequest(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, items, info, "")
}

// VerifyStudent sets a student's verify flag
// @Summary Verify a student profile
// @Description Granting verification emails the student and refreshes their open sessions.
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Student user ID"
// @Param request body dto.VerifyProfileRequest true "Verify flag"
// @Success 200 {object} dto.APIResponse{data=models.Profile} "Verification updated"
// @Failure 404 {object} dto.ErrorResponse "Profile not found"
// @Router /faculty/students/{userId}/verify [patch]
func (c *ProfileController) VerifyStudent(ctx *gin.Context) {
	userID, ok := pathID(ctx, "userId")
	if !ok {
		return
	}
	var req dto.VerifyProfileRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	p, err := c.profileService.VerifyStudent(ctx.Request.Context(), userID, *req.Verify)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, p, "Verification updated")
}

// ListFaculty lists faculty profiles
// @Summary List faculty
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Param verify query bool false "Verification state"
// @Param page query int false "Page (default 1)"
// @Param size query int false "Page size (default 10)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.FacultyProfile}} "Faculty"
// @Router /admin/faculty [get]
func (c *ProfileController) ListFaculty(ctx *gin.Context) {
	var verify *bool
	if v := ctx.Query("verify"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "verify must be true or false").WithField("verify")))
			return
		}
		verify = &b
	}
	items, info, err := c.profileService.ListFaculty(ctx.Request.Context(), verify, pageRequest(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, items, info, "")
}

// VerifyFaculty sets a faculty member's verify flag
// @Summary Verify a faculty profile
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Faculty user ID"
// @Param request body dto.VerifyProfileRequest true "Verify flag"
// @Success 200 {object} dto.APIResponse{data=models.FacultyProfile} "Verification updated"
// @Router /admin/faculty/{userId}/verify [patch]
func (c *ProfileController) VerifyFaculty(ctx *gin.Context) {
	userID, ok := pathID(ctx, "userId")
	if !ok {
		return
	}
	var req dto.VerifyProfileRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	p, err := c.profileService.VerifyFaculty(ctx.Request.Context(), userID, *req.Verify)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, p, "Verification updated")
}
