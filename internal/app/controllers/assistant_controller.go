package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/campusdesk/internal/app/models/dto"
	"github.com/yigit/campusdesk/internal/app/services"
	"github.com/yigit/campusdesk/internal/middleware"
	"github.com/yigit/campusdesk/internal/pkg/validation"
)

// AssistantController forwards requests to the LLM gateway
type AssistantController struct {
	assistantService services.IAssistantService
}

// NewAssistantController creates a new AssistantController
func NewAssistantController(assistantService services.IAssistantService) *AssistantController {
	return &AssistantController{assistantService: assistantService}
}

// Chat continues a conversation
// @Summary Chat with the assistant
// @Tags assistant
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AssistantChatRequest true "Conversation"
// @Success 200 {object} dto.APIResponse{data=dto.AssistantResponse} "Answer"
// @Failure 503 {object} dto.ErrorResponse "Gateway unavailable"
// @Router /assistant/chat [post]
func (c *AssistantController) Chat(ctx *gin.Context) {
	var req dto.AssistantChatRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	resp, err := c.assistantService.Chat(ctx.Request.Context(), &req)
	c.reply(ctx, resp, err)
}

// StudyRecommendations suggests study priorities from the student's marks and attendance
// @Summary Study recommendations
// @Tags assistant
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AssistantResponse} "Recommendations"
// @Failure 503 {object} dto.ErrorResponse "Gateway unavailable"
// @Router /student/assistant/recommendations [post]
func (c *AssistantController) StudyRecommendations(ctx *gin.Context) {
	enrollment, ok := studentEnrollment(ctx)
	if !ok {
		return
	}
	resp, err := c.assistantService.StudyRecommendations(ctx.Request.Context(), enrollment)
	c.reply(ctx, resp, err)
}

// MyAttendanceInsights explains the student's attendance
// @Summary Own attendance insights
// @Tags assistant
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AssistantResponse} "Insights"
// @Router /student/assistant/attendance-insights [post]
func (c *AssistantController) MyAttendanceInsights(ctx *gin.Context) {
	enrollment, ok := studentEnrollment(ctx)
	if !ok {
		return
	}
	resp, err := c.assistantService.AttendanceInsights(ctx.Request.Context(), enrollment)
	c.reply(ctx, resp, err)
}

// AttendanceInsights explains one student's attendance
// @Summary Attendance insights for a student
// @Tags assistant
// @Produce json
// @Security BearerAuth
// @Param enrollmentNumber path string true "Enrollment number"
// @Success 200 {object} dto.APIResponse{data=dto.AssistantResponse} "Insights"
// @Router /faculty/assistant/attendance-insights/{enrollmentNumber} [post]
func (c *AssistantController) AttendanceInsights(ctx *gin.Context) {
	enrollment := validation.NormalizeEnrollmentNumber(ctx.Param("enrollmentNumber"))
	if err := validation.ValidateEnrollmentNumber(enrollment); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	resp, err := c.assistantService.AttendanceInsights(ctx.Request.Context(), enrollment)
	c.reply(ctx, resp, err)
}

// DraftNotice drafts a notice
// @Summary Draft a notice
// @Tags assistant
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.DraftNoticeRequest true "Topic, audience and tone"
// @Success 200 {object} dto.APIResponse{data=dto.AssistantResponse} "Draft"
// @Router /faculty/assistant/draft-notice [post]
func (c *AssistantController) DraftNotice(ctx *gin.Context) {
	var req dto.DraftNoticeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	resp, err := c.assistantService.DraftNotice(ctx.Request.Context(), &req)
	c.reply(ctx, resp, err)
}

func (c *AssistantController) reply(ctx *gin.Context, resp *dto.AssistantResponse, err error) {
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp, "")
}
