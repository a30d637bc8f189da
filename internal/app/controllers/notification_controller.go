package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/campusdesk/internal/app/models/dto"
	"github.com/yigit/campusdesk/internal/app/services"
	"github.com/yigit/campusdesk/internal/middleware"
)

// NotificationController exposes the caller's notification store and faculty alerts
type NotificationController struct {
	notificationService services.INotificationService
	alertService        services.IAlertService
}

// NewNotificationController creates a new NotificationController
func NewNotificationController(notificationService services.INotificationService, alertService services.IAlertService) *NotificationController {
	return &NotificationController{
		notificationService: notificationService,
		alertService:        alertService,
	}
}

// List returns the caller's notifications
// @Summary List notifications
// @Description Newest first, with the unread count and whether the change stream is connected.
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.NotificationListResponse} "Notifications"
// @Router /notifications [get]
func (c *NotificationController) List(ctx *gin.Context) {
	respond(ctx, http.StatusOK, c.notificationService.List(middleware.CurrentUserID(ctx)), "")
}

// MarkAsRead flags one notification as read
// @Summary Mark a notification as read
// @Description Unknown or already-read ids leave the store unchanged.
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID, e.g. notice-12"
// @Success 200 {object} dto.APIResponse{data=dto.NotificationListResponse} "Notifications"
// @Router /notifications/{id}/read [post]
func (c *NotificationController) MarkAsRead(ctx *gin.Context) {
	resp := c.notificationService.MarkAsRead(middleware.CurrentUserID(ctx), ctx.Param("id"))
	respond(ctx, http.StatusOK, resp, "")
}

// ClearAll empties the caller's notifications
// @Summary Clear notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.NotificationListResponse} "Notifications cleared"
// @Router /notifications/clear [post]
func (c *NotificationController) ClearAll(ctx *gin.Context) {
	respond(ctx, http.StatusOK, c.notificationService.ClearAll(middleware.CurrentUserID(ctx)), "Notifications cleared")
}

// CreateAlert issues an alert
// @Summary Issue an alert
// @Description Without an enrollment number the alert goes to every connected user, otherwise only to that student.
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AlertRequest true "Alert"
// @Success 201 {object} dto.APIResponse{data=models.Alert} "Alert issued"
// @Router /faculty/alerts [post]
func (c *NotificationController) CreateAlert(ctx *gin.Context) {
	var req dto.AlertRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	alert, err := c.alertService.Create(ctx.Request.Context(), middleware.CurrentUserID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, alert, "Alert issued")
}

// ListAlerts lists issued alerts
// @Summary List alerts
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param enrollmentNumber query string false "Target enrollment number"
// @Param page query int false "Page (default 1)"
// @Param size query int false "Page size (default 10)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Alert}} "Alerts"
// @Router /faculty/alerts [get]
func (c *NotificationController) ListAlerts(ctx *gin.Context) {
	items, info, err := c.alertService.List(ctx.Request.Context(), ctx.Query("enrollmentNumber"), pageRequest(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, items, info, "")
}

// DeleteAlert removes an alert
// @Summary Delete an alert
// @Tags notifications
// @Security BearerAuth
// @Param id path int true "Alert ID"
// @Success 200 {object} dto.APIResponse "Deleted"
// @Router /faculty/alerts/{id} [delete]
func (c *NotificationController) DeleteAlert(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.alertService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Alert deleted")
}
