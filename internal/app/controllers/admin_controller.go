package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/app/models/dto"
	"github.com/yigit/campusdesk/internal/app/services"
	"github.com/yigit/campusdesk/internal/middleware"
)

// AdminController handles role administration
type AdminController struct {
	roleService services.IRoleService
}

// NewAdminController creates a new AdminController
func NewAdminController(roleService services.IRoleService) *AdminController {
	return &AdminController{roleService: roleService}
}

// ListRoles lists role grants
// @Summary List role grants
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param role query string false "student, faculty or admin"
// @Param page query int false "Page (default 1)"
// @Param size query int false "Page size (default 10)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.UserRole}} "Grants"
// @Router /admin/roles [get]
func (c *AdminController) ListRoles(ctx *gin.Context) {
	items, info, err := c.roleService.List(ctx.Request.Context(), models.Role(ctx.Query("role")), pageRequest(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, items, info, "")
}

// GrantRole adds a role to a user
// @Summary Grant a role
// @Description The user's open sessions receive a USER_UPDATED event.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.GrantRoleRequest true "Grant"
// @Success 201 {object} dto.APIResponse{data=models.UserRole} "Role granted"
// @Failure 409 {object} dto.ErrorResponse "Role already granted"
// @Router /admin/roles [post]
func (c *AdminController) GrantRole(ctx *gin.Context) {
	var req dto.GrantRoleRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	ur, err := c.roleService.Grant(ctx.Request.Context(), req.UserID, models.Role(req.Role))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, ur, "Role granted")
}

// RevokeRole removes a role from a user
// @Summary Revoke a role
// @Tags admin
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Param role path string true "Role"
// @Success 200 {object} dto.APIResponse "Role revoked"
// @Failure 404 {object} dto.ErrorResponse "Grant not found"
// @Router /admin/roles/{userId}/{role} [delete]
func (c *AdminController) RevokeRole(ctx *gin.Context) {
	userID, ok := pathID(ctx, "userId")
	if !ok {
		return
	}
	if err := c.roleService.Revoke(ctx.Request.Context(), userID, models.Role(ctx.Param("role"))); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Role revoked")
}
