package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yigit/campusdesk/internal/app/models/dto"
)

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

// StreamStatus reports whether the change stream is connected
type StreamStatus interface {
	Connected() bool
}

// HealthController reports dependency status
type HealthController struct {
	database HealthChecker
	redis    HealthChecker // nil when redis is disabled
	stream   StreamStatus
}

// NewHealthController creates a new HealthController
func NewHealthController(database, redis HealthChecker, stream StreamStatus) *HealthController {
	return &HealthController{database: database, redis: redis, stream: stream}
}

// Health reports dependency status
// @Summary Health check
// @Description 503 when the database is unreachable. Redis and the change stream are reported but do not fail the check.
// @Tags health
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.HealthResponse} "Healthy"
// @Failure 503 {object} dto.APIResponse{data=dto.HealthResponse} "Database unreachable"
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	resp := dto.HealthResponse{
		Status:   "ok",
		Database: status(c.database.Healthy(checkCtx)),
		Redis:    "disabled",
		Realtime: "disconnected",
	}
	if c.redis != nil {
		resp.Redis = status(c.redis.Healthy(checkCtx))
	}
	if c.stream != nil && c.stream.Connected() {
		resp.Realtime = "connected"
	}

	code := http.StatusOK
	if resp.Database != "up" {
		resp.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	ctx.JSON(code, dto.APIResponse{
		Success:   code == http.StatusOK,
		Data:      resp,
		Timestamp: time.Now(),
	})
}

func status(up bool) string {
	if up {
		return "up"
	}
	return "down"
}
