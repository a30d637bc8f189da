package controllers

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yigit/campusdesk/internal/app/models/dto"
	"github.com/yigit/campusdesk/internal/app/services"
	"github.com/yigit/campusdesk/internal/middleware"
	"github.com/yigit/campusdesk/internal/pkg/apperrors"
	"github.com/yigit/campusdesk/internal/pkg/helpers"
	"github.com/yigit/campusdesk/internal/pkg/logger"
)

// pageRequest reads the page and size query parameters
func pageRequest(ctx *gin.Context) services.PageRequest {
	page, size := helpers.ParsePaginationParams(ctx)
	return services.PageRequest{Page: page, Size: size}
}

// pathID parses a positive int64 path parameter. On failure the 400 is already written.
func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid "+name).
			WithField(name).
			WithDetails(fmt.Sprintf("%q is not a valid id", ctx.Param(name)))
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// studentEnrollment returns the caller's enrollment number. Student-scoped
// queries must never run unfiltered, so a token without one is rejected.
func studentEnrollment(ctx *gin.Context) (string, bool) {
	enrollment := middleware.CurrentEnrollment(ctx)
	if enrollment == "" {
		middleware.HandleAPIError(ctx, apperrors.ErrProfileNotFound)
		return "", false
	}
	return enrollment, true
}

func respond(ctx *gin.Context, status int, data interface{}, message string) {
	ctx.JSON(status, dto.NewSuccessResponse(data, message))
}

func respondPage(ctx *gin.Context, items interface{}, info dto.PaginationInfo, message string) {
	ctx.JSON(http.StatusOK, dto.APIResponse{
		Success: true,
		Message: message,
		Data: dto.PaginatedResponse{
			Items:      items,
			Pagination: info,
		},
		Timestamp: time.Now(),
	})
}

// streamFile copies a stored file to the response. Inline files open in the
// browser, everything else downloads.
func streamFile(ctx *gin.Context, fc *services.FileContent, inline bool) {
	defer fc.Body.Close()

	disposition := "attachment"
	if inline {
		disposition = "inline"
	}
	ctx.Header("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": fc.Name}))
	ctx.Header("Cache-Control", "private, max-age=300")

	contentType := fc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if fc.Size > 0 {
		ctx.DataFromReader(http.StatusOK, fc.Size, contentType, fc.Body, nil)
		return
	}

	ctx.Status(http.StatusOK)
	ctx.Header("Content-Type", contentType)
	if _, err := io.Copy(ctx.Writer, fc.Body); err != nil {
		logger.Warn().Err(err).Str("file", fc.Name).Msg("File stream interrupted")
	}
}
