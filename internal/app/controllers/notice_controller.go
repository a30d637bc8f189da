package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/app/models/dto"
	"github.com/yigit/campusdesk/internal/app/services"
	"github.com/yigit/campusdesk/internal/middleware"
)

// NoticeController handles notices and study materials
type NoticeController struct {
	noticeService   services.INoticeService
	materialService services.IStudyMaterialService
}

// NewNoticeController creates a new NoticeController
func NewNoticeController(noticeService services.INoticeService, materialService services.IStudyMaterialService) *NoticeController {
	return &NoticeController{
		noticeService:   noticeService,
		materialService: materialService,
	}
}

// readerRole is the role used for notice audience checks. Admin grants see everything.
func readerRole(ctx *gin.Context) string {
	if claims, ok := middleware.CurrentClaims(ctx); ok && claims.HasRole(string(models.RoleAdmin)) {
		return string(models.RoleAdmin)
	}
	return string(middleware.CurrentRole(ctx))
}

// optionalFile returns the named multipart file, or nil when it was not sent.
// On a malformed upload the 400 is already written.
func optionalFile(ctx *gin.Context, field string) (*multipart.FileHeader, bool) {
	fh, err := ctx.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, true
	}
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid file upload").WithField(field).WithDetails(err.Error())))
		return nil, false
	}
	return fh, true
}

// CreateNotice publishes a notice
// @Summary Create a notice
// @Description Multipart form. The optional "attachment" must be a PDF of at most 10 MB. The notice is pushed to every connected user in its audience.
// @Tags notices
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param content formData string true "Content"
// @Param category formData string false "Category (default general)"
// @Param audience formData string false "all, students or faculty (default all)"
// @Param attachment formData file false "PDF attachment"
// @Success 201 {object} dto.APIResponse{data=models.Notice} "Notice created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or attachment is not a PDF"
// @Router /faculty/notices [post]
func (c *NoticeController) CreateNotice(ctx *gin.Context) {
	var req dto.CreateNoticeRequest
	if !middleware.BindForm(ctx, &req) {
		return
	}
	attachment, ok := optionalFile(ctx, "attachment")
	if !ok {
		return
	}

	n, err := c.noticeService.Create(ctx.Request.Context(), middleware.CurrentUserID(ctx), &req, attachment)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, n, "Notice created")
}

// ListNotices lists notices visible to the caller
// @Summary List notices
// @Tags notices
// @Produce json
// @Security BearerAuth
// @Param category query string false "Category"
// @Param page query int false "Page (default 1)"
// @Param size query int false "Page size (default 10)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Notice}} "Notices"
// @Router /notices [get]
func (c *NoticeController) ListNotices(ctx *gin.Context) {
	items, info, err := c.noticeService.List(ctx.Request.Context(), readerRole(ctx), ctx.Query("category"), pageRequest(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, items, info, "")
}

// GetNotice returns one notice
// @Summary Get a notice
// @Tags notices
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notice ID"
// @Success 200 {object} dto.APIResponse{data=models.Notice} "Notice"
// @Failure 404 {object} dto.ErrorResponse "Notice not found"
// @Router /notices/{id} [get]
func (c *NoticeController) GetNotice(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	n, err := c.noticeService.Get(ctx.Request.Context(), id, readerRole(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, n, "")
}

// DownloadNoticeAttachment streams the notice PDF
// @Summary Download a notice attachment
// @Tags notices
// @Produce application/pdf
// @Security BearerAuth
// @Param id path int true "Notice ID"
// @Success 200 {file} file "PDF"
// @Failure 404 {object} dto.ErrorResponse "Notice or attachment not found"
// @Router /notices/{id}/attachment [get]
func (c *NoticeController) DownloadNoticeAttachment(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	fc, err := c.noticeService.Attachment(ctx.Request.Context(), id, readerRole(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	streamFile(ctx, fc, ctx.Query("inline") == "true")
}

// DeleteNotice removes a notice and its attachment
// @Summary Delete a notice
// @Tags notices
// @Security BearerAuth
// @Param id path int true "Notice ID"
// @Success 200 {object} dto.APIResponse "Deleted"
// @Router /faculty/notices/{id} [delete]
func (c *NoticeController) DeleteNotice(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.noticeService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Notice deleted")
}

// UploadMaterial stores a study material
// @Summary Upload a study material
// @Description Multipart form with any file type up to 50 MB in the "file" field.
// @Tags materials
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param subject formData string true "Subject"
// @Param semester formData int true "Semester"
// @Param department formData string false "Department"
// @Param file formData file true "File"
// @Success 201 {object} dto.APIResponse{data=models.StudyMaterial} "Material uploaded"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or missing file"
// @Router /faculty/materials [post]
func (c *NoticeController) UploadMaterial(ctx *gin.Context) {
	var req dto.UploadMaterialRequest
	if !middleware.BindForm(ctx, &req) {
		return
	}
	file, ok := optionalFile(ctx, "file")
	if !ok {
		return
	}
	if file == nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "file is required").WithField("file")))
		return
	}

	m, err := c.materialService.Upload(ctx.Request.Context(), middleware.CurrentUserID(ctx), &req, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, m, "Material uploaded")
}

// ListMaterials lists study materials
// @Summary List study materials
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param subject query string false "Subject"
// @Param semester query int false "Semester"
// @Param department query string false "Department"
// @Param page query int false "Page (default 1)"
// @Param size query int false "Page size (default 10)"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.StudyMaterial}} "Materials"
// @Router /materials [get]
func (c *NoticeController) ListMaterials(ctx *gin.Context) {
	var q dto.MaterialQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	items, info, err := c.materialService.List(ctx.Request.Context(), q, pageRequest(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondPage(ctx, items, info, "")
}

// GetMaterial returns one study material
// @Summary Get a study material
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Success 200 {object} dto.APIResponse{data=models.StudyMaterial} "Material"
// @Router /materials/{id} [get]
func (c *NoticeController) GetMaterial(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	m, err := c.materialService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, m, "")
}

// DownloadMaterial streams the file as an attachment
// @Summary Download a study material
// @Tags materials
// @Produce octet-stream
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Success 200 {file} file "File"
// @Failure 404 {object} dto.ErrorResponse "Material not found"
// @Router /materials/{id}/download [get]
func (c *NoticeController) DownloadMaterial(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	fc, err := c.materialService.Download(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	streamFile(ctx, fc, false)
}

// PreviewMaterial streams a PDF inline
// @Summary Preview a study material
// @Description PDFs are streamed inline. Other types return previewAvailable=false with the download URL.
// @Tags materials
// @Produce application/pdf
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Success 200 {file} file "PDF"
// @Success 200 {object} dto.APIResponse{data=dto.PreviewResponse} "Preview not available"
// @Router /materials/{id}/preview [get]
func (c *NoticeController) PreviewMaterial(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	fc, fallback, err := c.materialService.Preview(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if fallback != nil {
		respond(ctx, http.StatusOK, fallback, fallback.Message)
		return
	}
	streamFile(ctx, fc, true)
}

// DeleteMaterial removes a study material and its file
// @Summary Delete a study material
// @Tags materials
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Success 200 {object} dto.APIResponse "Deleted"
// @Router /faculty/materials/{id} [delete]
func (c *NoticeController) DeleteMaterial(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.materialService.Delete(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Material deleted")
}
