package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/app/models/dto"
	"github.com/yigit/campusdesk/internal/app/repositories"
	"github.com/yigit/campusdesk/internal/pkg/apperrors"
	"github.com/yigit/campusdesk/internal/pkg/filestorage"
	"github.com/yigit/campusdesk/internal/pkg/realtime"
)

const (
	maxNoticeAttachmentSize = 10 << 20
	maxMaterialSize         = 50 << 20
)

// FileContent is a stored file being streamed back to a client
type FileContent struct {
	Body        io.ReadCloser
	Name        string
	ContentType string
	Size        int64
}

// audiencesFor returns the notice audiences a role may read. Nil means all.
func audiencesFor(role string) []string {
	switch models.Role(role) {
	case models.RoleStudent:
		return []string{realtime.AudienceAll, realtime.AudienceStudents}
	case models.RoleFaculty:
		return []string{realtime.AudienceAll, realtime.AudienceFaculty}
	}
	return nil
}

func canRead(role, audience string) bool {
	allowed := audiencesFor(role)
	if allowed == nil {
		return true
	}
	for _, a := range allowed {
		if a == audience {
			return true
		}
	}
	return false
}

// INoticeService defines notice operations
type INoticeService interface {
	Create(ctx context.Context, createdBy int64, req *dto.CreateNoticeRequest, attachment *multipart.FileHeader) (*models.Notice, error)
	Get(ctx context.Context, id int64, role string) (*models.Notice, error)
	List(ctx context.Context, role, category string, page PageRequest) ([]*models.Notice, dto.PaginationInfo, error)
	Delete(ctx context.Context, id int64) error
	Attachment(ctx context.Context, id int64, role string) (*FileContent, error)
}

// NoticeService publishes notices with optional PDF attachments
type NoticeService struct {
	noticeRepo repositories.INoticeRepository
	storage    filestorage.Storage
	logger     zerolog.Logger
}

// NewNoticeService creates a new NoticeService
func NewNoticeService(noticeRepo repositories.INoticeRepository, storage filestorage.Storage, logger zerolog.Logger) *NoticeService {
	return &NoticeService{noticeRepo: noticeRepo, storage: storage, logger: logger}
}

// Create publishes a notice. Attachments must be PDFs; anything else is rejected
// before it reaches storage.
func (s *NoticeService) Create(ctx context.Context, createdBy int64, req *dto.CreateNoticeRequest, attachment *multipart.FileHeader) (*models.Notice, error) {
	n := &models.Notice{
		Title:     strings.TrimSpace(req.Title),
		Content:   strings.TrimSpace(req.Content),
		Category:  strings.TrimSpace(req.Category),
		Audience:  req.Audience,
		CreatedBy: createdBy,
	}
	if n.Audience == "" {
		n.Audience = realtime.AudienceAll
	}
	if n.Category == "" {
		n.Category = "general"
	}

	if attachment != nil {
		if attachment.Size > maxNoticeAttachmentSize {
			return nil, apperrors.ErrFileTooLarge
		}
		contentType, err := filestorage.DetectContentType(attachment)
		if err != nil {
			return nil, err
		}
		if !filestorage.IsPDF(contentType) {
			return nil, apperrors.ErrUnsupportedFileType.WithDetails(map[string]interface{}{
				"contentType": contentType,
				"allowed":     filestorage.ContentTypePDF,
			})
		}
		obj, err := s.storage.Save(ctx, filestorage.BucketNoticePDFs, attachment)
		if err != nil {
			return nil, err
		}
		name := filestorage.SanitizeFilename(attachment.Filename)
		n.AttachmentKey = &obj.Key
		n.AttachmentName = &name
	}

	if err := s.noticeRepo.Create(ctx, n); err != nil {
		s.removeAttachment(ctx, n.AttachmentKey)
		return nil, err
	}
	s.withAttachmentURL(n)
	s.logger.Info().Int64("noticeID", n.ID).Str("audience", n.Audience).Bool("attachment", n.AttachmentKey != nil).Msg("Notice published")
	return n, nil
}

// Get returns a notice the role may read
func (s *NoticeService) Get(ctx context.Context, id int64, role string) (*models.Notice, error) {
	n, err := s.noticeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canRead(role, n.Audience) {
		return nil, apperrors.ErrNoticeNotFound
	}
	s.withAttachmentURL(n)
	return n, nil
}

// List returns the notices addressed to the role, newest first
func (s *NoticeService) List(ctx context.Context, role, category string, page PageRequest) ([]*models.Notice, dto.PaginationInfo, error) {
	limit, offset := page.window()
	items, total, err := s.noticeRepo.List(ctx, models.NoticeFilter{
		Audiences: audiencesFor(role),
		Category:  strings.TrimSpace(category),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	for _, n := range items {
		s.withAttachmentURL(n)
	}
	return items, page.info(total), nil
}

// Delete removes a notice and its attachment
func (s *NoticeService) Delete(ctx context.Context, id int64) error {
	n, err := s.noticeRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.removeAttachment(ctx, n.AttachmentKey)
	return nil
}

// Attachment opens a notice's PDF
func (s *NoticeService) Attachment(ctx context.Context, id int64, role string) (*FileContent, error) {
	n, err := s.Get(ctx, id, role)
	if err != nil {
		return nil, err
	}
	if n.AttachmentKey == nil {
		return nil, apperrors.ErrAttachmentNotFound
	}
	body, err := s.storage.Open(ctx, filestorage.BucketNoticePDFs, *n.AttachmentKey)
	if err != nil {
		return nil, fmt.Errorf("open notice %d attachment: %w", id, err)
	}
	name := "notice.pdf"
	if n.AttachmentName != nil {
		name = *n.AttachmentName
	}
	return &FileContent{Body: body, Name: name, ContentType: filestorage.ContentTypePDF, Size: -1}, nil
}

func (s *NoticeService) withAttachmentURL(n *models.Notice) {
	if n.AttachmentKey != nil && s.storage != nil {
		n.AttachmentURL = s.storage.URL(filestorage.BucketNoticePDFs, *n.AttachmentKey)
	}
}

func (s *NoticeService) removeAttachment(ctx context.Context, key *string) {
	if key == nil || s.storage == nil {
		return
	}
	if err := s.storage.Delete(ctx, filestorage.BucketNoticePDFs, *key); err != nil {
		s.logger.Warn().Err(err).Str("key", *key).Msg("Failed to delete notice attachment")
	}
}

// IStudyMaterialService defines study material operations
type IStudyMaterialService interface {
	Upload(ctx context.Context, uploadedBy int64, req *dto.UploadMaterialRequest, file *multipart.FileHeader) (*models.StudyMaterial, error)
	Get(ctx context.Context, id int64) (*models.StudyMaterial, error)
	List(ctx context.Context, query dto.MaterialQuery, page PageRequest) ([]*models.StudyMaterial, dto.PaginationInfo, error)
	Delete(ctx context.Context, id int64) error
	Download(ctx context.Context, id int64) (*FileContent, error)
	// Preview returns the file when it can be shown inline, otherwise a
	// PreviewResponse pointing at the download.
	Preview(ctx context.Context, id int64) (*FileContent, *dto.PreviewResponse, error)
}

// StudyMaterialService stores course files of any type
type StudyMaterialService struct {
	materialRepo repositories.IStudyMaterialRepository
	storage      filestorage.Storage
	logger       zerolog.Logger
}

// NewStudyMaterialService creates a new StudyMaterialService
func NewStudyMaterialService(materialRepo repositories.IStudyMaterialRepository, storage filestorage.Storage, logger zerolog.Logger) *StudyMaterialService {
	return &StudyMaterialService{materialRepo: materialRepo, storage: storage, logger: logger}
}

// Upload stores the file and records it
func (s *StudyMaterialService) Upload(ctx context.Context, uploadedBy int64, req *dto.UploadMaterialRequest, file *multipart.FileHeader) (*models.StudyMaterial, error) {
	if file == nil {
		return nil, apperrors.NewValidationError("file", "file is required")
	}
	if file.Size > maxMaterialSize {
		return nil, apperrors.ErrFileTooLarge
	}
	contentType, err := filestorage.DetectContentType(file)
	if err != nil {
		return nil, err
	}
	obj, err := s.storage.Save(ctx, filestorage.BucketStudyMaterials, file)
	if err != nil {
		return nil, err
	}

	m := &models.StudyMaterial{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Subject:     strings.TrimSpace(req.Subject),
		Semester:    req.Semester,
		Department:  strings.TrimSpace(req.Department),
		FileKey:     obj.Key,
		FileName:    filestorage.SanitizeFilename(file.Filename),
		ContentType: contentType,
		FileSize:    obj.Size,
		UploadedBy:  uploadedBy,
	}
	if err := s.materialRepo.Create(ctx, m); err != nil {
		if delErr := s.storage.Delete(ctx, filestorage.BucketStudyMaterials, obj.Key); delErr != nil {
			s.logger.Warn().Err(delErr).Str("key", obj.Key).Msg("Failed to delete orphaned study material")
		}
		return nil, err
	}
	s.decorate(m)
	s.logger.Info().Int64("materialID", m.ID).Str("contentType", contentType).Msg("Study material uploaded")
	return m, nil
}

// Get returns one material
func (s *StudyMaterialService) Get(ctx context.Context, id int64) (*models.StudyMaterial, error) {
	m, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.decorate(m)
	return m, nil
}

// List returns materials matching the query
func (s *StudyMaterialService) List(ctx context.Context, q dto.MaterialQuery, page PageRequest) ([]*models.StudyMaterial, dto.PaginationInfo, error) {
	limit, offset := page.window()
	items, total, err := s.materialRepo.List(ctx, models.MaterialFilter{
		Subject:    strings.TrimSpace(q.Subject),
		Semester:   q.Semester,
		Department: strings.TrimSpace(q.Department),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	for _, m := range items {
		s.decorate(m)
	}
	return items, page.info(total), nil
}

// Delete removes a material and its file
func (s *StudyMaterialService) Delete(ctx context.Context, id int64) error {
	m, err := s.materialRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, filestorage.BucketStudyMaterials, m.FileKey); err != nil {
		s.logger.Warn().Err(err).Str("key", m.FileKey).Msg("Failed to delete study material file")
	}
	return nil
}

// Download opens a material's file regardless of its type
func (s *StudyMaterialService) Download(ctx context.Context, id int64) (*FileContent, error) {
	m, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.open(ctx, m)
}

// Preview opens previewable files and describes the fallback for the rest
func (s *StudyMaterialService) Preview(ctx context.Context, id int64) (*FileContent, *dto.PreviewResponse, error) {
	m, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !filestorage.IsPreviewable(m.ContentType) {
		return nil, &dto.PreviewResponse{
			PreviewAvailable: false,
			Message:          "Preview not available for this file type",
			DownloadURL:      fmt.Sprintf("/api/v1/materials/%d/download", m.ID),
		}, nil
	}
	fc, err := s.open(ctx, m)
	return fc, nil, err
}

func (s *StudyMaterialService) open(ctx context.Context, m *models.StudyMaterial) (*FileContent, error) {
	body, err := s.storage.Open(ctx, filestorage.BucketStudyMaterials, m.FileKey)
	if err != nil {
		return nil, fmt.Errorf("open study material %d: %w", m.ID, err)
	}
	return &FileContent{Body: body, Name: m.FileName, ContentType: m.ContentType, Size: m.FileSize}, nil
}

func (s *StudyMaterialService) decorate(m *models.StudyMaterial) {
	m.Previewable = filestorage.IsPreviewable(m.ContentType)
	if s.storage != nil {
		m.FileURL = s.storage.URL(filestorage.BucketStudyMaterials, m.FileKey)
	}
}
