package services

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/app/models/dto"
	"github.com/yigit/campusdesk/internal/pkg/apperrors"
	"github.com/yigit/campusdesk/internal/pkg/filestorage"
)

func TestCreateNotice_AttachmentMustBePDF(t *testing.T) {
	repo := new(MockNoticeRepository)
	storage := new(MockStorage)
	svc := NewNoticeService(repo, storage, zerolog.Nop())

	_, err := svc.Create(context.Background(), 5, &dto.CreateNoticeRequest{Title: "Exams", Content: "Schedule"},
		formFile(t, "attachment", "schedule.txt", sampleTXT))
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedFileType)
	storage.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateNotice_WithPDF(t *testing.T) {
	repo := new(MockNoticeRepository)
	storage := new(MockStorage)
	svc := NewNoticeService(repo, storage, zerolog.Nop())
	ctx := context.Background()

	storage.On("Save", ctx, filestorage.BucketNoticePDFs, mock.Anything).
		Return(&filestorage.Object{Bucket: filestorage.BucketNoticePDFs, Key: "k.pdf"}, nil)
	repo.On("Create", ctx, mock.MatchedBy(func(n *models.Notice) bool {
		return n.Audience == "all" && n.Category == "general" && *n.AttachmentName == "schedule.pdf"
	})).Return(nil)

	n, err := svc.Create(ctx, 5, &dto.CreateNoticeRequest{Title: "Exams", Content: "Schedule"},
		formFile(t, "attachment", "schedule.pdf", samplePDF))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/notice-pdfs/k.pdf", n.AttachmentURL)
}

func TestCreateNotice_InsertFailureRemovesUpload(t *testing.T) {
	repo := new(MockNoticeRepository)
	storage := new(MockStorage)
	svc := NewNoticeService(repo, storage, zerolog.Nop())
	ctx := context.Background()

	storage.On("Save", ctx, filestorage.BucketNoticePDFs, mock.Anything).Return(&filestorage.Object{Key: "k.pdf"}, nil)
	storage.On("Delete", ctx, filestorage.BucketNoticePDFs, "k.pdf").Return(nil)
	repo.On("Create", ctx, mock.Anything).Return(assert.AnError)

	_, err := svc.Create(ctx, 5, &dto.CreateNoticeRequest{Title: "Exams", Content: "Schedule"},
		formFile(t, "attachment", "schedule.pdf", samplePDF))
	assert.ErrorIs(t, err, assert.AnError)
	storage.AssertExpectations(t)
}

func TestNoticeAudience(t *testing.T) {
	repo := new(MockNoticeRepository)
	svc := NewNoticeService(repo, new(MockStorage), zerolog.Nop())
	ctx := context.Background()

	repo.On("List", ctx, models.NoticeFilter{Audiences: []string{"all", "students"}, Limit: 10}).Return([]*models.Notice{}, int64(0), nil)
	repo.On("List", ctx, models.NoticeFilter{Limit: 10}).Return([]*models.Notice{}, int64(0), nil)
	repo.On("GetByID", ctx, int64(3)).Return(&models.Notice{ID: 3, Audience: "faculty"}, nil)

	_, _, err := svc.List(ctx, "student", "", PageRequest{})
	require.NoError(t, err)
	_, _, err = svc.List(ctx, "admin", "", PageRequest{})
	require.NoError(t, err)
	repo.AssertExpectations(t)

	_, err = svc.Get(ctx, 3, "student")
	assert.ErrorIs(t, err, apperrors.ErrNoticeNotFound)
	_, err = svc.Get(ctx, 3, "faculty")
	assert.NoError(t, err)
}

func TestNoticeAttachment_Missing(t *testing.T) {
	repo := new(MockNoticeRepository)
	svc := NewNoticeService(repo, new(MockStorage), zerolog.Nop())
	repo.On("GetByID", mock.Anything, int64(3)).Return(&models.Notice{ID: 3, Audience: "all"}, nil)

	_, err := svc.Attachment(context.Background(), 3, "student")
	assert.ErrorIs(t, err, apperrors.ErrAttachmentNotFound)
}

func TestStudyMaterial_NonPDFPreviewFallsBackToDownload(t *testing.T) {
	repo := new(MockStudyMaterialRepository)
	storage := new(MockStorage)
	svc := NewStudyMaterialService(repo, storage, zerolog.Nop())
	ctx := context.Background()

	storage.On("Save", ctx, filestorage.BucketStudyMaterials, mock.Anything).
		Return(&filestorage.Object{Bucket: filestorage.BucketStudyMaterials, Key: "n.txt", Size: int64(len(sampleTXT))}, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*models.StudyMaterial")).Run(func(args mock.Arguments) {
		args.Get(1).(*models.StudyMaterial).ID = 8
	}).Return(nil)

	m, err := svc.Upload(ctx, 5, &dto.UploadMaterialRequest{Title: "Notes", Subject: "DBMS", Semester: 5},
		formFile(t, "file", "notes.txt", sampleTXT))
	require.NoError(t, err)
	assert.False(t, m.Previewable)
	assert.True(t, strings.HasPrefix(m.ContentType, "text/plain"))

	repo.On("GetByID", ctx, int64(8)).Return(m, nil)
	storage.On("Open", ctx, filestorage.BucketStudyMaterials, "n.txt").Return(io.NopCloser(strings.NewReader(string(sampleTXT))), nil)

	file, preview, err := svc.Preview(ctx, 8)
	require.NoError(t, err)
	assert.Nil(t, file)
	require.NotNil(t, preview)
	assert.False(t, preview.PreviewAvailable)
	assert.Equal(t, "Preview not available for this file type", preview.Message)
	assert.Equal(t, "/api/v1/materials/8/download", preview.DownloadURL)

	dl, err := svc.Download(ctx, 8)
	require.NoError(t, err)
	defer dl.Body.Close()
	body, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	assert.Equal(t, sampleTXT, body)
	assert.Equal(t, "notes.txt", dl.Name)
}

func TestStudyMaterial_PDFPreviewStreams(t *testing.T) {
	repo := new(MockStudyMaterialRepository)
	storage := new(MockStorage)
	svc := NewStudyMaterialService(repo, storage, zerolog.Nop())
	ctx := context.Background()

	repo.On("GetByID", ctx, int64(9)).Return(&models.StudyMaterial{ID: 9, FileKey: "s.pdf", FileName: "syllabus.pdf", ContentType: "application/pdf"}, nil)
	storage.On("Open", ctx, filestorage.BucketStudyMaterials, "s.pdf").Return(io.NopCloser(strings.NewReader(string(samplePDF))), nil)

	file, preview, err := svc.Preview(ctx, 9)
	require.NoError(t, err)
	assert.Nil(t, preview)
	require.NotNil(t, file)
	assert.Equal(t, "application/pdf", file.ContentType)
}
