package filestorage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusdesk/internal/pkg/apperrors"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func TestContentTypeHelpers(t *testing.T) {
	ct, err := DetectContentType(fileHeader(t, "notice.pdf", pdfBytes))
	require.NoError(t, err)
	assert.True(t, IsPDF(ct))
	assert.True(t, IsPreviewable(ct))

	ct, err = DetectContentType(fileHeader(t, "notes.txt", []byte("plain text notes")))
	require.NoError(t, err)
	assert.False(t, IsPreviewable(ct))
	assert.Equal(t, "text/plain", BaseType(ct))

	assert.True(t, IsImage("image/png"))
	assert.False(t, IsImage("application/pdf"))
	assert.True(t, IsPreviewable("application/pdf; charset=binary"))
	assert.False(t, IsPreviewable("application/vnd.openxmlformats-officedocument.wordprocessingml.document"))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "report.pdf", SanitizeFilename("../../etc/report.pdf"))
	assert.Equal(t, "a b.pdf", SanitizeFilename(`C:\Users\x\a b.pdf`))
	assert.Equal(t, "quoted.pdf", SanitizeFilename(`quo"ted.pdf`))
	assert.Equal(t, "file", SanitizeFilename(""))
}

func TestLocalStorage_SaveOpenDelete(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	for _, bucket := range []string{BucketCandidatePhotos, BucketNoticePDFs, BucketStudyMaterials} {
		info, err := os.Stat(filepath.Join(dir, bucket))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	obj, err := ls.Save(context.Background(), BucketNoticePDFs, fileHeader(t, "Exam Schedule.PDF", pdfBytes))
	require.NoError(t, err)
	assert.Equal(t, BucketNoticePDFs, obj.Bucket)
	assert.True(t, strings.HasSuffix(obj.Key, ".pdf"))
	assert.Equal(t, "Exam Schedule.PDF", obj.Filename)
	assert.Equal(t, int64(len(pdfBytes)), obj.Size)
	assert.True(t, IsPDF(obj.ContentType))
	assert.Equal(t, "http://localhost:8080/uploads/notice-pdfs/"+obj.Key, obj.URL)

	rc, err := ls.Open(context.Background(), BucketNoticePDFs, obj.Key)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, pdfBytes, got)

	require.NoError(t, ls.Delete(context.Background(), BucketNoticePDFs, obj.Key))
	_, err = ls.Open(context.Background(), BucketNoticePDFs, obj.Key)
	assert.True(t, errors.Is(err, apperrors.ErrFileNotFound))

	// deleting again is a no-op
	assert.NoError(t, ls.Delete(context.Background(), BucketNoticePDFs, obj.Key))
}

func TestLocalStorage_RejectsBadLocations(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	_, err = ls.Save(context.Background(), "avatars", fileHeader(t, "a.png", []byte("x")))
	assert.Error(t, err)

	_, err = ls.Open(context.Background(), BucketStudyMaterials, "../secret")
	assert.Error(t, err)

	_, err = ls.Save(context.Background(), BucketStudyMaterials, nil)
	assert.Error(t, err)
}

type mockS3Client struct {
	mock.Mock
}

func (m *mockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func (m *mockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.GetObjectOutput)
	return out, args.Error(1)
}

func (m *mockS3Client) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.DeleteObjectOutput)
	return out, args.Error(1)
}

func newMockS3(t *testing.T, client *mockS3Client) *S3Storage {
	t.Helper()
	s, err := NewS3Storage(context.Background(), S3Config{
		Bucket: "campus",
		Region: "eu-central-1",
	}, WithS3Client(client))
	require.NoError(t, err)
	return s
}

func TestS3Storage_SaveUsesBucketPrefix(t *testing.T) {
	client := new(mockS3Client)
	s := newMockS3(t, client)

	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return *in.Bucket == "campus" &&
			strings.HasPrefix(*in.Key, BucketStudyMaterials+"/") &&
			*in.ContentType == "application/pdf"
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	obj, err := s.Save(context.Background(), BucketStudyMaterials, fileHeader(t, "unit1.pdf", pdfBytes))
	require.NoError(t, err)
	assert.Equal(t, "https://campus.s3.eu-central-1.amazonaws.com/study-materials/"+obj.Key, obj.URL)
	client.AssertExpectations(t)
}

func TestS3Storage_OpenMissingKey(t *testing.T) {
	client := new(mockS3Client)
	s := newMockS3(t, client)

	client.On("GetObject", mock.Anything, mock.Anything).Return(nil, &types.NoSuchKey{}).Once()

	_, err := s.Open(context.Background(), BucketCandidatePhotos, "abc.png")
	assert.True(t, errors.Is(err, apperrors.ErrFileNotFound))
}

func TestS3Storage_OpenStreamsBody(t *testing.T) {
	client := new(mockS3Client)
	s := newMockS3(t, client)

	client.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return *in.Key == "notice-pdfs/n.pdf"
	})).Return(&s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(pdfBytes))}, nil).Once()

	rc, err := s.Open(context.Background(), BucketNoticePDFs, "n.pdf")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, pdfBytes, got)
}

func TestS3Storage_Delete(t *testing.T) {
	client := new(mockS3Client)
	s := newMockS3(t, client)

	client.On("DeleteObject", mock.Anything, mock.Anything).Return(&s3.DeleteObjectOutput{}, nil).Once()
	require.NoError(t, s.Delete(context.Background(), BucketCandidatePhotos, "p.jpg"))
	assert.NoError(t, s.Delete(context.Background(), BucketCandidatePhotos, ""))
	client.AssertNumberOfCalls(t, "DeleteObject", 1)
}

func TestClassifyS3Error(t *testing.T) {
	assert.Nil(t, classifyS3Error(nil, "op"))

	err := classifyS3Error(&smithy.GenericAPIError{Code: "NotFound"}, "head")
	assert.True(t, errors.Is(err, apperrors.ErrFileNotFound))

	err = classifyS3Error(&smithy.GenericAPIError{Code: "SlowDown"}, "upload")
	assert.True(t, errors.Is(err, apperrors.ErrServiceUnavailable))

	err = classifyS3Error(&smithy.GenericAPIError{Code: "AccessDenied"}, "upload")
	assert.Contains(t, err.Error(), "AccessDenied")
}

func TestNewS3Storage_RequiresBucket(t *testing.T) {
	_, err := NewS3Storage(context.Background(), S3Config{Region: "x"}, WithS3Client(new(mockS3Client)))
	assert.Error(t, err)

	s, err := NewS3Storage(context.Background(), S3Config{
		Bucket:   "campus",
		Region:   "us-east-1",
		Endpoint: "http://minio:9000/",
	}, WithS3Client(new(mockS3Client)))
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/campus/notice-pdfs/k.pdf", s.URL(BucketNoticePDFs, "k.pdf"))
}
