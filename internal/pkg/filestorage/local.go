package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/yigit/campusdesk/internal/pkg/apperrors"
	"github.com/yigit/campusdesk/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem, one directory per bucket.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
	baseURL  string // Public prefix the files are served under, e.g. http://host/uploads
}

// NewLocalStorage creates a new LocalStorage instance and its bucket directories.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	for bucket := range knownBuckets {
		dir := filepath.Join(basePath, bucket)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error().Err(err).Str("path", dir).Msg("Failed to create storage directory")
			return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
		}
	}
	logger.Info().Str("path", basePath).Msg("Local storage directories ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// Save implements Storage
func (ls *LocalStorage) Save(ctx context.Context, bucket string, fileHeader *multipart.FileHeader) (*Object, error) {
	if fileHeader == nil {
		return nil, apperrors.NewBadRequestError("no file uploaded")
	}
	key := newKey(fileHeader.Filename)
	if err := checkLocation(bucket, key); err != nil {
		return nil, err
	}

	contentType, err := DetectContentType(fileHeader)
	if err != nil {
		contentType = fallbackType
	}

	src, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dstPath := filepath.Join(ls.basePath, bucket, key)
	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, src)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}

	logger.Info().Str("bucket", bucket).Str("filename", fileHeader.Filename).Str("key", key).Msg("File saved successfully")
	return &Object{
		Bucket:      bucket,
		Key:         key,
		Filename:    SanitizeFilename(fileHeader.Filename),
		ContentType: contentType,
		Size:        size,
		URL:         ls.URL(bucket, key),
	}, nil
}

// Open implements Storage
func (ls *LocalStorage) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	if err := checkLocation(bucket, key); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(ls.basePath, bucket, key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// Delete implements Storage. Missing files count as deleted.
func (ls *LocalStorage) Delete(ctx context.Context, bucket, key string) error {
	if key == "" {
		return nil
	}
	if err := checkLocation(bucket, key); err != nil {
		return err
	}

	physicalPath := filepath.Join(ls.basePath, bucket, key)
	if err := os.Remove(physicalPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// URL implements Storage
func (ls *LocalStorage) URL(bucket, key string) string {
	return ls.baseURL + "/" + bucket + "/" + key
}
