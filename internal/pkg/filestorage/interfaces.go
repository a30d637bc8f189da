package filestorage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Buckets partition stored objects by purpose
const (
	BucketCandidatePhotos = "candidate-photos"
	BucketNoticePDFs      = "notice-pdfs"
	BucketStudyMaterials  = "study-materials"
)

var knownBuckets = map[string]bool{
	BucketCandidatePhotos: true,
	BucketNoticePDFs:      true,
	BucketStudyMaterials:  true,
}

// Object describes a stored file
type Object struct {
	Bucket      string `json:"bucket"`
	Key         string `json:"key"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	URL         string `json:"url"`
}

// Storage defines the operations every backend provides
type Storage interface {
	// Save stores an upload under a generated key
	Save(ctx context.Context, bucket string, fileHeader *multipart.FileHeader) (*Object, error)

	// Open streams a stored object; apperrors.ErrFileNotFound if it is missing
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)

	// Delete removes an object; deleting a missing object is not an error
	Delete(ctx context.Context, bucket, key string) error

	// URL returns the public URL of an object
	URL(bucket, key string) string
}

func checkLocation(bucket, key string) error {
	if !knownBuckets[bucket] {
		return fmt.Errorf("unknown bucket %q", bucket)
	}
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("invalid object key %q", key)
	}
	return nil
}

// newKey generates a collision-free key keeping the original extension
func newKey(filename string) string {
	return uuid.New().String() + strings.ToLower(filepath.Ext(filename))
}
