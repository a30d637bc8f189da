package filestorage

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	ContentTypePDF = "application/pdf"
	fallbackType   = "application/octet-stream"
)

// DetectContentType sniffs the upload's content rather than trusting the client header
func DetectContentType(fileHeader *multipart.FileHeader) (string, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("detect content type: %w", err)
	}
	return mt.String(), nil
}

// BaseType strips parameters such as charset
func BaseType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// IsPDF reports a PDF content type
func IsPDF(contentType string) bool {
	return BaseType(contentType) == ContentTypePDF
}

// IsImage reports an image content type
func IsImage(contentType string) bool {
	return strings.HasPrefix(BaseType(contentType), "image/")
}

// IsPreviewable reports whether a file can be rendered inline. Only PDFs are.
func IsPreviewable(contentType string) bool {
	return IsPDF(contentType)
}

// SanitizeFilename keeps the base name and drops characters unsafe in headers
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == '"', r == '/', r == ';':
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." {
		return "file"
	}
	return name
}
