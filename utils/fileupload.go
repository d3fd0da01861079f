package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

const (
	// MaxPhotoSize is 5MB in bytes
	MaxPhotoSize = 5 * 1024 * 1024
)

// allowedPhotoFormats maps accepted file extensions to their MIME types
var allowedPhotoFormats = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidatePhotoFile validates an uploaded job photo's size, extension
// and content. The extension is not trusted: the file's leading bytes
// must sniff as PNG or JPEG.
func ValidatePhotoFile(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxPhotoSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxPhotoSize/(1024*1024)),
		}
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if _, ok := allowedPhotoFormats[ext]; !ok {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: "Only .png, .jpg and .jpeg files are allowed",
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	// http.DetectContentType needs at most the first 512 bytes
	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read uploaded file: %w", err)
	}

	switch http.DetectContentType(head[:n]) {
	case "image/png", "image/jpeg":
	default:
		return &FileUploadError{
			Code:    "INVALID_FILE_CONTENT",
			Message: "File content is not a valid PNG or JPEG image",
		}
	}

	return nil
}

// PhotoContentType returns the MIME type for an accepted photo filename
func PhotoContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if contentType, ok := allowedPhotoFormats[ext]; ok {
		return contentType
	}
	return "application/octet-stream"
}
