package services

import (
	"fmt"
	"mime/multipart"
	"sync"

	"github.com/hartwell-auto/hartwell-auto-api/utils"
)

// MockPhotoService is an in-memory PhotoService for testing
type MockPhotoService struct {
	photos map[string][]byte
	mu     sync.RWMutex
}

// NewMockPhotoService creates a new mock photo service
func NewMockPhotoService() *MockPhotoService {
	return &MockPhotoService{
		photos: make(map[string][]byte),
	}
}

// SetAsMockForTesting installs this mock as the global photo service
func (m *MockPhotoService) SetAsMockForTesting() {
	SetPhotoService(m)
}

// UploadPhoto simulates a photo upload, applying the same validation
// as the real service
func (m *MockPhotoService) UploadPhoto(fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidatePhotoFile(fileHeader); err != nil {
		return "", err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content := make([]byte, fileHeader.Size)
	if _, err := file.Read(content); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	key := fmt.Sprintf("tickets/mock_%s", fileHeader.Filename)

	m.mu.Lock()
	m.photos[key] = content
	m.mu.Unlock()

	return key, nil
}

// GetPhotoURL simulates presigned URL generation
func (m *MockPhotoService) GetPhotoURL(photoKey string) (string, error) {
	if photoKey == "" {
		return "", nil
	}

	m.mu.RLock()
	_, exists := m.photos[photoKey]
	m.mu.RUnlock()
	if !exists {
		return "", fmt.Errorf("photo not found in mock storage: %s", photoKey)
	}

	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", photoKey), nil
}

// DeletePhoto simulates photo deletion
func (m *MockPhotoService) DeletePhoto(photoKey string) error {
	if photoKey == "" {
		return nil
	}

	m.mu.Lock()
	delete(m.photos, photoKey)
	m.mu.Unlock()
	return nil
}

// PhotoExists reports whether a photo exists in mock storage
func (m *MockPhotoService) PhotoExists(photoKey string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.photos[photoKey]
	return exists
}

// Clear removes all photos from mock storage
func (m *MockPhotoService) Clear() {
	m.mu.Lock()
	m.photos = make(map[string][]byte)
	m.mu.Unlock()
}
