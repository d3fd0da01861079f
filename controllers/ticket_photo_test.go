package controllers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hartwell-auto/hartwell-auto-api/models"
	"github.com/hartwell-auto/hartwell-auto-api/services"
)

var (
	testJPEGBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	testPNGBytes  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n', 0x00, 0x00, 0x00, 0x0D}
)

func photoUploadRequest(t *testing.T, router *gin.Engine, path, filename string, content []byte) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("photo", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, _ := http.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadTicketPhoto(t *testing.T) {
	db := setupTestDB(t)
	customer := createTestCustomer(t, db, "photo@example.com", "password123")
	ticket := createTestTicket(t, db, customer.ID)

	mock := services.NewMockPhotoService()
	mock.SetAsMockForTesting()
	defer services.SetPhotoService(nil)

	router := setupTestRouter()
	router.POST("/service-tickets/:id/photo", UploadTicketPhoto)

	path := fmt.Sprintf("/service-tickets/%d/photo", ticket.ID)

	w := photoUploadRequest(t, router, path, "before.jpg", testJPEGBytes)
	assert.Equal(t, http.StatusCreated, w.Code)

	response := parseBody(t, w)
	assert.Equal(t, "Photo uploaded successfully", response["message"])
	assert.Equal(t, "tickets/mock_before.jpg", response["photo_s3_key"])
	assert.True(t, mock.PhotoExists("tickets/mock_before.jpg"))

	var stored models.ServiceTicket
	require.NoError(t, db.First(&stored, ticket.ID).Error)
	require.NotNil(t, stored.PhotoS3Key)
	assert.Equal(t, "tickets/mock_before.jpg", *stored.PhotoS3Key)

	// Replacing the photo drops the previous object
	w = photoUploadRequest(t, router, path, "after.jpg", testJPEGBytes)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, mock.PhotoExists("tickets/mock_after.jpg"))
	assert.False(t, mock.PhotoExists("tickets/mock_before.jpg"))
}

func TestUploadTicketPhoto_RejectsBadUploads(t *testing.T) {
	db := setupTestDB(t)
	customer := createTestCustomer(t, db, "badphoto@example.com", "password123")
	ticket := createTestTicket(t, db, customer.ID)

	services.NewMockPhotoService().SetAsMockForTesting()
	defer services.SetPhotoService(nil)

	router := setupTestRouter()
	router.POST("/service-tickets/:id/photo", UploadTicketPhoto)

	// Wrong extension
	w := photoUploadRequest(t, router,
		fmt.Sprintf("/service-tickets/%d/photo", ticket.ID),
		"invoice.pdf", []byte("%PDF-1.4"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Only .png, .jpg and .jpeg files are allowed", parseBody(t, w)["error"])

	// Right extension, wrong content
	w = photoUploadRequest(t, router,
		fmt.Sprintf("/service-tickets/%d/photo", ticket.ID),
		"definitely-an-image.png", []byte("GIF89a this is not a png"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "File content is not a valid PNG or JPEG image", parseBody(t, w)["error"])

	// Missing file field
	req, _ := http.NewRequest(http.MethodPost,
		fmt.Sprintf("/service-tickets/%d/photo", ticket.ID), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown ticket
	w = photoUploadRequest(t, router, "/service-tickets/999/photo", "ok.jpg", testJPEGBytes)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadTicketPhoto_StorageNotConfigured(t *testing.T) {
	db := setupTestDB(t)
	customer := createTestCustomer(t, db, "nophoto@example.com", "password123")
	ticket := createTestTicket(t, db, customer.ID)

	services.SetPhotoService(nil)

	router := setupTestRouter()
	router.POST("/service-tickets/:id/photo", UploadTicketPhoto)

	w := photoUploadRequest(t, router,
		fmt.Sprintf("/service-tickets/%d/photo", ticket.ID),
		"ok.jpg", testJPEGBytes)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetTicketPhoto(t *testing.T) {
	db := setupTestDB(t)
	customer := createTestCustomer(t, db, "getphoto@example.com", "password123")
	ticket := createTestTicket(t, db, customer.ID)

	mock := services.NewMockPhotoService()
	mock.SetAsMockForTesting()
	defer services.SetPhotoService(nil)

	router := setupTestRouter()
	router.POST("/service-tickets/:id/photo", UploadTicketPhoto)
	router.GET("/service-tickets/:id/photo", GetTicketPhoto)

	path := fmt.Sprintf("/service-tickets/%d/photo", ticket.ID)

	// No photo yet
	w := jsonRequest(router, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Service ticket has no photo", parseBody(t, w)["error"])

	upload := photoUploadRequest(t, router, path, "engine.png", testPNGBytes)
	require.Equal(t, http.StatusCreated, upload.Code)

	w = jsonRequest(router, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, parseBody(t, w)["photo_url"], "tickets/mock_engine.png")
}
