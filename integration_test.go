package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/hartwell-auto/hartwell-auto-api/config"
	"github.com/hartwell-auto/hartwell-auto-api/middleware"
)

// setupRouter wires the full production route table with a local-only
// authenticator. No request in these tests reaches the database.
func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	auth := middleware.NewAuthenticator(&config.Config{JWTSecret: "routing-test-secret"})
	registerRoutes(router, auth)

	return router
}

func TestHealthEndpointRouting(t *testing.T) {
	router := setupRouter()

	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, true, response["success"])
	assert.Equal(t, "Hartwell Auto API is running", response["message"])
}

func TestHealthEndpointOnlyAcceptsGet(t *testing.T) {
	router := setupRouter()

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		req, _ := http.NewRequest(method, "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code, "%s /health should not be routed", method)
	}
}

func TestGuardedRoutesRejectAnonymousRequests(t *testing.T) {
	router := setupRouter()

	guarded := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/customers/my-tickets"},
		{http.MethodGet, "/mechanics"},
		{http.MethodGet, "/mechanics/my-tickets"},
		{http.MethodPost, "/vehicles"},
		{http.MethodPost, "/inventory"},
		{http.MethodPost, "/service-tickets"},
		{http.MethodPost, "/service-categories"},
		{http.MethodDelete, "/service-tickets/1"},
	}

	for _, route := range guarded {
		req, _ := http.NewRequest(route.method, route.path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s should require a token", route.method, route.path)

		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "Token is missing!", response["message"])
	}
}

func TestUnknownRouteReturnsNotFound(t *testing.T) {
	router := setupRouter()

	req, _ := http.NewRequest(http.MethodGet, "/nonexistent", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
