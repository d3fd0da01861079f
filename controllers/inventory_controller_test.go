package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hartwell-auto/hartwell-auto-api/models"
)

func TestCreateInventory(t *testing.T) {
	setupTestDB(t)

	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		expectedStatus int
		checkResponse  func(t *testing.T, response map[string]interface{})
	}{
		{
			name: "full part",
			requestBody: map[string]interface{}{
				"part_name":         "Brake Pads",
				"price":             49.99,
				"cost":              22.00,
				"quantity_in_stock": 100,
				"category":          "Brakes",
				"part_number":       "BP-2210",
				"reorder_point":     10,
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				assert.Equal(t, "Brake Pads", response["part_name"])
				assert.Equal(t, float64(100), response["quantity_in_stock"])
				assert.Equal(t, float64(10), response["reorder_point"])
			},
		},
		{
			name: "reorder point defaults to five",
			requestBody: map[string]interface{}{
				"part_name": "Oil Filter",
				"price":     12.50,
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				assert.Equal(t, float64(5), response["reorder_point"])
				assert.Equal(t, float64(0), response["quantity_in_stock"])
			},
		},
		{
			name: "price must be positive",
			requestBody: map[string]interface{}{
				"part_name": "Free Part",
				"price":     0,
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate part number",
			requestBody: map[string]interface{}{
				"part_name":   "Brake Pads Premium",
				"price":       79.99,
				"part_number": "BP-2210",
			},
			expectedStatus: http.StatusBadRequest,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				assert.Equal(t, "Inventory part with this part number already exists.", response["message"])
			},
		},
	}

	router := setupTestRouter()
	router.POST("/inventory", CreateInventory)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := jsonRequest(router, http.MethodPost, "/inventory", tt.requestBody)
			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.checkResponse != nil {
				tt.checkResponse(t, parseBody(t, w))
			}
		})
	}
}

func TestUpdateInventory_Restocking(t *testing.T) {
	db := setupTestDB(t)
	part := createTestPart(t, db, "Air Filter", 20, 2)

	router := setupTestRouter()
	router.PUT("/inventory/:id", UpdateInventory)

	w := jsonRequest(router, http.MethodPut, fmt.Sprintf("/inventory/%d", part.ID),
		map[string]interface{}{"quantity_in_stock": 40, "price": 24.50})
	assert.Equal(t, http.StatusOK, w.Code)

	var stored models.Inventory
	require.NoError(t, db.First(&stored, part.ID).Error)
	assert.Equal(t, 40, stored.QuantityInStock)
	assert.Equal(t, 24.50, stored.Price)
	assert.Equal(t, "Air Filter", stored.PartName)

	w = jsonRequest(router, http.MethodPut, "/inventory/999",
		map[string]interface{}{"price": 1.00})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteInventory_GuardedWhileInUse(t *testing.T) {
	db := setupTestDB(t)
	customer := createTestCustomer(t, db, "guard@example.com", "password123")
	ticket := createTestTicket(t, db, customer.ID)
	part := createTestPart(t, db, "Alternator", 180, 4)

	router := setupTestRouter()
	router.POST("/service-tickets/:id/add-inventory", AddInventory)
	router.PUT("/service-tickets/:id/remove-inventory/:record_id", RemoveInventory)
	router.DELETE("/inventory/:id", DeleteInventory)

	w := jsonRequest(router, http.MethodPost,
		fmt.Sprintf("/service-tickets/%d/add-inventory", ticket.ID),
		map[string]interface{}{"inventory_id": part.ID, "quantity_used": 1})
	require.Equal(t, http.StatusCreated, w.Code)

	// Consumed parts are retained for history
	w = jsonRequest(router, http.MethodDelete, fmt.Sprintf("/inventory/%d", part.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	response := parseBody(t, w)
	assert.Equal(t, "Cannot delete part that has been used on a service ticket", response["error"])
	assert.Equal(t, "Consider setting quantity_in_stock to 0 instead", response["suggestion"])

	// After the consumption row is removed, deletion goes through
	var record models.ServiceInventory
	require.NoError(t, db.Where("inventory_id = ?", part.ID).First(&record).Error)
	w = jsonRequest(router, http.MethodPut,
		fmt.Sprintf("/service-tickets/%d/remove-inventory/%d", ticket.ID, record.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = jsonRequest(router, http.MethodDelete, fmt.Sprintf("/inventory/%d", part.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = jsonRequest(router, http.MethodDelete, fmt.Sprintf("/inventory/%d", part.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchInventory(t *testing.T) {
	db := setupTestDB(t)
	createTestPart(t, db, "Front Brake Pads", 49.99, 20)
	createTestPart(t, db, "Rear Brake Pads", 44.99, 20)
	createTestPart(t, db, "Oil Filter", 12.50, 20)

	router := setupTestRouter()
	router.GET("/inventory/search", SearchInventory)

	w := jsonRequest(router, http.MethodGet, "/inventory/search?part_name=Brake", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var parts []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parts))
	assert.Len(t, parts, 2)

	w = jsonRequest(router, http.MethodGet, "/inventory/search?part_name=Muffler", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parts))
	assert.Len(t, parts, 0)
}

func TestGetLowStock(t *testing.T) {
	db := setupTestDB(t)
	createTestPart(t, db, "Plentiful", 10, 50)
	createTestPart(t, db, "Scarce", 10, 3)
	createTestPart(t, db, "At Threshold", 10, 5)

	router := setupTestRouter()
	router.GET("/inventory/low-stock", GetLowStock)

	// Default threshold is 5, inclusive
	w := jsonRequest(router, http.MethodGet, "/inventory/low-stock", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	response := parseBody(t, w)
	assert.Equal(t, float64(5), response["threshold"])
	assert.Equal(t, float64(2), response["count"])

	w = jsonRequest(router, http.MethodGet, "/inventory/low-stock?threshold=2", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), parseBody(t, w)["count"])

	w = jsonRequest(router, http.MethodGet, "/inventory/low-stock?threshold=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAllInventory_SortedByName(t *testing.T) {
	db := setupTestDB(t)
	createTestPart(t, db, "Wiper Blade", 15, 10)
	createTestPart(t, db, "Air Filter", 20, 10)
	createTestPart(t, db, "Oil Filter", 12.50, 10)

	router := setupTestRouter()
	router.GET("/inventory", GetAllInventory)

	w := jsonRequest(router, http.MethodGet, "/inventory", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var parts []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parts))
	require.Len(t, parts, 3)
	assert.Equal(t, "Air Filter", parts[0]["part_name"])
	assert.Equal(t, "Oil Filter", parts[1]["part_name"])
	assert.Equal(t, "Wiper Blade", parts[2]["part_name"])
}
