package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hartwell-auto/hartwell-auto-api/config"
	"github.com/hartwell-auto/hartwell-auto-api/models"
	"github.com/hartwell-auto/hartwell-auto-api/services"
	"github.com/hartwell-auto/hartwell-auto-api/utils"
)

// CreateTicketRequest represents the request body for opening a service
// ticket. The VIN is a free string; it doesn't need to match a
// registered vehicle.
type CreateTicketRequest struct {
	VIN         string   `json:"vin" binding:"required"`
	ServiceDate string   `json:"service_date" binding:"required"`
	ServiceDesc string   `json:"service_desc" binding:"required"`
	CustomerID  uint     `json:"customer_id" binding:"required"`
	VehicleID   *uint    `json:"vehicle_id"`
	CategoryID  *uint    `json:"category_id"`
	LaborHours  *float64 `json:"labor_hours" binding:"omitempty,gte=0"`
	LaborRate   *float64 `json:"labor_rate" binding:"omitempty,gte=0"`
	Mileage     *int     `json:"mileage" binding:"omitempty,gte=0"`
	Notes       *string  `json:"notes"`
}

// AddInventoryRequest represents the request body for consuming a part
// on a ticket
type AddInventoryRequest struct {
	InventoryID  uint `json:"inventory_id" binding:"required"`
	QuantityUsed int  `json:"quantity_used" binding:"required,gte=1"`
}

// EditMechanicsRequest represents the request body for a bulk mechanic edit
type EditMechanicsRequest struct {
	AddIDs    []uint `json:"add_ids" binding:"required"`
	RemoveIDs []uint `json:"remove_ids" binding:"required"`
}

// CreateTicket handles POST /service-tickets
func CreateTicket(c *gin.Context) {
	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	serviceDate, err := time.Parse("2006-01-02", req.ServiceDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "service_date must be in YYYY-MM-DD format"})
		return
	}

	db := config.GetDB()

	var customer models.Customer
	if err := db.First(&customer, req.CustomerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Customer not found."})
		return
	}

	ticket := models.ServiceTicket{
		VIN:         req.VIN,
		ServiceDate: serviceDate,
		ServiceDesc: req.ServiceDesc,
		Status:      "Pending",
		CustomerID:  req.CustomerID,
		VehicleID:   req.VehicleID,
		CategoryID:  req.CategoryID,
		Mileage:     req.Mileage,
		Notes:       req.Notes,
	}

	// Labor defaults come from the category unless given explicitly
	if req.CategoryID != nil {
		var category models.ServiceCategory
		if err := db.First(&category, *req.CategoryID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Service category not found."})
			return
		}
		ticket.LaborHours = category.DefaultLaborHours
		ticket.LaborRate = category.DefaultLaborRate
	}
	if req.LaborHours != nil {
		ticket.LaborHours = *req.LaborHours
	}
	if req.LaborRate != nil {
		ticket.LaborRate = *req.LaborRate
	}

	if err := db.Create(&ticket).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create service ticket"})
		return
	}

	if err := db.Preload("Customer").First(&ticket, ticket.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load service ticket"})
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

// GetTickets handles GET /service-tickets
func GetTickets(c *gin.Context) {
	var tickets []models.ServiceTicket
	if err := config.GetDB().
		Preload("Customer").
		Preload("Mechanics").
		Preload("ServiceInventories.Inventory").
		Find(&tickets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load service tickets"})
		return
	}
	c.JSON(http.StatusOK, tickets)
}

// GetTicket handles GET /service-tickets/:id
func GetTicket(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ticket, ok := loadTicket(c, id)
	if !ok {
		return
	}
	attachPhotoURL(ticket)
	c.JSON(http.StatusOK, ticket)
}

// DeleteTicket handles DELETE /service-tickets/:id - consumption rows
// cascade with the ticket
func DeleteTicket(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var ticket models.ServiceTicket
	if err := db.First(&ticket, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service Ticket not found"})
		return
	}

	if err := db.Select("ServiceInventories", "Mechanics").Delete(&ticket).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete service ticket"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service Ticket deleted successfully"})
}

// AssignMechanic handles PUT /service-tickets/:id/assign-mechanic/:mechanic_id
func AssignMechanic(c *gin.Context) {
	ticketID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	mechanicID, ok := parseIDParam(c, "mechanic_id")
	if !ok {
		return
	}

	err := services.AssignMechanic(config.GetDB(), ticketID, mechanicID)
	switch {
	case err == nil:
		respondWithTicket(c, ticketID)
	case errors.Is(err, services.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Service Ticket not found"})
	case errors.Is(err, services.ErrMechanicNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Mechanic not found"})
	case errors.Is(err, services.ErrAlreadyAssigned):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Mechanic already assigned to this service ticket"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign mechanic"})
	}
}

// RemoveMechanic handles PUT /service-tickets/:id/remove-mechanic/:mechanic_id
func RemoveMechanic(c *gin.Context) {
	ticketID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	mechanicID, ok := parseIDParam(c, "mechanic_id")
	if !ok {
		return
	}

	err := services.RemoveMechanic(config.GetDB(), ticketID, mechanicID)
	switch {
	case err == nil:
		respondWithTicket(c, ticketID)
	case errors.Is(err, services.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Service Ticket not found"})
	case errors.Is(err, services.ErrMechanicNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Mechanic not found"})
	case errors.Is(err, services.ErrNotAssigned):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Mechanic not assigned to this service ticket"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove mechanic"})
	}
}

// EditMechanics handles PUT /service-tickets/:id/edit-mechanics - bulk
// add/remove with best-effort semantics
func EditMechanics(c *gin.Context) {
	ticketID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req EditMechanicsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := services.EditMechanics(config.GetDB(), ticketID, req.AddIDs, req.RemoveIDs)
	switch {
	case err == nil:
		respondWithTicket(c, ticketID)
	case errors.Is(err, services.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Service Ticket not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to edit mechanics"})
	}
}

// AddInventory handles POST /service-tickets/:id/add-inventory -
// consumes stock of a part for this ticket
func AddInventory(c *gin.Context) {
	ticketID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AddInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := services.AddPart(config.GetDB(), ticketID, req.InventoryID, req.QuantityUsed)
	if err != nil {
		var stockErr *services.InsufficientStockError
		switch {
		case errors.Is(err, services.ErrTicketNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Service Ticket not found"})
		case errors.Is(err, services.ErrPartNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Inventory Part not found"})
		case errors.Is(err, services.ErrInvalidQuantity):
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity_used must be at least 1"})
		case errors.As(err, &stockErr):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Insufficient stock",
				"part":      stockErr.PartName,
				"requested": stockErr.Requested,
				"available": stockErr.Available,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add inventory to service ticket"})
		}
		return
	}

	if result.Created {
		c.JSON(http.StatusCreated, gin.H{
			"message":         "Added part to service ticket",
			"part":            result.PartName,
			"quantity_used":   result.Record.QuantityUsed,
			"stock_remaining": result.StockRemaining,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":           "Updated part quantity on service ticket",
		"part":              result.PartName,
		"quantity_used":     result.Record.QuantityUsed,
		"quantity_in_stock": result.StockRemaining,
	})
}

// RemoveInventory handles PUT /service-tickets/:id/remove-inventory/:record_id -
// deletes a consumption row and restores its full quantity to stock
func RemoveInventory(c *gin.Context) {
	ticketID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	recordID, ok := parseIDParam(c, "record_id")
	if !ok {
		return
	}

	result, err := services.RemovePart(config.GetDB(), ticketID, recordID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"message":           "Removed " + result.PartName + " from service ticket and restored stock",
			"part":              result.PartName,
			"quantity_restored": result.QuantityRestored,
			"stock_remaining":   result.StockRemaining,
		})
	case errors.Is(err, services.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Service Inventory record not found"})
	case errors.Is(err, services.ErrTicketMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Service Inventory record does not belong to this service ticket"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove inventory from service ticket"})
	}
}

// UploadTicketPhoto handles POST /service-tickets/:id/photo - attaches
// a job photo to the ticket, replacing any previous one
func UploadTicketPhoto(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var ticket models.ServiceTicket
	if err := db.First(&ticket, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service Ticket not found"})
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A photo file is required"})
		return
	}

	photos := services.GetPhotoService()
	if photos == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Photo storage is not configured"})
		return
	}

	key, err := photos.UploadPhoto(fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": uploadErr.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload photo"})
		return
	}

	oldKey := ticket.PhotoS3Key
	ticket.PhotoS3Key = &key
	if err := db.Model(&ticket).Update("photo_s3_key", key).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save photo reference"})
		return
	}

	// Best effort; an orphaned object is preferable to a failed request
	if oldKey != nil && *oldKey != key {
		_ = photos.DeletePhoto(*oldKey)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Photo uploaded successfully",
		"photo_s3_key": key,
	})
}

// GetTicketPhoto handles GET /service-tickets/:id/photo - returns a
// short-lived presigned URL for the ticket's photo
func GetTicketPhoto(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var ticket models.ServiceTicket
	if err := db.First(&ticket, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service Ticket not found"})
		return
	}
	if ticket.PhotoS3Key == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service ticket has no photo"})
		return
	}

	photos := services.GetPhotoService()
	if photos == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Photo storage is not configured"})
		return
	}

	url, err := photos.GetPhotoURL(*ticket.PhotoS3Key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate photo URL"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"photo_url": url})
}

// loadTicket fetches a ticket with its relations, writing a 404 on miss
func loadTicket(c *gin.Context, id uint) (*models.ServiceTicket, bool) {
	var ticket models.ServiceTicket
	if err := config.GetDB().
		Preload("Customer").
		Preload("Mechanics").
		Preload("ServiceInventories.Inventory").
		First(&ticket, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Service Ticket not found."})
		return nil, false
	}
	return &ticket, true
}

// respondWithTicket writes the current ticket representation after a
// successful assignment mutation
func respondWithTicket(c *gin.Context, id uint) {
	ticket, ok := loadTicket(c, id)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// attachPhotoURL fills the computed presigned photo URL when the ticket
// has a photo and storage is configured
func attachPhotoURL(ticket *models.ServiceTicket) {
	if ticket.PhotoS3Key == nil {
		return
	}
	photos := services.GetPhotoService()
	if photos == nil {
		return
	}
	if url, err := photos.GetPhotoURL(*ticket.PhotoS3Key); err == nil && url != "" {
		ticket.PhotoURL = &url
	}
}
