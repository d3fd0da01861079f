package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hartwell-auto/hartwell-auto-api/config"
	"github.com/hartwell-auto/hartwell-auto-api/middleware"
	"github.com/hartwell-auto/hartwell-auto-api/models"
)

// CreateVehicleRequest represents the request body for registering a vehicle
type CreateVehicleRequest struct {
	VIN          string  `json:"vin" binding:"required,len=17"`
	Make         string  `json:"make" binding:"required"`
	Model        string  `json:"model" binding:"required"`
	Year         int     `json:"year" binding:"required,gte=1900"`
	Color        *string `json:"color"`
	LicensePlate *string `json:"license_plate"`
}

// UpdateVehicleRequest represents the request body for updating a vehicle
type UpdateVehicleRequest struct {
	Make         *string `json:"make"`
	Model        *string `json:"model"`
	Year         *int    `json:"year" binding:"omitempty,gte=1900"`
	Color        *string `json:"color"`
	LicensePlate *string `json:"license_plate"`
}

// CreateVehicle handles POST /vehicles - registers a vehicle for the
// calling customer
func CreateVehicle(c *gin.Context) {
	current, err := middleware.GetCurrentCustomer(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Token is invalid!"})
		return
	}

	var req CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vehicle := models.Vehicle{
		VIN:          req.VIN,
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		Color:        req.Color,
		LicensePlate: req.LicensePlate,
		CustomerID:   current.ID,
	}
	if err := config.GetDB().Create(&vehicle).Error; err != nil {
		if isDuplicateError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Vehicle with this VIN already exists."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create vehicle"})
		return
	}
	c.JSON(http.StatusCreated, vehicle)
}

// GetVehicles handles GET /vehicles
func GetVehicles(c *gin.Context) {
	var vehicles []models.Vehicle
	if err := config.GetDB().Find(&vehicles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load vehicles"})
		return
	}
	c.JSON(http.StatusOK, vehicles)
}

// GetVehicle handles GET /vehicles/:id
func GetVehicle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var vehicle models.Vehicle
	if err := config.GetDB().Preload("ServiceTickets").First(&vehicle, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Vehicle not found."})
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

// UpdateVehicle handles PUT /vehicles/:id - only the owning customer
// may update a vehicle. The VIN is immutable once registered.
func UpdateVehicle(c *gin.Context) {
	current, err := middleware.GetCurrentCustomer(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Token is invalid!"})
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var vehicle models.Vehicle
	if err := db.First(&vehicle, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Vehicle not found."})
		return
	}
	if vehicle.CustomerID != current.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		return
	}

	var req UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Make != nil {
		vehicle.Make = *req.Make
	}
	if req.Model != nil {
		vehicle.Model = *req.Model
	}
	if req.Year != nil {
		vehicle.Year = *req.Year
	}
	if req.Color != nil {
		vehicle.Color = req.Color
	}
	if req.LicensePlate != nil {
		vehicle.LicensePlate = req.LicensePlate
	}

	if err := db.Save(&vehicle).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update vehicle"})
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

// DeleteVehicle handles DELETE /vehicles/:id - only the owning customer
// may delete a vehicle; its service tickets keep their history with the
// vehicle link cleared
func DeleteVehicle(c *gin.Context) {
	current, err := middleware.GetCurrentCustomer(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Token is invalid!"})
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var vehicle models.Vehicle
	if err := db.First(&vehicle, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Vehicle not found."})
		return
	}
	if vehicle.CustomerID != current.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		return
	}

	if err := db.Delete(&vehicle).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete vehicle"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vehicle deleted successfully"})
}
