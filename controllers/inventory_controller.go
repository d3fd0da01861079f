package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hartwell-auto/hartwell-auto-api/config"
	"github.com/hartwell-auto/hartwell-auto-api/models"
	"github.com/hartwell-auto/hartwell-auto-api/services"
)

// CreateInventoryRequest represents the request body for creating a part
type CreateInventoryRequest struct {
	PartName        string  `json:"part_name" binding:"required"`
	Price           float64 `json:"price" binding:"required,gt=0"`
	Cost            float64 `json:"cost" binding:"omitempty,gte=0"`
	QuantityInStock int     `json:"quantity_in_stock" binding:"omitempty,gte=0"`
	Category        *string `json:"category"`
	PartNumber      *string `json:"part_number"`
	ReorderPoint    *int    `json:"reorder_point" binding:"omitempty,gte=0"`
}

// UpdateInventoryRequest represents the request body for updating a part.
// Quantity adjustments outside the consumption ledger are allowed here
// for restocking; consumption always goes through the ticket endpoints.
type UpdateInventoryRequest struct {
	PartName        *string  `json:"part_name"`
	Price           *float64 `json:"price" binding:"omitempty,gt=0"`
	Cost            *float64 `json:"cost" binding:"omitempty,gte=0"`
	QuantityInStock *int     `json:"quantity_in_stock" binding:"omitempty,gte=0"`
	Category        *string  `json:"category"`
	PartNumber      *string  `json:"part_number"`
	ReorderPoint    *int     `json:"reorder_point" binding:"omitempty,gte=0"`
}

// CreateInventory handles POST /inventory
func CreateInventory(c *gin.Context) {
	var req CreateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	part := models.Inventory{
		PartName:        req.PartName,
		Price:           req.Price,
		Cost:            req.Cost,
		QuantityInStock: req.QuantityInStock,
		Category:        req.Category,
		PartNumber:      req.PartNumber,
		ReorderPoint:    5,
	}
	if req.ReorderPoint != nil {
		part.ReorderPoint = *req.ReorderPoint
	}

	if err := config.GetDB().Create(&part).Error; err != nil {
		if isDuplicateError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Inventory part with this part number already exists."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create inventory part"})
		return
	}
	c.JSON(http.StatusCreated, part)
}

// GetAllInventory handles GET /inventory
func GetAllInventory(c *gin.Context) {
	var parts []models.Inventory
	if err := config.GetDB().Order("part_name").Find(&parts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load inventory"})
		return
	}
	c.JSON(http.StatusOK, parts)
}

// GetInventory handles GET /inventory/:id
func GetInventory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var part models.Inventory
	if err := config.GetDB().First(&part, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Inventory part not found."})
		return
	}
	c.JSON(http.StatusOK, part)
}

// UpdateInventory handles PUT /inventory/:id
func UpdateInventory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var part models.Inventory
	if err := db.First(&part, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Inventory part not found."})
		return
	}

	var req UpdateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.PartName != nil {
		part.PartName = *req.PartName
	}
	if req.Price != nil {
		part.Price = *req.Price
	}
	if req.Cost != nil {
		part.Cost = *req.Cost
	}
	if req.QuantityInStock != nil {
		part.QuantityInStock = *req.QuantityInStock
	}
	if req.Category != nil {
		part.Category = req.Category
	}
	if req.PartNumber != nil {
		part.PartNumber = req.PartNumber
	}
	if req.ReorderPoint != nil {
		part.ReorderPoint = *req.ReorderPoint
	}

	if err := db.Save(&part).Error; err != nil {
		if isDuplicateError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Inventory part with this part number already exists."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update inventory part"})
		return
	}
	c.JSON(http.StatusOK, part)
}

// DeleteInventory handles DELETE /inventory/:id - parts consumed by any
// service ticket are retained for audit history and cannot be deleted
func DeleteInventory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := services.DeletePart(config.GetDB(), id)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "Inventory part deleted successfully."})
	case errors.Is(err, services.ErrPartNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Inventory part not found."})
	case errors.Is(err, services.ErrPartInUse):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Cannot delete part that has been used on a service ticket",
			"suggestion": "Consider setting quantity_in_stock to 0 instead",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete inventory part"})
	}
}

// SearchInventory handles GET /inventory/search?part_name=
func SearchInventory(c *gin.Context) {
	partName := c.Query("part_name")

	var parts []models.Inventory
	if err := config.GetDB().
		Where("part_name LIKE ?", "%"+partName+"%").
		Find(&parts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search inventory"})
		return
	}
	c.JSON(http.StatusOK, parts)
}

// GetLowStock handles GET /inventory/low-stock?threshold= - lists parts
// at or below the threshold (default 5, matching the reorder point
// default)
func GetLowStock(c *gin.Context) {
	threshold := 5
	if raw := c.Query("threshold"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid threshold"})
			return
		}
		threshold = parsed
	}

	var parts []models.Inventory
	if err := config.GetDB().
		Where("quantity_in_stock <= ?", threshold).
		Order("quantity_in_stock").
		Find(&parts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load low-stock parts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"threshold": threshold,
		"count":     len(parts),
		"parts":     parts,
	})
}
