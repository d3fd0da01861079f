package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hartwell-auto/hartwell-auto-api/config"
	"github.com/hartwell-auto/hartwell-auto-api/models"
)

// CreateCategoryRequest represents the request body for creating a
// service category
type CreateCategoryRequest struct {
	Name              string  `json:"name" binding:"required"`
	Description       string  `json:"description"`
	DefaultLaborHours float64 `json:"default_labor_hours" binding:"omitempty,gt=0"`
	DefaultLaborRate  float64 `json:"default_labor_rate" binding:"omitempty,gt=0"`
}

// UpdateCategoryRequest represents the request body for updating a
// service category
type UpdateCategoryRequest struct {
	Name              *string  `json:"name"`
	Description       *string  `json:"description"`
	DefaultLaborHours *float64 `json:"default_labor_hours" binding:"omitempty,gt=0"`
	DefaultLaborRate  *float64 `json:"default_labor_rate" binding:"omitempty,gt=0"`
}

// CreateCategory handles POST /service-categories
func CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := models.ServiceCategory{
		Name:              req.Name,
		Description:       req.Description,
		DefaultLaborHours: req.DefaultLaborHours,
		DefaultLaborRate:  req.DefaultLaborRate,
	}
	if category.DefaultLaborHours == 0 {
		category.DefaultLaborHours = 1.0
	}
	if category.DefaultLaborRate == 0 {
		category.DefaultLaborRate = 75.0
	}

	if err := config.GetDB().Create(&category).Error; err != nil {
		if isDuplicateError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Service category with this name already exists."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create service category"})
		return
	}
	c.JSON(http.StatusCreated, category)
}

// GetCategories handles GET /service-categories
func GetCategories(c *gin.Context) {
	var categories []models.ServiceCategory
	if err := config.GetDB().Order("name").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load service categories"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

// GetCategory handles GET /service-categories/:id
func GetCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var category models.ServiceCategory
	if err := config.GetDB().First(&category, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Service category not found."})
		return
	}
	c.JSON(http.StatusOK, category)
}

// UpdateCategory handles PUT /service-categories/:id
func UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var category models.ServiceCategory
	if err := db.First(&category, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Service category not found."})
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.DefaultLaborHours != nil {
		category.DefaultLaborHours = *req.DefaultLaborHours
	}
	if req.DefaultLaborRate != nil {
		category.DefaultLaborRate = *req.DefaultLaborRate
	}

	if err := db.Save(&category).Error; err != nil {
		if isDuplicateError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Service category with this name already exists."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update service category"})
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteCategory handles DELETE /service-categories/:id - categories
// referenced by any service ticket cannot be deleted
func DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	db := config.GetDB()
	var category models.ServiceCategory
	if err := db.First(&category, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Service category not found."})
		return
	}

	var referenced int64
	if err := db.Model(&models.ServiceTicket{}).Where("category_id = ?", id).Count(&referenced).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check category references"})
		return
	}
	if referenced > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Cannot delete category that is referenced by service tickets",
			"suggestion": "Reassign the tickets to another category first",
		})
		return
	}

	if err := db.Delete(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete service category"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service category deleted successfully"})
}
