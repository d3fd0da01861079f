package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/hartwell-auto/hartwell-auto-api/config"
	"github.com/hartwell-auto/hartwell-auto-api/middleware"
	"github.com/hartwell-auto/hartwell-auto-api/models"
	"github.com/hartwell-auto/hartwell-auto-api/services"
)

// CreateMechanicRequest represents the request body for registering a mechanic
type CreateMechanicRequest struct {
	Name     string  `json:"name" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Phone    string  `json:"phone" binding:"required"`
	Salary   float64 `json:"salary" binding:"required,gt=0"`
	Password string  `json:"password" binding:"required,min=8"`
	Auth0ID  *string `json:"auth0_id" binding:"omitempty"`
}

// UpdateMechanicRequest represents the request body for updating a mechanic
type UpdateMechanicRequest struct {
	Name     *string  `json:"name"`
	Email    *string  `json:"email" binding:"omitempty,email"`
	Phone    *string  `json:"phone"`
	Salary   *float64 `json:"salary" binding:"omitempty,gt=0"`
	Password *string  `json:"password" binding:"omitempty,min=8"`
}

// CreateMechanic handles POST /mechanics
func CreateMechanic(c *gin.Context) {
	var req CreateMechanicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	db := config.GetDB()

	var count int64
	if err := db.Model(&models.Mechanic{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create mechanic"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Mechanic with this email already exists."})
		return
	}
	if req.Auth0ID != nil {
		if err := db.Model(&models.Mechanic{}).Where("auth0_id = ?", *req.Auth0ID).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create mechanic"})
			return
		}
		if count > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Mechanic with this identity provider ID already exists."})
			return
		}
	}

	mechanic := models.Mechanic{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Salary:   req.Salary,
		Password: string(hashed),
		Auth0ID:  req.Auth0ID,
	}
	if err := db.Create(&mechanic).Error; err != nil {
		// A concurrent registration can slip past the precheck and hit
		// the unique index
		if isDuplicateError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Mechanic with this email already exists."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create mechanic"})
		return
	}

	c.JSON(http.StatusCreated, mechanic)
}

// LoginMechanic handles POST /mechanics/login - verifies credentials
// and issues a locally signed token
func LoginMechanic(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required."})
		return
	}

	db := config.GetDB()
	var mechanic models.Mechanic
	if err := db.Where("email = ?", req.Email).First(&mechanic).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password."})
		return
	}

	if mechanic.Password == "" ||
		bcrypt.CompareHashAndPassword([]byte(mechanic.Password), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password."})
		return
	}

	tokens := services.NewTokenService(config.GetConfig())
	token, err := tokens.Issue(mechanic.ID, middleware.RoleMechanic)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"message":     "Login successful",
		"auth_token":  token,
		"mechanic_id": mechanic.ID,
		"name":        mechanic.Name,
	})
}

// GetMechanics handles GET /mechanics
func GetMechanics(c *gin.Context) {
	var mechanics []models.Mechanic
	if err := config.GetDB().Find(&mechanics).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load mechanics"})
		return
	}
	c.JSON(http.StatusOK, mechanics)
}

// GetMechanic handles GET /mechanics/:id
func GetMechanic(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var mechanic models.Mechanic
	if err := config.GetDB().First(&mechanic, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Mechanic not found."})
		return
	}
	c.JSON(http.StatusOK, mechanic)
}

// UpdateMechanic handles PUT /mechanics/:id - mechanics can only update
// their own account
func UpdateMechanic(c *gin.Context) {
	current, err := middleware.GetCurrentMechanic(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Token is invalid!"})
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if current.ID != id {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		return
	}

	var req UpdateMechanicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.Email != nil {
		current.Email = *req.Email
	}
	if req.Phone != nil {
		current.Phone = *req.Phone
	}
	if req.Salary != nil {
		current.Salary = *req.Salary
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		current.Password = string(hashed)
	}

	if err := config.GetDB().Save(current).Error; err != nil {
		if isDuplicateError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Mechanic with this email already exists."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update mechanic"})
		return
	}
	c.JSON(http.StatusOK, current)
}

// DeleteMechanic handles DELETE /mechanics/:id - mechanics can only
// delete their own account
func DeleteMechanic(c *gin.Context) {
	current, err := middleware.GetCurrentMechanic(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Token is invalid!"})
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if current.ID != id {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		return
	}

	if err := config.GetDB().Select("ServiceTickets").Delete(&models.Mechanic{ID: id}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete mechanic"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Mechanic deleted successfully"})
}

// GetMyAssignedTickets handles GET /mechanics/my-tickets - lists the
// calling mechanic's assigned service tickets
func GetMyAssignedTickets(c *gin.Context) {
	current, err := middleware.GetCurrentMechanic(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Token is invalid!"})
		return
	}

	var mechanic models.Mechanic
	if err := config.GetDB().
		Preload("ServiceTickets").
		Preload("ServiceTickets.ServiceInventories.Inventory").
		First(&mechanic, current.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load service tickets"})
		return
	}
	c.JSON(http.StatusOK, mechanic.ServiceTickets)
}

// GetTopMechanics handles GET /mechanics/top - mechanics ranked by
// assigned ticket count
func GetTopMechanics(c *gin.Context) {
	n := services.DefaultLeaderboardSize
	if raw := c.Query("n"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			n = parsed
		}
	}

	ranks, err := services.TopMechanics(config.GetDB(), n)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build leaderboard"})
		return
	}
	c.JSON(http.StatusOK, ranks)
}
