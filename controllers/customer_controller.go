package controllers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/hartwell-auto/hartwell-auto-api/config"
	"github.com/hartwell-auto/hartwell-auto-api/middleware"
	"github.com/hartwell-auto/hartwell-auto-api/models"
	"github.com/hartwell-auto/hartwell-auto-api/services"
)

// CreateCustomerRequest represents the request body for registering a customer
type CreateCustomerRequest struct {
	Name     string  `json:"name" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Phone    string  `json:"phone" binding:"required"`
	Password string  `json:"password" binding:"required,min=8"`
	Auth0ID  *string `json:"auth0_id" binding:"omitempty"`
}

// UpdateCustomerRequest represents the request body for updating a customer
type UpdateCustomerRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Phone    *string `json:"phone"`
	Password *string `json:"password" binding:"omitempty,min=8"`
}

// LoginRequest represents the request body for local login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ExternalCustomerRequest represents the request body for registering a
// customer through the identity provider
type ExternalCustomerRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// CreateCustomer handles POST /customers - registers a customer with a
// local password
func CreateCustomer(c *gin.Context) {
	var req CreateCustomerRequest
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
	if err := db.Model(&models.Customer{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create customer"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Customer with this email already exists."})
		return
	}
	if req.Auth0ID != nil {
		if err := db.Model(&models.Customer{}).Where("auth0_id = ?", *req.Auth0ID).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create customer"})
			return
		}
		if count > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Customer with this identity provider ID already exists."})
			return
		}
	}

	customer := models.Customer{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: string(hashed),
		Auth0ID:  req.Auth0ID,
	}
	if err := db.Create(&customer).Error; err != nil {
		// A concurrent registration can slip past the precheck and hit
		// the unique index
		if isDuplicateError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Customer with this email already exists."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create customer"})
		return
	}

	c.JSON(http.StatusCreated, customer)
}

// CreateExternalCustomer handles POST /customers/external - registers a
// customer from a federated token. The profile comes from the identity
// provider's /userinfo endpoint; the account has no local password and
// can only log in with federated tokens.
func CreateExternalCustomer(c *gin.Context) {
	externalID := middleware.GetExternalID(c)
	if externalID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A federated token is required for external registration"})
		return
	}

	var req ExternalCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accessToken, err := middleware.GetAccessToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Token is missing!"})
		return
	}

	identity := services.NewIdentityService(config.GetConfig())
	profile, err := identity.FetchProfile(c.Request.Context(), accessToken)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch profile from identity provider"})
		return
	}
	if profile.Email == "" || profile.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identity provider did not supply a name and email"})
		return
	}

	db := config.GetDB()
	customer := models.Customer{
		Name:    profile.Name,
		Email:   profile.Email,
		Phone:   req.Phone,
		Auth0ID: &externalID,
	}
	if err := db.Create(&customer).Error; err != nil {
		if isDuplicateError(err) {
			c.JSON(http.StatusConflict, gin.H{"message": "Customer with this email or identity provider ID already exists."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create customer"})
		return
	}

	// The role and db_id custom claims on the federated identity are
	// managed by the provider; new accounts need them set before a
	// federated token can resolve to this record.
	log.Printf("Registered external customer %d for identity %s", customer.ID, externalID)

	c.JSON(http.StatusCreated, customer)
}

// LoginCustomer handles POST /customers/login - verifies credentials
// and issues a locally signed token
func LoginCustomer(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required."})
		return
	}

	db := config.GetDB()
	var customer models.Customer
	if err := db.Where("email = ?", req.Email).First(&customer).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password."})
		return
	}

	// External-only accounts have no local password
	if customer.Password == "" ||
		bcrypt.CompareHashAndPassword([]byte(customer.Password), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password."})
		return
	}

	tokens := services.NewTokenService(config.GetConfig())
	token, err := tokens.Issue(customer.ID, middleware.RoleCustomer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"message":     "Login successful",
		"auth_token":  token,
		"customer_id": customer.ID,
		"name":        customer.Name,
	})
}

// GetCustomers handles GET /customers
func GetCustomers(c *gin.Context) {
	var customers []models.Customer
	if err := config.GetDB().Find(&customers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load customers"})
		return
	}
	c.JSON(http.StatusOK, customers)
}

// GetCustomer handles GET /customers/:id
func GetCustomer(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var customer models.Customer
	if err := config.GetDB().Preload("Vehicles").First(&customer, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Customer not found."})
		return
	}
	c.JSON(http.StatusOK, customer)
}

// UpdateCustomer handles PUT /customers/:id - customers can only update
// their own account
func UpdateCustomer(c *gin.Context) {
	current, err := middleware.GetCurrentCustomer(c)
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

	var req UpdateCustomerRequest
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
			c.JSON(http.StatusBadRequest, gin.H{"message": "Customer with this email already exists."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update customer"})
		return
	}
	c.JSON(http.StatusOK, current)
}

// DeleteCustomer handles DELETE /customers/:id - customers can only
// delete their own account; vehicles and tickets cascade
func DeleteCustomer(c *gin.Context) {
	current, err := middleware.GetCurrentCustomer(c)
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

	if err := config.GetDB().Delete(&models.Customer{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete customer"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}

// GetMyTickets handles GET /customers/my-tickets - lists the calling
// customer's service tickets
func GetMyTickets(c *gin.Context) {
	current, err := middleware.GetCurrentCustomer(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Token is invalid!"})
		return
	}

	var tickets []models.ServiceTicket
	if err := config.GetDB().
		Preload("Mechanics").
		Preload("ServiceInventories.Inventory").
		Where("customer_id = ?", current.ID).
		Find(&tickets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load service tickets"})
		return
	}
	c.JSON(http.StatusOK, tickets)
}

// GetTopCustomers handles GET /customers/top - customers ranked by
// ticket count
func GetTopCustomers(c *gin.Context) {
	n := services.DefaultLeaderboardSize
	if raw := c.Query("n"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			n = parsed
		}
	}

	ranks, err := services.TopCustomers(config.GetDB(), n)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build leaderboard"})
		return
	}
	c.JSON(http.StatusOK, ranks)
}

// parseIDParam parses a numeric path parameter, writing a 400 response
// on failure
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id parameter"})
		return 0, false
	}
	return uint(id), true
}

// isDuplicateError reports whether a database error is a unique
// constraint violation (works with both PostgreSQL and SQLite)
func isDuplicateError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
