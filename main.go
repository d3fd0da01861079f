package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/hartwell-auto/hartwell-auto-api/config"
	"github.com/hartwell-auto/hartwell-auto-api/controllers"
	"github.com/hartwell-auto/hartwell-auto-api/middleware"
	"github.com/hartwell-auto/hartwell-auto-api/models"
	"github.com/hartwell-auto/hartwell-auto-api/services"
)

func main() {
	log.Println("Starting Hartwell Auto API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.Customer{},
		&models.Vehicle{},
		&models.ServiceCategory{},
		&models.Mechanic{},
		&models.ServiceTicket{},
		&models.Inventory{},
		&models.ServiceInventory{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Photo storage is optional; ticket photo endpoints report 503
	// when it isn't configured
	if cfg.AWSS3Bucket != "" {
		s3Service, err := services.InitS3Service()
		if err != nil {
			log.Fatalf("Failed to initialize S3: %v", err)
		}
		services.InitPhotoService(s3Service)
		log.Printf("Photo storage enabled on bucket %s", cfg.AWSS3Bucket)
	} else {
		log.Println("AWS_S3_BUCKET not set, ticket photo storage disabled")
	}

	auth := middleware.NewAuthenticator(cfg)

	router := gin.Default()
	router.Use(cors.Default())

	registerRoutes(router, auth)

	addr := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func registerRoutes(router *gin.Engine, auth *middleware.Authenticator) {
	router.GET("/health", healthCheck)

	customers := router.Group("/customers")
	{
		customers.POST("", controllers.CreateCustomer)
		customers.POST("/login", controllers.LoginCustomer)
		customers.POST("/external", auth.RequireAuth(), controllers.CreateExternalCustomer)
		customers.GET("", controllers.GetCustomers)
		customers.GET("/top", controllers.GetTopCustomers)
		customers.GET("/my-tickets", auth.RequireCustomer(), controllers.GetMyTickets)
		customers.GET("/:id", controllers.GetCustomer)
		customers.PUT("/:id", auth.RequireCustomer(), controllers.UpdateCustomer)
		customers.DELETE("/:id", auth.RequireCustomer(), controllers.DeleteCustomer)
	}

	mechanics := router.Group("/mechanics")
	{
		mechanics.POST("", controllers.CreateMechanic)
		mechanics.POST("/login", controllers.LoginMechanic)
		mechanics.GET("", auth.RequireAuth(), controllers.GetMechanics)
		mechanics.GET("/top", controllers.GetTopMechanics)
		mechanics.GET("/my-tickets", auth.RequireMechanic(), controllers.GetMyAssignedTickets)
		mechanics.GET("/:id", auth.RequireAuth(), controllers.GetMechanic)
		mechanics.PUT("/:id", auth.RequireMechanic(), controllers.UpdateMechanic)
		mechanics.DELETE("/:id", auth.RequireMechanic(), controllers.DeleteMechanic)
	}

	vehicles := router.Group("/vehicles")
	{
		vehicles.POST("", auth.RequireCustomer(), controllers.CreateVehicle)
		vehicles.GET("", controllers.GetVehicles)
		vehicles.GET("/:id", controllers.GetVehicle)
		vehicles.PUT("/:id", auth.RequireCustomer(), controllers.UpdateVehicle)
		vehicles.DELETE("/:id", auth.RequireCustomer(), controllers.DeleteVehicle)
	}

	categories := router.Group("/service-categories")
	{
		categories.POST("", auth.RequireMechanic(), controllers.CreateCategory)
		categories.GET("", controllers.GetCategories)
		categories.GET("/:id", controllers.GetCategory)
		categories.PUT("/:id", auth.RequireMechanic(), controllers.UpdateCategory)
		categories.DELETE("/:id", auth.RequireMechanic(), controllers.DeleteCategory)
	}

	inventory := router.Group("/inventory")
	{
		inventory.POST("", auth.RequireMechanic(), controllers.CreateInventory)
		inventory.GET("", controllers.GetAllInventory)
		inventory.GET("/search", auth.RequireMechanic(), controllers.SearchInventory)
		inventory.GET("/low-stock", auth.RequireMechanic(), controllers.GetLowStock)
		inventory.GET("/:id", controllers.GetInventory)
		inventory.PUT("/:id", auth.RequireMechanic(), controllers.UpdateInventory)
		inventory.DELETE("/:id", auth.RequireMechanic(), controllers.DeleteInventory)
	}

	tickets := router.Group("/service-tickets")
	{
		tickets.POST("", auth.RequireAuth(), controllers.CreateTicket)
		tickets.GET("", controllers.GetTickets)
		tickets.GET("/:id", controllers.GetTicket)
		tickets.DELETE("/:id", auth.RequireMechanic(), controllers.DeleteTicket)
		tickets.PUT("/:id/assign-mechanic/:mechanic_id", auth.RequireMechanic(), controllers.AssignMechanic)
		tickets.PUT("/:id/remove-mechanic/:mechanic_id", auth.RequireMechanic(), controllers.RemoveMechanic)
		tickets.PUT("/:id/edit-mechanics", auth.RequireMechanic(), controllers.EditMechanics)
		tickets.POST("/:id/add-inventory", auth.RequireMechanic(), controllers.AddInventory)
		tickets.PUT("/:id/remove-inventory/:record_id", auth.RequireMechanic(), controllers.RemoveInventory)
		tickets.POST("/:id/photo", auth.RequireMechanic(), controllers.UploadTicketPhoto)
		tickets.GET("/:id/photo", auth.RequireAuth(), controllers.GetTicketPhoto)
	}
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Hartwell Auto API is running",
	})
}
