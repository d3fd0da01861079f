package testutil

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/hartwell-auto/hartwell-auto-api/config"
	"github.com/hartwell-auto/hartwell-auto-api/middleware"
	"github.com/hartwell-auto/hartwell-auto-api/models"
	"github.com/hartwell-auto/hartwell-auto-api/services"
)

// SeedCustomer creates a customer account with a usable local password
func SeedCustomer(t *testing.T, db *gorm.DB, email, password string) models.Customer {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	customer := models.Customer{
		Name:     "Seeded Customer",
		Email:    email,
		Phone:    "555-0100",
		Password: string(hashed),
	}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("failed to seed customer: %v", err)
	}
	return customer
}

// SeedMechanic creates a mechanic account with a usable local password
func SeedMechanic(t *testing.T, db *gorm.DB, email, password string) models.Mechanic {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	mechanic := models.Mechanic{
		Name:     "Seeded Mechanic",
		Email:    email,
		Phone:    "555-0200",
		Salary:   52000,
		Password: string(hashed),
	}
	if err := db.Create(&mechanic).Error; err != nil {
		t.Fatalf("failed to seed mechanic: %v", err)
	}
	return mechanic
}

// CustomerToken issues a locally signed token for a customer account
func CustomerToken(t *testing.T, cfg *config.Config, customerID uint) string {
	t.Helper()

	token, err := services.NewTokenService(cfg).Issue(customerID, middleware.RoleCustomer)
	if err != nil {
		t.Fatalf("failed to issue customer token: %v", err)
	}
	return token
}

// MechanicToken issues a locally signed token for a mechanic account
func MechanicToken(t *testing.T, cfg *config.Config, mechanicID uint) string {
	t.Helper()

	token, err := services.NewTokenService(cfg).Issue(mechanicID, middleware.RoleMechanic)
	if err != nil {
		t.Fatalf("failed to issue mechanic token: %v", err)
	}
	return token
}
