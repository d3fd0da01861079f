package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hartwell-auto/hartwell-auto-api/models"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Customer{},
		&models.Vehicle{},
		&models.ServiceCategory{},
		&models.Mechanic{},
		&models.ServiceTicket{},
		&models.Inventory{},
		&models.ServiceInventory{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func seedCustomer(t *testing.T, db *gorm.DB, email string) models.Customer {
	customer := models.Customer{
		Name:     "Test Customer",
		Email:    email,
		Phone:    "555-0100",
		Password: "hashed",
	}
	require.NoError(t, db.Create(&customer).Error)
	return customer
}

func seedTicket(t *testing.T, db *gorm.DB, customerID uint) models.ServiceTicket {
	ticket := models.ServiceTicket{
		VIN:         "1HGBH41JXMN109186",
		ServiceDate: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		ServiceDesc: "Front brake service",
		Status:      "Pending",
		CustomerID:  customerID,
	}
	require.NoError(t, db.Create(&ticket).Error)
	return ticket
}

func seedPart(t *testing.T, db *gorm.DB, name string, price float64, stock int) models.Inventory {
	part := models.Inventory{
		PartName:        name,
		Price:           price,
		Cost:            price / 2,
		QuantityInStock: stock,
	}
	require.NoError(t, db.Create(&part).Error)
	return part
}

func TestAddPart_CreatesRecordAndDecrementsStock(t *testing.T) {
	db := setupServiceTestDB(t)
	customer := seedCustomer(t, db, "ledger1@example.com")
	ticket := seedTicket(t, db, customer.ID)
	part := seedPart(t, db, "Brake Pads", 49.99, 100)

	result, err := AddPart(db, ticket.ID, part.ID, 2)
	require.NoError(t, err)

	assert.True(t, result.Created)
	assert.Equal(t, "Brake Pads", result.PartName)
	assert.Equal(t, 2, result.Record.QuantityUsed)
	assert.Equal(t, 98, result.StockRemaining)

	// Snapshots captured from the part's current values
	require.NotNil(t, result.Record.PriceAtService)
	require.NotNil(t, result.Record.CostAtService)
	assert.Equal(t, 49.99, *result.Record.PriceAtService)

	var stored models.Inventory
	require.NoError(t, db.First(&stored, part.ID).Error)
	assert.Equal(t, 98, stored.QuantityInStock)
}

func TestAddPart_MergesIntoExistingRecord(t *testing.T) {
	db := setupServiceTestDB(t)
	customer := seedCustomer(t, db, "ledger2@example.com")
	ticket := seedTicket(t, db, customer.ID)
	part := seedPart(t, db, "Brake Pads", 49.99, 100)

	first, err := AddPart(db, ticket.ID, part.ID, 3)
	require.NoError(t, err)
	assert.True(t, first.Created)

	second, err := AddPart(db, ticket.ID, part.ID, 2)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, 5, second.Record.QuantityUsed)
	assert.Equal(t, 95, second.StockRemaining)

	// Still a single row for the (ticket, part) pair
	var count int64
	db.Model(&models.ServiceInventory{}).
		Where("service_ticket_id = ? AND inventory_id = ?", ticket.ID, part.ID).
		Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestAddPart_InsufficientStock(t *testing.T) {
	db := setupServiceTestDB(t)
	customer := seedCustomer(t, db, "ledger3@example.com")
	ticket := seedTicket(t, db, customer.ID)
	part := seedPart(t, db, "Oil Filter", 12.50, 1)

	_, err := AddPart(db, ticket.ID, part.ID, 5)
	require.Error(t, err)

	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "Oil Filter", stockErr.PartName)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Available)

	// Nothing changed: no ledger row, stock untouched
	var count int64
	db.Model(&models.ServiceInventory{}).Count(&count)
	assert.Equal(t, int64(0), count)

	var stored models.Inventory
	require.NoError(t, db.First(&stored, part.ID).Error)
	assert.Equal(t, 1, stored.QuantityInStock)
}

func TestAddPart_SnapshotsSurvivePriceChanges(t *testing.T) {
	db := setupServiceTestDB(t)
	customer := seedCustomer(t, db, "ledger4@example.com")
	ticket := seedTicket(t, db, customer.ID)
	part := seedPart(t, db, "Air Filter", 20.00, 50)

	result, err := AddPart(db, ticket.ID, part.ID, 1)
	require.NoError(t, err)

	// Raise the part's price after the consumption was recorded
	require.NoError(t, db.Model(&models.Inventory{}).
		Where("id = ?", part.ID).
		Update("price", 35.00).Error)

	// Merging more quantity must not touch the snapshot either
	_, err = AddPart(db, ticket.ID, part.ID, 2)
	require.NoError(t, err)

	var record models.ServiceInventory
	require.NoError(t, db.First(&record, result.Record.ID).Error)
	require.NotNil(t, record.PriceAtService)
	assert.Equal(t, 20.00, *record.PriceAtService)
	assert.Equal(t, 3, record.QuantityUsed)
}

func TestAddPart_RejectsNonPositiveQuantity(t *testing.T) {
	db := setupServiceTestDB(t)
	customer := seedCustomer(t, db, "ledger-qty@example.com")
	ticket := seedTicket(t, db, customer.ID)
	part := seedPart(t, db, "Wiper Blade", 12.00, 10)

	for _, quantity := range []int{0, -3} {
		_, err := AddPart(db, ticket.ID, part.ID, quantity)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}

	var stored models.Inventory
	require.NoError(t, db.First(&stored, part.ID).Error)
	assert.Equal(t, 10, stored.QuantityInStock)
}

func TestAddPart_TicketNotFound(t *testing.T) {
	db := setupServiceTestDB(t)
	part := seedPart(t, db, "Spark Plug", 8.00, 10)

	_, err := AddPart(db, 999, part.ID, 1)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestAddPart_PartNotFound(t *testing.T) {
	db := setupServiceTestDB(t)
	customer := seedCustomer(t, db, "ledger5@example.com")
	ticket := seedTicket(t, db, customer.ID)

	_, err := AddPart(db, ticket.ID, 999, 1)
	assert.ErrorIs(t, err, ErrPartNotFound)
}

func TestAddPart_TouchesTicketUpdatedAt(t *testing.T) {
	db := setupServiceTestDB(t)
	customer := seedCustomer(t, db, "ledger6@example.com")
	ticket := seedTicket(t, db, customer.ID)
	part := seedPart(t, db, "Wiper Blade", 15.00, 10)

	// Push updated_at into the past so the touch is observable
	past := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(&models.ServiceTicket{}).
		Where("id = ?", ticket.ID).
		Update("updated_at", past).Error)

	_, err := AddPart(db, ticket.ID, part.ID, 1)
	require.NoError(t, err)

	var stored models.ServiceTicket
	require.NoError(t, db.First(&stored, ticket.ID).Error)
	assert.True(t, stored.UpdatedAt.After(past.Add(time.Minute)))
}

func TestRemovePart_RestoresFullQuantity(t *testing.T) {
	db := setupServiceTestDB(t)
	customer := seedCustomer(t, db, "ledger7@example.com")
	ticket := seedTicket(t, db, customer.ID)
	part := seedPart(t, db, "Brake Pads", 49.99, 100)

	added, err := AddPart(db, ticket.ID, part.ID, 2)
	require.NoError(t, err)
	_, err = AddPart(db, ticket.ID, part.ID, 3)
	require.NoError(t, err)

	result, err := RemovePart(db, ticket.ID, added.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, "Brake Pads", result.PartName)
	assert.Equal(t, 5, result.QuantityRestored)
	assert.Equal(t, 100, result.StockRemaining)

	// The row is gone, so a second removal fails
	_, err = RemovePart(db, ticket.ID, added.Record.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	var stored models.Inventory
	require.NoError(t, db.First(&stored, part.ID).Error)
	assert.Equal(t, 100, stored.QuantityInStock)
}

func TestRemovePart_TicketMismatch(t *testing.T) {
	db := setupServiceTestDB(t)
	customer := seedCustomer(t, db, "ledger8@example.com")
	ticketA := seedTicket(t, db, customer.ID)
	ticketB := seedTicket(t, db, customer.ID)
	part := seedPart(t, db, "Oil Filter", 12.50, 10)

	added, err := AddPart(db, ticketA.ID, part.ID, 2)
	require.NoError(t, err)

	_, err = RemovePart(db, ticketB.ID, added.Record.ID)
	assert.ErrorIs(t, err, ErrTicketMismatch)

	// The record and stock are untouched
	var record models.ServiceInventory
	require.NoError(t, db.First(&record, added.Record.ID).Error)
	assert.Equal(t, 2, record.QuantityUsed)

	var stored models.Inventory
	require.NoError(t, db.First(&stored, part.ID).Error)
	assert.Equal(t, 8, stored.QuantityInStock)
}

func TestRemovePart_RecordNotFound(t *testing.T) {
	db := setupServiceTestDB(t)
	customer := seedCustomer(t, db, "ledger9@example.com")
	ticket := seedTicket(t, db, customer.ID)

	_, err := RemovePart(db, ticket.ID, 999)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestDeletePart_GuardedWhileInUse(t *testing.T) {
	db := setupServiceTestDB(t)
	customer := seedCustomer(t, db, "ledger10@example.com")
	ticket := seedTicket(t, db, customer.ID)
	part := seedPart(t, db, "Alternator", 180.00, 4)

	added, err := AddPart(db, ticket.ID, part.ID, 1)
	require.NoError(t, err)

	err = DeletePart(db, part.ID)
	assert.ErrorIs(t, err, ErrPartInUse)

	// Once the consumption row is removed, deletion is allowed
	_, err = RemovePart(db, ticket.ID, added.Record.ID)
	require.NoError(t, err)

	require.NoError(t, DeletePart(db, part.ID))

	var count int64
	db.Model(&models.Inventory{}).Where("id = ?", part.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestDeletePart_NotFound(t *testing.T) {
	db := setupServiceTestDB(t)

	err := DeletePart(db, 999)
	assert.ErrorIs(t, err, ErrPartNotFound)
}

func TestAddRemoveCycle_ConservesStock(t *testing.T) {
	db := setupServiceTestDB(t)
	customer := seedCustomer(t, db, "ledger11@example.com")
	part := seedPart(t, db, "Coolant Hose", 22.00, 30)

	// Several tickets consume and release the same part; total stock
	// plus ledgered quantity must stay constant throughout.
	var recordIDs []uint
	for i := 0; i < 3; i++ {
		ticket := seedTicket(t, db, customer.ID)
		added, err := AddPart(db, ticket.ID, part.ID, i+1)
		require.NoError(t, err)
		recordIDs = append(recordIDs, added.Record.ID)

		var stored models.Inventory
		require.NoError(t, db.First(&stored, part.ID).Error)

		var ledgered int64
		db.Model(&models.ServiceInventory{}).
			Where("inventory_id = ?", part.ID).
			Select("COALESCE(SUM(quantity_used), 0)").
			Scan(&ledgered)
		assert.Equal(t, 30, stored.QuantityInStock+int(ledgered))
	}

	for i, recordID := range recordIDs {
		var record models.ServiceInventory
		require.NoError(t, db.First(&record, recordID).Error)
		_, err := RemovePart(db, record.ServiceTicketID, recordID)
		require.NoError(t, err, "removal %d", i)
	}

	var stored models.Inventory
	require.NoError(t, db.First(&stored, part.ID).Error)
	assert.Equal(t, 30, stored.QuantityInStock)
}
