package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hartwell-auto/hartwell-auto-api/models"
)

// Ledger errors, translated to HTTP statuses by the controllers
var (
	ErrTicketNotFound  = errors.New("service ticket not found")
	ErrPartNotFound    = errors.New("inventory part not found")
	ErrRecordNotFound  = errors.New("service inventory record not found")
	ErrTicketMismatch  = errors.New("record does not belong to this service ticket")
	ErrPartInUse       = errors.New("part has been used on a service ticket")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// InsufficientStockError reports a consumption request that exceeds the
// available stock. No partial fulfillment is attempted.
type InsufficientStockError struct {
	PartName  string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.PartName, e.Requested, e.Available)
}

// lockForUpdate takes a row-level lock on the selected rows. SQLite has
// no SELECT FOR UPDATE grammar; its single-writer model makes the lock
// unnecessary there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// AddPartResult describes the outcome of consuming stock for a ticket
type AddPartResult struct {
	Created        bool // false when an existing row was incremented
	Record         models.ServiceInventory
	PartName       string
	StockRemaining int
}

// RemovePartResult describes the outcome of restoring stock to inventory
type RemovePartResult struct {
	PartName         string
	QuantityRestored int
	StockRemaining   int
}

// AddPart consumes stock of a part for a service ticket.
//
// If the ticket already consumed this part, the existing row's
// quantity is incremented; otherwise a new row is created with the
// part's current price and cost captured as immutable snapshots.
// The stock decrement and the row mutation commit atomically, with
// the inventory row locked for the duration of the transaction so
// concurrent requests cannot oversell the same part.
func AddPart(db *gorm.DB, ticketID, inventoryID uint, quantity int) (*AddPartResult, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	result := &AddPartResult{}
	err := db.Transaction(func(tx *gorm.DB) error {
		var ticket models.ServiceTicket
		if err := tx.First(&ticket, ticketID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTicketNotFound
			}
			return err
		}

		var part models.Inventory
		if err := lockForUpdate(tx).First(&part, inventoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPartNotFound
			}
			return err
		}

		if quantity > part.QuantityInStock {
			return &InsufficientStockError{
				PartName:  part.PartName,
				Requested: quantity,
				Available: part.QuantityInStock,
			}
		}

		var record models.ServiceInventory
		err := tx.Where("service_ticket_id = ? AND inventory_id = ?", ticketID, inventoryID).
			First(&record).Error
		switch {
		case err == nil:
			// One row per (ticket, part) pair: merge instead of
			// duplicating. Snapshots stay untouched.
			record.QuantityUsed += quantity
			if err := tx.Model(&record).Update("quantity_used", record.QuantityUsed).Error; err != nil {
				return err
			}
			result.Created = false
		case errors.Is(err, gorm.ErrRecordNotFound):
			price := part.Price
			cost := part.Cost
			record = models.ServiceInventory{
				ServiceTicketID: ticketID,
				InventoryID:     inventoryID,
				QuantityUsed:    quantity,
				PriceAtService:  &price,
				CostAtService:   &cost,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
			result.Created = true
		default:
			return err
		}

		part.QuantityInStock -= quantity
		if err := tx.Model(&part).Update("quantity_in_stock", part.QuantityInStock).Error; err != nil {
			return err
		}

		if err := tx.Model(&ticket).Update("updated_at", time.Now()).Error; err != nil {
			return err
		}

		result.Record = record
		result.PartName = part.PartName
		result.StockRemaining = part.QuantityInStock
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemovePart deletes a consumption row and restores its full quantity
// to stock. Partial removal is not supported; callers wanting a lower
// quantity remove the row and add the part again.
func RemovePart(db *gorm.DB, ticketID, serviceInventoryID uint) (*RemovePartResult, error) {
	result := &RemovePartResult{}
	err := db.Transaction(func(tx *gorm.DB) error {
		var record models.ServiceInventory
		if err := tx.First(&record, serviceInventoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecordNotFound
			}
			return err
		}

		if record.ServiceTicketID != ticketID {
			return ErrTicketMismatch
		}

		var part models.Inventory
		if err := lockForUpdate(tx).First(&part, record.InventoryID).Error; err != nil {
			return err
		}

		part.QuantityInStock += record.QuantityUsed
		if err := tx.Model(&part).Update("quantity_in_stock", part.QuantityInStock).Error; err != nil {
			return err
		}

		if err := tx.Delete(&record).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.ServiceTicket{}).Where("id = ?", ticketID).
			Update("updated_at", time.Now()).Error; err != nil {
			return err
		}

		result.PartName = part.PartName
		result.QuantityRestored = record.QuantityUsed
		result.StockRemaining = part.QuantityInStock
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeletePart removes an inventory part that has never been consumed.
// Parts referenced by any consumption row are retained permanently for
// audit history and cannot be deleted.
func DeletePart(db *gorm.DB, inventoryID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var part models.Inventory
		if err := tx.First(&part, inventoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPartNotFound
			}
			return err
		}

		var used int64
		if err := tx.Model(&models.ServiceInventory{}).
			Where("inventory_id = ?", inventoryID).
			Count(&used).Error; err != nil {
			return err
		}
		if used > 0 {
			return ErrPartInUse
		}

		return tx.Delete(&part).Error
	})
}
