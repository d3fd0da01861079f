package models

import (
	"time"
)

// Inventory represents a part held in stock.
//
// QuantityInStock is adjusted only through the consumption ledger
// (services.AddPart / services.RemovePart) so that every stock change
// has a matching ServiceInventory row.
type Inventory struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	PartName        string  `gorm:"not null" json:"part_name"`
	Price           float64 `gorm:"not null" json:"price"`
	Cost            float64 `gorm:"not null;default:0" json:"cost"`
	QuantityInStock int     `gorm:"not null;default:0" json:"quantity_in_stock"`
	Category        *string `json:"category,omitempty"`
	PartNumber      *string `gorm:"uniqueIndex" json:"part_number,omitempty"`
	ReorderPoint    int     `gorm:"not null;default:5" json:"reorder_point"`

	ServiceInventories []ServiceInventory `gorm:"foreignKey:InventoryID" json:"service_inventories,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the Inventory model
func (Inventory) TableName() string {
	return "inventory"
}
