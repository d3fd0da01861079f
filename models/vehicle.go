package models

import (
	"time"
)

// Vehicle represents a customer's vehicle
type Vehicle struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	VIN          string  `gorm:"uniqueIndex;not null" json:"vin"`
	Make         string  `gorm:"not null" json:"make"`
	Model        string  `gorm:"not null" json:"model"`
	Year         int     `gorm:"not null" json:"year"`
	Color        *string `json:"color,omitempty"`
	LicensePlate *string `json:"license_plate,omitempty"`
	CustomerID   uint    `gorm:"not null;index" json:"customer_id"`

	// Tickets keep an optional reference; deleting a vehicle does not
	// delete its service history.
	ServiceTickets []ServiceTicket `gorm:"foreignKey:VehicleID;constraint:OnDelete:SET NULL" json:"service_tickets,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the Vehicle model
func (Vehicle) TableName() string {
	return "vehicles"
}
