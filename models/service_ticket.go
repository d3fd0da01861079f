package models

import (
	"time"
)

// ServiceTicket represents one visit of a vehicle to the shop
type ServiceTicket struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	VIN         string    `gorm:"not null" json:"vin"` // free string, not required to match a registered vehicle
	ServiceDate time.Time `gorm:"not null" json:"service_date"`
	ServiceDesc string    `gorm:"not null" json:"service_desc"`
	Status      string    `gorm:"not null;default:'Pending'" json:"status"`
	CustomerID  uint      `gorm:"not null;index" json:"customer_id"`
	VehicleID   *uint     `gorm:"index" json:"vehicle_id,omitempty"`
	CategoryID  *uint     `gorm:"index" json:"category_id,omitempty"`
	LaborHours  float64   `json:"labor_hours"`
	LaborRate   float64   `json:"labor_rate"`
	Mileage     *int      `json:"mileage,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
	PhotoS3Key  *string   `json:"photo_s3_key,omitempty"`            // nullable, S3 key for an uploaded job photo
	PhotoURL    *string   `gorm:"-" json:"photo_url,omitempty"`      // computed field, presigned URL for the photo

	Customer Customer         `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Vehicle  *Vehicle         `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	Category *ServiceCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	Mechanics          []Mechanic         `gorm:"many2many:service_mechanics" json:"mechanics,omitempty"`
	ServiceInventories []ServiceInventory `gorm:"foreignKey:ServiceTicketID;constraint:OnDelete:CASCADE" json:"service_inventories,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TableName specifies the table name for the ServiceTicket model
func (ServiceTicket) TableName() string {
	return "service_tickets"
}
