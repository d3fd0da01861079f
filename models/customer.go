package models

import (
	"time"
)

// Customer represents a customer account in the system
type Customer struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Name     string  `gorm:"not null" json:"name"`
	Email    string  `gorm:"uniqueIndex;not null" json:"email"`
	Phone    string  `gorm:"not null" json:"phone"`
	Password string  `gorm:"not null" json:"-"` // bcrypt hash, empty for external-only accounts
	Auth0ID  *string `gorm:"uniqueIndex" json:"auth0_id,omitempty"` // identity provider user ID (from 'sub' claim)

	Vehicles       []Vehicle       `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"vehicles,omitempty"`
	ServiceTickets []ServiceTicket `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"service_tickets,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}
