package models

import (
	"time"
)

// Mechanic represents a mechanic account in the system
type Mechanic struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Name     string  `gorm:"not null" json:"name"`
	Email    string  `gorm:"uniqueIndex;not null" json:"email"`
	Phone    string  `gorm:"not null" json:"phone"`
	Salary   float64 `gorm:"not null" json:"salary"`
	Password string  `gorm:"not null" json:"-"` // bcrypt hash
	Auth0ID  *string `gorm:"uniqueIndex" json:"auth0_id,omitempty"` // identity provider user ID (from 'sub' claim)

	ServiceTickets []ServiceTicket `gorm:"many2many:service_mechanics" json:"service_tickets,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the Mechanic model
func (Mechanic) TableName() string {
	return "mechanics"
}
