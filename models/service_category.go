package models

// ServiceCategory classifies service tickets and carries default labor values
type ServiceCategory struct {
	ID                uint    `gorm:"primaryKey" json:"id"`
	Name              string  `gorm:"uniqueIndex;not null" json:"name"`
	Description       string  `json:"description"`
	DefaultLaborHours float64 `gorm:"not null;default:1.0" json:"default_labor_hours"`
	DefaultLaborRate  float64 `gorm:"not null;default:75.0" json:"default_labor_rate"`
}

// TableName specifies the table name for the ServiceCategory model
func (ServiceCategory) TableName() string {
	return "service_categories"
}
