package models

// ServiceInventory records consumption of a part by a service ticket.
// There is at most one row per (ticket, part) pair; repeated use of the
// same part on a ticket increments QuantityUsed instead of adding rows.
//
// PriceAtService and CostAtService are captured when the row is created
// and never updated afterwards, so historical ticket totals survive
// later price changes on the part.
type ServiceInventory struct {
	ID              uint     `gorm:"primaryKey" json:"id"`
	ServiceTicketID uint     `gorm:"not null;index:idx_ticket_part,unique" json:"service_ticket_id"`
	InventoryID     uint     `gorm:"not null;index:idx_ticket_part,unique" json:"inventory_id"`
	QuantityUsed    int      `gorm:"not null;default:1" json:"quantity_used"`
	PriceAtService  *float64 `json:"price_at_service,omitempty"`
	CostAtService   *float64 `json:"cost_at_service,omitempty"`

	Inventory Inventory `gorm:"foreignKey:InventoryID" json:"inventory,omitempty"`
}

// TableName specifies the table name for the ServiceInventory model
func (ServiceInventory) TableName() string {
	return "service_inventories"
}
