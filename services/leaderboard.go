package services

import (
	"sort"

	"gorm.io/gorm"

	"github.com/hartwell-auto/hartwell-auto-api/models"
)

// DefaultLeaderboardSize is how many entries TopCustomers/TopMechanics
// return when the caller doesn't ask for a specific count
const DefaultLeaderboardSize = 3

// CustomerRank is one leaderboard entry for a customer
type CustomerRank struct {
	Customer    models.Customer `json:"customer"`
	TicketCount int             `json:"ticket_count"`
}

// MechanicRank is one leaderboard entry for a mechanic
type MechanicRank struct {
	Mechanic    models.Mechanic `json:"mechanic"`
	TicketCount int             `json:"ticket_count"`
}

// TopCustomers ranks customers by how many service tickets they own.
// Full scan over all customers; fleet size is assumed small. The sort
// is stable over the id-ordered scan, so ties break by ascending id.
func TopCustomers(db *gorm.DB, n int) ([]CustomerRank, error) {
	if n <= 0 {
		n = DefaultLeaderboardSize
	}

	var customers []models.Customer
	if err := db.Order("id").Find(&customers).Error; err != nil {
		return nil, err
	}

	ranks := make([]CustomerRank, 0, len(customers))
	for _, customer := range customers {
		var count int64
		if err := db.Model(&models.ServiceTicket{}).
			Where("customer_id = ?", customer.ID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		ranks = append(ranks, CustomerRank{Customer: customer, TicketCount: int(count)})
	}

	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].TicketCount > ranks[j].TicketCount
	})

	if len(ranks) > n {
		ranks = ranks[:n]
	}
	return ranks, nil
}

// TopMechanics ranks mechanics by how many service tickets they are
// assigned to
func TopMechanics(db *gorm.DB, n int) ([]MechanicRank, error) {
	if n <= 0 {
		n = DefaultLeaderboardSize
	}

	var mechanics []models.Mechanic
	if err := db.Order("id").Find(&mechanics).Error; err != nil {
		return nil, err
	}

	ranks := make([]MechanicRank, 0, len(mechanics))
	for _, mechanic := range mechanics {
		var count int64
		if err := db.Model(&serviceMechanic{}).
			Where("mechanic_id = ?", mechanic.ID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		ranks = append(ranks, MechanicRank{Mechanic: mechanic, TicketCount: int(count)})
	}

	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].TicketCount > ranks[j].TicketCount
	})

	if len(ranks) > n {
		ranks = ranks[:n]
	}
	return ranks, nil
}
