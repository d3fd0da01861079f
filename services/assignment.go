package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/hartwell-auto/hartwell-auto-api/models"
)

// Assignment errors, translated to HTTP statuses by the controllers
var (
	ErrMechanicNotFound = errors.New("mechanic not found")
	ErrAlreadyAssigned  = errors.New("mechanic already assigned to this service ticket")
	ErrNotAssigned      = errors.New("mechanic not assigned to this service ticket")
)

// serviceMechanic is a row of the ticket/mechanic join table
type serviceMechanic struct {
	ServiceTicketID uint
	MechanicID      uint
}

func (serviceMechanic) TableName() string {
	return "service_mechanics"
}

// AssignMechanic links a mechanic to a service ticket. Each mechanic
// appears at most once in a ticket's mechanic set.
func AssignMechanic(db *gorm.DB, ticketID, mechanicID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		ticket, mechanic, err := resolveTicketAndMechanic(tx, ticketID, mechanicID)
		if err != nil {
			return err
		}

		assigned, err := isAssigned(tx, ticket.ID, mechanic.ID)
		if err != nil {
			return err
		}
		if assigned {
			return ErrAlreadyAssigned
		}

		if err := tx.Create(&serviceMechanic{
			ServiceTicketID: ticket.ID,
			MechanicID:      mechanic.ID,
		}).Error; err != nil {
			return err
		}

		return touchTicket(tx, ticket.ID)
	})
}

// RemoveMechanic unlinks a mechanic from a service ticket
func RemoveMechanic(db *gorm.DB, ticketID, mechanicID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		ticket, mechanic, err := resolveTicketAndMechanic(tx, ticketID, mechanicID)
		if err != nil {
			return err
		}

		assigned, err := isAssigned(tx, ticket.ID, mechanic.ID)
		if err != nil {
			return err
		}
		if !assigned {
			return ErrNotAssigned
		}

		if err := tx.Where("service_ticket_id = ? AND mechanic_id = ?", ticket.ID, mechanic.ID).
			Delete(&serviceMechanic{}).Error; err != nil {
			return err
		}

		return touchTicket(tx, ticket.ID)
	})
}

// EditMechanics applies a bulk add/remove of mechanics to a ticket in
// one transaction. Ids that don't resolve to a mechanic, adds that are
// already assigned, and removes that aren't assigned are skipped
// silently, so the call is an idempotent best-effort edit.
func EditMechanics(db *gorm.DB, ticketID uint, addIDs, removeIDs []uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var ticket models.ServiceTicket
		if err := tx.First(&ticket, ticketID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTicketNotFound
			}
			return err
		}

		for _, id := range addIDs {
			var mechanic models.Mechanic
			if err := tx.First(&mechanic, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return err
			}
			assigned, err := isAssigned(tx, ticket.ID, mechanic.ID)
			if err != nil {
				return err
			}
			if assigned {
				continue
			}
			if err := tx.Create(&serviceMechanic{
				ServiceTicketID: ticket.ID,
				MechanicID:      mechanic.ID,
			}).Error; err != nil {
				return err
			}
		}

		for _, id := range removeIDs {
			if err := tx.Where("service_ticket_id = ? AND mechanic_id = ?", ticket.ID, id).
				Delete(&serviceMechanic{}).Error; err != nil {
				return err
			}
		}

		return touchTicket(tx, ticket.ID)
	})
}

func resolveTicketAndMechanic(tx *gorm.DB, ticketID, mechanicID uint) (*models.ServiceTicket, *models.Mechanic, error) {
	var ticket models.ServiceTicket
	if err := tx.First(&ticket, ticketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTicketNotFound
		}
		return nil, nil, err
	}

	var mechanic models.Mechanic
	if err := tx.First(&mechanic, mechanicID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrMechanicNotFound
		}
		return nil, nil, err
	}

	return &ticket, &mechanic, nil
}

func isAssigned(tx *gorm.DB, ticketID, mechanicID uint) (bool, error) {
	var count int64
	err := tx.Model(&serviceMechanic{}).
		Where("service_ticket_id = ? AND mechanic_id = ?", ticketID, mechanicID).
		Count(&count).Error
	return count > 0, err
}

func touchTicket(tx *gorm.DB, ticketID uint) error {
	return tx.Model(&models.ServiceTicket{}).Where("id = ?", ticketID).
		Update("updated_at", time.Now()).Error
}
