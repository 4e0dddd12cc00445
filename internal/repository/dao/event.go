package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEventNotFound  = errors.New("event not found")
	ErrEventFull      = errors.New("event has no remaining places")
	ErrCapacityTooLow = errors.New("capacity is lower than the number of tickets already sold")
)

type Event struct {
	ID uint `gorm:"primaryKey"`

	Nom         string `gorm:"not null"`
	Description string
	Lieu        string `gorm:"not null"`

	DateDebut time.Time `gorm:"not null"`
	DateFin   time.Time `gorm:"not null"`

	NbPlaces        int     `gorm:"not null"`
	PlacesRestantes int     `gorm:"not null"`
	Prix            float64 `gorm:"not null"`
	Statut          string  `gorm:"not null;default:ACTIVE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).Create(&event)
	if result.Error != nil {
		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindByID(ctx context.Context, id uint) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) FindAll(ctx context.Context) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).Order("date_debut").Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

// Update writes the editable fields. Capacity goes through UpdateCapacity,
// never here: places_restantes must not be overwritten independently of the
// authoritative sold count.
func (d *EventDAO) Update(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).Model(&Event{ID: event.ID}).Updates(map[string]interface{}{
		"nom":         event.Nom,
		"description": event.Description,
		"lieu":        event.Lieu,
		"date_debut":  event.DateDebut,
		"date_fin":    event.DateFin,
		"prix":        event.Prix,
	})
	if result.Error != nil {
		return Event{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Event{}, ErrEventNotFound
	}

	return d.FindByID(ctx, event.ID)
}

func (d *EventDAO) UpdateStatus(ctx context.Context, id uint, statut string) error {
	result := d.db.WithContext(ctx).Model(&Event{ID: id}).Update("statut", statut)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}

// UpdateCapacity changes nb_places and recomputes places_restantes from the
// count of non-cancelled tickets, all under a row lock so a concurrent
// issuance cannot slip between the count and the write. The edit is rejected
// when the new capacity is below what has already been sold.
func (d *EventDAO) UpdateCapacity(ctx context.Context, id uint, newCapacity int) (Event, error) {
	var event Event

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&event, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}

			return err
		}

		var sold int64
		if err := tx.Model(&Ticket{}).
			Where("event_id = ? AND statut <> ?", id, "CANCELLED").
			Count(&sold).Error; err != nil {
			return err
		}

		if int64(newCapacity) < sold {
			return ErrCapacityTooLow
		}

		event.NbPlaces = newCapacity
		event.PlacesRestantes = newCapacity - int(sold)
		if event.PlacesRestantes == 0 && event.Statut == "ACTIVE" {
			event.Statut = "COMPLET"
		}
		if event.PlacesRestantes > 0 && event.Statut == "COMPLET" {
			event.Statut = "ACTIVE"
		}

		return tx.Model(&Event{ID: id}).Updates(map[string]interface{}{
			"nb_places":        event.NbPlaces,
			"places_restantes": event.PlacesRestantes,
			"statut":           event.Statut,
		}).Error
	})
	if err != nil {
		return Event{}, err
	}

	return event, nil
}
