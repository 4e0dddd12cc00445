package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrTicketNotFound = errors.New("ticket not found")
	ErrTicketNotValid = errors.New("ticket is not in the VALID state")
	ErrNumeroExists   = errors.New("ticket number already exists")
)

type Ticket struct {
	ID uint `gorm:"primaryKey"`

	NumeroTicket string `gorm:"uniqueIndex;not null"`
	ScanCode     string `gorm:"uniqueIndex;not null"`

	EventID uint  `gorm:"index;not null"`
	Event   Event `gorm:"foreignKey:EventID"`

	// Holder: exactly one of UserID or the guest_* columns is populated.
	// The XOR is enforced by the domain constructor before rows get here.
	UserID         *uint `gorm:"index"`
	User           *User `gorm:"foreignKey:UserID"`
	GuestNom       string
	GuestPrenom    string
	GuestEmail     string `gorm:"index"`
	GuestTelephone string

	Prix   float64 `gorm:"not null"`
	Statut string  `gorm:"index;not null;default:VALID"`

	ValidatedAt *time.Time
	ValidatedBy *uint

	CreatedAt time.Time
	UpdatedAt time.Time
}

type TicketDAO struct {
	db *gorm.DB
}

func NewTicketDAO(db *gorm.DB) *TicketDAO {
	return &TicketDAO{
		db: db,
	}
}

// IssueTickets inserts the ticket rows and decrements the event counter as
// one atomic unit. The decrement is guarded (places_restantes >= n), so two
// concurrent issuances racing for the last seat resolve to one winner and
// the counter can never go negative. When the counter reaches zero the
// event flips to COMPLET in the same transaction.
func (d *TicketDAO) IssueTickets(ctx context.Context, eventID uint, tickets []Ticket) ([]Ticket, error) {
	n := len(tickets)
	if n == 0 {
		return nil, nil
	}

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Event{}).
			Where("id = ? AND places_restantes >= ?", eventID, n).
			Update("places_restantes", gorm.Expr("places_restantes - ?", n))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrEventFull
		}

		if err := tx.Model(&Event{}).
			Where("id = ? AND places_restantes = 0 AND statut = ?", eventID, "ACTIVE").
			Update("statut", "COMPLET").Error; err != nil {
			return err
		}

		for i := range tickets {
			tickets[i].EventID = eventID
			if err := tx.Create(&tickets[i]).Error; err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) &&
					pgErr.Code == pgerrcode.UniqueViolation &&
					strings.Contains(pgErr.Message, "numero_ticket") {
					return ErrNumeroExists
				}

				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return tickets, nil
}

func (d *TicketDAO) FindByID(ctx context.Context, id uint) (Ticket, error) {
	var ticket Ticket

	result := d.db.WithContext(ctx).Preload("Event").Preload("User").First(&ticket, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Ticket{}, ErrTicketNotFound
		}

		return Ticket{}, result.Error
	}

	return ticket, nil
}

func (d *TicketDAO) FindByNumero(ctx context.Context, numero string) (Ticket, error) {
	var ticket Ticket

	result := d.db.WithContext(ctx).Preload("Event").Preload("User").
		First(&ticket, "numero_ticket = ?", numero)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Ticket{}, ErrTicketNotFound
		}

		return Ticket{}, result.Error
	}

	return ticket, nil
}

func (d *TicketDAO) FindByScanCode(ctx context.Context, scanCode string) (Ticket, error) {
	var ticket Ticket

	result := d.db.WithContext(ctx).Preload("Event").Preload("User").
		First(&ticket, "scan_code = ?", scanCode)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Ticket{}, ErrTicketNotFound
		}

		return Ticket{}, result.Error
	}

	return ticket, nil
}

func (d *TicketDAO) FindByUserID(ctx context.Context, userID uint) ([]Ticket, error) {
	var tickets []Ticket

	result := d.db.WithContext(ctx).Preload("Event").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tickets)
	if result.Error != nil {
		return nil, result.Error
	}

	return tickets, nil
}

// HasActiveTicket reports whether the user already holds a non-cancelled
// ticket for the event. Backs the one-free-ticket-per-identity rule.
func (d *TicketDAO) HasActiveTicket(ctx context.Context, eventID, userID uint) (bool, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Ticket{}).
		Where("event_id = ? AND user_id = ? AND statut <> ?", eventID, userID, "CANCELLED").
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

func (d *TicketDAO) CountActiveByEventID(ctx context.Context, eventID uint) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Ticket{}).
		Where("event_id = ? AND statut <> ?", eventID, "CANCELLED").
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

// MarkUsed performs the VALID -> USED transition. The update is conditional
// on the current status, so only the first of two concurrent validations
// can succeed; the loser sees ErrTicketNotValid.
func (d *TicketDAO) MarkUsed(ctx context.Context, id uint, validatorID uint, at time.Time) error {
	result := d.db.WithContext(ctx).Model(&Ticket{}).
		Where("id = ? AND statut = ?", id, "VALID").
		Updates(map[string]interface{}{
			"statut":       "USED",
			"validated_at": at,
			"validated_by": validatorID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTicketNotValid
	}

	return nil
}

// Cancel performs VALID -> CANCELLED and gives the seat back, atomically.
// The increment is capped at nb_places and a sold-out event that regains a
// seat returns to ACTIVE.
func (d *TicketDAO) Cancel(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ticket Ticket
		if err := tx.First(&ticket, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTicketNotFound
			}

			return err
		}

		result := tx.Model(&Ticket{}).
			Where("id = ? AND statut = ?", id, "VALID").
			Update("statut", "CANCELLED")
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTicketNotValid
		}

		result = tx.Model(&Event{}).
			Where("id = ? AND places_restantes < nb_places", ticket.EventID).
			Update("places_restantes", gorm.Expr("places_restantes + 1"))
		if result.Error != nil {
			return result.Error
		}

		return tx.Model(&Event{}).
			Where("id = ? AND places_restantes > 0 AND statut = ?", ticket.EventID, "COMPLET").
			Update("statut", "ACTIVE").Error
	})
}
