package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/evenio/billetterie-api/internal/domain"
	"github.com/evenio/billetterie-api/internal/repository/dao"
)

var (
	ErrTicketNotFound = dao.ErrTicketNotFound
	ErrTicketNotValid = dao.ErrTicketNotValid
	ErrNumeroExists   = dao.ErrNumeroExists
)

type TicketDAO interface {
	IssueTickets(ctx context.Context, eventID uint, tickets []dao.Ticket) ([]dao.Ticket, error)
	FindByID(ctx context.Context, id uint) (dao.Ticket, error)
	FindByNumero(ctx context.Context, numero string) (dao.Ticket, error)
	FindByScanCode(ctx context.Context, scanCode string) (dao.Ticket, error)
	FindByUserID(ctx context.Context, userID uint) ([]dao.Ticket, error)
	HasActiveTicket(ctx context.Context, eventID, userID uint) (bool, error)
	CountActiveByEventID(ctx context.Context, eventID uint) (int64, error)
	MarkUsed(ctx context.Context, id uint, validatorID uint, at time.Time) error
	Cancel(ctx context.Context, id uint) error
}

type TicketRepository struct {
	dao TicketDAO
}

func NewTicketRepository(dao TicketDAO) *TicketRepository {
	return &TicketRepository{
		dao: dao,
	}
}

// IssueTickets persists the tickets and decrements the event counter in one
// atomic unit. dao.ErrEventFull surfaces when the guarded decrement loses
// the race for the remaining seats.
func (r *TicketRepository) IssueTickets(ctx context.Context, eventID uint, tickets []domain.Ticket) ([]domain.Ticket, error) {
	rows := make([]dao.Ticket, len(tickets))
	for i, t := range tickets {
		rows[i] = ticketDomainToDAO(t)
	}

	created, err := r.dao.IssueTickets(ctx, eventID, rows)
	if err != nil {
		return nil, fmt.Errorf("r.dao.IssueTickets -> %w", err)
	}

	issued := make([]domain.Ticket, len(created))
	for i, t := range created {
		issued[i] = ticketDAOToDomain(t)
	}

	return issued, nil
}

func (r *TicketRepository) FindByID(ctx context.Context, id uint) (domain.Ticket, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return ticketDAOToDomain(found), nil
}

func (r *TicketRepository) FindByNumero(ctx context.Context, numero string) (domain.Ticket, error) {
	found, err := r.dao.FindByNumero(ctx, numero)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.FindByNumero -> %w", err)
	}

	return ticketDAOToDomain(found), nil
}

func (r *TicketRepository) FindByScanCode(ctx context.Context, scanCode string) (domain.Ticket, error) {
	found, err := r.dao.FindByScanCode(ctx, scanCode)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("r.dao.FindByScanCode -> %w", err)
	}

	return ticketDAOToDomain(found), nil
}

func (r *TicketRepository) FindByUserID(ctx context.Context, userID uint) ([]domain.Ticket, error) {
	found, err := r.dao.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByUserID -> %w", err)
	}

	tickets := make([]domain.Ticket, len(found))
	for i, t := range found {
		tickets[i] = ticketDAOToDomain(t)
	}

	return tickets, nil
}

func (r *TicketRepository) HasActiveTicket(ctx context.Context, eventID, userID uint) (bool, error) {
	has, err := r.dao.HasActiveTicket(ctx, eventID, userID)
	if err != nil {
		return false, fmt.Errorf("r.dao.HasActiveTicket -> %w", err)
	}

	return has, nil
}

func (r *TicketRepository) CountActiveByEventID(ctx context.Context, eventID uint) (int64, error) {
	count, err := r.dao.CountActiveByEventID(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountActiveByEventID -> %w", err)
	}

	return count, nil
}

func (r *TicketRepository) MarkUsed(ctx context.Context, id uint, validatorID uint, at time.Time) error {
	if err := r.dao.MarkUsed(ctx, id, validatorID, at); err != nil {
		return fmt.Errorf("r.dao.MarkUsed -> %w", err)
	}

	return nil
}

func (r *TicketRepository) Cancel(ctx context.Context, id uint) error {
	if err := r.dao.Cancel(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Cancel -> %w", err)
	}

	return nil
}

func ticketDomainToDAO(t domain.Ticket) dao.Ticket {
	row := dao.Ticket{
		ID:           t.ID,
		NumeroTicket: t.NumeroTicket,
		ScanCode:     t.ScanCode,
		EventID:      t.EventID,
		Prix:         t.Prix,
		Statut:       string(t.Statut),
		ValidatedAt:  t.ValidatedAt,
		ValidatedBy:  t.ValidatedBy,
	}

	if userID, ok := t.Holder.UserID(); ok {
		id := userID
		row.UserID = &id
	}
	if guest, ok := t.Holder.Guest(); ok {
		row.GuestNom = guest.Nom
		row.GuestPrenom = guest.Prenom
		row.GuestEmail = guest.Email
		row.GuestTelephone = guest.Telephone
	}

	return row
}

func ticketDAOToDomain(t dao.Ticket) domain.Ticket {
	ticket := domain.Ticket{
		ID:           t.ID,
		NumeroTicket: t.NumeroTicket,
		ScanCode:     t.ScanCode,
		EventID:      t.EventID,
		Prix:         t.Prix,
		Statut:       domain.TicketStatus(t.Statut),
		ValidatedAt:  t.ValidatedAt,
		ValidatedBy:  t.ValidatedBy,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}

	if t.UserID != nil {
		ticket.Holder = domain.UserHolder(*t.UserID)
		if t.User != nil {
			ticket.HolderName = domain.User{Nom: t.User.Nom, Prenom: t.User.Prenom}.DisplayName()
		}
	} else {
		holder, err := domain.GuestHolder(domain.GuestContact{
			Nom:       t.GuestNom,
			Prenom:    t.GuestPrenom,
			Email:     t.GuestEmail,
			Telephone: t.GuestTelephone,
		})
		if err == nil {
			ticket.Holder = holder
		}
		ticket.HolderName = domain.GuestContact{Nom: t.GuestNom, Prenom: t.GuestPrenom}.DisplayName()
	}

	if t.Event.ID != 0 {
		event := eventDAOToDomain(t.Event)
		ticket.Event = &event
	}

	return ticket
}
