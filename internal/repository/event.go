package repository

import (
	"context"
	"fmt"

	"github.com/evenio/billetterie-api/internal/domain"
	"github.com/evenio/billetterie-api/internal/repository/dao"
)

var (
	ErrEventNotFound  = dao.ErrEventNotFound
	ErrEventFull      = dao.ErrEventFull
	ErrCapacityTooLow = dao.ErrCapacityTooLow
)

type EventDAO interface {
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	FindByID(ctx context.Context, id uint) (dao.Event, error)
	FindAll(ctx context.Context) ([]dao.Event, error)
	Update(ctx context.Context, event dao.Event) (dao.Event, error)
	UpdateStatus(ctx context.Context, id uint, statut string) error
	UpdateCapacity(ctx context.Context, id uint, newCapacity int) (dao.Event, error)
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.dao.Insert(ctx, eventDomainToDAO(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return eventDAOToDomain(created), nil
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (domain.Event, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return eventDAOToDomain(found), nil
}

func (r *EventRepository) FindAll(ctx context.Context) ([]domain.Event, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	events := make([]domain.Event, len(found))
	for i, e := range found {
		events[i] = eventDAOToDomain(e)
	}

	return events, nil
}

func (r *EventRepository) Update(ctx context.Context, event domain.Event) (domain.Event, error) {
	updated, err := r.dao.Update(ctx, eventDomainToDAO(event))
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return eventDAOToDomain(updated), nil
}

func (r *EventRepository) UpdateStatus(ctx context.Context, id uint, statut domain.EventStatus) error {
	if err := r.dao.UpdateStatus(ctx, id, string(statut)); err != nil {
		return fmt.Errorf("r.dao.UpdateStatus -> %w", err)
	}

	return nil
}

func (r *EventRepository) UpdateCapacity(ctx context.Context, id uint, newCapacity int) (domain.Event, error) {
	updated, err := r.dao.UpdateCapacity(ctx, id, newCapacity)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.UpdateCapacity -> %w", err)
	}

	return eventDAOToDomain(updated), nil
}

func eventDomainToDAO(e domain.Event) dao.Event {
	return dao.Event{
		ID:              e.ID,
		Nom:             e.Nom,
		Description:     e.Description,
		Lieu:            e.Lieu,
		DateDebut:       e.DateDebut,
		DateFin:         e.DateFin,
		NbPlaces:        e.NbPlaces,
		PlacesRestantes: e.PlacesRestantes,
		Prix:            e.Prix,
		Statut:          string(e.Statut),
	}
}

func eventDAOToDomain(e dao.Event) domain.Event {
	return domain.Event{
		ID:              e.ID,
		Nom:             e.Nom,
		Description:     e.Description,
		Lieu:            e.Lieu,
		DateDebut:       e.DateDebut,
		DateFin:         e.DateFin,
		NbPlaces:        e.NbPlaces,
		PlacesRestantes: e.PlacesRestantes,
		Prix:            e.Prix,
		Statut:          domain.EventStatus(e.Statut),
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}
