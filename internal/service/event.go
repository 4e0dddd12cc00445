package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/evenio/billetterie-api/internal/domain"
	"github.com/evenio/billetterie-api/internal/repository"
)

var (
	ErrCapacityTooLow      = &ReasonError{Reason: domain.ReasonValidationError, Message: "capacity cannot go below the number of tickets already sold"}
	ErrInvalidStatusChange = &ReasonError{Reason: domain.ReasonValidationError, Message: "invalid status change"}
)

type EventRepository interface {
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	FindByID(ctx context.Context, id uint) (domain.Event, error)
	FindAll(ctx context.Context) ([]domain.Event, error)
	Update(ctx context.Context, event domain.Event) (domain.Event, error)
	UpdateStatus(ctx context.Context, id uint, statut domain.EventStatus) error
	UpdateCapacity(ctx context.Context, id uint, newCapacity int) (domain.Event, error)
}

type EventService struct {
	repo EventRepository
}

func NewEventService(repo EventRepository) *EventService {
	return &EventService{
		repo: repo,
	}
}

func (s *EventService) CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	event.PlacesRestantes = event.NbPlaces
	event.Statut = domain.EventActive

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *EventService) GetEvent(ctx context.Context, id uint) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return domain.Event{}, ErrEventNotFound
		}

		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return event, nil
}

func (s *EventService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	events, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return events, nil
}

// UpdateEvent edits the descriptive fields and, when the capacity changed,
// recomputes the remaining counter from the authoritative sold count.
func (s *EventService) UpdateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	current, err := s.GetEvent(ctx, event.ID)
	if err != nil {
		return domain.Event{}, err
	}

	if event.NbPlaces != current.NbPlaces {
		if _, err = s.repo.UpdateCapacity(ctx, event.ID, event.NbPlaces); err != nil {
			if errors.Is(err, repository.ErrCapacityTooLow) {
				return domain.Event{}, ErrCapacityTooLow
			}

			return domain.Event{}, fmt.Errorf("s.repo.UpdateCapacity -> %w", err)
		}
	}

	updated, err := s.repo.Update(ctx, event)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return domain.Event{}, ErrEventNotFound
		}

		return domain.Event{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

// ChangeStatus applies an administrative lifecycle change. COMPLET is
// machine-managed by issuance and cancellation, never set by hand.
func (s *EventService) ChangeStatus(ctx context.Context, id uint, statut domain.EventStatus) (domain.Event, error) {
	switch statut {
	case domain.EventActive, domain.EventInactive, domain.EventAnnule:
	default:
		return domain.Event{}, ErrInvalidStatusChange
	}

	current, err := s.GetEvent(ctx, id)
	if err != nil {
		return domain.Event{}, err
	}

	// A sold out event stays COMPLET until a cancellation returns a seat.
	if statut == domain.EventActive && current.Statut == domain.EventComplet && current.PlacesRestantes <= 0 {
		return domain.Event{}, ErrInvalidStatusChange
	}

	if err := s.repo.UpdateStatus(ctx, id, statut); err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.UpdateStatus -> %w", err)
	}

	return s.GetEvent(ctx, id)
}
