package domain

import "time"

type EventStatus string

const (
	EventActive   EventStatus = "ACTIVE"
	EventInactive EventStatus = "INACTIVE"
	EventComplet  EventStatus = "COMPLET"
	EventAnnule   EventStatus = "ANNULE"
)

type Event struct {
	ID              uint        `json:"id"`
	Nom             string      `json:"nom"`
	Description     string      `json:"description"`
	Lieu            string      `json:"lieu"`
	DateDebut       time.Time   `json:"date_debut"`
	DateFin         time.Time   `json:"date_fin"`
	NbPlaces        int         `json:"nb_places"`
	PlacesRestantes int         `json:"places_restantes"`
	Prix            float64     `json:"prix"`
	Statut          EventStatus `json:"statut"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

func (e Event) IsFree() bool {
	return e.Prix == 0
}

// SoldCount derives the number of non-cancelled tickets from the counter pair.
// The two stay in sync because places_restantes is only ever mutated through
// the guarded decrement/increment in the same transaction as the ticket row.
func (e Event) SoldCount() int {
	return e.NbPlaces - e.PlacesRestantes
}

func (e Event) HasStarted(now time.Time) bool {
	return !now.Before(e.DateDebut)
}

func (e Event) HasEnded(now time.Time) bool {
	return now.After(e.DateFin)
}
