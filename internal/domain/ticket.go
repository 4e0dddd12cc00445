package domain

import (
	"encoding/json"
	"errors"
	"time"
)

type TicketStatus string

const (
	TicketValid     TicketStatus = "VALID"
	TicketUsed      TicketStatus = "USED"
	TicketCancelled TicketStatus = "CANCELLED"
	TicketExpired   TicketStatus = "EXPIRED"
)

var (
	ErrHolderEmpty     = errors.New("a ticket holder requires either a user or a guest contact")
	ErrHolderAmbiguous = errors.New("a ticket holder cannot be both a user and a guest")
	ErrGuestIncomplete = errors.New("a guest contact requires at least a name and an email")
)

type GuestContact struct {
	Nom       string `json:"nom"`
	Prenom    string `json:"prenom"`
	Email     string `json:"email"`
	Telephone string `json:"telephone,omitempty"`
}

func (g GuestContact) DisplayName() string {
	if g.Prenom == "" {
		return g.Nom
	}

	return g.Prenom + " " + g.Nom
}

// Holder is the discriminated "registered user XOR guest contact" variant.
// The zero value is invalid; construct through UserHolder or GuestHolder so
// the exactly-one-of invariant holds for every ticket in the system.
type Holder struct {
	userID *uint
	guest  *GuestContact
}

func UserHolder(userID uint) Holder {
	return Holder{userID: &userID}
}

func GuestHolder(contact GuestContact) (Holder, error) {
	if contact.Nom == "" || contact.Email == "" {
		return Holder{}, ErrGuestIncomplete
	}

	return Holder{guest: &contact}, nil
}

func (h Holder) UserID() (uint, bool) {
	if h.userID == nil {
		return 0, false
	}

	return *h.userID, true
}

func (h Holder) Guest() (GuestContact, bool) {
	if h.guest == nil {
		return GuestContact{}, false
	}

	return *h.guest, true
}

func (h Holder) IsGuest() bool {
	return h.guest != nil
}

func (h Holder) Validate() error {
	if h.userID == nil && h.guest == nil {
		return ErrHolderEmpty
	}
	if h.userID != nil && h.guest != nil {
		return ErrHolderAmbiguous
	}

	return nil
}

func (h Holder) MarshalJSON() ([]byte, error) {
	if h.guest != nil {
		return json.Marshal(struct {
			Type  string       `json:"type"`
			Guest GuestContact `json:"guest"`
		}{Type: "guest", Guest: *h.guest})
	}
	if h.userID != nil {
		return json.Marshal(struct {
			Type   string `json:"type"`
			UserID uint   `json:"user_id"`
		}{Type: "user", UserID: *h.userID})
	}

	return []byte("null"), nil
}

type Ticket struct {
	ID           uint         `json:"id"`
	NumeroTicket string       `json:"numero_ticket"`
	ScanCode     string       `json:"scan_code"`
	EventID      uint         `json:"event_id"`
	Event        *Event       `json:"event,omitempty"`
	Holder       Holder       `json:"holder"`
	HolderName   string       `json:"holder_name,omitempty"`
	Prix         float64      `json:"prix"`
	Statut       TicketStatus `json:"statut"`
	ValidatedAt  *time.Time   `json:"validated_at,omitempty"`
	ValidatedBy  *uint        `json:"validated_by,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (t Ticket) IsFree() bool {
	return t.Prix == 0
}
