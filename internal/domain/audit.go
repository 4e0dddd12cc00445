package domain

import "time"

type AuditAction string

const (
	AuditTicketIssued    AuditAction = "TICKET_ISSUED"
	AuditTicketPurchased AuditAction = "TICKET_PURCHASED"
	AuditTicketValidated AuditAction = "TICKET_VALIDATED"
	AuditTicketCancelled AuditAction = "TICKET_CANCELLED"
)

// AuditEntry is an append-only record of a ticket lifecycle transition.
// The core only ever writes these; nothing in the request path reads them.
type AuditEntry struct {
	ID           uint        `json:"id"`
	Action       AuditAction `json:"action"`
	NumeroTicket string      `json:"numero_ticket"`
	EventID      uint        `json:"event_id"`
	ActorID      *uint       `json:"actor_id,omitempty"`
	Location     string      `json:"location,omitempty"`
	HolderName   string      `json:"holder_name"`
	Prix         float64     `json:"prix"`
	Gratuit      bool        `json:"gratuit"`
	CreatedAt    time.Time   `json:"created_at"`
}
