package domain

import (
	"fmt"
	"time"
)

// Reason is the stable machine-readable code a failed operation reports.
// Clients branch on these, so they never change once shipped.
type Reason string

const (
	ReasonEventNotFound     Reason = "EVENT_NOT_FOUND"
	ReasonInvalidEvent      Reason = "INVALID_EVENT"
	ReasonEventInactive     Reason = "EVENT_INACTIVE"
	ReasonEventFull         Reason = "EVENT_FULL"
	ReasonDuplicateTicket   Reason = "DUPLICATE_TICKET"
	ReasonEventNotAvailable Reason = "EVENT_NOT_AVAILABLE"
	ReasonInsufficientSeats Reason = "INSUFFICIENT_PLACES"
	ReasonUserAlreadyExists Reason = "USER_ALREADY_EXISTS"

	ReasonTicketNotFound    Reason = "TICKET_NOT_FOUND"
	ReasonValidationError   Reason = "VALIDATION_ERROR"
	ReasonEventNotStarted   Reason = "EVENT_NOT_STARTED"
	ReasonEventEnded        Reason = "EVENT_ENDED"
	ReasonTicketCancelled   Reason = "TICKET_CANCELLED"
	ReasonTicketAlreadyUsed Reason = "TICKET_ALREADY_USED"
	ReasonTicketInvalid     Reason = "TICKET_INVALID"
)

// AdmissionChecks is the outcome vector of the nine scan-time checks,
// in evaluation order. The dry-run endpoint returns it verbatim so a
// scanner UI can show exactly which gate a ticket fails at.
type AdmissionChecks struct {
	TicketFound   bool `json:"ticket_found"`
	EventMatch    bool `json:"event_match"`
	EventActive   bool `json:"event_active"`
	EventStarted  bool `json:"event_started"`
	EventNotEnded bool `json:"event_not_ended"`
	NotCancelled  bool `json:"not_cancelled"`
	NotUsed       bool `json:"not_used"`
	NotExpired    bool `json:"not_expired"`
	StatusValid   bool `json:"status_valid"`
}

type AdmissionResult struct {
	Valid   bool
	Reason  Reason // empty when Valid
	Message string
	Checks  AdmissionChecks
}

// EvaluateAdmission runs the scan-time precondition checks in their fixed
// order and reports the first failure. It is pure: both the dry-run verify
// and the committing validate call it, so preview and commit can never
// disagree on the outcome. A nil ticket means the lookup failed.
func EvaluateAdmission(ticket *Ticket, event *Event, expectedEventID *uint, now time.Time) AdmissionResult {
	res := AdmissionResult{}

	if ticket == nil {
		res.Reason = ReasonTicketNotFound
		res.Message = "ticket not found"
		return res
	}
	res.Checks.TicketFound = true

	if expectedEventID != nil && ticket.EventID != *expectedEventID {
		res.Reason = ReasonValidationError
		res.Message = fmt.Sprintf("ticket %v belongs to event %v, not event %v", ticket.NumeroTicket, ticket.EventID, *expectedEventID)
		return res
	}
	res.Checks.EventMatch = true

	if event == nil || (event.Statut != EventActive && event.Statut != EventComplet) {
		res.Reason = ReasonEventInactive
		res.Message = "the event is no longer active"
		return res
	}
	res.Checks.EventActive = true

	if !event.HasStarted(now) {
		minutes := int(event.DateDebut.Sub(now).Minutes())
		res.Reason = ReasonEventNotStarted
		res.Message = fmt.Sprintf("the event has not started yet (starts in %d minutes)", minutes)
		return res
	}
	res.Checks.EventStarted = true

	if event.HasEnded(now) {
		hours := int(now.Sub(event.DateFin).Hours())
		res.Reason = ReasonEventEnded
		res.Message = fmt.Sprintf("the event already ended (%d hours ago)", hours)
		return res
	}
	res.Checks.EventNotEnded = true

	if ticket.Statut == TicketCancelled {
		res.Reason = ReasonTicketCancelled
		res.Message = "this ticket has been cancelled"
		return res
	}
	res.Checks.NotCancelled = true

	if ticket.Statut == TicketUsed {
		res.Reason = ReasonTicketAlreadyUsed
		res.Message = usedMessage(ticket)
		return res
	}
	res.Checks.NotUsed = true

	if ticket.Statut == TicketExpired {
		res.Reason = ReasonTicketInvalid
		res.Message = "this ticket has expired"
		return res
	}
	res.Checks.NotExpired = true

	if ticket.Statut != TicketValid {
		res.Reason = ReasonTicketInvalid
		res.Message = fmt.Sprintf("unexpected ticket status %q", ticket.Statut)
		return res
	}
	res.Checks.StatusValid = true

	res.Valid = true
	res.Message = "ticket is valid for admission"

	return res
}

func usedMessage(ticket *Ticket) string {
	msg := "this ticket was already used"
	if ticket.ValidatedAt != nil {
		msg += fmt.Sprintf(" at %v", ticket.ValidatedAt.Format(time.RFC3339))
	}
	if ticket.ValidatedBy != nil {
		msg += fmt.Sprintf(" (validated by agent %d)", *ticket.ValidatedBy)
	}

	return msg
}
