package service

import "github.com/evenio/billetterie-api/internal/domain"

// ReasonError couples a stable machine-readable reason code with a human
// message. Handlers branch on the code; the message goes to the client as-is.
type ReasonError struct {
	Reason  domain.Reason
	Message string
}

func (e *ReasonError) Error() string {
	return e.Message
}

var (
	ErrEventNotFound     = &ReasonError{Reason: domain.ReasonEventNotFound, Message: "event not found"}
	ErrEventInactive     = &ReasonError{Reason: domain.ReasonEventInactive, Message: "event is not active"}
	ErrInvalidEvent      = &ReasonError{Reason: domain.ReasonInvalidEvent, Message: "event is not free"}
	ErrEventFull         = &ReasonError{Reason: domain.ReasonEventFull, Message: "event has no remaining places"}
	ErrDuplicateTicket   = &ReasonError{Reason: domain.ReasonDuplicateTicket, Message: "a non-cancelled ticket already exists for this event"}
	ErrEventNotAvailable = &ReasonError{Reason: domain.ReasonEventNotAvailable, Message: "event is not available for purchase"}
	ErrInsufficientSeats = &ReasonError{Reason: domain.ReasonInsufficientSeats, Message: "not enough places remaining"}
	ErrUserAlreadyExists = &ReasonError{Reason: domain.ReasonUserAlreadyExists, Message: "a user with this email already exists"}
	ErrTicketNotFound    = &ReasonError{Reason: domain.ReasonTicketNotFound, Message: "ticket not found"}
	ErrTicketNotValid    = &ReasonError{Reason: domain.ReasonTicketInvalid, Message: "ticket is not in a cancellable state"}
)
