package response

import (
	"github.com/evenio/billetterie-api/internal/domain"
	"github.com/evenio/billetterie-api/internal/pkg/ticketcode"
)

// Ticket is the wire shape of an issued ticket, with the QR payload the
// holder presents at admission.
type Ticket struct {
	domain.Ticket
	QRCode string `json:"qr_code"`
}

func NewTicket(t domain.Ticket) Ticket {
	payload, err := ticketcode.EncodePayload(ticketcode.Payload{
		NumeroTicket: t.NumeroTicket,
		ScanCode:     t.ScanCode,
		EventID:      t.EventID,
	})
	if err != nil {
		payload = t.NumeroTicket
	}

	return Ticket{
		Ticket: t,
		QRCode: payload,
	}
}

func NewTickets(tickets []domain.Ticket) []Ticket {
	out := make([]Ticket, len(tickets))
	for i, t := range tickets {
		out[i] = NewTicket(t)
	}

	return out
}

type Purchase struct {
	Tickets     []Ticket     `json:"tickets"`
	TotalAmount float64      `json:"total_amount"`
	Quantity    int          `json:"quantity"`
	Event       domain.Event `json:"event"`
}
