package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evenio/billetterie-api/internal/api/handler/v1/response"
	"github.com/evenio/billetterie-api/internal/domain"
	"github.com/evenio/billetterie-api/internal/service"
)

// renderTicketErr maps a reason-coded service failure onto the error
// envelope. Not-found, precondition violations and conflicts each get their
// HTTP class so clients can offer retry semantics where it makes sense.
func renderTicketErr(ctx *gin.Context, err error) bool {
	var reasonErr *service.ReasonError
	if !errors.As(err, &reasonErr) {
		return false
	}

	status := http.StatusBadRequest
	switch reasonErr.Reason {
	case domain.ReasonEventNotFound, domain.ReasonTicketNotFound:
		status = http.StatusNotFound
	case domain.ReasonEventFull, domain.ReasonDuplicateTicket,
		domain.ReasonInsufficientSeats, domain.ReasonUserAlreadyExists:
		status = http.StatusConflict
	}

	response.RenderErr(ctx, response.ErrReason(status, string(reasonErr.Reason), reasonErr.Message))

	return true
}
