package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evenio/billetterie-api/internal/api/handler/v1/request"
	"github.com/evenio/billetterie-api/internal/api/handler/v1/response"
	"github.com/evenio/billetterie-api/internal/domain"
	"github.com/evenio/billetterie-api/internal/service"
)

type TicketService interface {
	IssueFreeTicket(ctx context.Context, eventID, userID uint) (domain.Ticket, error)
	PurchaseTickets(ctx context.Context, input service.PurchaseInput) (service.PurchaseResult, error)
	GetTicket(ctx context.Context, id uint, actor domain.User) (domain.Ticket, error)
	ListUserTickets(ctx context.Context, userID uint) ([]domain.Ticket, error)
	TicketQRCode(ctx context.Context, id uint, actor domain.User) ([]byte, error)
	CancelTicket(ctx context.Context, id uint, actor domain.User) (domain.Ticket, error)
}

type TicketHandler struct {
	svc  TicketService
	uSvc UserService
}

func NewTicketHandler(svc TicketService, uSvc UserService) *TicketHandler {
	return &TicketHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleIssueFreeTicket godoc
// @Summary      Issue a free ticket
// @Description  Issues a single zero-price ticket for a free event to the authenticated user. One per user per event.
// @Tags         tickets
// @Produce      json
// @Param        eventID  path      int  true  "event ID"
// @Success      201      {object}  response.Ticket
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/tickets/free [post]
// @Security BearerAuth
func (h *TicketHandler) HandleIssueFreeTicket(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID, err := parseIDParam(ctx, "eventID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	ticket, err := h.svc.IssueFreeTicket(ctx.Request.Context(), eventID, user.ID)
	if err != nil {
		if renderTicketErr(ctx, err) {
			return
		}

		err = fmt.Errorf("v1.HandleIssueFreeTicket -> h.svc.IssueFreeTicket -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, response.NewTicket(ticket))
}

// HandlePurchaseTickets godoc
// @Summary      Purchase tickets
// @Description  Issues tickets at the event's current price for a registered user or a guest. Optionally creates an account.
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        input  body      request.PurchaseTicketsRequest  true  "purchase details"
// @Success      201    {object}  response.Purchase
// @Failure      400    {object}  response.Err
// @Failure      404    {object}  response.Err
// @Failure      409    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /tickets/purchase [post]
func (h *TicketHandler) HandlePurchaseTickets(ctx *gin.Context) {
	var req request.PurchaseTicketsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.svc.PurchaseTickets(ctx.Request.Context(), service.PurchaseInput{
		EventID:  req.EventID,
		Quantity: req.Quantity,
		UserID:   req.UserID,
		Guest: domain.GuestContact{
			Nom:       req.UserInfo.Nom,
			Prenom:    req.UserInfo.Prenom,
			Email:     req.UserInfo.Email,
			Telephone: req.UserInfo.Telephone,
		},
		CreateAccount: req.CreateAccount,
		Password:      req.Password,
	})
	if err != nil {
		if renderTicketErr(ctx, err) {
			return
		}

		err = fmt.Errorf("v1.HandlePurchaseTickets -> h.svc.PurchaseTickets -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, response.Purchase{
		Tickets:     response.NewTickets(result.Tickets),
		TotalAmount: result.TotalAmount,
		Quantity:    result.Quantity,
		Event:       result.Event,
	})
}

// HandleListMyTickets godoc
// @Summary      List the authenticated user's tickets
// @Tags         tickets
// @Produce      json
// @Success      200  {array}   response.Ticket
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tickets [get]
// @Security BearerAuth
func (h *TicketHandler) HandleListMyTickets(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	tickets, err := h.svc.ListUserTickets(ctx.Request.Context(), user.ID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListMyTickets -> h.svc.ListUserTickets -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.NewTickets(tickets))
}

// HandleGetTicket godoc
// @Summary      Get a ticket by ID
// @Tags         tickets
// @Produce      json
// @Param        ticketID  path      int  true  "ticket ID"
// @Success      200       {object}  response.Ticket
// @Failure      401       {object}  response.Err
// @Failure      403       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /tickets/{ticketID} [get]
// @Security BearerAuth
func (h *TicketHandler) HandleGetTicket(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ticketID, err := parseIDParam(ctx, "ticketID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	ticket, err := h.svc.GetTicket(ctx.Request.Context(), ticketID, user)
	if err != nil {
		if errors.Is(err, service.ErrNotTicketOwner) {
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
			return
		}
		if renderTicketErr(ctx, err) {
			return
		}

		err = fmt.Errorf("v1.HandleGetTicket -> h.svc.GetTicket -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.NewTicket(ticket))
}

// HandleTicketQRCode godoc
// @Summary      Get a ticket's QR code as PNG
// @Tags         tickets
// @Produce      png
// @Param        ticketID  path  int  true  "ticket ID"
// @Success      200
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /tickets/{ticketID}/qrcode [get]
// @Security BearerAuth
func (h *TicketHandler) HandleTicketQRCode(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ticketID, err := parseIDParam(ctx, "ticketID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	png, err := h.svc.TicketQRCode(ctx.Request.Context(), ticketID, user)
	if err != nil {
		if errors.Is(err, service.ErrNotTicketOwner) {
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
			return
		}
		if renderTicketErr(ctx, err) {
			return
		}

		err = fmt.Errorf("v1.HandleTicketQRCode -> h.svc.TicketQRCode -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Data(http.StatusOK, "image/png", png)
}

// HandleCancelTicket godoc
// @Summary      Cancel a ticket
// @Description  Cancels a VALID ticket and returns its seat to the event.
// @Tags         tickets
// @Produce      json
// @Param        ticketID  path      int  true  "ticket ID"
// @Success      200       {object}  response.Ticket
// @Failure      400       {object}  response.Err
// @Failure      401       {object}  response.Err
// @Failure      403       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /tickets/{ticketID}/cancel [post]
// @Security BearerAuth
func (h *TicketHandler) HandleCancelTicket(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ticketID, err := parseIDParam(ctx, "ticketID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	ticket, err := h.svc.CancelTicket(ctx.Request.Context(), ticketID, user)
	if err != nil {
		if errors.Is(err, service.ErrNotTicketOwner) {
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
			return
		}
		if renderTicketErr(ctx, err) {
			return
		}

		err = fmt.Errorf("v1.HandleCancelTicket -> h.svc.CancelTicket -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.NewTicket(ticket))
}
