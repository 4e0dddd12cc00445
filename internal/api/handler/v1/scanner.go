package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evenio/billetterie-api/internal/api/handler/v1/request"
	"github.com/evenio/billetterie-api/internal/api/handler/v1/response"
	"github.com/evenio/billetterie-api/internal/domain"
	"github.com/evenio/billetterie-api/internal/service"
)

type ScannerService interface {
	ValidateTicket(ctx context.Context, input service.ScanInput, validator domain.User) (service.ValidationResult, error)
	VerifyTicket(ctx context.Context, input service.ScanInput) (service.VerificationResult, error)
}

type ScannerHandler struct {
	svc  ScannerService
	uSvc UserService
}

func NewScannerHandler(svc ScannerService, uSvc UserService) *ScannerHandler {
	return &ScannerHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleValidateTicket godoc
// @Summary      Validate a scanned ticket
// @Description  Runs the admission checks and, when they pass, marks the ticket USED. A failed check is reported in the body with success=false, not as an HTTP error.
// @Tags         scanner
// @Accept       json
// @Produce      json
// @Param        input  body      request.ScanRequest  true  "scan payload"
// @Success      200    {object}  service.ValidationResult
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /scanner/validate [post]
// @Security BearerAuth
func (h *ScannerHandler) HandleValidateTicket(ctx *gin.Context) {
	user, respErr := requireAdmin(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ScanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.svc.ValidateTicket(ctx.Request.Context(), service.ScanInput{
		QRData:     req.QRData,
		TicketCode: req.TicketCode,
		EventID:    req.EventID,
		Location:   req.Location,
	}, user)
	if err != nil {
		err = fmt.Errorf("v1.HandleValidateTicket -> h.svc.ValidateTicket -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// HandleVerifyTicket godoc
// @Summary      Verify a scanned ticket without consuming it
// @Description  Runs the same admission checks as validation but writes nothing; the ticket stays VALID.
// @Tags         scanner
// @Accept       json
// @Produce      json
// @Param        input  body      request.ScanRequest  true  "scan payload"
// @Success      200    {object}  service.VerificationResult
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      403    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /scanner/verify [post]
// @Security BearerAuth
func (h *ScannerHandler) HandleVerifyTicket(ctx *gin.Context) {
	if _, respErr := requireAdmin(ctx, h.uSvc); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ScanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.svc.VerifyTicket(ctx.Request.Context(), service.ScanInput{
		QRData:     req.QRData,
		TicketCode: req.TicketCode,
		EventID:    req.EventID,
		Location:   req.Location,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleVerifyTicket -> h.svc.VerifyTicket -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, result)
}
