package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/evenio/billetterie-api/internal/domain"
	"github.com/evenio/billetterie-api/internal/pkg/ticketcode"
	"github.com/evenio/billetterie-api/internal/repository"
)

// numeroRetries bounds the regeneration loop when a generated ticket number
// collides with an existing row.
const numeroRetries = 3

type TicketRepository interface {
	IssueTickets(ctx context.Context, eventID uint, tickets []domain.Ticket) ([]domain.Ticket, error)
	FindByID(ctx context.Context, id uint) (domain.Ticket, error)
	FindByNumero(ctx context.Context, numero string) (domain.Ticket, error)
	FindByScanCode(ctx context.Context, scanCode string) (domain.Ticket, error)
	FindByUserID(ctx context.Context, userID uint) ([]domain.Ticket, error)
	HasActiveTicket(ctx context.Context, eventID, userID uint) (bool, error)
	MarkUsed(ctx context.Context, id uint, validatorID uint, at time.Time) error
	Cancel(ctx context.Context, id uint) error
}

type TicketEventRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Event, error)
}

type TicketUserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
}

type AuditAppender interface {
	Append(ctx context.Context, entry domain.AuditEntry) error
}

// TicketService owns the ticket state machine and the paired event counter:
// issuance (free and paid), scan-time validation, verification and
// cancellation all go through here.
type TicketService struct {
	repo            TicketRepository
	eventRepo       TicketEventRepository
	userRepo        TicketUserRepository
	audit           AuditAppender
	auth            *AuthService
	defaultLocation string
	now             func() time.Time
}

func NewTicketService(repo TicketRepository, eventRepo TicketEventRepository, userRepo TicketUserRepository, audit AuditAppender, auth *AuthService, defaultLocation string) *TicketService {
	if defaultLocation == "" {
		defaultLocation = "main entrance"
	}

	return &TicketService{
		repo:            repo,
		eventRepo:       eventRepo,
		userRepo:        userRepo,
		audit:           audit,
		auth:            auth,
		defaultLocation: defaultLocation,
		now:             time.Now,
	}
}

// IssueFreeTicket issues a single zero-price ticket to a registered user.
// Preconditions run in their documented order; the first failure wins.
func (s *TicketService) IssueFreeTicket(ctx context.Context, eventID, userID uint) (domain.Ticket, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return domain.Ticket{}, ErrEventNotFound
		}

		return domain.Ticket{}, fmt.Errorf("s.eventRepo.FindByID -> %w", err)
	}

	switch event.Statut {
	case domain.EventActive:
	case domain.EventComplet:
		// Sold out reads as "no seats", not "inactive".
		return domain.Ticket{}, ErrEventFull
	default:
		return domain.Ticket{}, ErrEventInactive
	}

	if !event.IsFree() {
		return domain.Ticket{}, ErrInvalidEvent
	}

	if event.PlacesRestantes <= 0 {
		return domain.Ticket{}, ErrEventFull
	}

	hasTicket, err := s.repo.HasActiveTicket(ctx, eventID, userID)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("s.repo.HasActiveTicket -> %w", err)
	}
	if hasTicket {
		return domain.Ticket{}, ErrDuplicateTicket
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("s.userRepo.FindByID -> %w", err)
	}

	issued, err := s.issue(ctx, event, []domain.Holder{domain.UserHolder(userID)}, []string{user.DisplayName()}, 0)
	if err != nil {
		return domain.Ticket{}, err
	}

	s.emitAudit(ctx, domain.AuditTicketIssued, issued[0], event, nil, "")

	ticket := issued[0]
	ticket.Event = &event

	return ticket, nil
}

type PurchaseInput struct {
	EventID       uint
	Quantity      int
	UserID        *uint
	Guest         domain.GuestContact
	CreateAccount bool
	Password      string
}

type PurchaseResult struct {
	Tickets     []domain.Ticket `json:"tickets"`
	TotalAmount float64         `json:"total_amount"`
	Quantity    int             `json:"quantity"`
	Event       domain.Event    `json:"event"`
}

// PurchaseTickets issues a batch of tickets at the event's current price.
// The holder is either an existing user, a freshly created account, or a
// guest contact; all N tickets and the counter decrement commit together.
func (s *TicketService) PurchaseTickets(ctx context.Context, input PurchaseInput) (PurchaseResult, error) {
	event, err := s.eventRepo.FindByID(ctx, input.EventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return PurchaseResult{}, ErrEventNotFound
		}

		return PurchaseResult{}, fmt.Errorf("s.eventRepo.FindByID -> %w", err)
	}

	switch event.Statut {
	case domain.EventActive:
	case domain.EventComplet:
		return PurchaseResult{}, ErrInsufficientSeats
	default:
		return PurchaseResult{}, ErrEventNotAvailable
	}

	if event.PlacesRestantes < input.Quantity {
		return PurchaseResult{}, ErrInsufficientSeats
	}

	holder, holderName, createdUserID, err := s.resolveHolder(ctx, input)
	if err != nil {
		return PurchaseResult{}, err
	}

	holders := make([]domain.Holder, input.Quantity)
	names := make([]string, input.Quantity)
	for i := range holders {
		holders[i] = holder
		names[i] = holderName
	}

	issued, err := s.issue(ctx, event, holders, names, event.Prix)
	if err != nil {
		// The account was created for this purchase; without tickets it must
		// not survive, or a retry would hit the email uniqueness check.
		if createdUserID != nil {
			if derr := s.userRepo.Delete(ctx, *createdUserID); derr != nil {
				zap.L().Warn("failed to remove account after failed purchase",
					zap.Uint("user_id", *createdUserID),
					zap.Error(derr),
				)
			}
		}

		return PurchaseResult{}, err
	}

	for i := range issued {
		s.emitAudit(ctx, domain.AuditTicketPurchased, issued[i], event, nil, "")
	}

	return PurchaseResult{
		Tickets:     issued,
		TotalAmount: event.Prix * float64(input.Quantity),
		Quantity:    input.Quantity,
		Event:       event,
	}, nil
}

// resolveHolder resolves who the tickets belong to. When an account is
// created for the purchase its ID comes back non-nil so the caller can undo
// the creation if the issuance leg fails.
func (s *TicketService) resolveHolder(ctx context.Context, input PurchaseInput) (domain.Holder, string, *uint, error) {
	if input.UserID != nil {
		user, err := s.userRepo.FindByID(ctx, *input.UserID)
		if err != nil {
			return domain.Holder{}, "", nil, fmt.Errorf("s.userRepo.FindByID -> %w", err)
		}

		return domain.UserHolder(user.ID), user.DisplayName(), nil, nil
	}

	if input.CreateAccount {
		created, err := s.auth.Signup(ctx, domain.User{
			Email:     input.Guest.Email,
			Password:  input.Password,
			Nom:       input.Guest.Nom,
			Prenom:    input.Guest.Prenom,
			Telephone: input.Guest.Telephone,
			Role:      domain.RoleUser,
		})
		if err != nil {
			if errors.Is(err, ErrUserEmailExists) {
				return domain.Holder{}, "", nil, ErrUserAlreadyExists
			}

			return domain.Holder{}, "", nil, fmt.Errorf("s.auth.Signup -> %w", err)
		}

		createdID := created.ID

		return domain.UserHolder(created.ID), created.DisplayName(), &createdID, nil
	}

	holder, err := domain.GuestHolder(input.Guest)
	if err != nil {
		return domain.Holder{}, "", nil, &ReasonError{Reason: domain.ReasonValidationError, Message: err.Error()}
	}

	return holder, input.Guest.DisplayName(), nil, nil
}

// issue builds the ticket rows and hands them to the repository's atomic
// unit, retrying on the rare ticket-number collision.
func (s *TicketService) issue(ctx context.Context, event domain.Event, holders []domain.Holder, names []string, prix float64) ([]domain.Ticket, error) {
	for attempt := 0; ; attempt++ {
		tickets := make([]domain.Ticket, len(holders))
		for i, holder := range holders {
			numero, err := ticketcode.NewNumero(s.now())
			if err != nil {
				return nil, fmt.Errorf("ticketcode.NewNumero -> %w", err)
			}

			tickets[i] = domain.Ticket{
				NumeroTicket: numero,
				ScanCode:     ticketcode.NewScanCode(),
				EventID:      event.ID,
				Holder:       holder,
				HolderName:   names[i],
				Prix:         prix,
				Statut:       domain.TicketValid,
			}
		}

		issued, err := s.repo.IssueTickets(ctx, event.ID, tickets)
		if err != nil {
			if errors.Is(err, repository.ErrEventFull) {
				// Lost the race for the remaining seats.
				if prix > 0 {
					return nil, ErrInsufficientSeats
				}

				return nil, ErrEventFull
			}
			if errors.Is(err, repository.ErrNumeroExists) && attempt < numeroRetries {
				continue
			}

			return nil, fmt.Errorf("s.repo.IssueTickets -> %w", err)
		}

		for i := range issued {
			issued[i].HolderName = names[i]
		}

		return issued, nil
	}
}

type ScanInput struct {
	QRData     string
	TicketCode string
	EventID    *uint
	Location   string
}

type ValidationResult struct {
	Success bool           `json:"success"`
	Reason  domain.Reason  `json:"reason,omitempty"`
	Message string         `json:"message"`
	Ticket  *domain.Ticket `json:"ticket,omitempty"`
}

type VerificationTiming struct {
	Now       time.Time  `json:"now"`
	DateDebut *time.Time `json:"date_debut,omitempty"`
	DateFin   *time.Time `json:"date_fin,omitempty"`
}

type VerificationResult struct {
	Valid   bool                   `json:"valid"`
	Reason  domain.Reason          `json:"reason,omitempty"`
	Message string                 `json:"message"`
	Ticket  *domain.Ticket         `json:"ticket,omitempty"`
	Event   *domain.Event          `json:"event,omitempty"`
	Holder  string                 `json:"holder,omitempty"`
	Checks  domain.AdmissionChecks `json:"checks"`
	Timing  VerificationTiming     `json:"timing"`
}

// resolveScan looks the ticket up from whatever the scanner sent: a
// structured QR payload or a bare ticket number. A missing ticket is a
// reported outcome, not an error.
func (s *TicketService) resolveScan(ctx context.Context, input ScanInput) (*domain.Ticket, error) {
	code := input.TicketCode
	var scanCode string

	if input.QRData != "" {
		payload := ticketcode.DecodePayload(input.QRData)
		code = payload.NumeroTicket
		scanCode = payload.ScanCode
	}

	if code != "" {
		ticket, err := s.repo.FindByNumero(ctx, code)
		if err == nil {
			return &ticket, nil
		}
		if !errors.Is(err, repository.ErrTicketNotFound) {
			return nil, fmt.Errorf("s.repo.FindByNumero -> %w", err)
		}
	}

	if scanCode != "" {
		ticket, err := s.repo.FindByScanCode(ctx, scanCode)
		if err == nil {
			return &ticket, nil
		}
		if !errors.Is(err, repository.ErrTicketNotFound) {
			return nil, fmt.Errorf("s.repo.FindByScanCode -> %w", err)
		}
	}

	return nil, nil
}

// ValidateTicket commits the VALID -> USED transition after the nine
// admission checks pass. Failures come back as a reason-coded result, not an
// error: a rejected scan is a normal business outcome for the scanner UI.
func (s *TicketService) ValidateTicket(ctx context.Context, input ScanInput, validator domain.User) (ValidationResult, error) {
	ticket, err := s.resolveScan(ctx, input)
	if err != nil {
		return ValidationResult{}, err
	}

	now := s.now()
	res := domain.EvaluateAdmission(ticket, ticketEvent(ticket), input.EventID, now)
	if !res.Valid {
		return ValidationResult{
			Success: false,
			Reason:  res.Reason,
			Message: res.Message,
			Ticket:  ticket,
		}, nil
	}

	if err = s.repo.MarkUsed(ctx, ticket.ID, validator.ID, now); err != nil {
		if errors.Is(err, repository.ErrTicketNotValid) {
			// A concurrent scan won; re-read and report deterministically.
			refreshed, ferr := s.repo.FindByID(ctx, ticket.ID)
			if ferr != nil {
				return ValidationResult{}, fmt.Errorf("s.repo.FindByID -> %w", ferr)
			}

			res = domain.EvaluateAdmission(&refreshed, ticketEvent(&refreshed), input.EventID, now)

			return ValidationResult{
				Success: false,
				Reason:  res.Reason,
				Message: res.Message,
				Ticket:  &refreshed,
			}, nil
		}

		return ValidationResult{}, fmt.Errorf("s.repo.MarkUsed -> %w", err)
	}

	ticket.Statut = domain.TicketUsed
	ticket.ValidatedAt = &now
	validatorID := validator.ID
	ticket.ValidatedBy = &validatorID

	location := input.Location
	if location == "" {
		location = s.defaultLocation
	}

	if ticket.Event != nil {
		s.emitAudit(ctx, domain.AuditTicketValidated, *ticket, *ticket.Event, &validatorID, location)
	}

	return ValidationResult{
		Success: true,
		Message: fmt.Sprintf("ticket %v validated", ticket.NumeroTicket),
		Ticket:  ticket,
	}, nil
}

// VerifyTicket runs the exact same admission checks as ValidateTicket but
// writes nothing, so a scanner can preview the outcome before committing.
func (s *TicketService) VerifyTicket(ctx context.Context, input ScanInput) (VerificationResult, error) {
	ticket, err := s.resolveScan(ctx, input)
	if err != nil {
		return VerificationResult{}, err
	}

	now := s.now()
	event := ticketEvent(ticket)
	res := domain.EvaluateAdmission(ticket, event, input.EventID, now)

	out := VerificationResult{
		Valid:   res.Valid,
		Reason:  res.Reason,
		Message: res.Message,
		Ticket:  ticket,
		Event:   event,
		Checks:  res.Checks,
		Timing:  VerificationTiming{Now: now},
	}
	if ticket != nil {
		out.Holder = ticket.HolderName
	}
	if event != nil {
		out.Timing.DateDebut = &event.DateDebut
		out.Timing.DateFin = &event.DateFin
	}

	return out, nil
}

var ErrNotTicketOwner = errors.New("ticket does not belong to this user")

func (s *TicketService) GetTicket(ctx context.Context, id uint, actor domain.User) (domain.Ticket, error) {
	ticket, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return domain.Ticket{}, ErrTicketNotFound
		}

		return domain.Ticket{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if err = s.authorizeHolder(ticket, actor); err != nil {
		return domain.Ticket{}, err
	}

	return ticket, nil
}

func (s *TicketService) ListUserTickets(ctx context.Context, userID uint) ([]domain.Ticket, error) {
	tickets, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByUserID -> %w", err)
	}

	return tickets, nil
}

// TicketQRCode renders the ticket's QR payload as a PNG.
func (s *TicketService) TicketQRCode(ctx context.Context, id uint, actor domain.User) ([]byte, error) {
	ticket, err := s.GetTicket(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	payload, err := ticketcode.EncodePayload(ticketcode.Payload{
		NumeroTicket: ticket.NumeroTicket,
		ScanCode:     ticket.ScanCode,
		EventID:      ticket.EventID,
	})
	if err != nil {
		return nil, fmt.Errorf("ticketcode.EncodePayload -> %w", err)
	}

	png, err := ticketcode.QRPNG(payload, 256)
	if err != nil {
		return nil, fmt.Errorf("ticketcode.QRPNG -> %w", err)
	}

	return png, nil
}

// CancelTicket performs VALID -> CANCELLED and returns the seat to the
// event. Only the holder or an admin may cancel.
func (s *TicketService) CancelTicket(ctx context.Context, id uint, actor domain.User) (domain.Ticket, error) {
	ticket, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return domain.Ticket{}, ErrTicketNotFound
		}

		return domain.Ticket{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if err = s.authorizeHolder(ticket, actor); err != nil {
		return domain.Ticket{}, err
	}

	if ticket.Statut != domain.TicketValid {
		return domain.Ticket{}, ErrTicketNotValid
	}

	if err = s.repo.Cancel(ctx, ticket.ID); err != nil {
		if errors.Is(err, repository.ErrTicketNotValid) {
			return domain.Ticket{}, ErrTicketNotValid
		}

		return domain.Ticket{}, fmt.Errorf("s.repo.Cancel -> %w", err)
	}

	ticket.Statut = domain.TicketCancelled

	if ticket.Event != nil {
		actorID := actor.ID
		s.emitAudit(ctx, domain.AuditTicketCancelled, ticket, *ticket.Event, &actorID, "")
	}

	return ticket, nil
}

func (s *TicketService) authorizeHolder(ticket domain.Ticket, actor domain.User) error {
	if actor.IsAdmin() {
		return nil
	}
	if userID, ok := ticket.Holder.UserID(); ok && userID == actor.ID {
		return nil
	}

	return ErrNotTicketOwner
}

// emitAudit appends an audit entry best-effort: a failed write is logged
// and swallowed, it never rolls back the transition it records.
func (s *TicketService) emitAudit(ctx context.Context, action domain.AuditAction, ticket domain.Ticket, event domain.Event, actorID *uint, location string) {
	entry := domain.AuditEntry{
		Action:       action,
		NumeroTicket: ticket.NumeroTicket,
		EventID:      event.ID,
		ActorID:      actorID,
		Location:     location,
		HolderName:   ticket.HolderName,
		Prix:         ticket.Prix,
		Gratuit:      ticket.IsFree(),
	}

	if err := s.audit.Append(ctx, entry); err != nil {
		zap.L().Warn("failed to append audit entry",
			zap.String("action", string(action)),
			zap.String("numero_ticket", ticket.NumeroTicket),
			zap.Error(err),
		)
	}
}

func ticketEvent(ticket *domain.Ticket) *domain.Event {
	if ticket == nil {
		return nil
	}

	return ticket.Event
}
