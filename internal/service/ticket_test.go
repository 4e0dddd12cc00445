package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evenio/billetterie-api/internal/domain"
	"github.com/evenio/billetterie-api/internal/repository"
)

var testNow = time.Date(2025, 6, 14, 20, 30, 0, 0, time.UTC)

// fakeStore backs all the repository fakes with one in-memory state so the
// ticket fake can mutate the event counters the way the real transaction does.
type fakeStore struct {
	events  map[uint]domain.Event
	tickets map[uint]domain.Ticket
	users   map[uint]domain.User

	nextTicketID uint
	nextUserID   uint

	issueErrs []error // popped one per IssueTickets call
	auditErr  error
	audits    []domain.AuditEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:       make(map[uint]domain.Event),
		tickets:      make(map[uint]domain.Ticket),
		users:        make(map[uint]domain.User),
		nextTicketID: 1,
		nextUserID:   1,
	}
}

func (f *fakeStore) addEvent(e domain.Event) domain.Event {
	f.events[e.ID] = e
	return e
}

func (f *fakeStore) addUser(u domain.User) domain.User {
	if u.ID == 0 {
		u.ID = f.nextUserID
		f.nextUserID++
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeStore) addTicket(t domain.Ticket) domain.Ticket {
	if t.ID == 0 {
		t.ID = f.nextTicketID
		f.nextTicketID++
	}
	if t.Event == nil {
		if e, ok := f.events[t.EventID]; ok {
			e := e
			t.Event = &e
		}
	}
	f.tickets[t.ID] = t
	return t
}

type fakeTicketRepo struct{ s *fakeStore }

func (r *fakeTicketRepo) IssueTickets(_ context.Context, eventID uint, tickets []domain.Ticket) ([]domain.Ticket, error) {
	if len(r.s.issueErrs) > 0 {
		err := r.s.issueErrs[0]
		r.s.issueErrs = r.s.issueErrs[1:]
		if err != nil {
			return nil, err
		}
	}

	event := r.s.events[eventID]
	if event.PlacesRestantes < len(tickets) {
		return nil, repository.ErrEventFull
	}
	event.PlacesRestantes -= len(tickets)
	if event.PlacesRestantes == 0 {
		event.Statut = domain.EventComplet
	}
	r.s.events[eventID] = event

	out := make([]domain.Ticket, len(tickets))
	for i, t := range tickets {
		out[i] = r.s.addTicket(t)
	}

	return out, nil
}

func (r *fakeTicketRepo) FindByID(_ context.Context, id uint) (domain.Ticket, error) {
	t, ok := r.s.tickets[id]
	if !ok {
		return domain.Ticket{}, repository.ErrTicketNotFound
	}
	return t, nil
}

func (r *fakeTicketRepo) FindByNumero(_ context.Context, numero string) (domain.Ticket, error) {
	for _, t := range r.s.tickets {
		if t.NumeroTicket == numero {
			return t, nil
		}
	}
	return domain.Ticket{}, repository.ErrTicketNotFound
}

func (r *fakeTicketRepo) FindByScanCode(_ context.Context, scanCode string) (domain.Ticket, error) {
	for _, t := range r.s.tickets {
		if t.ScanCode == scanCode {
			return t, nil
		}
	}
	return domain.Ticket{}, repository.ErrTicketNotFound
}

func (r *fakeTicketRepo) FindByUserID(_ context.Context, userID uint) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, t := range r.s.tickets {
		if id, ok := t.Holder.UserID(); ok && id == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) HasActiveTicket(_ context.Context, eventID, userID uint) (bool, error) {
	for _, t := range r.s.tickets {
		id, ok := t.Holder.UserID()
		if ok && id == userID && t.EventID == eventID && t.Statut != domain.TicketCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTicketRepo) MarkUsed(_ context.Context, id uint, validatorID uint, at time.Time) error {
	t, ok := r.s.tickets[id]
	if !ok || t.Statut != domain.TicketValid {
		return repository.ErrTicketNotValid
	}
	t.Statut = domain.TicketUsed
	t.ValidatedAt = &at
	t.ValidatedBy = &validatorID
	r.s.tickets[id] = t
	return nil
}

func (r *fakeTicketRepo) Cancel(_ context.Context, id uint) error {
	t, ok := r.s.tickets[id]
	if !ok || t.Statut != domain.TicketValid {
		return repository.ErrTicketNotValid
	}
	t.Statut = domain.TicketCancelled
	r.s.tickets[id] = t

	event := r.s.events[t.EventID]
	if event.PlacesRestantes < event.NbPlaces {
		event.PlacesRestantes++
	}
	if event.Statut == domain.EventComplet {
		event.Statut = domain.EventActive
	}
	r.s.events[t.EventID] = event
	return nil
}

type fakeEventRepo struct{ s *fakeStore }

func (r *fakeEventRepo) FindByID(_ context.Context, id uint) (domain.Event, error) {
	e, ok := r.s.events[id]
	if !ok {
		return domain.Event{}, repository.ErrEventNotFound
	}
	return e, nil
}

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return domain.User{}, repository.ErrUserEmailExists
		}
	}
	return r.s.addUser(user), nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uint) error {
	delete(r.s.users, id)
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uint) (domain.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (domain.User, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, repository.ErrUserNotFound
}

type fakeAudit struct{ s *fakeStore }

func (r *fakeAudit) Append(_ context.Context, entry domain.AuditEntry) error {
	if r.s.auditErr != nil {
		return r.s.auditErr
	}
	r.s.audits = append(r.s.audits, entry)
	return nil
}

func newTestTicketService(s *fakeStore) *TicketService {
	users := &fakeUserRepo{s: s}
	svc := NewTicketService(&fakeTicketRepo{s: s}, &fakeEventRepo{s: s}, users, &fakeAudit{s: s}, NewAuthService(users), "")
	svc.now = func() time.Time { return testNow }
	return svc
}

func freeEvent(s *fakeStore) domain.Event {
	return s.addEvent(domain.Event{
		ID:              1,
		Nom:             "Portes ouvertes",
		Lieu:            "Salle A",
		DateDebut:       testNow.Add(-time.Hour),
		DateFin:         testNow.Add(2 * time.Hour),
		NbPlaces:        50,
		PlacesRestantes: 50,
		Prix:            0,
		Statut:          domain.EventActive,
	})
}

func paidEvent(s *fakeStore) domain.Event {
	return s.addEvent(domain.Event{
		ID:              2,
		Nom:             "Concert",
		Lieu:            "Zenith",
		DateDebut:       testNow.Add(-time.Hour),
		DateFin:         testNow.Add(2 * time.Hour),
		NbPlaces:        100,
		PlacesRestantes: 100,
		Prix:            25,
		Statut:          domain.EventActive,
	})
}

func TestIssueFreeTicket(t *testing.T) {
	s := newFakeStore()
	svc := newTestTicketService(s)
	event := freeEvent(s)
	user := s.addUser(domain.User{Nom: "Martin", Prenom: "Alice", Email: "alice@example.com"})

	ticket, err := svc.IssueFreeTicket(context.Background(), event.ID, user.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.TicketValid, ticket.Statut)
	assert.Regexp(t, `^TKT-2025-\d{6}$`, ticket.NumeroTicket)
	assert.NotEmpty(t, ticket.ScanCode)
	assert.Equal(t, "Alice Martin", ticket.HolderName)
	assert.Zero(t, ticket.Prix)

	holderID, ok := ticket.Holder.UserID()
	assert.True(t, ok)
	assert.Equal(t, user.ID, holderID)

	assert.Equal(t, 49, s.events[event.ID].PlacesRestantes)

	require.Len(t, s.audits, 1)
	assert.Equal(t, domain.AuditTicketIssued, s.audits[0].Action)
	assert.True(t, s.audits[0].Gratuit)
}

func TestIssueFreeTicket_Preconditions(t *testing.T) {
	user := domain.User{Nom: "Martin", Email: "alice@example.com"}

	tests := []struct {
		name    string
		setup   func(s *fakeStore) uint // returns event ID to request
		wantErr *ReasonError
	}{
		{
			name:    "event not found",
			setup:   func(s *fakeStore) uint { return 99 },
			wantErr: ErrEventNotFound,
		},
		{
			name: "event inactive",
			setup: func(s *fakeStore) uint {
				e := freeEvent(s)
				e.Statut = domain.EventInactive
				s.addEvent(e)
				return e.ID
			},
			wantErr: ErrEventInactive,
		},
		{
			name:    "event not free",
			setup:   func(s *fakeStore) uint { return paidEvent(s).ID },
			wantErr: ErrInvalidEvent,
		},
		{
			name: "no places remaining",
			setup: func(s *fakeStore) uint {
				e := freeEvent(s)
				e.PlacesRestantes = 0
				e.Statut = domain.EventComplet
				s.addEvent(e)
				return e.ID
			},
			wantErr: ErrEventFull,
		},
		{
			name: "duplicate ticket",
			setup: func(s *fakeStore) uint {
				e := freeEvent(s)
				s.addTicket(domain.Ticket{
					NumeroTicket: "TKT-2025-000001",
					EventID:      e.ID,
					Holder:       domain.UserHolder(1),
					Statut:       domain.TicketValid,
				})
				return e.ID
			},
			wantErr: ErrDuplicateTicket,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newFakeStore()
			svc := newTestTicketService(s)
			u := s.addUser(user)
			eventID := tt.setup(s)

			_, err := svc.IssueFreeTicket(context.Background(), eventID, u.ID)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, s.audits)
		})
	}
}

// A cancelled ticket no longer counts against the one-per-user rule.
func TestIssueFreeTicket_ReissueAfterCancel(t *testing.T) {
	s := newFakeStore()
	svc := newTestTicketService(s)
	event := freeEvent(s)
	user := s.addUser(domain.User{Nom: "Martin", Email: "alice@example.com"})
	s.addTicket(domain.Ticket{
		NumeroTicket: "TKT-2025-000001",
		EventID:      event.ID,
		Holder:       domain.UserHolder(user.ID),
		Statut:       domain.TicketCancelled,
	})

	_, err := svc.IssueFreeTicket(context.Background(), event.ID, user.ID)
	assert.NoError(t, err)
}

func TestPurchaseTickets_Guest(t *testing.T) {
	s := newFakeStore()
	svc := newTestTicketService(s)
	event := paidEvent(s)

	result, err := svc.PurchaseTickets(context.Background(), PurchaseInput{
		EventID:  event.ID,
		Quantity: 3,
		Guest:    domain.GuestContact{Nom: "Durand", Prenom: "Paul", Email: "paul@example.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Quantity)
	assert.Equal(t, 75.0, result.TotalAmount)
	require.Len(t, result.Tickets, 3)
	for _, ticket := range result.Tickets {
		assert.Equal(t, domain.TicketValid, ticket.Statut)
		assert.Equal(t, 25.0, ticket.Prix)
		assert.True(t, ticket.Holder.IsGuest())
		assert.Equal(t, "Paul Durand", ticket.HolderName)
	}

	assert.Equal(t, 97, s.events[event.ID].PlacesRestantes)
	assert.Len(t, s.audits, 3)
}

func TestPurchaseTickets_ExistingUser(t *testing.T) {
	s := newFakeStore()
	svc := newTestTicketService(s)
	event := paidEvent(s)
	user := s.addUser(domain.User{Nom: "Martin", Prenom: "Alice", Email: "alice@example.com"})

	result, err := svc.PurchaseTickets(context.Background(), PurchaseInput{
		EventID:  event.ID,
		Quantity: 1,
		UserID:   &user.ID,
	})
	require.NoError(t, err)

	holderID, ok := result.Tickets[0].Holder.UserID()
	assert.True(t, ok)
	assert.Equal(t, user.ID, holderID)
}

func TestPurchaseTickets_CreateAccount(t *testing.T) {
	s := newFakeStore()
	svc := newTestTicketService(s)
	event := paidEvent(s)

	result, err := svc.PurchaseTickets(context.Background(), PurchaseInput{
		EventID:       event.ID,
		Quantity:      1,
		Guest:         domain.GuestContact{Nom: "Durand", Email: "paul@example.com"},
		CreateAccount: true,
		Password:      "secret123",
	})
	require.NoError(t, err)

	holderID, ok := result.Tickets[0].Holder.UserID()
	require.True(t, ok)

	created := s.users[holderID]
	assert.Equal(t, "paul@example.com", created.Email)
	assert.Equal(t, domain.RoleUser, created.Role)
	assert.NotEqual(t, "secret123", created.Password) // stored hashed
}

func TestPurchaseTickets_CreateAccountEmailTaken(t *testing.T) {
	s := newFakeStore()
	svc := newTestTicketService(s)
	event := paidEvent(s)
	s.addUser(domain.User{Nom: "Martin", Email: "paul@example.com"})

	_, err := svc.PurchaseTickets(context.Background(), PurchaseInput{
		EventID:       event.ID,
		Quantity:      1,
		Guest:         domain.GuestContact{Nom: "Durand", Email: "paul@example.com"},
		CreateAccount: true,
		Password:      "secret123",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestPurchaseTickets_Failures(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(s *fakeStore) uint
		quantity int
		wantErr  *ReasonError
	}{
		{
			name:     "event not found",
			setup:    func(s *fakeStore) uint { return 99 },
			quantity: 1,
			wantErr:  ErrEventNotFound,
		},
		{
			name: "event cancelled",
			setup: func(s *fakeStore) uint {
				e := paidEvent(s)
				e.Statut = domain.EventAnnule
				s.addEvent(e)
				return e.ID
			},
			quantity: 1,
			wantErr:  ErrEventNotAvailable,
		},
		{
			name: "sold out",
			setup: func(s *fakeStore) uint {
				e := paidEvent(s)
				e.PlacesRestantes = 0
				e.Statut = domain.EventComplet
				s.addEvent(e)
				return e.ID
			},
			quantity: 1,
			wantErr:  ErrInsufficientSeats,
		},
		{
			name: "not enough places for the batch",
			setup: func(s *fakeStore) uint {
				e := paidEvent(s)
				e.PlacesRestantes = 2
				s.addEvent(e)
				return e.ID
			},
			quantity: 3,
			wantErr:  ErrInsufficientSeats,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newFakeStore()
			svc := newTestTicketService(s)
			eventID := tt.setup(s)

			_, err := svc.PurchaseTickets(context.Background(), PurchaseInput{
				EventID:  eventID,
				Quantity: tt.quantity,
				Guest:    domain.GuestContact{Nom: "Durand", Email: "paul@example.com"},
			})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// Losing the guarded decrement between the precondition read and the insert
// surfaces as INSUFFICIENT_PLACES, same as the up-front check.
func TestPurchaseTickets_LosesSeatRace(t *testing.T) {
	s := newFakeStore()
	svc := newTestTicketService(s)
	event := paidEvent(s)
	s.issueErrs = []error{repository.ErrEventFull}

	_, err := svc.PurchaseTickets(context.Background(), PurchaseInput{
		EventID:  event.ID,
		Quantity: 1,
		Guest:    domain.GuestContact{Nom: "Durand", Email: "paul@example.com"},
	})
	assert.ErrorIs(t, err, ErrInsufficientSeats)
}

// An account created for a purchase must not outlive a failed issuance, or
// retrying the same purchase would trip the email uniqueness check.
func TestPurchaseTickets_CreateAccountUndoneOnSeatRace(t *testing.T) {
	s := newFakeStore()
	svc := newTestTicketService(s)
	event := paidEvent(s)
	s.issueErrs = []error{repository.ErrEventFull}

	input := PurchaseInput{
		EventID:       event.ID,
		Quantity:      1,
		Guest:         domain.GuestContact{Nom: "Durand", Prenom: "Paul", Email: "paul@example.com"},
		CreateAccount: true,
		Password:      "secret123",
	}

	_, err := svc.PurchaseTickets(context.Background(), input)
	require.ErrorIs(t, err, ErrInsufficientSeats)

	_, err = (&fakeUserRepo{s: s}).FindByEmail(context.Background(), "paul@example.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	// The retry reaches issuance instead of failing on the email.
	result, err := svc.PurchaseTickets(context.Background(), input)
	require.NoError(t, err)
	_, ok := result.Tickets[0].Holder.UserID()
	assert.True(t, ok)
}

func TestIssue_RetriesNumeroCollision(t *testing.T) {
	s := newFakeStore()
	svc := newTestTicketService(s)
	event := paidEvent(s)
	s.issueErrs = []error{repository.ErrNumeroExists, repository.ErrNumeroExists}

	result, err := svc.PurchaseTickets(context.Background(), PurchaseInput{
		EventID:  event.ID,
		Quantity: 1,
		Guest:    domain.GuestContact{Nom: "Durand", Email: "paul@example.com"},
	})
	require.NoError(t, err)
	assert.Len(t, result.Tickets, 1)
}

func issuedTicket(s *fakeStore, event domain.Event, userID uint) domain.Ticket {
	return s.addTicket(domain.Ticket{
		NumeroTicket: "TKT-2025-000042",
		ScanCode:     "abc123",
		EventID:      event.ID,
		Holder:       domain.UserHolder(userID),
		HolderName:   "Alice Martin",
		Statut:       domain.TicketValid,
	})
}

func TestValidateTicket(t *testing.T) {
	s := newFakeStore()
	svc := newTestTicketService(s)
	event := freeEvent(s)
	ticket := issuedTicket(s, event, 1)
	agent := domain.User{ID: 9, Role: domain.RoleAdmin}

	result, err := svc.ValidateTicket(context.Background(), ScanInput{TicketCode: ticket.NumeroTicket}, agent)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Empty(t, result.Reason)
	require.NotNil(t, result.Ticket)
	assert.Equal(t, domain.TicketUsed, result.Ticket.Statut)
	assert.Equal(t, testNow, *result.Ticket.ValidatedAt)
	assert.Equal(t, uint(9), *result.Ticket.ValidatedBy)

	stored := s.tickets[ticket.ID]
	assert.Equal(t, domain.TicketUsed, stored.Statut)

	require.Len(t, s.audits, 1)
	assert.Equal(t, domain.AuditTicketValidated, s.audits[0].Action)
	assert.Equal(t, "main entrance", s.audits[0].Location)
}

func TestValidateTicket_SecondScanRejected(t *testing.T) {
	s := newFakeStore()
	svc := newTestTicketService(s)
	event := freeEvent(s)
	ticket := issuedTicket(s, event, 1)
	agent := domain.User{ID: 9, Role: domain.RoleAdmin}

	first, err := svc.ValidateTicket(context.Background(), ScanInput{TicketCode: ticket.NumeroTicket}, agent)
	require.NoError(t, err)
	require.True(t, first.Success)

	second, err := svc.ValidateTicket(context.Background(), ScanInput{TicketCode: ticket.NumeroTicket}, agent)
	require.NoError(t, err)

	assert.False(t, second.Success)
	assert.Equal(t, domain.ReasonTicketAlreadyUsed, second.Reason)
	assert.Contains(t, second.Message, "already used")
	assert.Len(t, s.audits, 1)
}

func TestValidateTicket_NotFound(t *testing.T) {
	s := newFakeStore()
	svc := newTestTicketService(s)
	agent := domain.User{ID: 9, Role: domain.RoleAdmin}

	result, err := svc.ValidateTicket(context.Background(), ScanInput{TicketCode: "TKT-2025-999999"}, agent)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, domain.ReasonTicketNotFound, result.Reason)
}

func TestValidateTicket_WrongEvent(t *testing.T) {
	s := newFakeStore()
	svc := newTestTicketService(s)
	event := freeEvent(s)
	ticket := issuedTicket(s, event, 1)
	agent := domain.User{ID: 9, Role: domain.RoleAdmin}
	other := uint(42)

	result, err := svc.ValidateTicket(context.Background(), ScanInput{TicketCode: ticket.NumeroTicket, EventID: &other}, agent)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, domain.ReasonValidationError, result.Reason)
	assert.Equal(t, domain.TicketValid, s.tickets[ticket.ID].Statut)
}

func TestValidateTicket_QRPayload(t *testing.T) {
	s := newFakeStore()
	svc := newTestTicketService(s)
	event := freeEvent(s)
	ticket := issuedTicket(s, event, 1)
	agent := domain.User{ID: 9, Role: domain.RoleAdmin}

	qr := `{"numeroTicket":"` + ticket.NumeroTicket + `","scanCode":"` + ticket.ScanCode + `"}`
	result, err := svc.ValidateTicket(context.Background(), ScanInput{QRData: qr, Location: "gate B"}, agent)
	require.NoError(t, err)

	assert.True(t, result.Success)
	require.Len(t, s.audits, 1)
	assert.Equal(t, "gate B", s.audits[0].Location)
}

func TestVerifyTicket_DoesNotConsume(t *testing.T) {
	s := newFakeStore()
	svc := newTestTicketService(s)
	event := freeEvent(s)
	ticket := issuedTicket(s, event, 1)

	for i := 0; i < 3; i++ {
		result, err := svc.VerifyTicket(context.Background(), ScanInput{TicketCode: ticket.NumeroTicket})
		require.NoError(t, err)
		assert.True(t, result.Valid)
	}

	assert.Equal(t, domain.TicketValid, s.tickets[ticket.ID].Statut)
	assert.Empty(t, s.audits)
}

func TestVerifyTicket_ReportsChecksAndTiming(t *testing.T) {
	s := newFakeStore()
	svc := newTestTicketService(s)
	event := freeEvent(s)
	ticket := issuedTicket(s, event, 1)

	result, err := svc.VerifyTicket(context.Background(), ScanInput{TicketCode: ticket.NumeroTicket})
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.Equal(t, "Alice Martin", result.Holder)
	assert.True(t, result.Checks.StatusValid)
	assert.Equal(t, testNow, result.Timing.Now)
	require.NotNil(t, result.Timing.DateDebut)
	assert.Equal(t, event.DateDebut, *result.Timing.DateDebut)
}

// Verification and validation must agree: same ticket, same outcome.
func TestVerifyThenValidate_Agree(t *testing.T) {
	statuses := []domain.TicketStatus{
		domain.TicketValid,
		domain.TicketUsed,
		domain.TicketCancelled,
		domain.TicketExpired,
	}

	for _, status := range statuses {
		t.Run(string(status), func(t *testing.T) {
			s := newFakeStore()
			svc := newTestTicketService(s)
			event := freeEvent(s)
			ticket := issuedTicket(s, event, 1)
			ticket.Statut = status
			s.tickets[ticket.ID] = ticket

			verified, err := svc.VerifyTicket(context.Background(), ScanInput{TicketCode: ticket.NumeroTicket})
			require.NoError(t, err)

			validated, err := svc.ValidateTicket(context.Background(), ScanInput{TicketCode: ticket.NumeroTicket}, domain.User{ID: 9, Role: domain.RoleAdmin})
			require.NoError(t, err)

			assert.Equal(t, verified.Valid, validated.Success)
			assert.Equal(t, verified.Reason, validated.Reason)
		})
	}
}

func TestCancelTicket(t *testing.T) {
	s := newFakeStore()
	svc := newTestTicketService(s)
	event := freeEvent(s)
	event.PlacesRestantes = 49
	s.addEvent(event)
	owner := s.addUser(domain.User{Nom: "Martin", Email: "alice@example.com"})
	ticket := issuedTicket(s, event, owner.ID)

	cancelled, err := svc.CancelTicket(context.Background(), ticket.ID, owner)
	require.NoError(t, err)

	assert.Equal(t, domain.TicketCancelled, cancelled.Statut)
	assert.Equal(t, 50, s.events[event.ID].PlacesRestantes)
	require.Len(t, s.audits, 1)
	assert.Equal(t, domain.AuditTicketCancelled, s.audits[0].Action)
}

func TestCancelTicket_NotOwner(t *testing.T) {
	s := newFakeStore()
	svc := newTestTicketService(s)
	event := freeEvent(s)
	owner := s.addUser(domain.User{Nom: "Martin", Email: "alice@example.com"})
	stranger := s.addUser(domain.User{Nom: "Petit", Email: "bob@example.com"})
	ticket := issuedTicket(s, event, owner.ID)

	_, err := svc.CancelTicket(context.Background(), ticket.ID, stranger)
	assert.ErrorIs(t, err, ErrNotTicketOwner)
	assert.Equal(t, domain.TicketValid, s.tickets[ticket.ID].Statut)
}

func TestCancelTicket_AdminMayCancelAnyTicket(t *testing.T) {
	s := newFakeStore()
	svc := newTestTicketService(s)
	event := freeEvent(s)
	owner := s.addUser(domain.User{Nom: "Martin", Email: "alice@example.com"})
	ticket := issuedTicket(s, event, owner.ID)

	_, err := svc.CancelTicket(context.Background(), ticket.ID, domain.User{ID: 99, Role: domain.RoleAdmin})
	assert.NoError(t, err)
}

func TestCancelTicket_UsedTicket(t *testing.T) {
	s := newFakeStore()
	svc := newTestTicketService(s)
	event := freeEvent(s)
	owner := s.addUser(domain.User{Nom: "Martin", Email: "alice@example.com"})
	ticket := issuedTicket(s, event, owner.ID)
	ticket.Statut = domain.TicketUsed
	s.tickets[ticket.ID] = ticket

	_, err := svc.CancelTicket(context.Background(), ticket.ID, owner)
	assert.ErrorIs(t, err, ErrTicketNotValid)
}

func TestGetTicket_Authorization(t *testing.T) {
	s := newFakeStore()
	svc := newTestTicketService(s)
	event := freeEvent(s)
	owner := s.addUser(domain.User{Nom: "Martin", Email: "alice@example.com"})
	stranger := s.addUser(domain.User{Nom: "Petit", Email: "bob@example.com"})
	ticket := issuedTicket(s, event, owner.ID)

	_, err := svc.GetTicket(context.Background(), ticket.ID, owner)
	assert.NoError(t, err)

	_, err = svc.GetTicket(context.Background(), ticket.ID, stranger)
	assert.ErrorIs(t, err, ErrNotTicketOwner)

	_, err = svc.GetTicket(context.Background(), 999, owner)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestTicketQRCode(t *testing.T) {
	s := newFakeStore()
	svc := newTestTicketService(s)
	event := freeEvent(s)
	owner := s.addUser(domain.User{Nom: "Martin", Email: "alice@example.com"})
	ticket := issuedTicket(s, event, owner.ID)

	png, err := svc.TicketQRCode(context.Background(), ticket.ID, owner)
	require.NoError(t, err)
	assert.True(t, len(png) > 0)
	assert.Equal(t, byte(0x89), png[0])
}

// An audit write failure never fails the operation it records.
func TestAuditFailureIsSwallowed(t *testing.T) {
	s := newFakeStore()
	svc := newTestTicketService(s)
	event := freeEvent(s)
	user := s.addUser(domain.User{Nom: "Martin", Email: "alice@example.com"})
	s.auditErr = assert.AnError

	ticket, err := svc.IssueFreeTicket(context.Background(), event.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketValid, ticket.Statut)
}
