package request

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSignupRequest_Validate(t *testing.T) {
	valid := SignupRequest{
		Email:    "alice@example.com",
		Password: "hunter2abc",
		Nom:      "Martin",
		Prenom:   "Alice",
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(r *SignupRequest)
	}{
		{"missing email", func(r *SignupRequest) { r.Email = "" }},
		{"bad email", func(r *SignupRequest) { r.Email = "not-an-email" }},
		{"missing nom", func(r *SignupRequest) { r.Nom = "" }},
		{"password too short", func(r *SignupRequest) { r.Password = "ab1" }},
		{"password without digit", func(r *SignupRequest) { r.Password = "abcdefgh" }},
		{"password without letter", func(r *SignupRequest) { r.Password = "12345678" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			assert.Error(t, req.Validate())
		})
	}
}

func TestPurchaseTicketsRequest_Validate(t *testing.T) {
	userID := uint(7)

	tests := []struct {
		name    string
		req     PurchaseTicketsRequest
		wantErr bool
	}{
		{
			name: "guest with contact info",
			req: PurchaseTicketsRequest{
				EventID:  1,
				Quantity: 2,
				UserInfo: PurchaseUserInfo{Email: "paul@example.com", Nom: "Durand"},
			},
		},
		{
			name: "registered user needs no contact info",
			req:  PurchaseTicketsRequest{EventID: 1, Quantity: 1, UserID: &userID},
		},
		{
			name: "account creation with password",
			req: PurchaseTicketsRequest{
				EventID:       1,
				Quantity:      1,
				UserInfo:      PurchaseUserInfo{Email: "paul@example.com", Nom: "Durand"},
				CreateAccount: true,
				Password:      "hunter2abc",
			},
		},
		{
			name: "account creation without password",
			req: PurchaseTicketsRequest{
				EventID:       1,
				Quantity:      1,
				UserInfo:      PurchaseUserInfo{Email: "paul@example.com", Nom: "Durand"},
				CreateAccount: true,
			},
			wantErr: true,
		},
		{
			name:    "guest without contact info",
			req:     PurchaseTicketsRequest{EventID: 1, Quantity: 1},
			wantErr: true,
		},
		{
			name: "zero quantity",
			req: PurchaseTicketsRequest{
				EventID:  1,
				UserInfo: PurchaseUserInfo{Email: "paul@example.com", Nom: "Durand"},
			},
			wantErr: true,
		},
		{
			name: "quantity over the cap",
			req: PurchaseTicketsRequest{
				EventID:  1,
				Quantity: 21,
				UserInfo: PurchaseUserInfo{Email: "paul@example.com", Nom: "Durand"},
			},
			wantErr: true,
		},
		{
			name:    "missing event",
			req:     PurchaseTicketsRequest{Quantity: 1, UserID: &userID},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateEventRequest_Validate(t *testing.T) {
	start := time.Date(2025, 9, 1, 20, 0, 0, 0, time.UTC)
	valid := CreateEventRequest{
		Nom:       "Concert",
		Lieu:      "Zenith",
		DateDebut: start,
		DateFin:   start.Add(3 * time.Hour),
		NbPlaces:  100,
		Prix:      25,
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(r *CreateEventRequest)
	}{
		{"end before start", func(r *CreateEventRequest) { r.DateFin = start.Add(-time.Hour) }},
		{"end equals start", func(r *CreateEventRequest) { r.DateFin = start }},
		{"zero capacity", func(r *CreateEventRequest) { r.NbPlaces = 0 }},
		{"negative price", func(r *CreateEventRequest) { r.Prix = -1 }},
		{"missing lieu", func(r *CreateEventRequest) { r.Lieu = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			assert.Error(t, req.Validate())
		})
	}
}

func TestChangeEventStatusRequest_Validate(t *testing.T) {
	assert.NoError(t, (&ChangeEventStatusRequest{Statut: "INACTIVE"}).Validate())
	assert.Error(t, (&ChangeEventStatusRequest{Statut: "COMPLET"}).Validate())
	assert.Error(t, (&ChangeEventStatusRequest{}).Validate())
}

func TestScanRequest_Validate(t *testing.T) {
	assert.NoError(t, (&ScanRequest{TicketCode: "TKT-2025-000042"}).Validate())
	assert.NoError(t, (&ScanRequest{QRData: `{"numeroTicket":"TKT-2025-000042"}`}).Validate())
	assert.ErrorIs(t, (&ScanRequest{Location: "gate B"}).Validate(), errScanPayloadRequired)
}
