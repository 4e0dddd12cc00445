package request

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

var (
	errPasswordRequired = errors.New("a password is required when creating an account")
	errUserInfoRequired = errors.New("user_info is required for guest purchases")
)

type PurchaseUserInfo struct {
	Email     string `json:"email"`
	Nom       string `json:"nom"`
	Prenom    string `json:"prenom"`
	Telephone string `json:"telephone,omitempty"`
}

type PurchaseTicketsRequest struct {
	EventID       uint             `json:"event_id"`
	Quantity      int              `json:"quantity"`
	UserInfo      PurchaseUserInfo `json:"user_info"`
	UserID        *uint            `json:"user_id,omitempty"`
	CreateAccount bool             `json:"create_account,omitempty"`
	Password      string           `json:"password,omitempty"`
}

func (req *PurchaseTicketsRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.EventID, validation.Required),
		validation.Field(&req.Quantity, validation.Required, validation.Min(1), validation.Max(20)),
	)
	if err != nil {
		return err
	}

	// A registered buyer needs no contact record; a guest does.
	if req.UserID != nil {
		return nil
	}

	if req.CreateAccount && req.Password == "" {
		return errPasswordRequired
	}

	if req.UserInfo.Email == "" || req.UserInfo.Nom == "" {
		return errUserInfoRequired
	}

	return validation.ValidateStruct(
		&req.UserInfo,
		validation.Field(&req.UserInfo.Email, validation.Required, is.Email),
		validation.Field(&req.UserInfo.Nom, validation.Required),
	)
}
