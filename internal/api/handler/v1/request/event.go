package request

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	errEndBeforeStart  = errors.New("date_fin must be after date_debut")
	errNegativePrice   = errors.New("prix cannot be negative")
	errInvalidCapacity = errors.New("nb_places must be greater than zero")
)

type CreateEventRequest struct {
	Nom         string    `json:"nom"`
	Description string    `json:"description"`
	Lieu        string    `json:"lieu"`
	DateDebut   time.Time `json:"date_debut"`
	DateFin     time.Time `json:"date_fin"`
	NbPlaces    int       `json:"nb_places"`
	Prix        float64   `json:"prix"`
}

func (req *CreateEventRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Nom, validation.Required, validation.Length(2, 200)),
		validation.Field(&req.Lieu, validation.Required),
		validation.Field(&req.DateDebut, validation.Required),
		validation.Field(&req.DateFin, validation.Required),
	)
	if err != nil {
		return err
	}

	if !req.DateFin.After(req.DateDebut) {
		return errEndBeforeStart
	}
	if req.NbPlaces <= 0 {
		return errInvalidCapacity
	}
	if req.Prix < 0 {
		return errNegativePrice
	}

	return nil
}

type UpdateEventRequest struct {
	Nom         string    `json:"nom"`
	Description string    `json:"description"`
	Lieu        string    `json:"lieu"`
	DateDebut   time.Time `json:"date_debut"`
	DateFin     time.Time `json:"date_fin"`
	NbPlaces    int       `json:"nb_places"`
	Prix        float64   `json:"prix"`
}

func (req *UpdateEventRequest) Validate() error {
	return (&CreateEventRequest{
		Nom:       req.Nom,
		Lieu:      req.Lieu,
		DateDebut: req.DateDebut,
		DateFin:   req.DateFin,
		NbPlaces:  req.NbPlaces,
		Prix:      req.Prix,
	}).Validate()
}

type ChangeEventStatusRequest struct {
	Statut string `json:"statut"`
}

func (req *ChangeEventStatusRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Statut, validation.Required, validation.In("ACTIVE", "INACTIVE", "ANNULE")),
	)
}
