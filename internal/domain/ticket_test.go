package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHolder_ExactlyOneSide(t *testing.T) {
	user := UserHolder(42)
	require.NoError(t, user.Validate())
	id, ok := user.UserID()
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)
	assert.False(t, user.IsGuest())

	guest, err := GuestHolder(GuestContact{Nom: "Martin", Prenom: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	require.NoError(t, guest.Validate())
	assert.True(t, guest.IsGuest())
	_, ok = guest.UserID()
	assert.False(t, ok)

	var zero Holder
	assert.ErrorIs(t, zero.Validate(), ErrHolderEmpty)
}

func TestGuestHolder_RequiresNameAndEmail(t *testing.T) {
	_, err := GuestHolder(GuestContact{Nom: "Martin"})
	assert.ErrorIs(t, err, ErrGuestIncomplete)

	_, err = GuestHolder(GuestContact{Email: "alice@example.com"})
	assert.ErrorIs(t, err, ErrGuestIncomplete)
}

func TestHolder_MarshalJSON(t *testing.T) {
	raw, err := json.Marshal(UserHolder(7))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"user","user_id":7}`, string(raw))

	guest, err := GuestHolder(GuestContact{Nom: "Martin", Email: "alice@example.com"})
	require.NoError(t, err)
	raw, err = json.Marshal(guest)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"guest","guest":{"nom":"Martin","prenom":"","email":"alice@example.com"}}`, string(raw))
}

func TestGuestContact_DisplayName(t *testing.T) {
	assert.Equal(t, "Alice Martin", GuestContact{Nom: "Martin", Prenom: "Alice"}.DisplayName())
	assert.Equal(t, "Martin", GuestContact{Nom: "Martin"}.DisplayName())
}

func TestEvent_SoldCount(t *testing.T) {
	e := Event{NbPlaces: 100, PlacesRestantes: 37}
	assert.Equal(t, 63, e.SoldCount())
}
