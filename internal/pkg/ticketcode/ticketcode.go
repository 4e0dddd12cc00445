// Package ticketcode generates ticket numbers, opaque scan codes and the
// QR payloads that carry them.
package ticketcode

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

// Payload is the structured document embedded in a ticket's QR code.
// Scanners may also submit the bare ticket number instead.
type Payload struct {
	NumeroTicket string `json:"numeroTicket"`
	ScanCode     string `json:"scanCode,omitempty"`
	EventID      uint   `json:"eventId,omitempty"`
}

// NewNumero produces a human-readable ticket number, TKT-<year>-<6 digits>.
// Uniqueness is enforced by the database; callers retry on collision.
func NewNumero(now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("rand.Int -> %w", err)
	}

	return fmt.Sprintf("TKT-%d-%06d", now.Year(), n.Int64()), nil
}

// NewScanCode returns the opaque token embedded in the QR payload.
func NewScanCode() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

func EncodePayload(p Payload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("json.Marshal -> %w", err)
	}

	return string(raw), nil
}

// DecodePayload accepts either the structured QR document or a bare
// ticket-number string and normalizes both into a Payload.
func DecodePayload(data string) Payload {
	data = strings.TrimSpace(data)

	if strings.HasPrefix(data, "{") {
		var p Payload
		if err := json.Unmarshal([]byte(data), &p); err == nil && p.NumeroTicket != "" {
			return p
		}
	}

	return Payload{NumeroTicket: data}
}

// QRPNG renders the payload as a PNG image.
func QRPNG(payload string, size int) ([]byte, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("qrcode.Encode -> %w", err)
	}

	return png, nil
}
