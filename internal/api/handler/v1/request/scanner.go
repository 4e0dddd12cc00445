package request

import "errors"

var errScanPayloadRequired = errors.New("either qr_data or ticket_code is required")

type ScanRequest struct {
	QRData     string `json:"qr_data,omitempty"`
	TicketCode string `json:"ticket_code,omitempty"`
	EventID    *uint  `json:"event_id,omitempty"`
	Location   string `json:"location,omitempty"`
}

func (req *ScanRequest) Validate() error {
	if req.QRData == "" && req.TicketCode == "" {
		return errScanPayloadRequired
	}

	return nil
}
