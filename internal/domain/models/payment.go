package models

import "travelcheckout/internal/domain"

// PaymentRequest asks the gateway bridge for a hosted payment URL.
type PaymentRequest struct {
	Amount      int64              `json:"amount"`
	BookingID   string             `json:"booking_id"`
	BookingType domain.BookingType `json:"booking_type"`
	BankHint    string             `json:"bank_hint,omitempty"`
}

// PaymentLink is the answer of the gateway bridge.
type PaymentLink struct {
	URL string `json:"url"`
}

// PaymentRecord mirrors a row of the payments table.
type PaymentRecord struct {
	ID          int64  `json:"id"`
	BookingID   int64  `json:"booking_id"`
	Amount      int64  `json:"amount"`
	BookingType string `json:"booking_type"`
	BankHint    string `json:"bank_hint"`
	URL         string `json:"url"`
	Status      string `json:"status"`
}
