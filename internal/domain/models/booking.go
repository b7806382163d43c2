package models

import "travelcheckout/internal/domain"

// Schedule is the date (+ optional time for tours) and, for rooms, the night count.
type Schedule struct {
	Date   string `json:"date"`
	Time   string `json:"time,omitempty"`
	Nights int    `json:"nights,omitempty"`
}

// Party counts occupants per category ("adult", "child", or "guests" for rooms).
type Party map[string]int

// Size is the total head count.
func (p Party) Size() int {
	n := 0
	for _, c := range p {
		if c > 0 {
			n += c
		}
	}
	return n
}

func (p Party) Clone() Party {
	out := make(Party, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// BookingPayload is what the checkout submits to the booking-creation service.
type BookingPayload struct {
	Kind     domain.SubjectKind `json:"kind"`
	Refs     ExternalRefs       `json:"refs"`
	Schedule Schedule           `json:"schedule"`
	Party    Party              `json:"party"`
	Total    int64              `json:"total"`
	Email    string             `json:"email"`
	// DraftID doubles as the idempotency key of the create call.
	DraftID string `json:"draft_id,omitempty"`
}

// BookingRecord is the durable booking row.
type BookingRecord struct {
	ID             int64
	IdempotencyKey string
	Kind           domain.SubjectKind
	Refs           ExternalRefs
	Schedule       Schedule
	Party          Party
	Total          int64
	Email          string
	PaymentMethod  string
	PaymentStatus  string
	CreatedAt      string
}
