package domain

import "strings"

// ID is used across persisted entities.
type ID int64

// Status represents a lightweight state value.
type Status string

// SubjectKind selects which reference set and pricing shape apply to a checkout.
type SubjectKind string

const (
	SubjectRoom SubjectKind = "ROOM"
	SubjectTour SubjectKind = "TOUR"
)

func ParseSubjectKind(s string) (SubjectKind, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ROOM", "HOTEL":
		return SubjectRoom, true
	case "TOUR":
		return SubjectTour, true
	default:
		return "", false
	}
}

// BookingType is the tag the payment gateway expects.
type BookingType string

const (
	BookingTypeHotel BookingType = "HOTEL"
	BookingTypeTour  BookingType = "TOUR"
)

func (k SubjectKind) BookingType() BookingType {
	if k == SubjectTour {
		return BookingTypeTour
	}
	return BookingTypeHotel
}

// PaymentMethod is chosen on the last checkout step.
type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "CASH"
	PaymentGateway PaymentMethod = "GATEWAY"
)

func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CASH":
		return PaymentCash, true
	case "GATEWAY", "ONLINE", "CARD":
		return PaymentGateway, true
	default:
		return "", false
	}
}

// DraftStatus tracks a checkout attempt. There is no failed state: a failure leaves the
// status where the failing step found it.
type DraftStatus string

const (
	StatusDraft                DraftStatus = "DRAFT"
	StatusIdentityPending      DraftStatus = "IDENTITY_PENDING"
	StatusIdentityResolved     DraftStatus = "IDENTITY_RESOLVED"
	StatusReadyToPay           DraftStatus = "READY_TO_PAY"
	StatusBookedPendingPayment DraftStatus = "BOOKED_PENDING_PAYMENT"
	StatusRedirected           DraftStatus = "REDIRECTED"
)

// Payment status values stored on booking rows.
const (
	PaymentStatusUnpaid         = "unpaid"
	PaymentStatusPayAtDeparture = "pay_at_departure"
	PaymentStatusPending        = "pending"
)

// RequestContext carries authenticated user info when available.
type RequestContext struct {
	UserID ID     `json:"userId"`
	Role   string `json:"role"`
}
