package checkout

import (
	"context"
	"errors"
	"strings"

	"travelcheckout/internal/domain"
	"travelcheckout/internal/domain/models"
	"travelcheckout/internal/utils"
)

// PaymentBridge talks to the two payment collaborators, strictly in order: create the
// booking, then request the hosted payment URL for it.
type PaymentBridge struct {
	Bookings  BookingService
	Gateway   PaymentGateway
	Navigator Navigator
}

// CreateBooking submits the draft. Any failure, including an empty id, is a
// BookingCreationFailed: nothing durable exists.
func (b *PaymentBridge) CreateBooking(ctx context.Context, d Draft) (string, error) {
	id, err := b.Bookings.CreateBooking(ctx, d.Payload())
	if err != nil {
		utils.LogError(d.ID(), "checkout", "create_booking", err)
		return "", domain.BookingCreationFailed{Err: err}
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", domain.BookingCreationFailed{Err: errors.New("no booking id returned")}
	}
	utils.LogEvent(d.ID(), "checkout", "create_booking", "booking_id="+id)
	return id, nil
}

// RequestPaymentURL asks for the hosted URL of an already durable booking.
func (b *PaymentBridge) RequestPaymentURL(ctx context.Context, d Draft) (string, error) {
	req := models.PaymentRequest{
		Amount:      d.Total(),
		BookingID:   d.BookingID(),
		BookingType: d.Kind().BookingType(),
		BankHint:    d.BankHint(),
	}
	u, err := b.Gateway.RequestPaymentURL(ctx, req)
	if err != nil {
		utils.LogError(d.ID(), "checkout", "payment_url", err)
		return "", domain.PaymentLinkUnavailable{BookingID: d.BookingID(), Err: err}
	}
	u = strings.TrimSpace(u)
	if u == "" {
		return "", domain.PaymentLinkUnavailable{BookingID: d.BookingID(), Err: errors.New("no payment url returned")}
	}
	return u, nil
}

// Redirect performs the final full navigation to the gateway.
func (b *PaymentBridge) Redirect(ctx context.Context, url string) error {
	return b.Navigator.Navigate(ctx, url)
}
