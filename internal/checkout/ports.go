// Package checkout is the booking wizard: a three-step state machine that collects the
// schedule and party, locks the traveler identity behind an authentication gate that can
// survive a full redirect, and hands the priced draft to the booking and payment
// collaborators.
package checkout

import (
	"context"

	"travelcheckout/internal/domain"
	"travelcheckout/internal/domain/models"
)

// ReferenceService resolves display metadata, unit prices, discount and capacity.
type ReferenceService interface {
	GetBookable(ctx context.Context, kind domain.SubjectKind, refs models.ExternalRefs) (models.Bookable, error)
}

// IdentityService reports the signed-in traveler; ok=false means nobody is signed in.
type IdentityService interface {
	CurrentIdentity(ctx context.Context) (id models.Identity, ok bool, err error)
}

// BookingService creates the durable booking record and returns its id.
type BookingService interface {
	CreateBooking(ctx context.Context, p models.BookingPayload) (string, error)
}

// PaymentGateway turns a durable booking into a hosted payment URL.
type PaymentGateway interface {
	RequestPaymentURL(ctx context.Context, req models.PaymentRequest) (string, error)
}

// AuthSurface shows the sign-in UI: an external redirect or an in-page modal.
type AuthSurface interface {
	Present(ctx context.Context, returnPath string) error
}

// Navigator moves the client to a location: an in-app path or an external URL.
type Navigator interface {
	Navigate(ctx context.Context, target string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, target string) error

func (f NavigatorFunc) Navigate(ctx context.Context, target string) error { return f(ctx, target) }

// AuthSurfaceFunc adapts a function to AuthSurface.
type AuthSurfaceFunc func(ctx context.Context, returnPath string) error

func (f AuthSurfaceFunc) Present(ctx context.Context, returnPath string) error {
	return f(ctx, returnPath)
}
