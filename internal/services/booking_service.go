package services

import (
	"context"
	"fmt"
	"strings"

	"travelcheckout/internal/checkout"
	"travelcheckout/internal/domain"
	"travelcheckout/internal/domain/models"
	"travelcheckout/internal/pricing"
	"travelcheckout/internal/repositories"
	"travelcheckout/internal/utils"
)

// BookingService creates durable bookings from checkout payloads. Totals are recomputed
// from current reference data; a payload whose total disagrees is rejected.
type BookingService struct {
	BookingRepo repositories.BookingRepository
	Bookables   BookableService
	RequestID   string
	// Lookup overrides Bookables, for tests.
	Lookup func(ctx context.Context, kind domain.SubjectKind, refs models.ExternalRefs) (models.Bookable, error)
}

func (s BookingService) lookup(ctx context.Context, kind domain.SubjectKind, refs models.ExternalRefs) (models.Bookable, error) {
	if s.Lookup != nil {
		return s.Lookup(ctx, kind, refs)
	}
	return s.Bookables.Get(ctx, kind, refs)
}

// Create validates p and stores it. DraftID is the idempotency key: resubmitting the same
// draft returns the booking created the first time.
func (s BookingService) Create(ctx context.Context, p models.BookingPayload) (int64, error) {
	strategy, err := checkout.StrategyFor(p.Kind)
	if err != nil {
		return 0, err
	}
	if p.Refs.Empty(p.Kind) {
		return 0, domain.ValidationError{Field: "refs", Msg: "missing booking subject"}
	}
	email := utils.NormalizeEmail(p.Email)
	if !utils.LooksLikeEmail(email) {
		return 0, domain.ValidationError{Field: "email", Msg: "email is not valid"}
	}

	ref, err := s.lookup(ctx, p.Kind, p.Refs)
	if err != nil {
		return 0, err
	}
	ref.Kind, ref.Refs = p.Kind, p.Refs

	party := models.Party{}
	for cat, n := range p.Party {
		if n > 0 {
			party[strings.ToLower(strings.TrimSpace(cat))] = n
		}
	}
	if err := strategy.ValidateDetails(ref, p.Schedule, party); err != nil {
		return 0, err
	}
	total := pricing.Total(strategy.Lines(ref, p.Schedule, party), strategy.DiscountPct(ref))
	if total <= 0 {
		return 0, domain.ValidationError{Field: "total", Msg: "nothing to pay"}
	}
	if total != p.Total {
		return 0, domain.ValidationError{Field: "total", Msg: fmt.Sprintf("total %d does not match current price %d", p.Total, total)}
	}

	id, created, err := s.BookingRepo.Create(ctx, models.BookingRecord{
		IdempotencyKey: strings.TrimSpace(p.DraftID),
		Kind:           p.Kind,
		Refs:           p.Refs,
		Schedule:       p.Schedule,
		Party:          party,
		Total:          total,
		Email:          email,
		PaymentStatus:  domain.PaymentStatusUnpaid,
	})
	if err != nil {
		return 0, err
	}
	utils.LogEvent(s.RequestID, "booking", "create", fmt.Sprintf("booking_id=%d created=%v total=%d", id, created, total))
	return id, nil
}

// MarkPayAtDeparture records that a booking will be paid in cash. Only the traveler who
// booked (matched by email) may do it, and only while nothing else was chosen: an issued
// gateway session or a settled payment is a conflict. Repeating the call is a no-op.
func (s BookingService) MarkPayAtDeparture(ctx context.Context, id int64, ownerEmail string) error {
	b, err := s.BookingRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !ownedBy(b.Email, ownerEmail) {
		return domain.NotFoundError{Resource: "booking"}
	}
	if b.Kind != domain.SubjectTour {
		return domain.ValidationError{Field: "payment_method", Msg: "cash is only available for tours"}
	}
	switch b.PaymentStatus {
	case domain.PaymentStatusPayAtDeparture:
		return nil
	case domain.PaymentStatusUnpaid:
	default:
		return domain.ConflictError{Resource: "booking", Msg: "payment already " + b.PaymentStatus}
	}
	ok, err := s.BookingRepo.SwapPaymentStatus(ctx, id, domain.PaymentStatusUnpaid, domain.PaymentStatusPayAtDeparture, string(domain.PaymentCash))
	if err != nil {
		return err
	}
	if !ok {
		return domain.ConflictError{Resource: "booking", Msg: "payment status changed meanwhile"}
	}
	utils.LogEvent(s.RequestID, "booking", "pay_at_departure", fmt.Sprintf("booking_id=%d", id))
	return nil
}

// ownedBy is false for an empty email; bookings always carry one.
func ownedBy(bookingEmail, email string) bool {
	email = utils.NormalizeEmail(email)
	return email != "" && utils.NormalizeEmail(bookingEmail) == email
}
