package services

import (
	"context"
	"testing"

	"travelcheckout/internal/domain"
	"travelcheckout/internal/domain/models"
	"travelcheckout/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

func tourLookup(_ context.Context, kind domain.SubjectKind, refs models.ExternalRefs) (models.Bookable, error) {
	if kind != domain.SubjectTour || refs.TourID != "bromo" {
		return models.Bookable{}, domain.NotFoundError{Resource: "tour"}
	}
	return models.Bookable{
		Kind: kind,
		Refs: refs,
		UnitPrices: []models.UnitPrice{
			{Category: "adult", Amount: 100},
			{Category: "child", Amount: 50},
		},
		DiscountPct: 10,
		Capacity:    8,
	}, nil
}

func tourPayload(total int64) models.BookingPayload {
	return models.BookingPayload{
		Kind:     domain.SubjectTour,
		Refs:     models.ExternalRefs{TourID: "bromo"},
		Schedule: models.Schedule{Date: "2026-11-02"},
		Party:    models.Party{"adult": 2, "child": 1},
		Total:    total,
		Email:    " Sari@Example.com ",
		DraftID:  "draft-1",
	}
}

func TestBookingServiceCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id FROM bookings WHERE idempotency_key").WithArgs("draft-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(77, 1))

	svc := BookingService{BookingRepo: repositories.BookingRepository{DB: db}, Lookup: tourLookup}
	id, err := svc.Create(context.Background(), tourPayload(225))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if id != 77 {
		t.Fatalf("expected id 77, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookingServiceRejectsStaleTotal(t *testing.T) {
	svc := BookingService{Lookup: tourLookup}
	_, err := svc.Create(context.Background(), tourPayload(250))
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error for a total without discount, got %v", err)
	}
}

func TestBookingServiceValidation(t *testing.T) {
	svc := BookingService{Lookup: tourLookup}

	p := tourPayload(225)
	p.Email = "nope"
	if _, err := svc.Create(context.Background(), p); !domain.IsValidation(err) {
		t.Fatalf("expected email validation error, got %v", err)
	}

	p = tourPayload(225)
	p.Party = models.Party{"adult": 9}
	if _, err := svc.Create(context.Background(), p); !domain.IsValidation(err) {
		t.Fatalf("expected capacity validation error, got %v", err)
	}

	p = tourPayload(225)
	p.Refs = models.ExternalRefs{TourID: "other"}
	if _, err := svc.Create(context.Background(), p); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func bookingRow(mock sqlmock.Sqlmock, id int64, kind, email, status string) {
	cols := []string{"id", "key", "type", "hotel", "room", "tour", "date", "time", "nights", "party", "total", "email", "method", "status", "created"}
	mock.ExpectQuery("FROM bookings").WithArgs(id).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(id, "draft-1", kind, "", "", "bromo", "2026-11-02", "03:30", 0, `{"adult":2}`, 180, email, "", status, "2026-10-17 10:00:00"))
}

func TestMarkPayAtDeparture(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	bookingRow(mock, 41, "TOUR", "sari@example.com", domain.PaymentStatusUnpaid)
	mock.ExpectExec("UPDATE bookings SET payment_status=\\?, payment_method=\\? WHERE id=\\? AND payment_status=\\?").
		WithArgs(domain.PaymentStatusPayAtDeparture, "CASH", int64(41), domain.PaymentStatusUnpaid).
		WillReturnResult(sqlmock.NewResult(0, 1))

	svc := BookingService{BookingRepo: repositories.BookingRepository{DB: db}}
	if err := svc.MarkPayAtDeparture(context.Background(), 41, " Sari@Example.com"); err != nil {
		t.Fatalf("MarkPayAtDeparture error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMarkPayAtDepartureRejects(t *testing.T) {
	cases := []struct {
		name   string
		status string
		caller string
		check  func(error) bool
	}{
		{"gateway session issued", domain.PaymentStatusPending, "sari@example.com", domain.IsConflict},
		{"already paid", "paid", "sari@example.com", domain.IsConflict},
		{"another traveler", domain.PaymentStatusUnpaid, "budi@example.com", domain.IsNotFound},
		{"no caller email", domain.PaymentStatusUnpaid, "", domain.IsNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock init error: %v", err)
			}
			defer db.Close()
			bookingRow(mock, 41, "TOUR", "sari@example.com", tc.status)

			svc := BookingService{BookingRepo: repositories.BookingRepository{DB: db}}
			err = svc.MarkPayAtDeparture(context.Background(), 41, tc.caller)
			if !tc.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
			// no UPDATE may run
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestMarkPayAtDepartureLosesRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	bookingRow(mock, 41, "TOUR", "sari@example.com", domain.PaymentStatusUnpaid)
	mock.ExpectExec("UPDATE bookings SET payment_status").WillReturnResult(sqlmock.NewResult(0, 0))

	svc := BookingService{BookingRepo: repositories.BookingRepository{DB: db}}
	if err := svc.MarkPayAtDeparture(context.Background(), 41, "sari@example.com"); !domain.IsConflict(err) {
		t.Fatalf("expected conflict when the status moved first, got %v", err)
	}
}
