package services

import (
	"context"
	"net/url"
	"testing"
	"time"

	"travelcheckout/internal/domain"
	"travelcheckout/internal/domain/models"
	"travelcheckout/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

var bookingCols = []string{"id", "key", "type", "hotel", "room", "tour", "date", "time", "nights", "party", "total", "email", "method", "status", "created"}

func expectBooking(mock sqlmock.Sqlmock, id int64, total int64, status string) {
	mock.ExpectQuery("FROM bookings").WithArgs(id).
		WillReturnRows(sqlmock.NewRows(bookingCols).
			AddRow(id, "draft-1", "TOUR", "", "", "bromo", "2026-11-02", "", 0, `{"adult":2}`, total, "sari@example.com", "", status, ""))
}

func newPaymentService(t *testing.T) (PaymentService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return PaymentService{
		PaymentRepo: repositories.PaymentRepository{DB: db},
		BookingRepo: repositories.BookingRepository{DB: db},
		GatewayURL:  "https://pay.example/checkout",
		SigningKey:  []byte("test-key"),
		Now:         func() time.Time { return time.Unix(1790000000, 0) },
	}, mock
}

func TestPaymentServiceRequestURL(t *testing.T) {
	svc, mock := newPaymentService(t)
	mock.MatchExpectationsInOrder(false)

	expectBooking(mock, 5, 200, "unpaid")
	mock.ExpectQuery("information_schema\\.tables").WithArgs("payments").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("payments"))
	mock.ExpectQuery("FROM payments").WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "amount", "booking_type", "url", "status"}))
	mock.ExpectQuery("information_schema\\.tables").WithArgs("payments").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("payments"))
	mock.ExpectQuery("information_schema\\.columns").WithArgs("payments", "bank_hint").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("bank_hint"))
	mock.ExpectExec("INSERT INTO payments").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("information_schema\\.columns").WithArgs("bookings", "updated_at").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}))
	mock.ExpectExec("UPDATE bookings SET payment_status").WillReturnResult(sqlmock.NewResult(0, 1))

	link, err := svc.RequestPaymentURL(context.Background(), models.PaymentRequest{
		Amount:      200,
		BookingID:   "5",
		BookingType: domain.BookingTypeTour,
		BankHint:    "BCA",
	})
	if err != nil {
		t.Fatalf("RequestPaymentURL error: %v", err)
	}
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("invalid url %q: %v", link, err)
	}
	q := u.Query()
	if u.Host != "pay.example" || q.Get("booking_id") != "5" || q.Get("amount") != "200" || q.Get("bank") != "BCA" {
		t.Fatalf("unexpected url %s", link)
	}
	if !svc.VerifySignature(q) {
		t.Fatalf("signature does not verify")
	}
	q.Set("amount", "1")
	if svc.VerifySignature(q) {
		t.Fatalf("tampered amount must not verify")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPaymentServiceReusesPendingSession(t *testing.T) {
	svc, mock := newPaymentService(t)
	expectBooking(mock, 5, 200, "pending")
	mock.ExpectQuery("information_schema\\.tables").WithArgs("payments").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("payments"))
	mock.ExpectQuery("FROM payments").WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "amount", "booking_type", "url", "status"}).
			AddRow(4, 5, 200, "TOUR", "https://pay.example/checkout?old=1", "pending"))

	link, err := svc.RequestPaymentURL(context.Background(), models.PaymentRequest{Amount: 200, BookingID: "5", BookingType: domain.BookingTypeTour})
	if err != nil {
		t.Fatalf("RequestPaymentURL error: %v", err)
	}
	if link != "https://pay.example/checkout?old=1" {
		t.Fatalf("expected the pending session, got %s", link)
	}
}

func TestPaymentServiceRejectsMismatch(t *testing.T) {
	svc, mock := newPaymentService(t)
	expectBooking(mock, 5, 200, "unpaid")
	_, err := svc.RequestPaymentURL(context.Background(), models.PaymentRequest{Amount: 150, BookingID: "5", BookingType: domain.BookingTypeTour})
	if !domain.IsValidation(err) {
		t.Fatalf("expected amount validation error, got %v", err)
	}

	expectBooking(mock, 5, 200, "unpaid")
	_, err = svc.RequestPaymentURL(context.Background(), models.PaymentRequest{Amount: 200, BookingID: "5", BookingType: domain.BookingTypeHotel})
	if !domain.IsValidation(err) {
		t.Fatalf("expected booking type validation error, got %v", err)
	}

	if _, err := svc.RequestPaymentURL(context.Background(), models.PaymentRequest{Amount: 200, BookingID: "abc"}); !domain.IsValidation(err) {
		t.Fatalf("expected booking id validation error, got %v", err)
	}
}
