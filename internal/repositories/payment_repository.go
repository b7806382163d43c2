package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	intconfig "travelcheckout/internal/config"
	intdb "travelcheckout/internal/db"
	"travelcheckout/internal/domain"
	"travelcheckout/internal/domain/models"
)

// PaymentRepository records the hosted payment sessions handed out for bookings.
type PaymentRepository struct {
	DB *sql.DB
}

func (r PaymentRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r PaymentRepository) table() string {
	return "payments"
}

// CreatePending stores a PENDING payment row for p and returns its id.
func (r PaymentRepository) CreatePending(ctx context.Context, p models.PaymentRecord) (int64, error) {
	if p.BookingID <= 0 {
		return 0, domain.ValidationError{Field: "booking_id", Msg: "invalid id"}
	}
	db := r.db()
	table := r.table()
	if db == nil || !intdb.HasTable(db, table) {
		return 0, domain.InternalError{Msg: "payments table not found"}
	}

	cols := []string{"booking_id", "amount", "booking_type", "url", "status"}
	vals := []any{p.BookingID, p.Amount, p.BookingType, p.URL, domain.PaymentStatusPending}
	if intdb.HasColumn(db, table, "bank_hint") {
		cols = append(cols, "bank_hint")
		vals = append(vals, intdb.NullIfEmpty(p.BankHint))
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",")
	res, err := db.ExecContext(ctx, `INSERT INTO `+table+` (`+strings.Join(cols, ",")+`, created_at) VALUES (`+placeholders+`, NOW())`, vals...)
	if err != nil {
		return 0, domain.InternalError{Msg: "insert payment", Err: err}
	}
	return res.LastInsertId()
}

// LatestByBooking returns the newest payment row of a booking, if any.
func (r PaymentRepository) LatestByBooking(ctx context.Context, bookingID int64) (models.PaymentRecord, bool, error) {
	db := r.db()
	table := r.table()
	if db == nil || !intdb.HasTable(db, table) {
		return models.PaymentRecord{}, false, nil
	}
	var p models.PaymentRecord
	err := db.QueryRowContext(ctx, `
		SELECT id, booking_id, COALESCE(amount,0), COALESCE(booking_type,''), COALESCE(url,''), COALESCE(status,'')
		FROM `+table+`
		WHERE booking_id=?
		ORDER BY id DESC LIMIT 1`, bookingID).
		Scan(&p.ID, &p.BookingID, &p.Amount, &p.BookingType, &p.URL, &p.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PaymentRecord{}, false, nil
	}
	if err != nil {
		return models.PaymentRecord{}, false, domain.InternalError{Msg: "query payment", Err: err}
	}
	return p, true, nil
}
