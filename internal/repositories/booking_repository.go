package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	intconfig "travelcheckout/internal/config"
	intdb "travelcheckout/internal/db"
	"travelcheckout/internal/domain"
	"travelcheckout/internal/domain/models"
)

type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const bookingsTable = "bookings"

// Create inserts a booking. When the record carries an idempotency key and a booking
// with that key already exists, the existing id is returned and created is false.
func (r BookingRepository) Create(ctx context.Context, rec models.BookingRecord) (id int64, created bool, err error) {
	db := r.db()
	if db == nil {
		return 0, false, domain.InternalError{Msg: "database not connected"}
	}
	key := strings.TrimSpace(rec.IdempotencyKey)
	if key != "" {
		if id, ok, err := r.findByKey(ctx, db, key); err != nil || ok {
			return id, false, err
		}
	}

	party, err := json.Marshal(rec.Party)
	if err != nil {
		return 0, false, domain.ValidationError{Field: "party", Msg: "invalid party", Err: err}
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO `+bookingsTable+` (
			idempotency_key, booking_type, hotel_id, room_id, tour_id,
			trip_date, trip_time, nights, party_json, total, email,
			payment_method, payment_status, created_at, updated_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,NOW(),NOW())`,
		intdb.NullIfEmpty(key),
		string(rec.Kind.BookingType()),
		intdb.NullIfEmpty(rec.Refs.HotelID),
		intdb.NullIfEmpty(rec.Refs.RoomID),
		intdb.NullIfEmpty(rec.Refs.TourID),
		rec.Schedule.Date,
		intdb.NullIfEmpty(rec.Schedule.Time),
		rec.Schedule.Nights,
		string(party),
		rec.Total,
		rec.Email,
		rec.PaymentMethod,
		rec.PaymentStatus,
	)
	if err != nil {
		// a concurrent request with the same key won the insert
		if key != "" && intdb.IsDuplicateKey(err) {
			if id, ok, ferr := r.findByKey(ctx, db, key); ferr == nil && ok {
				return id, false, nil
			}
		}
		return 0, false, domain.InternalError{Msg: "insert booking", Err: err}
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, false, domain.InternalError{Msg: "booking id", Err: err}
	}
	return id, true, nil
}

func (r BookingRepository) findByKey(ctx context.Context, db *sql.DB, key string) (int64, bool, error) {
	var id int64
	err := db.QueryRowContext(ctx, `SELECT id FROM `+bookingsTable+` WHERE idempotency_key=? LIMIT 1`, key).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, domain.InternalError{Msg: "lookup idempotency key", Err: err}
	}
	return id, true, nil
}

func (r BookingRepository) GetByID(ctx context.Context, id int64) (models.BookingRecord, error) {
	if id <= 0 {
		return models.BookingRecord{}, domain.ValidationError{Field: "booking_id", Msg: "invalid id"}
	}
	db := r.db()
	if db == nil {
		return models.BookingRecord{}, domain.InternalError{Msg: "database not connected"}
	}

	var (
		b                     models.BookingRecord
		key, bookingType, raw string
	)
	err := db.QueryRowContext(ctx, `
		SELECT id,
		       COALESCE(idempotency_key,''),
		       COALESCE(booking_type,''),
		       COALESCE(hotel_id,''),
		       COALESCE(room_id,''),
		       COALESCE(tour_id,''),
		       COALESCE(trip_date,''),
		       COALESCE(trip_time,''),
		       COALESCE(nights,0),
		       COALESCE(party_json,''),
		       COALESCE(total,0),
		       COALESCE(email,''),
		       COALESCE(payment_method,''),
		       COALESCE(payment_status,''),
		       COALESCE(created_at,'')
		FROM `+bookingsTable+`
		WHERE id=? LIMIT 1`, id).Scan(
		&b.ID,
		&key,
		&bookingType,
		&b.Refs.HotelID,
		&b.Refs.RoomID,
		&b.Refs.TourID,
		&b.Schedule.Date,
		&b.Schedule.Time,
		&b.Schedule.Nights,
		&raw,
		&b.Total,
		&b.Email,
		&b.PaymentMethod,
		&b.PaymentStatus,
		&b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.BookingRecord{}, domain.NotFoundError{Resource: "booking", Err: err}
		}
		return models.BookingRecord{}, domain.InternalError{Msg: "query booking", Err: err}
	}
	b.IdempotencyKey = key
	b.Kind = domain.SubjectRoom
	if domain.BookingType(bookingType) == domain.BookingTypeTour {
		b.Kind = domain.SubjectTour
	}
	b.Party = models.Party{}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &b.Party); err != nil {
			return models.BookingRecord{}, domain.InternalError{Msg: fmt.Sprintf("booking %d party", id), Err: err}
		}
	}
	return b, nil
}

// UpdatePaymentStatus sets payment_status (and optionally payment_method) on bookings.
func (r BookingRepository) UpdatePaymentStatus(ctx context.Context, id int64, status, method string) error {
	if id <= 0 {
		return domain.ValidationError{Field: "booking_id", Msg: "invalid id"}
	}
	db := r.db()
	if db == nil {
		return domain.InternalError{Msg: "database not connected"}
	}

	sets := []string{"payment_status=?"}
	args := []any{strings.TrimSpace(status)}
	if method = strings.TrimSpace(method); method != "" {
		sets = append(sets, "payment_method=?")
		args = append(args, method)
	}
	if intdb.HasColumn(db, bookingsTable, "updated_at") {
		sets = append(sets, "updated_at=NOW()")
	}
	args = append(args, id)
	if _, err := db.ExecContext(ctx, `UPDATE `+bookingsTable+` SET `+strings.Join(sets, ",")+` WHERE id=?`, args...); err != nil {
		return domain.InternalError{Msg: "update payment status", Err: err}
	}
	return nil
}

// SwapPaymentStatus moves payment_status from `from` to `to` in one statement. It reports
// false when the row was not in `from` any more.
func (r BookingRepository) SwapPaymentStatus(ctx context.Context, id int64, from, to, method string) (bool, error) {
	if id <= 0 {
		return false, domain.ValidationError{Field: "booking_id", Msg: "invalid id"}
	}
	db := r.db()
	if db == nil {
		return false, domain.InternalError{Msg: "database not connected"}
	}
	res, err := db.ExecContext(ctx,
		`UPDATE `+bookingsTable+` SET payment_status=?, payment_method=? WHERE id=? AND payment_status=?`,
		strings.TrimSpace(to), strings.TrimSpace(method), id, strings.TrimSpace(from))
	if err != nil {
		return false, domain.InternalError{Msg: "swap payment status", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, domain.InternalError{Msg: "swap payment status", Err: err}
	}
	return n == 1, nil
}
