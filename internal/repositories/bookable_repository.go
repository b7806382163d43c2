package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	intconfig "travelcheckout/internal/config"
	intdb "travelcheckout/internal/db"
	"travelcheckout/internal/domain"
	"travelcheckout/internal/domain/models"
)

// BookableRepository reads reference data of rooms and tours.
type BookableRepository struct {
	DB *sql.DB
}

func (r BookableRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// GetRoom returns the room of a hotel with its nightly price.
func (r BookableRepository) GetRoom(ctx context.Context, hotelID, roomID string) (models.Bookable, error) {
	hotelID, roomID = strings.TrimSpace(hotelID), strings.TrimSpace(roomID)
	if hotelID == "" || roomID == "" {
		return models.Bookable{}, domain.ValidationError{Field: "refs", Msg: "hotel and room are required"}
	}
	db := r.db()
	if db == nil {
		return models.Bookable{}, domain.InternalError{Msg: "database not connected"}
	}

	var (
		roomName, hotelName, address, image string
		price                               int64
		capacity                            int
	)
	err := db.QueryRowContext(ctx, `
		SELECT COALESCE(r.name,''),
		       COALESCE(h.name,''),
		       COALESCE(h.address,''),
		       COALESCE(r.image,''),
		       COALESCE(r.price_per_night,0),
		       COALESCE(r.capacity,0)
		FROM rooms r
		JOIN hotels h ON h.id = r.hotel_id
		WHERE r.hotel_id=? AND r.id=? LIMIT 1`, hotelID, roomID).
		Scan(&roomName, &hotelName, &address, &image, &price, &capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Bookable{}, domain.NotFoundError{Resource: "room", Err: err}
		}
		return models.Bookable{}, domain.InternalError{Msg: "query room", Err: err}
	}

	name := strings.TrimSpace(hotelName + " - " + roomName)
	return models.Bookable{
		Kind: domain.SubjectRoom,
		Refs: models.ExternalRefs{HotelID: hotelID, RoomID: roomID},
		Meta: models.DisplayMeta{Name: strings.Trim(name, " -"), Address: address, Image: image},
		UnitPrices: []models.UnitPrice{
			{Category: "night", Label: strings.TrimSpace(roomName + " per night"), Amount: price},
		},
		Capacity: capacity,
	}, nil
}

// GetTour returns a tour with its ticket prices in display order. A tour without a
// tour_prices table simply has no categories.
func (r BookableRepository) GetTour(ctx context.Context, tourID string) (models.Bookable, error) {
	tourID = strings.TrimSpace(tourID)
	if tourID == "" {
		return models.Bookable{}, domain.ValidationError{Field: "refs", Msg: "tour is required"}
	}
	db := r.db()
	if db == nil {
		return models.Bookable{}, domain.InternalError{Msg: "database not connected"}
	}

	out := models.Bookable{Kind: domain.SubjectTour, Refs: models.ExternalRefs{TourID: tourID}}
	err := db.QueryRowContext(ctx, `
		SELECT COALESCE(name,''),
		       COALESCE(meeting_point,''),
		       COALESCE(image,''),
		       COALESCE(discount_pct,0),
		       COALESCE(capacity,0)
		FROM tours
		WHERE id=? LIMIT 1`, tourID).
		Scan(&out.Meta.Name, &out.Meta.Address, &out.Meta.Image, &out.DiscountPct, &out.Capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Bookable{}, domain.NotFoundError{Resource: "tour", Err: err}
		}
		return models.Bookable{}, domain.InternalError{Msg: "query tour", Err: err}
	}

	if !intdb.HasTable(db, "tour_prices") {
		return out, nil
	}
	rows, err := db.QueryContext(ctx, `
		SELECT LOWER(category), COALESCE(label,''), COALESCE(amount,0)
		FROM tour_prices
		WHERE tour_id=?
		ORDER BY sort_order, category`, tourID)
	if err != nil {
		return models.Bookable{}, domain.InternalError{Msg: "query tour prices", Err: err}
	}
	defer rows.Close()
	for rows.Next() {
		var p models.UnitPrice
		if err := rows.Scan(&p.Category, &p.Label, &p.Amount); err != nil {
			return models.Bookable{}, domain.InternalError{Msg: "scan tour price", Err: err}
		}
		out.UnitPrices = append(out.UnitPrices, p)
	}
	if err := rows.Err(); err != nil {
		return models.Bookable{}, domain.InternalError{Msg: fmt.Sprintf("tour prices %s", tourID), Err: err}
	}
	return out, nil
}
