package models

import "travelcheckout/internal/domain"

// ExternalRefs identifies the subject being booked: {HotelID, RoomID} or {TourID}.
type ExternalRefs struct {
	HotelID string `json:"hotel_id,omitempty"`
	RoomID  string `json:"room_id,omitempty"`
	TourID  string `json:"tour_id,omitempty"`
}

// Empty reports whether the refs required by kind are missing.
func (r ExternalRefs) Empty(kind domain.SubjectKind) bool {
	if kind == domain.SubjectTour {
		return r.TourID == ""
	}
	return r.HotelID == "" || r.RoomID == ""
}

// DisplayMeta is resolved from reference data and only shown, never priced.
type DisplayMeta struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Image   string `json:"image,omitempty"`
}

// UnitPrice is the price of one unit of a category (adult, child, night...).
type UnitPrice struct {
	Category string `json:"category"`
	Label    string `json:"label"`
	Amount   int64  `json:"amount"`
}

// Bookable is the reference data of a room or a tour.
type Bookable struct {
	Kind        domain.SubjectKind `json:"kind"`
	Refs        ExternalRefs       `json:"refs"`
	Meta        DisplayMeta        `json:"meta"`
	UnitPrices  []UnitPrice        `json:"unit_prices"`
	DiscountPct float64            `json:"discount_pct"`
	Capacity    int                `json:"capacity"`
}

// Price returns the unit price of category, if listed.
func (b Bookable) Price(category string) (UnitPrice, bool) {
	for _, p := range b.UnitPrices {
		if p.Category == category {
			return p, true
		}
	}
	return UnitPrice{}, false
}
