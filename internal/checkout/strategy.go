package checkout

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"travelcheckout/internal/domain"
	"travelcheckout/internal/domain/models"
	"travelcheckout/internal/pricing"
	"travelcheckout/internal/utils"
)

// Strategy supplies what differs between room and tour checkouts: price-line
// construction, step-1 validation, identity requirements and the payment call shape.
type Strategy interface {
	Kind() domain.SubjectKind
	Lines(ref models.Bookable, sched models.Schedule, party models.Party) []pricing.Line
	DiscountPct(ref models.Bookable) float64
	ValidateDetails(ref models.Bookable, sched models.Schedule, party models.Party) error
	RequiredIdentity() []IdentityField
	AllowsCash() bool
	// Location is the client location of a draft at step, as it would appear in the
	// address bar. It is what a resume ticket stores.
	Location(d Draft, step Step) string
}

// StrategyFor returns the strategy of kind.
func StrategyFor(kind domain.SubjectKind) (Strategy, error) {
	switch kind {
	case domain.SubjectRoom:
		return RoomStrategy{}, nil
	case domain.SubjectTour:
		return TourStrategy{}, nil
	}
	return nil, domain.ValidationError{Field: "subject_kind", Msg: fmt.Sprintf("unknown subject kind %q", kind)}
}

// Categories used in party maps and unit prices.
const (
	CategoryNight  = "night"
	CategoryGuests = "guests"
	CategoryAdult  = "adult"
	CategoryChild  = "child"
)

// RoomStrategy: one line per stay, priced per night. Guests only count against capacity.
type RoomStrategy struct{}

func (RoomStrategy) Kind() domain.SubjectKind { return domain.SubjectRoom }

func (RoomStrategy) Lines(ref models.Bookable, sched models.Schedule, _ models.Party) []pricing.Line {
	night, _ := ref.Price(CategoryNight)
	label := night.Label
	if label == "" {
		label = strings.TrimSpace(ref.Meta.Name + " per night")
	}
	return []pricing.Line{{Label: label, UnitPrice: night.Amount, Quantity: sched.Nights}}
}

func (RoomStrategy) DiscountPct(models.Bookable) float64 { return 0 }

func (RoomStrategy) ValidateDetails(ref models.Bookable, sched models.Schedule, party models.Party) error {
	if ref.Refs.Empty(domain.SubjectRoom) {
		return domain.ValidationError{Field: "refs", Msg: "hotel and room are required"}
	}
	if err := validateDate(sched.Date); err != nil {
		return err
	}
	if sched.Nights < 1 {
		return domain.ValidationError{Field: "nights", Msg: "at least one night is required"}
	}
	guests := party[CategoryGuests]
	if guests < 1 {
		return domain.ValidationError{Field: "guests", Msg: "at least one guest is required"}
	}
	if ref.Capacity > 0 && guests > ref.Capacity {
		return domain.ValidationError{Field: "guests", Msg: fmt.Sprintf("room holds at most %d guests", ref.Capacity)}
	}
	if _, ok := ref.Price(CategoryNight); !ok {
		return domain.ValidationError{Field: "price", Msg: "room has no nightly price"}
	}
	return nil
}

func (RoomStrategy) RequiredIdentity() []IdentityField {
	return []IdentityField{FieldName, FieldSurname, FieldEmail}
}

func (RoomStrategy) AllowsCash() bool { return false }

// Location keeps the whole draft seed in the query so a resumed room checkout is rebuilt
// as it was.
func (RoomStrategy) Location(d Draft, step Step) string {
	q := url.Values{}
	q.Set("hotelId", d.Refs().HotelID)
	q.Set("roomId", d.Refs().RoomID)
	if s := d.Schedule(); s.Date != "" {
		q.Set("date", s.Date)
	}
	if s := d.Schedule(); s.Nights > 0 {
		q.Set("nights", strconv.Itoa(s.Nights))
	}
	if g := d.Party()[CategoryGuests]; g > 0 {
		q.Set("guests", strconv.Itoa(g))
	}
	if step > StepDetails {
		q.Set("step", strconv.Itoa(int(step)))
	}
	return RoomPath + "?" + q.Encode()
}

// TourStrategy: one line per ticket category, discount from reference data.
type TourStrategy struct{}

func (TourStrategy) Kind() domain.SubjectKind { return domain.SubjectTour }

func (TourStrategy) Lines(ref models.Bookable, _ models.Schedule, party models.Party) []pricing.Line {
	lines := make([]pricing.Line, 0, len(ref.UnitPrices))
	for _, p := range ref.UnitPrices {
		qty := party[p.Category]
		if qty <= 0 {
			continue
		}
		label := p.Label
		if label == "" {
			label = p.Category
		}
		lines = append(lines, pricing.Line{Label: label, UnitPrice: p.Amount, Quantity: qty})
	}
	return lines
}

func (TourStrategy) DiscountPct(ref models.Bookable) float64 { return ref.DiscountPct }

func (TourStrategy) ValidateDetails(ref models.Bookable, sched models.Schedule, party models.Party) error {
	if ref.Refs.Empty(domain.SubjectTour) {
		return domain.ValidationError{Field: "refs", Msg: "tour is required"}
	}
	if err := validateDate(sched.Date); err != nil {
		return err
	}
	if sched.Time != "" && !utils.ValidTimeHM(sched.Time) {
		return domain.ValidationError{Field: "time", Msg: "time must be HH:MM"}
	}
	unknown := []string{}
	for cat, n := range party {
		if n < 0 {
			return domain.ValidationError{Field: cat, Msg: "count cannot be negative"}
		}
		if _, ok := ref.Price(cat); !ok && n > 0 {
			unknown = append(unknown, cat)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return domain.ValidationError{Field: "tickets", Msg: "unknown ticket category " + strings.Join(unknown, ", ")}
	}
	size := party.Size()
	if size < 1 {
		return domain.ValidationError{Field: "tickets", Msg: "select at least one ticket"}
	}
	if ref.Capacity > 0 && size > ref.Capacity {
		return domain.ValidationError{Field: "tickets", Msg: fmt.Sprintf("only %d places left", ref.Capacity)}
	}
	return nil
}

func (TourStrategy) RequiredIdentity() []IdentityField {
	return []IdentityField{FieldName, FieldPhone, FieldEmail}
}

func (TourStrategy) AllowsCash() bool { return true }

// Location of a tour checkout carries no draft state; a resumed tour checkout starts
// over at step 1.
func (TourStrategy) Location(d Draft, _ Step) string {
	return TourPath + url.PathEscape(d.Refs().TourID)
}

func validateDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return domain.ValidationError{Field: "date", Msg: "date is required"}
	}
	if _, err := utils.ParseDate(s); err != nil {
		return domain.ValidationError{Field: "date", Msg: "date must be YYYY-MM-DD", Err: err}
	}
	return nil
}
