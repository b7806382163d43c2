package checkout

import (
	"errors"
	"fmt"
	"strings"

	"travelcheckout/internal/domain"
	"travelcheckout/internal/domain/models"
	"travelcheckout/internal/pricing"
)

var (
	ErrFieldLocked = errors.New("checkout: identity field is locked")
	ErrDraftBooked = errors.New("checkout: booking already created for this draft")
)

// Draft is one checkout attempt. Fields are reachable only through methods: refs never
// change after NewDraft, price lines and total are derived on every read, and locked
// identity fields reject writes.
type Draft struct {
	id        string
	kind      domain.SubjectKind
	strategy  Strategy
	ref       models.Bookable
	schedule  models.Schedule
	party     models.Party
	identity  TravelerIdentity
	method    domain.PaymentMethod
	bankHint  string
	status    domain.DraftStatus
	bookingID string
}

// NewDraft starts a draft for the reference data of a room or tour.
func NewDraft(id string, ref models.Bookable) (Draft, error) {
	strategy, err := StrategyFor(ref.Kind)
	if err != nil {
		return Draft{}, err
	}
	if ref.Refs.Empty(ref.Kind) {
		return Draft{}, domain.ValidationError{Field: "refs", Msg: "missing external references"}
	}
	return Draft{
		id:       id,
		kind:     ref.Kind,
		strategy: strategy,
		ref:      ref,
		party:    models.Party{},
		status:   domain.StatusDraft,
	}, nil
}

func (d Draft) ID() string { return d.id }
func (d Draft) Kind() domain.SubjectKind { return d.kind }
func (d Draft) Strategy() Strategy { return d.strategy }
func (d Draft) Refs() models.ExternalRefs { return d.ref.Refs }
func (d Draft) Meta() models.DisplayMeta { return d.ref.Meta }
func (d Draft) Reference() models.Bookable { return d.ref }
func (d Draft) Schedule() models.Schedule { return d.schedule }
func (d Draft) Party() models.Party { return d.party.Clone() }
func (d Draft) Identity() TravelerIdentity { return d.identity }
func (d Draft) PaymentMethod() domain.PaymentMethod { return d.method }
func (d Draft) BankHint() string { return d.bankHint }
func (d Draft) Status() domain.DraftStatus { return d.status }
func (d Draft) BookingID() string { return d.bookingID }

// PriceLines are derived from party and schedule × reference prices.
func (d Draft) PriceLines() []pricing.Line {
	if d.strategy == nil {
		return nil
	}
	return d.strategy.Lines(d.ref, d.schedule, d.party)
}

func (d Draft) DiscountPct() float64 {
	if d.strategy == nil {
		return 0
	}
	return d.strategy.DiscountPct(d.ref)
}

// Total is derived; to change it change the party or schedule.
func (d Draft) Total() int64 {
	return pricing.Total(d.PriceLines(), d.DiscountPct())
}

func (d Draft) Breakdown() pricing.Breakdown {
	return pricing.Compute(d.PriceLines(), d.DiscountPct())
}

// Payload is what the booking service receives for this draft.
func (d Draft) Payload() models.BookingPayload {
	return models.BookingPayload{
		Kind:     d.kind,
		Refs:     d.ref.Refs,
		Schedule: d.schedule,
		Party:    d.party.Clone(),
		Total:    d.Total(),
		Email:    strings.TrimSpace(d.identity.Email.Value),
		DraftID:  d.id,
	}
}

func (d Draft) clone() Draft {
	out := d
	out.party = d.party.Clone()
	return out
}

// The mutators below return a modified copy and leave d untouched.

func (d Draft) withReference(ref models.Bookable) (Draft, error) {
	if d.bookingID != "" {
		return d, ErrDraftBooked
	}
	if ref.Kind != d.kind || ref.Refs != d.ref.Refs {
		return d, domain.ValidationError{Field: "refs", Msg: "reference data belongs to another subject"}
	}
	out := d.clone()
	out.ref = ref
	return out, nil
}

func (d Draft) withSchedule(s models.Schedule) (Draft, error) {
	if d.bookingID != "" {
		return d, ErrDraftBooked
	}
	s.Date = strings.TrimSpace(s.Date)
	s.Time = strings.TrimSpace(s.Time)
	if s.Nights < 0 {
		s.Nights = 0
	}
	out := d.clone()
	out.schedule = s
	return out, nil
}

func (d Draft) withPartyCount(category string, n int) (Draft, error) {
	if d.bookingID != "" {
		return d, ErrDraftBooked
	}
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return d, domain.ValidationError{Field: "party", Msg: "category is required"}
	}
	out := d.clone()
	if n <= 0 {
		delete(out.party, category)
	} else {
		out.party[category] = n
	}
	return out, nil
}

func (d Draft) withIdentityField(f IdentityField, value string) (Draft, error) {
	cur := d.identity.Get(f)
	if cur.Locked {
		return d, fmt.Errorf("%w: %s", ErrFieldLocked, f)
	}
	out := d.clone()
	out.identity.put(f, Field{Value: strings.TrimSpace(value)})
	return out, nil
}

func (d Draft) withLockedIdentity(id models.Identity) Draft {
	out := d.clone()
	out.identity.lockFrom(id)
	return out
}

func (d Draft) withPayment(m domain.PaymentMethod, bank string) (Draft, error) {
	if m == domain.PaymentCash && !d.strategy.AllowsCash() {
		return d, domain.ValidationError{Field: "payment_method", Msg: "cash is not available for this booking"}
	}
	if m != domain.PaymentCash && m != domain.PaymentGateway {
		return d, domain.ValidationError{Field: "payment_method", Msg: "unknown payment method"}
	}
	out := d.clone()
	out.method = m
	out.bankHint = ""
	if m == domain.PaymentGateway {
		out.bankHint = strings.TrimSpace(bank)
	}
	return out, nil
}

func (d Draft) withStatus(s domain.DraftStatus) Draft {
	out := d.clone()
	out.status = s
	return out
}

func (d Draft) withBookingID(id string) Draft {
	out := d.clone()
	out.bookingID = id
	out.status = domain.StatusBookedPendingPayment
	return out
}
