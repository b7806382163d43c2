package checkout

import (
	"errors"
	"fmt"
	"strings"

	"travelcheckout/internal/domain"
	"travelcheckout/internal/domain/models"
	"travelcheckout/internal/utils"
)

// Step of the wizard.
type Step int

const (
	StepDetails  Step = 1 // schedule, party, price
	StepIdentity Step = 2 // traveler identity behind the auth gate
	StepPayment  Step = 3 // payment method and submission
)

// Pending names the outstanding operation, if any. While one is pending the wizard
// accepts only the event that completes it.
type Pending string

const (
	PendingNone        Pending = ""
	PendingIdentity    Pending = "identity"
	PendingBooking     Pending = "booking"
	PendingPaymentLink Pending = "payment_link"
)

// OutcomeKind marks how a draft left the wizard.
type OutcomeKind string

const (
	OutcomeNone           OutcomeKind = ""
	OutcomeRedirect       OutcomeKind = "redirect"
	OutcomePayAtDeparture OutcomeKind = "pay_at_departure"
)

// Outcome is set once the draft is finished with.
type Outcome struct {
	Kind      OutcomeKind
	URL       string
	BookingID string
	Message   string
}

// State is the whole wizard: step, draft, pending operation and the error to render.
type State struct {
	Step    Step
	Draft   Draft
	Pending Pending
	Err     error
	Outcome Outcome
}

// Done reports whether the draft has left the wizard.
func (s State) Done() bool { return s.Outcome.Kind != OutcomeNone }

var (
	ErrInvalidTransition = errors.New("checkout: transition not allowed from this step")
	ErrBusy              = errors.New("checkout: another operation is in progress")
	ErrIdentityPending   = errors.New("checkout: waiting for sign-in")
	ErrClosed            = errors.New("checkout: draft already finished")
)

// Event is an input of Transition.
type Event interface{ event() }

// Advance moves one step forward after validating the current step.
type Advance struct{}

// Retreat moves one step back unconditionally.
type Retreat struct{}

// ReferenceLoaded replaces the reference data snapshot.
type ReferenceLoaded struct{ Bookable models.Bookable }

type SetSchedule struct{ Schedule models.Schedule }

type SetPartyCount struct {
	Category string
	Count    int
}

type SetIdentityField struct {
	Field IdentityField
	Value string
}

type SelectPayment struct {
	Method   domain.PaymentMethod
	BankHint string
}

// IdentityResolved carries the authenticated profile.
type IdentityResolved struct{ Identity models.Identity }

// IdentitySuspended: nobody is signed in and the resume ticket is written.
type IdentitySuspended struct{}

// Submit starts the payment sequence on step 3.
type Submit struct{}

type BookingCreated struct{ BookingID string }

type BookingFailed struct{ Err error }

type PaymentLinked struct{ URL string }

type PaymentLinkFailed struct{ Err error }

func (Advance) event()           {}
func (Retreat) event()           {}
func (ReferenceLoaded) event()   {}
func (SetSchedule) event()       {}
func (SetPartyCount) event()     {}
func (SetIdentityField) event()  {}
func (SelectPayment) event()     {}
func (IdentityResolved) event()  {}
func (IdentitySuspended) event() {}
func (Submit) event()            {}
func (BookingCreated) event()    {}
func (BookingFailed) event()     {}
func (PaymentLinked) event()     {}
func (PaymentLinkFailed) event() {}

// NewState mounts a draft at step 1.
func NewState(d Draft) State {
	return State{Step: StepDetails, Draft: d}
}

// Transition is the wizard's only way to change state. It is pure: on rejection it
// returns s with Err set and the same error.
func Transition(s State, ev Event) (State, error) {
	next, err := transition(s, ev)
	if err != nil {
		s.Err = err
		return s, err
	}
	return next, nil
}

func transition(s State, ev Event) (State, error) {
	if s.Done() {
		return s, ErrClosed
	}
	// events that complete a pending operation
	switch e := ev.(type) {
	case IdentityResolved:
		if s.Step != StepIdentity || s.Pending != PendingIdentity {
			return s, ErrInvalidTransition
		}
		s.Draft = s.Draft.withLockedIdentity(e.Identity).withStatus(domain.StatusIdentityResolved)
		s.Pending = PendingNone
		s.Err = nil
		return s, nil
	case IdentitySuspended:
		if s.Step != StepIdentity || s.Pending != PendingIdentity {
			return s, ErrInvalidTransition
		}
		s.Draft = s.Draft.withStatus(domain.StatusIdentityPending)
		s.Err = nil
		return s, nil
	case BookingCreated:
		if s.Pending != PendingBooking {
			return s, ErrInvalidTransition
		}
		id := strings.TrimSpace(e.BookingID)
		if id == "" {
			s.Pending = PendingNone
			s.Err = domain.BookingCreationFailed{Err: errors.New("empty booking id")}
			return s, nil
		}
		s.Draft = s.Draft.withBookingID(id)
		s.Err = nil
		if s.Draft.PaymentMethod() == domain.PaymentCash {
			s.Pending = PendingNone
			s.Outcome = Outcome{
				Kind:      OutcomePayAtDeparture,
				BookingID: id,
				Message:   "Booking confirmed. Please pay at departure.",
			}
			return s, nil
		}
		s.Pending = PendingPaymentLink
		return s, nil
	case BookingFailed:
		if s.Pending != PendingBooking {
			return s, ErrInvalidTransition
		}
		s.Pending = PendingNone
		s.Err = asBookingFailure(e.Err)
		return s, nil
	case PaymentLinked:
		if s.Pending != PendingPaymentLink {
			return s, ErrInvalidTransition
		}
		u := strings.TrimSpace(e.URL)
		s.Pending = PendingNone
		if u == "" {
			s.Err = domain.PaymentLinkUnavailable{BookingID: s.Draft.BookingID(), Err: errors.New("empty payment url")}
			return s, nil
		}
		s.Draft = s.Draft.withStatus(domain.StatusRedirected)
		s.Err = nil
		s.Outcome = Outcome{Kind: OutcomeRedirect, URL: u, BookingID: s.Draft.BookingID()}
		return s, nil
	case PaymentLinkFailed:
		if s.Pending != PendingPaymentLink {
			return s, ErrInvalidTransition
		}
		s.Pending = PendingNone
		s.Err = asLinkFailure(s.Draft.BookingID(), e.Err)
		return s, nil
	}

	if s.Pending == PendingBooking || s.Pending == PendingPaymentLink {
		return s, ErrBusy
	}

	switch e := ev.(type) {
	case Advance:
		return advance(s)
	case Retreat:
		return retreat(s)
	case ReferenceLoaded:
		d, err := s.Draft.withReference(e.Bookable)
		if err != nil {
			return s, err
		}
		s.Draft = d
		return s, nil
	case SetSchedule:
		if s.Step != StepDetails {
			return s, ErrInvalidTransition
		}
		d, err := s.Draft.withSchedule(e.Schedule)
		if err != nil {
			return s, err
		}
		s.Draft, s.Err = d, nil
		return s, nil
	case SetPartyCount:
		if s.Step != StepDetails {
			return s, ErrInvalidTransition
		}
		d, err := s.Draft.withPartyCount(e.Category, e.Count)
		if err != nil {
			return s, err
		}
		s.Draft, s.Err = d, nil
		return s, nil
	case SetIdentityField:
		if s.Step != StepIdentity {
			return s, ErrInvalidTransition
		}
		d, err := s.Draft.withIdentityField(e.Field, e.Value)
		if err != nil {
			return s, err
		}
		s.Draft, s.Err = d, nil
		return s, nil
	case SelectPayment:
		if s.Step != StepPayment {
			return s, ErrInvalidTransition
		}
		d, err := s.Draft.withPayment(e.Method, e.BankHint)
		if err != nil {
			return s, err
		}
		s.Draft, s.Err = d, nil
		return s, nil
	case Submit:
		return submit(s)
	}
	return s, fmt.Errorf("%w: unknown event %T", ErrInvalidTransition, ev)
}

func advance(s State) (State, error) {
	switch s.Step {
	case StepDetails:
		d := s.Draft
		if err := d.Strategy().ValidateDetails(d.Reference(), d.Schedule(), d.Party()); err != nil {
			return s, err
		}
		s.Step = StepIdentity
		s.Err = nil
		if d.Status() == domain.StatusDraft || d.Status() == domain.StatusIdentityPending {
			s.Pending = PendingIdentity
		}
		return s, nil
	case StepIdentity:
		if s.Pending == PendingIdentity {
			return s, ErrIdentityPending
		}
		if err := ValidateIdentity(s.Draft); err != nil {
			return s, err
		}
		s.Step = StepPayment
		s.Err = nil
		if s.Draft.BookingID() == "" {
			s.Draft = s.Draft.withStatus(domain.StatusReadyToPay)
		}
		return s, nil
	}
	return s, ErrInvalidTransition
}

func retreat(s State) (State, error) {
	switch s.Step {
	case StepIdentity:
		s.Step = StepDetails
		s.Pending = PendingNone
		if s.Draft.Status() == domain.StatusIdentityPending {
			s.Draft = s.Draft.withStatus(domain.StatusDraft)
		}
	case StepPayment:
		s.Step = StepIdentity
		// a created booking stays; only an unbooked draft steps its status back
		if s.Draft.BookingID() == "" {
			s.Draft = s.Draft.withStatus(domain.StatusIdentityResolved)
		}
	default:
		return s, ErrInvalidTransition
	}
	s.Err = nil
	return s, nil
}

func submit(s State) (State, error) {
	if s.Step != StepPayment {
		return s, ErrInvalidTransition
	}
	switch s.Draft.PaymentMethod() {
	case domain.PaymentCash, domain.PaymentGateway:
	default:
		return s, domain.ValidationError{Field: "payment_method", Msg: "choose a payment method"}
	}
	s.Err = nil
	if s.Draft.BookingID() != "" {
		if s.Draft.PaymentMethod() == domain.PaymentCash {
			// the booking exists; cash needs no further call
			s.Outcome = Outcome{
				Kind:      OutcomePayAtDeparture,
				BookingID: s.Draft.BookingID(),
				Message:   "Booking confirmed. Please pay at departure.",
			}
			return s, nil
		}
		s.Pending = PendingPaymentLink
		return s, nil
	}
	if err := ValidateIdentity(s.Draft); err != nil {
		return s, err
	}
	s.Pending = PendingBooking
	return s, nil
}

// ValidateIdentity checks the identity requirements of the draft's strategy.
func ValidateIdentity(d Draft) error {
	id := d.Identity()
	if missing := id.Missing(d.Strategy().RequiredIdentity()); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = string(f)
		}
		return domain.ValidationError{Field: string(missing[0]), Msg: "missing " + strings.Join(names, ", ")}
	}
	if !utils.LooksLikeEmail(id.Email.Value) {
		return domain.ValidationError{Field: string(FieldEmail), Msg: "email is not valid"}
	}
	return nil
}

func asBookingFailure(err error) error {
	var bf domain.BookingCreationFailed
	if errors.As(err, &bf) {
		return bf
	}
	return domain.BookingCreationFailed{Err: err}
}

func asLinkFailure(bookingID string, err error) error {
	var lf domain.PaymentLinkUnavailable
	if errors.As(err, &lf) {
		return lf
	}
	return domain.PaymentLinkUnavailable{BookingID: bookingID, Err: err}
}
