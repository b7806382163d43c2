package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"travelcheckout/internal/domain"
	"travelcheckout/internal/domain/models"
	"travelcheckout/internal/resume"
	"travelcheckout/internal/signal"
	"travelcheckout/internal/utils"

	"github.com/google/uuid"
)

// Deps are the collaborators of a checkout.
type Deps struct {
	Reference ReferenceService
	Identity  IdentityService
	Bookings  BookingService
	Gateway   PaymentGateway
	Tickets   resume.Store
	Surface   AuthSurface
	Signals   signal.Bus
	Navigator Navigator
	Now       func() time.Time
	NewID     func() string
}

// Controller runs the wizard. It owns the state, feeds every change through Transition
// and performs the calls a transition asks for. Only one action runs at a time; a second
// one gets ErrBusy, the equivalent of a disabled button.
type Controller struct {
	mu    sync.Mutex
	state State
	busy  bool
	wait  *signal.Subscription

	reference ReferenceService
	gate      *AuthGate
	bridge    *PaymentBridge
}

// Mount builds the draft described by location and, when the location asks for the
// identity step, advances into it so the auth gate runs again.
func Mount(ctx context.Context, deps Deps, location string) (*Controller, error) {
	seed, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}
	ref, err := deps.Reference.GetBookable(ctx, seed.Kind, seed.Refs)
	if err != nil {
		return nil, err
	}
	ref.Kind, ref.Refs = seed.Kind, seed.Refs

	newID := deps.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	d, err := NewDraft(newID(), ref)
	if err != nil {
		return nil, err
	}

	st, _ := Transition(NewState(d), SetSchedule{Schedule: seed.Schedule})
	for cat, n := range seed.Party {
		st, _ = Transition(st, SetPartyCount{Category: cat, Count: n})
	}

	c := &Controller{
		state:     st,
		reference: deps.Reference,
		gate: &AuthGate{
			Identity: deps.Identity,
			Tickets:  deps.Tickets,
			Surface:  deps.Surface,
			Signals:  deps.Signals,
			Now:      deps.Now,
		},
		bridge: &PaymentBridge{
			Bookings:  deps.Bookings,
			Gateway:   deps.Gateway,
			Navigator: deps.Navigator,
		},
	}
	utils.LogEvent(d.ID(), "checkout", "mount", location)

	if seed.Step >= StepIdentity {
		if err := c.Advance(ctx); err != nil && !errors.Is(err, ErrIdentityPending) {
			// the seed was incomplete; stay on step 1 with the error shown
			utils.LogError(d.ID(), "checkout", "resume_advance", err)
		}
	}
	return c, nil
}

// State returns a snapshot for rendering.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Location is where the wizard currently is, as a client path.
func (c *Controller) Location() string {
	st := c.State()
	return st.Draft.Strategy().Location(st.Draft, st.Step)
}

// Advance validates the current step and moves forward. Entering step 2 runs the auth
// gate; when it suspends Advance returns nil and State().Pending is PendingIdentity.
func (c *Controller) Advance(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	if err := c.apply(Advance{}); err != nil {
		return err
	}
	st := c.State()
	if st.Step == StepIdentity && st.Pending == PendingIdentity {
		return c.enterGate(ctx)
	}
	return nil
}

func (c *Controller) enterGate(ctx context.Context) error {
	res, err := c.gate.Enter(ctx, c.Location())
	if res.Resolved {
		return c.apply(IdentityResolved{Identity: res.Identity})
	}
	if res.Wait == nil {
		// the ticket could not be written; without it a redirect would lose the draft
		_ = c.apply(Retreat{})
		c.mu.Lock()
		c.state.Err = err
		c.mu.Unlock()
		return err
	}
	c.setWait(res.Wait)
	if aerr := c.apply(IdentitySuspended{}); aerr != nil {
		return aerr
	}
	return err
}

// AwaitIdentity blocks while the identity step is suspended, until an identity-changed
// signal arrives and the identity now resolves, or ctx ends.
func (c *Controller) AwaitIdentity(ctx context.Context) error {
	c.mu.Lock()
	sub := c.wait
	pending := c.state.Pending == PendingIdentity
	c.mu.Unlock()
	if !pending {
		return nil
	}
	if sub == nil {
		return ErrInvalidTransition
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-sub.C:
			if !ok {
				// retreated or closed while waiting
				return nil
			}
			if ev.Name != signal.IdentityChanged {
				continue
			}
			id, resolved := c.gate.Check(ctx)
			if !resolved {
				continue
			}
			c.clearWait()
			return c.apply(IdentityResolved{Identity: id})
		}
	}
}

// Retreat goes one step back. It never undoes a created booking.
func (c *Controller) Retreat() error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	if err := c.apply(Retreat{}); err != nil {
		return err
	}
	if c.State().Pending != PendingIdentity {
		c.clearWait()
	}
	return nil
}

// SetSchedule edits the step-1 schedule.
func (c *Controller) SetSchedule(s models.Schedule) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()
	return c.apply(SetSchedule{Schedule: s})
}

// SetPartyCount edits one party category. Reference data is fetched again first so the
// price and capacity the traveler sees are current, unless the draft is already booked.
func (c *Controller) SetPartyCount(ctx context.Context, category string, n int) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	// a booked draft keeps the prices it was booked at
	if st := c.State(); st.Step == StepDetails && !st.Done() && st.Draft.BookingID() == "" {
		d := st.Draft
		ref, err := c.reference.GetBookable(ctx, d.Kind(), d.Refs())
		if err != nil {
			utils.LogError(d.ID(), "checkout", "reference_refresh", err)
		} else {
			ref.Kind, ref.Refs = d.Kind(), d.Refs()
			if err := c.apply(ReferenceLoaded{Bookable: ref}); err != nil {
				return err
			}
		}
	}
	return c.apply(SetPartyCount{Category: category, Count: n})
}

// SetIdentityField edits an unlocked identity field on step 2.
func (c *Controller) SetIdentityField(f IdentityField, value string) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()
	return c.apply(SetIdentityField{Field: f, Value: value})
}

// SelectPayment picks the payment method on step 3.
func (c *Controller) SelectPayment(m domain.PaymentMethod, bankHint string) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()
	return c.apply(SelectPayment{Method: m, BankHint: bankHint})
}

// Submit runs the payment sequence: create the booking (once per draft), then either
// finish with pay-at-departure for cash or fetch the hosted URL and redirect to it.
func (c *Controller) Submit(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	if err := c.apply(Submit{}); err != nil {
		return err
	}
	st := c.State()

	if st.Pending == PendingBooking {
		id, err := c.bridge.CreateBooking(ctx, st.Draft)
		if err != nil {
			_ = c.apply(BookingFailed{Err: err})
			return c.State().Err
		}
		if err := c.apply(BookingCreated{BookingID: id}); err != nil {
			return err
		}
		st = c.State()
		if st.Err != nil {
			return st.Err
		}
	}

	if st.Pending == PendingPaymentLink {
		u, err := c.bridge.RequestPaymentURL(ctx, st.Draft)
		if err != nil {
			_ = c.apply(PaymentLinkFailed{Err: err})
			return c.State().Err
		}
		if err := c.apply(PaymentLinked{URL: u}); err != nil {
			return err
		}
		st = c.State()
		if st.Err != nil {
			return st.Err
		}
		c.clearWait()
		return c.bridge.Redirect(ctx, st.Outcome.URL)
	}
	return nil
}

// Close abandons the draft. Nothing is sent anywhere.
func (c *Controller) Close() {
	c.clearWait()
}

func (c *Controller) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	c.busy = true
	return nil
}

func (c *Controller) end() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

func (c *Controller) apply(ev Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := Transition(c.state, ev)
	c.state = next
	return err
}

func (c *Controller) setWait(sub *signal.Subscription) {
	c.mu.Lock()
	old := c.wait
	c.wait = sub
	c.mu.Unlock()
	if old != nil && old != sub {
		old.Close()
	}
}

func (c *Controller) clearWait() {
	c.setWait(nil)
}
