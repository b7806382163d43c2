package checkout

import (
	"context"
	"errors"
	"sync"

	"travelcheckout/internal/domain"
	"travelcheckout/internal/domain/models"
	"travelcheckout/internal/resume"
)

func tourRef(discount float64) models.Bookable {
	return models.Bookable{
		Kind: domain.SubjectTour,
		Refs: models.ExternalRefs{TourID: "bromo-sunrise"},
		Meta: models.DisplayMeta{Name: "Bromo Sunrise"},
		UnitPrices: []models.UnitPrice{
			{Category: CategoryAdult, Label: "Adult", Amount: 100},
			{Category: CategoryChild, Label: "Child", Amount: 50},
		},
		DiscountPct: discount,
		Capacity:    10,
	}
}

func roomRef() models.Bookable {
	return models.Bookable{
		Kind:       domain.SubjectRoom,
		Refs:       models.ExternalRefs{HotelID: "h1", RoomID: "r7"},
		Meta:       models.DisplayMeta{Name: "Deluxe Twin"},
		UnitPrices: []models.UnitPrice{{Category: CategoryNight, Label: "Night", Amount: 400}},
		Capacity:   2,
	}
}

type fakeReference struct {
	mu    sync.Mutex
	ref   models.Bookable
	calls int
	err   error
}

func (f *fakeReference) GetBookable(_ context.Context, kind domain.SubjectKind, refs models.ExternalRefs) (models.Bookable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return models.Bookable{}, f.err
	}
	if f.ref.Kind != kind {
		return models.Bookable{}, domain.NotFoundError{Resource: "bookable"}
	}
	return f.ref, nil
}

type fakeIdentity struct {
	mu  sync.Mutex
	id  models.Identity
	ok  bool
	err error
}

func (f *fakeIdentity) CurrentIdentity(context.Context) (models.Identity, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id, f.ok, f.err
}

func (f *fakeIdentity) signIn(id models.Identity) {
	f.mu.Lock()
	f.id, f.ok = id, true
	f.mu.Unlock()
}

type fakeBookings struct {
	mu       sync.Mutex
	calls    int
	payloads []models.BookingPayload
	fail     []error
	id       string
}

func (f *fakeBookings) CreateBooking(_ context.Context, p models.BookingPayload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.payloads = append(f.payloads, p)
	if len(f.fail) > 0 {
		err := f.fail[0]
		f.fail = f.fail[1:]
		return "", err
	}
	return f.id, nil
}

type fakeGateway struct {
	mu    sync.Mutex
	calls int
	reqs  []models.PaymentRequest
	fail  []error
	url   string
}

func (f *fakeGateway) RequestPaymentURL(_ context.Context, req models.PaymentRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.reqs = append(f.reqs, req)
	if len(f.fail) > 0 {
		err := f.fail[0]
		f.fail = f.fail[1:]
		return "", err
	}
	return f.url, nil
}

type recordingNavigator struct {
	mu      sync.Mutex
	targets []string
}

func (n *recordingNavigator) Navigate(_ context.Context, target string) error {
	n.mu.Lock()
	n.targets = append(n.targets, target)
	n.mu.Unlock()
	return nil
}

func (n *recordingNavigator) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.targets...)
}

type failingTickets struct{}

var errStorage = errors.New("storage unavailable")

func (failingTickets) Save(context.Context, resume.Ticket) error { return errStorage }
func (failingTickets) Load(context.Context) (resume.Ticket, bool, error) {
	return resume.Ticket{}, false, nil
}
func (failingTickets) Take(context.Context) (resume.Ticket, bool, error) {
	return resume.Ticket{}, false, nil
}
func (failingTickets) Delete(context.Context) error { return nil }
