package checkout

import (
	"context"
	"testing"
	"time"

	"travelcheckout/internal/domain"
	"travelcheckout/internal/resume"
	"travelcheckout/internal/signal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocation(t *testing.T) {
	seed, err := ParseLocation(roomLocation + "&step=2")
	require.NoError(t, err)
	assert.Equal(t, domain.SubjectRoom, seed.Kind)
	assert.Equal(t, "r7", seed.Refs.RoomID)
	assert.Equal(t, 2, seed.Schedule.Nights)
	assert.Equal(t, 2, seed.Party[CategoryGuests])
	assert.Equal(t, StepIdentity, seed.Step)

	seed, err = ParseLocation(roomLocation + "&step=3")
	require.NoError(t, err)
	assert.Equal(t, StepDetails, seed.Step)

	seed, err = ParseLocation("/checkout/tour/bromo%20sunrise?step=2")
	require.NoError(t, err)
	assert.Equal(t, domain.SubjectTour, seed.Kind)
	assert.Equal(t, "bromo sunrise", seed.Refs.TourID)

	for _, bad := range []string{"/checkout/room?hotelId=h1", "/checkout/tour/", "/home"} {
		_, err := ParseLocation(bad)
		assert.True(t, domain.IsValidation(err), bad)
	}
}

func TestRoomLocationRoundTrip(t *testing.T) {
	h := newHarness(roomRef())
	c, err := Mount(context.Background(), h.deps(), roomLocation)
	require.NoError(t, err)

	seed, err := ParseLocation(c.Location())
	require.NoError(t, err)
	st := c.State()
	assert.Equal(t, st.Draft.Refs(), seed.Refs)
	assert.Equal(t, st.Draft.Schedule(), seed.Schedule)
	assert.Equal(t, st.Draft.Party(), seed.Party)
}

func TestRecoveryConsumesOnce(t *testing.T) {
	ctx := context.Background()
	tickets := resume.NewMemoryStore("tab-9")
	ident := &fakeIdentity{}
	nav := &recordingNavigator{}
	rec := &Recovery{Tickets: tickets, Identity: ident, Navigator: nav, Signals: signal.NewLocalBus()}

	require.NoError(t, tickets.Save(ctx, resume.Ticket{ReturnPath: "/checkout/tour/t1"}))

	// still signed out: the ticket stays
	_, resumed, err := rec.Run(ctx)
	require.NoError(t, err)
	assert.False(t, resumed)
	_, ok, _ := tickets.Load(ctx)
	assert.True(t, ok)

	ident.signIn(sari)
	path, resumed, err := rec.Run(ctx)
	require.NoError(t, err)
	assert.True(t, resumed)
	assert.Equal(t, "/checkout/tour/t1", path)

	_, resumed, err = rec.Run(ctx)
	require.NoError(t, err)
	assert.False(t, resumed)
	assert.Equal(t, []string{"/checkout/tour/t1"}, nav.all())
}

func TestRecoveryIdentityErrorKeepsTicket(t *testing.T) {
	ctx := context.Background()
	tickets := resume.NewMemoryStore("")
	require.NoError(t, tickets.Save(ctx, resume.Ticket{ReturnPath: "/checkout/tour/t1"}))
	rec := &Recovery{Tickets: tickets, Identity: &fakeIdentity{err: assert.AnError}, Navigator: &recordingNavigator{}}

	_, resumed, err := rec.Run(ctx)
	require.NoError(t, err)
	assert.False(t, resumed)
	_, ok, _ := tickets.Load(ctx)
	assert.True(t, ok)
}

func TestRecoveryWatchResumesOnSignal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tickets := resume.NewMemoryStore("tab")
	require.NoError(t, tickets.Save(ctx, resume.Ticket{ReturnPath: "/checkout/tour/t2"}))
	ident := &fakeIdentity{}
	nav := &recordingNavigator{}
	bus := signal.NewLocalBus()
	rec := &Recovery{Tickets: tickets, Identity: ident, Navigator: nav, Signals: bus}

	done := make(chan error, 1)
	go func() { done <- rec.Watch(ctx) }()

	ident.signIn(sari)
	require.Eventually(t, func() bool {
		bus.Publish(signal.Event{Name: signal.IdentityChanged})
		return len(nav.all()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
