package checkout

import (
	"errors"
	"testing"

	"travelcheckout/internal/domain"
	"travelcheckout/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tourDraft(t *testing.T, discount float64) Draft {
	t.Helper()
	d, err := NewDraft("d-1", tourRef(discount))
	require.NoError(t, err)
	d, err = d.withPartyCount(CategoryAdult, 2)
	require.NoError(t, err)
	d, err = d.withPartyCount(CategoryChild, 1)
	require.NoError(t, err)
	return d
}

func TestDraftTotalTour(t *testing.T) {
	assert.EqualValues(t, 250, tourDraft(t, 0).Total())
	assert.EqualValues(t, 225, tourDraft(t, 10).Total())

	b := tourDraft(t, 10).Breakdown()
	assert.EqualValues(t, 250, b.Subtotal)
	assert.EqualValues(t, 25, b.Discount)
	assert.Len(t, b.Lines, 2)
}

func TestDraftTotalRoom(t *testing.T) {
	d, err := NewDraft("d-2", roomRef())
	require.NoError(t, err)
	d, err = d.withSchedule(models.Schedule{Date: "2026-11-02", Nights: 3})
	require.NoError(t, err)
	d, err = d.withPartyCount(CategoryGuests, 2)
	require.NoError(t, err)

	// guests do not multiply the nightly price
	assert.EqualValues(t, 1200, d.Total())
	assert.EqualValues(t, d.Total(), d.Payload().Total)
}

func TestNewDraftRejectsMissingRefs(t *testing.T) {
	ref := tourRef(0)
	ref.Refs = models.ExternalRefs{}
	_, err := NewDraft("d", ref)
	assert.True(t, domain.IsValidation(err))

	ref.Kind = "BUS"
	_, err = NewDraft("d", ref)
	assert.True(t, domain.IsValidation(err))
}

func TestDraftMutatorsCopy(t *testing.T) {
	d := tourDraft(t, 0)
	d2, err := d.withPartyCount(CategoryAdult, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, d.Party()[CategoryAdult])
	_, ok := d2.Party()[CategoryAdult]
	assert.False(t, ok)

	p := d.Party()
	p[CategoryAdult] = 99
	assert.Equal(t, 2, d.Party()[CategoryAdult])
}

func TestLockedIdentityRejectsWrites(t *testing.T) {
	d := tourDraft(t, 0).withLockedIdentity(models.Identity{Name: "Sari", Email: "sari@example.com"})

	_, err := d.withIdentityField(FieldName, "Budi")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFieldLocked))
	assert.Equal(t, "Sari", d.Identity().Name.Value)

	d, err = d.withIdentityField(FieldPhone, " 0812 ")
	require.NoError(t, err)
	assert.Equal(t, "0812", d.Identity().Phone.Value)
	assert.False(t, d.Identity().Phone.Locked)

	// a second profile never overwrites a locked value
	d = d.withLockedIdentity(models.Identity{Name: "Other"})
	assert.Equal(t, "Sari", d.Identity().Name.Value)
}

func TestBookedDraftIsFrozen(t *testing.T) {
	d := tourDraft(t, 0).withBookingID("B-1")
	assert.Equal(t, domain.StatusBookedPendingPayment, d.Status())

	_, err := d.withPartyCount(CategoryAdult, 5)
	assert.ErrorIs(t, err, ErrDraftBooked)
	_, err = d.withSchedule(models.Schedule{Date: "2026-12-01"})
	assert.ErrorIs(t, err, ErrDraftBooked)
}

func TestPaymentMethodPerKind(t *testing.T) {
	room, err := NewDraft("r", roomRef())
	require.NoError(t, err)
	_, err = room.withPayment(domain.PaymentCash, "")
	assert.True(t, domain.IsValidation(err))

	tour := tourDraft(t, 0)
	tour, err = tour.withPayment(domain.PaymentCash, "BCA")
	require.NoError(t, err)
	assert.Equal(t, "", tour.BankHint())

	tour, err = tour.withPayment(domain.PaymentGateway, " BCA ")
	require.NoError(t, err)
	assert.Equal(t, "BCA", tour.BankHint())
}
