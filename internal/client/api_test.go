package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"travelcheckout/internal/domain"
	"travelcheckout/internal/domain/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer mimics the checkout API closely enough for the client.
type fakeServer struct {
	gotKey   string
	gotTab   string
	gotAuth  string
	gotCash  string
	loginTab string
	meStatus int
}

func (f *fakeServer) start(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api")
	api.GET("/bookables/tours/:id", func(c *gin.Context) {
		if c.Param("id") != "bromo" {
			c.JSON(http.StatusNotFound, gin.H{"message": "tour not found", "code": "not_found"})
			return
		}
		c.JSON(http.StatusOK, models.Bookable{
			Kind:       domain.SubjectTour,
			Refs:       models.ExternalRefs{TourID: "bromo"},
			Meta:       models.DisplayMeta{Name: "Bromo Sunrise"},
			UnitPrices: []models.UnitPrice{{Category: "adult", Amount: 100}},
		})
	})
	api.POST("/auth/login", func(c *gin.Context) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			Tab      string `json:"tab"`
		}
		_ = c.ShouldBindJSON(&body)
		if body.Password != "rahasia123" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "wrong email/username or password"})
			return
		}
		f.loginTab = body.Tab
		c.JSON(http.StatusOK, gin.H{"token": "tok-1", "user": models.User{ID: 1, Email: body.Email}})
	})
	api.GET("/auth/me", func(c *gin.Context) {
		f.gotAuth = c.GetHeader("Authorization")
		if f.meStatus != 0 {
			c.JSON(f.meStatus, gin.H{"message": "token expired"})
			return
		}
		c.JSON(http.StatusOK, models.Identity{UserID: 1, Name: "Sari", Email: "sari@example.com"})
	})
	api.POST("/bookings", func(c *gin.Context) {
		f.gotKey = c.GetHeader("Idempotency-Key")
		f.gotTab = c.GetHeader("X-Tab-ID")
		var p models.BookingPayload
		_ = c.ShouldBindJSON(&p)
		if p.Total != 180 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "total mismatch", "details": gin.H{"field": "total"}})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"booking_id": "41"})
	})
	api.POST("/payments/url", func(c *gin.Context) {
		c.JSON(http.StatusOK, models.PaymentLink{URL: "https://pay.example.com/checkout?booking_id=41"})
	})
	api.POST("/bookings/:id/cash", func(c *gin.Context) {
		f.gotCash = c.Param("id")
		c.JSON(http.StatusOK, gin.H{"booking_id": c.Param("id")})
	})
	api.GET("/bookings/:id/voucher", func(c *gin.Context) {
		c.Header("Content-Disposition", `inline; filename="VOUCHER_41_Bromo.pdf"`)
		c.Data(http.StatusOK, "application/pdf", []byte("%PDF-1.3"))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newAPI(t *testing.T, f *fakeServer) *API {
	srv := f.start(t)
	return New(srv.URL+"/api", time.Second, nil, "t1")
}

func TestGetBookable(t *testing.T) {
	a := newAPI(t, &fakeServer{})
	ctx := context.Background()

	b, err := a.GetBookable(ctx, domain.SubjectTour, models.ExternalRefs{TourID: "bromo"})
	require.NoError(t, err)
	assert.Equal(t, "Bromo Sunrise", b.Meta.Name)

	_, err = a.GetBookable(ctx, domain.SubjectTour, models.ExternalRefs{TourID: "nope"})
	assert.True(t, domain.IsNotFound(err), "got %v", err)
}

func TestCurrentIdentityWithoutToken(t *testing.T) {
	f := &fakeServer{}
	a := newAPI(t, f)

	_, ok, err := a.CurrentIdentity(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, f.gotAuth, "no request expected without a token")
}

func TestLoginThenIdentity(t *testing.T) {
	f := &fakeServer{}
	a := newAPI(t, f)
	ctx := context.Background()

	_, err := a.Login(ctx, "sari@example.com", "wrong")
	assert.True(t, domain.IsUnauthorized(err), "got %v", err)

	u, err := a.Login(ctx, "sari@example.com", "rahasia123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "t1", f.loginTab)

	id, ok, err := a.CurrentIdentity(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Sari", id.Name)
	assert.Equal(t, "Bearer tok-1", f.gotAuth)
}

func TestExpiredTokenIsSignedOut(t *testing.T) {
	f := &fakeServer{meStatus: http.StatusUnauthorized}
	a := newAPI(t, f)
	ctx := context.Background()
	require.NoError(t, a.Tokens.SetToken(ctx, "stale"))

	_, ok, err := a.CurrentIdentity(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIdentityServerErrorIsReported(t *testing.T) {
	f := &fakeServer{meStatus: http.StatusInternalServerError}
	a := newAPI(t, f)
	ctx := context.Background()
	require.NoError(t, a.Tokens.SetToken(ctx, "tok-1"))

	_, ok, err := a.CurrentIdentity(ctx)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestCreateBookingSendsIdempotencyKey(t *testing.T) {
	f := &fakeServer{}
	a := newAPI(t, f)
	ctx := context.Background()

	id, err := a.CreateBooking(ctx, models.BookingPayload{Kind: domain.SubjectTour, Total: 180, DraftID: "draft-7"})
	require.NoError(t, err)
	assert.Equal(t, "41", id)
	assert.Equal(t, "draft-7", f.gotKey)
	assert.Equal(t, "t1", f.gotTab)

	_, err = a.CreateBooking(ctx, models.BookingPayload{Kind: domain.SubjectTour, Total: 200})
	var ve domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "total", ve.Field)
}

func TestPaymentCashAndVoucher(t *testing.T) {
	f := &fakeServer{}
	a := newAPI(t, f)
	ctx := context.Background()

	u, err := a.RequestPaymentURL(ctx, models.PaymentRequest{Amount: 180, BookingID: "41"})
	require.NoError(t, err)
	assert.Contains(t, u, "booking_id=41")

	require.NoError(t, a.MarkPayAtDeparture(ctx, "41"))
	assert.Equal(t, "41", f.gotCash)

	pdf, name, err := a.Voucher(ctx, "41")
	require.NoError(t, err)
	assert.Equal(t, "VOUCHER_41_Bromo.pdf", name)
	assert.Equal(t, "%PDF-1.3", string(pdf))
}

func TestEventsURL(t *testing.T) {
	a := New("https://api.example.com/api/", 0, nil, "tab 1")
	assert.Equal(t, "wss://api.example.com/api/events?tab=tab+1", a.EventsURL())
}

func TestBadgerTokens(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	ctx := context.Background()
	store := BadgerTokens{DB: db}

	tok, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, store.SetToken(ctx, "tok-1"))
	tok, err = store.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)

	require.NoError(t, store.Clear(ctx))
	tok, err = store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
}
