// Package client talks to the checkout API on behalf of the terminal wizard.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"travelcheckout/internal/domain"
	"travelcheckout/internal/domain/models"
)

// API implements the checkout collaborators over HTTP.
type API struct {
	BaseURL string
	HTTP    *http.Client
	Tokens  TokenStore
	// Tab is sent with sign-ins so the identity-changed signal reaches this tab.
	Tab string
}

// New returns a client for baseURL (e.g. http://localhost:8080/api).
func New(baseURL string, timeout time.Duration, tokens TokenStore, tab string) *API {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if tokens == nil {
		tokens = &MemoryTokens{}
	}
	return &API{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		Tokens:  tokens,
		Tab:     tab,
	}
}

// apiError is the server's error body.
type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details struct {
		Field string `json:"field"`
	} `json:"details"`
}

func (e apiError) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// statusError turns an error response into the matching domain error.
func statusError(status int, body []byte) error {
	var e apiError
	_ = json.Unmarshal(body, &e)
	msg := e.text()
	if msg == "" {
		msg = http.StatusText(status)
	}
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.ValidationError{Field: e.Details.Field, Msg: msg}
	case http.StatusUnauthorized:
		return domain.UnauthorizedError{Msg: msg}
	case http.StatusNotFound:
		return domain.NotFoundError{Err: errors.New(msg)}
	case http.StatusConflict:
		return domain.ConflictError{Msg: msg}
	}
	return domain.InternalError{Msg: fmt.Sprintf("api status %d: %s", status, msg)}
}

type request struct {
	method string
	path   string
	body   any
	header http.Header
}

// send performs r and returns the raw response. Error statuses become domain errors.
func (a *API) send(ctx context.Context, r request) (*http.Response, []byte, error) {
	var rd io.Reader
	if r.body != nil {
		raw, err := json.Marshal(r.body)
		if err != nil {
			return nil, nil, err
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, a.BaseURL+r.path, rd)
	if err != nil {
		return nil, nil, err
	}
	for k, v := range r.header {
		req.Header[k] = v
	}
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.Tab != "" {
		req.Header.Set("X-Tab-ID", a.Tab)
	}
	if tok, err := a.Tokens.Token(ctx); err == nil && tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := a.HTTP.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, err
	}
	if resp.StatusCode >= 400 {
		return resp, body, statusError(resp.StatusCode, body)
	}
	return resp, body, nil
}

func (a *API) call(ctx context.Context, r request, out any) error {
	_, body, err := a.send(ctx, r)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return domain.InternalError{Msg: "decode " + r.path, Err: err}
	}
	return nil
}

// GetBookable fetches the reference data of a room or a tour.
func (a *API) GetBookable(ctx context.Context, kind domain.SubjectKind, refs models.ExternalRefs) (models.Bookable, error) {
	var path string
	switch kind {
	case domain.SubjectRoom:
		path = "/bookables/rooms/" + url.PathEscape(refs.HotelID) + "/" + url.PathEscape(refs.RoomID)
	case domain.SubjectTour:
		path = "/bookables/tours/" + url.PathEscape(refs.TourID)
	default:
		return models.Bookable{}, domain.ValidationError{Field: "kind", Msg: "unknown subject kind"}
	}
	var b models.Bookable
	err := a.call(ctx, request{method: http.MethodGet, path: path}, &b)
	return b, err
}

// CurrentIdentity asks /auth/me. No token or a 401 means nobody is signed in.
func (a *API) CurrentIdentity(ctx context.Context) (models.Identity, bool, error) {
	tok, err := a.Tokens.Token(ctx)
	if err != nil {
		return models.Identity{}, false, err
	}
	if tok == "" {
		return models.Identity{}, false, nil
	}
	var id models.Identity
	err = a.call(ctx, request{method: http.MethodGet, path: "/auth/me"}, &id)
	if domain.IsUnauthorized(err) {
		return models.Identity{}, false, nil
	}
	if err != nil {
		return models.Identity{}, false, err
	}
	return id, true, nil
}

// CreateBooking posts the draft; its id is the idempotency key.
func (a *API) CreateBooking(ctx context.Context, p models.BookingPayload) (string, error) {
	h := http.Header{}
	if p.DraftID != "" {
		h.Set("Idempotency-Key", p.DraftID)
	}
	var out struct {
		BookingID string `json:"booking_id"`
	}
	if err := a.call(ctx, request{method: http.MethodPost, path: "/bookings", body: p, header: h}, &out); err != nil {
		return "", err
	}
	return out.BookingID, nil
}

func (a *API) RequestPaymentURL(ctx context.Context, req models.PaymentRequest) (string, error) {
	var link models.PaymentLink
	if err := a.call(ctx, request{method: http.MethodPost, path: "/payments/url", body: req}, &link); err != nil {
		return "", err
	}
	return link.URL, nil
}

// Login signs in and keeps the token.
func (a *API) Login(ctx context.Context, login, password string) (models.User, error) {
	var out struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	body := map[string]string{"email": login, "password": password, "tab": a.Tab}
	if err := a.call(ctx, request{method: http.MethodPost, path: "/auth/login", body: body}, &out); err != nil {
		return models.User{}, err
	}
	if out.Token == "" {
		return models.User{}, errors.New("login returned no token")
	}
	if err := a.Tokens.SetToken(ctx, out.Token); err != nil {
		return models.User{}, err
	}
	return out.User, nil
}

func (a *API) Logout(ctx context.Context) error { return a.Tokens.Clear(ctx) }

// MarkPayAtDeparture confirms a tour booking for payment in cash.
func (a *API) MarkPayAtDeparture(ctx context.Context, bookingID string) error {
	return a.call(ctx, request{method: http.MethodPost, path: "/bookings/" + url.PathEscape(bookingID) + "/cash"}, nil)
}

// Voucher downloads the cash voucher PDF and the file name the server suggests.
func (a *API) Voucher(ctx context.Context, bookingID string) ([]byte, string, error) {
	resp, body, err := a.send(ctx, request{method: http.MethodGet, path: "/bookings/" + url.PathEscape(bookingID) + "/voucher"})
	if err != nil {
		return nil, "", err
	}
	name := "VOUCHER_" + bookingID + ".pdf"
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = params["filename"]
	}
	return body, name, nil
}

// EventsURL is the websocket address of the identity-changed relay for this tab.
func (a *API) EventsURL() string {
	u := a.BaseURL
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/events?tab=" + url.QueryEscape(a.Tab)
}
