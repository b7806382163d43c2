package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"travelcheckout/internal/domain"
	"travelcheckout/internal/domain/models"
	"travelcheckout/internal/repositories"
	"travelcheckout/internal/utils"
)

// PaymentService hands out hosted gateway URLs for durable bookings. It never settles
// anything; the gateway owns the payment from there.
type PaymentService struct {
	PaymentRepo repositories.PaymentRepository
	BookingRepo repositories.BookingRepository
	GatewayURL  string
	SigningKey  []byte
	Currency    string
	RequestID   string
	Now         func() time.Time
}

// RequestPaymentURL checks the request against the stored booking and returns a signed
// gateway URL. A pending session with the same amount is handed out again instead of a new
// one.
func (s PaymentService) RequestPaymentURL(ctx context.Context, req models.PaymentRequest) (string, error) {
	bookingID, err := strconv.ParseInt(strings.TrimSpace(req.BookingID), 10, 64)
	if err != nil || bookingID <= 0 {
		return "", domain.ValidationError{Field: "booking_id", Msg: "invalid booking id"}
	}
	if req.Amount <= 0 {
		return "", domain.ValidationError{Field: "amount", Msg: "amount must be positive"}
	}
	if strings.TrimSpace(s.GatewayURL) == "" || len(s.SigningKey) == 0 {
		return "", domain.InternalError{Msg: "payment gateway not configured"}
	}

	b, err := s.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return "", err
	}
	if b.Kind.BookingType() != req.BookingType {
		return "", domain.ValidationError{Field: "booking_type", Msg: "booking type does not match"}
	}
	if b.Total != req.Amount {
		return "", domain.ValidationError{Field: "amount", Msg: fmt.Sprintf("amount %d does not match booking total %d", req.Amount, b.Total)}
	}
	if b.PaymentStatus == domain.PaymentStatusPayAtDeparture {
		return "", domain.ConflictError{Resource: "booking", Msg: "booking is paid at departure"}
	}

	if last, ok, err := s.PaymentRepo.LatestByBooking(ctx, bookingID); err == nil && ok &&
		last.Status == domain.PaymentStatusPending && last.Amount == req.Amount && last.URL != "" {
		utils.LogEvent(s.RequestID, "payment", "payment_url", fmt.Sprintf("booking_id=%d reused payment_id=%d", bookingID, last.ID))
		return last.URL, nil
	}

	link, err := s.SignedURL(bookingID, req)
	if err != nil {
		return "", err
	}
	pid, err := s.PaymentRepo.CreatePending(ctx, models.PaymentRecord{
		BookingID:   bookingID,
		Amount:      req.Amount,
		BookingType: string(req.BookingType),
		BankHint:    strings.TrimSpace(req.BankHint),
		URL:         link,
	})
	if err != nil {
		return "", err
	}
	if err := s.BookingRepo.UpdatePaymentStatus(ctx, bookingID, domain.PaymentStatusPending, string(domain.PaymentGateway)); err != nil {
		utils.LogEvent(s.RequestID, "payment", "payment_url", "update booking status warning: "+err.Error())
	}
	utils.LogEvent(s.RequestID, "payment", "payment_url", fmt.Sprintf("booking_id=%d payment_id=%d", bookingID, pid))
	return link, nil
}

// SignedURL builds the hosted URL. The signature covers every query parameter but sig.
func (s PaymentService) SignedURL(bookingID int64, req models.PaymentRequest) (string, error) {
	base, err := url.Parse(strings.TrimSpace(s.GatewayURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", domain.InternalError{Msg: "invalid payment gateway url", Err: err}
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	currency := s.Currency
	if currency == "" {
		currency = "IDR"
	}

	q := url.Values{}
	q.Set("booking_id", strconv.FormatInt(bookingID, 10))
	q.Set("booking_type", string(req.BookingType))
	q.Set("amount", strconv.FormatInt(req.Amount, 10))
	q.Set("currency", currency)
	if bank := strings.TrimSpace(req.BankHint); bank != "" {
		q.Set("bank", bank)
	}
	q.Set("ts", strconv.FormatInt(now().Unix(), 10))
	q.Set("sig", s.sign(q))
	base.RawQuery = q.Encode()
	return base.String(), nil
}

// VerifySignature checks a query produced by SignedURL.
func (s PaymentService) VerifySignature(q url.Values) bool {
	got := q.Get("sig")
	if got == "" {
		return false
	}
	want := s.sign(q)
	return hmac.Equal([]byte(got), []byte(want))
}

func (s PaymentService) sign(q url.Values) string {
	c := url.Values{}
	for k, v := range q {
		if k != "sig" {
			c[k] = v
		}
	}
	mac := hmac.New(sha256.New, s.SigningKey)
	mac.Write([]byte(c.Encode()))
	return hex.EncodeToString(mac.Sum(nil))
}
