package services

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"travelcheckout/internal/domain"
	"travelcheckout/internal/domain/models"
	"travelcheckout/internal/repositories"
	"travelcheckout/internal/utils"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// DocsService renders the cash voucher a traveler shows at departure.
type DocsService struct {
	BookingRepo repositories.BookingRepository
	Bookables   BookableService
	Currency    string
	RequestID   string
	Loader      func(ctx context.Context, bookingID int64) (voucherData, error)
	Now         func() time.Time
}

type voucherData struct {
	BookingID int64
	Subject   string
	Address   string
	Date      string
	Time      string
	Party     models.Party
	Email     string
	Total     int64
	Status    string
}

// GenerateCashVoucher returns the PDF and its file name. Only the owner of a booking marked
// pay-at-departure gets a voucher.
func (s DocsService) GenerateCashVoucher(ctx context.Context, bookingID int64, ownerEmail string) ([]byte, string, error) {
	d, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}
	if !ownedBy(d.Email, ownerEmail) {
		return nil, "", domain.NotFoundError{Resource: "booking"}
	}
	if d.Status != domain.PaymentStatusPayAtDeparture {
		return nil, "", domain.ConflictError{Resource: "booking", Msg: "booking is not paid at departure"}
	}
	utils.LogEvent(s.RequestID, "docs", "cash_voucher", fmt.Sprintf("booking_id=%d", bookingID))
	return s.buildVoucherPDF(d)
}

func (s DocsService) load(ctx context.Context, bookingID int64) (voucherData, error) {
	if s.Loader != nil {
		return s.Loader(ctx, bookingID)
	}
	b, err := s.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return voucherData{}, err
	}
	out := voucherData{
		BookingID: b.ID,
		Date:      b.Schedule.Date,
		Time:      b.Schedule.Time,
		Party:     b.Party,
		Email:     b.Email,
		Total:     b.Total,
		Status:    b.PaymentStatus,
	}
	// reference data only decorates the voucher
	if ref, err := s.Bookables.Get(ctx, b.Kind, b.Refs); err == nil {
		out.Subject = ref.Meta.Name
		out.Address = ref.Meta.Address
	}
	return out, nil
}

func (s DocsService) buildVoucherPDF(d voucherData) ([]byte, string, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	code := fmt.Sprintf("BKG-%d", d.BookingID)
	png, err := qrcode.Encode(code, qrcode.Medium, 256)
	if err != nil {
		return nil, "", domain.InternalError{Msg: "encode voucher qr", Err: err}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Cash voucher", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "PAY AT DEPARTURE")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking      : %s", code),
		fmt.Sprintf("Tour         : %s", safe(d.Subject, "-")),
		fmt.Sprintf("Meeting point: %s", safe(d.Address, "-")),
		fmt.Sprintf("Date/Time    : %s %s", safe(d.Date, "-"), d.Time),
		fmt.Sprintf("Tickets      : %s", partyLine(d.Party)),
		fmt.Sprintf("Email        : %s", safe(d.Email, "-")),
		fmt.Sprintf("Amount due   : %s", utils.FormatAmount(s.currency(), d.Total)),
		fmt.Sprintf("Issued       : %s", now().Format("2006-01-02 15:04")),
	}
	for _, l := range lines {
		pdf.Cell(0, 7, l)
		pdf.Ln(7)
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("qr", 150, 20, 40, 40, false, opts, 0, "")

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Show this voucher to the guide and pay the amount due in cash before departure.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", domain.InternalError{Msg: "render voucher", Err: err}
	}
	return buf.Bytes(), fmt.Sprintf("VOUCHER_%d_%s.pdf", d.BookingID, utils.SafeFilenamePart(d.Subject)), nil
}

func (s DocsService) currency() string {
	if s.Currency == "" {
		return "IDR"
	}
	return s.Currency
}

func partyLine(p models.Party) string {
	cats := make([]string, 0, len(p))
	for c, n := range p {
		if n > 0 {
			cats = append(cats, c)
		}
	}
	if len(cats) == 0 {
		return "-"
	}
	sort.Strings(cats)
	parts := make([]string, len(cats))
	for i, c := range cats {
		parts[i] = fmt.Sprintf("%d %s", p[c], c)
	}
	return strings.Join(parts, ", ")
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}
