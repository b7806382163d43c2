package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"travelcheckout/internal/domain/models"
	"travelcheckout/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// POST /api/bookings
// The Idempotency-Key header, when present, replaces draft_id as the idempotency key.
func CreateBooking(c *gin.Context) {
	var p models.BookingPayload
	if !BindJSONOrError(c, &p) {
		return
	}
	if key := strings.TrimSpace(c.GetHeader("Idempotency-Key")); key != "" {
		p.DraftID = key
	}

	svc := current().Bookings
	svc.RequestID = middleware.GetRequestID(c)
	id, err := svc.Create(c.Request.Context(), p)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking_id": strconv.FormatInt(id, 10)})
}

// POST /api/bookings/:id/cash
func MarkPayAtDeparture(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	me, ok := callerIdentity(c)
	if !ok {
		return
	}
	svc := current().Bookings
	svc.RequestID = middleware.GetRequestID(c)
	if err := svc.MarkPayAtDeparture(c.Request.Context(), id, me.Email); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking_id": strconv.FormatInt(id, 10), "message": "Booking confirmed. Please pay at departure."})
}

// GET /api/bookings/:id/voucher
func GetCashVoucher(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	me, ok := callerIdentity(c)
	if !ok {
		return
	}
	svc := current().Docs
	svc.RequestID = middleware.GetRequestID(c)
	pdf, filename, err := svc.GenerateCashVoucher(c.Request.Context(), id, me.Email)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// callerIdentity loads the profile behind the bearer token; bookings are matched to it by
// email.
func callerIdentity(c *gin.Context) (models.Identity, bool) {
	me, err := current().Identity.Me(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return models.Identity{}, false
	}
	return me, true
}
