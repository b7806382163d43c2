package handlers

import (
	"net/http"

	"travelcheckout/internal/domain/models"
	"travelcheckout/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// POST /api/payments/url
func RequestPaymentURL(c *gin.Context) {
	var req models.PaymentRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	svc := current().Payments
	svc.RequestID = middleware.GetRequestID(c)
	link, err := svc.RequestPaymentURL(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.PaymentLink{URL: link})
}
