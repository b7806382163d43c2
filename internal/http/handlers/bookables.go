package handlers

import (
	"net/http"

	"travelcheckout/internal/domain"
	"travelcheckout/internal/domain/models"

	"github.com/gin-gonic/gin"
)

// GET /api/bookables/rooms/:hotelId/:roomId
func GetRoom(c *gin.Context) {
	b, err := current().Bookable.Get(c.Request.Context(), domain.SubjectRoom, models.ExternalRefs{
		HotelID: c.Param("hotelId"),
		RoomID:  c.Param("roomId"),
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// GET /api/bookables/tours/:tourId
func GetTour(c *gin.Context) {
	b, err := current().Bookable.Get(c.Request.Context(), domain.SubjectTour, models.ExternalRefs{TourID: c.Param("tourId")})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
