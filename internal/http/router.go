package api

import (
	stdhttp "net/http"

	intconfig "travelcheckout/internal/config"
	h "travelcheckout/internal/http/handlers"
	"travelcheckout/internal/http/middleware"
	"travelcheckout/internal/signal"
	"travelcheckout/internal/utils"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the checkout API. relay may be nil, in which case /api/events answers 503.
func NewRouter(env intconfig.Env, relay *signal.Relay) *gin.Engine {
	deps := h.NewDeps(env, relay)
	h.Configure(deps)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.LogError("", "router", "trusted_proxies", err)
	}

	r.OPTIONS("/*path", func(c *gin.Context) { c.AbortWithStatus(stdhttp.StatusNoContent) })

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)
		api.GET("/events", h.Events)

		auth := api.Group("/auth")
		auth.POST("/login", h.Login)
		auth.POST("/register", h.Register)
		auth.GET("/me", middleware.RequireAuth(deps.Identity), h.Me)

		bookables := api.Group("/bookables")
		bookables.GET("/rooms/:hotelId/:roomId", h.GetRoom)
		bookables.GET("/tours/:tourId", h.GetTour)

		bookings := api.Group("/bookings", middleware.RequireAuth(deps.Identity))
		bookings.POST("", h.CreateBooking)
		bookings.POST("/:id/cash", h.MarkPayAtDeparture)
		bookings.GET("/:id/voucher", h.GetCashVoucher)

		payments := api.Group("/payments", middleware.RequireAuth(deps.Identity))
		payments.POST("/url", h.RequestPaymentURL)
	}

	h.SetRouter(r)
	return r
}
