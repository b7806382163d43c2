package handlers

import (
	"net/http"
	"strings"

	"travelcheckout/internal/http/middleware"
	"travelcheckout/internal/utils"

	"github.com/gin-gonic/gin"
)

// GET /api/events?tab=ID upgrades to a websocket that receives identity-changed signals.
func Events(c *gin.Context) {
	relay := current().Relay
	if relay == nil {
		RespondError(c, http.StatusServiceUnavailable, "signal relay disabled", nil)
		return
	}
	tab := strings.TrimSpace(c.Query("tab"))
	if err := relay.Serve(c.Writer, c.Request, tab); err != nil {
		utils.LogError(middleware.GetRequestID(c), "events", "serve", err)
	}
}
