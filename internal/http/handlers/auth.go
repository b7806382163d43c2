package handlers

import (
	"net/http"
	"strings"

	"travelcheckout/internal/http/middleware"
	"travelcheckout/internal/services"
	"travelcheckout/internal/signal"
	"travelcheckout/internal/utils"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	// Tab, when set, narrows the identity-changed signal to one client tab.
	Tab string `json:"tab"`
}

// POST /api/auth/login
func Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	d := current()
	token, user, err := d.Identity.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	tab := strings.TrimSpace(req.Tab)
	if tab == "" {
		tab = strings.TrimSpace(c.GetHeader("X-Tab-ID"))
	}
	if d.Relay != nil {
		d.Relay.Publish(signal.Event{Name: signal.IdentityChanged, Tab: tab})
	}
	utils.LogEvent(middleware.GetRequestID(c), "auth", "login", "user signed in")

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// POST /api/auth/register
func Register(c *gin.Context) {
	var req services.RegisterInput
	if !BindJSONOrError(c, &req) {
		return
	}
	user, err := current().Identity.Register(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "registered",
		"user":    user,
	})
}

// GET /api/auth/me
func Me(c *gin.Context) {
	id, err := current().Identity.Me(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, id)
}
