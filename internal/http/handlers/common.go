package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"travelcheckout/internal/domain"

	"github.com/gin-gonic/gin"
)

// RespondError answers with the shared ErrorResponse body; err, when given, is attached
// as details.
func RespondError(c *gin.Context, status int, message string, err error) {
	var details any
	if err != nil {
		details = gin.H{"cause": err.Error()}
	}
	respondError(c, status, "", message, details)
}

// BindJSONOrError reports false after answering 400 when the body is missing or malformed.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		RespondError(c, http.StatusBadRequest, "empty body", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid payload", err)
		return false
	}
	return true
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "invalid "+name, err)
		return 0, false
	}
	return id, true
}

func asValidation(err error, target *domain.ValidationError) bool {
	return errors.As(err, target)
}
