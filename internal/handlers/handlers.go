// Package handlers adapts HTTP to the service layer: bind, call, map the
// error, write JSON. No business rules live here.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"partsync/internal/repos"
	"partsync/internal/services"
)

// writeError maps service errors onto the response contract: 404 for
// missing rows, 401 for missing identity, 400 for client mistakes, 500 for
// everything else.
func writeError(c *gin.Context, log zerolog.Logger, err error) {
	var validation *services.ValidationError
	var upstream *services.UpstreamAuthError
	switch {
	case errors.Is(err, repos.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, services.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Msg})
	case errors.As(err, &upstream):
		log.Error().Err(err).Msg("identity provider failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "authentication service error"})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseIntDefault(v string, fallback int) int {
	if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
		return i
	}
	return fallback
}

func parseInt64Default(v string, fallback int64) int64 {
	if i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
		return i
	}
	return fallback
}

func parseOptionalFloat(v string) *float64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}
