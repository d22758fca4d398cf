package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"partsync/internal/middleware"
	"partsync/internal/services"
)

type AuthHandler struct {
	svc *services.AuthService
	log zerolog.Logger
}

func NewAuthHandler(svc *services.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

// Exchange trades the provider's one-time session id for a local session.
// The token is returned in the body for app clients and also set as an
// httponly cookie for browsers.
func (h *AuthHandler) Exchange(c *gin.Context) {
	sessionID := c.GetHeader("X-Session-ID")
	if sessionID == "" {
		var body struct {
			SessionID string `json:"session_id"`
		}
		if err := c.ShouldBindJSON(&body); err == nil {
			sessionID = body.SessionID
		}
	}
	user, session, err := h.svc.Exchange(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie("session_token", session.SessionToken, int(h.svc.SessionTTL().Seconds()), "/", "", true, true)
	c.JSON(http.StatusOK, gin.H{"user": user, "session_token": session.SessionToken})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.svc.CurrentUser(middleware.TokenFromContext(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.svc.Logout(middleware.TokenFromContext(c)); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.SetCookie("session_token", "", -1, "/", "", true, true)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListCustomers backs the admin dashboard.
func (h *AuthHandler) ListCustomers(c *gin.Context) {
	users, err := h.svc.ListCustomers()
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, users)
}
