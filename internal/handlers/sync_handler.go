package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"partsync/internal/middleware"
	"partsync/internal/models"
	"partsync/internal/services"
)

type SyncHandler struct {
	svc *services.SyncService
	log zerolog.Logger
}

func NewSyncHandler(svc *services.SyncService, log zerolog.Logger) *SyncHandler {
	return &SyncHandler{svc: svc, log: log}
}

// Pull accepts the watermark either in the JSON body or as a query
// parameter, so simple clients can GET-style poll through POST.
func (h *SyncHandler) Pull(c *gin.Context) {
	// An empty or absent body means a full sync of the default tables.
	var req models.PullRequest
	_ = c.ShouldBindJSON(&req)
	if req.LastPulledAt == 0 {
		req.LastPulledAt = parseInt64Default(c.Query("last_pulled_at"), 0)
	}
	resp, err := h.svc.Pull(middleware.UserIDFromContext(c), req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SyncHandler) Push(c *gin.Context) {
	var req models.PushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	if err := h.svc.Push(middleware.UserIDFromContext(c), req); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
