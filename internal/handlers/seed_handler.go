package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"partsync/internal/services"
)

type SeedHandler struct {
	svc *services.SeedService
	log zerolog.Logger
}

func NewSeedHandler(svc *services.SeedService, log zerolog.Logger) *SeedHandler {
	return &SeedHandler{svc: svc, log: log}
}

func (h *SeedHandler) Seed(c *gin.Context) {
	seeded, err := h.svc.Seed()
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if !seeded {
		c.JSON(http.StatusOK, gin.H{"message": "database already seeded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "database seeded"})
}
