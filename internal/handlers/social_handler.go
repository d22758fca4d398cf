package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"partsync/internal/middleware"
	"partsync/internal/services"
)

type SocialHandler struct {
	svc *services.SocialService
	log zerolog.Logger
}

func NewSocialHandler(svc *services.SocialService, log zerolog.Logger) *SocialHandler {
	return &SocialHandler{svc: svc, log: log}
}

func (h *SocialHandler) ListFavorites(c *gin.Context) {
	favorites, err := h.svc.ListFavorites(middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, favorites)
}

func (h *SocialHandler) ToggleFavorite(c *gin.Context) {
	var body struct {
		ProductID string `json:"product_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.ProductID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id is required"})
		return
	}
	favorited, err := h.svc.ToggleFavorite(middleware.UserIDFromContext(c), body.ProductID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorited": favorited})
}

func (h *SocialHandler) CheckFavorite(c *gin.Context) {
	favorited, err := h.svc.IsFavorite(middleware.UserIDFromContext(c), c.Param("productId"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorited": favorited})
}

// ---- comments ----

func (h *SocialHandler) ListComments(c *gin.Context) {
	comments, err := h.svc.ListComments(
		middleware.UserIDFromContext(c),
		c.Param("id"),
		parseIntDefault(c.Query("skip"), 0),
		parseIntDefault(c.Query("limit"), 50),
	)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *SocialHandler) AddComment(c *gin.Context) {
	var body struct {
		Text   string `json:"text"`
		Rating *int   `json:"rating"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	comment, err := h.svc.AddComment(middleware.UserIDFromContext(c), c.Param("id"), body.Text, body.Rating)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}
