package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"partsync/internal/middleware"
	"partsync/internal/services"
)

type CartHandler struct {
	svc *services.OrderService
	log zerolog.Logger
}

func NewCartHandler(svc *services.OrderService, log zerolog.Logger) *CartHandler {
	return &CartHandler{svc: svc, log: log}
}

func (h *CartHandler) Get(c *gin.Context) {
	cart, err := h.svc.GetCart(middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var body struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	if body.Quantity == 0 {
		body.Quantity = 1
	}
	if err := h.svc.AddToCart(middleware.UserIDFromContext(c), body.ProductID, body.Quantity); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	if err := h.svc.UpdateCartItem(middleware.UserIDFromContext(c), c.Param("productId"), body.Quantity); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.svc.ClearCart(middleware.UserIDFromContext(c)); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
