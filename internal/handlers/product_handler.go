package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"partsync/internal/middleware"
	"partsync/internal/models"
	"partsync/internal/services"
)

type ProductHandler struct {
	catalog *services.CatalogService
	social  *services.SocialService
	log     zerolog.Logger
}

func NewProductHandler(catalog *services.CatalogService, social *services.SocialService, log zerolog.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, social: social, log: log}
}

func (h *ProductHandler) List(c *gin.Context) {
	filter := models.ProductFilter{
		CategoryID:     c.Query("category_id"),
		ProductBrandID: c.Query("product_brand_id"),
		CarModelID:     c.Query("car_model_id"),
		CarBrandID:     c.Query("car_brand_id"),
		MinPrice:       parseOptionalFloat(c.Query("min_price")),
		MaxPrice:       parseOptionalFloat(c.Query("max_price")),
		IncludeHidden:  c.Query("include_hidden") == "true",
		Skip:           parseIntDefault(c.Query("skip"), 0),
		Limit:          parseIntDefault(c.Query("limit"), 50),
	}
	products, total, err := h.catalog.ListProducts(filter)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "total": total})
}

func (h *ProductHandler) Get(c *gin.Context) {
	p, err := h.catalog.GetProduct(c.Param("id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Create(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	if err := h.catalog.CreateProduct(middleware.UserIDFromContext(c), &p); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Update(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	p.ID = c.Param("id")
	if err := h.catalog.UpdateProduct(middleware.UserIDFromContext(c), &p); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) SetPrice(c *gin.Context) {
	var body struct {
		Price float64 `json:"price"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	if err := h.catalog.SetProductPrice(middleware.UserIDFromContext(c), c.Param("id"), body.Price); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *ProductHandler) SetHidden(c *gin.Context) {
	var body struct {
		Hidden bool `json:"hidden_status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	if err := h.catalog.SetProductHidden(middleware.UserIDFromContext(c), c.Param("id"), body.Hidden); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.catalog.DeleteProduct(middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// Rating aggregates the product's rated comments.
func (h *ProductHandler) Rating(c *gin.Context) {
	count, avg, err := h.social.ProductRating(c.Param("id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count, "average": avg})
}
