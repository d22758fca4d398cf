package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"partsync/internal/middleware"
	"partsync/internal/models"
	"partsync/internal/services"
)

type CatalogHandler struct {
	svc *services.CatalogService
	log zerolog.Logger
}

func NewCatalogHandler(svc *services.CatalogService, log zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{svc: svc, log: log}
}

// ---- car brands ----

func (h *CatalogHandler) ListCarBrands(c *gin.Context) {
	brands, err := h.svc.ListCarBrands()
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, brands)
}

func (h *CatalogHandler) CreateCarBrand(c *gin.Context) {
	var b models.CarBrand
	if err := c.ShouldBindJSON(&b); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	if err := h.svc.CreateCarBrand(middleware.UserIDFromContext(c), &b); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *CatalogHandler) DeleteCarBrand(c *gin.Context) {
	if err := h.svc.DeleteCarBrand(middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ---- car models ----

func (h *CatalogHandler) ListCarModels(c *gin.Context) {
	carModels, err := h.svc.ListCarModels(c.Query("brand_id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, carModels)
}

func (h *CatalogHandler) CreateCarModel(c *gin.Context) {
	var m models.CarModel
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	if err := h.svc.CreateCarModel(middleware.UserIDFromContext(c), &m); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *CatalogHandler) UpdateCarModel(c *gin.Context) {
	var m models.CarModel
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	m.ID = c.Param("id")
	if err := h.svc.UpdateCarModel(middleware.UserIDFromContext(c), &m); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *CatalogHandler) DeleteCarModel(c *gin.Context) {
	if err := h.svc.DeleteCarModel(middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ---- product brands ----

func (h *CatalogHandler) ListProductBrands(c *gin.Context) {
	brands, err := h.svc.ListProductBrands()
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, brands)
}

func (h *CatalogHandler) CreateProductBrand(c *gin.Context) {
	var b models.ProductBrand
	if err := c.ShouldBindJSON(&b); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	if err := h.svc.CreateProductBrand(middleware.UserIDFromContext(c), &b); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *CatalogHandler) DeleteProductBrand(c *gin.Context) {
	if err := h.svc.DeleteProductBrand(middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ---- categories ----

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.svc.ListCategories(c.Query("parent_id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *CatalogHandler) CategoryTree(c *gin.Context) {
	tree, err := h.svc.CategoryTree()
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var cat models.Category
	if err := c.ShouldBindJSON(&cat); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	if err := h.svc.CreateCategory(middleware.UserIDFromContext(c), &cat); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	if err := h.svc.DeleteCategory(middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ---- search ----

func (h *CatalogHandler) Search(c *gin.Context) {
	results, err := h.svc.Search(c.Query("q"), parseIntDefault(c.Query("limit"), 20))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// ---- diagnostics ----

func (h *CatalogHandler) RecentChanges(c *gin.Context) {
	entries, err := h.svc.RecentChanges(c.Query("table"), parseIntDefault(c.Query("limit"), 100))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changes": entries})
}
