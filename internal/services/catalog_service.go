package services

import (
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"

	"partsync/internal/cache"
	"partsync/internal/models"
	"partsync/internal/realtime"
	"partsync/internal/repos"
)

// CatalogService owns the server-authoritative catalog: car brands and
// models, product brands, categories and products. Every mutation lands in
// one transaction with its ledger row, then invalidates the cache and
// broadcasts a sync hint.
type CatalogService struct {
	store *repos.Store
	cache *cache.Cache
	hub   *realtime.Hub
	log   zerolog.Logger
}

func NewCatalogService(store *repos.Store, c *cache.Cache, hub *realtime.Hub, log zerolog.Logger) *CatalogService {
	return &CatalogService{store: store, cache: c, hub: hub, log: log}
}

func (s *CatalogService) afterWrite(table string) {
	s.cache.InvalidateTable(table)
	s.hub.NotifyTables(table)
}

// cachedList serves a collection read from the cache, falling back to load
// and re-priming on miss. Snapshots are stored as marshaled JSON so the
// cache never hands out aliased slices.
func cachedList[T any](c *cache.Cache, key string, load func() ([]T, error)) ([]T, error) {
	if snapshot, ok := c.Get(key); ok {
		var out []T
		if err := json.Unmarshal(snapshot, &out); err == nil {
			return out, nil
		}
	}
	out, err := load()
	if err != nil {
		return nil, err
	}
	if snapshot, err := json.Marshal(out); err == nil {
		c.Set(key, snapshot)
	}
	return out, nil
}

// ---- car brands ----

func (s *CatalogService) ListCarBrands() ([]models.CarBrand, error) {
	return cachedList(s.cache, cache.KeyCarBrands, s.store.ListCarBrands)
}

func (s *CatalogService) CreateCarBrand(userID string, b *models.CarBrand) error {
	if strings.TrimSpace(b.Name) == "" {
		return invalidf("car brand name is required")
	}
	err := s.store.WithTx(func(tx *sql.Tx) error {
		if err := s.store.InsertCarBrand(tx, b); err != nil {
			return err
		}
		return s.store.AppendChange(tx, models.TableCarBrands, b.ID, models.ActionCreated, userID)
	})
	if err != nil {
		return err
	}
	s.afterWrite(models.TableCarBrands)
	return nil
}

func (s *CatalogService) DeleteCarBrand(userID, id string) error {
	err := s.store.WithTx(func(tx *sql.Tx) error {
		if err := s.store.SoftDeleteCarBrand(tx, id); err != nil {
			return err
		}
		return s.store.AppendChange(tx, models.TableCarBrands, id, models.ActionDeleted, userID)
	})
	if err != nil {
		return err
	}
	s.afterWrite(models.TableCarBrands)
	return nil
}

// ---- car models ----

func (s *CatalogService) ListCarModels(brandID string) ([]models.CarModel, error) {
	if brandID != "" {
		// Brand-scoped listings bypass the cache; only the full collection
		// snapshot is kept.
		return s.store.ListCarModels(brandID)
	}
	return cachedList(s.cache, cache.KeyCarModels, func() ([]models.CarModel, error) {
		return s.store.ListCarModels("")
	})
}

func (s *CatalogService) CreateCarModel(userID string, m *models.CarModel) error {
	if strings.TrimSpace(m.Name) == "" || m.BrandID == "" {
		return invalidf("car model name and brand_id are required")
	}
	err := s.store.WithTx(func(tx *sql.Tx) error {
		if err := s.store.InsertCarModel(tx, m); err != nil {
			return err
		}
		return s.store.AppendChange(tx, models.TableCarModels, m.ID, models.ActionCreated, userID)
	})
	if err != nil {
		return err
	}
	s.afterWrite(models.TableCarModels)
	return nil
}

func (s *CatalogService) UpdateCarModel(userID string, m *models.CarModel) error {
	if m.ID == "" {
		return invalidf("car model id is required")
	}
	err := s.store.WithTx(func(tx *sql.Tx) error {
		if err := s.store.UpdateCarModel(tx, m); err != nil {
			return err
		}
		return s.store.AppendChange(tx, models.TableCarModels, m.ID, models.ActionUpdated, userID)
	})
	if err != nil {
		return err
	}
	s.afterWrite(models.TableCarModels)
	return nil
}

func (s *CatalogService) DeleteCarModel(userID, id string) error {
	err := s.store.WithTx(func(tx *sql.Tx) error {
		if err := s.store.SoftDeleteCarModel(tx, id); err != nil {
			return err
		}
		return s.store.AppendChange(tx, models.TableCarModels, id, models.ActionDeleted, userID)
	})
	if err != nil {
		return err
	}
	s.afterWrite(models.TableCarModels)
	return nil
}

// ---- product brands ----

func (s *CatalogService) ListProductBrands() ([]models.ProductBrand, error) {
	return cachedList(s.cache, cache.KeyProductBrands, s.store.ListProductBrands)
}

func (s *CatalogService) CreateProductBrand(userID string, b *models.ProductBrand) error {
	if strings.TrimSpace(b.Name) == "" {
		return invalidf("product brand name is required")
	}
	err := s.store.WithTx(func(tx *sql.Tx) error {
		if err := s.store.InsertProductBrand(tx, b); err != nil {
			return err
		}
		return s.store.AppendChange(tx, models.TableProductBrands, b.ID, models.ActionCreated, userID)
	})
	if err != nil {
		return err
	}
	s.afterWrite(models.TableProductBrands)
	return nil
}

func (s *CatalogService) DeleteProductBrand(userID, id string) error {
	err := s.store.WithTx(func(tx *sql.Tx) error {
		if err := s.store.SoftDeleteProductBrand(tx, id); err != nil {
			return err
		}
		return s.store.AppendChange(tx, models.TableProductBrands, id, models.ActionDeleted, userID)
	})
	if err != nil {
		return err
	}
	s.afterWrite(models.TableProductBrands)
	return nil
}

// ---- categories ----

func (s *CatalogService) ListCategories(parentID string) ([]models.Category, error) {
	if parentID != "" {
		return s.store.ListCategories(parentID)
	}
	return cachedList(s.cache, cache.KeyCategories, func() ([]models.Category, error) {
		return s.store.ListCategories("")
	})
}

// CategoryTree assembles the full hierarchy in memory from one query.
// Orphans whose parent was deleted surface as roots rather than vanish.
func (s *CatalogService) CategoryTree() ([]*models.CategoryNode, error) {
	return cachedList(s.cache, cache.KeyCategoryTree, func() ([]*models.CategoryNode, error) {
		all, err := s.store.ListAllCategories()
		if err != nil {
			return nil, err
		}
		nodes := make(map[string]*models.CategoryNode, len(all))
		for _, c := range all {
			nodes[c.ID] = &models.CategoryNode{Category: c, Children: []*models.CategoryNode{}}
		}
		roots := []*models.CategoryNode{}
		for _, c := range all {
			node := nodes[c.ID]
			if parent, ok := nodes[c.ParentID]; ok && c.ParentID != "" {
				parent.Children = append(parent.Children, node)
			} else {
				roots = append(roots, node)
			}
		}
		return roots, nil
	})
}

func (s *CatalogService) CreateCategory(userID string, c *models.Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return invalidf("category name is required")
	}
	err := s.store.WithTx(func(tx *sql.Tx) error {
		if err := s.store.InsertCategory(tx, c); err != nil {
			return err
		}
		return s.store.AppendChange(tx, models.TableCategories, c.ID, models.ActionCreated, userID)
	})
	if err != nil {
		return err
	}
	s.afterWrite(models.TableCategories)
	return nil
}

func (s *CatalogService) DeleteCategory(userID, id string) error {
	err := s.store.WithTx(func(tx *sql.Tx) error {
		if err := s.store.SoftDeleteCategory(tx, id); err != nil {
			return err
		}
		return s.store.AppendChange(tx, models.TableCategories, id, models.ActionDeleted, userID)
	})
	if err != nil {
		return err
	}
	s.afterWrite(models.TableCategories)
	return nil
}

// ---- products ----

func (s *CatalogService) GetProduct(id string) (models.Product, error) {
	if snapshot, ok := s.cache.Get(cache.ProductKey(id)); ok {
		var p models.Product
		if err := json.Unmarshal(snapshot, &p); err == nil {
			return p, nil
		}
	}
	p, err := s.store.GetProduct(s.store.DB(), id)
	if err != nil {
		return p, err
	}
	if snapshot, err := json.Marshal(p); err == nil {
		s.cache.Set(cache.ProductKey(id), snapshot)
	}
	return p, nil
}

func (s *CatalogService) ListProducts(f models.ProductFilter) ([]models.Product, int, error) {
	return s.store.ListProducts(f)
}

func (s *CatalogService) CreateProduct(userID string, p *models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return invalidf("product name is required")
	}
	if p.Price < 0 {
		return invalidf("product price must not be negative")
	}
	err := s.store.WithTx(func(tx *sql.Tx) error {
		if err := s.store.InsertProduct(tx, p); err != nil {
			return err
		}
		return s.store.AppendChange(tx, models.TableProducts, p.ID, models.ActionCreated, userID)
	})
	if err != nil {
		return err
	}
	s.afterWrite(models.TableProducts)
	return nil
}

func (s *CatalogService) UpdateProduct(userID string, p *models.Product) error {
	if p.ID == "" {
		return invalidf("product id is required")
	}
	if p.Price < 0 {
		return invalidf("product price must not be negative")
	}
	err := s.store.WithTx(func(tx *sql.Tx) error {
		if err := s.store.UpdateProduct(tx, p); err != nil {
			return err
		}
		return s.store.AppendChange(tx, models.TableProducts, p.ID, models.ActionUpdated, userID)
	})
	if err != nil {
		return err
	}
	s.afterWrite(models.TableProducts)
	return nil
}

func (s *CatalogService) SetProductPrice(userID, id string, price float64) error {
	if price < 0 {
		return invalidf("product price must not be negative")
	}
	err := s.store.WithTx(func(tx *sql.Tx) error {
		if err := s.store.SetProductPrice(tx, id, price); err != nil {
			return err
		}
		return s.store.AppendChange(tx, models.TableProducts, id, models.ActionUpdated, userID)
	})
	if err != nil {
		return err
	}
	s.afterWrite(models.TableProducts)
	return nil
}

func (s *CatalogService) SetProductHidden(userID, id string, hidden bool) error {
	err := s.store.WithTx(func(tx *sql.Tx) error {
		if err := s.store.SetProductHidden(tx, id, hidden); err != nil {
			return err
		}
		return s.store.AppendChange(tx, models.TableProducts, id, models.ActionUpdated, userID)
	})
	if err != nil {
		return err
	}
	s.afterWrite(models.TableProducts)
	return nil
}

func (s *CatalogService) DeleteProduct(userID, id string) error {
	err := s.store.WithTx(func(tx *sql.Tx) error {
		if err := s.store.SoftDeleteProduct(tx, id); err != nil {
			return err
		}
		return s.store.AppendChange(tx, models.TableProducts, id, models.ActionDeleted, userID)
	})
	if err != nil {
		return err
	}
	s.afterWrite(models.TableProducts)
	return nil
}

// ---- search ----

// SearchResults groups per-entity matches for the storefront search box.
type SearchResults struct {
	Products      []models.Product      `json:"products"`
	CarBrands     []models.CarBrand     `json:"car_brands"`
	CarModels     []models.CarModel     `json:"car_models"`
	ProductBrands []models.ProductBrand `json:"product_brands"`
	Categories    []models.Category     `json:"categories"`
}

func (s *CatalogService) Search(term string, limit int) (SearchResults, error) {
	var res SearchResults
	term = strings.TrimSpace(term)
	if term == "" {
		return res, invalidf("search term is required")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	var err error
	if res.Products, err = s.store.SearchProducts(term, limit); err != nil {
		return res, err
	}
	if res.CarBrands, err = s.store.SearchCarBrands(term, limit); err != nil {
		return res, err
	}
	if res.CarModels, err = s.store.SearchCarModels(term, limit); err != nil {
		return res, err
	}
	if res.ProductBrands, err = s.store.SearchProductBrands(term, limit); err != nil {
		return res, err
	}
	if res.Categories, err = s.store.SearchCategories(term, limit); err != nil {
		return res, err
	}
	return res, nil
}

// RecentChanges surfaces the audit ledger for diagnostics.
func (s *CatalogService) RecentChanges(table string, limit int) ([]models.ChangeEntry, error) {
	if table != "" {
		if _, ok := syncPolicies[table]; !ok {
			return nil, invalidf("unknown table %q", table)
		}
	}
	return s.store.RecentChanges(table, limit)
}
