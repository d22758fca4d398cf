package repos

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"partsync/internal/models"
)

func tombstone(n sql.NullInt64) *int64 {
	if n.Valid {
		v := n.Int64
		return &v
	}
	return nil
}

func (s *Store) stampNew(sy *models.Syncable) {
	if sy.ID == "" {
		sy.ID = uuid.NewString()
	}
	now := s.clock.NowMillis()
	sy.CreatedAt = now
	sy.UpdatedAt = now
}

// ---- car brands ----

const carBrandCols = `id, name, name_ar, logo, created_at, updated_at, deleted_at`

func scanCarBrand(row interface{ Scan(dest ...any) error }) (models.CarBrand, error) {
	var b models.CarBrand
	var del sql.NullInt64
	err := row.Scan(&b.ID, &b.Name, &b.NameAr, &b.Logo, &b.CreatedAt, &b.UpdatedAt, &del)
	b.DeletedAt = tombstone(del)
	return b, err
}

func (s *Store) InsertCarBrand(q DBTX, b *models.CarBrand) error {
	s.stampNew(&b.Syncable)
	_, err := q.Exec(`INSERT INTO car_brands (`+carBrandCols+`) VALUES (?, ?, ?, ?, ?, ?, NULL)`,
		b.ID, b.Name, b.NameAr, b.Logo, b.CreatedAt, b.UpdatedAt)
	return err
}

func (s *Store) ListCarBrands() ([]models.CarBrand, error) {
	rows, err := s.db.Query(`SELECT ` + carBrandCols + ` FROM car_brands WHERE deleted_at IS NULL ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.CarBrand{}
	for rows.Next() {
		b, err := scanCarBrand(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) SoftDeleteCarBrand(q DBTX, id string) error {
	return s.softDelete(q, "car_brands", id)
}

func (s *Store) CarBrandsChangedSince(since int64) ([]models.CarBrand, error) {
	rows, err := s.db.Query(`SELECT `+carBrandCols+` FROM car_brands WHERE updated_at > ?`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.CarBrand{}
	for rows.Next() {
		b, err := scanCarBrand(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ---- car models ----

const carModelCols = `id, brand_id, name, name_ar, year_start, year_end, image_url, description, description_ar, created_at, updated_at, deleted_at`

func scanCarModel(row interface{ Scan(dest ...any) error }) (models.CarModel, error) {
	var m models.CarModel
	var del sql.NullInt64
	err := row.Scan(&m.ID, &m.BrandID, &m.Name, &m.NameAr, &m.YearStart, &m.YearEnd,
		&m.ImageURL, &m.Description, &m.DescriptionAr, &m.CreatedAt, &m.UpdatedAt, &del)
	m.DeletedAt = tombstone(del)
	return m, err
}

func (s *Store) InsertCarModel(q DBTX, m *models.CarModel) error {
	s.stampNew(&m.Syncable)
	_, err := q.Exec(`INSERT INTO car_models (`+carModelCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		m.ID, m.BrandID, m.Name, m.NameAr, m.YearStart, m.YearEnd,
		m.ImageURL, m.Description, m.DescriptionAr, m.CreatedAt, m.UpdatedAt)
	return err
}

func (s *Store) UpdateCarModel(q DBTX, m *models.CarModel) error {
	m.UpdatedAt = s.clock.NowMillis()
	res, err := q.Exec(`UPDATE car_models SET brand_id = ?, name = ?, name_ar = ?, year_start = ?, year_end = ?,
		image_url = ?, description = ?, description_ar = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		m.BrandID, m.Name, m.NameAr, m.YearStart, m.YearEnd,
		m.ImageURL, m.Description, m.DescriptionAr, m.UpdatedAt, m.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) GetCarModel(id string) (models.CarModel, error) {
	m, err := scanCarModel(s.db.QueryRow(`SELECT `+carModelCols+` FROM car_models WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return m, ErrNotFound
	}
	return m, err
}

// ListCarModels returns non-deleted models, optionally restricted to a brand.
func (s *Store) ListCarModels(brandID string) ([]models.CarModel, error) {
	query := `SELECT ` + carModelCols + ` FROM car_models WHERE deleted_at IS NULL`
	args := []any{}
	if brandID != "" {
		query += ` AND brand_id = ?`
		args = append(args, brandID)
	}
	rows, err := s.db.Query(query+` ORDER BY name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.CarModel{}
	for rows.Next() {
		m, err := scanCarModel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) SoftDeleteCarModel(q DBTX, id string) error {
	return s.softDelete(q, "car_models", id)
}

func (s *Store) CarModelsChangedSince(since int64) ([]models.CarModel, error) {
	rows, err := s.db.Query(`SELECT `+carModelCols+` FROM car_models WHERE updated_at > ?`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.CarModel{}
	for rows.Next() {
		m, err := scanCarModel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ---- product brands ----

const productBrandCols = `id, name, name_ar, logo, country_of_origin, country_of_origin_ar, created_at, updated_at, deleted_at`

func scanProductBrand(row interface{ Scan(dest ...any) error }) (models.ProductBrand, error) {
	var b models.ProductBrand
	var del sql.NullInt64
	err := row.Scan(&b.ID, &b.Name, &b.NameAr, &b.Logo, &b.CountryOfOrigin, &b.CountryOfOriginAr,
		&b.CreatedAt, &b.UpdatedAt, &del)
	b.DeletedAt = tombstone(del)
	return b, err
}

func (s *Store) InsertProductBrand(q DBTX, b *models.ProductBrand) error {
	s.stampNew(&b.Syncable)
	_, err := q.Exec(`INSERT INTO product_brands (`+productBrandCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		b.ID, b.Name, b.NameAr, b.Logo, b.CountryOfOrigin, b.CountryOfOriginAr, b.CreatedAt, b.UpdatedAt)
	return err
}

func (s *Store) ListProductBrands() ([]models.ProductBrand, error) {
	rows, err := s.db.Query(`SELECT ` + productBrandCols + ` FROM product_brands WHERE deleted_at IS NULL ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.ProductBrand{}
	for rows.Next() {
		b, err := scanProductBrand(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) SoftDeleteProductBrand(q DBTX, id string) error {
	return s.softDelete(q, "product_brands", id)
}

func (s *Store) ProductBrandsChangedSince(since int64) ([]models.ProductBrand, error) {
	rows, err := s.db.Query(`SELECT `+productBrandCols+` FROM product_brands WHERE updated_at > ?`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.ProductBrand{}
	for rows.Next() {
		b, err := scanProductBrand(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ---- categories ----

const categoryCols = `id, name, name_ar, parent_id, icon, sort_order, created_at, updated_at, deleted_at`

func scanCategory(row interface{ Scan(dest ...any) error }) (models.Category, error) {
	var c models.Category
	var del sql.NullInt64
	err := row.Scan(&c.ID, &c.Name, &c.NameAr, &c.ParentID, &c.Icon, &c.SortOrder,
		&c.CreatedAt, &c.UpdatedAt, &del)
	c.DeletedAt = tombstone(del)
	return c, err
}

func (s *Store) InsertCategory(q DBTX, c *models.Category) error {
	s.stampNew(&c.Syncable)
	_, err := q.Exec(`INSERT INTO categories (`+categoryCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		c.ID, c.Name, c.NameAr, c.ParentID, c.Icon, c.SortOrder, c.CreatedAt, c.UpdatedAt)
	return err
}

// ListCategories returns non-deleted categories under the given parent;
// an empty parent means the root level.
func (s *Store) ListCategories(parentID string) ([]models.Category, error) {
	rows, err := s.db.Query(`SELECT `+categoryCols+` FROM categories
		WHERE deleted_at IS NULL AND parent_id = ? ORDER BY sort_order, name`, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCategories(rows)
}

func (s *Store) ListAllCategories() ([]models.Category, error) {
	rows, err := s.db.Query(`SELECT ` + categoryCols + ` FROM categories WHERE deleted_at IS NULL ORDER BY sort_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCategories(rows)
}

func (s *Store) ChildCategoryIDs(parentID string) ([]string, error) {
	rows, err := s.db.Query(`SELECT id FROM categories WHERE deleted_at IS NULL AND parent_id = ?`, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func collectCategories(rows *sql.Rows) ([]models.Category, error) {
	out := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) SoftDeleteCategory(q DBTX, id string) error {
	return s.softDelete(q, "categories", id)
}

func (s *Store) CategoriesChangedSince(since int64) ([]models.Category, error) {
	rows, err := s.db.Query(`SELECT `+categoryCols+` FROM categories WHERE updated_at > ?`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCategories(rows)
}

// ---- shared soft delete ----

// softDelete stamps the tombstone and bumps updated_at so the deletion is
// visible to pull deltas. The table name is always one of our constants,
// never client input.
func (s *Store) softDelete(q DBTX, table, id string) error {
	now := s.clock.NowMillis()
	res, err := q.Exec(fmt.Sprintf(`UPDATE %s SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`, table),
		now, now, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- products ----

const productCols = `id, name, name_ar, description, description_ar, price, sku, product_brand_id, category_id, image_url, images, stock_quantity, hidden, created_at, updated_at, deleted_at`

func scanProduct(row interface{ Scan(dest ...any) error }) (models.Product, error) {
	var p models.Product
	var del sql.NullInt64
	var images string
	err := row.Scan(&p.ID, &p.Name, &p.NameAr, &p.Description, &p.DescriptionAr, &p.Price, &p.SKU,
		&p.ProductBrandID, &p.CategoryID, &p.ImageURL, &images, &p.StockQuantity, &p.Hidden,
		&p.CreatedAt, &p.UpdatedAt, &del)
	if err != nil {
		return p, err
	}
	p.DeletedAt = tombstone(del)
	if err := json.Unmarshal([]byte(images), &p.Images); err != nil {
		p.Images = nil
	}
	return p, nil
}

func imagesJSON(images []string) string {
	if images == nil {
		images = []string{}
	}
	b, _ := json.Marshal(images)
	return string(b)
}

func (s *Store) InsertProduct(q DBTX, p *models.Product) error {
	s.stampNew(&p.Syncable)
	_, err := q.Exec(`INSERT INTO products (`+productCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		p.ID, p.Name, p.NameAr, p.Description, p.DescriptionAr, p.Price, p.SKU,
		p.ProductBrandID, p.CategoryID, p.ImageURL, imagesJSON(p.Images), p.StockQuantity, p.Hidden,
		p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return err
	}
	return s.ReplaceProductCarModels(q, p.ID, p.CarModelIDs)
}

func (s *Store) UpdateProduct(q DBTX, p *models.Product) error {
	p.UpdatedAt = s.clock.NowMillis()
	res, err := q.Exec(`UPDATE products SET name = ?, name_ar = ?, description = ?, description_ar = ?,
		price = ?, sku = ?, product_brand_id = ?, category_id = ?, image_url = ?, images = ?,
		stock_quantity = ?, hidden = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		p.Name, p.NameAr, p.Description, p.DescriptionAr,
		p.Price, p.SKU, p.ProductBrandID, p.CategoryID, p.ImageURL, imagesJSON(p.Images),
		p.StockQuantity, p.Hidden, p.UpdatedAt, p.ID)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	return s.ReplaceProductCarModels(q, p.ID, p.CarModelIDs)
}

// ReplaceProductCarModels rewrites the association set and bumps the owning
// product's updated_at in the same statement batch. The join table has no
// timestamps, so the parent bump is what makes membership changes visible
// to pull deltas.
func (s *Store) ReplaceProductCarModels(q DBTX, productID string, carModelIDs []string) error {
	if _, err := q.Exec(`DELETE FROM product_car_models WHERE product_id = ?`, productID); err != nil {
		return err
	}
	for _, modelID := range carModelIDs {
		if _, err := q.Exec(`INSERT INTO product_car_models (product_id, car_model_id) VALUES (?, ?)`,
			productID, modelID); err != nil {
			return err
		}
	}
	_, err := q.Exec(`UPDATE products SET updated_at = ? WHERE id = ?`, s.clock.NowMillis(), productID)
	return err
}

func (s *Store) CarModelIDsForProduct(q DBTX, productID string) ([]string, error) {
	rows, err := q.Query(`SELECT car_model_id FROM product_car_models WHERE product_id = ? ORDER BY car_model_id`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetProductPrice and SetProductHidden are narrow patches that still bump
// updated_at so the change syncs.
func (s *Store) SetProductPrice(q DBTX, id string, price float64) error {
	res, err := q.Exec(`UPDATE products SET price = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		price, s.clock.NowMillis(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) SetProductHidden(q DBTX, id string, hidden bool) error {
	res, err := q.Exec(`UPDATE products SET hidden = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		hidden, s.clock.NowMillis(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// GetProduct works inside and outside transactions; checkout reads product
// prices under the same transaction that writes the order.
func (s *Store) GetProduct(q DBTX, id string) (models.Product, error) {
	p, err := scanProduct(q.QueryRow(`SELECT `+productCols+` FROM products WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return p, ErrNotFound
	}
	if err != nil {
		return p, err
	}
	p.CarModelIDs, err = s.CarModelIDsForProduct(q, p.ID)
	return p, err
}

func (s *Store) SoftDeleteProduct(q DBTX, id string) error {
	return s.softDelete(q, "products", id)
}

// ListProducts applies the filter and returns the page plus the unpaginated
// total. Category filtering includes direct subcategories, matching how the
// storefront groups listings.
func (s *Store) ListProducts(f models.ProductFilter) ([]models.Product, int, error) {
	where := []string{`p.deleted_at IS NULL`}
	args := []any{}
	joins := ""

	if !f.IncludeHidden {
		where = append(where, `p.hidden = 0`)
	}
	if f.CategoryID != "" {
		childIDs, err := s.ChildCategoryIDs(f.CategoryID)
		if err != nil {
			return nil, 0, err
		}
		ids := append([]string{f.CategoryID}, childIDs...)
		where = append(where, `p.category_id IN (?`+strings.Repeat(", ?", len(ids)-1)+`)`)
		for _, id := range ids {
			args = append(args, id)
		}
	}
	if f.ProductBrandID != "" {
		where = append(where, `p.product_brand_id = ?`)
		args = append(args, f.ProductBrandID)
	}
	if f.CarModelID != "" {
		joins = ` JOIN product_car_models pcm ON pcm.product_id = p.id`
		where = append(where, `pcm.car_model_id = ?`)
		args = append(args, f.CarModelID)
	} else if f.CarBrandID != "" {
		joins = ` JOIN product_car_models pcm ON pcm.product_id = p.id
			JOIN car_models cm ON cm.id = pcm.car_model_id`
		where = append(where, `cm.brand_id = ?`)
		args = append(args, f.CarBrandID)
	}
	if f.MinPrice != nil {
		where = append(where, `p.price >= ?`)
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		where = append(where, `p.price <= ?`)
		args = append(args, *f.MaxPrice)
	}

	cond := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(DISTINCT p.id) FROM products p`+joins+` WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT DISTINCT ` + prefixedProductCols() + ` FROM products p` + joins +
		` WHERE ` + cond + ` ORDER BY p.created_at DESC LIMIT ? OFFSET ?`
	rows, err := s.db.Query(query, append(args, limit, f.Skip)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for i := range out {
		out[i].CarModelIDs, err = s.CarModelIDsForProduct(s.db, out[i].ID)
		if err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

func prefixedProductCols() string {
	cols := strings.Split(productCols, ", ")
	for i, c := range cols {
		cols[i] = "p." + c
	}
	return strings.Join(cols, ", ")
}

func (s *Store) ListAllProducts() ([]models.Product, error) {
	rows, err := s.db.Query(`SELECT ` + productCols + ` FROM products WHERE deleted_at IS NULL ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) SearchProducts(term string, limit int) ([]models.Product, error) {
	pattern := "%" + term + "%"
	rows, err := s.db.Query(`SELECT `+productCols+` FROM products
		WHERE deleted_at IS NULL AND hidden = 0
		AND (name LIKE ? OR name_ar LIKE ? OR sku LIKE ?) LIMIT ?`,
		pattern, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) ProductsChangedSince(since int64) ([]models.Product, error) {
	rows, err := s.db.Query(`SELECT `+productCols+` FROM products WHERE updated_at > ?`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		var err error
		out[i].CarModelIDs, err = s.CarModelIDsForProduct(s.db, out[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ---- cross-entity search ----

func (s *Store) SearchCarBrands(term string, limit int) ([]models.CarBrand, error) {
	pattern := "%" + term + "%"
	rows, err := s.db.Query(`SELECT `+carBrandCols+` FROM car_brands
		WHERE deleted_at IS NULL AND (name LIKE ? OR name_ar LIKE ?) LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.CarBrand{}
	for rows.Next() {
		b, err := scanCarBrand(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) SearchCarModels(term string, limit int) ([]models.CarModel, error) {
	pattern := "%" + term + "%"
	rows, err := s.db.Query(`SELECT `+carModelCols+` FROM car_models
		WHERE deleted_at IS NULL AND (name LIKE ? OR name_ar LIKE ?) LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.CarModel{}
	for rows.Next() {
		m, err := scanCarModel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) SearchProductBrands(term string, limit int) ([]models.ProductBrand, error) {
	pattern := "%" + term + "%"
	rows, err := s.db.Query(`SELECT `+productBrandCols+` FROM product_brands
		WHERE deleted_at IS NULL AND name LIKE ? LIMIT ?`, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.ProductBrand{}
	for rows.Next() {
		b, err := scanProductBrand(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) SearchCategories(term string, limit int) ([]models.Category, error) {
	pattern := "%" + term + "%"
	rows, err := s.db.Query(`SELECT `+categoryCols+` FROM categories
		WHERE deleted_at IS NULL AND (name LIKE ? OR name_ar LIKE ?) LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCategories(rows)
}
