package repos

import "database/sql"

// Migrate creates the full schema. Optional text columns default to '' so
// scans stay plain strings; only tombstones and ratings are NULLable.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS car_brands (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			name_ar TEXT NOT NULL DEFAULT '',
			logo TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			deleted_at INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS car_models (
			id TEXT PRIMARY KEY,
			brand_id TEXT NOT NULL,
			name TEXT NOT NULL,
			name_ar TEXT NOT NULL DEFAULT '',
			year_start INTEGER NOT NULL DEFAULT 0,
			year_end INTEGER NOT NULL DEFAULT 0,
			image_url TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			description_ar TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			deleted_at INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS product_brands (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			name_ar TEXT NOT NULL DEFAULT '',
			logo TEXT NOT NULL DEFAULT '',
			country_of_origin TEXT NOT NULL DEFAULT '',
			country_of_origin_ar TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			deleted_at INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			name_ar TEXT NOT NULL DEFAULT '',
			parent_id TEXT NOT NULL DEFAULT '',
			icon TEXT NOT NULL DEFAULT '',
			sort_order INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			deleted_at INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			name_ar TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			description_ar TEXT NOT NULL DEFAULT '',
			price REAL NOT NULL,
			sku TEXT NOT NULL,
			product_brand_id TEXT NOT NULL DEFAULT '',
			category_id TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			images TEXT NOT NULL DEFAULT '[]',
			stock_quantity INTEGER NOT NULL DEFAULT 0,
			hidden INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			deleted_at INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS product_car_models (
			product_id TEXT NOT NULL,
			car_model_id TEXT NOT NULL,
			PRIMARY KEY (product_id, car_model_id)
		);`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			picture TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			deleted_at INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS user_sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			session_token TEXT NOT NULL UNIQUE,
			expires_at INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS carts (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL UNIQUE,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS cart_items (
			id TEXT PRIMARY KEY,
			cart_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			UNIQUE (cart_id, product_id)
		);`,
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			order_number TEXT NOT NULL,
			user_id TEXT NOT NULL,
			customer_name TEXT NOT NULL,
			customer_email TEXT NOT NULL,
			phone TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			subtotal REAL NOT NULL,
			shipping_cost REAL NOT NULL,
			total REAL NOT NULL,
			payment_method TEXT NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			delivery_address TEXT NOT NULL DEFAULT '{}',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			deleted_at INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id TEXT PRIMARY KEY,
			order_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			product_name TEXT NOT NULL,
			product_name_ar TEXT NOT NULL DEFAULT '',
			quantity INTEGER NOT NULL,
			price REAL NOT NULL,
			image_url TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS favorites (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			deleted_at INTEGER,
			UNIQUE (user_id, product_id)
		);`,
		`CREATE TABLE IF NOT EXISTS comments (
			id TEXT PRIMARY KEY,
			product_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			user_name TEXT NOT NULL,
			user_picture TEXT NOT NULL DEFAULT '',
			text TEXT NOT NULL,
			rating INTEGER,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			deleted_at INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS change_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			table_name TEXT NOT NULL,
			record_id TEXT NOT NULL,
			action TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			user_id TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_car_brands_updated ON car_brands (updated_at);`,
		`CREATE INDEX IF NOT EXISTS idx_car_models_updated ON car_models (updated_at);`,
		`CREATE INDEX IF NOT EXISTS idx_product_brands_updated ON product_brands (updated_at);`,
		`CREATE INDEX IF NOT EXISTS idx_categories_updated ON categories (updated_at);`,
		`CREATE INDEX IF NOT EXISTS idx_products_updated ON products (updated_at);`,
		`CREATE INDEX IF NOT EXISTS idx_favorites_user ON favorites (user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_comments_product ON comments (product_id);`,
		`CREATE INDEX IF NOT EXISTS idx_change_log_table ON change_log (table_name, timestamp);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
