package repos

import (
	"database/sql"

	"github.com/google/uuid"

	"partsync/internal/models"
)

// GetOrCreateCart returns the user's cart, creating it on first use.
func (s *Store) GetOrCreateCart(q DBTX, userID string) (models.Cart, error) {
	var c models.Cart
	err := q.QueryRow(`SELECT id, user_id, created_at FROM carts WHERE user_id = ?`, userID).
		Scan(&c.ID, &c.UserID, &c.CreatedAt)
	if err == nil {
		return c, nil
	}
	if err != sql.ErrNoRows {
		return c, err
	}
	c = models.Cart{ID: uuid.NewString(), UserID: userID, CreatedAt: s.clock.NowMillis()}
	_, err = q.Exec(`INSERT INTO carts (id, user_id, created_at) VALUES (?, ?, ?)`, c.ID, c.UserID, c.CreatedAt)
	return c, err
}

func (s *Store) GetCart(userID string) (models.Cart, error) {
	var c models.Cart
	err := s.db.QueryRow(`SELECT id, user_id, created_at FROM carts WHERE user_id = ?`, userID).
		Scan(&c.ID, &c.UserID, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	return c, err
}

func (s *Store) ListCartItems(q DBTX, cartID string) ([]models.CartItem, error) {
	rows, err := q.Query(`SELECT id, cart_id, product_id, quantity FROM cart_items WHERE cart_id = ?`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.CartItem{}
	for rows.Next() {
		var it models.CartItem
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// AddCartItem accumulates quantity when the product is already in the cart.
func (s *Store) AddCartItem(q DBTX, cartID, productID string, quantity int) error {
	_, err := q.Exec(`INSERT INTO cart_items (id, cart_id, product_id, quantity) VALUES (?, ?, ?, ?)
		ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = quantity + excluded.quantity`,
		uuid.NewString(), cartID, productID, quantity)
	return err
}

// SetCartItemQuantity overwrites the quantity; zero or less removes the row.
func (s *Store) SetCartItemQuantity(q DBTX, cartID, productID string, quantity int) error {
	if quantity <= 0 {
		_, err := q.Exec(`DELETE FROM cart_items WHERE cart_id = ? AND product_id = ?`, cartID, productID)
		return err
	}
	_, err := q.Exec(`UPDATE cart_items SET quantity = ? WHERE cart_id = ? AND product_id = ?`,
		quantity, cartID, productID)
	return err
}

func (s *Store) ClearCart(q DBTX, cartID string) error {
	_, err := q.Exec(`DELETE FROM cart_items WHERE cart_id = ?`, cartID)
	return err
}
