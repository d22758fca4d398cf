package repos

import (
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"partsync/internal/models"
)

const orderCols = `id, order_number, user_id, customer_name, customer_email, phone, status, subtotal, shipping_cost, total, payment_method, notes, delivery_address, created_at, updated_at, deleted_at`

func scanOrder(row interface{ Scan(dest ...any) error }) (models.Order, error) {
	var o models.Order
	var del sql.NullInt64
	var addr string
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.CustomerName, &o.CustomerEmail, &o.Phone,
		&o.Status, &o.Subtotal, &o.ShippingCost, &o.Total, &o.PaymentMethod, &o.Notes, &addr,
		&o.CreatedAt, &o.UpdatedAt, &del)
	if err != nil {
		return o, err
	}
	o.DeletedAt = tombstone(del)
	_ = json.Unmarshal([]byte(addr), &o.DeliveryAddress)
	return o, nil
}

func (s *Store) InsertOrder(q DBTX, o *models.Order) error {
	s.stampNew(&o.Syncable)
	if o.Status == "" {
		o.Status = models.OrderPending
	}
	addr, _ := json.Marshal(o.DeliveryAddress)
	_, err := q.Exec(`INSERT INTO orders (`+orderCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		o.ID, o.OrderNumber, o.UserID, o.CustomerName, o.CustomerEmail, o.Phone,
		o.Status, o.Subtotal, o.ShippingCost, o.Total, o.PaymentMethod, o.Notes, string(addr),
		o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return err
	}
	for i := range o.Items {
		it := &o.Items[i]
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		it.OrderID = o.ID
		if _, err := q.Exec(`INSERT INTO order_items (id, order_id, product_id, product_name, product_name_ar, quantity, price, image_url)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			it.ID, it.OrderID, it.ProductID, it.ProductName, it.ProductNameAr, it.Quantity, it.Price, it.ImageURL); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) GetOrder(id string) (models.Order, error) {
	o, err := scanOrder(s.db.QueryRow(`SELECT `+orderCols+` FROM orders WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return o, ErrNotFound
	}
	if err != nil {
		return o, err
	}
	o.Items, err = s.listOrderItems(o.ID)
	return o, err
}

func (s *Store) listOrderItems(orderID string) ([]models.OrderItem, error) {
	rows, err := s.db.Query(`SELECT id, order_id, product_id, product_name, product_name_ar, quantity, price, image_url
		FROM order_items WHERE order_id = ?`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.OrderItem{}
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.ProductNameAr,
			&it.Quantity, &it.Price, &it.ImageURL); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *Store) ListOrdersByUser(userID string) ([]models.Order, error) {
	return s.listOrders(`WHERE user_id = ?`, userID)
}

func (s *Store) ListAllOrders() ([]models.Order, error) {
	return s.listOrders(``)
}

func (s *Store) listOrders(cond string, args ...any) ([]models.Order, error) {
	rows, err := s.db.Query(`SELECT `+orderCols+` FROM orders `+cond+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		var err error
		out[i].Items, err = s.listOrderItems(out[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) SetOrderStatus(q DBTX, id, status string) error {
	res, err := q.Exec(`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		status, s.clock.NowMillis(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
