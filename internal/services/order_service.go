package services

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"partsync/internal/models"
	"partsync/internal/realtime"
	"partsync/internal/repos"
)

// OrderService covers the cart and the checkout path. Carts are server-side
// and per-user; checkout snapshots the cart into an immutable order.
type OrderService struct {
	store        *repos.Store
	hub          *realtime.Hub
	shippingCost float64
	log          zerolog.Logger
}

func NewOrderService(store *repos.Store, hub *realtime.Hub, shippingCost float64, log zerolog.Logger) *OrderService {
	return &OrderService{store: store, hub: hub, shippingCost: shippingCost, log: log}
}

// GetCart returns the user's cart with items enriched by their current
// product records; items whose product has since been deleted are kept but
// carry no product.
func (s *OrderService) GetCart(userID string) (models.Cart, error) {
	var cart models.Cart
	err := s.store.WithTx(func(tx *sql.Tx) error {
		var err error
		cart, err = s.store.GetOrCreateCart(tx, userID)
		if err != nil {
			return err
		}
		cart.Items, err = s.store.ListCartItems(tx, cart.ID)
		return err
	})
	if err != nil {
		return cart, err
	}
	for i := range cart.Items {
		p, err := s.store.GetProduct(s.store.DB(), cart.Items[i].ProductID)
		if err == nil && !p.IsDeleted() {
			cart.Items[i].Product = &p
		} else if err != nil && !errors.Is(err, repos.ErrNotFound) {
			return cart, err
		}
	}
	return cart, nil
}

func (s *OrderService) AddToCart(userID, productID string, quantity int) error {
	if quantity <= 0 {
		return invalidf("quantity must be positive")
	}
	p, err := s.store.GetProduct(s.store.DB(), productID)
	if err != nil {
		return err
	}
	if p.IsDeleted() {
		return repos.ErrNotFound
	}
	return s.store.WithTx(func(tx *sql.Tx) error {
		cart, err := s.store.GetOrCreateCart(tx, userID)
		if err != nil {
			return err
		}
		return s.store.AddCartItem(tx, cart.ID, productID, quantity)
	})
}

func (s *OrderService) UpdateCartItem(userID, productID string, quantity int) error {
	return s.store.WithTx(func(tx *sql.Tx) error {
		cart, err := s.store.GetOrCreateCart(tx, userID)
		if err != nil {
			return err
		}
		return s.store.SetCartItemQuantity(tx, cart.ID, productID, quantity)
	})
}

func (s *OrderService) ClearCart(userID string) error {
	return s.store.WithTx(func(tx *sql.Tx) error {
		cart, err := s.store.GetOrCreateCart(tx, userID)
		if err != nil {
			return err
		}
		return s.store.ClearCart(tx, cart.ID)
	})
}

// CheckoutInput is what the client supplies at checkout; everything priced
// comes from the server-side cart, never from the client.
type CheckoutInput struct {
	CustomerName    string                 `json:"customer_name"`
	CustomerEmail   string                 `json:"customer_email"`
	Phone           string                 `json:"phone"`
	PaymentMethod   string                 `json:"payment_method"`
	Notes           string                 `json:"notes"`
	DeliveryAddress models.DeliveryAddress `json:"delivery_address"`
}

// newOrderNumber builds a human-quotable reference: timestamp plus a short
// random suffix to break same-second collisions.
func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return "ORD-" + now.Format("20060102150405") + "-" + suffix
}

// Checkout turns the cart into an order in one transaction: snapshot every
// item at its current price, price the order server-side, clear the cart and
// record the creation. The owner is notified once the commit lands.
func (s *OrderService) Checkout(userID string, in CheckoutInput) (models.Order, error) {
	var order models.Order
	if strings.TrimSpace(in.CustomerName) == "" || strings.TrimSpace(in.Phone) == "" {
		return order, invalidf("customer_name and phone are required")
	}

	err := s.store.WithTx(func(tx *sql.Tx) error {
		cart, err := s.store.GetOrCreateCart(tx, userID)
		if err != nil {
			return err
		}
		items, err := s.store.ListCartItems(tx, cart.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return invalidf("cart is empty")
		}

		var subtotal float64
		orderItems := make([]models.OrderItem, 0, len(items))
		for _, it := range items {
			p, err := s.store.GetProduct(tx, it.ProductID)
			if errors.Is(err, repos.ErrNotFound) {
				continue // product vanished between add and checkout
			}
			if err != nil {
				return err
			}
			if p.IsDeleted() {
				continue
			}
			subtotal += p.Price * float64(it.Quantity)
			orderItems = append(orderItems, models.OrderItem{
				ProductID:     p.ID,
				ProductName:   p.Name,
				ProductNameAr: p.NameAr,
				Quantity:      it.Quantity,
				Price:         p.Price,
				ImageURL:      p.ImageURL,
			})
		}
		if len(orderItems) == 0 {
			return invalidf("cart has no purchasable items")
		}

		order = models.Order{
			OrderNumber:     newOrderNumber(time.Now()),
			UserID:          userID,
			CustomerName:    in.CustomerName,
			CustomerEmail:   in.CustomerEmail,
			Phone:           in.Phone,
			Status:          models.OrderPending,
			Subtotal:        subtotal,
			ShippingCost:    s.shippingCost,
			Total:           subtotal + s.shippingCost,
			PaymentMethod:   in.PaymentMethod,
			Notes:           in.Notes,
			DeliveryAddress: in.DeliveryAddress,
			Items:           orderItems,
		}
		if err := s.store.InsertOrder(tx, &order); err != nil {
			return err
		}
		if err := s.store.ClearCart(tx, cart.ID); err != nil {
			return err
		}
		return s.store.AppendChange(tx, "orders", order.ID, models.ActionCreated, userID)
	})
	if err != nil {
		return order, err
	}
	s.hub.NotifyOrder(userID, order.ID, order.Status)
	return order, nil
}

// GetOrder enforces ownership; admins go through ListAllOrders instead.
func (s *OrderService) GetOrder(userID, orderID string) (models.Order, error) {
	o, err := s.store.GetOrder(orderID)
	if err != nil {
		return o, err
	}
	if o.UserID != userID {
		return models.Order{}, repos.ErrNotFound
	}
	return o, nil
}

func (s *OrderService) ListOrders(userID string) ([]models.Order, error) {
	return s.store.ListOrdersByUser(userID)
}

func (s *OrderService) ListAllOrders() ([]models.Order, error) {
	return s.store.ListAllOrders()
}

// SetStatus moves an order to a new status and tells the owner over any live
// connection. The status set is closed; anything else is rejected.
func (s *OrderService) SetStatus(actorID, orderID, status string) (models.Order, error) {
	if !models.OrderStatuses[status] {
		return models.Order{}, invalidf("unknown order status %q", status)
	}
	o, err := s.store.GetOrder(orderID)
	if err != nil {
		return models.Order{}, err
	}
	err = s.store.WithTx(func(tx *sql.Tx) error {
		if err := s.store.SetOrderStatus(tx, orderID, status); err != nil {
			return err
		}
		return s.store.AppendChange(tx, "orders", orderID, models.ActionUpdated, actorID)
	})
	if err != nil {
		return models.Order{}, err
	}
	o.Status = status
	s.hub.NotifyOrder(o.UserID, o.ID, status)
	return o, nil
}
