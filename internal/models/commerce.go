package models

type User struct {
	Syncable
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

type UserSession struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	SessionToken string `json:"session_token"`
	ExpiresAt    int64  `json:"expires_at"`
	CreatedAt    int64  `json:"created_at"`
}

type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	CreatedAt int64      `json:"created_at"`
	Items     []CartItem `json:"items,omitempty"`
}

type CartItem struct {
	ID        string   `json:"id"`
	CartID    string   `json:"-"`
	ProductID string   `json:"product_id"`
	Quantity  int      `json:"quantity"`
	Product   *Product `json:"product,omitempty"`
}

// Order statuses form a closed set; transitions outside it are rejected.
const (
	OrderPending        = "pending"
	OrderPreparing      = "preparing"
	OrderShipped        = "shipped"
	OrderOutForDelivery = "out_for_delivery"
	OrderDelivered      = "delivered"
	OrderCancelled      = "cancelled"
	OrderComplete       = "complete"
)

var OrderStatuses = map[string]bool{
	OrderPending:        true,
	OrderPreparing:      true,
	OrderShipped:        true,
	OrderOutForDelivery: true,
	OrderDelivered:      true,
	OrderCancelled:      true,
	OrderComplete:       true,
}

type DeliveryAddress struct {
	StreetAddress        string `json:"street_address"`
	City                 string `json:"city"`
	State                string `json:"state"`
	Country              string `json:"country"`
	DeliveryInstructions string `json:"delivery_instructions,omitempty"`
}

type Order struct {
	Syncable
	OrderNumber     string          `json:"order_number"`
	UserID          string          `json:"user_id"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	Phone           string          `json:"phone"`
	Status          string          `json:"status"`
	Subtotal        float64         `json:"subtotal"`
	ShippingCost    float64         `json:"shipping_cost"`
	Total           float64         `json:"total"`
	PaymentMethod   string          `json:"payment_method"`
	Notes           string          `json:"notes,omitempty"`
	DeliveryAddress DeliveryAddress `json:"delivery_address"`
	Items           []OrderItem     `json:"items,omitempty"`
}

// OrderItem snapshots the product at purchase time so later catalog edits
// never rewrite order history.
type OrderItem struct {
	ID            string  `json:"id"`
	OrderID       string  `json:"-"`
	ProductID     string  `json:"product_id"`
	ProductName   string  `json:"product_name"`
	ProductNameAr string  `json:"product_name_ar"`
	Quantity      int     `json:"quantity"`
	Price         float64 `json:"price"`
	ImageURL      string  `json:"image_url,omitempty"`
}

type Favorite struct {
	Syncable
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
}

type Comment struct {
	Syncable
	ProductID   string `json:"product_id"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name"`
	UserPicture string `json:"user_picture,omitempty"`
	Text        string `json:"text"`
	Rating      *int   `json:"rating,omitempty"`
	IsOwner     bool   `json:"is_owner"`
}
