package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"partsync/internal/models"
	"partsync/internal/realtime"
)

func TestCheckoutSnapshotsCartAndClearsIt(t *testing.T) {
	store := newTestStore(t)
	hub := realtime.NewHub(zerolog.Nop())
	svc := NewOrderService(store, hub, 150, zerolog.Nop())
	user := seedUser(t, store, "buyer@example.com")
	filter := seedProduct(t, store, "Oil Filter", 45.99)
	battery := seedProduct(t, store, "Battery", 185)

	if err := svc.AddToCart(user.ID, filter.ID, 2); err != nil {
		t.Fatal(err)
	}
	if err := svc.AddToCart(user.ID, battery.ID, 1); err != nil {
		t.Fatal(err)
	}

	order, err := svc.Checkout(user.ID, CheckoutInput{
		CustomerName: "Buyer",
		Phone:        "0501234567",
		DeliveryAddress: models.DeliveryAddress{
			StreetAddress: "1 Main St", City: "Cairo", Country: "EG",
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	wantSubtotal := 45.99*2 + 185
	if order.Subtotal != wantSubtotal {
		t.Fatalf("subtotal: want %v got %v", wantSubtotal, order.Subtotal)
	}
	if order.ShippingCost != 150 || order.Total != wantSubtotal+150 {
		t.Fatalf("total: want %v got %v", wantSubtotal+150, order.Total)
	}
	if order.Status != models.OrderPending {
		t.Fatalf("expected pending order, got %s", order.Status)
	}
	if !strings.HasPrefix(order.OrderNumber, "ORD-") || len(order.OrderNumber) != len("ORD-20060102150405-XXXX") {
		t.Fatalf("unexpected order number %q", order.OrderNumber)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 order items, got %d", len(order.Items))
	}

	cart, err := svc.GetCart(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("cart not cleared after checkout: %d items", len(cart.Items))
	}
}

func TestCheckoutEmptyCartRejected(t *testing.T) {
	store := newTestStore(t)
	svc := NewOrderService(store, realtime.NewHub(zerolog.Nop()), 150, zerolog.Nop())
	user := seedUser(t, store, "empty@example.com")

	_, err := svc.Checkout(user.ID, CheckoutInput{CustomerName: "X", Phone: "1"})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestOrderSnapshotSurvivesCatalogEdit(t *testing.T) {
	store := newTestStore(t)
	hub := realtime.NewHub(zerolog.Nop())
	svc := NewOrderService(store, hub, 150, zerolog.Nop())
	catalog, _ := newTestCatalog(t, store)
	user := seedUser(t, store, "snap@example.com")
	p := seedProduct(t, store, "Spark Plug", 89.99)

	if err := svc.AddToCart(user.ID, p.ID, 1); err != nil {
		t.Fatal(err)
	}
	order, err := svc.Checkout(user.ID, CheckoutInput{CustomerName: "S", Phone: "1"})
	if err != nil {
		t.Fatal(err)
	}

	if err := catalog.SetProductPrice("admin", p.ID, 999); err != nil {
		t.Fatal(err)
	}
	got, err := svc.GetOrder(user.ID, order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Items[0].Price != 89.99 {
		t.Fatalf("order item price rewritten: %v", got.Items[0].Price)
	}
}

func TestSetStatusNotifiesOwnerOnly(t *testing.T) {
	store := newTestStore(t)
	hub := realtime.NewHub(zerolog.Nop())
	svc := NewOrderService(store, hub, 150, zerolog.Nop())
	owner := seedUser(t, store, "owner@example.com")
	other := seedUser(t, store, "other@example.com")
	p := seedProduct(t, store, "Mirror", 145)

	if err := svc.AddToCart(owner.ID, p.ID, 1); err != nil {
		t.Fatal(err)
	}
	order, err := svc.Checkout(owner.ID, CheckoutInput{CustomerName: "O", Phone: "1"})
	if err != nil {
		t.Fatal(err)
	}

	ownerConn := &recorderConn{}
	otherConn := &recorderConn{}
	hub.Register(ownerConn, owner.ID)
	hub.Register(otherConn, other.ID)

	if _, err := svc.SetStatus("admin", order.ID, models.OrderShipped); err != nil {
		t.Fatal(err)
	}
	if len(ownerConn.msgs) != 1 {
		t.Fatalf("owner expected 1 notification, got %d", len(ownerConn.msgs))
	}
	msg := ownerConn.msgs[0].(map[string]any)
	if msg["type"] != "order_update" || msg["status"] != models.OrderShipped {
		t.Fatalf("unexpected notification %v", msg)
	}
	if len(otherConn.msgs) != 0 {
		t.Fatal("status update leaked to another user")
	}
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	store := newTestStore(t)
	svc := NewOrderService(store, realtime.NewHub(zerolog.Nop()), 150, zerolog.Nop())

	_, err := svc.SetStatus("admin", "any", "teleported")
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestGetOrderEnforcesOwnership(t *testing.T) {
	store := newTestStore(t)
	hub := realtime.NewHub(zerolog.Nop())
	svc := NewOrderService(store, hub, 150, zerolog.Nop())
	owner := seedUser(t, store, "o2@example.com")
	stranger := seedUser(t, store, "s2@example.com")
	p := seedProduct(t, store, "Clutch", 299.99)

	if err := svc.AddToCart(owner.ID, p.ID, 1); err != nil {
		t.Fatal(err)
	}
	order, err := svc.Checkout(owner.ID, CheckoutInput{CustomerName: "O", Phone: "1"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.GetOrder(stranger.ID, order.ID); err == nil {
		t.Fatal("expected stranger to be denied")
	}
}
