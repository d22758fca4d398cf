package repos

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"partsync/internal/clock"
	"partsync/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	if err := Migrate(db); err != nil {
		t.Fatal(err)
	}
	return NewStore(db, clock.New())
}

func (s *Store) mustTx(t *testing.T, fn func(tx *sql.Tx) error) {
	t.Helper()
	if err := s.WithTx(fn); err != nil {
		t.Fatal(err)
	}
}

func TestSoftDeleteBumpsUpdatedAt(t *testing.T) {
	s := newTestStore(t)
	b := models.CarBrand{Name: "Toyota"}
	s.mustTx(t, func(tx *sql.Tx) error { return s.InsertCarBrand(tx, &b) })

	s.mustTx(t, func(tx *sql.Tx) error { return s.SoftDeleteCarBrand(tx, b.ID) })

	changed, err := s.CarBrandsChangedSince(b.UpdatedAt)
	if err != nil {
		t.Fatal(err)
	}
	if len(changed) != 1 {
		t.Fatalf("tombstone invisible to delta query: %d rows", len(changed))
	}
	got := changed[0]
	if got.DeletedAt == nil {
		t.Fatal("expected deleted_at set")
	}
	if got.UpdatedAt < got.CreatedAt {
		t.Fatalf("updated_at %d before created_at %d", got.UpdatedAt, got.CreatedAt)
	}

	// Deleting again finds no live row.
	if err := s.WithTx(func(tx *sql.Tx) error { return s.SoftDeleteCarBrand(tx, b.ID) }); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestChangedSinceIsExclusive(t *testing.T) {
	s := newTestStore(t)
	b := models.CarBrand{Name: "Mazda"}
	s.mustTx(t, func(tx *sql.Tx) error { return s.InsertCarBrand(tx, &b) })

	atStamp, err := s.CarBrandsChangedSince(b.UpdatedAt)
	if err != nil {
		t.Fatal(err)
	}
	if len(atStamp) != 0 {
		t.Fatalf("watermark bound must be exclusive, got %d rows", len(atStamp))
	}
	before, err := s.CarBrandsChangedSince(b.UpdatedAt - 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(before) != 1 {
		t.Fatalf("expected the row just after the watermark, got %d", len(before))
	}
}

func TestListProductsCategoryIncludesSubcategories(t *testing.T) {
	s := newTestStore(t)

	parent := models.Category{Name: "Engine"}
	s.mustTx(t, func(tx *sql.Tx) error { return s.InsertCategory(tx, &parent) })
	child := models.Category{Name: "Filters", ParentID: parent.ID}
	s.mustTx(t, func(tx *sql.Tx) error { return s.InsertCategory(tx, &child) })

	inParent := models.Product{Name: "Gasket", SKU: "G1", Price: 5, CategoryID: parent.ID}
	inChild := models.Product{Name: "Oil Filter", SKU: "F1", Price: 10, CategoryID: child.ID}
	elsewhere := models.Product{Name: "Tire", SKU: "T1", Price: 80}
	s.mustTx(t, func(tx *sql.Tx) error { return s.InsertProduct(tx, &inParent) })
	s.mustTx(t, func(tx *sql.Tx) error { return s.InsertProduct(tx, &inChild) })
	s.mustTx(t, func(tx *sql.Tx) error { return s.InsertProduct(tx, &elsewhere) })

	products, total, err := s.ListProducts(models.ProductFilter{CategoryID: parent.ID})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(products) != 2 {
		t.Fatalf("expected parent+child products, got total=%d", total)
	}
}

func TestListProductsByCarBrand(t *testing.T) {
	s := newTestStore(t)

	brand := models.CarBrand{Name: "Toyota"}
	s.mustTx(t, func(tx *sql.Tx) error { return s.InsertCarBrand(tx, &brand) })
	camry := models.CarModel{BrandID: brand.ID, Name: "Camry"}
	s.mustTx(t, func(tx *sql.Tx) error { return s.InsertCarModel(tx, &camry) })

	fits := models.Product{Name: "Filter", SKU: "F1", Price: 10, CarModelIDs: []string{camry.ID}}
	universal := models.Product{Name: "Wax", SKU: "W1", Price: 3}
	s.mustTx(t, func(tx *sql.Tx) error { return s.InsertProduct(tx, &fits) })
	s.mustTx(t, func(tx *sql.Tx) error { return s.InsertProduct(tx, &universal) })

	products, total, err := s.ListProducts(models.ProductFilter{CarBrandID: brand.ID})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(products) != 1 || products[0].ID != fits.ID {
		t.Fatalf("car brand filter wrong: total=%d", total)
	}
	if len(products[0].CarModelIDs) != 1 || products[0].CarModelIDs[0] != camry.ID {
		t.Fatalf("expected fitment ids loaded, got %v", products[0].CarModelIDs)
	}
}

func TestHiddenProductsExcludedByDefault(t *testing.T) {
	s := newTestStore(t)

	visible := models.Product{Name: "Visible", SKU: "V1", Price: 1}
	hidden := models.Product{Name: "Hidden", SKU: "H1", Price: 1, Hidden: true}
	s.mustTx(t, func(tx *sql.Tx) error { return s.InsertProduct(tx, &visible) })
	s.mustTx(t, func(tx *sql.Tx) error { return s.InsertProduct(tx, &hidden) })

	_, total, err := s.ListProducts(models.ProductFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 {
		t.Fatalf("hidden product leaked into listing: total=%d", total)
	}
	_, total, err = s.ListProducts(models.ProductFilter{IncludeHidden: true})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Fatalf("admin listing should include hidden: total=%d", total)
	}
}

func TestReplaceProductCarModelsBumpsParent(t *testing.T) {
	s := newTestStore(t)
	p := models.Product{Name: "Filter", SKU: "F1", Price: 10}
	s.mustTx(t, func(tx *sql.Tx) error { return s.InsertProduct(tx, &p) })

	before, err := s.GetProduct(s.DB(), p.ID)
	if err != nil {
		t.Fatal(err)
	}
	s.mustTx(t, func(tx *sql.Tx) error { return s.ReplaceProductCarModels(tx, p.ID, []string{"cm_x"}) })
	after, err := s.GetProduct(s.DB(), p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if after.UpdatedAt <= before.UpdatedAt {
		t.Fatal("association change must bump the owning product's updated_at")
	}
}
