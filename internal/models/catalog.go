package models

// Names of the syncable catalog tables, in the order the pull protocol
// defaults to.
const (
	TableCarBrands     = "car_brands"
	TableCarModels     = "car_models"
	TableProductBrands = "product_brands"
	TableCategories    = "categories"
	TableProducts      = "products"
	TableFavorites     = "favorites"
)

// CatalogTables are the tables pulled when a client does not name any.
var CatalogTables = []string{
	TableCarBrands, TableCarModels, TableProductBrands, TableCategories, TableProducts,
}

type CarBrand struct {
	Syncable
	Name   string `json:"name"`
	NameAr string `json:"name_ar"`
	Logo   string `json:"logo,omitempty"`
}

type CarModel struct {
	Syncable
	BrandID       string `json:"brand_id"`
	Name          string `json:"name"`
	NameAr        string `json:"name_ar"`
	YearStart     int    `json:"year_start,omitempty"`
	YearEnd       int    `json:"year_end,omitempty"`
	ImageURL      string `json:"image_url,omitempty"`
	Description   string `json:"description,omitempty"`
	DescriptionAr string `json:"description_ar,omitempty"`
}

type ProductBrand struct {
	Syncable
	Name              string `json:"name"`
	NameAr            string `json:"name_ar,omitempty"`
	Logo              string `json:"logo,omitempty"`
	CountryOfOrigin   string `json:"country_of_origin,omitempty"`
	CountryOfOriginAr string `json:"country_of_origin_ar,omitempty"`
}

type Category struct {
	Syncable
	Name      string `json:"name"`
	NameAr    string `json:"name_ar"`
	ParentID  string `json:"parent_id,omitempty"`
	Icon      string `json:"icon,omitempty"`
	SortOrder int    `json:"sort_order"`
}

// CategoryNode is a category with its resolved children, used by the
// category tree endpoint.
type CategoryNode struct {
	Category
	Children []*CategoryNode `json:"children"`
}

type Product struct {
	Syncable
	Name           string   `json:"name"`
	NameAr         string   `json:"name_ar"`
	Description    string   `json:"description,omitempty"`
	DescriptionAr  string   `json:"description_ar,omitempty"`
	Price          float64  `json:"price"`
	SKU            string   `json:"sku"`
	ProductBrandID string   `json:"product_brand_id,omitempty"`
	CategoryID     string   `json:"category_id,omitempty"`
	ImageURL       string   `json:"image_url,omitempty"`
	Images         []string `json:"images,omitempty"`
	StockQuantity  int      `json:"stock_quantity"`
	Hidden         bool     `json:"hidden_status"`
	// CarModelIDs flattens the product/car-model association; the join table
	// has no timestamps of its own, so membership rides along with the
	// product record on every pull.
	CarModelIDs []string `json:"car_model_ids"`
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryID     string
	ProductBrandID string
	CarModelID     string
	CarBrandID     string
	MinPrice       *float64
	MaxPrice       *float64
	IncludeHidden  bool
	Skip           int
	Limit          int
}
