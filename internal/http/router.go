package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"partsync/internal/handlers"
	"partsync/internal/middleware"
	"partsync/internal/realtime"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Catalog *handlers.CatalogHandler
	Product *handlers.ProductHandler
	Cart    *handlers.CartHandler
	Order   *handlers.OrderHandler
	Social  *handlers.SocialHandler
	Sync    *handlers.SyncHandler
	Seed    *handlers.SeedHandler
}

func NewRouter(h Handlers, sessions middleware.TokenResolver, hub *realtime.Hub, wsSessions realtime.SessionResolver, log zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Session-ID"},
		AllowCredentials: false,
	}))

	api := r.Group("/api")
	api.Use(middleware.Auth(sessions))

	api.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Al-Ghazaly Auto Parts API", "status": "running"})
	})
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy", "connections": hub.ConnCount()})
	})
	api.GET("/ws", realtime.Handler(hub, wsSessions, log))
	api.POST("/seed", h.Seed.Seed)

	// Public catalog reads.
	api.GET("/car-brands", h.Catalog.ListCarBrands)
	api.GET("/car-models", h.Catalog.ListCarModels)
	api.GET("/product-brands", h.Catalog.ListProductBrands)
	api.GET("/categories", h.Catalog.ListCategories)
	api.GET("/categories/tree", h.Catalog.CategoryTree)
	api.GET("/products", h.Product.List)
	api.GET("/products/:id", h.Product.Get)
	api.GET("/products/:id/comments", h.Social.ListComments)
	api.GET("/products/:id/rating", h.Product.Rating)
	api.GET("/search", h.Catalog.Search)

	// Sync protocol. Pull works anonymously; push needs identity only for
	// client-writable tables, which the service enforces per record.
	api.POST("/sync/pull", h.Sync.Pull)
	api.POST("/sync/push", h.Sync.Push)

	// Auth.
	api.POST("/auth/session", h.Auth.Exchange)
	api.GET("/auth/me", h.Auth.Me)
	api.POST("/auth/logout", h.Auth.Logout)

	// Catalog writes. Any authenticated user manages the catalog; role
	// separation stays client-side as in the storefront this serves.
	authed := api.Group("")
	authed.Use(middleware.RequireAuth())
	{
		authed.POST("/car-brands", h.Catalog.CreateCarBrand)
		authed.DELETE("/car-brands/:id", h.Catalog.DeleteCarBrand)
		authed.POST("/car-models", h.Catalog.CreateCarModel)
		authed.PUT("/car-models/:id", h.Catalog.UpdateCarModel)
		authed.DELETE("/car-models/:id", h.Catalog.DeleteCarModel)
		authed.POST("/product-brands", h.Catalog.CreateProductBrand)
		authed.DELETE("/product-brands/:id", h.Catalog.DeleteProductBrand)
		authed.POST("/categories", h.Catalog.CreateCategory)
		authed.DELETE("/categories/:id", h.Catalog.DeleteCategory)
		authed.POST("/products", h.Product.Create)
		authed.PUT("/products/:id", h.Product.Update)
		authed.PATCH("/products/:id/price", h.Product.SetPrice)
		authed.PATCH("/products/:id/visibility", h.Product.SetHidden)
		authed.DELETE("/products/:id", h.Product.Delete)

		authed.GET("/cart", h.Cart.Get)
		authed.POST("/cart/items", h.Cart.AddItem)
		authed.PUT("/cart/items/:productId", h.Cart.UpdateItem)
		authed.DELETE("/cart", h.Cart.Clear)

		authed.POST("/orders", h.Order.Checkout)
		authed.GET("/orders", h.Order.List)
		authed.GET("/orders/:id", h.Order.Get)

		authed.GET("/favorites", h.Social.ListFavorites)
		authed.POST("/favorites/toggle", h.Social.ToggleFavorite)
		authed.GET("/favorites/check/:productId", h.Social.CheckFavorite)

		authed.POST("/products/:id/comments", h.Social.AddComment)

		authed.GET("/admin/orders", h.Order.ListAll)
		authed.PUT("/admin/orders/:id/status", h.Order.SetStatus)
		authed.GET("/admin/customers", h.Auth.ListCustomers)
		authed.GET("/admin/changes", h.Catalog.RecentChanges)
	}

	return r
}
