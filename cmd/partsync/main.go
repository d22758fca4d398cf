package main

import (
	"database/sql"
	"os"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"partsync/internal/cache"
	"partsync/internal/clock"
	"partsync/internal/config"
	"partsync/internal/handlers"
	httpapi "partsync/internal/http"
	"partsync/internal/realtime"
	"partsync/internal/repos"
	"partsync/internal/services"
)

func main() {
	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	db, err := sql.Open("sqlite", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()
	// modernc sqlite serializes writes itself; a single connection avoids
	// SQLITE_BUSY under concurrent transactions.
	db.SetMaxOpenConns(1)

	if err := repos.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	store := repos.NewStore(db, clock.New())
	snapshots := cache.New(cfg.CacheSize, cfg.CacheTTL)
	hub := realtime.NewHub(log)

	authSvc := services.NewAuthService(store, cfg.AuthProviderURL, cfg.SessionTTL, log)
	catalogSvc := services.NewCatalogService(store, snapshots, hub, log)
	orderSvc := services.NewOrderService(store, hub, cfg.ShippingCost, log)
	socialSvc := services.NewSocialService(store, hub, log)
	syncSvc := services.NewSyncService(store, log)
	seedSvc := services.NewSeedService(store, catalogSvc)

	if seeded, err := seedSvc.Seed(); err != nil {
		log.Fatal().Err(err).Msg("seed database")
	} else if seeded {
		log.Info().Msg("database seeded")
	}

	r := httpapi.NewRouter(httpapi.Handlers{
		Auth:    handlers.NewAuthHandler(authSvc, log),
		Catalog: handlers.NewCatalogHandler(catalogSvc, log),
		Product: handlers.NewProductHandler(catalogSvc, socialSvc, log),
		Cart:    handlers.NewCartHandler(orderSvc, log),
		Order:   handlers.NewOrderHandler(orderSvc, log),
		Social:  handlers.NewSocialHandler(socialSvc, log),
		Sync:    handlers.NewSyncHandler(syncSvc, log),
		Seed:    handlers.NewSeedHandler(seedSvc, log),
	}, authSvc, hub, authSvc, log)

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Msg("listening")
	if err := r.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
