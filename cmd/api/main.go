package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"estateflow/api/internal/app"
	"estateflow/api/internal/config"
	"estateflow/api/internal/email"
	"estateflow/api/internal/export"
	"estateflow/api/internal/media"
	"estateflow/api/internal/revisions"
	"estateflow/api/internal/search"
	"estateflow/api/internal/session"
	"estateflow/api/internal/store"
	synchub "estateflow/api/internal/sync"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	if err := os.MkdirAll(cfg.RevisionsDir, 0o755); err != nil {
		log.Fatalf("failed to create revisions dir: %v", err)
	}

	dataStore := store.NewPostgresStore(db)
	revisionsService := revisions.New(cfg.RevisionsDir)

	// Redis backs both refresh sessions and sync fan-out. Without it,
	// sessions fall back to Postgres and subscriptions to polling.
	var redisClient *redis.Client
	if strings.TrimSpace(cfg.RedisURL) != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid redis url: %v", err)
		}
		redisClient = redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		cancel()
		defer redisClient.Close()
		log.Printf("Using Redis for sessions and sync fan-out")
	} else {
		log.Printf("Redis not configured; using PostgreSQL sessions and polling sync")
	}

	var sessions interface {
		SaveRefreshSession(context.Context, string, store.AdminUser, time.Time) error
		LookupRefreshSession(context.Context, string) (store.AdminUser, error)
		RevokeRefreshSession(context.Context, string) error
		RevokeAccessToken(context.Context, string, time.Time) error
		IsAccessTokenRevoked(context.Context, string) (bool, error)
	} = dataStore
	if redisClient != nil {
		sessions = session.NewRedisStoreWithClient(redisClient)
	}

	hub := synchub.NewHub(redisClient, cfg.SyncPollInterval)

	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		defer meiliClient.Close()
	}
	fallback := search.NewFallback(func(ctx context.Context) ([]search.ListingRecord, error) {
		listings, err := dataStore.ListListings(ctx)
		if err != nil {
			return nil, err
		}
		return searchRecords(listings), nil
	})
	searchService := search.NewService(meiliClient, fallback)

	mediaService, err := media.New(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		log.Fatalf("object storage setup failed: %v", err)
	}
	if err := mediaService.EnsureBucket(ctx); err != nil {
		log.Fatalf("object storage bucket check failed: %v", err)
	}

	exportService := export.NewService(dataStore, "")
	mailService := email.NewService(email.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
	})

	service := app.New(cfg, dataStore, sessions, hub, searchService, mediaService, revisionsService, exportService, mailService)
	if err := service.Bootstrap(ctx); err != nil {
		log.Printf("WARNING: bootstrap error (will retry on next restart): %v", err)
	}

	if meiliClient != nil {
		if listings, err := dataStore.ListListings(ctx); err != nil {
			log.Printf("WARNING: search reindex skipped: %v", err)
		} else if err := searchService.ReindexAll(searchRecords(listings)); err != nil {
			log.Printf("WARNING: search reindex failed: %v", err)
		}
	}

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	// No WriteTimeout: /api/stream responses are long-lived.
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Estateflow API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func searchRecords(listings []store.Listing) []search.ListingRecord {
	records := make([]search.ListingRecord, 0, len(listings))
	for _, listing := range listings {
		records = append(records, search.ListingRecord{
			ID:          listing.ID,
			Title:       listing.Title,
			Description: listing.Description,
			Location:    listing.Location,
			Type:        listing.Type,
			Status:      listing.Status,
			Price:       listing.SellingPrice,
		})
	}
	return records
}
