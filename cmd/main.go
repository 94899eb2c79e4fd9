package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/kitaphana/kitaphana-backend/internal/cache"
	"github.com/kitaphana/kitaphana-backend/internal/db"
	"github.com/kitaphana/kitaphana-backend/internal/handlers"
	"github.com/kitaphana/kitaphana-backend/internal/logger"
	"github.com/kitaphana/kitaphana-backend/internal/middleware"
	"github.com/kitaphana/kitaphana-backend/internal/repos"
	"github.com/kitaphana/kitaphana-backend/internal/search"
	"github.com/kitaphana/kitaphana-backend/internal/server"
	"github.com/kitaphana/kitaphana-backend/internal/services"
	"github.com/kitaphana/kitaphana-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	dedupeTTL := utils.GetEnvAsDuration("VIEW_DEDUPE_TTL", 24*time.Hour, log)
	flushInterval := utils.GetEnvAsDuration("VIEW_FLUSH_INTERVAL", 5*time.Minute, log)
	searchCacheTTL := utils.GetEnvAsDuration("SEARCH_CACHE_TTL", 5*time.Minute, log)
	searchPageSize := utils.GetEnvAsInt("SEARCH_PAGE_SIZE", 10, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Cache
	cacheService, err := cache.NewService(log)
	if err != nil {
		log.Warn("Cache init failed, running without cache", "error", err)
		cacheService = cache.NewNoop()
	}

	// Search index client
	searchClient, err := search.NewESClient(log)
	if err != nil {
		log.Error("Search client init failed", "error", err)
		os.Exit(1)
	}

	// Repos
	log.Info("Setting up Repos from main...")
	contentRepo := repos.NewContentRepo(thePG, log)
	categoryRepo := repos.NewCategoryRepo(thePG, log)
	ratingRepo := repos.NewRatingRepo(thePG, log)
	viewRecordRepo := repos.NewViewRecordRepo(thePG, log)
	pendingViewRepo := repos.NewPendingViewRepo(thePG, log)
	bookmarkRepo := repos.NewBookmarkRepo(thePG, log)

	// Index synchronizer
	indexer := search.NewIndexer(log, searchClient, contentRepo)
	indexer.StartWorker(context.Background())

	// Services
	log.Info("Setting up Services from main...")
	viewService := services.NewViewService(thePG, log, viewRecordRepo, pendingViewRepo, dedupeTTL)
	flushService := services.NewFlushService(thePG, log, pendingViewRepo, contentRepo, indexer, cacheService)
	flushService.StartWorker(context.Background(), flushInterval)
	searchService := services.NewSearchService(log, searchClient, cacheService, searchCacheTTL)
	contentService := services.NewContentService(thePG, log, contentRepo, categoryRepo, bookmarkRepo, indexer, cacheService)
	ratingService := services.NewRatingService(thePG, log, ratingRepo, contentRepo, indexer, cacheService)
	bookmarkService := services.NewBookmarkService(thePG, log, bookmarkRepo, contentRepo, cacheService)

	// Handlers
	log.Info("Setting up handlers from main...")
	healthHandler := handlers.NewHealthHandler(log, thePG, cacheService, searchClient)
	searchHandler := handlers.NewSearchHandler(log, searchService, searchPageSize)
	contentHandler := handlers.NewContentHandler(log, contentService, searchPageSize)
	viewHandler := handlers.NewViewHandler(log, viewService)
	ratingHandler := handlers.NewRatingHandler(log, ratingService)
	bookmarkHandler := handlers.NewBookmarkHandler(log, bookmarkService)

	// Middleware
	log.Info("Setting up middleware from main...")
	identityMiddleware := middleware.NewIdentityMiddleware(log, jwtSecretKey)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		IdentityMiddleware: identityMiddleware,
		HealthHandler:      healthHandler,
		SearchHandler:      searchHandler,
		ContentHandler:     contentHandler,
		ViewHandler:        viewHandler,
		RatingHandler:      ratingHandler,
		BookmarkHandler:    bookmarkHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
