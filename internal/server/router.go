package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kitaphana/kitaphana-backend/internal/handlers"
	"github.com/kitaphana/kitaphana-backend/internal/middleware"
)

type RouterConfig struct {
	IdentityMiddleware *middleware.IdentityMiddleware
	HealthHandler      *handlers.HealthHandler
	SearchHandler      *handlers.SearchHandler
	ContentHandler     *handlers.ContentHandler
	ViewHandler        *handlers.ViewHandler
	RatingHandler      *handlers.RatingHandler
	BookmarkHandler    *handlers.BookmarkHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", cfg.HealthHandler.Healthcheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.Use(cfg.IdentityMiddleware.Resolve())
	{
		// Catalog
		api.GET("/search", cfg.SearchHandler.Search)
		api.GET("/content/:type", cfg.ContentHandler.List)
		api.GET("/content/:type/:id", cfg.ContentHandler.Detail)
		api.GET("/categories/:type", cfg.ContentHandler.Categories)
		// Views
		api.POST("/views/:type/:id", cfg.ViewHandler.RegisterView)
	}

	authed := api.Group("/")
	authed.Use(cfg.IdentityMiddleware.RequireUser())
	{
		// Ratings
		authed.POST("/rate", cfg.RatingHandler.Rate)
		// Bookmarks
		authed.GET("/bookmarks", cfg.BookmarkHandler.ListMine)
		authed.POST("/bookmarks/:type/:id", cfg.BookmarkHandler.Toggle)
		// Content management
		authed.POST("/content/:type", cfg.ContentHandler.Create)
		authed.PUT("/content/:type/:id", cfg.ContentHandler.Update)
		authed.DELETE("/content/:type/:id", cfg.ContentHandler.Delete)
	}

	return router
}
