package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kitaphana/kitaphana-backend/internal/cache"
	"github.com/kitaphana/kitaphana-backend/internal/logger"
	"github.com/kitaphana/kitaphana-backend/internal/search"
)

type HealthHandler struct {
	log          *logger.Logger
	db           *gorm.DB
	cache        cache.Service
	searchClient search.Client
}

func NewHealthHandler(log *logger.Logger, db *gorm.DB, cacheService cache.Service, searchClient search.Client) *HealthHandler {
	return &HealthHandler{
		log:          log.With("handler", "HealthHandler"),
		db:           db,
		cache:        cacheService,
		searchClient: searchClient,
	}
}

// Healthcheck handles GET /healthcheck. The database is the only hard
// dependency; cache and search degrade rather than fail the service.
func (h *HealthHandler) Healthcheck(c *gin.Context) {
	ctx := c.Request.Context()

	dbOK := false
	if sqlDB, err := h.db.DB(); err == nil {
		dbOK = sqlDB.PingContext(ctx) == nil
	}
	cacheOK := h.cache.Healthy(ctx)
	searchOK := h.searchClient.Ping(ctx)

	status := http.StatusOK
	overall := "ok"
	if !dbOK {
		status = http.StatusServiceUnavailable
		overall = "unavailable"
	} else if !cacheOK || !searchOK {
		overall = "degraded"
	}
	c.JSON(status, gin.H{
		"status":   overall,
		"postgres": dbOK,
		"redis":    cacheOK,
		"search":   searchOK,
	})
}
