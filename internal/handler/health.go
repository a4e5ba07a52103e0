package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"loanflow/internal/cache"
)

type HealthHandler struct {
	DB    *gorm.DB
	Cache *cache.RedisStore
}

func (h *HealthHandler) Register(r *gin.Engine) {
	r.GET("/healthz", h.health)
	r.GET("/readyz", h.ready)
}

func (h *HealthHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) ready(c *gin.Context) {
	if h.DB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_missing"})
		return
	}
	sqlDB, err := h.DB.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_error"})
		return
	}
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_unreachable"})
		return
	}
	payload := gin.H{"status": "ready"}
	if h.Cache != nil {
		// the limiter and dashboard cache both fail open, so a dead
		// redis degrades rather than blocks readiness
		if err := h.Cache.Ping(c.Request.Context()); err != nil {
			payload["cache"] = "down"
		} else {
			payload["cache"] = "ok"
		}
	}
	c.JSON(http.StatusOK, payload)
}
