package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SystemHandler serves health and readiness probes.
type SystemHandler struct {
	BaseHandler
	db      *gorm.DB
	redis   *redis.Client
	version string
	started time.Time
}

// NewSystemHandler creates a SystemHandler. redis may be nil when the
// settings cache is disabled.
func NewSystemHandler(db *gorm.DB, redisClient *redis.Client, version string, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{
		BaseHandler: NewBaseHandler(logger),
		db:          db,
		redis:       redisClient,
		version:     version,
		started:     time.Now(),
	}
}

// Healthz reports process liveness. It never touches dependencies.
func (h *SystemHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}

// Readyz reports whether the service can take traffic. The database is
// required; the settings cache is reported but does not fail readiness
// because the settings provider falls back to the database.
func (h *SystemHandler) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	ready := true

	if err := h.pingDatabase(ctx); err != nil {
		checks["database"] = err.Error()
		ready = false
	} else {
		checks["database"] = "ok"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["cache"] = err.Error()
		} else {
			checks["cache"] = "ok"
		}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"ready":  ready,
		"checks": checks,
	})
}

func (h *SystemHandler) pingDatabase(ctx context.Context) error {
	if h.db == nil {
		return gorm.ErrInvalidDB
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
