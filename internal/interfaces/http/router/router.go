// Package router assembles the gin engine: middleware chain, API routes,
// and health probes.
package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/library/backend/internal/infrastructure/config"
	"github.com/library/backend/internal/infrastructure/logger"
	"github.com/library/backend/internal/interfaces/http/handler"
	"github.com/library/backend/internal/interfaces/http/middleware"
)

// Handlers groups the handlers the router mounts.
type Handlers struct {
	Lending *handler.LendingHandler
	Admin   *handler.AdminHandler
	System  *handler.SystemHandler
}

// Options tunes the middleware chain.
type Options struct {
	TracingEnabled bool
	ServiceName    string
	RateLimit      int           // Requests per window per client, 0 disables
	RateWindow     time.Duration // Defaults to one minute
	MaxBodyBytes   int64
}

// New builds the gin engine with the full middleware chain and all routes.
func New(cfg *config.Config, log *zap.Logger, handlers Handlers, opts Options) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if opts.TracingEnabled {
		engine.Use(middleware.Tracing(opts.ServiceName))
		engine.Use(middleware.SpanErrorMarker())
	}
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	engine.Use(middleware.BodyLimit(opts.MaxBodyBytes))
	if opts.RateLimit > 0 {
		window := opts.RateWindow
		if window <= 0 {
			window = time.Minute
		}
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(opts.RateLimit, window)))
	}
	engine.Use(middleware.Operator())

	// Probes sit outside the versioned API
	engine.GET("/healthz", handlers.System.Healthz)
	engine.GET("/readyz", handlers.System.Readyz)

	api := engine.Group("/api/v1")
	{
		fines := api.Group("/fines")
		fines.Use(middleware.RequireOperator())
		{
			fines.POST("/:loanId/pay", handlers.Lending.PayFine)
			fines.POST("/:loanId/waive", handlers.Lending.WaiveFine)
		}

		api.GET("/loans/:id", handlers.Lending.GetLoan)
		api.GET("/members/:id", handlers.Lending.GetMember)
		api.GET("/members/:id/fines", handlers.Lending.GetMemberFines)
		api.GET("/members/:id/transactions", handlers.Lending.GetMemberTransactions)
		api.GET("/transactions/:id", handlers.Lending.GetTransaction)

		admin := api.Group("/admin")
		admin.Use(middleware.RequireOperator())
		{
			admin.POST("/accrual/run", handlers.Admin.RunAccrual)
			admin.POST("/bans/sweep", handlers.Admin.SweepBans)
			admin.GET("/scheduler/status", handlers.Admin.SchedulerStatus)
		}
	}

	return engine
}
