package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/greenbush/returns-api/internal/config"
	domainRepo "github.com/greenbush/returns-api/internal/domain/repository"
	"github.com/greenbush/returns-api/internal/presentation/http/handler"
	"github.com/greenbush/returns-api/internal/presentation/http/middleware"
	"github.com/greenbush/returns-api/pkg/utils"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Return   *handler.ReturnHandler
	Credit   *handler.CreditHandler
	Customer *handler.CustomerHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	Logger          *zap.Logger
	TenantRepo      domainRepo.TenantRepository
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(middleware.TenantMiddleware(deps.TenantRepo))
		protected.Use(middleware.RequireTenant())

		// Per-tenant rate limiter
		rateLimiter := middleware.NewTenantRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())

		// Idempotency replay for mutating endpoints
		protected.Use(middleware.Idempotency(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
		}))

		registerReturnRoutes(protected, h)
		registerCreditRoutes(protected, h)
		registerCustomerRoutes(protected, h)
	}

	return router
}

func registerReturnRoutes(rg *gin.RouterGroup, h *Handlers) {
	returns := rg.Group("/returns")
	{
		returns.POST("", h.Return.Create)
		returns.GET("", h.Return.List)
		returns.GET("/number/:number", h.Return.GetByNumber)
		returns.GET("/:id", h.Return.Get)
		returns.POST("/:id/approve", h.Return.Approve)
		returns.POST("/:id/reject", h.Return.Reject)
		returns.POST("/:id/receive", h.Return.Receive)
		returns.POST("/:id/inspect/start", h.Return.StartInspection)
		returns.POST("/:id/inspect/complete", h.Return.CompleteInspection)
		returns.POST("/:id/resolve", h.Return.Resolve)
		returns.POST("/:id/close", h.Return.Close)
		returns.POST("/:id/cancel", h.Return.Cancel)
		returns.POST("/:id/destroy", h.Return.Destroy)
		returns.PUT("/:id/notes", h.Return.UpdateNotes)
	}
}

func registerCreditRoutes(rg *gin.RouterGroup, h *Handlers) {
	credits := rg.Group("/credits")
	{
		credits.POST("", h.Credit.Issue)
		credits.GET("", h.Credit.List)
		credits.GET("/memo/:number", h.Credit.GetByMemoNumber)
		credits.GET("/:id", h.Credit.Get)
		credits.POST("/:id/apply", h.Credit.Apply)
		credits.POST("/:id/void", h.Credit.Void)
	}
}

func registerCustomerRoutes(rg *gin.RouterGroup, h *Handlers) {
	customers := rg.Group("/customers")
	{
		customers.POST("", h.Customer.Create)
		customers.GET("", h.Customer.List)
		customers.GET("/:id", h.Customer.Get)
		customers.GET("/:id/credit-balance", h.Customer.CreditBalance)
	}
}
