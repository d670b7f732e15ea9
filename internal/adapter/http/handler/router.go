package handler

import (
	"remit-ledger/internal/adapter/http/middleware"
	redisStore "remit-ledger/internal/adapter/storage/redis"
	"remit-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	TransferSvc    ports.TransferService
	SwapSvc        ports.SwapService
	WithdrawalSvc  ports.WithdrawalService
	DepositSvc     ports.DepositService
	ReportingSvc   ports.ReportingService
	SignatureSvc   ports.SignatureService
	TokenSvc       ports.TokenService
	WebhookSecret  string
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (signature-verified webhooks) ---
	depositHandler := NewDepositHandler(deps.DepositSvc, deps.SignatureSvc, deps.WebhookSecret)
	webhooks := v1.Group("/webhooks")
	{
		webhooks.POST("/deposits", rl("webhooks"), depositHandler.HandleWebhook)
	}

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	transferHandler := NewTransferHandler(deps.TransferSvc)
	swapHandler := NewSwapHandler(deps.SwapSvc)
	withdrawalHandler := NewWithdrawalHandler(deps.WithdrawalSvc)
	reportingHandler := NewReportingHandler(deps.ReportingSvc)

	transfers := v1.Group("/transfers", jwtAuth)
	{
		transfers.POST("", rl("transfers"), transferHandler.Transfer)
	}

	swaps := v1.Group("/swaps", jwtAuth)
	{
		swaps.POST("", rl("swaps"), swapHandler.Swap)
	}

	withdrawals := v1.Group("/withdrawals", jwtAuth)
	{
		withdrawals.POST("", rl("withdrawals"), withdrawalHandler.RequestWithdrawal)
		withdrawals.GET("/:id", rl("reporting"), withdrawalHandler.GetWithdrawal)
	}

	balances := v1.Group("/balances", jwtAuth)
	{
		balances.GET("", rl("reporting"), reportingHandler.GetBalances)
	}

	statement := v1.Group("/statement", jwtAuth)
	{
		statement.GET("", rl("reporting"), reportingHandler.GetStatement)
	}

	return r
}
