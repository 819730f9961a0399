package handler

import (
	"time"

	"current-account-ledger/internal/adapter/http/middleware"
	"current-account-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	BalanceSvc     ports.BalanceService
	TransactionSvc ports.TransactionService
	Poster         ports.JournalPoster
	JournalRepo    ports.JournalRepository
	Jobs           ports.JobTrigger
	TokenSvc       ports.TokenService
	RateLimitStore ports.RateLimitStore   // nil = rate limiting disabled
	Idempotency    ports.IdempotencyCache // nil = Idempotency-Key ignored
	HealthCheckers []ports.HealthChecker
	PostingDelay   time.Duration
	Logger         zerolog.Logger
}

// idempotencyTTL is how long a transaction response can be replayed.
const idempotencyTTL = 24 * time.Hour

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

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

	idem := func(c *gin.Context) { c.Next() }
	if deps.Idempotency != nil {
		idem = middleware.Idempotency(deps.Idempotency, idempotencyTTL, deps.Logger)
	}

	v1 := r.Group("/api/v1", middleware.JWTAuth(deps.TokenSvc, deps.Logger))

	accountHandler := NewAccountHandler(deps.BalanceSvc, deps.TransactionSvc, deps.Poster, deps.JournalRepo, deps.PostingDelay)
	accounts := v1.Group("/accounts/:id")
	{
		accounts.GET("/balance", rl("reads"), accountHandler.GetBalance)
		accounts.GET("/journal-entries", rl("reads"), accountHandler.ListJournalEntries)
		accounts.POST("/transactions", rl("commands"), idem, accountHandler.SubmitTransaction)
		accounts.POST("/balance/recompute", rl("commands"), accountHandler.Recompute)
		accounts.POST("/postings", rl("postings"), accountHandler.PostJournal)
	}

	if deps.Jobs != nil {
		jobHandler := NewJobHandler(deps.Jobs)
		v1.POST("/jobs/:job/run", rl("jobs"), jobHandler.Run)
	}

	return r
}
