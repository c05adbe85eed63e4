// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, identity propagation, logging, panic
// recovery, metrics, compression, CORS, security headers, and rate limiting.
//
// Design goals:
//   - Observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/careboard/go-board-backend/internal/cache"
	"github.com/careboard/go-board-backend/internal/config"
	"github.com/careboard/go-board-backend/internal/domain"
	"github.com/careboard/go-board-backend/internal/http/handlers"
	"github.com/careboard/go-board-backend/internal/http/middleware"
	"github.com/careboard/go-board-backend/internal/identity"
	"github.com/careboard/go-board-backend/internal/query"
	"github.com/careboard/go-board-backend/internal/repo"
	"github.com/careboard/go-board-backend/internal/services"
)

// boardRepoShim adapts the repository free functions to the services.BoardRepo
// interface expected by the BoardService. This keeps services decoupled from
// the concrete repo package while reusing existing functions.
type boardRepoShim struct{}

// FindPage proxies repo.FindRequestsPage.
func (boardRepoShim) FindPage(ctx context.Context, db *gorm.DB, spec query.Spec, categoryID *string) ([]domain.Request, error) {
	return repo.FindRequestsPage(ctx, db, spec, categoryID)
}

// Count proxies repo.CountRequests.
func (boardRepoShim) Count(ctx context.Context, db *gorm.DB, spec query.Spec, categoryID *string) (int64, error) {
	return repo.CountRequests(ctx, db, spec, categoryID)
}

// ActiveCategories proxies repo.ListActiveCategories.
func (boardRepoShim) ActiveCategories(ctx context.Context, db *gorm.DB, t domain.BoardType) ([]domain.Category, error) {
	return repo.ListActiveCategories(ctx, db, t)
}

// requestRepoShim adapts the repo free functions to services.RequestRepo.
type requestRepoShim struct{}

// Get proxies repo.GetRequest.
func (requestRepoShim) Get(ctx context.Context, db *gorm.DB, id string) (*domain.Request, error) {
	return repo.GetRequest(ctx, db, id)
}

// Create proxies repo.CreateRequest.
func (requestRepoShim) Create(ctx context.Context, db *gorm.DB, ownerID string, t domain.BoardType, categoryID *string, description string) (*domain.Request, error) {
	return repo.CreateRequest(ctx, db, ownerID, t, categoryID, description)
}

// UpdateResponseState proxies repo.UpdateResponseState.
func (requestRepoShim) UpdateResponseState(ctx context.Context, db *gorm.DB, id string, expectedVersion int64, state domain.ResponseState, fulfilled bool) error {
	return repo.UpdateResponseState(ctx, db, id, expectedVersion, state, fulfilled)
}

// Delete proxies repo.DeleteRequest.
func (requestRepoShim) Delete(ctx context.Context, db *gorm.DB, id, ownerID string) error {
	return repo.DeleteRequest(ctx, db, id, ownerID)
}

// Category proxies repo.GetCategory.
func (requestRepoShim) Category(ctx context.Context, db *gorm.DB, id string) (*domain.Category, error) {
	return repo.GetCategory(ctx, db, id)
}

// moderationRepoShim adapts the repo free functions to services.ModerationRepo.
type moderationRepoShim struct{}

// Get proxies repo.GetRequest.
func (moderationRepoShim) Get(ctx context.Context, db *gorm.DB, id string) (*domain.Request, error) {
	return repo.GetRequest(ctx, db, id)
}

// AppendLog proxies repo.AppendModerationLog.
func (moderationRepoShim) AppendLog(ctx context.Context, db *gorm.DB, moderatorID, itemID string, itemType domain.BoardType, action domain.ModerationAction, reason string) (*domain.ModerationLog, error) {
	return repo.AppendModerationLog(ctx, db, moderatorID, itemID, itemType, action, reason)
}

// SetStatus proxies repo.SetRequestStatus.
func (moderationRepoShim) SetStatus(ctx context.Context, db *gorm.DB, id string, status domain.RequestStatus, flagged bool) error {
	return repo.SetRequestStatus(ctx, db, id, status, flagged)
}

// HardDelete proxies repo.HardDeleteRequest.
func (moderationRepoShim) HardDelete(ctx context.Context, db *gorm.DB, id string) error {
	return repo.HardDeleteRequest(ctx, db, id)
}

// Category proxies repo.GetCategory.
func (moderationRepoShim) Category(ctx context.Context, db *gorm.DB, id string) (*domain.Category, error) {
	return repo.GetCategory(ctx, db, id)
}

// rolesShim answers role questions for the handlers layer via the user
// directory.
type rolesShim struct {
	dir identity.Directory
}

// Resolve returns (canModerate, isAdmin) for userID.
func (s rolesShim) Resolve(ctx context.Context, userID string) (bool, bool, error) {
	u, err := s.dir.ResolveUser(ctx, userID)
	if err != nil {
		return false, false, err
	}
	return u.CanModerate(), u.IsAdmin(), nil
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), identity
// propagation and rate limiting, CORS and security headers, health and
// metrics endpoints, and then mounts the public API under the configured
// base path.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Identity: acting user id into context (logger + limiter key on it)
//  4. Logger: structured access logs with header masking
//  5. Recovery: capture panics after logger
//  6. Body size limiter
//  7. Gzip compression (board pages are large JSON)
//  8. Metrics
//  9. Rate limiter (per user/IP)
//  10. CORS and security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, store cache.Store, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Acting user id into context
	r.Use(middleware.Identity())

	// 4) Structured logging with header masking
	r.Use(middleware.Logger(middleware.LogOptions{
		MaskHeaders: []string{
			"Authorization",
			"X-API-Key",
		},
	}))

	// 5) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 6) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 7) Response compression
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 8) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 9) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 10) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", "If-None-Match"},
			ExposeHeaders:    []string{"X-Request-ID", "ETag", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", "If-None-Match"},
			ExposeHeaders:    []string{"X-Request-ID", "ETag", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// API docs (opt-in)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/cache
	dir := &identity.GormDirectory{DB: db}

	boardSvc := services.NewBoardService(db, boardRepoShim{}, dir, store)
	boardSvc.TotalTTL = cfg.Board.TotalTTL
	boardSvc.CategoriesTTL = cfg.Board.CategoriesTTL

	respSvc := services.NewResponseService(db, requestRepoShim{}, store)
	modSvc := services.NewModerationService(db, moderationRepoShim{}, store)
	catSvc := services.NewCategoryService(db, store)

	h := handlers.New(boardSvc, respSvc, modSvc, catSvc, rolesShim{dir: dir}, cfg.Board.PageSize)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Boards (read side)
		api.GET("/boards/:type", h.GetBoard)

		// Requests (lifecycle + aggregate mutations)
		api.POST("/requests", h.CreateRequest)
		api.DELETE("/requests/:id", h.DeleteRequest)
		api.POST("/requests/:id/participation", h.ToggleParticipation)
		api.PUT("/requests/:id/fulfillment", h.MarkFulfilled)

		// Moderation
		api.POST("/requests/:id/moderation", h.Moderate)

		// Category administration
		api.POST("/categories", h.CreateCategory)
		api.PUT("/categories/:id/active", h.SetCategoryActive)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
