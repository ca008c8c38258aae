package router

import (
	"time"

	"github.com/Team-Techentia/veedra-sub001/internal/config"
	"github.com/Team-Techentia/veedra-sub001/internal/handler"
	"github.com/Team-Techentia/veedra-sub001/internal/infra"
	"github.com/Team-Techentia/veedra-sub001/internal/middleware"
	"github.com/Team-Techentia/veedra-sub001/internal/pricing"
	"github.com/Team-Techentia/veedra-sub001/internal/repository"
	"github.com/Team-Techentia/veedra-sub001/internal/sequence"
	"github.com/Team-Techentia/veedra-sub001/internal/service"
	"github.com/Team-Techentia/veedra-sub001/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// NewAllocator builds the store selected by SEQUENCE_BACKEND behind a circuit
// breaker. The memory backend is for local runs only: counters reset on restart.
func NewAllocator(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *sequence.Guarded {
	var inner sequence.Allocator
	switch cfg.SequenceBackend {
	case "redis":
		inner = sequence.NewRedisAllocator(rdb)
	case "memory":
		log.Warn().Msg("sequence: memory backend, codes restart with the process")
		inner = sequence.NewMemoryAllocator()
	default:
		inner = repository.NewSequenceRepository(db)
	}
	return sequence.NewGuarded(inner, infra.NewCircuitBreaker(infra.DefaultCBConfig()))
}

// Prefixes reads the barcode prefixes from config, falling back per role.
func Prefixes(cfg *config.Config) pricing.BarcodePrefixes {
	p := pricing.DefaultBarcodePrefixes()
	if cfg.BarcodePrefixParent != "" {
		p.Parent = cfg.BarcodePrefixParent
	}
	if cfg.BarcodePrefixChild != "" {
		p.Child = cfg.BarcodePrefixChild
	}
	if cfg.BarcodePrefixStandalone != "" {
		p.Standalone = cfg.BarcodePrefixStandalone
	}
	return p
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// dispatcher may be nil, in which case bills close without a receipt job.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, alloc *sequence.Guarded, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	// Callers never retry on their own; transient store failures back off here.
	retrying := sequence.Retrying(alloc, cfg.SequenceMaxAttempts)
	prefixes := Prefixes(cfg)

	// ── Repositories ─────────────────────────────────────────────────────────
	productRepo := repository.NewProductRepository(db)
	comboRepo := repository.NewComboRepository(db)
	billRepo := repository.NewBillRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	comboSvc := service.NewComboService(comboRepo)
	bundleSvc := service.NewBundleService(productRepo, retrying, prefixes)
	billingSvc := service.NewBillingService(productRepo, comboRepo, billRepo, retrying, dispatcher)
	codeSvc := service.NewCodeService(retrying)
	catalogSvc := service.NewCatalogService(productRepo, prefixes)

	// ── Handlers ─────────────────────────────────────────────────────────────
	combosH := handler.NewCombosHandler(comboSvc)
	bundlesH := handler.NewBundlesHandler(bundleSvc)
	billsH := handler.NewBillsHandler(billingSvc)
	codesH := handler.NewCodesHandler(codeSvc)
	scanH := handler.NewScanHandler(catalogSvc, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb, alloc.Breaker()))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		combos := v1.Group("/combos")
		{
			combos.POST("", combosH.Create)
			combos.GET("", combosH.List)
			combos.GET("/:code", combosH.Get)
			combos.DELETE("/:code", combosH.Deactivate)
			combos.POST("/:code/pause", combosH.Pause)
			combos.POST("/:code/resume", combosH.Resume)
			combos.POST("/:code/evaluate", combosH.Evaluate)
		}

		v1.POST("/bundles", bundlesH.Create)
		v1.GET("/bundles/:id/children", bundlesH.Children)

		v1.POST("/bills", billsH.Close)
		v1.GET("/bills/:number", billsH.Get)

		v1.POST("/codes/vendor", codesH.Vendor)
		v1.POST("/codes/category", codesH.Category)

		// Till barcode lookup, read only
		v1.GET("/scan/:barcode", scanH.Scan)
	}

	// Swagger UI, only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
