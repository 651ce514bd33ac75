package app

import (
	"fmt"

	"github.com/cribnosh/server/internal/module/order"
	"github.com/cribnosh/server/internal/module/payment"
	paymentprovider "github.com/cribnosh/server/internal/module/payment/provider"
	sharedauth "github.com/cribnosh/server/internal/shared/auth"
	sharedcache "github.com/cribnosh/server/internal/shared/cache"
	"github.com/cribnosh/server/internal/shared/config"
	"github.com/cribnosh/server/internal/shared/database"
	"github.com/cribnosh/server/internal/shared/events"
	"github.com/cribnosh/server/internal/shared/logger"
	"github.com/cribnosh/server/internal/utils/metrics"
	"github.com/cribnosh/server/internal/utils/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App represents the application.
type App struct {
	config    *config.Config
	db        *gorm.DB
	redis     redis.UniversalClient
	router    *gin.Engine
	logger    *logger.Logger
	zapLogger *zap.Logger
	metrics   *metrics.Metrics

	// Event infrastructure
	eventBus *events.Bus

	// Auth
	jwtManager *sharedauth.JWTManager

	// Modules
	orderRepo      order.Repository
	orderService   *order.Service
	orderHandler   *order.Handler
	paymentService *payment.Service
	paymentHandler *payment.Handler
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	zapLog, err := logger.NewZap(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("init zap logger: %w", err)
	}

	app := &App{
		config:    cfg,
		logger:    log,
		zapLogger: zapLog,
		metrics:   metrics.New("cribnosh"),
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	app.db = db

	if err := db.AutoMigrate(&order.Order{}, &order.Event{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	// Redis is optional: without it the idempotency and rate limit
	// middleware are skipped.
	if cfg.Redis.Address != "" {
		redisClient, err := sharedcache.NewRedisClient(&cfg.Redis)
		if err != nil {
			zapLog.Warn("redis connection failed, continuing without cache", zap.Error(err))
		} else {
			app.redis = redisClient
		}
	}

	app.jwtManager = sharedauth.NewJWTManager(&sharedauth.JWTConfig{
		Secret: cfg.Auth.JWTSecret,
		Issuer: "cribnosh",
	})

	if err := app.initModules(); err != nil {
		return nil, fmt.Errorf("init modules: %w", err)
	}

	app.router = app.setupRouter()
	app.registerRoutes()

	return app, nil
}

// initModules initializes all application modules.
func (a *App) initModules() error {
	a.eventBus = events.NewBus(a.zapLogger)

	a.orderRepo = order.NewRepository(a.db)

	// Payment first: the order service refunds through it.
	gateway := paymentprovider.NewStripeGateway(&paymentprovider.StripeConfig{
		APIKey: a.config.Stripe.APIKey,
	})
	a.paymentService = payment.NewService(
		gateway,
		a.orderRepo,
		a.eventBus,
		a.metrics,
		a.zapLogger,
		a.config.Stripe.RequestTimeout,
	)
	a.paymentHandler = payment.NewHandler(a.paymentService)

	a.orderService = order.NewService(
		a.orderRepo,
		a.paymentService,
		a.eventBus,
		a.metrics,
		a.zapLogger,
		a.config.Orders,
	)
	a.orderHandler = order.NewHandler(a.orderService)

	a.registerEventHandlers()
	return nil
}

// registerEventHandlers registers all domain event handlers.
func (a *App) registerEventHandlers() {
	// The audit trail is written off the event bus, so every committed
	// transition, refund and admin payment action leaves a record.
	a.eventBus.Register(order.NewAuditHandler(a.orderRepo))
}

// setupRouter creates and configures the Gin router.
func (a *App) setupRouter() *gin.Engine {
	if a.config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(middleware.Metrics(a.metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// registerRoutes registers routes for all modules.
func (a *App) registerRoutes() {
	v1 := a.router.Group("/api/v1")
	v1.Use(middleware.Auth(a.jwtManager))

	if a.redis != nil {
		// Replayed mutation requests get the cached response instead of
		// a second execution.
		v1.Use(middleware.Idempotency(a.redis, middleware.DefaultIdempotencyConfig()))

		limiter := sharedcache.NewRateLimiter(a.redis)
		v1.Use(middleware.RateLimit(limiter, middleware.DefaultRateLimitConfig()))
	}

	a.orderHandler.RegisterRoutes(v1)

	admin := v1.Group("/admin", middleware.RequireOperator())
	a.orderHandler.RegisterAdminRoutes(admin)
	a.paymentHandler.RegisterAdminRoutes(admin)
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop stops the application and releases resources.
func (a *App) Stop() {
	if a.zapLogger != nil {
		_ = a.zapLogger.Sync()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = database.Close(a.db)
	}
}
