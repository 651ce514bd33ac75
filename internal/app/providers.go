package app

import (
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
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ===== Infrastructure providers =====

// InfraSet provides infrastructure dependencies.
var InfraSet = wire.NewSet(
	ProvideLogger,
	ProvideZapLogger,
	ProvideMetrics,
	ProvideDatabase,
	ProvideRedisClient,
	ProvideRateLimiter,
	ProvideEventBus,
	ProvideJWTManager,
)

// ProvideLogger creates a logger instance.
func ProvideLogger(cfg *config.Config) *logger.Logger {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
}

// ProvideZapLogger creates a zap logger instance.
func ProvideZapLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.NewZap(cfg.Log.Level)
}

// ProvideMetrics creates a metrics instance.
func ProvideMetrics() *metrics.Metrics {
	return metrics.New("cribnosh")
}

// ProvideDatabase creates a database connection.
func ProvideDatabase(cfg *config.Config) (*gorm.DB, error) {
	return database.New(&cfg.Database)
}

// ProvideRedisClient creates a Redis client, or nil when unconfigured.
func ProvideRedisClient(cfg *config.Config, zapLog *zap.Logger) goredis.UniversalClient {
	if cfg.Redis.Address == "" {
		return nil
	}
	client, err := sharedcache.NewRedisClient(&cfg.Redis)
	if err != nil {
		zapLog.Warn("redis connection failed, continuing without cache", zap.Error(err))
		return nil
	}
	return client
}

// ProvideRateLimiter creates a Redis-backed rate limiter.
func ProvideRateLimiter(redis goredis.UniversalClient) sharedcache.RateLimiter {
	if redis == nil {
		return nil
	}
	return sharedcache.NewRateLimiter(redis)
}

// ProvideEventBus creates the domain event bus.
func ProvideEventBus(zapLog *zap.Logger) *events.Bus {
	return events.NewBus(zapLog)
}

// ProvideJWTManager creates the token validator.
func ProvideJWTManager(cfg *config.Config) *sharedauth.JWTManager {
	return sharedauth.NewJWTManager(&sharedauth.JWTConfig{
		Secret: cfg.Auth.JWTSecret,
		Issuer: "cribnosh",
	})
}

// ===== Module providers =====

// ModuleSet provides the order and payment modules.
var ModuleSet = wire.NewSet(
	ProvideOrderRepository,
	ProvideGateway,
	ProvidePaymentService,
	ProvideOrderService,
	order.NewHandler,
	payment.NewHandler,
	wire.Bind(new(order.Refunder), new(*payment.Service)),
)

// ProvideOrderRepository creates the order repository.
func ProvideOrderRepository(db *gorm.DB) order.Repository {
	return order.NewRepository(db)
}

// ProvideGateway creates the payment gateway client.
func ProvideGateway(cfg *config.Config) paymentprovider.Gateway {
	return paymentprovider.NewStripeGateway(&paymentprovider.StripeConfig{
		APIKey: cfg.Stripe.APIKey,
	})
}

// ProvidePaymentService creates the payment service.
func ProvidePaymentService(
	gateway paymentprovider.Gateway,
	orders order.Repository,
	bus *events.Bus,
	m *metrics.Metrics,
	zapLog *zap.Logger,
	cfg *config.Config,
) *payment.Service {
	return payment.NewService(gateway, orders, bus, m, zapLog, cfg.Stripe.RequestTimeout)
}

// ProvideOrderService creates the order lifecycle service.
func ProvideOrderService(
	repo order.Repository,
	refund order.Refunder,
	bus *events.Bus,
	m *metrics.Metrics,
	zapLog *zap.Logger,
	cfg *config.Config,
) *order.Service {
	return order.NewService(repo, refund, bus, m, zapLog, cfg.Orders)
}

// AppSet is the complete provider set.
var AppSet = wire.NewSet(
	InfraSet,
	ModuleSet,
)
