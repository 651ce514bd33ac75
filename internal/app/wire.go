//go:build wireinject
// +build wireinject

package app

import (
	"github.com/cribnosh/server/internal/module/order"
	"github.com/cribnosh/server/internal/module/payment"
	sharedauth "github.com/cribnosh/server/internal/shared/auth"
	sharedcache "github.com/cribnosh/server/internal/shared/cache"
	"github.com/cribnosh/server/internal/shared/config"
	"github.com/cribnosh/server/internal/shared/events"
	"github.com/cribnosh/server/internal/shared/logger"
	"github.com/cribnosh/server/internal/utils/metrics"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies holds all injected dependencies.
type Dependencies struct {
	Config      *config.Config
	DB          *gorm.DB
	Redis       goredis.UniversalClient
	RateLimiter sharedcache.RateLimiter
	Logger      *logger.Logger
	ZapLogger   *zap.Logger
	Metrics     *metrics.Metrics
	EventBus    *events.Bus
	JWTManager  *sharedauth.JWTManager

	OrderRepo      order.Repository
	OrderService   *order.Service
	OrderHandler   *order.Handler
	PaymentService *payment.Service
	PaymentHandler *payment.Handler
}

// InitializeDependencies creates all dependencies using Wire.
func InitializeDependencies(cfg *config.Config) (*Dependencies, error) {
	wire.Build(
		AppSet,
		wire.Struct(new(Dependencies), "*"),
	)
	return nil, nil
}
