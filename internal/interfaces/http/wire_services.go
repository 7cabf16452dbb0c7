package http

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/orris-inc/licensegate/internal/application/entitlement"
	"github.com/orris-inc/licensegate/internal/application/licensing"
	"github.com/orris-inc/licensegate/internal/domain/shared/events"
	"github.com/orris-inc/licensegate/internal/domain/store"
	"github.com/orris-inc/licensegate/internal/infrastructure/auth"
	"github.com/orris-inc/licensegate/internal/infrastructure/cache"
	"github.com/orris-inc/licensegate/internal/infrastructure/config"
	"github.com/orris-inc/licensegate/internal/infrastructure/email"
	"github.com/orris-inc/licensegate/internal/infrastructure/pubsub"
	"github.com/orris-inc/licensegate/internal/infrastructure/ratelimit"
	shareddb "github.com/orris-inc/licensegate/internal/shared/db"
	"github.com/orris-inc/licensegate/internal/shared/logger"
)

const dispatcherBufferSize = 256

// services holds the application services and the infrastructure they share.
type services struct {
	limiter     *ratelimit.Limiter
	memoryStore *ratelimit.MemoryCounterStore // nil when Redis counts requests
	adminTokens *auth.AdminTokenService
	dispatcher  *events.InMemoryEventDispatcher
	entitlement *entitlement.ServiceDDD
	licensing   *licensing.ServiceDDD
}

// LoadPlanTable builds the plan table. config.Load has already merged
// plans_file into the inline plans.
func LoadPlanTable(cfg *config.Config) (*store.PlanTable, error) {
	return store.NewPlanTable(cfg.Entitlement.Plans, cfg.Entitlement.DefaultLimit)
}

// NewLicensingService wires the licensing service on its own so the inbox
// worker can run it without the HTTP stack.
func NewLicensingService(
	cfg *config.Config,
	storeRepo store.Repository,
	txMgr shareddb.TxRunner,
	publisher events.EventPublisher,
	log logger.Interface,
) (*licensing.ServiceDDD, error) {
	plans, err := LoadPlanTable(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan table: %w", err)
	}
	policy := licensing.Policy{
		ProductID:  cfg.Entitlement.ProductID,
		PriceTiers: cfg.Entitlement.PriceTiers,
	}
	return licensing.NewServiceDDD(storeRepo, plans, txMgr, publisher, policy, log.Named("licensing")), nil
}

func newServices(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, repos *repositories, log logger.Interface) (*services, error) {
	svcs := &services{}

	var counters ratelimit.CounterStore
	if redisClient != nil {
		counters = ratelimit.NewRedisCounterStore(redisClient)
	} else {
		svcs.memoryStore = ratelimit.NewMemoryCounterStore()
		counters = svcs.memoryStore
		log.Warnw("redis disabled, rate limit counters are local to this instance")
	}
	svcs.limiter = ratelimit.NewLimiter(counters, cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.Window())

	svcs.dispatcher = NewEventDispatcher(cfg, redisClient, log)

	verifier := auth.NewSignatureVerifier(cfg.Entitlement.Skew())

	opts := entitlement.Options{
		UpgradeURL:          cfg.Entitlement.UpgradeURL,
		LatestPluginVersion: cfg.Entitlement.LatestPlugin,
		Version:             cfg.Server.Version,
		DBProbe: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisClient != nil {
		opts.RedisProbe = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	svcs.entitlement = entitlement.NewServiceDDD(
		repos.storeRepo,
		repos.eventRepo,
		verifier,
		svcs.limiter,
		svcs.dispatcher,
		opts,
		log.Named("entitlement"),
	)

	licensingSvc, err := NewLicensingService(cfg, repos.storeRepo, repos.txMgr, svcs.dispatcher, log)
	if err != nil {
		return nil, err
	}
	svcs.licensing = licensingSvc

	svcs.adminTokens = auth.NewAdminTokenService(cfg.Admin.JWTSecret, cfg.Admin.Issuer, cfg.Admin.TokenTTL())

	return svcs, nil
}

// NewEventDispatcher creates the outbound event dispatcher with the Redis
// relay and the limit alerter attached when they are configured. The
// dispatcher is returned unstarted.
func NewEventDispatcher(cfg *config.Config, redisClient *redis.Client, log logger.Interface) *events.InMemoryEventDispatcher {
	dispatcher := events.NewInMemoryEventDispatcher(dispatcherBufferSize, log.Named("dispatcher"))

	if redisClient != nil && cfg.Notify.EventsChannel != "" {
		relay := pubsub.NewRedisStoreEventPublisher(redisClient, cfg.Notify.EventsChannel, log.Named("event_relay"))
		if err := dispatcher.Subscribe(events.Wildcard, relay); err != nil {
			log.Warnw("failed to subscribe event relay", "error", err)
		}
	}

	if cfg.Notify.Enabled && cfg.Notify.AlertAddress != "" {
		mailer := email.NewSMTPEmailService(email.SMTPConfigFrom(&cfg.Notify))
		alerter := email.NewLimitAlerter(mailer, cfg.Notify.AlertAddress, cfg.Entitlement.UpgradeURL, log.Named("limit_alerter"))
		if redisClient != nil {
			alerter.WithCooldown(cache.NewAlertDeduplicator(redisClient), cfg.Notify.AlertCooldown())
		}
		for _, eventType := range []string{store.EventLimitReached, store.EventStoreOverLimit} {
			if err := dispatcher.Subscribe(eventType, alerter); err != nil {
				log.Warnw("failed to subscribe limit alerter", "event_type", eventType, "error", err)
			}
		}
	}

	return dispatcher
}
