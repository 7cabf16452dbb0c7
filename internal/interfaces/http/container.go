package http

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/orris-inc/licensegate/internal/infrastructure/config"
	"github.com/orris-inc/licensegate/internal/shared/goroutine"
	"github.com/orris-inc/licensegate/internal/shared/logger"
)

// Container holds every dependency of the HTTP server and owns the
// lifecycle of the background pieces, providing a Shutdown() method for
// graceful termination.
type Container struct {
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	repos       *repositories
	svcs        *services
	hdlrs       *allHandlers
	middlewares *allMiddlewares

	sweepDone chan struct{}
}

// NewContainer builds the dependency graph. redisClient may be nil when
// Redis is disabled; rate limiting then falls back to in-process counters
// and the event relay is not attached.
func NewContainer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
		redis:  redisClient,
	}

	c.repos = newRepositories(db, log)

	svcs, err := newServices(cfg, db, redisClient, c.repos, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	c.svcs = svcs

	if err := c.svcs.dispatcher.Start(); err != nil {
		return nil, fmt.Errorf("failed to start event dispatcher: %w", err)
	}

	c.hdlrs = newHandlers(c.svcs, log)
	c.middlewares = newMiddlewares(c.svcs, log)

	if c.svcs.memoryStore != nil {
		c.startCounterSweep(cfg.RateLimit.Window())
	}

	return c, nil
}

// startCounterSweep drops expired in-process rate limit windows once per
// window length.
func (c *Container) startCounterSweep(window time.Duration) {
	c.sweepDone = make(chan struct{})
	goroutine.SafeGo(c.log, "rate-limit-sweep", func() {
		ticker := time.NewTicker(window)
		defer ticker.Stop()
		for {
			select {
			case <-c.sweepDone:
				return
			case <-ticker.C:
				if removed := c.svcs.memoryStore.Sweep(); removed > 0 {
					c.log.Debugw("swept expired rate limit windows", "removed", removed)
				}
			}
		}
	})
}

// Shutdown stops background work. The dispatcher drains queued events.
func (c *Container) Shutdown() {
	if c.sweepDone != nil {
		close(c.sweepDone)
	}
	if err := c.svcs.dispatcher.Stop(); err != nil {
		c.log.Warnw("failed to stop event dispatcher", "error", err)
	}
	c.log.Infow("container shut down")
}
