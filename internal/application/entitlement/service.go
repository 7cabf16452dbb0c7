// Package entitlement orchestrates the store-facing entitlement protocol:
// authentication, reservation, release, status, sync and health.
package entitlement

import (
	"context"
	"time"

	"github.com/orris-inc/licensegate/internal/application/entitlement/dto"
	"github.com/orris-inc/licensegate/internal/application/entitlement/usecases"
	"github.com/orris-inc/licensegate/internal/domain/audit"
	"github.com/orris-inc/licensegate/internal/domain/shared/events"
	"github.com/orris-inc/licensegate/internal/domain/store"
	"github.com/orris-inc/licensegate/internal/infrastructure/auth"
	"github.com/orris-inc/licensegate/internal/shared/logger"
)

// Options carries deployment settings surfaced in responses.
type Options struct {
	UpgradeURL          string
	LatestPluginVersion string
	Version             string
	// RedisProbe is nil when Redis is disabled.
	RedisProbe usecases.Probe
	DBProbe    usecases.Probe
	Now        func() time.Time
}

// ServiceDDD wires the entitlement use cases around one ledger.
type ServiceDDD struct {
	auditLog     *AuditLog
	authenticate *usecases.AuthenticateRequestUseCase
	reserve      *usecases.ReserveLicenseUseCase
	release      *usecases.ReleaseLicenseUseCase
	status       *usecases.GetStoreStatusUseCase
	sync         *usecases.SyncLicensesUseCase
	health       *usecases.GetHealthUseCase
	detail       *usecases.GetStoreDetailUseCase
	usage        *usecases.GetStoreUsageUseCase
}

// NewServiceDDD creates the entitlement service.
func NewServiceDDD(
	storeRepo store.Repository,
	eventRepo audit.Repository,
	verifier *auth.SignatureVerifier,
	limiter usecases.RateLimiter,
	publisher events.EventPublisher,
	opts Options,
	log logger.Interface,
) *ServiceDDD {
	now := usecases.Clock(opts.Now)
	if opts.Now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	dbProbe := opts.DBProbe
	if dbProbe == nil {
		dbProbe = func(context.Context) error { return nil }
	}

	auditLog := NewAuditLog(eventRepo, log.Named("audit"))

	return &ServiceDDD{
		auditLog:     auditLog,
		authenticate: usecases.NewAuthenticateRequestUseCase(storeRepo, verifier, limiter, log.Named("authenticate")),
		reserve:      usecases.NewReserveLicenseUseCase(storeRepo, auditLog, publisher, opts.UpgradeURL, now, log.Named("reserve")),
		release:      usecases.NewReleaseLicenseUseCase(storeRepo, auditLog, publisher, now, log.Named("release")),
		status:       usecases.NewGetStoreStatusUseCase(storeRepo, opts.UpgradeURL, opts.LatestPluginVersion, now, log.Named("status")),
		sync:         usecases.NewSyncLicensesUseCase(storeRepo, auditLog, publisher, now, log.Named("sync")),
		health:       usecases.NewGetHealthUseCase(storeRepo, eventRepo, auditLog, dbProbe, opts.RedisProbe, opts.Version, now, log.Named("health")),
		detail:       usecases.NewGetStoreDetailUseCase(storeRepo, log.Named("admin")),
		usage:        usecases.NewGetStoreUsageUseCase(storeRepo, eventRepo, now, log.Named("admin")),
	}
}

func (s *ServiceDDD) Authenticate(ctx context.Context, req dto.SignedRequest) (*store.Store, error) {
	return s.authenticate.Execute(ctx, req)
}

func (s *ServiceDDD) AuthorizeStatus(ctx context.Context, token string) (*store.Store, error) {
	return s.authenticate.AuthorizeStatus(ctx, token)
}

func (s *ServiceDDD) Reserve(ctx context.Context, req dto.ReserveRequest) (*dto.ReserveResult, error) {
	return s.reserve.Execute(ctx, req)
}

func (s *ServiceDDD) Release(ctx context.Context, req dto.ReleaseRequest) (*dto.ReleaseResult, error) {
	return s.release.Execute(ctx, req)
}

func (s *ServiceDDD) Status(ctx context.Context, req dto.StatusRequest) (*dto.StatusResult, error) {
	return s.status.Execute(ctx, req)
}

func (s *ServiceDDD) Sync(ctx context.Context, req dto.SyncRequest) (*dto.SyncResult, error) {
	return s.sync.Execute(ctx, req)
}

func (s *ServiceDDD) Health(ctx context.Context) *dto.HealthResult {
	return s.health.Execute(ctx)
}

func (s *ServiceDDD) StoreDetail(ctx context.Context, token string) (*dto.StoreDetail, error) {
	return s.detail.Execute(ctx, token)
}

func (s *ServiceDDD) StoreUsage(ctx context.Context, token string, days int) (*dto.StoreUsageResult, error) {
	return s.usage.Execute(ctx, token, days)
}

// AuditLog exposes the audit writer for other application services.
func (s *ServiceDDD) AuditLog() *AuditLog {
	return s.auditLog
}
