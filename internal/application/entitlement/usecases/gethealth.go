package usecases

import (
	"context"

	"github.com/orris-inc/licensegate/internal/application/entitlement/dto"
	"github.com/orris-inc/licensegate/internal/domain/audit"
	"github.com/orris-inc/licensegate/internal/domain/store"
	"github.com/orris-inc/licensegate/internal/shared/biztime"
	"github.com/orris-inc/licensegate/internal/shared/logger"
)

// GetHealthUseCase aggregates ledger gauges and dependency state.
type GetHealthUseCase struct {
	storeRepo   store.Repository
	eventRepo   audit.Repository
	auditHealth AuditHealthReporter
	dbProbe     Probe
	redisProbe  Probe
	version     string
	now         Clock
	logger      logger.Interface
}

// NewGetHealthUseCase creates the health use case. A nil redisProbe reports
// Redis as disabled.
func NewGetHealthUseCase(
	storeRepo store.Repository,
	eventRepo audit.Repository,
	auditHealth AuditHealthReporter,
	dbProbe Probe,
	redisProbe Probe,
	version string,
	now Clock,
	logger logger.Interface,
) *GetHealthUseCase {
	return &GetHealthUseCase{
		storeRepo:   storeRepo,
		eventRepo:   eventRepo,
		auditHealth: auditHealth,
		dbProbe:     dbProbe,
		redisProbe:  redisProbe,
		version:     version,
		now:         now,
		logger:      logger,
	}
}

// Execute never fails; an unreachable dependency shows up in the result.
func (uc *GetHealthUseCase) Execute(ctx context.Context) *dto.HealthResult {
	now := uc.now()
	result := &dto.HealthResult{
		Status:    dto.HealthStatusHealthy,
		Version:   uc.version,
		Database:  dto.DatabaseConnected,
		Timestamp: now,
		Audit:     uc.auditHealth.Health(),
		Redis:     dto.ComponentDisabled,
	}

	if err := uc.dbProbe(ctx); err != nil {
		uc.logger.Errorw("health check: database unreachable", "error", err)
		result.Database = dto.DatabaseDisconnected
		result.Status = dto.HealthStatusUnhealthy
		return result
	}

	if stats, err := uc.storeRepo.Stats(ctx); err != nil {
		uc.logger.Warnw("health check: failed to read store stats", "error", err)
		result.Status = dto.HealthStatusDegraded
	} else {
		result.TotalStores = stats.TotalStores
		result.ConnectedStores = stats.ConnectedStores
		result.StoresAtLimit = stats.StoresAtLimit
	}

	if counts, err := uc.eventRepo.CountBetween(ctx, biztime.StartOfDayUTC(now), now); err != nil {
		uc.logger.Warnw("health check: failed to count today's events", "error", err)
		result.Status = dto.HealthStatusDegraded
	} else {
		result.EventsToday = counts.Total
		result.DenialsToday = counts.Denials
	}

	if uc.redisProbe != nil {
		if err := uc.redisProbe(ctx); err != nil {
			uc.logger.Warnw("health check: redis unreachable", "error", err)
			result.Redis = dto.ComponentDown
			result.Status = dto.HealthStatusDegraded
		} else {
			result.Redis = dto.ComponentOK
		}
	}

	if result.Audit.Status != dto.ComponentOK {
		result.Status = dto.HealthStatusDegraded
	}

	return result
}
