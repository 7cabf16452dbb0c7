package usecases

import (
	"context"
	"errors"

	"github.com/orris-inc/licensegate/internal/application/entitlement/dto"
	"github.com/orris-inc/licensegate/internal/domain/audit"
	"github.com/orris-inc/licensegate/internal/domain/store"
	"github.com/orris-inc/licensegate/internal/shared/biztime"
	apperrors "github.com/orris-inc/licensegate/internal/shared/errors"
	"github.com/orris-inc/licensegate/internal/shared/logger"
	"github.com/orris-inc/licensegate/internal/shared/utils"
)

const (
	DefaultUsageDays = 30
	MaxUsageDays     = 90
)

// GetStoreDetailUseCase serves the admin view of one store.
type GetStoreDetailUseCase struct {
	storeRepo store.Repository
	logger    logger.Interface
}

func NewGetStoreDetailUseCase(storeRepo store.Repository, logger logger.Interface) *GetStoreDetailUseCase {
	return &GetStoreDetailUseCase{
		storeRepo: storeRepo,
		logger:    logger,
	}
}

func (uc *GetStoreDetailUseCase) Execute(ctx context.Context, token string) (*dto.StoreDetail, error) {
	s, err := uc.storeRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrStoreNotFound) {
			return nil, apperrors.NewStoreNotFoundError()
		}
		uc.logger.Errorw("failed to load store detail", "token", utils.MaskToken(token), "error", err)
		return nil, apperrors.NewPersistenceFailureError()
	}
	return dto.NewStoreDetail(s), nil
}

// GetStoreUsageUseCase folds a store's audit trail into daily counts.
type GetStoreUsageUseCase struct {
	storeRepo store.Repository
	eventRepo audit.Repository
	now       Clock
	logger    logger.Interface
}

func NewGetStoreUsageUseCase(
	storeRepo store.Repository,
	eventRepo audit.Repository,
	now Clock,
	logger logger.Interface,
) *GetStoreUsageUseCase {
	return &GetStoreUsageUseCase{
		storeRepo: storeRepo,
		eventRepo: eventRepo,
		now:       now,
		logger:    logger,
	}
}

func (uc *GetStoreUsageUseCase) Execute(ctx context.Context, token string, days int) (*dto.StoreUsageResult, error) {
	if days == 0 {
		days = DefaultUsageDays
	}
	if days < 1 || days > MaxUsageDays {
		return nil, apperrors.NewValidationError("days must be between 1 and 90")
	}

	if _, err := uc.storeRepo.GetByToken(ctx, token); err != nil {
		if errors.Is(err, store.ErrStoreNotFound) {
			return nil, apperrors.NewStoreNotFoundError()
		}
		uc.logger.Errorw("failed to load store for usage", "token", utils.MaskToken(token), "error", err)
		return nil, apperrors.NewPersistenceFailureError()
	}

	now := uc.now()
	from := biztime.DaysBackUTC(now, days)
	to := biztime.EndOfDayUTC(now)

	events, err := uc.eventRepo.ListByStore(ctx, token, from, to)
	if err != nil {
		uc.logger.Errorw("failed to list store events", "token", utils.MaskToken(token), "error", err)
		return nil, apperrors.NewPersistenceFailureError()
	}

	usage := audit.GroupByDay(events, biztime.DayKey)
	if usage == nil {
		usage = []audit.DailyUsage{}
	}

	return &dto.StoreUsageResult{
		Token: token,
		Days:  days,
		From:  from,
		To:    to,
		Usage: usage,
	}, nil
}
