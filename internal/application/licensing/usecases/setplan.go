package usecases

import (
	"context"
	"errors"

	"github.com/orris-inc/licensegate/internal/application/licensing/dto"
	"github.com/orris-inc/licensegate/internal/domain/shared/events"
	"github.com/orris-inc/licensegate/internal/domain/store"
	apperrors "github.com/orris-inc/licensegate/internal/shared/errors"
	"github.com/orris-inc/licensegate/internal/shared/logger"
	"github.com/orris-inc/licensegate/internal/shared/utils"
)

// SetPlanUseCase moves a store to another plan. The count is never touched;
// a store left above its new limit is flagged over limit instead.
type SetPlanUseCase struct {
	storeRepo store.Repository
	plans     *store.PlanTable
	publisher events.EventPublisher
	logger    logger.Interface
}

func NewSetPlanUseCase(storeRepo store.Repository, plans *store.PlanTable, publisher events.EventPublisher, logger logger.Interface) *SetPlanUseCase {
	return &SetPlanUseCase{
		storeRepo: storeRepo,
		plans:     plans,
		publisher: publisher,
		logger:    logger,
	}
}

func (uc *SetPlanUseCase) Execute(ctx context.Context, token string, planName string) (*dto.SetPlanResult, error) {
	plan := store.ParsePlan(planName)
	if plan.IsEmpty() {
		return nil, apperrors.NewValidationError("plan is required")
	}

	before, err := uc.storeRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, uc.mapError(token, err)
	}

	limit, known := uc.plans.LimitFor(plan)
	if !known {
		uc.logger.Warnw("unknown plan, applying default cap",
			"token", utils.MaskToken(token),
			"plan", plan,
			"default_limit", uc.plans.DefaultLimit(),
		)
	}

	after, err := uc.storeRepo.ApplyPlan(ctx, token, plan, limit)
	if err != nil {
		return nil, uc.mapError(token, err)
	}

	// Notify once per overage: on the transition into over limit, or when a
	// further plan change moves the overage.
	if after.IsOverLimit() && (!before.IsOverLimit() || before.OverLimitAmount() != after.OverLimitAmount()) {
		uc.logger.Warnw("store over limit after plan change",
			"token", utils.MaskToken(token),
			"plan", plan,
			"count", after.Count(),
			"overage", after.OverLimitAmount(),
		)
		publish(uc.publisher, uc.logger, store.NewOverLimitEvent(after))
	}

	return dto.NewSetPlanResult(after, known), nil
}

func (uc *SetPlanUseCase) mapError(token string, err error) error {
	if errors.Is(err, store.ErrStoreNotFound) {
		return apperrors.NewStoreNotFoundError()
	}
	uc.logger.Errorw("failed to set plan", "token", utils.MaskToken(token), "error", err)
	return apperrors.NewPersistenceFailureError()
}
