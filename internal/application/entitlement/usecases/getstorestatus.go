package usecases

import (
	"context"
	"errors"

	"github.com/orris-inc/licensegate/internal/application/entitlement/dto"
	"github.com/orris-inc/licensegate/internal/domain/store"
	apperrors "github.com/orris-inc/licensegate/internal/shared/errors"
	"github.com/orris-inc/licensegate/internal/shared/logger"
	"github.com/orris-inc/licensegate/internal/shared/utils"
	"github.com/orris-inc/licensegate/internal/shared/version"
)

// GetStoreStatusUseCase reports a store's entitlement. It writes nothing but
// last_seen_at.
type GetStoreStatusUseCase struct {
	storeRepo    store.Repository
	upgradeURL   string
	latestPlugin string
	now          Clock
	logger       logger.Interface
}

func NewGetStoreStatusUseCase(
	storeRepo store.Repository,
	upgradeURL string,
	latestPlugin string,
	now Clock,
	logger logger.Interface,
) *GetStoreStatusUseCase {
	return &GetStoreStatusUseCase{
		storeRepo:    storeRepo,
		upgradeURL:   upgradeURL,
		latestPlugin: latestPlugin,
		now:          now,
		logger:       logger,
	}
}

func (uc *GetStoreStatusUseCase) Execute(ctx context.Context, req dto.StatusRequest) (*dto.StatusResult, error) {
	s, err := uc.storeRepo.GetByToken(ctx, req.StoreToken)
	if err != nil {
		if errors.Is(err, store.ErrStoreNotFound) {
			return nil, apperrors.NewStoreNotFoundError()
		}
		uc.logger.Errorw("failed to load store status",
			"token", utils.MaskToken(req.StoreToken),
			"error", err,
		)
		return nil, apperrors.NewPersistenceFailureError()
	}

	if err := uc.storeRepo.Touch(ctx, req.StoreToken, uc.now()); err != nil {
		// A missed heartbeat does not invalidate the read.
		uc.logger.Warnw("failed to record store heartbeat", "token", utils.MaskToken(req.StoreToken), "error", err)
	}

	e := s.Entitlement()
	result := &dto.StatusResult{
		Connected:        s.IsConnected(),
		Snapshot:         dto.NewSnapshot(s),
		UsagePercent:     e.UsagePercent,
		OverLimit:        s.IsOverLimit(),
		OverLimitAmount:  s.OverLimitAmount(),
		UpgradeAvailable: e.UpgradeExists,
	}
	if e.UpgradeExists {
		result.NextPlan = e.NextPlan.String()
		result.UpgradeURL = uc.upgradeURL
	}
	if req.PluginVersion != "" && version.UpdateAvailable(req.PluginVersion, uc.latestPlugin) {
		result.PluginUpdateAvailable = true
		result.LatestPluginVersion = version.Normalize(uc.latestPlugin)
	}
	return result, nil
}
