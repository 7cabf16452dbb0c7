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

// DisconnectStoreUseCase marks a store disconnected. Repeating it is a no-op.
type DisconnectStoreUseCase struct {
	storeRepo store.Repository
	publisher events.EventPublisher
	logger    logger.Interface
}

func NewDisconnectStoreUseCase(storeRepo store.Repository, publisher events.EventPublisher, logger logger.Interface) *DisconnectStoreUseCase {
	return &DisconnectStoreUseCase{
		storeRepo: storeRepo,
		publisher: publisher,
		logger:    logger,
	}
}

func (uc *DisconnectStoreUseCase) Execute(ctx context.Context, token string) (*dto.DisconnectResult, error) {
	var (
		s       *store.Store
		changed bool
	)
	err := retryOnConflict(ctx, func(ctx context.Context) error {
		current, err := uc.storeRepo.GetByToken(ctx, token)
		if err != nil {
			return err
		}
		s = current
		changed = current.Disconnect()
		if !changed {
			return nil
		}
		return uc.storeRepo.Update(ctx, current)
	})
	if err != nil {
		if errors.Is(err, store.ErrStoreNotFound) {
			return nil, apperrors.NewStoreNotFoundError()
		}
		uc.logger.Errorw("failed to disconnect store",
			"token", utils.MaskToken(token),
			"error", err,
		)
		return nil, apperrors.NewPersistenceFailureError()
	}

	if changed {
		uc.logger.Infow("store disconnected", "token", utils.MaskToken(token), "count", s.Count())
		publish(uc.publisher, uc.logger, store.NewDisconnectedEvent(s))
	}

	return &dto.DisconnectResult{
		StoreToken: s.Token(),
		Changed:    changed,
		Count:      s.Count(),
	}, nil
}
