package usecases

import (
	"context"
	"errors"

	"github.com/orris-inc/licensegate/internal/application/entitlement/dto"
	"github.com/orris-inc/licensegate/internal/domain/audit"
	"github.com/orris-inc/licensegate/internal/domain/shared/events"
	"github.com/orris-inc/licensegate/internal/domain/store"
	apperrors "github.com/orris-inc/licensegate/internal/shared/errors"
	"github.com/orris-inc/licensegate/internal/shared/logger"
	"github.com/orris-inc/licensegate/internal/shared/utils"
)

// ReleaseLicenseUseCase returns one slot. Releasing against a zero count is
// tolerated because the ledger tracks only the aggregate.
type ReleaseLicenseUseCase struct {
	storeRepo store.Repository
	audit     AuditRecorder
	publisher events.EventPublisher
	now       Clock
	logger    logger.Interface
}

func NewReleaseLicenseUseCase(
	storeRepo store.Repository,
	audit AuditRecorder,
	publisher events.EventPublisher,
	now Clock,
	logger logger.Interface,
) *ReleaseLicenseUseCase {
	return &ReleaseLicenseUseCase{
		storeRepo: storeRepo,
		audit:     audit,
		publisher: publisher,
		now:       now,
		logger:    logger,
	}
}

func (uc *ReleaseLicenseUseCase) Execute(ctx context.Context, req dto.ReleaseRequest) (*dto.ReleaseResult, error) {
	s, released, err := uc.storeRepo.Release(ctx, req.StoreToken, uc.now())
	if err != nil {
		if errors.Is(err, store.ErrStoreNotFound) {
			return nil, apperrors.NewStoreNotFoundError()
		}
		uc.logger.Errorw("license release failed",
			"token", utils.MaskToken(req.StoreToken),
			"error", err,
		)
		return nil, apperrors.NewPersistenceFailureError()
	}

	countBefore := s.Count()
	if released {
		countBefore++
	}

	uc.audit.Record(ctx, req.StoreToken, audit.EventReleased, audit.Details{
		CountBefore:    countBefore,
		CountAfter:     s.Count(),
		Allowed:        true,
		LicenseKeyHash: req.LicenseKeyHash,
		SourceAddress:  req.SourceAddress,
		Metadata:       map[string]any{"released": released},
	})
	publish(uc.publisher, uc.logger, store.NewReleasedEvent(s, countBefore, req.LicenseKeyHash))

	if !released {
		uc.logger.Infow("release against zero count ignored", "token", utils.MaskToken(req.StoreToken))
	}

	return &dto.ReleaseResult{Released: released, Snapshot: dto.NewSnapshot(s)}, nil
}
