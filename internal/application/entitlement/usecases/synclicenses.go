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

// SyncLicensesUseCase compares a client-reported count with the ledger. The
// server count always wins and is never overwritten.
type SyncLicensesUseCase struct {
	storeRepo store.Repository
	audit     AuditRecorder
	publisher events.EventPublisher
	now       Clock
	logger    logger.Interface
}

func NewSyncLicensesUseCase(
	storeRepo store.Repository,
	audit AuditRecorder,
	publisher events.EventPublisher,
	now Clock,
	logger logger.Interface,
) *SyncLicensesUseCase {
	return &SyncLicensesUseCase{
		storeRepo: storeRepo,
		audit:     audit,
		publisher: publisher,
		now:       now,
		logger:    logger,
	}
}

func (uc *SyncLicensesUseCase) Execute(ctx context.Context, req dto.SyncRequest) (*dto.SyncResult, error) {
	if req.ReportedCount < 0 {
		return nil, apperrors.NewValidationError("reported count cannot be negative")
	}

	s, err := uc.storeRepo.GetByToken(ctx, req.StoreToken)
	if err != nil {
		if errors.Is(err, store.ErrStoreNotFound) {
			return nil, apperrors.NewStoreNotFoundError()
		}
		uc.logger.Errorw("failed to load store for sync",
			"token", utils.MaskToken(req.StoreToken),
			"error", err,
		)
		return nil, apperrors.NewPersistenceFailureError()
	}

	difference := s.Count() - req.ReportedCount
	if difference < 0 {
		difference = -difference
	}

	if err := uc.storeRepo.Touch(ctx, req.StoreToken, uc.now()); err != nil {
		uc.logger.Warnw("failed to record store heartbeat", "token", utils.MaskToken(req.StoreToken), "error", err)
	}

	uc.audit.Record(ctx, req.StoreToken, audit.EventSync, audit.Details{
		CountBefore:   s.Count(),
		CountAfter:    req.ReportedCount,
		Allowed:       true,
		SourceAddress: req.SourceAddress,
		Metadata:      map[string]any{"difference": difference},
	})
	publish(uc.publisher, uc.logger, store.NewSyncedEvent(req.StoreToken, s.Count(), req.ReportedCount, difference))

	if difference > 0 {
		uc.logger.Infow("store count drift detected",
			"token", utils.MaskToken(req.StoreToken),
			"server_count", s.Count(),
			"reported_count", req.ReportedCount,
		)
	}

	return &dto.SyncResult{
		ServerCount:   s.Count(),
		ReportedCount: req.ReportedCount,
		Difference:    difference,
		Action:        dto.SyncAction,
		Limit:         s.Limit(),
	}, nil
}
