package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/orris-inc/licensegate/internal/application/entitlement/dto"
	"github.com/orris-inc/licensegate/internal/domain/audit"
	"github.com/orris-inc/licensegate/internal/domain/shared/events"
	"github.com/orris-inc/licensegate/internal/domain/store"
	apperrors "github.com/orris-inc/licensegate/internal/shared/errors"
	"github.com/orris-inc/licensegate/internal/shared/logger"
	"github.com/orris-inc/licensegate/internal/shared/utils"
)

// ReserveLicenseUseCase takes one slot from a store's plan limit.
type ReserveLicenseUseCase struct {
	storeRepo  store.Repository
	audit      AuditRecorder
	publisher  events.EventPublisher
	upgradeURL string
	now        Clock
	logger     logger.Interface
}

func NewReserveLicenseUseCase(
	storeRepo store.Repository,
	audit AuditRecorder,
	publisher events.EventPublisher,
	upgradeURL string,
	now Clock,
	logger logger.Interface,
) *ReserveLicenseUseCase {
	return &ReserveLicenseUseCase{
		storeRepo:  storeRepo,
		audit:      audit,
		publisher:  publisher,
		upgradeURL: upgradeURL,
		now:        now,
		logger:     logger,
	}
}

// Execute reserves a slot. Denials return both a result carrying the
// unchanged snapshot and an AppError describing the reason.
func (uc *ReserveLicenseUseCase) Execute(ctx context.Context, req dto.ReserveRequest) (*dto.ReserveResult, error) {
	s, err := uc.storeRepo.Reserve(ctx, req.StoreToken, uc.now())

	switch {
	case err == nil:
		uc.audit.Record(ctx, req.StoreToken, audit.EventReserved, audit.Details{
			CountBefore:    s.Count() - 1,
			CountAfter:     s.Count(),
			Allowed:        true,
			LicenseKeyHash: req.LicenseKeyHash,
			ProductID:      req.ProductID,
			SourceAddress:  req.SourceAddress,
			Metadata:       map[string]any{"plan": s.Plan().String()},
		})
		publish(uc.publisher, uc.logger, store.NewReservedEvent(s, req.LicenseKeyHash, req.ProductID))

		uc.logger.Debugw("license reserved",
			"token", utils.MaskToken(req.StoreToken),
			"count", s.Count(),
		)
		return &dto.ReserveResult{Allowed: true, Snapshot: dto.NewSnapshot(s)}, nil

	case errors.Is(err, store.ErrStoreNotFound):
		uc.recordDenial(ctx, req, store.DenialStoreNotFound, 0)
		return nil, apperrors.NewStoreNotFoundError()

	case errors.Is(err, store.ErrStoreDisconnected):
		uc.recordDenial(ctx, req, store.DenialStoreDisconnected, s.Count())
		return &dto.ReserveResult{
			Allowed:  false,
			Snapshot: dto.NewSnapshot(s),
			Reason:   string(store.DenialStoreDisconnected),
			Message:  "This store is disconnected. Reconnect it to create licenses.",
		}, apperrors.NewStoreDisconnectedError()

	case errors.Is(err, store.ErrLimitReached):
		uc.recordDenial(ctx, req, store.DenialLimitReached, s.Count())
		publish(uc.publisher, uc.logger, store.NewLimitReachedEvent(s))

		result := &dto.ReserveResult{
			Allowed:    false,
			Snapshot:   dto.NewSnapshot(s),
			Reason:     string(store.DenialLimitReached),
			UpgradeURL: uc.upgradeURL,
			Message:    limitMessage(s.Plan()),
		}
		if next, ok := s.Plan().Next(); ok {
			result.NextPlan = next.String()
		}

		uc.logger.Infow("license reservation denied at limit",
			"token", utils.MaskToken(req.StoreToken),
			"plan", s.Plan(),
			"count", s.Count(),
		)
		return result, apperrors.NewLimitReachedError(result.Message)

	default:
		uc.logger.Errorw("license reservation failed",
			"token", utils.MaskToken(req.StoreToken),
			"error", err,
		)
		return nil, apperrors.NewPersistenceFailureError()
	}
}

func (uc *ReserveLicenseUseCase) recordDenial(ctx context.Context, req dto.ReserveRequest, reason store.DenialReason, count int) {
	uc.audit.Record(ctx, req.StoreToken, audit.EventReserveDenied, audit.Details{
		CountBefore:    count,
		CountAfter:     count,
		Allowed:        false,
		DenialReason:   reason,
		LicenseKeyHash: req.LicenseKeyHash,
		ProductID:      req.ProductID,
		SourceAddress:  req.SourceAddress,
	})
}

func limitMessage(plan store.Plan) string {
	if next, ok := plan.Next(); ok {
		return fmt.Sprintf("You have used every license on the %s plan. Upgrade to %s to add more.",
			plan.DisplayName(), next.DisplayName())
	}
	return fmt.Sprintf("You have used every license on the %s plan.", plan.DisplayName())
}
