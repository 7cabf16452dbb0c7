package usecases

import (
	"context"
	"errors"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/orris-inc/licensegate/internal/application/licensing/dto"
	"github.com/orris-inc/licensegate/internal/domain/shared/events"
	"github.com/orris-inc/licensegate/internal/domain/store"
	"github.com/orris-inc/licensegate/internal/infrastructure/auth"
	"github.com/orris-inc/licensegate/internal/shared/db"
	apperrors "github.com/orris-inc/licensegate/internal/shared/errors"
	"github.com/orris-inc/licensegate/internal/shared/logger"
	"github.com/orris-inc/licensegate/internal/shared/utils"
)

const maxSiteNameLength = 255

var siteNamePolicy = bluemonday.StrictPolicy()

// ConnectStoreUseCase creates a store or reactivates an existing one.
type ConnectStoreUseCase struct {
	storeRepo store.Repository
	plans     *store.PlanTable
	txMgr     db.TxRunner
	publisher events.EventPublisher
	logger    logger.Interface
}

func NewConnectStoreUseCase(
	storeRepo store.Repository,
	plans *store.PlanTable,
	txMgr db.TxRunner,
	publisher events.EventPublisher,
	logger logger.Interface,
) *ConnectStoreUseCase {
	return &ConnectStoreUseCase{
		storeRepo: storeRepo,
		plans:     plans,
		txMgr:     txMgr,
		publisher: publisher,
		logger:    logger,
	}
}

func (uc *ConnectStoreUseCase) Execute(ctx context.Context, req dto.ConnectRequest) (*dto.ConnectResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	creds, err := auth.DeriveCredentials(req.LicenseSecret)
	if err != nil {
		return nil, apperrors.NewValidationError("license_secret is required")
	}

	plan := store.ParsePlan(req.Plan)
	limit, known := uc.plans.LimitFor(plan)
	if !known {
		uc.logger.Warnw("unknown plan on connect, applying default cap",
			"plan", plan,
			"default_limit", uc.plans.DefaultLimit(),
		)
	}
	siteName := SanitizeSiteName(req.SiteName)
	siteURL := strings.TrimSpace(req.SiteURL)

	var (
		result      *store.Store
		reactivated bool
	)
	err = retryOnConflict(ctx, func(ctx context.Context) error {
		return uc.txMgr.RunInTransaction(ctx, func(ctx context.Context) error {
			existing, err := uc.storeRepo.GetByToken(ctx, creds.Token)
			switch {
			case errors.Is(err, store.ErrStoreNotFound):
				s, err := store.NewStore(creds.Token, creds.SecretMaterial, req.LicenseRef, plan, limit, siteURL, siteName)
				if err != nil {
					return err
				}
				if err := uc.storeRepo.Create(ctx, s); err != nil {
					return uc.classifyCreateError(ctx, creds.Token, req.LicenseRef, err)
				}
				result, reactivated = s, false
				return nil
			case err != nil:
				return err
			}

			if err := existing.Reactivate(plan, limit, siteURL, siteName); err != nil {
				return err
			}
			existing.LinkLicense(req.LicenseRef)
			if err := uc.storeRepo.Update(ctx, existing); err != nil {
				return err
			}
			result, reactivated = existing, true
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateStore) {
			return nil, apperrors.NewConflictError("license reference is already linked to another store")
		}
		uc.logger.Errorw("failed to connect store",
			"token", utils.MaskToken(creds.Token),
			"error", err,
		)
		return nil, apperrors.NewPersistenceFailureError()
	}

	uc.logger.Infow("store connected",
		"token", utils.MaskToken(result.Token()),
		"plan", result.Plan(),
		"reactivated", reactivated,
	)
	publish(uc.publisher, uc.logger, store.NewConnectedEvent(result, reactivated))

	return &dto.ConnectResult{
		StoreToken:     result.Token(),
		SecretMaterial: creds.SecretMaterial,
		Plan:           result.Plan().String(),
		Limit:          result.Limit(),
		Count:          result.Count(),
		Reactivated:    reactivated,
	}, nil
}

// classifyCreateError turns a token collision from a concurrent connect into a
// retryable conflict. A license reference owned by another store stays a
// duplicate.
func (uc *ConnectStoreUseCase) classifyCreateError(ctx context.Context, token, licenseRef string, err error) error {
	if !errors.Is(err, store.ErrDuplicateStore) {
		return err
	}
	owner, lookupErr := uc.storeRepo.GetByLicenseRef(ctx, licenseRef)
	if lookupErr == nil && owner.Token() != token {
		return store.ErrDuplicateStore
	}
	return store.ErrVersionConflict
}

// SanitizeSiteName strips markup from a site name and caps its length.
func SanitizeSiteName(name string) string {
	clean := strings.TrimSpace(html.UnescapeString(siteNamePolicy.Sanitize(name)))
	if utf8.RuneCountInString(clean) <= maxSiteNameLength {
		return clean
	}
	return string([]rune(clean)[:maxSiteNameLength])
}
