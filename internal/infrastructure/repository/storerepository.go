package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/orris-inc/licensegate/internal/domain/store"
	"github.com/orris-inc/licensegate/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/licensegate/internal/infrastructure/persistence/models"
	"github.com/orris-inc/licensegate/internal/shared/db"
	apperrors "github.com/orris-inc/licensegate/internal/shared/errors"
	"github.com/orris-inc/licensegate/internal/shared/logger"
	"github.com/orris-inc/licensegate/internal/shared/utils"
)

// maxReserveAttempts bounds retries when a reservation misses the
// conditional update but the re-read shows capacity, which happens when a
// concurrent release lands between the two statements.
const maxReserveAttempts = 3

// StoreRepositoryImpl implements store.Repository on gorm. Count changes are
// conditional single-row UPDATEs so they hold across service instances.
type StoreRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.StoreMapper
	logger logger.Interface
}

// NewStoreRepository creates a new store repository instance
func NewStoreRepository(db *gorm.DB, logger logger.Interface) store.Repository {
	return &StoreRepositoryImpl{
		db:     db,
		mapper: mappers.NewStoreMapper(),
		logger: logger,
	}
}

func (r *StoreRepositoryImpl) conn(ctx context.Context) *gorm.DB {
	return db.GetTxFromContext(ctx, r.db)
}

// Create persists a new store
func (r *StoreRepositoryImpl) Create(ctx context.Context, s *store.Store) error {
	model := r.mapper.ToModel(s)

	if err := r.conn(ctx).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return store.ErrDuplicateStore
		}
		r.logger.Errorw("failed to create store", "token", utils.MaskToken(s.Token()), "error", err)
		return fmt.Errorf("failed to create store: %w", err)
	}

	if err := s.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set store ID: %w", err)
	}

	r.logger.Infow("store created",
		"id", model.ID,
		"token", utils.MaskToken(model.Token),
		"plan", model.Plan)
	return nil
}

// Update saves plan, limit, connection state, over-limit flag and site
// details. The count and last_seen_at are never written here.
func (r *StoreRepositoryImpl) Update(ctx context.Context, s *store.Store) error {
	if s.Version() == s.PersistedVersion() {
		return nil
	}
	model := r.mapper.ToModel(s)

	result := r.conn(ctx).Model(&models.StoreModel{}).
		Where("id = ? AND version = ?", model.ID, s.PersistedVersion()).
		Updates(map[string]any{
			"license_ref":       model.LicenseRef,
			"plan":              model.Plan,
			"license_limit":     model.LicenseLimit,
			"connected":         model.Connected,
			"over_limit":        model.OverLimit,
			"over_limit_amount": model.OverLimitAmount,
			"site_url":          model.SiteURL,
			"site_name":         model.SiteName,
			"connected_at":      model.ConnectedAt,
			"version":           model.Version,
		})
	if result.Error != nil {
		if apperrors.IsDuplicateError(result.Error) {
			return store.ErrDuplicateStore
		}
		r.logger.Errorw("failed to update store", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update store: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrVersionConflict
	}
	s.MarkPersisted()
	return nil
}

// GetByToken retrieves a store by its token
func (r *StoreRepositoryImpl) GetByToken(ctx context.Context, token string) (*store.Store, error) {
	return r.findOne(r.conn(ctx), "token = ?", token)
}

// GetByLicenseRef retrieves a store by its external license reference
func (r *StoreRepositoryImpl) GetByLicenseRef(ctx context.Context, licenseRef string) (*store.Store, error) {
	if licenseRef == "" {
		return nil, store.ErrStoreNotFound
	}
	return r.findOne(r.conn(ctx), "license_ref = ?", licenseRef)
}

func (r *StoreRepositoryImpl) findOne(tx *gorm.DB, query string, arg any) (*store.Store, error) {
	var model models.StoreModel
	if err := tx.Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrStoreNotFound
		}
		r.logger.Errorw("failed to get store", "error", err)
		return nil, fmt.Errorf("failed to get store: %w", err)
	}

	entity, err := r.mapper.ToEntity(&model)
	if err != nil {
		r.logger.Errorw("failed to map store model to entity", "id", model.ID, "error", err)
		return nil, fmt.Errorf("failed to map store: %w", err)
	}
	return entity, nil
}

// Reserve increments the count by one when the store is connected and below
// its limit. The check and the increment are one UPDATE statement, so two
// concurrent reservations at limit-1 cannot both succeed.
func (r *StoreRepositoryImpl) Reserve(ctx context.Context, token string, at time.Time) (*store.Store, error) {
	for attempt := 1; attempt <= maxReserveAttempts; attempt++ {
		var (
			snapshot *store.Store
			reserved bool
		)

		err := r.conn(ctx).Transaction(func(tx *gorm.DB) error {
			result := tx.Model(&models.StoreModel{}).
				Where("token = ? AND connected = ?", token, true).
				Where("license_limit IS NULL OR license_count < license_limit").
				Updates(map[string]any{
					"license_count": gorm.Expr("license_count + 1"),
					"last_seen_at":  at,
				})
			if result.Error != nil {
				return fmt.Errorf("failed to reserve slot: %w", result.Error)
			}
			reserved = result.RowsAffected == 1

			s, err := r.findOne(tx, "token = ?", token)
			if err != nil {
				return err
			}
			snapshot = s
			return nil
		})
		if err != nil {
			if !errors.Is(err, store.ErrStoreNotFound) {
				r.logger.Errorw("reserve failed", "token", utils.MaskToken(token), "error", err)
			}
			return nil, err
		}

		if reserved {
			return snapshot, nil
		}

		switch reason, denied := snapshot.DenialReason(); {
		case !denied:
			r.logger.Debugw("reserve raced with a release, retrying",
				"token", utils.MaskToken(token),
				"attempt", attempt)
			continue
		case reason == store.DenialStoreDisconnected:
			return snapshot, store.ErrStoreDisconnected
		default:
			return snapshot, store.ErrLimitReached
		}
	}

	return nil, fmt.Errorf("reserve for %s did not settle after %d attempts", utils.MaskToken(token), maxReserveAttempts)
}

// Release decrements the count, never below zero, and clears the over-limit
// flag. A release against a zero count still clears the flag.
func (r *StoreRepositoryImpl) Release(ctx context.Context, token string, at time.Time) (*store.Store, bool, error) {
	var (
		snapshot *store.Store
		released bool
	)

	err := r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		clearFlag := map[string]any{
			"over_limit":        false,
			"over_limit_amount": 0,
			"last_seen_at":      at,
			"version":           gorm.Expr("version + 1"),
		}

		decrement := map[string]any{"license_count": gorm.Expr("license_count - 1")}
		for k, v := range clearFlag {
			decrement[k] = v
		}

		result := tx.Model(&models.StoreModel{}).
			Where("token = ? AND license_count > 0", token).
			Updates(decrement)
		if result.Error != nil {
			return fmt.Errorf("failed to release slot: %w", result.Error)
		}
		released = result.RowsAffected == 1

		if !released {
			result = tx.Model(&models.StoreModel{}).Where("token = ?", token).Updates(clearFlag)
			if result.Error != nil {
				return fmt.Errorf("failed to release slot: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return store.ErrStoreNotFound
			}
		}

		s, err := r.findOne(tx, "token = ?", token)
		if err != nil {
			return err
		}
		snapshot = s
		return nil
	})
	if err != nil {
		if !errors.Is(err, store.ErrStoreNotFound) {
			r.logger.Errorw("release failed", "token", utils.MaskToken(token), "error", err)
		}
		return nil, false, err
	}

	return snapshot, released, nil
}

// ApplyPlan stores the new plan and limit and sets the over-limit flag from
// the count at update time in the same statement.
func (r *StoreRepositoryImpl) ApplyPlan(ctx context.Context, token string, plan store.Plan, limit *int) (*store.Store, error) {
	updates := map[string]any{
		"plan":          plan.String(),
		"license_limit": limit,
		"version":       gorm.Expr("version + 1"),
	}
	if limit == nil {
		updates["over_limit"] = false
		updates["over_limit_amount"] = 0
	} else {
		updates["over_limit"] = gorm.Expr("CASE WHEN license_count > ? THEN 1 ELSE 0 END", *limit)
		updates["over_limit_amount"] = gorm.Expr("CASE WHEN license_count > ? THEN license_count - ? ELSE 0 END", *limit, *limit)
	}

	var snapshot *store.Store
	err := r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.StoreModel{}).Where("token = ?", token).Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to apply plan: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return store.ErrStoreNotFound
		}

		s, err := r.findOne(tx, "token = ?", token)
		if err != nil {
			return err
		}
		snapshot = s
		return nil
	})
	if err != nil {
		if !errors.Is(err, store.ErrStoreNotFound) {
			r.logger.Errorw("apply plan failed", "token", utils.MaskToken(token), "plan", plan, "error", err)
		}
		return nil, err
	}

	r.logger.Infow("store plan applied",
		"token", utils.MaskToken(token),
		"plan", plan,
		"over_limit", snapshot.IsOverLimit(),
		"over_limit_amount", snapshot.OverLimitAmount())
	return snapshot, nil
}

// Touch records that the store was seen. Zero affected rows is not an error:
// MySQL reports none when the timestamp is unchanged.
func (r *StoreRepositoryImpl) Touch(ctx context.Context, token string, at time.Time) error {
	result := r.conn(ctx).Model(&models.StoreModel{}).
		Where("token = ?", token).
		UpdateColumn("last_seen_at", at)
	if result.Error != nil {
		r.logger.Warnw("failed to touch store", "token", utils.MaskToken(token), "error", result.Error)
		return fmt.Errorf("failed to touch store: %w", result.Error)
	}
	return nil
}

// Stats returns ledger-wide gauges for health reporting
func (r *StoreRepositoryImpl) Stats(ctx context.Context) (*store.Stats, error) {
	var stats store.Stats
	tx := r.conn(ctx).Model(&models.StoreModel{})

	if err := tx.Session(&gorm.Session{}).Count(&stats.TotalStores).Error; err != nil {
		return nil, fmt.Errorf("failed to count stores: %w", err)
	}
	if err := tx.Session(&gorm.Session{}).Where("connected = ?", true).Count(&stats.ConnectedStores).Error; err != nil {
		return nil, fmt.Errorf("failed to count connected stores: %w", err)
	}
	if err := tx.Session(&gorm.Session{}).
		Where("license_limit IS NOT NULL AND license_count >= license_limit").
		Count(&stats.StoresAtLimit).Error; err != nil {
		return nil, fmt.Errorf("failed to count stores at limit: %w", err)
	}
	return &stats, nil
}
