package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/orris-inc/licensegate/internal/domain/audit"
	"github.com/orris-inc/licensegate/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/licensegate/internal/infrastructure/persistence/models"
	"github.com/orris-inc/licensegate/internal/shared/db"
	"github.com/orris-inc/licensegate/internal/shared/logger"
)

// StoreEventRepositoryImpl is the append-only audit sink
type StoreEventRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.StoreEventMapper
	logger logger.Interface
}

// NewStoreEventRepository creates a new audit event repository
func NewStoreEventRepository(db *gorm.DB, logger logger.Interface) audit.Repository {
	return &StoreEventRepositoryImpl{
		db:     db,
		mapper: mappers.NewStoreEventMapper(),
		logger: logger,
	}
}

// Append inserts one event
func (r *StoreEventRepositoryImpl) Append(ctx context.Context, e *audit.Event) error {
	model, err := r.mapper.ToModel(e)
	if err != nil {
		return err
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to append store event",
			"event_type", model.EventType,
			"allowed", model.Allowed,
			"error", err)
		return fmt.Errorf("failed to append store event: %w", err)
	}

	e.SetID(model.ID)
	return nil
}

// CountBetween aggregates events of all stores in [from, to]
func (r *StoreEventRepositoryImpl) CountBetween(ctx context.Context, from, to time.Time) (*audit.Counts, error) {
	var row struct {
		Total   int64
		Denials int64
	}

	err := db.GetTxFromContext(ctx, r.db).Model(&models.StoreEventModel{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN allowed = ? THEN 1 ELSE 0 END), 0) AS denials", false).
		Where("created_at BETWEEN ? AND ?", from, to).
		Scan(&row).Error
	if err != nil {
		r.logger.Errorw("failed to count store events", "from", from, "to", to, "error", err)
		return nil, fmt.Errorf("failed to count store events: %w", err)
	}

	return &audit.Counts{Total: row.Total, Denials: row.Denials}, nil
}

// ListByStore returns one store's events in [from, to], oldest first
func (r *StoreEventRepositoryImpl) ListByStore(ctx context.Context, storeToken string, from, to time.Time) ([]*audit.Event, error) {
	var modelList []*models.StoreEventModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("store_token = ? AND created_at BETWEEN ? AND ?", storeToken, from, to).
		Order("created_at ASC, id ASC").
		Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to list store events", "error", err)
		return nil, fmt.Errorf("failed to list store events: %w", err)
	}

	events := make([]*audit.Event, 0, len(modelList))
	for _, m := range modelList {
		e, err := r.mapper.ToEntity(m)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}
