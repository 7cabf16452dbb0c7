package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/orris-inc/licensegate/internal/domain/audit"
	"github.com/orris-inc/licensegate/internal/domain/store"
	"github.com/orris-inc/licensegate/internal/infrastructure/persistence/models"
)

// StoreEventMapper converts audit events to and from their model
type StoreEventMapper interface {
	ToEntity(model *models.StoreEventModel) (*audit.Event, error)
	ToModel(entity *audit.Event) (*models.StoreEventModel, error)
}

type storeEventMapper struct{}

// NewStoreEventMapper creates a new audit event mapper
func NewStoreEventMapper() StoreEventMapper {
	return &storeEventMapper{}
}

func (m *storeEventMapper) ToEntity(model *models.StoreEventModel) (*audit.Event, error) {
	if model == nil {
		return nil, nil
	}

	var metadata map[string]any
	if len(model.Metadata) > 0 {
		if err := json.Unmarshal(model.Metadata, &metadata); err != nil {
			return nil, fmt.Errorf("failed to decode event %d metadata: %w", model.ID, err)
		}
	}

	var reason store.DenialReason
	if model.DenialReason != nil {
		reason = store.DenialReason(*model.DenialReason)
	}

	return audit.ReconstructEvent(model.ID, model.StoreToken, audit.EventType(model.EventType), audit.Details{
		CountBefore:    model.CountBefore,
		CountAfter:     model.CountAfter,
		Allowed:        model.Allowed,
		DenialReason:   reason,
		LicenseKeyHash: model.LicenseKeyHash,
		ProductID:      model.ProductID,
		SourceAddress:  model.SourceAddress,
		Metadata:       metadata,
	}, model.CreatedAt), nil
}

func (m *storeEventMapper) ToModel(entity *audit.Event) (*models.StoreEventModel, error) {
	if entity == nil {
		return nil, nil
	}

	var metadata datatypes.JSON
	if len(entity.Metadata()) > 0 {
		raw, err := json.Marshal(entity.Metadata())
		if err != nil {
			return nil, fmt.Errorf("failed to encode event metadata: %w", err)
		}
		metadata = datatypes.JSON(raw)
	}

	var reason *string
	if r := entity.DenialReason(); r != "" {
		s := r.String()
		reason = &s
	}

	return &models.StoreEventModel{
		ID:             entity.ID(),
		StoreToken:     entity.StoreToken(),
		EventType:      entity.Type().String(),
		CountBefore:    entity.CountBefore(),
		CountAfter:     entity.CountAfter(),
		Allowed:        entity.Allowed(),
		DenialReason:   reason,
		LicenseKeyHash: entity.LicenseKeyHash(),
		ProductID:      entity.ProductID(),
		SourceAddress:  entity.SourceAddress(),
		Metadata:       metadata,
		CreatedAt:      entity.CreatedAt(),
	}, nil
}
