package mappers

import (
	"fmt"

	"github.com/orris-inc/licensegate/internal/domain/store"
	"github.com/orris-inc/licensegate/internal/infrastructure/persistence/models"
)

// StoreMapper handles the conversion between the store aggregate and its model
type StoreMapper interface {
	ToEntity(model *models.StoreModel) (*store.Store, error)
	ToModel(entity *store.Store) *models.StoreModel
}

type storeMapper struct{}

// NewStoreMapper creates a new store mapper
func NewStoreMapper() StoreMapper {
	return &storeMapper{}
}

// ToEntity converts a persistence model to a domain entity
func (m *storeMapper) ToEntity(model *models.StoreModel) (*store.Store, error) {
	if model == nil {
		return nil, nil
	}

	licenseRef := ""
	if model.LicenseRef != nil {
		licenseRef = *model.LicenseRef
	}

	entity, err := store.ReconstructStore(
		model.ID,
		model.Token,
		model.SecretMaterial,
		licenseRef,
		store.Plan(model.Plan),
		model.LicenseLimit,
		model.LicenseCount,
		model.Connected,
		model.OverLimit,
		model.OverLimitAmount,
		model.SiteURL,
		model.SiteName,
		model.ConnectedAt,
		model.LastSeenAt,
		model.CreatedAt,
		model.UpdatedAt,
		model.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct store entity: %w", err)
	}
	return entity, nil
}

// ToModel converts a domain entity to a persistence model
func (m *storeMapper) ToModel(entity *store.Store) *models.StoreModel {
	if entity == nil {
		return nil
	}

	var licenseRef *string
	if ref := entity.LicenseRef(); ref != "" {
		licenseRef = &ref
	}

	return &models.StoreModel{
		ID:              entity.ID(),
		Token:           entity.Token(),
		SecretMaterial:  entity.SecretMaterial(),
		LicenseRef:      licenseRef,
		Plan:            entity.Plan().String(),
		LicenseLimit:    entity.Limit(),
		LicenseCount:    entity.Count(),
		Connected:       entity.IsConnected(),
		OverLimit:       entity.IsOverLimit(),
		OverLimitAmount: entity.OverLimitAmount(),
		SiteURL:         entity.SiteURL(),
		SiteName:        entity.SiteName(),
		ConnectedAt:     entity.ConnectedAt(),
		LastSeenAt:      entity.LastSeenAt(),
		CreatedAt:       entity.CreatedAt(),
		UpdatedAt:       entity.UpdatedAt(),
		Version:         entity.Version(),
	}
}
