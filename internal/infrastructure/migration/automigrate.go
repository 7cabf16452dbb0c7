package migration

import (
	"github.com/orris-inc/licensegate/internal/infrastructure/persistence/models"
)

// AutoMigrateModels lists every persistence model owned by the service.
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.StoreModel{},
		&models.StoreEventModel{},
	}
}
