package http

import (
	"gorm.io/gorm"

	"github.com/orris-inc/licensegate/internal/domain/audit"
	"github.com/orris-inc/licensegate/internal/domain/store"
	"github.com/orris-inc/licensegate/internal/infrastructure/repository"
	shareddb "github.com/orris-inc/licensegate/internal/shared/db"
	"github.com/orris-inc/licensegate/internal/shared/logger"
)

// repositories holds all repository instances used by the application.
type repositories struct {
	storeRepo store.Repository
	eventRepo audit.Repository
	txMgr     *shareddb.TransactionManager
}

func newRepositories(db *gorm.DB, log logger.Interface) *repositories {
	return &repositories{
		storeRepo: repository.NewStoreRepository(db, log.Named("store_repository")),
		eventRepo: repository.NewStoreEventRepository(db, log.Named("store_event_repository")),
		txMgr:     shareddb.NewTransactionManager(db),
	}
}
