package migration

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/orris-inc/licensegate/internal/shared/logger"
)

const (
	StrategyAuto          = "auto"
	StrategyGoose         = "goose"
	StrategyGolangMigrate = "golang-migrate"
)

// Manager handles database migrations with different strategies
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager picks a strategy by name. SQLite databases always use
// AutoMigrate because the versioned scripts are MySQL DDL.
func NewManager(name string, db *gorm.DB) (*Manager, error) {
	if db.Dialector.Name() != "mysql" {
		name = StrategyAuto
	}

	var strategy Strategy
	switch strings.ToLower(name) {
	case StrategyAuto:
		strategy = NewGormAutoMigrateStrategy()
	case StrategyGoose, "":
		strategy = NewGooseStrategy()
	case StrategyGolangMigrate:
		strategy = NewGolangMigrateStrategy()
	default:
		return nil, fmt.Errorf("unknown migration strategy %q", name)
	}

	return NewManagerWithStrategy(strategy), nil
}

// NewManagerWithStrategy creates a new migration manager with a specific strategy
func NewManagerWithStrategy(strategy Strategy) *Manager {
	return &Manager{
		strategy: strategy,
		logger:   logger.NewLogger().With("component", "migration.manager"),
	}
}

// Migrate executes the configured migration strategy
func (m *Manager) Migrate(db *gorm.DB, models ...interface{}) error {
	m.logger.Infow("starting database migration", "strategy", m.strategy.GetName())

	if err := m.strategy.Migrate(db, models...); err != nil {
		m.logger.Errorw("migration failed", "strategy", m.strategy.GetName(), "error", err)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	m.logger.Infow("database migration completed successfully", "strategy", m.strategy.GetName())
	return nil
}

// Down rolls back steps migrations. AutoMigrate has no history to roll back.
func (m *Manager) Down(db *gorm.DB, steps int) error {
	versioned, ok := m.strategy.(VersionedStrategy)
	if !ok {
		return fmt.Errorf("strategy %s does not support rollback", m.strategy.GetName())
	}
	return versioned.MigrateDown(db, steps)
}

// Version returns the applied schema version of a versioned strategy.
func (m *Manager) Version(db *gorm.DB) (int64, error) {
	versioned, ok := m.strategy.(VersionedStrategy)
	if !ok {
		return 0, fmt.Errorf("strategy %s is not versioned", m.strategy.GetName())
	}
	return versioned.Version(db)
}

// GetStrategy returns the current migration strategy
func (m *Manager) GetStrategy() Strategy {
	return m.strategy
}
