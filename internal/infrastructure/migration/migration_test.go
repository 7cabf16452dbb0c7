package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/orris-inc/licensegate/internal/shared/constants"
)

func openSQLite(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestNewManager_SQLiteFallsBackToAutoMigrate(t *testing.T) {
	db := openSQLite(t)

	m, err := NewManager(StrategyGoose, db)
	require.NoError(t, err)
	assert.Equal(t, "gorm_auto_migrate", m.GetStrategy().GetName())

	require.NoError(t, m.Migrate(db))
	assert.True(t, db.Migrator().HasTable(constants.TableStores))
	assert.True(t, db.Migrator().HasTable(constants.TableStoreEvents))

	_, err = m.Version(db)
	assert.Error(t, err)
	assert.Error(t, m.Down(db, 1))
}

func TestEmbeddedScriptsArePaired(t *testing.T) {
	gooseFiles, err := scriptsFS.ReadDir(gooseDir)
	require.NoError(t, err)
	migrateFiles, err := scriptsFS.ReadDir(migrateDir)
	require.NoError(t, err)

	assert.Equal(t, len(gooseFiles)*2, len(migrateFiles))
	for _, f := range gooseFiles {
		body, err := scriptsFS.ReadFile(gooseDir + "/" + f.Name())
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", f.Name())
		assert.Contains(t, string(body), "-- +goose Down", f.Name())
	}
}

func TestGenerator_CreateMigration(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir)
	g.now = func() time.Time { return time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC) }

	paths, err := g.CreateMigration("add_store_notes")
	require.NoError(t, err)
	require.Len(t, paths, 3)

	for _, p := range paths {
		_, err := os.Stat(p)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(filepath.Base(p), "20251001120000_add_store_notes"))
	}

	_, err = g.CreateMigration("")
	assert.Error(t, err)
}
