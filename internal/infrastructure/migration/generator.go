package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/orris-inc/licensegate/internal/shared/logger"
)

// Generator creates new migration files in both script formats so goose and
// golang-migrate stay in step.
type Generator struct {
	scriptsPath string
	now         func() time.Time
	logger      logger.Interface
}

// NewGenerator creates a new migration generator rooted at the scripts directory
func NewGenerator(scriptsPath string) *Generator {
	return &Generator{
		scriptsPath: scriptsPath,
		now:         time.Now,
		logger:      logger.NewLogger().With("component", "migration.generator"),
	}
}

// CreateMigration writes a goose file and a golang-migrate up/down pair and
// returns the created paths.
func (g *Generator) CreateMigration(name string) ([]string, error) {
	if name == "" {
		return nil, fmt.Errorf("migration name is required")
	}

	g.logger.Infow("creating new migration", "name", name)
	stamp := g.now().UTC().Format("20060102150405")
	created := g.now().UTC().Format("2006-01-02 15:04:05")

	files := map[string]string{
		filepath.Join(g.scriptsPath, "goose", fmt.Sprintf("%s_%s.sql", stamp, name)): fmt.Sprintf(
			"-- Migration: %s\n-- Created: %s\n\n-- +goose Up\n\n-- +goose Down\n", name, created),
		filepath.Join(g.scriptsPath, "migrate", fmt.Sprintf("%s_%s.up.sql", stamp, name)): fmt.Sprintf(
			"-- Migration: %s\n-- Created: %s\n", name, created),
		filepath.Join(g.scriptsPath, "migrate", fmt.Sprintf("%s_%s.down.sql", stamp, name)): fmt.Sprintf(
			"-- Rollback Migration: %s\n-- Created: %s\n", name, created),
	}

	paths := make([]string, 0, len(files))
	for path, content := range files {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create scripts directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	g.logger.Infow("migration files created successfully", "files", paths)
	return paths, nil
}
