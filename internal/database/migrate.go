package database

import (
	"embed"

	"bridge/internal/models"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Migrate applies the embedded schema migrations. Fatal on failure: the
// customer table's unique login index is what keeps concurrent link-or-create
// calls from racing, so running without it is not safe.
func Migrate(db *gorm.DB, config models.DatabaseConfiguration) {
	sqlDB, err := db.DB()
	if err != nil {
		zap.L().Fatal("Failed to get database handle for migrations", zap.Error(err))
	}

	goose.SetBaseFS(embedMigrations)

	dialect := "postgres"
	if config.Type == "sqlite" {
		dialect = "sqlite3"
	}
	if err := goose.SetDialect(dialect); err != nil {
		zap.L().Fatal("Failed to set migration dialect", zap.Error(err))
	}

	if err := goose.Up(sqlDB, "migrations"); err != nil {
		zap.L().Fatal("Failed to run migrations", zap.Error(err))
	}
	zap.L().Info("Database migrations applied")
}
