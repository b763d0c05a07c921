package database

import (
	"fmt"

	"bridge/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func InitDB(config models.DatabaseConfiguration) *gorm.DB {
	var (
		db  *gorm.DB
		err error
	)

	switch config.Type {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(config.SQLite.Path), &gorm.Config{})
	default:
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
			config.Postgres.Host,
			config.Postgres.User,
			config.Postgres.Password,
			config.Postgres.Name,
			config.Postgres.Port,
			sslMode(config.Postgres.SSLMode),
		)
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	if err != nil {
		zap.L().Fatal("Failed to connect to database", zap.Error(err))
	}
	return db
}

func sslMode(mode string) string {
	if mode == "" {
		return "disable"
	}
	return mode
}
