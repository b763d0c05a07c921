package main

import (
	"context"

	"bridge/internal/cache"
	"bridge/internal/configuration"
	"bridge/internal/core"
	"bridge/internal/database"
	"bridge/internal/provider"

	"go.uber.org/zap"
)

func main() {
	zap.ReplaceGlobals(zap.Must(zap.NewProduction()))

	config := configuration.Read()
	core.NewLogger(config.App.LogLevel)

	shutdownTracing := core.InitTracing(context.Background(), config.Tracing)
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			zap.L().Error("Failed to shut down tracing", zap.Error(err))
		}
	}()

	db := database.InitDB(config.Database)
	if config.App.RunMigrations {
		database.Migrate(db, config.Database)
	}

	appCache := cache.NewCache(config.Cache)
	if appCache != nil {
		defer appCache.Close()
	}

	client := provider.NewClient(config.Provider)

	core.StartHTTPServer(config, db, appCache, client)
}
