package main

import (
	"log"

	"campus-marketplace/internal/app"
	"campus-marketplace/internal/config"
	"campus-marketplace/internal/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("DB_URL is required")
	}

	l := logger.MustNew(cfg.Server.Env)
	defer l.Sync()

	if err := app.RunWorker(cfg, l); err != nil {
		l.Fatal("[WORKER] exited", zap.Error(err))
	}
}
