package main

import (
	"log"

	"campus-marketplace/internal/app"
	"campus-marketplace/internal/bootstrap"
	"campus-marketplace/internal/config"
	"campus-marketplace/internal/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	l := logger.MustNew(cfg.Server.Env)
	defer l.Sync()

	// build dependency + routes
	r, cleanup, err := app.BuildApp(cfg, l)
	if err != nil {
		l.Fatal("failed to build app", zap.Error(err))
	}
	defer cleanup()

	err = bootstrap.StartHTTPServer(
		r,
		bootstrap.ServerConfig{
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		bootstrap.NewAuditLogger(l),
	)
	if err != nil {
		l.Error("http server failed", zap.Error(err))
	}
}
