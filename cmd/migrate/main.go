package main

import (
	"database/sql"
	"flag"
	"log"

	"campus-marketplace/internal/config"
	"campus-marketplace/internal/pkg/logger"
	"campus-marketplace/internal/shared/database/migrations"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	down := flag.Int("down", 0, "roll back N migrations instead of applying")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("DB_URL is required")
	}

	l := logger.MustNew(cfg.Server.Env)
	defer l.Sync()

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		l.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if *down > 0 {
		if err := migrations.Down(db, cfg.Database.MigrationsPath, *down); err != nil {
			l.Fatal("rollback failed", zap.Error(err))
		}
		l.Info("rolled back migrations", zap.Int("steps", *down))
		return
	}

	if err := migrations.Up(db, cfg.Database.MigrationsPath); err != nil {
		l.Fatal("migration failed", zap.Error(err))
	}
	l.Info("migrations applied")
}
