package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"campus-marketplace/internal/auth"
	"campus-marketplace/internal/config"
	"campus-marketplace/internal/pkg/logger"
	"campus-marketplace/internal/shared/database/migrations"
	"campus-marketplace/internal/shared/database/seed"

	_ "github.com/lib/pq"
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

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		l.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := migrations.Up(db, cfg.Database.MigrationsPath); err != nil {
		l.Fatal("failed to migrate", zap.Error(err))
	}

	ctx := context.Background()

	users, err := seed.SeedUsers(ctx, db, l)
	if err != nil {
		l.Fatal("failed to seed users", zap.Error(err))
	}

	if err := seed.SeedProducts(ctx, db, users[0].ID, l); err != nil {
		l.Fatal("failed to seed products", zap.Error(err))
	}

	if cfg.Auth.JWTSecret == "" {
		l.Info("JWT_SECRET not set, skipping dev tokens")
		return
	}

	for _, u := range users {
		token, err := auth.GenerateToken(cfg.Auth.JWTSecret, u.ID.String(), u.Role, 24*time.Hour)
		if err != nil {
			l.Fatal("failed to sign token", zap.Error(err))
		}
		fmt.Printf("%s\t%s\n", u.Email, token)
	}
}
