package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/go-rentals/internal/app"
	"github.com/diewo77/go-rentals/internal/config"
	"github.com/diewo77/go-rentals/internal/db"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	log := app.NewLogger(cfg.App.LogLevel)
	decimal.MarshalJSONWithoutQuotes = true

	dbConn, err := db.Connect(cfg.Database, cfg.App.DBDebug, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *migrateOnlyFlag {
		if err := db.Migrate(dbConn); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Info("Migrations completed successfully")
		return
	}

	if *seedOnlyFlag {
		if err := seed(dbConn, cfg, log); err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
		log.Info("Seeding completed successfully")
		return
	}

	// Run migrations on startup if enabled
	if cfg.App.Migrations {
		if err := db.Migrate(dbConn); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Info("Migrations completed")
	}
	if err := seed(dbConn, cfg, log); err != nil && !errors.Is(err, db.ErrNoAdminPassword) {
		log.Fatalf("Seeding failed: %v", err)
	}

	svc := app.NewServices(dbConn, cfg, log, nil)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      NewApp(dbConn, svc, log),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Server.Port, "dev": cfg.App.Dev}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Error during shutdown")
	}
	log.Info("Server stopped gracefully")
}

// seed creates the bootstrap administrator.
func seed(conn *gorm.DB, cfg *config.Config, log *logrus.Logger) error {
	admin, err := db.SeedAdmin(conn, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
	if err != nil {
		if errors.Is(err, db.ErrNoAdminPassword) {
			log.Warn("ADMIN_PASSWORD not set, skipping admin seed")
		}
		return err
	}
	log.WithField("email", admin.Email).Info("admin user ready")
	return nil
}
