// Package db opens, migrates and seeds the rental database.
package db

import (
	"fmt"
	"time"

	"github.com/diewo77/go-rentals/internal/config"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormConfig returns the gorm settings shared by every connection.
// TranslateError turns driver unique violations into gorm.ErrDuplicatedKey.
func GormConfig(debug bool) *gorm.Config {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	return &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	}
}

// Connect opens the PostgreSQL database, retrying while it starts up.
func Connect(cfg config.DatabaseConfig, debug bool, log *logrus.Logger) (*gorm.DB, error) {
	retries := cfg.ConnectRetries
	if retries < 1 {
		retries = 1
	}
	log.WithFields(logrus.Fields{
		"host": cfg.Host, "port": cfg.Port, "dbname": cfg.DBName, "user": cfg.User,
	}).Info("connecting to database")

	var conn *gorm.DB
	var err error
	for i := 0; i < retries; i++ {
		conn, err = gorm.Open(postgres.Open(cfg.DSN()), GormConfig(debug))
		if err == nil {
			return conn, nil
		}
		log.WithError(err).Warnf("database connection attempt %d/%d failed", i+1, retries)
		if i < retries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	return nil, fmt.Errorf("connect database: %w", err)
}

// Ping runs a trivial query, used by health checks.
func Ping(conn *gorm.DB) error {
	return conn.Exec("SELECT 1").Error
}
