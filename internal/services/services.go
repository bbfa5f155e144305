// Package services implements the rental use cases on top of gorm.
//
// Each operation runs in a single transaction. Errors are classified with
// apperr so handlers can map them to HTTP statuses.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diewo77/go-rentals/internal/apperr"
	"github.com/diewo77/go-rentals/internal/db"
	"github.com/diewo77/go-rentals/internal/money"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Clock returns the current time.
type Clock func() time.Time

// LocalClock returns a clock reading wall time in loc.
func LocalClock(loc *time.Location) Clock {
	return func() time.Time { return time.Now().In(loc) }
}

// Date truncates t to its civil date.
func Date(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// Distributor failures. They are wrapped in apperr Conflict errors.
var (
	ErrAlreadyDistributed = errors.New("payment already distributed")
	ErrNoCoOwners         = errors.New("property has no active co-owners")
	ErrPercentageMismatch = errors.New("co-owner percentages do not sum to 100")
)

// ErrContractClosed is returned when a finished or rescinded contract is modified.
var ErrContractClosed = errors.New("contract is not active")

var hundred = money.Hundred()

// forUpdate locks the selected rows until the transaction ends.
// Dialects without row locks (sqlite) drop the clause.
var forUpdate = clause.Locking{Strength: "UPDATE"}

// findByID loads one row into dst or returns a NotFound error naming entity.
func findByID(tx *gorm.DB, dst any, id uint, entity string) error {
	if err := tx.First(dst, id).Error; err != nil {
		if db.IsNotFound(err) {
			return apperr.NotFound("%s %d not found", entity, id)
		}
		return fmt.Errorf("load %s %d: %w", entity, id, err)
	}
	return nil
}

// withTx runs fn in a transaction bound to ctx.
func withTx(ctx context.Context, conn *gorm.DB, fn func(tx *gorm.DB) error) error {
	return conn.WithContext(ctx).Transaction(fn)
}

func newLogger(log *logrus.Logger) *logrus.Logger {
	if log != nil {
		return log
	}
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	return l
}
