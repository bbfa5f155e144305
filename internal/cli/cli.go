// Package cli implements rentalctl, the operator command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/diewo77/go-rentals/internal/app"
	"github.com/diewo77/go-rentals/internal/config"
	"github.com/diewo77/go-rentals/internal/db"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// Env carries what commands share. The database is opened on first use so
// commands like tax calc work offline.
type Env struct {
	Config *config.Config
	Log    *logrus.Logger
	// Open connects to the database; it defaults to db.Connect.
	Open func() (*gorm.DB, error)

	conn *gorm.DB
	svc  *app.Services
}

// NewEnv returns an Env connecting with cfg.
func NewEnv(cfg *config.Config, log *logrus.Logger) *Env {
	e := &Env{Config: cfg, Log: log}
	e.Open = func() (*gorm.DB, error) { return db.Connect(cfg.Database, cfg.App.DBDebug, log) }
	return e
}

// DB returns the shared connection.
func (e *Env) DB() (*gorm.DB, error) {
	if e.conn != nil {
		return e.conn, nil
	}
	conn, err := e.Open()
	if err != nil {
		return nil, err
	}
	e.conn = conn
	return conn, nil
}

// Services returns the services over the shared connection.
func (e *Env) Services() (*app.Services, error) {
	if e.svc != nil {
		return e.svc, nil
	}
	conn, err := e.DB()
	if err != nil {
		return nil, err
	}
	e.svc = app.NewServices(conn, e.Config, e.Log, nil)
	return e.svc, nil
}

// NewRootCmd builds the rentalctl command tree.
func NewRootCmd(env *Env) *cobra.Command {
	root := &cobra.Command{
		Use:           "rentalctl",
		Short:         "Rental administration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		MigrateCmd(env),
		SeedCmd(env),
		TaxCmd(env),
		MoraCmd(env),
		NotifyCmd(env),
		ExportCmd(env),
	)
	return root
}

// asOfFlag parses an optional YYYY-MM-DD flag value.
func asOfFlag(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --as-of %q: want YYYY-MM-DD", raw)
	}
	return &t, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
