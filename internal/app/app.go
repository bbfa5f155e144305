// Package app builds the services shared by the API server and rentalctl.
package app

import (
	"strings"

	"github.com/diewo77/go-rentals/auth"
	"github.com/diewo77/go-rentals/internal/config"
	"github.com/diewo77/go-rentals/internal/notify"
	"github.com/diewo77/go-rentals/internal/services"
	"github.com/diewo77/go-rentals/internal/tax"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Services holds one instance of every use case, configured from Config.
type Services struct {
	Issuer        *auth.Issuer
	Users         *services.UserService
	Properties    *services.PropertyService
	Tenants       *services.TenantService
	Contracts     *services.ContractService
	Payments      *services.PaymentService
	Distributions *services.DistributionService
	Mora          *services.MoraService
	Taxes         *services.TaxService
	Reports       *services.ReportService
	Notifications *services.NotificationService
	Clock         services.Clock
}

// NewLogger returns a JSON logger at level, defaulting to info.
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// NewServices wires the services over conn. A nil sender picks one from the
// mail configuration.
func NewServices(conn *gorm.DB, cfg *config.Config, log *logrus.Logger, sender notify.Sender) *Services {
	if sender == nil {
		sender = notify.New(cfg.Mail, log)
	}
	clock := services.LocalClock(cfg.Finance.Location())
	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	users := services.NewUserService(conn, log, issuer)
	issuer.SetUserVerifier(users.Active)

	dist := services.NewDistributionService(conn, log, clock)
	payments := services.NewPaymentService(conn, log, clock, dist)
	return &Services{
		Issuer:        issuer,
		Users:         users,
		Properties:    services.NewPropertyService(conn, log),
		Tenants:       services.NewTenantService(conn, log),
		Contracts:     services.NewContractService(conn, log, cfg.Finance.DefaultDailyLateFeeRate),
		Payments:      payments,
		Distributions: dist,
		Mora:          services.NewMoraService(conn, log, clock),
		Taxes:         services.NewTaxService(conn, log, tax.NewEngine(cfg.Finance.TaxRates())),
		Reports:       services.NewReportService(conn, log, clock),
		Notifications: services.NewNotificationService(payments, sender, log),
		Clock:         clock,
	}
}
