package main

import (
	"net/http"

	"github.com/diewo77/go-rentals/gate"
	"github.com/diewo77/go-rentals/httpx"
	"github.com/diewo77/go-rentals/internal/app"
	"github.com/diewo77/go-rentals/internal/db"
	"github.com/diewo77/go-rentals/internal/handlers"
	"github.com/diewo77/go-rentals/internal/policy"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux     *http.ServeMux
	db      *gorm.DB
	svc     *app.Services
	gate    *policy.AuthGate
	log     *logrus.Logger
	handler http.Handler
}

// NewApp creates a new application with all routes configured.
func NewApp(conn *gorm.DB, svc *app.Services, log *logrus.Logger) *App {
	a := &App{
		mux:  http.NewServeMux(),
		db:   conn,
		svc:  svc,
		gate: policy.NewAuthGate(conn, log),
		log:  log,
	}
	a.setupRoutes()
	a.handler = withLogging(log, withRecover(log, svc.Issuer.Middleware(a.mux)))
	return a
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	// Public routes
	a.mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	a.mux.HandleFunc("GET /healthz", a.healthz)

	ah := handlers.NewAuthHandler(a.svc.Users, a.log)
	a.mux.HandleFunc("POST /api/v1/auth/login", ah.Login)

	// Admin routes
	a.mux.Handle("POST /api/v1/auth/users", a.requireAuth(a.requireAdmin(http.HandlerFunc(ah.CreateUser))))

	// Properties and co-owners
	ph := handlers.NewPropertyHandler(a.svc.Properties, a.log)
	a.route("GET /api/v1/properties", policy.ResourceProperty, gate.ActionList, ph.List)
	a.route("POST /api/v1/properties", policy.ResourceProperty, gate.ActionCreate, ph.Create)
	a.route("GET /api/v1/properties/{id}", policy.ResourceProperty, gate.ActionView, ph.Get)
	a.route("PUT /api/v1/properties/{id}", policy.ResourceProperty, gate.ActionUpdate, ph.Update)
	a.route("DELETE /api/v1/properties/{id}", policy.ResourceProperty, gate.ActionDelete, ph.Delete)
	a.route("GET /api/v1/properties/{id}/co-owners", policy.ResourceProperty, gate.ActionView, ph.ListCoOwners)
	a.route("POST /api/v1/properties/{id}/co-owners", policy.ResourceProperty, gate.ActionUpdate, ph.AddCoOwner)
	a.route("PUT /api/v1/properties/{id}/co-owners", policy.ResourceProperty, gate.ActionUpdate, ph.ReplaceCoOwners)

	// Tenants
	th := handlers.NewTenantHandler(a.svc.Tenants, a.log)
	a.route("GET /api/v1/tenants", policy.ResourceTenant, gate.ActionList, th.List)
	a.route("POST /api/v1/tenants", policy.ResourceTenant, gate.ActionCreate, th.Create)
	a.route("GET /api/v1/tenants/{id}", policy.ResourceTenant, gate.ActionView, th.Get)
	a.route("PUT /api/v1/tenants/{id}", policy.ResourceTenant, gate.ActionUpdate, th.Update)
	a.route("DELETE /api/v1/tenants/{id}", policy.ResourceTenant, gate.ActionDelete, th.Delete)

	// Contracts
	ch := handlers.NewContractHandler(a.svc.Contracts, a.svc.Payments, a.svc.Mora, a.log)
	a.route("GET /api/v1/contracts", policy.ResourceContract, gate.ActionList, ch.List)
	a.route("POST /api/v1/contracts", policy.ResourceContract, gate.ActionCreate, ch.Create)
	a.route("GET /api/v1/contracts/{id}", policy.ResourceContract, gate.ActionView, ch.Get)
	a.route("POST /api/v1/contracts/{id}/finish", policy.ResourceContract, gate.ActionUpdate, ch.Finish)
	a.route("POST /api/v1/contracts/{id}/rescind", policy.ResourceContract, gate.ActionUpdate, ch.Rescind)
	a.route("POST /api/v1/contracts/{id}/schedule", policy.ResourcePayment, gate.ActionCreate, ch.Schedule)
	a.route("GET /api/v1/contracts/{id}/payments", policy.ResourcePayment, gate.ActionList, ch.Payments)
	a.route("POST /api/v1/contracts/{id}/mora/refresh", policy.ResourcePayment, gate.ActionUpdate, ch.RefreshMora)
	a.route("GET /api/v1/contracts/{id}/mora", policy.ResourcePayment, gate.ActionView, ch.Mora)

	// Payments and distributions
	pay := handlers.NewPaymentHandler(a.svc.Payments, a.svc.Mora, a.svc.Distributions, a.log)
	a.route("POST /api/v1/payments", policy.ResourcePayment, gate.ActionCreate, pay.Create)
	a.route("GET /api/v1/payments/{id}", policy.ResourcePayment, gate.ActionView, pay.Get)
	a.route("POST /api/v1/payments/{id}/register", policy.ResourcePayment, gate.ActionUpdate, pay.Register)
	a.route("GET /api/v1/payments/{id}/mora", policy.ResourcePayment, gate.ActionUpdate, pay.Mora)
	a.route("POST /api/v1/payments/{id}/distribute", policy.ResourcePayment, gate.ActionUpdate, pay.Distribute)
	a.route("GET /api/v1/payments/{id}/distributions", policy.ResourcePayment, gate.ActionView, pay.Distributions)
	a.route("POST /api/v1/distributions/{id}/paid", policy.ResourcePayment, gate.ActionUpdate, pay.MarkDistributionPaid)

	// Taxes
	tx := handlers.NewTaxHandler(a.svc.Taxes, a.log)
	a.route("POST /api/v1/taxes/calculate", policy.ResourceTax, gate.ActionView, tx.Calculate)
	a.route("POST /api/v1/taxes/calculate/determined", policy.ResourceTax, gate.ActionView, tx.CalculateDetermined)
	a.route("POST /api/v1/taxes", policy.ResourceTax, gate.ActionCreate, tx.Register)
	a.route("GET /api/v1/taxes/contracts/{id}/years/{year}", policy.ResourceTax, gate.ActionView, tx.AnnualSummary)
	a.route("POST /api/v1/taxes/invoices", policy.ResourceTax, gate.ActionCreate, tx.CreateInvoice)
	a.route("GET /api/v1/taxes/contracts/{id}/invoices", policy.ResourceTax, gate.ActionList, tx.ListInvoices)

	// Reports
	rh := handlers.NewReportHandler(a.svc.Reports, a.svc.Distributions, a.log)
	a.route("GET /api/v1/reports/dashboard", policy.ResourceReport, gate.ActionView, rh.Dashboard)
	a.route("GET /api/v1/reports/delinquency", policy.ResourceReport, gate.ActionView, rh.Delinquency)
	a.route("GET /api/v1/reports/properties", policy.ResourceReport, gate.ActionView, rh.Properties)
	a.route("GET /api/v1/reports/co-owners/{id}", policy.ResourceReport, gate.ActionView, rh.CoOwner)
}

// route registers a handler behind authentication and resource:action.
func (a *App) route(pattern, resource string, action gate.Action, h http.HandlerFunc) {
	a.mux.Handle(pattern, a.requireAuth(a.requirePermission(resource, action)(h)))
}

func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	if err := db.Ping(a.db.WithContext(r.Context())); err != nil {
		a.log.WithError(err).Warn("health check failed")
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requireAuth wraps a handler to require a valid bearer token.
func (a *App) requireAuth(next http.Handler) http.Handler {
	return a.svc.Issuer.RequireAuth(next)
}

// requireAdmin wraps a handler to require the administrator role.
func (a *App) requireAdmin(next http.Handler) http.Handler {
	return a.gate.RequireAdmin()(next)
}

// requirePermission wraps a handler to require specific resource permission.
func (a *App) requirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return a.gate.RequirePermission(resourceType, action)
}
