package handlers

import (
	"net/http"

	"github.com/diewo77/go-rentals/httpx"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/services"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type ContractHandler struct {
	contracts *services.ContractService
	payments  *services.PaymentService
	mora      *services.MoraService
	log       *logrus.Logger
}

func NewContractHandler(contracts *services.ContractService, payments *services.PaymentService, mora *services.MoraService, log *logrus.Logger) *ContractHandler {
	return &ContractHandler{contracts: contracts, payments: payments, mora: mora, log: log}
}

type contractRequest struct {
	PropertyID       uint             `json:"property_id" validate:"required"`
	TenantID         uint             `json:"tenant_id" validate:"required"`
	Number           string           `json:"number" validate:"required,max=50"`
	StartDate        string           `json:"start_date" validate:"required"`
	EndDate          string           `json:"end_date" validate:"required"`
	MonthlyRent      decimal.Decimal  `json:"monthly_rent" validate:"gt=0"`
	Deposit          decimal.Decimal  `json:"deposit" validate:"gte=0"`
	AnnualIncrease   decimal.Decimal  `json:"annual_increase" validate:"gte=0"`
	PaymentDay       int              `json:"payment_day" validate:"gte=0,lte=31"`
	DailyLateFeeRate *decimal.Decimal `json:"daily_late_fee_rate"`
	Notes            string           `json:"notes"`
}

func (c contractRequest) input() (services.CreateContractInput, error) {
	in := services.CreateContractInput{
		PropertyID: c.PropertyID, TenantID: c.TenantID, Number: c.Number,
		MonthlyRent: c.MonthlyRent, Deposit: c.Deposit, AnnualIncrease: c.AnnualIncrease,
		PaymentDay: c.PaymentDay, DailyLateFeeRate: c.DailyLateFeeRate, Notes: c.Notes,
	}
	var err error
	if in.StartDate, err = parseDate("start_date", c.StartDate); err != nil {
		return in, err
	}
	if in.EndDate, err = parseDate("end_date", c.EndDate); err != nil {
		return in, err
	}
	return in, nil
}

func (h *ContractHandler) List(w http.ResponseWriter, r *http.Request) {
	var f services.ContractFilter
	f.Status = models.ContractStatus(r.URL.Query().Get("status"))
	propertyID, err := httpx.QueryInt(r, "property_id", 0)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	tenantID, err := httpx.QueryInt(r, "tenant_id", 0)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if propertyID > 0 {
		f.PropertyID = uint(propertyID)
	}
	if tenantID > 0 {
		f.TenantID = uint(tenantID)
	}
	contracts, err := h.contracts.List(r.Context(), f)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, contracts)
}

func (h *ContractHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req contractRequest
	if err := decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	in, err := req.input()
	if err != nil {
		httpx.Error(w, err)
		return
	}
	c, err := h.contracts.Create(r.Context(), in)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *ContractHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	c, err := h.contracts.Get(r.Context(), id)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *ContractHandler) Finish(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	c, err := h.contracts.Finish(r.Context(), id)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

type rescindRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *ContractHandler) Rescind(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req rescindRequest
	if err := decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	c, err := h.contracts.Rescind(r.Context(), id, req.Reason)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// Schedule creates the monthly payments of the contract term.
func (h *ContractHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	res, err := h.contracts.GenerateSchedule(r.Context(), id)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, res)
}

func (h *ContractHandler) Payments(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	payments, err := h.payments.ListByContract(r.Context(), id)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payments)
}

// RefreshMora recomputes the late fees of every open payment of the contract.
func (h *ContractHandler) RefreshMora(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	when, err := asOf(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	n, err := h.mora.RefreshContract(r.Context(), id, when)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"contract_id": id, "updated": n})
}

// Mora returns the open late fees of the contract.
func (h *ContractHandler) Mora(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	when, err := asOf(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	totals, err := h.mora.ContractTotals(r.Context(), id, when)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, totals)
}
