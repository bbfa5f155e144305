package handlers

import (
	"net/http"

	"github.com/diewo77/go-rentals/httpx"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/services"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type PaymentHandler struct {
	payments      *services.PaymentService
	mora          *services.MoraService
	distributions *services.DistributionService
	log           *logrus.Logger
}

func NewPaymentHandler(payments *services.PaymentService, mora *services.MoraService, distributions *services.DistributionService, log *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, mora: mora, distributions: distributions, log: log}
}

type paymentRequest struct {
	ContractID     uint             `json:"contract_id" validate:"required"`
	Period         string           `json:"period" validate:"required,len=7"`
	DueDate        string           `json:"due_date"`
	ExpectedAmount *decimal.Decimal `json:"expected_amount"`
	Note           string           `json:"note"`
}

func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	due, err := optDate("due_date", req.DueDate)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	p, err := h.payments.Create(r.Context(), services.CreatePaymentInput{
		ContractID: req.ContractID, Period: req.Period, DueDate: due,
		ExpectedAmount: req.ExpectedAmount, Note: req.Note,
	})
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	p, err := h.payments.Get(r.Context(), id)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

type registerRequest struct {
	PaidAmount decimal.Decimal      `json:"paid_amount" validate:"gte=0"`
	PaidDate   string               `json:"paid_date"`
	Method     models.PaymentMethod `json:"method" validate:"omitempty,oneof=efectivo transferencia cheque deposito qr"`
	Receipt    string               `json:"receipt" validate:"max=50"`
	Note       string               `json:"note"`
}

// Register records the amount received, updates the late fee and, once the
// payment is settled, splits it among the co-owners.
func (h *PaymentHandler) Register(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req registerRequest
	if err := decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	paid, err := optDate("paid_date", req.PaidDate)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	res, err := h.payments.Register(r.Context(), id, services.RegisterPaymentInput{
		PaidAmount: req.PaidAmount, PaidDate: paid, Method: req.Method, Receipt: req.Receipt, Note: req.Note,
	})
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

// Mora refreshes and returns the late fee of one payment.
func (h *PaymentHandler) Mora(w http.ResponseWriter, r *http.Request) {
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
	res, err := h.mora.RefreshPayment(r.Context(), id, when)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *PaymentHandler) Distribute(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	res, err := h.distributions.Distribute(r.Context(), id)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, res)
}

func (h *PaymentHandler) Distributions(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	rows, err := h.distributions.ListByPayment(r.Context(), id)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

type markPaidRequest struct {
	Reference string `json:"reference" validate:"max=100"`
	PaidDate  string `json:"paid_date"`
}

// MarkDistributionPaid records the transfer of a share to its co-owner.
func (h *PaymentHandler) MarkDistributionPaid(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req markPaidRequest
	if err := decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	on, err := optDate("paid_date", req.PaidDate)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	d, err := h.distributions.MarkPaid(r.Context(), id, req.Reference, on)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}
