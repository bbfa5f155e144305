package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/diewo77/go-rentals/httpx"
	"github.com/diewo77/go-rentals/internal/apperr"
	"github.com/diewo77/go-rentals/internal/export"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/services"
	"github.com/diewo77/go-rentals/internal/tax"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type TaxHandler struct {
	taxes *services.TaxService
	log   *logrus.Logger
}

func NewTaxHandler(taxes *services.TaxService, log *logrus.Logger) *TaxHandler {
	return &TaxHandler{taxes: taxes, log: log}
}

// calculateRequest uses the field names of the tax engine's validation errors.
type calculateRequest struct {
	Rent           decimal.Decimal  `json:"monto_alquiler"`
	Month          int              `json:"mes"`
	Year           int              `json:"anio"`
	InvoicesIVA    decimal.Decimal  `json:"facturas_iva"`
	InvoicesRCIVA  decimal.Decimal  `json:"facturas_rc_iva"`
	AccruedQuarter *decimal.Decimal `json:"monto_acumulado_trimestre"`
}

// Calculate previews the taxes of one month without storing anything.
func (h *TaxHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	res, err := h.taxes.Calculate(tax.Input{
		Rent: req.Rent, Month: req.Month, Year: req.Year,
		InvoicesIVA: req.InvoicesIVA, InvoicesRCIVA: req.InvoicesRCIVA, AccruedQuarter: req.AccruedQuarter,
	})
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

// CalculateDetermined previews the taxes before any invoice compensation.
func (h *TaxHandler) CalculateDetermined(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	res, err := h.taxes.CalculateDetermined(req.Rent, req.Month, req.Year)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

type registerTaxRequest struct {
	PaymentID      uint             `json:"payment_id" validate:"required"`
	Rent           *decimal.Decimal `json:"rent"`
	InvoicesIVA    decimal.Decimal  `json:"invoices_iva" validate:"gte=0"`
	InvoicesRCIVA  decimal.Decimal  `json:"invoices_rc_iva" validate:"gte=0"`
	AccruedQuarter *decimal.Decimal `json:"accrued_quarter"`
	UseInvoices    bool             `json:"use_invoices"`
	Notes          string           `json:"notes"`
	DeclaredOn     string           `json:"declared_on"`
}

// Register computes the taxes of a payment and stores the record.
func (h *TaxHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerTaxRequest
	if err := decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	declared, err := optDate("declared_on", req.DeclaredOn)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	res, err := h.taxes.Register(r.Context(), services.RegisterTaxInput{
		PaymentID: req.PaymentID, Rent: req.Rent,
		InvoicesIVA: req.InvoicesIVA, InvoicesRCIVA: req.InvoicesRCIVA, AccruedQuarter: req.AccruedQuarter,
		UseInvoices: req.UseInvoices, Notes: req.Notes, DeclaredOn: declared,
	})
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, res)
}

func pathYear(r *http.Request) (int, error) {
	raw := r.PathValue("year")
	y, err := strconv.Atoi(raw)
	if err != nil || y < 1 {
		return 0, apperr.Validation(map[string]string{"year": "invalid_int"}, "invalid year %q", raw)
	}
	return y, nil
}

// AnnualSummary returns the tax records of a contract for a year, as JSON or
// as a workbook with ?format=xlsx.
func (h *TaxHandler) AnnualSummary(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	year, err := pathYear(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	sum, err := h.taxes.AnnualSummary(r.Context(), id, year)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	if !wantsXLSX(r) {
		httpx.JSON(w, http.StatusOK, sum)
		return
	}
	body, err := export.AnnualTaxes(sum)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.Attachment(w, export.ContentType, fmt.Sprintf("impuestos-%d-%d.xlsx", id, year), body)
}

type invoiceRequest struct {
	ContractID  uint                  `json:"contract_id" validate:"required"`
	Number      string                `json:"number" validate:"required,max=50"`
	IssuerNIT   string                `json:"issuer_nit" validate:"max=20"`
	IssuerName  string                `json:"issuer_name" validate:"max=200"`
	IssuedOn    string                `json:"issued_on" validate:"required"`
	Amount      decimal.Decimal       `json:"amount" validate:"gt=0"`
	TaxType     models.InvoiceTaxType `json:"tax_type" validate:"required,oneof=iva rc_iva"`
	Period      string                `json:"period" validate:"required,len=7"`
	Description string                `json:"description"`
}

func (h *TaxHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	issued, err := parseDate("issued_on", req.IssuedOn)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	inv, err := h.taxes.RegisterInvoice(r.Context(), services.CreateInvoiceInput{
		ContractID: req.ContractID, Number: req.Number, IssuerNIT: req.IssuerNIT, IssuerName: req.IssuerName,
		IssuedOn: issued, Amount: req.Amount, TaxType: req.TaxType, Period: req.Period, Description: req.Description,
	})
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *TaxHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	year, err := httpx.QueryInt(r, "year", 0)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	invoices, err := h.taxes.ListInvoices(r.Context(), id, year)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoices)
}
