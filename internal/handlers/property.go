package handlers

import (
	"net/http"

	"github.com/diewo77/go-rentals/httpx"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/services"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type PropertyHandler struct {
	props *services.PropertyService
	log   *logrus.Logger
}

func NewPropertyHandler(props *services.PropertyService, log *logrus.Logger) *PropertyHandler {
	return &PropertyHandler{props: props, log: log}
}

type coOwnerRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	NationalID  string          `json:"national_id" validate:"max=20"`
	Phone       string          `json:"phone" validate:"max=20"`
	Email       string          `json:"email" validate:"omitempty,email"`
	Percentage  decimal.Decimal `json:"percentage" validate:"gt=0,lte=100"`
	BankAccount string          `json:"bank_account" validate:"max=50"`
	Bank        string          `json:"bank" validate:"max=100"`
	AccountType string          `json:"account_type" validate:"max=20"`
}

func (c coOwnerRequest) model() models.CoOwner {
	return models.CoOwner{
		Name: c.Name, NationalID: c.NationalID, Phone: c.Phone, Email: c.Email,
		Percentage: c.Percentage, BankAccount: c.BankAccount, Bank: c.Bank, AccountType: c.AccountType,
	}
}

func coOwnerModels(reqs []coOwnerRequest) []models.CoOwner {
	owners := make([]models.CoOwner, 0, len(reqs))
	for _, c := range reqs {
		owners = append(owners, c.model())
	}
	return owners
}

type propertyRequest struct {
	Address     string                `json:"address" validate:"required,max=300"`
	City        string                `json:"city" validate:"max=100"`
	Department  string                `json:"department" validate:"max=100"`
	Zone        string                `json:"zone" validate:"max=100"`
	Type        models.PropertyType   `json:"type" validate:"omitempty,oneof=propia copropiedad"`
	Kind        string                `json:"kind" validate:"max=50"`
	Area        *decimal.Decimal      `json:"area"`
	Bedrooms    int                   `json:"bedrooms" validate:"gte=0"`
	Bathrooms   int                   `json:"bathrooms" validate:"gte=0"`
	Description string                `json:"description"`
	BaseRent    decimal.Decimal       `json:"base_rent" validate:"gte=0"`
	Currency    string                `json:"currency" validate:"omitempty,len=3"`
	Status      models.PropertyStatus `json:"status" validate:"omitempty,oneof=disponible alquilado mantenimiento"`
	CoOwners    []coOwnerRequest      `json:"co_owners" validate:"dive"`
}

func (p propertyRequest) model() *models.Property {
	m := &models.Property{
		Address: p.Address, City: p.City, Department: p.Department, Zone: p.Zone,
		Type: p.Type, Kind: p.Kind, Area: p.Area, Bedrooms: p.Bedrooms, Bathrooms: p.Bathrooms,
		Description: p.Description, BaseRent: p.BaseRent, Currency: p.Currency, Status: p.Status,
	}
	if len(p.CoOwners) > 0 {
		m.CoOwners = coOwnerModels(p.CoOwners)
	}
	return m
}

func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	props, err := h.props.List(r.Context(), services.PropertyFilter{
		Status: models.PropertyStatus(q.Get("status")),
		Type:   models.PropertyType(q.Get("type")),
		City:   q.Get("city"),
	})
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, props)
}

func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req propertyRequest
	if err := decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	p := req.model()
	if p.Type == "" {
		p.Type = models.PropertySole
	}
	if err := h.props.Create(r.Context(), p); err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	p, err := h.props.Get(r.Context(), id)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Update replaces the editable fields. Co-owners go through ReplaceCoOwners.
func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req propertyRequest
	if err := decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	p, err := h.props.Update(r.Context(), id, req.model())
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.props.Delete(r.Context(), id); err != nil {
		fail(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PropertyHandler) ListCoOwners(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	owners, err := h.props.ListCoOwners(r.Context(), id)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, owners)
}

func (h *PropertyHandler) AddCoOwner(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req coOwnerRequest
	if err := decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	o := req.model()
	if err := h.props.AddCoOwner(r.Context(), id, &o); err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, o)
}

type replaceCoOwnersRequest struct {
	CoOwners []coOwnerRequest `json:"co_owners" validate:"required,min=1,dive"`
}

// ReplaceCoOwners swaps the whole co-owner set; the new shares must sum to 100.
func (h *PropertyHandler) ReplaceCoOwners(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req replaceCoOwnersRequest
	if err := decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	owners, err := h.props.ReplaceCoOwners(r.Context(), id, coOwnerModels(req.CoOwners))
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, owners)
}
