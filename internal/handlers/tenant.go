package handlers

import (
	"net/http"

	"github.com/diewo77/go-rentals/httpx"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/services"
	"github.com/sirupsen/logrus"
)

type TenantHandler struct {
	tenants *services.TenantService
	log     *logrus.Logger
}

func NewTenantHandler(tenants *services.TenantService, log *logrus.Logger) *TenantHandler {
	return &TenantHandler{tenants: tenants, log: log}
}

type tenantRequest struct {
	FullName       string              `json:"full_name" validate:"required,max=200"`
	NationalID     string              `json:"national_id" validate:"required,max=20"`
	Phone          string              `json:"phone" validate:"required,max=20"`
	AltPhone       string              `json:"alt_phone" validate:"max=20"`
	Email          string              `json:"email" validate:"omitempty,email"`
	CurrentAddress string              `json:"current_address" validate:"max=300"`
	HomeCity       string              `json:"home_city" validate:"max=100"`
	Occupation     string              `json:"occupation" validate:"max=100"`
	Workplace      string              `json:"workplace" validate:"max=200"`
	WorkPhone      string              `json:"work_phone" validate:"max=20"`
	ReferenceName  string              `json:"reference_name" validate:"max=200"`
	ReferencePhone string              `json:"reference_phone" validate:"max=20"`
	Status         models.TenantStatus `json:"status" validate:"omitempty,oneof=activo inactivo"`
}

func (t tenantRequest) model() *models.Tenant {
	return &models.Tenant{
		FullName: t.FullName, NationalID: t.NationalID, Phone: t.Phone, AltPhone: t.AltPhone,
		Email: t.Email, CurrentAddress: t.CurrentAddress, HomeCity: t.HomeCity,
		Occupation: t.Occupation, Workplace: t.Workplace, WorkPhone: t.WorkPhone,
		ReferenceName: t.ReferenceName, ReferencePhone: t.ReferencePhone, Status: t.Status,
	}
}

func (h *TenantHandler) List(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.tenants.List(r.Context(), models.TenantStatus(r.URL.Query().Get("status")))
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tenants)
}

func (h *TenantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req tenantRequest
	if err := decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	t := req.model()
	if err := h.tenants.Create(r.Context(), t); err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, t)
}

func (h *TenantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	t, err := h.tenants.Get(r.Context(), id)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *TenantHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req tenantRequest
	if err := decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	t, err := h.tenants.Update(r.Context(), id, req.model())
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *TenantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.tenants.Delete(r.Context(), id); err != nil {
		fail(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
