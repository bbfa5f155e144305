package handlers

import (
	"fmt"
	"net/http"

	"github.com/diewo77/go-rentals/httpx"
	"github.com/diewo77/go-rentals/internal/export"
	"github.com/diewo77/go-rentals/internal/services"
	"github.com/sirupsen/logrus"
)

type ReportHandler struct {
	reports       *services.ReportService
	distributions *services.DistributionService
	log           *logrus.Logger
}

func NewReportHandler(reports *services.ReportService, distributions *services.DistributionService, log *logrus.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, distributions: distributions, log: log}
}

// Dashboard summarises a year; ?year defaults to the current one.
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	year, err := httpx.QueryInt(r, "year", 0)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	d, err := h.reports.Dashboard(r.Context(), year)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

func (h *ReportHandler) Delinquency(w http.ResponseWriter, r *http.Request) {
	d, err := h.reports.Delinquency(r.Context())
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

func (h *ReportHandler) Properties(w http.ResponseWriter, r *http.Request) {
	year, err := httpx.QueryInt(r, "year", 0)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	p, err := h.reports.PropertyPerformance(r.Context(), year)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// CoOwner returns the yearly shares of a co-owner, as JSON or as a workbook
// with ?format=xlsx.
func (h *ReportHandler) CoOwner(w http.ResponseWriter, r *http.Request) {
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
	rep, err := h.distributions.CoOwnerReport(r.Context(), id, year)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	if !wantsXLSX(r) {
		httpx.JSON(w, http.StatusOK, rep)
		return
	}
	body, err := export.CoOwnerYear(rep)
	if err != nil {
		fail(h.log, w, r, err)
		return
	}
	httpx.Attachment(w, export.ContentType, fmt.Sprintf("copropietario-%d-%d.xlsx", id, rep.Year), body)
}
