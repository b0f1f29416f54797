package handlers

import (
	"net/http"
	"time"

	"dispatch-console/config"
	"dispatch-console/core/reports"
	"dispatch-console/core/store"
	"dispatch-console/core/utils"
)

type DashboardHandler struct {
	cfg      *config.AppConfig
	reports  store.ReportsStore
	officers store.OfficersStore
	sessions store.SessionStore
	bench    *reports.Workbench
	audits   store.AuditStore
	logger   *utils.Logger
}

func NewDashboardHandler(cfg *config.AppConfig, rs store.ReportsStore, os store.OfficersStore, ss store.SessionStore, bench *reports.Workbench, audits store.AuditStore, logger *utils.Logger) *DashboardHandler {
	return &DashboardHandler{cfg: cfg, reports: rs, officers: os, sessions: ss, bench: bench, audits: audits, logger: logger}
}

// Stats returns the headline numbers for the dashboard cards.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	items, err := h.reports.ListReports(r.Context(), store.ReportFilter{IncludeArchived: true})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	st := h.bench.Stats(items)

	officers, err := h.officers.ListOfficers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	available := 0
	for _, o := range officers {
		if o.AssignedReportID == nil {
			available++
		}
	}
	windowSec := 300
	if h.cfg != nil && h.cfg.Security.OnlineWindowSec > 0 {
		windowSec = h.cfg.Security.OnlineWindowSec
	}
	online, err := h.sessions.CountActiveSince(r.Context(), time.Now().Add(-time.Duration(windowSec)*time.Second))
	if err != nil {
		h.logger.Errorf("count online users: %v", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"reports":            st,
		"officers_total":     len(officers),
		"officers_available": available,
		"users_online":       online,
	})
}

func (h *DashboardHandler) AuditLog(w http.ResponseWriter, r *http.Request) {
	limit := parseIntDefault(r.URL.Query().Get("limit"), 100)
	entries, err := h.audits.ListAudit(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
