package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"dispatch-console/core/auth"
	"dispatch-console/core/mailer"
	"dispatch-console/core/store"
	"dispatch-console/core/utils"
)

type OfficersHandler struct {
	store  store.OfficersStore
	mail   *mailer.Service
	audits store.AuditStore
	logger *utils.Logger
}

func NewOfficersHandler(os store.OfficersStore, mail *mailer.Service, audits store.AuditStore, logger *utils.Logger) *OfficersHandler {
	return &OfficersHandler{store: os, mail: mail, audits: audits, logger: logger}
}

func (h *OfficersHandler) audit(r *http.Request, action, details string) {
	if h.audits == nil {
		return
	}
	username := ""
	if sess := auth.FromContext(r.Context()); sess != nil {
		username = sess.Username
	}
	_ = h.audits.Log(r.Context(), username, action, details)
}

func validateOfficer(o *store.Officer) error {
	if strings.TrimSpace(o.FirstName) == "" || strings.TrimSpace(o.LastName) == "" {
		return fmt.Errorf("first and last name are required")
	}
	if strings.TrimSpace(o.BadgeNumber) == "" {
		return fmt.Errorf("badge number is required")
	}
	if !strings.Contains(o.Email, "@") {
		return fmt.Errorf("valid email is required")
	}
	return nil
}

func (h *OfficersHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListOfficers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *OfficersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	o, err := h.store.GetOfficer(r.Context(), id)
	if err != nil {
		writeError(w, storeStatus(err), "officer not found")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OfficersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var o store.Officer
	if err := decodeJSON(r, &o); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validateOfficer(&o); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := h.store.CreateOfficer(r.Context(), &o)
	if err != nil {
		writeError(w, storeStatus(err), "create failed")
		return
	}
	o.ID = id
	h.audit(r, "officer.create", fmt.Sprintf("officer %d badge %s", id, o.BadgeNumber))
	writeJSON(w, http.StatusCreated, o)
}

func (h *OfficersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var o store.Officer
	if err := decodeJSON(r, &o); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	o.ID = id
	if err := validateOfficer(&o); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.store.UpdateOfficer(r.Context(), &o); err != nil {
		writeError(w, storeStatus(err), "update failed")
		return
	}
	h.audit(r, "officer.update", fmt.Sprintf("officer %d", id))
	writeJSON(w, http.StatusOK, o)
}

func (h *OfficersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.store.DeleteOfficer(r.Context(), id); err != nil {
		writeError(w, storeStatus(err), "delete failed")
		return
	}
	h.audit(r, "officer.delete", fmt.Sprintf("officer %d", id))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// SendEmail relays the account credentials mail for a newly onboarded
// officer. The response shape is fixed: {"success": true} or a 500 with the
// relay error.
func (h *OfficersHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var creds mailer.OfficerCredentials
	if err := decodeJSON(r, &creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := creds.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.mail.SendOfficerWelcome(r.Context(), creds); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.audit(r, "officer.email", fmt.Sprintf("credentials sent to %s", creds.Email))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
