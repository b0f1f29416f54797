package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"dispatch-console/core/auth"
	"dispatch-console/core/store"
	"dispatch-console/core/utils"
)

// DirectoryHandler serves the reference tables shown on the console's
// directory page: barangays and emergency hotlines.
type DirectoryHandler struct {
	store  store.DirectoryStore
	audits store.AuditStore
	logger *utils.Logger
}

func NewDirectoryHandler(ds store.DirectoryStore, audits store.AuditStore, logger *utils.Logger) *DirectoryHandler {
	return &DirectoryHandler{store: ds, audits: audits, logger: logger}
}

func (h *DirectoryHandler) audit(r *http.Request, action, details string) {
	if h.audits == nil {
		return
	}
	username := ""
	if sess := auth.FromContext(r.Context()); sess != nil {
		username = sess.Username
	}
	_ = h.audits.Log(r.Context(), username, action, details)
}

func (h *DirectoryHandler) ListBarangays(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListBarangays(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *DirectoryHandler) CreateBarangay(w http.ResponseWriter, r *http.Request) {
	var b store.Barangay
	if err := decodeJSON(r, &b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if strings.TrimSpace(b.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	id, err := h.store.CreateBarangay(r.Context(), &b)
	if err != nil {
		writeError(w, storeStatus(err), "create failed")
		return
	}
	b.ID = id
	h.audit(r, "barangay.create", fmt.Sprintf("barangay %d %s", id, b.Name))
	writeJSON(w, http.StatusCreated, b)
}

func (h *DirectoryHandler) UpdateBarangay(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var b store.Barangay
	if err := decodeJSON(r, &b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	b.ID = id
	if err := h.store.UpdateBarangay(r.Context(), &b); err != nil {
		writeError(w, storeStatus(err), "update failed")
		return
	}
	h.audit(r, "barangay.update", fmt.Sprintf("barangay %d", id))
	writeJSON(w, http.StatusOK, b)
}

func (h *DirectoryHandler) DeleteBarangay(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.store.DeleteBarangay(r.Context(), id); err != nil {
		writeError(w, storeStatus(err), "delete failed")
		return
	}
	h.audit(r, "barangay.delete", fmt.Sprintf("barangay %d", id))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *DirectoryHandler) ListHotlines(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListHotlines(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *DirectoryHandler) CreateHotline(w http.ResponseWriter, r *http.Request) {
	var hl store.Hotline
	if err := decodeJSON(r, &hl); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if strings.TrimSpace(hl.Name) == "" || strings.TrimSpace(hl.Number) == "" {
		writeError(w, http.StatusBadRequest, "name and number are required")
		return
	}
	id, err := h.store.CreateHotline(r.Context(), &hl)
	if err != nil {
		writeError(w, storeStatus(err), "create failed")
		return
	}
	hl.ID = id
	h.audit(r, "hotline.create", fmt.Sprintf("hotline %d %s", id, hl.Name))
	writeJSON(w, http.StatusCreated, hl)
}

func (h *DirectoryHandler) UpdateHotline(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var hl store.Hotline
	if err := decodeJSON(r, &hl); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	hl.ID = id
	if err := h.store.UpdateHotline(r.Context(), &hl); err != nil {
		writeError(w, storeStatus(err), "update failed")
		return
	}
	h.audit(r, "hotline.update", fmt.Sprintf("hotline %d", id))
	writeJSON(w, http.StatusOK, hl)
}

func (h *DirectoryHandler) DeleteHotline(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.store.DeleteHotline(r.Context(), id); err != nil {
		writeError(w, storeStatus(err), "delete failed")
		return
	}
	h.audit(r, "hotline.delete", fmt.Sprintf("hotline %d", id))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
