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

type CategoriesHandler struct {
	store  store.CategoriesStore
	audits store.AuditStore
	logger *utils.Logger
}

func NewCategoriesHandler(cs store.CategoriesStore, audits store.AuditStore, logger *utils.Logger) *CategoriesHandler {
	return &CategoriesHandler{store: cs, audits: audits, logger: logger}
}

func (h *CategoriesHandler) audit(r *http.Request, action, details string) {
	if h.audits == nil {
		return
	}
	username := ""
	if sess := auth.FromContext(r.Context()); sess != nil {
		username = sess.Username
	}
	_ = h.audits.Log(r.Context(), username, action, details)
}

func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *CategoriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	c, err := h.store.GetCategory(r.Context(), id)
	if err != nil {
		writeError(w, storeStatus(err), "category not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func cleanSubcategories(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if v := strings.TrimSpace(s); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var c store.Category
	if err := decodeJSON(r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if strings.TrimSpace(c.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	c.Subcategories = cleanSubcategories(c.Subcategories)
	id, err := h.store.CreateCategory(r.Context(), &c)
	if err != nil {
		writeError(w, storeStatus(err), "create failed")
		return
	}
	c.ID = id
	h.audit(r, "category.create", fmt.Sprintf("category %d %s", id, c.Name))
	writeJSON(w, http.StatusCreated, c)
}

// Update replaces the name and the whole subcategory list. Reports store a
// positional subcategory index, so reordering existing entries silently
// changes what old reports point at; append new entries at the end.
func (h *CategoriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var c store.Category
	if err := decodeJSON(r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	c.ID = id
	if strings.TrimSpace(c.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	c.Subcategories = cleanSubcategories(c.Subcategories)
	if err := h.store.UpdateCategory(r.Context(), &c); err != nil {
		writeError(w, storeStatus(err), "update failed")
		return
	}
	h.audit(r, "category.update", fmt.Sprintf("category %d", id))
	writeJSON(w, http.StatusOK, c)
}

func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.store.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, storeStatus(err), "delete failed")
		return
	}
	h.audit(r, "category.delete", fmt.Sprintf("category %d", id))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
