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

type UsersHandler struct {
	store  store.UsersStore
	audits store.AuditStore
	logger *utils.Logger
}

func NewUsersHandler(us store.UsersStore, audits store.AuditStore, logger *utils.Logger) *UsersHandler {
	return &UsersHandler{store: us, audits: audits, logger: logger}
}

func (h *UsersHandler) audit(r *http.Request, action, details string) {
	if h.audits == nil {
		return
	}
	username := ""
	if sess := auth.FromContext(r.Context()); sess != nil {
		username = sess.Username
	}
	_ = h.audits.Log(r.Context(), username, action, details)
}

type userRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	u := &store.User{
		Username:     req.Username,
		Email:        req.Email,
		FullName:     req.FullName,
		Role:         req.Role,
		PasswordHash: hash,
		Active:       true,
	}
	id, err := h.store.CreateUser(r.Context(), u)
	if err != nil {
		writeError(w, storeStatus(err), "create failed")
		return
	}
	u.ID = id
	h.audit(r, "user.create", fmt.Sprintf("user %d %s role %s", id, u.Username, u.Role))
	writeJSON(w, http.StatusCreated, u)
}

func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	existing, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, storeStatus(err), "user not found")
		return
	}
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Email != "" {
		existing.Email = req.Email
	}
	if req.FullName != "" {
		existing.FullName = req.FullName
	}
	if req.Role != "" {
		existing.Role = req.Role
	}
	if err := h.store.UpdateUser(r.Context(), existing); err != nil {
		writeError(w, storeStatus(err), "update failed")
		return
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := h.store.SetPassword(r.Context(), id, hash); err != nil {
			writeError(w, storeStatus(err), "password update failed")
			return
		}
	}
	h.audit(r, "user.update", fmt.Sprintf("user %d", id))
	writeJSON(w, http.StatusOK, existing)
}

func (h *UsersHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if sess := auth.FromContext(r.Context()); sess != nil && sess.UserID == id {
		writeError(w, http.StatusBadRequest, "cannot deactivate your own account")
		return
	}
	if err := h.store.DeactivateUser(r.Context(), id); err != nil {
		writeError(w, storeStatus(err), "deactivate failed")
		return
	}
	h.audit(r, "user.deactivate", fmt.Sprintf("user %d", id))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
