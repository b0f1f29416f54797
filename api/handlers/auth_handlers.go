package handlers

import (
	"net/http"
	"strings"
	"time"

	"dispatch-console/config"
	"dispatch-console/core/auth"
	"dispatch-console/core/store"
	"dispatch-console/core/utils"
)

const (
	SessionCookie = "dispatch_session"
	CSRFCookie    = "dispatch_csrf"
)

type AuthHandler struct {
	cfg      *config.AppConfig
	users    store.UsersStore
	sessions store.SessionStore
	sm       *auth.SessionManager
	audits   store.AuditStore
	logger   *utils.Logger
}

func NewAuthHandler(cfg *config.AppConfig, us store.UsersStore, ss store.SessionStore, sm *auth.SessionManager, audits store.AuditStore, logger *utils.Logger) *AuthHandler {
	return &AuthHandler{cfg: cfg, users: us, sessions: ss, sm: sm, audits: audits, logger: logger}
}

// Credentials is the login payload. The rate limiter reads it too.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) secureCookies() bool {
	return h.cfg != nil && strings.EqualFold(h.cfg.AppEnv, "production")
}

func (h *AuthHandler) setSessionCookies(w http.ResponseWriter, sess *store.SessionRecord) {
	secure := h.secureCookies()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  sess.ExpiresAt,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookie,
		Value:    sess.CSRFToken,
		Path:     "/",
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  sess.ExpiresAt,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var cred Credentials
	if err := decodeJSON(r, &cred); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	username := strings.ToLower(strings.TrimSpace(cred.Username))
	user, err := h.users.FindByUsername(r.Context(), username)
	if err != nil || user == nil || !user.Active || !auth.CheckPassword(cred.Password, user.PasswordHash) {
		h.logger.Printf("AUTH fail login user=%s", username)
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	sess, err := h.sm.Create(r.Context(), user, r.RemoteAddr, r.UserAgent())
	if err != nil {
		h.logger.Errorf("create session for %s: %v", username, err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	h.setSessionCookies(w, sess)
	if h.audits != nil {
		_ = h.audits.Log(r.Context(), username, "auth.login", "")
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user": user,
		"csrf": sess.CSRFToken,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := auth.FromContext(r.Context())
	if sess != nil {
		_ = h.sm.Delete(r.Context(), sess.ID)
		if h.audits != nil {
			_ = h.audits.Log(r.Context(), sess.Username, "auth.logout", "")
		}
	}
	expired := time.Unix(0, 0)
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", HttpOnly: true, Expires: expired})
	http.SetCookie(w, &http.Cookie{Name: CSRFCookie, Value: "", Path: "/", Expires: expired})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess := auth.FromContext(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	user, err := h.users.GetUser(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, storeStatus(err), "user not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user, "csrf": sess.CSRFToken})
}

type changePasswordRequest struct {
	Current string `json:"current_password"`
	New     string `json:"new_password"`
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	sess := auth.FromContext(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	user, err := h.users.GetUser(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, storeStatus(err), "user not found")
		return
	}
	if !auth.CheckPassword(req.Current, user.PasswordHash) {
		writeError(w, http.StatusForbidden, "current password incorrect")
		return
	}
	hash, err := auth.HashPassword(req.New)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.users.SetPassword(r.Context(), user.ID, hash); err != nil {
		writeError(w, storeStatus(err), "password update failed")
		return
	}
	// rotate so old session ids stop working after the change
	fresh, err := h.sm.Rotate(r.Context(), sess.ID)
	if err == nil {
		h.setSessionCookies(w, fresh)
	}
	if h.audits != nil {
		_ = h.audits.Log(r.Context(), sess.Username, "auth.password_change", "")
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AuthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	sess := auth.FromContext(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	_ = h.sm.Refresh(r.Context(), sess.ID)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
