package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"dispatch-console/config"
	"dispatch-console/core/auth"
	"dispatch-console/core/store"
	"dispatch-console/core/utils"
)

func setupAuthEnv(t *testing.T) (*AuthHandler, store.UsersStore, store.SessionStore) {
	t.Helper()
	cfg := &config.AppConfig{DBPath: filepath.Join(t.TempDir(), "auth.db")}
	logger := utils.NewLogger()
	db, err := store.NewDB(cfg, logger)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.ApplyMigrations(context.Background(), db, logger); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	users := store.NewUsersStore(db)
	sessions := store.NewSessionsStore(db)
	sm := auth.NewSessionManager(sessions, cfg, logger)
	return NewAuthHandler(cfg, users, sessions, sm, nil, logger), users, sessions
}

func createUser(t *testing.T, users store.UsersStore, username, password, role string) *store.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &store.User{Username: username, PasswordHash: hash, Role: role, Active: true}
	id, err := users.CreateUser(context.Background(), u)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	u.ID = id
	return u
}

func TestLoginSetsSessionAndCSRFCookies(t *testing.T) {
	h, users, sessions := setupAuthEnv(t)
	createUser(t, users, "desk1", "long-enough-pw", "dispatcher")

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", jsonBody(t, Credentials{Username: "Desk1", Password: "long-enough-pw"}))
	rr := httptest.NewRecorder()
	h.Login(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("login = %d body %s", rr.Code, rr.Body.String())
	}

	var sessionID, csrf string
	for _, c := range rr.Result().Cookies() {
		switch c.Name {
		case SessionCookie:
			sessionID = c.Value
			if !c.HttpOnly {
				t.Fatalf("session cookie must be http-only")
			}
		case CSRFCookie:
			csrf = c.Value
		}
	}
	if sessionID == "" || csrf == "" {
		t.Fatalf("missing cookies: session=%q csrf=%q", sessionID, csrf)
	}
	sr, err := sessions.GetSession(context.Background(), sessionID)
	if err != nil || sr == nil {
		t.Fatalf("session not persisted: %v", err)
	}
	if sr.CSRFToken != csrf {
		t.Fatalf("csrf cookie does not match session record")
	}
	if sr.Role != "dispatcher" {
		t.Fatalf("session role = %q", sr.Role)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	h, users, _ := setupAuthEnv(t)
	createUser(t, users, "desk1", "long-enough-pw", "dispatcher")

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", jsonBody(t, Credentials{Username: "desk1", Password: "wrong"}))
	rr := httptest.NewRecorder()
	h.Login(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("login = %d, want 401", rr.Code)
	}
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	h, users, _ := setupAuthEnv(t)
	u := createUser(t, users, "desk1", "long-enough-pw", "dispatcher")
	if err := users.DeactivateUser(context.Background(), u.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", jsonBody(t, Credentials{Username: "desk1", Password: "long-enough-pw"}))
	rr := httptest.NewRecorder()
	h.Login(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("login = %d, want 401", rr.Code)
	}
}

func TestChangePasswordRotatesSession(t *testing.T) {
	h, users, sessions := setupAuthEnv(t)
	u := createUser(t, users, "desk1", "long-enough-pw", "admin")
	sr, err := h.sm.Create(context.Background(), u, "127.0.0.1", "test")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	body := jsonBody(t, map[string]string{"current_password": "long-enough-pw", "new_password": "another-long-pw"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/change-password", body)
	req = req.WithContext(context.WithValue(req.Context(), auth.SessionContextKey, sr))
	rr := httptest.NewRecorder()
	h.ChangePassword(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("change-password = %d body %s", rr.Code, rr.Body.String())
	}

	if got, _ := sessions.GetSession(context.Background(), sr.ID); got != nil {
		t.Fatalf("old session still valid after password change")
	}
	fresh, err := users.FindByUsername(context.Background(), "desk1")
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if !auth.CheckPassword("another-long-pw", fresh.PasswordHash) {
		t.Fatalf("new password not persisted")
	}
}

func TestChangePasswordRejectsWrongCurrent(t *testing.T) {
	h, users, _ := setupAuthEnv(t)
	u := createUser(t, users, "desk1", "long-enough-pw", "admin")
	sr, err := h.sm.Create(context.Background(), u, "127.0.0.1", "test")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	body := jsonBody(t, map[string]string{"current_password": "nope", "new_password": "another-long-pw"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/change-password", body)
	req = req.WithContext(context.WithValue(req.Context(), auth.SessionContextKey, sr))
	rr := httptest.NewRecorder()
	h.ChangePassword(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("change-password = %d, want 403", rr.Code)
	}
}

func TestLogoutDeletesSession(t *testing.T) {
	h, users, sessions := setupAuthEnv(t)
	u := createUser(t, users, "desk1", "long-enough-pw", "viewer")
	sr, err := h.sm.Create(context.Background(), u, "127.0.0.1", "test")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req = req.WithContext(context.WithValue(req.Context(), auth.SessionContextKey, sr))
	rr := httptest.NewRecorder()
	h.Logout(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("logout = %d", rr.Code)
	}
	if got, _ := sessions.GetSession(context.Background(), sr.ID); got != nil {
		t.Fatalf("session survived logout")
	}
}
