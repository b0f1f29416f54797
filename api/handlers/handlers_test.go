package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"dispatch-console/config"
	"dispatch-console/core/mailer"
	"dispatch-console/core/reports"
	"dispatch-console/core/storage"
	"dispatch-console/core/store"
	"dispatch-console/core/utils"
)

type recordingSender struct {
	sent []mailer.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg mailer.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

type handlerEnv struct {
	db       *sql.DB
	reports  store.ReportsStore
	officers store.OfficersStore
	bench    *reports.Workbench
	sender   *recordingSender

	reportsHandler  *ReportsHandler
	officersHandler *OfficersHandler
}

func setupHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.AppConfig{DBPath: filepath.Join(dir, "api.db")}
	logger := utils.NewLogger()
	db, err := store.NewDB(cfg, logger)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.ApplyMigrations(context.Background(), db, logger); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	rs := store.NewReportsStore(db)
	os := store.NewOfficersStore(db)
	cs := store.NewCategoriesStore(db)
	audits := store.NewAuditStore(db)
	bench := reports.NewWorkbench(rs, os, nil, logger)
	attachSvc := storage.NewService(nil, logger)
	downloader := storage.NewDownloader(0, logger)
	sender := &recordingSender{}
	mailSvc := mailer.NewService(sender, logger)

	return &handlerEnv{
		db:              db,
		reports:         rs,
		officers:        os,
		bench:           bench,
		sender:          sender,
		reportsHandler:  NewReportsHandler(cfg, rs, cs, bench, attachSvc, downloader, audits, logger),
		officersHandler: NewOfficersHandler(os, mailSvc, audits, logger),
	}
}

func withID(req *http.Request, key, val string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, val)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(raw)
}

func TestSendOfficerEmailEndpoint(t *testing.T) {
	env := setupHandlerEnv(t)
	payload := map[string]string{
		"email":       "j.delacruz@pnp.gov.ph",
		"firstName":   "Juan",
		"lastName":    "Dela Cruz",
		"badgeNumber": "12345",
		"rank":        "PO1",
		"password":    "temp-pass-1",
	}
	req := httptest.NewRequest(http.MethodPost, "/api/send-officer-email", jsonBody(t, payload))
	rr := httptest.NewRecorder()
	env.officersHandler.SendEmail(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var resp map[string]bool
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil || !resp["success"] {
		t.Fatalf("body = %s", rr.Body.String())
	}
	if len(env.sender.sent) != 1 || env.sender.sent[0].To != "j.delacruz@pnp.gov.ph" {
		t.Fatalf("sent = %+v", env.sender.sent)
	}
}

func TestSendOfficerEmailEndpointRelayFailure(t *testing.T) {
	env := setupHandlerEnv(t)
	env.sender.err = errors.New("smtp connect refused")
	payload := map[string]string{"email": "a@b.c", "password": "temp-pass-1"}
	req := httptest.NewRequest(http.MethodPost, "/api/send-officer-email", jsonBody(t, payload))
	rr := httptest.NewRecorder()
	env.officersHandler.SendEmail(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil || resp["error"] == "" {
		t.Fatalf("body = %s", rr.Body.String())
	}
}

func TestSendOfficerEmailEndpointValidation(t *testing.T) {
	env := setupHandlerEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/api/send-officer-email", jsonBody(t, map[string]string{"email": "a@b.c"}))
	rr := httptest.NewRecorder()
	env.officersHandler.SendEmail(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestReportsListEndpointFiltersArchived(t *testing.T) {
	env := setupHandlerEnv(t)
	ctx := context.Background()
	open := store.Report{Title: "open", Status: reports.StatusPending}
	if _, err := env.reports.CreateReport(ctx, &open); err != nil {
		t.Fatalf("create: %v", err)
	}
	gone := store.Report{Title: "gone", Status: reports.StatusCancelled}
	if _, err := env.reports.CreateReport(ctx, &gone); err != nil {
		t.Fatalf("create: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/reports/", nil)
	rr := httptest.NewRecorder()
	env.reportsHandler.List(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp struct {
		Items []struct {
			Title    string `json:"title"`
			Archived bool   `json:"archived"`
		} `json:"items"`
		Stats reports.Stats `json:"stats"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Title != "open" {
		t.Fatalf("items = %+v, want only the open report", resp.Items)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/reports/?include_archived=true", nil)
	rr = httptest.NewRecorder()
	env.reportsHandler.List(rr, req)
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("archived view items = %d, want 2", len(resp.Items))
	}
	if resp.Stats.Archived != 1 || resp.Stats.Total != 1 {
		t.Fatalf("stats = %+v", resp.Stats)
	}
}

func TestArchiveEndpointRoundTrip(t *testing.T) {
	env := setupHandlerEnv(t)
	r := store.Report{Title: "noise"}
	id, err := env.reports.CreateReport(context.Background(), &r)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	req := withID(httptest.NewRequest(http.MethodPost, "/api/reports/1/archive", nil), "id", "1")
	rr := httptest.NewRecorder()
	env.reportsHandler.Archive(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("archive status = %d body %s", rr.Code, rr.Body.String())
	}
	var view struct {
		Archived bool `json:"archived"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil || !view.Archived {
		t.Fatalf("archive body = %s", rr.Body.String())
	}

	req = withID(httptest.NewRequest(http.MethodPost, "/api/reports/1/restore", nil), "id", "1")
	rr = httptest.NewRecorder()
	env.reportsHandler.Restore(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("restore status = %d", rr.Code)
	}
	got, _ := env.reports.GetReport(context.Background(), id)
	if got.IsArchived {
		t.Fatalf("report still archived after restore")
	}
}

func TestMergeEndpointsFlow(t *testing.T) {
	env := setupHandlerEnv(t)
	ctx := context.Background()
	a := store.Report{Title: "a", Attachments: []string{"x.png"}}
	b := store.Report{Title: "b", Attachments: []string{"x.png", "y.mp4"}, ReporterID: "u7", Description: "heard shots"}
	if _, err := env.reports.CreateReport(ctx, &a); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.reports.CreateReport(ctx, &b); err != nil {
		t.Fatalf("create: %v", err)
	}

	do := func(path, id string, h http.HandlerFunc) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		if id != "" {
			req = withID(req, "id", id)
		}
		rr := httptest.NewRecorder()
		h(rr, req)
		return rr
	}

	if rr := do("/api/reports/merge/begin", "", env.reportsHandler.MergeBegin); rr.Code != http.StatusOK {
		t.Fatalf("begin = %d", rr.Code)
	}
	if rr := do("/api/reports/merge/toggle/1", "1", env.reportsHandler.MergeToggle); rr.Code != http.StatusOK {
		t.Fatalf("toggle 1 = %d %s", rr.Code, rr.Body.String())
	}
	if rr := do("/api/reports/merge/toggle/2", "2", env.reportsHandler.MergeToggle); rr.Code != http.StatusOK {
		t.Fatalf("toggle 2 = %d", rr.Code)
	}
	if rr := do("/api/reports/merge/confirm", "", env.reportsHandler.MergeConfirm); rr.Code != http.StatusOK {
		t.Fatalf("confirm = %d %s", rr.Code, rr.Body.String())
	}
	rr := do("/api/reports/merge/commit", "", env.reportsHandler.MergeCommit)
	if rr.Code != http.StatusOK {
		t.Fatalf("commit = %d %s", rr.Code, rr.Body.String())
	}
	var res reports.MergeResult
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil || !res.Completed {
		t.Fatalf("commit body = %s", rr.Body.String())
	}

	merged, _ := env.reports.GetReport(ctx, a.ID)
	if len(merged.Attachments) != 2 {
		t.Fatalf("attachments = %v", merged.Attachments)
	}
	witnesses, _ := env.reports.ListWitnesses(ctx, a.ID)
	if len(witnesses) != 1 || witnesses[0].UserID != "u7" {
		t.Fatalf("witnesses = %+v", witnesses)
	}
	secondary, _ := env.reports.GetReport(ctx, b.ID)
	if !secondary.IsArchived {
		t.Fatalf("secondary not archived")
	}
	// commit without a confirmed selection is rejected
	if rr := do("/api/reports/merge/commit", "", env.reportsHandler.MergeCommit); rr.Code != http.StatusConflict {
		t.Fatalf("repeat commit = %d", rr.Code)
	}
}

func TestMergeToggleRejectsArchived(t *testing.T) {
	env := setupHandlerEnv(t)
	r := store.Report{Title: "done", Status: reports.StatusCancelled}
	if _, err := env.reports.CreateReport(context.Background(), &r); err != nil {
		t.Fatalf("create: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/reports/merge/begin", nil)
	env.reportsHandler.MergeBegin(httptest.NewRecorder(), req)

	req = withID(httptest.NewRequest(http.MethodPost, "/api/reports/merge/toggle/1", nil), "id", "1")
	rr := httptest.NewRecorder()
	env.reportsHandler.MergeToggle(rr, req)
	if rr.Code != http.StatusConflict {
		t.Fatalf("toggle archived = %d, want 409", rr.Code)
	}
}

func TestUpdateEndpointRejectsInvalidStatus(t *testing.T) {
	env := setupHandlerEnv(t)
	r := store.Report{Title: "r"}
	if _, err := env.reports.CreateReport(context.Background(), &r); err != nil {
		t.Fatalf("create: %v", err)
	}
	req := withID(httptest.NewRequest(http.MethodPut, "/api/reports/1", jsonBody(t, map[string]any{"status": "escalated"})), "id", "1")
	rr := httptest.NewRecorder()
	env.reportsHandler.Update(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestAttachmentsEndpointClassifies(t *testing.T) {
	env := setupHandlerEnv(t)
	r := store.Report{Title: "r", Attachments: []string{"scene.JPG", "notes.pdf", "blob.xyz"}}
	if _, err := env.reports.CreateReport(context.Background(), &r); err != nil {
		t.Fatalf("create: %v", err)
	}
	req := withID(httptest.NewRequest(http.MethodGet, "/api/reports/1/attachments", nil), "id", "1")
	rr := httptest.NewRecorder()
	env.reportsHandler.Attachments(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var atts []storage.Attachment
	if err := json.Unmarshal(rr.Body.Bytes(), &atts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	kinds := []string{storage.KindImage, storage.KindDocument, storage.KindFile}
	if len(atts) != 3 {
		t.Fatalf("attachments = %+v", atts)
	}
	for i, want := range kinds {
		if atts[i].Kind != want {
			t.Fatalf("attachment %d kind = %q, want %q", i, atts[i].Kind, want)
		}
		// no resolver configured, URL falls back to the stored path
		if atts[i].URL != atts[i].Path {
			t.Fatalf("attachment %d url = %q", i, atts[i].URL)
		}
	}
}

func TestOfficerCRUDEndpoints(t *testing.T) {
	env := setupHandlerEnv(t)
	payload := map[string]string{
		"first_name":   "Ana",
		"last_name":    "Reyes",
		"email":        "ana@pnp.gov.ph",
		"badge_number": "1001",
		"rank":         "PO2",
	}
	req := httptest.NewRequest(http.MethodPost, "/api/officers/", jsonBody(t, payload))
	rr := httptest.NewRecorder()
	env.officersHandler.Create(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/officers/", nil)
	rr = httptest.NewRecorder()
	env.officersHandler.List(rr, req)
	var list []store.Officer
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil || len(list) != 1 {
		t.Fatalf("list = %s", rr.Body.String())
	}
	if list[0].BadgeNumber != "1001" {
		t.Fatalf("officer = %+v", list[0])
	}

	req = httptest.NewRequest(http.MethodPost, "/api/officers/", jsonBody(t, map[string]string{"first_name": "X"}))
	rr = httptest.NewRecorder()
	env.officersHandler.Create(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid create = %d", rr.Code)
	}
}

func TestReportEndpointsMissingIDReturnNotFound(t *testing.T) {
	env := setupHandlerEnv(t)
	check := func(name string, h http.HandlerFunc, method, path string) {
		t.Helper()
		req := withID(httptest.NewRequest(method, path, nil), "id", "999")
		rr := httptest.NewRecorder()
		h(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("%s status = %d, want 404", name, rr.Code)
		}
	}
	check("get", env.reportsHandler.Get, http.MethodGet, "/api/reports/999")
	check("attachments", env.reportsHandler.Attachments, http.MethodGet, "/api/reports/999/attachments")
	check("thumbnails", env.reportsHandler.Thumbnails, http.MethodGet, "/api/reports/999/attachments/thumbnails")
	check("download", env.reportsHandler.Download, http.MethodGet, "/api/reports/999/attachments/download?index=0")

	if err := env.bench.Selection().Begin(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	check("merge toggle", env.reportsHandler.MergeToggle, http.MethodPost, "/api/reports/merge/toggle/999")
}

func TestReportsListSubcategoryAllIsWildcard(t *testing.T) {
	env := setupHandlerEnv(t)
	idx := 1
	r := store.Report{Title: "noise complaint", Status: reports.StatusPending, SubcategoryIndex: &idx}
	if _, err := env.reports.CreateReport(context.Background(), &r); err != nil {
		t.Fatalf("create: %v", err)
	}

	count := func(query string) int {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/api/reports/"+query, nil)
		rr := httptest.NewRecorder()
		env.reportsHandler.List(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d for %q", rr.Code, query)
		}
		var resp struct {
			Items []json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return len(resp.Items)
	}

	if n := count("?subcategory=all"); n != 1 {
		t.Fatalf("subcategory=all items = %d, want 1", n)
	}
	if n := count("?subcategory=1"); n != 1 {
		t.Fatalf("subcategory=1 items = %d, want 1", n)
	}
	if n := count("?subcategory=0"); n != 0 {
		t.Fatalf("subcategory=0 items = %d, want 0", n)
	}
}

func TestMergeConfirmPrimaryOverride(t *testing.T) {
	env := setupHandlerEnv(t)
	ctx := context.Background()
	first := store.Report{Title: "first", Status: reports.StatusPending}
	second := store.Report{Title: "second", Status: reports.StatusPending}
	a, err := env.reports.CreateReport(ctx, &first)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := env.reports.CreateReport(ctx, &second)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := env.bench.Selection().Begin(); err != nil {
		t.Fatalf("begin: %v", err)
	}
	ra, _ := env.reports.GetReport(ctx, a)
	rb, _ := env.reports.GetReport(ctx, b)
	if err := env.bench.Toggle(ra); err != nil {
		t.Fatalf("toggle a: %v", err)
	}
	if err := env.bench.Toggle(rb); err != nil {
		t.Fatalf("toggle b: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/reports/merge/confirm", jsonBody(t, map[string]int64{"primary_id": b}))
	rr := httptest.NewRecorder()
	env.reportsHandler.MergeConfirm(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("confirm status = %d, body %s", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/reports/merge/commit", nil)
	rr = httptest.NewRecorder()
	env.reportsHandler.MergeCommit(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("commit status = %d, body %s", rr.Code, rr.Body.String())
	}
	var res reports.MergeResult
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.PrimaryID != b || res.SecondaryID != a {
		t.Fatalf("merged %d into %d, want the later report kept as primary", res.SecondaryID, res.PrimaryID)
	}
	gone, _ := env.reports.GetReport(ctx, a)
	if !gone.IsArchived {
		t.Fatalf("re-picked secondary should be archived")
	}
}
