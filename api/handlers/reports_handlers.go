package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"dispatch-console/config"
	"dispatch-console/core/auth"
	"dispatch-console/core/reports"
	"dispatch-console/core/storage"
	"dispatch-console/core/store"
	"dispatch-console/core/utils"
)

type ReportsHandler struct {
	cfg        *config.AppConfig
	store      store.ReportsStore
	categories store.CategoriesStore
	bench      *reports.Workbench
	attachSvc  *storage.Service
	downloader *storage.Downloader
	audits     store.AuditStore
	logger     *utils.Logger
}

func NewReportsHandler(cfg *config.AppConfig, rs store.ReportsStore, cs store.CategoriesStore, bench *reports.Workbench, attachSvc *storage.Service, downloader *storage.Downloader, audits store.AuditStore, logger *utils.Logger) *ReportsHandler {
	return &ReportsHandler{cfg: cfg, store: rs, categories: cs, bench: bench, attachSvc: attachSvc, downloader: downloader, audits: audits, logger: logger}
}

// getReport loads a report and turns the store's nil-row result into
// ErrNotFound so handlers answer 404 instead of dereferencing nil.
func (h *ReportsHandler) getReport(ctx context.Context, id int64) (*store.Report, error) {
	rep, err := h.store.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, store.ErrNotFound
	}
	return rep, nil
}

func (h *ReportsHandler) audit(r *http.Request, action, details string) {
	if h.audits == nil {
		return
	}
	username := ""
	if sess := auth.FromContext(r.Context()); sess != nil {
		username = sess.Username
	}
	_ = h.audits.Log(r.Context(), username, action, details)
}

func (h *ReportsHandler) filtersFromQuery(r *http.Request) reports.Filters {
	q := r.URL.Query()
	f := reports.Filters{
		Search:    q.Get("q"),
		Status:    strings.ToLower(strings.TrimSpace(q.Get("status"))),
		StartDate: strings.TrimSpace(q.Get("start_date")),
		EndDate:   strings.TrimSpace(q.Get("end_date")),
	}
	if raw := q.Get("category_id"); raw != "" {
		if id, err := parseID(raw); err == nil {
			f.CategoryID = id
		}
	}
	if raw := strings.ToLower(strings.TrimSpace(q.Get("subcategory"))); raw != "" && raw != "all" {
		if idx := parseIntDefault(raw, -1); idx >= 0 {
			f.SubcategoryIndex = idx
			f.HasSubcategory = true
		}
	}
	if v := strings.ToLower(q.Get("include_archived")); v == "1" || v == "true" {
		f.IncludeArchived = true
	}
	return f
}

func sortFromQuery(r *http.Request) reports.Sort {
	s := reports.Sort{
		Field:     strings.TrimSpace(r.URL.Query().Get("sort")),
		Direction: reports.SortAsc,
	}
	if strings.ToLower(r.URL.Query().Get("dir")) == "desc" {
		s.Direction = reports.SortDesc
	}
	return s
}

type reportView struct {
	store.Report
	Archived bool          `json:"archived"`
	Badge    reports.Badge `json:"badge"`
}

func (h *ReportsHandler) view(r *store.Report) reportView {
	return reportView{
		Report:   *r,
		Archived: h.bench.IsArchived(r),
		Badge:    reports.StatusBadge(r.Status),
	}
}

func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.ListCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	items, err := h.bench.List(r.Context(), h.filtersFromQuery(r), sortFromQuery(r), cats)
	if err != nil {
		h.logger.Errorf("list reports: %v", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	h.bench.Reconcile(r.Context())
	views := make([]reportView, 0, len(items))
	for i := range items {
		views = append(views, h.view(&items[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": views,
		"stats": h.bench.Stats(items),
	})
}

func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	rep, err := h.getReport(r.Context(), id)
	if err != nil {
		writeError(w, storeStatus(err), "report not found")
		return
	}
	writeJSON(w, http.StatusOK, h.view(rep))
}

type reportUpdateRequest struct {
	Status      *string `json:"status"`
	PoliceNotes *string `json:"police_notes"`
	Barangay    *string `json:"barangay"`
}

func (h *ReportsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req reportUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Status != nil {
		rep, err := h.bench.SetStatus(r.Context(), id, *req.Status)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.PoliceNotes == nil && req.Barangay == nil {
			h.audit(r, "report.status", fmt.Sprintf("report %d -> %s", id, *req.Status))
			writeJSON(w, http.StatusOK, h.view(rep))
			return
		}
	}
	patch := store.ReportPatch{PoliceNotes: req.PoliceNotes, Barangay: req.Barangay}
	rep, err := h.store.UpdateReportFields(r.Context(), id, patch)
	if err != nil {
		writeError(w, storeStatus(err), "update failed")
		return
	}
	h.audit(r, "report.update", fmt.Sprintf("report %d", id))
	writeJSON(w, http.StatusOK, h.view(rep))
}

func (h *ReportsHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	rep, err := h.bench.Archive(r.Context(), id)
	if err != nil {
		writeError(w, storeStatus(err), "archive failed")
		return
	}
	h.audit(r, "report.archive", fmt.Sprintf("report %d", id))
	writeJSON(w, http.StatusOK, h.view(rep))
}

func (h *ReportsHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	rep, err := h.bench.Restore(r.Context(), id)
	if err != nil {
		writeError(w, storeStatus(err), "restore failed")
		return
	}
	h.audit(r, "report.restore", fmt.Sprintf("report %d", id))
	writeJSON(w, http.StatusOK, h.view(rep))
}

// Merge selection endpoints. The selection is process-wide; the console is
// a single-operator surface.

func (h *ReportsHandler) selectionState() map[string]any {
	sel := h.bench.Selection()
	return map[string]any{
		"phase":    sel.Phase(),
		"selected": sel.IDs(),
	}
}

func (h *ReportsHandler) MergeState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.selectionState())
}

func (h *ReportsHandler) MergeBegin(w http.ResponseWriter, r *http.Request) {
	if err := h.bench.Selection().Begin(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.selectionState())
}

func (h *ReportsHandler) MergeCancel(w http.ResponseWriter, r *http.Request) {
	h.bench.Selection().Cancel()
	writeJSON(w, http.StatusOK, h.selectionState())
}

func (h *ReportsHandler) MergeToggle(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	rep, err := h.getReport(r.Context(), id)
	if err != nil {
		writeError(w, storeStatus(err), "report not found")
		return
	}
	if err := h.bench.Toggle(rep); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.selectionState())
}

type mergePrimaryRequest struct {
	PrimaryID *int64 `json:"primary_id"`
}

// applyPrimary reorders the selection when the request names a primary.
// The body is optional on confirm and commit; decode failures on an empty
// body are ignored.
func (h *ReportsHandler) applyPrimary(w http.ResponseWriter, r *http.Request) bool {
	var req mergePrimaryRequest
	_ = decodeJSON(r, &req)
	if req.PrimaryID == nil {
		return true
	}
	if err := h.bench.Selection().SetPrimary(*req.PrimaryID); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return false
	}
	return true
}

func (h *ReportsHandler) MergeConfirm(w http.ResponseWriter, r *http.Request) {
	h.bench.Reconcile(r.Context())
	if err := h.bench.Selection().Confirm(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if !h.applyPrimary(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, h.selectionState())
}

func (h *ReportsHandler) MergeCommit(w http.ResponseWriter, r *http.Request) {
	if !h.applyPrimary(w, r) {
		return
	}
	res, err := h.bench.Merge(r.Context())
	if err != nil {
		h.logger.Errorf("merge: %v", err)
		status := http.StatusConflict
		if res != nil && len(res.Steps) > 0 {
			// a step failed mid-flight; surface the partial results
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, map[string]any{"error": err.Error(), "result": res})
		return
	}
	h.audit(r, "report.merge", fmt.Sprintf("report %d into %d", res.SecondaryID, res.PrimaryID))
	writeJSON(w, http.StatusOK, res)
}

// Witnesses

func (h *ReportsHandler) ListWitnesses(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	items, err := h.store.ListWitnesses(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ReportsHandler) AddWitness(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var wit store.Witness
	if err := decodeJSON(r, &wit); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	wit.ReportID = id
	if strings.TrimSpace(wit.UserID) == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	wid, err := h.store.AddWitness(r.Context(), &wit)
	if err != nil {
		writeError(w, storeStatus(err), "add witness failed")
		return
	}
	wit.ID = wid
	writeJSON(w, http.StatusCreated, wit)
}

func (h *ReportsHandler) DeleteWitness(w http.ResponseWriter, r *http.Request) {
	wid, err := parseID(chi.URLParam(r, "witness_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.store.DeleteWitness(r.Context(), wid); err != nil {
		writeError(w, storeStatus(err), "delete witness failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Attachments

func (h *ReportsHandler) Attachments(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	rep, err := h.getReport(r.Context(), id)
	if err != nil {
		writeError(w, storeStatus(err), "report not found")
		return
	}
	writeJSON(w, http.StatusOK, h.attachSvc.Resolve(r.Context(), rep.Attachments))
}

// Thumbnails returns display URLs for a report's image attachments, keyed by
// attachment index. Non-image attachments and failed signings are omitted.
func (h *ReportsHandler) Thumbnails(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	rep, err := h.getReport(r.Context(), id)
	if err != nil {
		writeError(w, storeStatus(err), "report not found")
		return
	}
	writeJSON(w, http.StatusOK, h.attachSvc.Thumbnails(r.Context(), rep.Attachments))
}

// Download streams one attachment through the server so the browser gets a
// forced download with the original filename, regardless of backend.
func (h *ReportsHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	rep, err := h.getReport(r.Context(), id)
	if err != nil {
		writeError(w, storeStatus(err), "report not found")
		return
	}
	idx := parseIntDefault(r.URL.Query().Get("index"), -1)
	if idx < 0 || idx >= len(rep.Attachments) {
		writeError(w, http.StatusBadRequest, "invalid attachment index")
		return
	}
	resolved := h.attachSvc.Resolve(r.Context(), rep.Attachments)
	att := resolved[idx]
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.Name))
	if _, err := h.downloader.FetchAttachment(r.Context(), att, w, nil); err != nil {
		h.logger.Errorf("download attachment %s of report %d: %v", att.Name, id, err)
		// headers may already be out; nothing more to send
		return
	}
	h.audit(r, "report.download", fmt.Sprintf("report %d attachment %d", id, idx))
}

type assignRequest struct {
	OfficerIDs []int64 `json:"officer_ids"`
}

func (h *ReportsHandler) AssignOfficers(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req assignRequest
	if err := decodeJSON(r, &req); err != nil || len(req.OfficerIDs) == 0 {
		writeError(w, http.StatusBadRequest, "officer_ids is required")
		return
	}
	rep, err := h.bench.AssignOfficers(r.Context(), id, req.OfficerIDs)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	h.audit(r, "report.assign", fmt.Sprintf("report %d officers %v", id, req.OfficerIDs))
	writeJSON(w, http.StatusOK, h.view(rep))
}

func (h *ReportsHandler) ReleaseOfficer(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	oid, err := parseID(chi.URLParam(r, "officer_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid officer id")
		return
	}
	rep, err := h.bench.ReleaseOfficer(r.Context(), id, oid)
	if err != nil {
		writeError(w, storeStatus(err), "release failed")
		return
	}
	writeJSON(w, http.StatusOK, h.view(rep))
}
