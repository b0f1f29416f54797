package reports

import (
	"context"
	"fmt"

	"dispatch-console/core/store"
	"dispatch-console/core/utils"
)

// Broadcaster pushes change events to connected consoles. The realtime hub
// implements it; a nil broadcaster is allowed and disables the feed.
type Broadcaster interface {
	Broadcast(event string, payload any)
}

// Workbench is the report management surface behind the console: listing
// with filters, archival, officer assignment and the two-report merge flow.
type Workbench struct {
	store     store.ReportsStore
	officers  store.OfficersStore
	log       *utils.Logger
	local     *localArchive
	selection *Selection
	hub       Broadcaster
}

func NewWorkbench(rs store.ReportsStore, os store.OfficersStore, hub Broadcaster, log *utils.Logger) *Workbench {
	if log == nil {
		log = utils.NewLogger()
	}
	return &Workbench{
		store:     rs,
		officers:  os,
		log:       log,
		local:     newLocalArchive(),
		selection: NewSelection(),
		hub:       hub,
	}
}

func (w *Workbench) Selection() *Selection { return w.selection }

func (w *Workbench) notifyChanged(ctx context.Context, ids ...int64) {
	if w.hub == nil {
		return
	}
	w.hub.Broadcast("reports.changed", map[string]any{"ids": ids})
}

// Archive marks the report locally first so the list reflects it on the
// next render even if the write is still in flight, then persists the flag.
// The local marker is dropped again if the write fails.
func (w *Workbench) Archive(ctx context.Context, id int64) (*store.Report, error) {
	w.local.Add(id)
	r, err := w.store.ArchiveReport(ctx, id)
	if err != nil {
		w.local.Remove(id)
		return nil, err
	}
	w.notifyChanged(ctx, id)
	return r, nil
}

func (w *Workbench) Restore(ctx context.Context, id int64) (*store.Report, error) {
	r, err := w.store.RestoreReport(ctx, id)
	if err != nil {
		return nil, err
	}
	w.local.Remove(id)
	w.notifyChanged(ctx, id)
	return r, nil
}

// SetStatus validates and persists a status change. Moving to cancelled
// also archives the report through the derived predicate, so no extra flag
// write is needed here.
func (w *Workbench) SetStatus(ctx context.Context, id int64, status string) (*store.Report, error) {
	if !IsValidStatus(status) {
		return nil, fmt.Errorf("invalid status %q", status)
	}
	patch := store.ReportPatch{Status: &status}
	r, err := w.store.UpdateReportFields(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	w.notifyChanged(ctx, id)
	return r, nil
}

// AssignOfficers assigns each officer in turn and records them on the
// report. The loop is sequential; a failure part way through leaves the
// earlier assignments in place and reports which officer failed.
func (w *Workbench) AssignOfficers(ctx context.Context, reportID int64, officerIDs []int64) (*store.Report, error) {
	r, err := w.store.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("report %d: %w", reportID, store.ErrNotFound)
	}
	if w.IsArchived(r) {
		return nil, fmt.Errorf("report %d is archived", reportID)
	}
	assigned := make(map[int64]struct{}, len(r.InvolvedOfficers))
	for _, id := range r.InvolvedOfficers {
		assigned[id] = struct{}{}
	}
	involved := r.InvolvedOfficers
	for _, officerID := range officerIDs {
		if _, dup := assigned[officerID]; dup {
			continue
		}
		if _, err := w.officers.AssignOfficer(ctx, officerID, &reportID); err != nil {
			return nil, fmt.Errorf("assign officer %d: %w", officerID, err)
		}
		assigned[officerID] = struct{}{}
		involved = append(involved, officerID)
	}
	patch := store.ReportPatch{InvolvedOfficers: involved}
	if r.Status == StatusPending {
		s := StatusAssigned
		patch.Status = &s
	}
	updated, err := w.store.UpdateReportFields(ctx, reportID, patch)
	if err != nil {
		return nil, err
	}
	w.notifyChanged(ctx, reportID)
	return updated, nil
}

// ReleaseOfficer removes one officer from a report.
func (w *Workbench) ReleaseOfficer(ctx context.Context, reportID, officerID int64) (*store.Report, error) {
	r, err := w.store.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("report %d: %w", reportID, store.ErrNotFound)
	}
	if _, err := w.officers.AssignOfficer(ctx, officerID, nil); err != nil {
		return nil, err
	}
	involved := make([]int64, 0, len(r.InvolvedOfficers))
	for _, id := range r.InvolvedOfficers {
		if id != officerID {
			involved = append(involved, id)
		}
	}
	updated, err := w.store.UpdateReportFields(ctx, reportID, store.ReportPatch{InvolvedOfficers: involved})
	if err != nil {
		return nil, err
	}
	w.notifyChanged(ctx, reportID)
	return updated, nil
}

// List loads, filters and sorts reports for display.
func (w *Workbench) List(ctx context.Context, f Filters, s Sort, categories []store.Category) ([]store.Report, error) {
	items, err := w.store.ListReports(ctx, store.ReportFilter{IncludeArchived: true})
	if err != nil {
		return nil, err
	}
	return w.Apply(items, f, s, categories), nil
}

// SweepCancelled converges the stored archive flag with the derived
// predicate: any cancelled report that still carries is_archived=0 gets the
// flag set. The retention scheduler runs this periodically.
func (w *Workbench) SweepCancelled(ctx context.Context) (int, error) {
	items, err := w.store.ListReports(ctx, store.ReportFilter{Status: StatusCancelled, IncludeArchived: true})
	if err != nil {
		return 0, err
	}
	n := 0
	for i := range items {
		if items[i].IsArchived {
			continue
		}
		if _, err := w.store.ArchiveReport(ctx, items[i].ID); err != nil {
			return n, err
		}
		w.local.Remove(items[i].ID)
		n++
	}
	if n > 0 {
		w.log.Printf("retention sweep archived %d cancelled reports", n)
		w.notifyChanged(ctx)
	}
	return n, nil
}
