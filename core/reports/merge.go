package reports

import (
	"context"
	"fmt"
	"sync"

	"dispatch-console/core/store"
)

// Merge selection phases. The selection lives in memory on the workbench;
// it is scoped to the session of whoever is driving the merge.
type MergePhase string

const (
	PhaseIdle       MergePhase = "idle"
	PhaseSelecting  MergePhase = "selecting"
	PhaseConfirming MergePhase = "confirming"
	PhaseMerging    MergePhase = "merging"
)

const maxMergeSelection = 2

type Selection struct {
	mu    sync.Mutex
	phase MergePhase
	ids   []int64
}

func NewSelection() *Selection {
	return &Selection{phase: PhaseIdle}
}

func (s *Selection) Phase() MergePhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Selection) IDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, len(s.ids))
	copy(out, s.ids)
	return out
}

// Begin enters selection mode. Calling it while a merge is running is
// rejected; calling it from any other phase resets the selection.
func (s *Selection) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseMerging {
		return fmt.Errorf("merge in progress")
	}
	s.phase = PhaseSelecting
	s.ids = s.ids[:0]
	return nil
}

// Cancel returns to idle from selecting or confirming. It is a no-op while
// a merge is running.
func (s *Selection) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseMerging {
		return
	}
	s.phase = PhaseIdle
	s.ids = s.ids[:0]
}

// Toggle adds or removes a report from the selection. Selecting a third
// report is a silent no-op. Archived reports cannot be selected.
func (w *Workbench) Toggle(r *store.Report) error {
	s := w.selection
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseSelecting {
		return fmt.Errorf("not in selection mode")
	}
	for i, id := range s.ids {
		if id == r.ID {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return nil
		}
	}
	if w.IsArchived(r) {
		return fmt.Errorf("report %d is archived", r.ID)
	}
	if len(s.ids) >= maxMergeSelection {
		return nil
	}
	s.ids = append(s.ids, r.ID)
	return nil
}

// Reconcile drops selected ids that have since been archived or deleted.
// Call it after any refresh of the report list.
func (w *Workbench) Reconcile(ctx context.Context) {
	s := w.selection
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseSelecting && s.phase != PhaseConfirming {
		return
	}
	kept := s.ids[:0]
	for _, id := range s.ids {
		r, err := w.store.GetReport(ctx, id)
		if err != nil || r == nil {
			continue
		}
		if w.IsArchived(r) {
			continue
		}
		kept = append(kept, id)
	}
	s.ids = kept
	if s.phase == PhaseConfirming && len(s.ids) < maxMergeSelection {
		s.phase = PhaseSelecting
	}
}

// Confirm moves from selecting to confirming once exactly two reports are
// selected.
func (s *Selection) Confirm() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseSelecting {
		return fmt.Errorf("not in selection mode")
	}
	if len(s.ids) != maxMergeSelection {
		return fmt.Errorf("merge needs exactly %d reports, have %d", maxMergeSelection, len(s.ids))
	}
	s.phase = PhaseConfirming
	return nil
}

// SetPrimary reorders the selection so the given report survives the merge.
// The other selected report becomes the secondary. Valid while selecting or
// confirming; the id must be one of the selected reports.
func (s *Selection) SetPrimary(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseSelecting && s.phase != PhaseConfirming {
		return fmt.Errorf("no merge selection")
	}
	for i, got := range s.ids {
		if got == id {
			s.ids[0], s.ids[i] = s.ids[i], s.ids[0]
			return nil
		}
	}
	return fmt.Errorf("report %d is not selected", id)
}

// MergeStep records the outcome of one step of a merge commit. Steps are
// reported individually because a failed merge is not rolled back; the
// operator resolves the partial state by hand using these results.
type MergeStep struct {
	Name string `json:"name"`
	Done bool   `json:"done"`
	Err  string `json:"error,omitempty"`
}

type MergeResult struct {
	PrimaryID   int64       `json:"primary_id"`
	SecondaryID int64       `json:"secondary_id"`
	Steps       []MergeStep `json:"steps"`
	Completed   bool        `json:"completed"`
}

// unionAttachments appends the secondary's attachments that the primary
// does not already carry, preserving order.
func unionAttachments(primary, secondary []string) ([]string, bool) {
	seen := make(map[string]struct{}, len(primary))
	for _, a := range primary {
		seen[a] = struct{}{}
	}
	out := primary
	changed := false
	for _, a := range secondary {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
		changed = true
	}
	return out, changed
}

// Merge commits the confirmed selection. The first selected report is the
// primary and survives; the secondary's attachments are folded in, its
// reporter becomes a witness on the primary, and it is archived. The steps
// run in order and stop at the first failure with no rollback.
func (w *Workbench) Merge(ctx context.Context) (*MergeResult, error) {
	s := w.selection
	s.mu.Lock()
	if s.phase != PhaseConfirming {
		s.mu.Unlock()
		return nil, fmt.Errorf("merge not confirmed")
	}
	if len(s.ids) != maxMergeSelection {
		s.mu.Unlock()
		return nil, fmt.Errorf("selection incomplete")
	}
	primaryID, secondaryID := s.ids[0], s.ids[1]
	s.phase = PhaseMerging
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.phase = PhaseIdle
		s.ids = s.ids[:0]
		s.mu.Unlock()
	}()

	res := &MergeResult{PrimaryID: primaryID, SecondaryID: secondaryID}

	primary, err := w.store.GetReport(ctx, primaryID)
	if err != nil {
		return res, fmt.Errorf("load primary: %w", err)
	}
	if primary == nil {
		return res, fmt.Errorf("load primary: report %d: %w", primaryID, store.ErrNotFound)
	}
	secondary, err := w.store.GetReport(ctx, secondaryID)
	if err != nil {
		return res, fmt.Errorf("load secondary: %w", err)
	}
	if secondary == nil {
		return res, fmt.Errorf("load secondary: report %d: %w", secondaryID, store.ErrNotFound)
	}

	fail := func(name string, err error) (*MergeResult, error) {
		res.Steps = append(res.Steps, MergeStep{Name: name, Err: err.Error()})
		return res, fmt.Errorf("%s: %w", name, err)
	}
	ok := func(name string) {
		res.Steps = append(res.Steps, MergeStep{Name: name, Done: true})
	}

	merged, changed := unionAttachments(primary.Attachments, secondary.Attachments)
	if changed {
		patch := store.ReportPatch{Attachments: merged}
		if _, err := w.store.UpdateReportFields(ctx, primaryID, patch); err != nil {
			return fail("union-attachments", err)
		}
	}
	ok("union-attachments")

	if secondary.ReporterID != "" {
		witness := &store.Witness{
			ReportID:  primaryID,
			UserID:    secondary.ReporterID,
			Statement: secondary.Description,
		}
		if _, err := w.store.AddWitness(ctx, witness); err != nil {
			return fail("carry-witness", err)
		}
	}
	ok("carry-witness")

	w.local.Add(secondaryID)
	if _, err := w.store.ArchiveReport(ctx, secondaryID); err != nil {
		w.local.Remove(secondaryID)
		return fail("archive-secondary", err)
	}
	ok("archive-secondary")

	res.Completed = true
	w.log.Printf("merged report %d into %d", secondaryID, primaryID)
	w.notifyChanged(ctx, primaryID, secondaryID)
	return res, nil
}
