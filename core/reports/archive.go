package reports

import (
	"sync"

	"dispatch-console/core/store"
)

// localArchive tracks reports archived optimistically in this process before
// the stored flag catches up (e.g. the secondary of a merge). Archival is a
// derived predicate over three sources, not a single stored fact.
type localArchive struct {
	mu  sync.Mutex
	ids map[int64]struct{}
}

func newLocalArchive() *localArchive {
	return &localArchive{ids: map[int64]struct{}{}}
}

func (l *localArchive) Add(id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ids[id] = struct{}{}
}

func (l *localArchive) Remove(id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.ids, id)
}

func (l *localArchive) Has(id int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.ids[id]
	return ok
}

// IsArchived reports whether r counts as archived: the stored flag, a
// cancelled status, or the local optimistic marker. Callers must not treat
// the stored flag alone as authoritative.
func (w *Workbench) IsArchived(r *store.Report) bool {
	if r == nil {
		return true
	}
	if r.IsArchived || r.Status == StatusCancelled {
		return true
	}
	return w.local.Has(r.ID)
}
