package reports

import "dispatch-console/core/store"

type Stats struct {
	Total    int            `json:"total"`
	Archived int            `json:"archived"`
	ByStatus map[string]int `json:"by_status"`
}

// Stats counts the collection as displayed. Archived reports count toward
// the archived bucket only.
func (w *Workbench) Stats(items []store.Report) Stats {
	st := Stats{ByStatus: make(map[string]int)}
	for i := range items {
		r := &items[i]
		if w.IsArchived(r) {
			st.Archived++
			continue
		}
		st.Total++
		st.ByStatus[r.Status]++
	}
	return st
}
