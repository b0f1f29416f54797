package reports

import (
	"sort"
	"strings"
	"time"

	"dispatch-console/core/store"
)

// FilterAll is the wildcard value for the status/category/subcategory
// filters.
const FilterAll = "all"

type Filters struct {
	Search           string `json:"search,omitempty"`
	Status           string `json:"status,omitempty"`
	CategoryID       int64  `json:"category_id,omitempty"`
	SubcategoryIndex int    `json:"subcategory_index,omitempty"`
	HasSubcategory   bool   `json:"-"`
	StartDate        string `json:"start_date,omitempty"`
	EndDate          string `json:"end_date,omitempty"`
	IncludeArchived  bool   `json:"include_archived,omitempty"`
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type Sort struct {
	Field     string
	Direction SortDirection
}

type categoryIndex map[int64]store.Category

func buildCategoryIndex(categories []store.Category) categoryIndex {
	idx := make(categoryIndex, len(categories))
	for _, c := range categories {
		idx[c.ID] = c
	}
	return idx
}

func (idx categoryIndex) categoryName(r *store.Report) string {
	if r.CategoryID == nil {
		return ""
	}
	if c, ok := idx[*r.CategoryID]; ok {
		return c.Name
	}
	return ""
}

func (idx categoryIndex) subcategoryName(r *store.Report) string {
	if r.CategoryID == nil || r.SubcategoryIndex == nil {
		return ""
	}
	c, ok := idx[*r.CategoryID]
	if !ok {
		return ""
	}
	i := *r.SubcategoryIndex
	if i < 0 || i >= len(c.Subcategories) {
		return ""
	}
	return c.Subcategories[i]
}

// parseLocalDate parses a bare YYYY-MM-DD as a local calendar date. Parsing
// as UTC shifts the day by one for western timezones, which breaks the
// inclusive range check.
func parseLocalDate(s string) (time.Time, bool) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// incidentInstant composes the incident date with its optional HH:MM time
// component into a single comparable instant.
func incidentInstant(r *store.Report) (time.Time, bool) {
	d, ok := parseLocalDate(r.IncidentDate)
	if !ok {
		return time.Time{}, false
	}
	clock := strings.TrimSpace(r.IncidentTime)
	if clock == "" {
		return d, true
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", r.IncidentDate+" "+clock, time.Local)
	if err != nil {
		return d, true
	}
	return t, true
}

// Matches applies the filter predicates. The archived check
// uses the workbench's derived predicate, not the stored flag.
func (w *Workbench) Matches(r *store.Report, f Filters, idx categoryIndex) bool {
	if !f.IncludeArchived && w.IsArchived(r) {
		return false
	}
	if f.Status != "" && f.Status != FilterAll {
		if !strings.EqualFold(r.Status, f.Status) {
			return false
		}
	}
	if f.CategoryID > 0 {
		if r.CategoryID == nil || *r.CategoryID != f.CategoryID {
			return false
		}
	}
	if f.HasSubcategory {
		if r.SubcategoryIndex == nil || *r.SubcategoryIndex != f.SubcategoryIndex {
			return false
		}
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		haystack := []string{
			strings.ToLower(r.Title),
			strings.ToLower(r.StreetAddress),
			strings.ToLower(idx.categoryName(r)),
			strings.ToLower(idx.subcategoryName(r)),
		}
		found := false
		for _, h := range haystack {
			if h != "" && strings.Contains(h, q) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.StartDate != "" || f.EndDate != "" {
		d, ok := parseLocalDate(r.IncidentDate)
		if !ok {
			return false
		}
		if start, sok := parseLocalDate(f.StartDate); sok && d.Before(start) {
			return false
		}
		if end, eok := parseLocalDate(f.EndDate); eok {
			// inclusive through 23:59:59.999 of the end date
			if d.After(end.Add(24*time.Hour - time.Millisecond)) {
				return false
			}
		}
	}
	return true
}

// Apply filters and sorts the collection into display order. Stability for
// equal keys is not guaranteed.
func (w *Workbench) Apply(items []store.Report, f Filters, s Sort, categories []store.Category) []store.Report {
	idx := buildCategoryIndex(categories)
	out := make([]store.Report, 0, len(items))
	for i := range items {
		if w.Matches(&items[i], f, idx) {
			out = append(out, items[i])
		}
	}
	sortReports(out, s, idx)
	return out
}

type sortKey struct {
	str   string
	num   float64
	when  time.Time
	kind  byte // 's', 'n', 't'
	valid bool
}

func reportSortKey(r *store.Report, field string, idx categoryIndex) sortKey {
	switch field {
	case "id":
		return sortKey{num: float64(r.ID), kind: 'n', valid: true}
	case "title":
		return sortKey{str: strings.ToLower(r.Title), kind: 's', valid: r.Title != ""}
	case "status":
		return sortKey{str: r.Status, kind: 's', valid: r.Status != ""}
	case "street_address":
		return sortKey{str: strings.ToLower(r.StreetAddress), kind: 's', valid: r.StreetAddress != ""}
	case "barangay":
		return sortKey{str: strings.ToLower(r.Barangay), kind: 's', valid: r.Barangay != ""}
	case "category":
		name := idx.categoryName(r)
		return sortKey{str: strings.ToLower(name), kind: 's', valid: name != ""}
	case "incident_date":
		t, ok := incidentInstant(r)
		return sortKey{when: t, kind: 't', valid: ok}
	case "created_at":
		return sortKey{when: r.CreatedAt, kind: 't', valid: true}
	default:
		return sortKey{num: float64(r.ID), kind: 'n', valid: true}
	}
}

// compare returns <0, 0, >0 for valid keys of the same kind.
func (a sortKey) compare(b sortKey) int {
	switch a.kind {
	case 'n':
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
		return 0
	case 't':
		switch {
		case a.when.Before(b.when):
			return -1
		case a.when.After(b.when):
			return 1
		}
		return 0
	default:
		return strings.Compare(a.str, b.str)
	}
}

func sortReports(items []store.Report, s Sort, idx categoryIndex) {
	field := strings.TrimSpace(s.Field)
	if field == "" {
		field = "created_at"
	}
	desc := s.Direction == SortDesc
	sort.Slice(items, func(i, j int) bool {
		a := reportSortKey(&items[i], field, idx)
		b := reportSortKey(&items[j], field, idx)
		// A missing key is always the greater value: last in ascending
		// order, first in descending.
		if !a.valid || !b.valid {
			if a.valid == b.valid {
				return false
			}
			if desc {
				return !a.valid
			}
			return a.valid
		}
		cmp := a.compare(b)
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}
