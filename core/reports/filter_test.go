package reports

import (
	"testing"
	"time"

	"dispatch-console/core/store"
)

func report(id int64, title string, mods ...func(*store.Report)) store.Report {
	r := store.Report{ID: id, Title: title, Status: StatusPending}
	for _, m := range mods {
		m(&r)
	}
	return r
}

func withDate(date, clock string) func(*store.Report) {
	return func(r *store.Report) {
		r.IncidentDate = date
		r.IncidentTime = clock
	}
}

func withCategory(id int64, sub int) func(*store.Report) {
	return func(r *store.Report) {
		r.CategoryID = &id
		r.SubcategoryIndex = &sub
	}
}

func ids(items []store.Report) []int64 {
	out := make([]int64, len(items))
	for i := range items {
		out[i] = items[i].ID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var testCategories = []store.Category{
	{ID: 1, Name: "Theft", Subcategories: []string{"Pickpocketing", "Carnapping"}},
	{ID: 2, Name: "Disturbance", Subcategories: []string{"Noise"}},
}

func TestDateRangeEndInclusive(t *testing.T) {
	w, _, _ := setupWorkbench(t)
	items := []store.Report{
		report(1, "inside", withDate("2024-06-15", "23:30")),
		report(2, "before", withDate("2024-06-09", "")),
		report(3, "after", withDate("2024-06-16", "00:00")),
		report(4, "start edge", withDate("2024-06-10", "00:00")),
	}
	f := Filters{StartDate: "2024-06-10", EndDate: "2024-06-15"}
	got := w.Apply(items, f, Sort{Field: "id", Direction: SortAsc}, testCategories)
	if !equalIDs(ids(got), []int64{1, 4}) {
		t.Fatalf("range result = %v, want [1 4]", ids(got))
	}
}

func TestDateRangeDropsUnparseableDates(t *testing.T) {
	w, _, _ := setupWorkbench(t)
	items := []store.Report{
		report(1, "dated", withDate("2024-06-12", "")),
		report(2, "undated"),
	}
	got := w.Apply(items, Filters{StartDate: "2024-06-01"}, Sort{}, nil)
	if !equalIDs(ids(got), []int64{1}) {
		t.Fatalf("got %v, want only the dated report", ids(got))
	}
}

func TestSearchCoversResolvedCategoryNames(t *testing.T) {
	w, _, _ := setupWorkbench(t)
	items := []store.Report{
		report(1, "stolen bag", withCategory(1, 0)),
		report(2, "loud party", withCategory(2, 0)),
		report(3, "missing person"),
	}
	cases := []struct {
		q    string
		want []int64
	}{
		{"theft", []int64{1}},
		{"PICKPOCKET", []int64{1}},
		{"noise", []int64{2}},
		{"missing", []int64{3}},
		{"garbage", nil},
	}
	for _, c := range cases {
		got := ids(w.Apply(items, Filters{Search: c.q}, Sort{Field: "id"}, testCategories))
		if !equalIDs(got, c.want) {
			t.Fatalf("search %q = %v, want %v", c.q, got, c.want)
		}
	}
}

func TestSubcategoryFilterIsPositional(t *testing.T) {
	w, _, _ := setupWorkbench(t)
	items := []store.Report{
		report(1, "a", withCategory(1, 0)),
		report(2, "b", withCategory(1, 1)),
	}
	f := Filters{CategoryID: 1, SubcategoryIndex: 1, HasSubcategory: true}
	got := ids(w.Apply(items, f, Sort{}, testCategories))
	if !equalIDs(got, []int64{2}) {
		t.Fatalf("subcategory filter = %v, want [2]", got)
	}
	// index 0 must match too, not be confused with "unset"
	f = Filters{CategoryID: 1, SubcategoryIndex: 0, HasSubcategory: true}
	got = ids(w.Apply(items, f, Sort{}, testCategories))
	if !equalIDs(got, []int64{1}) {
		t.Fatalf("subcategory index 0 = %v, want [1]", got)
	}
}

func TestFilterExcludesArchivedByDefault(t *testing.T) {
	w, _, _ := setupWorkbench(t)
	items := []store.Report{
		report(1, "open"),
		report(2, "cancelled", func(r *store.Report) { r.Status = StatusCancelled }),
		report(3, "flagged", func(r *store.Report) { r.IsArchived = true }),
	}
	got := ids(w.Apply(items, Filters{}, Sort{Field: "id"}, nil))
	if !equalIDs(got, []int64{1}) {
		t.Fatalf("default view = %v, want [1]", got)
	}
	got = ids(w.Apply(items, Filters{IncludeArchived: true}, Sort{Field: "id"}, nil))
	if !equalIDs(got, []int64{1, 2, 3}) {
		t.Fatalf("archived view = %v, want all three", got)
	}
}

func TestSortMissingKeysAlwaysGreater(t *testing.T) {
	w, _, _ := setupWorkbench(t)
	items := []store.Report{
		report(1, "undated"),
		report(2, "early", withDate("2024-01-05", "")),
		report(3, "late", withDate("2024-03-01", "")),
	}
	asc := ids(w.Apply(items, Filters{}, Sort{Field: "incident_date", Direction: SortAsc}, nil))
	if !equalIDs(asc, []int64{2, 3, 1}) {
		t.Fatalf("asc = %v, want undated last", asc)
	}
	desc := ids(w.Apply(items, Filters{}, Sort{Field: "incident_date", Direction: SortDesc}, nil))
	if !equalIDs(desc, []int64{1, 3, 2}) {
		t.Fatalf("desc = %v, want undated first", desc)
	}
}

func TestSortComposesDateAndTime(t *testing.T) {
	w, _, _ := setupWorkbench(t)
	items := []store.Report{
		report(1, "evening", withDate("2024-02-10", "21:15")),
		report(2, "morning", withDate("2024-02-10", "08:00")),
		report(3, "no clock", withDate("2024-02-10", "")),
	}
	asc := ids(w.Apply(items, Filters{}, Sort{Field: "incident_date", Direction: SortAsc}, nil))
	if !equalIDs(asc, []int64{3, 2, 1}) {
		t.Fatalf("asc = %v, want midnight first then clock order", asc)
	}
}

func TestIncidentInstantLocalZone(t *testing.T) {
	r := report(1, "x", withDate("2024-06-15", "13:45"))
	got, ok := incidentInstant(&r)
	if !ok {
		t.Fatalf("instant not parsed")
	}
	want := time.Date(2024, 6, 15, 13, 45, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("instant = %v, want %v", got, want)
	}
}
