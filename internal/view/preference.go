// Package view derives the operator-facing projection of the lead set and
// owns the filter/sort preference driving it. It reads the cache, never
// mutates it.
package view

type SortField string

const (
	SortScore   SortField = "score"
	SortName    SortField = "name"
	SortCompany SortField = "company"
)

func (f SortField) Valid() bool {
	switch f {
	case SortScore, SortName, SortCompany:
		return true
	}
	return false
}

type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// StatusFilterAll is the sentinel that disables status filtering.
const StatusFilterAll = "all"

// PreferenceKey is the fixed name the preference persists under.
const PreferenceKey = "leads-filter-sort"

// Preference is the filter/sort state of the lead view. It has no server
// counterpart; it round-trips verbatim through the preference store.
type Preference struct {
	SearchQuery   string        `json:"searchQuery"`
	StatusFilter  string        `json:"statusFilter"`
	SortField     SortField     `json:"sortField"`
	SortDirection SortDirection `json:"sortDirection"`
}

func DefaultPreference() Preference {
	return Preference{
		StatusFilter:  StatusFilterAll,
		SortField:     SortScore,
		SortDirection: Descending,
	}
}

// ToggleSort flips direction when the field is already active and sorted
// descending; any other toggle lands on the given field, descending.
func (p *Preference) ToggleSort(field SortField) {
	if p.SortField == field && p.SortDirection == Descending {
		p.SortDirection = Ascending
	} else {
		p.SortDirection = Descending
	}
	p.SortField = field
}
