package view

import (
	"sort"
	"strings"

	"github.com/xavierca1/seller-console/internal/entity"
)

// Apply runs the search → status filter → sort pipeline over a snapshot of
// the lead collection. Pure function of its three inputs: same collection,
// query and preference always yield the same ordered sequence, and the
// input slice is never reordered or mutated.
func Apply(leads []entity.Lead, query string, pref Preference) []entity.Lead {
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]entity.Lead, 0, len(leads))
	for _, lead := range leads {
		if q != "" &&
			!strings.Contains(strings.ToLower(lead.Name), q) &&
			!strings.Contains(strings.ToLower(lead.Company), q) {
			continue
		}
		if pref.StatusFilter != StatusFilterAll && string(lead.Status) != pref.StatusFilter {
			continue
		}
		out = append(out, lead)
	}

	// Stable: equal keys keep their prior relative order in both directions.
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j], pref)
	})
	return out
}

func less(a, b entity.Lead, pref Preference) bool {
	var cmp int
	switch pref.SortField {
	case SortName:
		cmp = strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case SortCompany:
		cmp = strings.Compare(strings.ToLower(a.Company), strings.ToLower(b.Company))
	default: // score
		switch {
		case a.Score < b.Score:
			cmp = -1
		case a.Score > b.Score:
			cmp = 1
		}
	}

	if pref.SortDirection == Ascending {
		return cmp < 0
	}
	return cmp > 0
}
