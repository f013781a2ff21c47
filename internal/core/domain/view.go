package domain

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// FilterOption selects which derived statuses a view includes.
type FilterOption string

const (
	FilterAll          FilterOption = "all"
	FilterActive       FilterOption = "active"
	FilterExpired      FilterOption = "expired"
	FilterExpiringSoon FilterOption = "expiring_soon"
)

// SortOption selects the view ordering.
type SortOption string

const (
	SortCustom  SortOption = "custom"
	SortName    SortOption = "name"
	SortDueDate SortOption = "due_date"
	SortStatus  SortOption = "status"
)

// statusPriority orders statuses for SortStatus: clients that need attention
// come first.
var statusPriority = map[ClientStatus]int{
	StatusExpiringSoon: 1,
	StatusExpired:      2,
	StatusActive:       3,
}

// ListQuery carries the view parameters: a status filter, a free-text search
// term, and a sort key. Zero values mean "all", no search, custom order.
type ListQuery struct {
	Filter FilterOption
	Search string
	Sort   SortOption
}

// ApplyView filters, searches, and sorts the derived list. The input slice is
// not modified; the underlying roster order is only ever changed by explicit
// reorder mutations. The sort is stable: ties retain prior relative order.
func ApplyView(clients []ClientWithStatus, q ListQuery) []ClientWithStatus {
	out := make([]ClientWithStatus, 0, len(clients))

	for _, c := range clients {
		if q.Filter != "" && q.Filter != FilterAll && ClientStatus(q.Filter) != c.Status {
			continue
		}
		if q.Search != "" && !matchesSearch(c.Client, q.Search) {
			continue
		}
		out = append(out, c)
	}

	switch q.Sort {
	case SortName:
		col := collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
		sort.SliceStable(out, func(i, j int) bool {
			return col.CompareString(out[i].Name, out[j].Name) < 0
		})
	case SortDueDate:
		// YYYY-MM-DD sorts lexicographically in chronological order.
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].DueDate < out[j].DueDate
		})
	case SortStatus:
		sort.SliceStable(out, func(i, j int) bool {
			return statusPriority[out[i].Status] < statusPriority[out[j].Status]
		})
	default: // SortCustom
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Position < out[j].Position
		})
	}

	return out
}

// matchesSearch reports whether the client matches the search term on name,
// login, or notes (case-insensitive substring), or on phone with all
// non-digit characters stripped from both sides.
func matchesSearch(c Client, term string) bool {
	lowered := strings.ToLower(term)
	if strings.Contains(strings.ToLower(c.Name), lowered) ||
		strings.Contains(strings.ToLower(c.Login), lowered) ||
		(c.Notes != "" && strings.Contains(strings.ToLower(c.Notes), lowered)) {
		return true
	}

	numeric := digitsOnly(term)
	if numeric != "" && c.Phone != "" {
		return strings.Contains(digitsOnly(c.Phone), numeric)
	}
	return false
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
