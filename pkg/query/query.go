// Package query holds the pagination, sort, search, and filter state that
// drives a list screen, and stamps every fetch with a sequence number so
// out-of-order responses can be discarded instead of clobbering the view.
package query

import (
	"net/url"
	"sort"
	"strconv"
)

// Sort directions as the backend spells them in the `order` param.
const (
	Asc  = "asc"
	Desc = "desc"
)

// Query is the state of one list view. Every mutating handler bumps the
// sequence number; a fetch issued before the mutation then fails the
// Latest check when its response lands, and the screen drops it.
type Query struct {
	page     int
	pageSize int
	sortBy   string
	sortDir  string
	search   string
	filters  map[string]string
	seq      uint64
}

// New returns a query on page 1 sorted ascending by sortBy.
func New(pageSize int, sortBy string) Query {
	if pageSize <= 0 {
		pageSize = 20
	}
	return Query{
		page:     1,
		pageSize: pageSize,
		sortBy:   sortBy,
		sortDir:  Asc,
		filters:  map[string]string{},
	}
}

// Page returns the current 1-based page index.
func (q *Query) Page() int { return q.page }

// PageSize returns the page size.
func (q *Query) PageSize() int { return q.pageSize }

// SortBy returns the active sort column.
func (q *Query) SortBy() string { return q.sortBy }

// SortDir returns "asc" or "desc".
func (q *Query) SortDir() string { return q.sortDir }

// Search returns the active search text.
func (q *Query) Search() string { return q.search }

// Filter returns the value set for key, or "".
func (q *Query) Filter(key string) string { return q.filters[key] }

// SetSearch replaces the search text and resets to page 1.
func (q *Query) SetSearch(text string) {
	q.search = text
	q.page = 1
	q.seq++
}

// ToggleSort sorts by column ascending, or flips the direction when the
// column is already active.
func (q *Query) ToggleSort(column string) {
	if q.sortBy == column {
		if q.sortDir == Asc {
			q.sortDir = Desc
		} else {
			q.sortDir = Asc
		}
	} else {
		q.sortBy = column
		q.sortDir = Asc
	}
	q.page = 1
	q.seq++
}

// SetPage moves to a 1-based page index. Values below 1 clamp to 1.
func (q *Query) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	q.page = page
	q.seq++
}

// SetPageSize changes the page size and resets to page 1.
func (q *Query) SetPageSize(size int) {
	if size < 1 {
		return
	}
	q.pageSize = size
	q.page = 1
	q.seq++
}

// SetFilter sets a filter value and resets to page 1. An empty value
// removes the filter.
func (q *Query) SetFilter(key, value string) {
	if value == "" {
		delete(q.filters, key)
	} else {
		q.filters[key] = value
	}
	q.page = 1
	q.seq++
}

// Seq returns the sequence number identifying the current state. Screens
// capture it when issuing a fetch.
func (q *Query) Seq() uint64 { return q.seq }

// Latest reports whether a response stamped with seq still reflects the
// current state. Stale responses must be dropped, not rendered.
func (q *Query) Latest(seq uint64) bool { return seq == q.seq }

// Values renders the query as backend request parameters.
func (q *Query) Values() url.Values {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.page))
	params.Set("per_page", strconv.Itoa(q.pageSize))
	if q.search != "" {
		params.Set("search", q.search)
	}
	if q.sortBy != "" {
		params.Set("sort", q.sortBy)
		params.Set("order", q.sortDir)
	}
	for k, v := range q.filters {
		params.Set(k, v)
	}
	return params
}

// Apply runs the client-side path: filter items by the search text, sort
// by the active column, and slice out the current page. Screens that fetch
// whole collections use this instead of Values. The second return is the
// filtered total, which is what pager bounds and the page indicator must
// count — the full collection over-counts whenever a search is active.
//
// match reports whether an item matches a search term; less orders two
// items under the given column, ascending.
func Apply[T any](q *Query, items []T, match func(T, string) bool, less func(a, b T, column string) bool) ([]T, int) {
	filtered := items
	if q.search != "" {
		filtered = make([]T, 0, len(items))
		for _, it := range items {
			if match(it, q.search) {
				filtered = append(filtered, it)
			}
		}
	} else {
		filtered = append([]T(nil), items...)
	}

	if q.sortBy != "" && less != nil {
		col := q.sortBy
		sort.SliceStable(filtered, func(i, j int) bool {
			if q.sortDir == Desc {
				return less(filtered[j], filtered[i], col)
			}
			return less(filtered[i], filtered[j], col)
		})
	}

	total := len(filtered)
	start := (q.page - 1) * q.pageSize
	if start >= total {
		return nil, total
	}
	end := start + q.pageSize
	if end > total {
		end = total
	}
	return filtered[start:end], total
}

// TotalPages returns the page count for total items under q's page size.
func (q *Query) TotalPages(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + q.pageSize - 1) / q.pageSize
}
