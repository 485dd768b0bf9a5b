// Package query filters and paginates complaint lists.
package query

import (
	"math"
	"strings"

	"github.com/campusdesk/complaint-service/internal/domain"
)

// All is the sentinel meaning "match any" for a filter field.
const All = "ALL"

// DefaultPageSize is used when a page size is not given.
const DefaultPageSize = 10

// MaxPageSize bounds a single page.
const MaxPageSize = 100

// Filter captures list predicates. Empty fields and All match anything.
type Filter struct {
	Status     string
	Sentiment  string
	Assignee   string
	CustomerID string
	SearchTerm string
}

// Page is a 1-indexed page request.
type Page struct {
	Number int
	Size   int
}

// Normalize clamps the page to valid values.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset returns the index of the first item on the page. It saturates at
// math.MaxInt instead of overflowing, so far pages are simply empty.
func (p Page) Offset() int {
	p = p.Normalize()
	if p.Number-1 > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Size
}

// Matches reports whether c satisfies every predicate of f.
func (f Filter) Matches(c *domain.Complaint) bool {
	if !matchField(f.Status, string(c.Status)) {
		return false
	}
	if !matchField(f.Sentiment, string(c.Sentiment)) {
		return false
	}
	if IsActive(f.Assignee) && (c.AssignedTo == nil || *c.AssignedTo != f.Assignee) {
		return false
	}
	if IsActive(f.CustomerID) && c.CustomerID != f.CustomerID {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(f.SearchTerm)); term != "" {
		if !strings.Contains(strings.ToLower(c.ID), term) && !strings.Contains(strings.ToLower(c.Title), term) {
			return false
		}
	}
	return true
}

// Apply filters items in order and returns the requested page with the total
// number of matches.
func Apply(items []domain.Complaint, f Filter, p Page) ([]domain.Complaint, int) {
	p = p.Normalize()
	matched := make([]domain.Complaint, 0, len(items))
	for i := range items {
		if f.Matches(&items[i]) {
			matched = append(matched, items[i])
		}
	}
	return Slice(matched, p), len(matched)
}

// Slice returns the window of items covered by p.
func Slice(items []domain.Complaint, p Page) []domain.Complaint {
	p = p.Normalize()
	start := p.Offset()
	if start >= len(items) {
		return []domain.Complaint{}
	}
	end := len(items)
	if end-start > p.Size {
		end = start + p.Size
	}
	return items[start:end]
}

// TotalPages returns how many pages total matches span.
func TotalPages(total, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// IsActive reports whether a filter value constrains results.
func IsActive(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, All)
}

func matchField(want, got string) bool {
	if !IsActive(want) {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(want), got)
}

// View is a filter plus the page currently shown for it. Changing the filter
// or the page size always returns to the first page.
type View struct {
	filter Filter
	page   Page
}

// NewView starts a view on page 1.
func NewView(f Filter, size int) *View {
	return &View{filter: f, page: Page{Number: 1, Size: size}.Normalize()}
}

// Filter returns the active filter.
func (v *View) Filter() Filter { return v.filter }

// Page returns the active page.
func (v *View) Page() Page { return v.page }

// SetFilter replaces the filter; the page resets to 1 when it differs.
func (v *View) SetFilter(f Filter) {
	if f != v.filter {
		v.page.Number = 1
	}
	v.filter = f
}

// SetSize changes the page size; the page resets to 1 when it differs.
func (v *View) SetSize(size int) {
	p := Page{Number: v.page.Number, Size: size}.Normalize()
	if p.Size != v.page.Size {
		p.Number = 1
	}
	v.page = p
}

// SetPage moves to page n.
func (v *View) SetPage(n int) {
	v.page = Page{Number: n, Size: v.page.Size}.Normalize()
}

// Render applies the view to items.
func (v *View) Render(items []domain.Complaint) ([]domain.Complaint, int) {
	return Apply(items, v.filter, v.page)
}
