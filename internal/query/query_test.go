package query

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdesk/complaint-service/internal/domain"
)

func strPtr(v string) *string { return &v }

func fixture(n int) []domain.Complaint {
	items := make([]domain.Complaint, 0, n)
	for i := n; i >= 1; i-- {
		items = append(items, domain.Complaint{
			ID:        fmt.Sprintf("CMP-2024-%05d", i),
			Title:     fmt.Sprintf("Issue %d", i),
			Status:    domain.StatusNew,
			Sentiment: domain.SentimentNeutral,
		})
	}
	return items
}

func TestApplyWithoutFilterReturnsFirstPage(t *testing.T) {
	items := fixture(25)
	page, total := Apply(items, Filter{}, Page{Number: 1, Size: 10})
	require.Len(t, page, 10)
	assert.Equal(t, 25, total)
	assert.Equal(t, items[:10], page)
}

func TestApplyLastPartialPage(t *testing.T) {
	items := fixture(25)
	page, total := Apply(items, Filter{Status: All}, Page{Number: 3, Size: 10})
	assert.Equal(t, 25, total)
	require.Len(t, page, 5)
	assert.Equal(t, "CMP-2024-00005", page[0].ID)
}

func TestApplyPastTheEnd(t *testing.T) {
	page, total := Apply(fixture(5), Filter{}, Page{Number: 4, Size: 10})
	assert.Empty(t, page)
	assert.Equal(t, 5, total)
}

func TestPageNormalize(t *testing.T) {
	p := Page{Number: 0, Size: 0}.Normalize()
	assert.Equal(t, Page{Number: 1, Size: DefaultPageSize}, p)
	assert.Equal(t, 20, Page{Number: 3, Size: 10}.Offset())
}

func TestPageSizeIsCapped(t *testing.T) {
	p := Page{Number: 1, Size: 10_000}.Normalize()
	assert.Equal(t, MaxPageSize, p.Size)
}

func TestFarPagesAreEmptyInsteadOfOverflowing(t *testing.T) {
	items := fixture(5)
	assert.Equal(t, math.MaxInt, Page{Number: math.MaxInt, Size: MaxPageSize}.Offset())

	page, total := Apply(items, Filter{}, Page{Number: 4611686018427387905, Size: 2})
	assert.Equal(t, 5, total)
	assert.Empty(t, page)

	page, _ = Apply(items, Filter{}, Page{Number: math.MaxInt, Size: math.MaxInt})
	assert.Empty(t, page)
}

func TestStatusAndSearchConjunction(t *testing.T) {
	items := fixture(300)
	for i := range items {
		if items[i].ID == "CMP-2024-00204" {
			items[i].Status = domain.StatusResolved
		}
	}
	page, total := Apply(items, Filter{Status: "RESOLVED", SearchTerm: "204"}, Page{Number: 1, Size: 10})
	require.Equal(t, 1, total)
	assert.Equal(t, "CMP-2024-00204", page[0].ID)
}

func TestSearchIsCaseInsensitiveSubstringOnIDOrTitle(t *testing.T) {
	c := domain.Complaint{ID: "CMP-2024-00042", Title: "Broken Fan in Hostel", Description: "wifi"}
	assert.True(t, Filter{SearchTerm: "fan in"}.Matches(&c))
	assert.True(t, Filter{SearchTerm: "cmp-2024-0004"}.Matches(&c))
	assert.True(t, Filter{SearchTerm: "  HOSTEL "}.Matches(&c))
	assert.False(t, Filter{SearchTerm: "wifi"}.Matches(&c))
}

func TestSentimentAndAssigneeFilters(t *testing.T) {
	assigned := domain.Complaint{ID: "a", Sentiment: domain.SentimentAngry, AssignedTo: strPtr("10")}
	unassigned := domain.Complaint{ID: "b", Sentiment: domain.SentimentAngry}

	f := Filter{Sentiment: "ANGRY", Assignee: "10"}
	assert.True(t, f.Matches(&assigned))
	assert.False(t, f.Matches(&unassigned))
	assert.True(t, Filter{Assignee: All}.Matches(&unassigned))
	assert.False(t, Filter{Sentiment: "NEUTRAL"}.Matches(&assigned))
}

func TestCustomerFilter(t *testing.T) {
	c := domain.Complaint{CustomerID: "3"}
	assert.True(t, Filter{CustomerID: "3"}.Matches(&c))
	assert.False(t, Filter{CustomerID: "4"}.Matches(&c))
}

func TestApplyPreservesOrder(t *testing.T) {
	items := fixture(12)
	items[3].Status = domain.StatusClosed
	items[7].Status = domain.StatusClosed
	page, total := Apply(items, Filter{Status: "CLOSED"}, Page{})
	require.Equal(t, 2, total)
	assert.Equal(t, items[3].ID, page[0].ID)
	assert.Equal(t, items[7].ID, page[1].ID)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 3, TotalPages(21, 10))
	assert.Equal(t, 2, TotalPages(11, 0))
}

func TestViewResetsPageWhenFilterChanges(t *testing.T) {
	items := fixture(30)
	view := NewView(Filter{}, 10)
	view.SetPage(3)
	page, _ := view.Render(items)
	require.Len(t, page, 10)
	assert.Equal(t, "CMP-2024-00010", page[0].ID)

	view.SetFilter(Filter{})
	assert.Equal(t, 3, view.Page().Number)

	view.SetFilter(Filter{SearchTerm: "Issue 1"})
	assert.Equal(t, 1, view.Page().Number)
	page, total := view.Render(items)
	assert.Equal(t, 11, total)
	assert.Len(t, page, 10)
}

func TestViewResetsPageWhenSizeChanges(t *testing.T) {
	view := NewView(Filter{}, 10)
	view.SetPage(2)
	view.SetSize(10)
	assert.Equal(t, 2, view.Page().Number)
	view.SetSize(5)
	assert.Equal(t, Page{Number: 1, Size: 5}, view.Page())
}
