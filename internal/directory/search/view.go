package search

import "github.com/gartstein/directory/internal/directory/models"

// View is the state of an employee list: query, current page, page size and
// sort order.
type View struct {
	query       string
	currentPage int
	pageSize    int
	sortField   SortField
	order       Order
}

// NewView returns a View on page 1 with an empty query. A non-positive
// pageSize uses DefaultPageSize.
func NewView(pageSize int) *View {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &View{currentPage: 1, pageSize: pageSize, sortField: SortByID, order: Asc}
}

// Query returns the current search query.
func (v *View) Query() string { return v.query }

// CurrentPage returns the requested page number.
func (v *View) CurrentPage() int { return v.currentPage }

// PageSize returns the page size.
func (v *View) PageSize() int { return v.pageSize }

// SetQuery replaces the query and always resets the current page to 1.
func (v *View) SetQuery(q string) {
	v.query = q
	v.currentPage = 1
}

// ClearSearch empties the query and resets the current page.
func (v *View) ClearSearch() {
	v.SetQuery("")
}

// SetPage records the requested page. Apply clamps it to the result.
func (v *View) SetPage(page int) {
	v.currentPage = page
}

// SetSort changes the sort column and direction.
func (v *View) SetSort(field SortField, order Order) {
	v.sortField = field
	v.order = order
}

// Apply filters, sorts and paginates employees. The served page number is
// written back so the view stays within range.
func (v *View) Apply(employees []models.Employee) Page {
	filtered := Filter(employees, v.query)
	sorted := make([]models.Employee, len(filtered))
	copy(sorted, filtered)
	Sort(sorted, v.sortField, v.order)

	page := Paginate(sorted, v.currentPage, v.pageSize)
	v.currentPage = page.Number
	return page
}
