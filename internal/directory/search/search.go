package search

import (
	"cmp"
	"slices"
	"strings"

	"github.com/gartstein/directory/internal/directory/models"
)

// DefaultPageSize is the page size of the list view.
const DefaultPageSize = 20

// Matches reports whether the normalized query is a substring of the
// employee's first name, last name, full name, phone or email. A blank query
// matches everything.
func Matches(e models.Employee, query string) bool {
	q := Normalize(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return matchNormalized(e, q)
}

func matchNormalized(e models.Employee, q string) bool {
	for _, field := range []string{e.FirstName, e.LastName, e.FullName(), e.Phone, e.Email} {
		if strings.Contains(Normalize(field), q) {
			return true
		}
	}
	return false
}

// Filter returns the employees matching query, preserving order. A blank
// query returns employees unchanged.
func Filter(employees []models.Employee, query string) []models.Employee {
	q := Normalize(strings.TrimSpace(query))
	if q == "" {
		return employees
	}
	out := make([]models.Employee, 0, len(employees))
	for _, e := range employees {
		if matchNormalized(e, q) {
			out = append(out, e)
		}
	}
	return out
}

// SortField names a sortable column.
type SortField string

const (
	SortByID               SortField = "id"
	SortByFirstName        SortField = "first_name"
	SortByLastName         SortField = "last_name"
	SortByEmail            SortField = "email"
	SortByDepartment       SortField = "department"
	SortByPosition         SortField = "position"
	SortByDateOfEmployment SortField = "date_of_employment"
)

// Order is a sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ParseSortField maps a request value to a SortField. Unknown values
// fall back to SortByID.
func ParseSortField(s string) SortField {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case SortByFirstName, SortByLastName, SortByEmail, SortByDepartment, SortByPosition, SortByDateOfEmployment:
		return f
	default:
		return SortByID
	}
}

// ParseOrder maps a request value to an Order, defaulting to Asc.
func ParseOrder(s string) Order {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// Sort orders employees in place by field. Ties keep their original order;
// string columns compare normalized text.
func Sort(employees []models.Employee, field SortField, order Order) {
	compare := comparator(field)
	slices.SortStableFunc(employees, func(a, b models.Employee) int {
		c := compare(a, b)
		if order == Desc {
			return -c
		}
		return c
	})
}

func comparator(field SortField) func(a, b models.Employee) int {
	byText := func(get func(models.Employee) string) func(a, b models.Employee) int {
		return func(a, b models.Employee) int {
			return cmp.Compare(Normalize(get(a)), Normalize(get(b)))
		}
	}
	switch field {
	case SortByFirstName:
		return byText(func(e models.Employee) string { return e.FirstName })
	case SortByLastName:
		return byText(func(e models.Employee) string { return e.LastName })
	case SortByEmail:
		return byText(func(e models.Employee) string { return e.Email })
	case SortByDepartment:
		return byText(func(e models.Employee) string { return e.Department })
	case SortByPosition:
		return byText(func(e models.Employee) string { return e.Position })
	case SortByDateOfEmployment:
		return func(a, b models.Employee) int { return a.DateOfEmployment.Compare(b.DateOfEmployment) }
	default:
		return func(a, b models.Employee) int { return cmp.Compare(a.ID, b.ID) }
	}
}
