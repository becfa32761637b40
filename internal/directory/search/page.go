package search

import "github.com/gartstein/directory/internal/directory/models"

// Page is one page of a filtered result.
type Page struct {
	Items []models.Employee
	// Number is the 1-based page actually served after clamping.
	Number     int
	Size       int
	Total      int
	TotalPages int
}

// TotalPages returns ceil(total/size), never less than 1.
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// ClampPage limits page to [1, TotalPages(total, size)].
func ClampPage(page, total, size int) int {
	return min(max(page, 1), TotalPages(total, size))
}

// Paginate cuts items into pages of size and returns the requested one,
// clamping out-of-range page numbers. A non-positive size uses
// DefaultPageSize.
func Paginate(items []models.Employee, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(items)
	number := ClampPage(page, total, size)
	start := min((number-1)*size, total)
	end := min(start+size, total)
	return Page{
		Items:      items[start:end],
		Number:     number,
		Size:       size,
		Total:      total,
		TotalPages: TotalPages(total, size),
	}
}
