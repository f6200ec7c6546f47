package types

// Page describes one zero-based page of a larger result set.
type Page struct {
	Page          int
	Size          int
	TotalPages    int
	TotalElements int64
}

// NewPage computes the page count for total elements split into pages of size.
func NewPage(page, size int, total int64) Page {
	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	return Page{
		Page:          page,
		Size:          size,
		TotalPages:    totalPages,
		TotalElements: total,
	}
}

// Offset is the number of rows to skip to reach this page.
func (p Page) Offset() int {
	return p.Page * p.Size
}
