package domain

// PaginationParams carries page-based pagination through service and
// repository calls. Page is 1-based.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset returns the row offset for the current page.
func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}
