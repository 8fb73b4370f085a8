package domain

// PageRequest is a 1-based page selection
type PageRequest struct {
	Page     int
	PageSize int
}

// Offset returns the number of rows to skip
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Page is one page of a larger result set
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Number   int `json:"number"`
	PageSize int `json:"page_size"`
}

// Pages returns the page count. An empty result still has one page.
func (p Page[T]) Pages() int {
	if p.Total == 0 || p.PageSize <= 0 {
		return 1
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

func (p Page[T]) HasNext() bool {
	return p.Number < p.Pages()
}

func (p Page[T]) HasPrevious() bool {
	return p.Number > 1
}
