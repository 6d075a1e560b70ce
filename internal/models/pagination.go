package models

// Pagination describes the page of a collection returned in a response envelope.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"totalCount"`
}

// Paginate returns the requested page of items. A non-positive size selects every item.
func Paginate[T any](items []T, page, size int) ([]T, *Pagination) {
	total := len(items)
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		return items, &Pagination{Page: 1, PageSize: total, TotalCount: total}
	}

	start := (page - 1) * size
	if start >= total {
		return []T{}, &Pagination{Page: page, PageSize: size, TotalCount: total}
	}
	end := start + size
	if end > total {
		end = total
	}
	return items[start:end], &Pagination{Page: page, PageSize: size, TotalCount: total}
}
