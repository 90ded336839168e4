package listquery

import "math"

const (
	// DefaultPageSize replaces non-positive page sizes.
	DefaultPageSize = 10
	// MaxWindow is the largest number of page buttons a pager shows.
	MaxWindow = 5
)

// Meta carries everything a pager needs besides the rows themselves.
type Meta struct {
	CurrentPage int   `json:"page"`
	PageSize    int   `json:"page_size"`
	TotalCount  int   `json:"total"`
	TotalPages  int   `json:"total_pages"`
	StartIndex  int   `json:"start_index"`
	EndIndex    int   `json:"end_index"`
	ShowAll     bool  `json:"show_all"`
	Window      []int `json:"window"`
}

// Page is one slice of a collection plus its pager metadata.
type Page[T any] struct {
	Items []T `json:"items"`
	Meta
}

// TotalPages is ceil(total/pageSize) with a floor of one page.
func TotalPages(total, pageSize int) int {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// ClampPage moves page into [1, totalPages].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Paginate returns the requested page of records.
//
// A page past the last one is not corrected: the result has no items and its
// indices point at the requested position. Callers that want a valid page
// must clamp first (see ClampPage and Schema.Run). Pages below 1 and page
// sizes below 1 are normalised to 1 and DefaultPageSize.
func Paginate[T any](records []T, page, pageSize int, showAll bool) Page[T] {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}

	total := len(records)
	totalPages := TotalPages(total, pageSize)
	meta := Meta{
		CurrentPage: page,
		PageSize:    pageSize,
		TotalCount:  total,
		TotalPages:  totalPages,
		ShowAll:     showAll,
		Window:      []int{},
	}

	if showAll {
		meta.StartIndex = 0
		meta.EndIndex = total
		return Page[T]{Items: clone(records, 0, total), Meta: meta}
	}

	meta.Window = PageWindow(totalPages, page)

	// Saturate instead of wrapping for pages far past the end.
	start := math.MaxInt
	if page-1 <= math.MaxInt/pageSize {
		start = (page - 1) * pageSize
	}
	if start >= total {
		meta.StartIndex = start
		meta.EndIndex = start
		return Page[T]{Items: []T{}, Meta: meta}
	}

	end := min(start+pageSize, total)
	meta.StartIndex = start
	meta.EndIndex = end
	return Page[T]{Items: clone(records, start, end), Meta: meta}
}

// PageWindow returns the page numbers for a compact pager of at most
// MaxWindow buttons centred on currentPage where possible.
func PageWindow(totalPages, currentPage int) []int {
	if totalPages < 1 {
		totalPages = 1
	}
	out := make([]int, min(MaxWindow, totalPages))
	for i := range out {
		switch {
		case totalPages <= MaxWindow:
			out[i] = i + 1
		case currentPage <= 3:
			out[i] = i + 1
		case currentPage >= totalPages-2:
			out[i] = totalPages - 4 + i
		default:
			out[i] = currentPage - 2 + i
		}
	}
	return out
}

func clone[T any](records []T, start, end int) []T {
	out := make([]T, end-start)
	copy(out, records[start:end])
	return out
}
