package entity

type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
	CurrentPage   int   `json:"current_page"`
	Size          int   `json:"size"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}

// NewPage computes the page metadata for a zero-based page index.
func NewPage[T any](content []T, total int64, page, size int) *Page[T] {
	if content == nil {
		content = []T{}
	}

	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}

	return &Page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		CurrentPage:   page,
		Size:          size,
		First:         page == 0,
		Last:          page >= totalPages-1,
	}
}
