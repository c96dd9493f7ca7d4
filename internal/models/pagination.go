package models

import "math"

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type Page struct {
	Number int
	Limit  int
}

// NewPage normalises caller supplied paging values.
func NewPage(number, limit int) Page {
	if number < 1 {
		number = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	// keeps Offset within int
	if number > math.MaxInt/limit {
		number = math.MaxInt / limit
	}
	return Page{Number: number, Limit: limit}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalPosts  int  `json:"totalPosts"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

func NewPagination(page Page, total int) Pagination {
	pages := totalPages(total, page.Limit)
	return Pagination{
		CurrentPage: page.Number,
		TotalPages:  pages,
		TotalPosts:  total,
		HasNextPage: page.Number < pages,
		HasPrevPage: page.Number > 1,
	}
}

type UserPagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalUsers  int  `json:"totalUsers"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

func NewUserPagination(page Page, total int) UserPagination {
	pages := totalPages(total, page.Limit)
	return UserPagination{
		CurrentPage: page.Number,
		TotalPages:  pages,
		TotalUsers:  total,
		HasNextPage: page.Number < pages,
		HasPrevPage: page.Number > 1,
	}
}

func totalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// PostFilter narrows a post listing. Empty fields are ignored.
type PostFilter struct {
	Category string
	AuthorID string
	Search   string
	// LikedBy restricts results to posts liked by this user id.
	LikedBy string
	// IncludeAllStatuses drops the published-only predicate.
	IncludeAllStatuses bool
	// ViewerID, when set, annotates each post with IsLiked.
	ViewerID string
}
