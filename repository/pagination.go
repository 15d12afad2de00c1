package repository

import "gorm.io/gorm"

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// Page is one page of a listing plus the numbers needed to render a pager.
type Page[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	Page    int   `json:"current_page"`
	PerPage int   `json:"per_page"`
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

func pageCount(total int64, perPage int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// paginate counts q, then fetches the requested page ordered by order.
// q must already carry its Model and filters; scopes only apply to the fetch.
func paginate[T any](q *gorm.DB, order string, page, perPage int, scopes ...func(*gorm.DB) *gorm.DB) (Page[T], error) {
	page, perPage = normalizePage(page, perPage)
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return Page[T]{}, err
	}

	items := make([]T, 0, perPage)
	if total > 0 {
		if err := q.Scopes(scopes...).Order(order).Offset((page - 1) * perPage).Limit(perPage).Find(&items).Error; err != nil {
			return Page[T]{}, err
		}
	}

	return Page[T]{
		Items:   items,
		Total:   total,
		Pages:   pageCount(total, perPage),
		Page:    page,
		PerPage: perPage,
	}, nil
}
