package utils

import (
	"net/http"
	"strconv"
)

// maxPage keeps (page-1)*limit far from overflowing the skip.
const maxPage = 100000

type QueryOptions struct {
	Page  int
	Limit int
}

// ParseQueryOptions reads page/limit; limit 0 means "no limit".
func ParseQueryOptions(r *http.Request) QueryOptions {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 0 {
		limit = 0
	}
	if limit > 100 {
		limit = 100
	}

	return QueryOptions{Page: page, Limit: limit}
}

// Skip is the number of documents preceding the requested page.
func (o QueryOptions) Skip() int64 {
	if o.Limit == 0 {
		return 0
	}
	return int64((o.Page - 1) * o.Limit)
}
