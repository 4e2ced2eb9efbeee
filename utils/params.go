package utils

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// MaxLimit caps the page size a caller can ask the backend for.
const MaxLimit = 100

type QueryOptions struct {
	Page    int
	Limit   int
	Search  string
	Filters url.Values
}

// ParseQueryOptions reads page, limit and search; every other non-empty
// parameter listed in filters is kept as a filter.
func ParseQueryOptions(r *http.Request, filters ...string) QueryOptions {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 10
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	opts := QueryOptions{
		Page:    page,
		Limit:   limit,
		Search:  q.Get("search"),
		Filters: url.Values{},
	}
	for _, f := range filters {
		if v := strings.TrimSpace(q.Get(f)); v != "" {
			opts.Filters.Set(f, v)
		}
	}
	return opts
}

// ParseBool is true only for "true" and "1".
func ParseBool(s string) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	return s == "true" || s == "1"
}

func ContainsIgnoreCase(str, substr string) bool {
	return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
}
