// Package listutil pages result lists for API responses.
package listutil

import (
	"net/url"
	"strconv"
)

// DefaultPerPage is used when page is given without per_page.
const DefaultPerPage = 20

// MaxPerPage caps per_page.
const MaxPerPage = 200

// PageParams carries pagination parameters parsed from a request.
type PageParams struct {
	Page    int // 1-indexed
	PerPage int
}

// PageInfo carries pagination metadata.
type PageInfo struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// ParsePageParams extracts page and per_page from URL query values.
// It reports false when neither is present, meaning the caller wants the whole list.
// POST: Page >= 1; 1 <= PerPage <= MaxPerPage
func ParsePageParams(q url.Values) (PageParams, bool) {
	if !q.Has("page") && !q.Has("per_page") {
		return PageParams{}, false
	}
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(q.Get("per_page"))
	if err != nil || perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return PageParams{Page: page, PerPage: perPage}, true
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0
// POST: Page is clamped to [1, TotalPages]; TotalPages >= 1
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return PageInfo{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Offset returns the index of the first item on the page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Paginate returns the requested page of items with its metadata.
// An out-of-range page yields the last page.
func Paginate[T any](items []T, params PageParams) ([]T, PageInfo) {
	info := NewPageInfo(params.Page, params.PerPage, len(items))
	start := info.Offset()
	end := min(start+info.PerPage, len(items))
	if start >= end {
		return items[:0], info
	}
	return items[start:end], info
}
