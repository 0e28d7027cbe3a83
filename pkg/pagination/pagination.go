// Package pagination reads page-based listing parameters and shapes paged
// responses for the admin listings.
package pagination

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params holds the listing parameters of a request. Page is 1-based.
type Params struct {
	Page   int
	Limit  int
	Sort   string
	Order  string
	Search string
}

// FromContext extracts listing parameters from the echo context.
func FromContext(c echo.Context) Params {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page <= 0 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	order := strings.ToLower(c.QueryParam("order"))
	if order != "asc" && order != "desc" {
		order = ""
	}

	return Params{
		Page:   page,
		Limit:  limit,
		Sort:   strings.TrimSpace(c.QueryParam("sort")),
		Order:  order,
		Search: strings.TrimSpace(c.QueryParam("search")),
	}
}

// Offset is the number of items before the current page.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// HasNext returns true if there are more results after the current page.
func (p Params) HasNext(total int) bool {
	return p.Offset()+p.Limit < total
}

// HasPrevious returns true if there are results before the current page.
func (p Params) HasPrevious() bool {
	return p.Page > 1
}

// Response wraps a paginated API response.
type Response struct {
	Data       interface{} `json:"data"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
	HasMore    bool        `json:"has_more"`
}

func NewResponse(data interface{}, total, page, limit int) *Response {
	if page <= 0 {
		page = 1
	}
	return &Response{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: TotalPages(total, limit),
		HasMore:    Params{Page: page, Limit: limit}.HasNext(total),
	}
}

// TotalPages is the number of pages of size limit needed for total items.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Slice returns the page of items described by p.
func Slice[T any](items []T, p Params) []T {
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Limit
	if p.Limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
