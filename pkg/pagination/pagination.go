// Package pagination carries the page window shared by the JSON lists, the
// admin changelists and the navigation listboard.
package pagination

import (
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	// DefaultLimit is the changelist and listboard page size.
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params is a limit/offset window over an ordered result set.
type Params struct {
	Limit  int
	Offset int
}

// FromContext reads limit and offset, falling back to the 1-based page
// parameter when no offset is given. Malformed values take their defaults.
func FromContext(c echo.Context) Params {
	var limit, offset, page int
	b := echo.QueryParamsBinder(c)
	if b.Int("limit", &limit).BindError() != nil || limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if b.Int("offset", &offset).BindError() != nil || offset < 0 {
		offset = 0
	}
	if offset == 0 && b.Int("page", &page).BindError() == nil && page > 1 {
		offset = (page - 1) * limit
	}
	return Params{Limit: limit, Offset: offset}
}

// Response is the envelope of the JSON list endpoints.
type Response struct {
	Data    interface{} `json:"data"`
	Total   int         `json:"total"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
	HasMore bool        `json:"has_more"`
}

func NewResponse(data interface{}, total, limit, offset int) *Response {
	p := Params{Limit: limit, Offset: offset}
	return &Response{Data: data, Total: total, Limit: limit, Offset: offset, HasMore: p.hasNext(total)}
}

func (p Params) hasNext(total int) bool { return p.Offset+p.Limit < total }

// Page is the 1-based page holding Offset.
func (p Params) Page() int {
	if p.Limit <= 0 {
		return 1
	}
	return p.Offset/p.Limit + 1
}

// NumPages is never less than one, so an empty listboard still shows
// "page 1 of 1".
func (p Params) NumPages(total int) int {
	if p.Limit <= 0 || total <= 0 {
		return 1
	}
	return (total + p.Limit - 1) / p.Limit
}

// Links are the previous/next page URLs of a listboard.
type Links struct {
	Previous string `json:"previous,omitempty"`
	Next     string `json:"next,omitempty"`
}

// Links keeps every query parameter of the current page except its
// position, which becomes page=N.
func (p Params) Links(basePath string, query url.Values, total int) Links {
	pageURL := func(n int) string {
		q := make(url.Values, len(query)+1)
		for k, v := range query {
			if k != "page" && k != "offset" {
				q[k] = v
			}
		}
		q.Set("page", strconv.Itoa(n))
		return basePath + "?" + q.Encode()
	}

	var l Links
	if p.Offset > 0 {
		l.Previous = pageURL(p.Page() - 1)
	}
	if p.hasNext(total) {
		l.Next = pageURL(p.Page() + 1)
	}
	return l
}
