// Package pagination provides cursor-based paging over ordered listings
// with RFC 8288 Link headers.
package pagination

import (
	"net/url"
	"strconv"
)

const (
	// DefaultLimit is the page size when none is requested.
	DefaultLimit = 20
	// MaxLimit is the largest page size a client may request.
	MaxLimit = 100
)

// Params are the paging query parameters shared by list endpoints.
type Params struct {
	Cursor string `query:"cursor"`
	Limit  int    `query:"limit"  validate:"omitempty,min=1,max=100"`
}

// PageSize returns the requested limit clamped to 1..MaxLimit, or
// DefaultLimit when none was given.
func (p Params) PageSize() int {
	if p.Limit <= 0 {
		return DefaultLimit
	}
	return min(p.Limit, MaxLimit)
}

// LinkQuery returns the query parameters to carry into Link header URLs,
// which is the page size unless it is the default.
func (p Params) LinkQuery() url.Values {
	q := url.Values{}
	if size := p.PageSize(); size != DefaultLimit {
		q.Set("limit", strconv.Itoa(size))
	}
	return q
}
