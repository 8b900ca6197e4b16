package pagination

import (
	"net/url"
	"strings"
)

// BuildLinkHeader returns an RFC 8288 Link header value with next and prev
// relations. Existing query parameters are kept; cursor is replaced.
func BuildLinkHeader(basePath string, query url.Values, next, prev string) string {
	var links []string
	if next != "" {
		links = append(links, link(basePath, query, next, "next"))
	}
	if prev != "" {
		links = append(links, link(basePath, query, prev, "prev"))
	}
	return strings.Join(links, ", ")
}

func link(basePath string, query url.Values, cursor, rel string) string {
	q := url.Values{}
	for k, v := range query {
		q[k] = append([]string(nil), v...)
	}
	q.Set("cursor", cursor)
	return "<" + basePath + "?" + q.Encode() + `>; rel="` + rel + `"`
}
