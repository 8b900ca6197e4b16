package artifact

import "strings"

// PublicURL joins baseURL and slug with exactly one slash.
func PublicURL(baseURL, slug string) string {
	return strings.TrimRight(baseURL, "/") + "/" + slug
}

// EnsureHTTP prefixes https:// to a link that has no http(s) scheme.
// Empty input stays empty.
func EnsureHTTP(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	lower := strings.ToLower(link)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return link
	}
	return "https://" + strings.TrimPrefix(link, "//")
}
