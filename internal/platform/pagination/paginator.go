package pagination

import (
	"cmp"
	"net/url"
	"slices"
)

// Page is one window of a listing.
type Page[T any] struct {
	Items      []T
	Total      int
	NextCursor string
	PrevCursor string
	LinkHeader string
}

// Paginate slices an ordered listing after the item the cursor points at.
// A cursor of another type, or one whose item is gone, starts over from the
// first page. key returns the stable key written into cursors.
func Paginate[T any](items []T, cursor Cursor, limit int, typ string, key func(T) string, basePath string, query url.Values) Page[T] {
	if limit <= 0 {
		limit = DefaultLimit
	}

	start := 0
	if cursor.Type == typ && cursor.Value != "" {
		for i, item := range items {
			if key(item) == cursor.Value {
				start = i + 1
				break
			}
		}
	}
	end := min(start+limit, len(items))

	page := Page[T]{Items: items[start:end], Total: len(items)}
	if end < len(items) {
		page.NextCursor = Cursor{Type: typ, Value: key(items[end-1])}.Encode()
	}
	if start > 0 {
		prev := Cursor{Type: typ}
		if prevStart := max(start-limit, 0); prevStart > 0 {
			prev.Value = key(items[prevStart-1])
		}
		page.PrevCursor = prev.Encode()
	}
	page.LinkHeader = BuildLinkHeader(basePath, query, page.NextCursor, page.PrevCursor)
	return page
}

// Resume moves a cursor whose item has disappeared onto the closest earlier
// item, so a client paging through a changing listing carries on instead of
// restarting. items must be sorted ascending by key.
func Resume[T any](items []T, cursor Cursor, key func(T) string) Cursor {
	if cursor.Value == "" {
		return cursor
	}
	i, found := slices.BinarySearchFunc(items, cursor.Value, func(item T, v string) int {
		return cmp.Compare(key(item), v)
	})
	switch {
	case found:
		return cursor
	case i == 0:
		return Cursor{Type: cursor.Type}
	}
	return Cursor{Type: cursor.Type, Value: key(items[i-1])}
}
