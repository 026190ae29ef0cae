// Package search filters the paper search index by free-text query.
//
// Matching is a case-insensitive substring test against the title. Results keep
// the order of the search index and are never re-ranked.
package search

import (
	"strings"

	"github.com/matsen/citegraph/internal/paper"
)

// DefaultLimit is the maximum number of results returned by Filter.
const DefaultLimit = 10

// PopularTitleMaxLen is the display length of titles in the popular papers list.
const PopularTitleMaxLen = 80

// Filter returns the entries whose title contains term, ignoring case, in index order.
// A term that is empty after trimming yields no results. A limit <= 0 means DefaultLimit.
func Filter(term string, limit int, entries []paper.SearchEntry) []paper.SearchEntry {
	if strings.TrimSpace(term) == "" {
		return []paper.SearchEntry{}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	needle := strings.ToLower(term)
	results := make([]paper.SearchEntry, 0, min(limit, len(entries)))
	for _, e := range entries {
		if e.Title == "" {
			continue
		}
		if strings.Contains(strings.ToLower(e.Title), needle) {
			results = append(results, e)
			if len(results) == limit {
				break
			}
		}
	}
	return results
}

// Popular returns the first n entries of the index, which back the popular papers shortcut list.
func Popular(entries []paper.SearchEntry, n int) []paper.SearchEntry {
	if n <= 0 {
		n = DefaultLimit
	}
	if n > len(entries) {
		n = len(entries)
	}
	out := make([]paper.SearchEntry, n)
	copy(out, entries[:n])
	return out
}

// ShortTitle truncates a title to maxLen runes for list display.
func ShortTitle(title string, maxLen int) string {
	runes := []rune(title)
	if len(runes) <= maxLen {
		return title
	}
	return string(runes[:maxLen])
}
