package board

import (
	"strings"

	"golang.org/x/text/cases"
)

// FilterListings keeps listings whose company or position contains the query
// as a case-insensitive substring. The same logic backs the ?q= parameter and
// the client's in-memory filter of the full listing cache. An empty query
// returns the input unchanged.
func FilterListings(listings []Listing, query string) []Listing {
	if query == "" {
		return listings
	}

	// Casers carry state, so build one per call.
	searchFolder := cases.Fold()
	folded := searchFolder.String(query)
	matched := make([]Listing, 0, len(listings))
	for _, l := range listings {
		if strings.Contains(searchFolder.String(l.Company), folded) ||
			strings.Contains(searchFolder.String(l.Position), folded) {
			matched = append(matched, l)
		}
	}
	return matched
}
