// Package cache provides the process-wide memoization layer used to avoid
// repeat external calls for identical requests.
package cache

import (
	"context"
	"sort"
	"strconv"
	"strings"
)

// Cache maps a canonical request key to a previously computed result.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the cached value for key, or false if absent.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key unconditionally, overwriting any prior entry.
	Set(ctx context.Context, key string, value []byte)

	// Clear removes all entries.
	Clear(ctx context.Context)
}

// Key is a structured cache key built from the normalized request fields.
// Field order is fixed by String, so two requests with the same content
// always produce the same key regardless of how they were assembled.
type Key struct {
	Kind        string // "flights", "hotels", "voice", "image", "combined"
	Origin      string
	Destination string
	StartDate   string
	EndDate     string
	Adults      int
	Children    int
	Rooms       int
	Currency    string
	Providers   []string
	Extra       string // modality input fingerprint, if any
}

// String serializes the key deterministically. The provider set is sorted,
// so entries are specific to which providers were queried but not to the
// order they were listed in.
func (k Key) String() string {
	providers := make([]string, len(k.Providers))
	copy(providers, k.Providers)
	sort.Strings(providers)

	parts := []string{
		k.Kind,
		strings.ToUpper(strings.TrimSpace(k.Origin)),
		strings.ToUpper(strings.TrimSpace(k.Destination)),
		k.StartDate,
		k.EndDate,
		strconv.Itoa(k.Adults),
		strconv.Itoa(k.Children),
		strconv.Itoa(k.Rooms),
		strings.ToUpper(k.Currency),
		strings.Join(providers, ","),
	}
	if k.Extra != "" {
		parts = append(parts, k.Extra)
	}
	return strings.Join(parts, "|")
}
