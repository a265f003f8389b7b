package domain

import (
	"context"
	"time"
)

// StoreFetcher fetches raw listings from one retailer. The per-store timeout
// rides the context; implementations must honor cancellation.
type StoreFetcher interface {
	Name() string
	Fetch(ctx context.Context, query string) ([]RawListing, error)
}

// ListingCache caches fetch results keyed by store and query
type ListingCache interface {
	Get(ctx context.Context, key string) ([]RawListing, error)
	Set(ctx context.Context, key string, listings []RawListing, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// VocabEntry is one weighted vocabulary token
type VocabEntry struct {
	Token  string
	Weight float64
}

// Lexicon is the correction vocabulary: a fixed table of domain tokens
// (brands, model lines, categories) with frequency weights. Loaded once at
// startup, immutable thereafter, safe for concurrent reads.
type Lexicon interface {
	Contains(token string) bool
	Entries() []VocabEntry
}
