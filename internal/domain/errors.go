package domain

import "errors"

var (
	// ErrMalformedListing is returned when a raw listing has a missing,
	// non-numeric, negative or zero price, or a blank title. Such listings
	// are dropped and counted, never surfaced to the caller.
	ErrMalformedListing = errors.New("malformed listing")

	// ErrStoreFetch is returned when a store's fetch fails; recorded as
	// response metadata, does not abort the query
	ErrStoreFetch = errors.New("store fetch failed")

	// ErrStoreTimeout is returned when a store's fetch exceeds its per-store
	// timeout
	ErrStoreTimeout = errors.New("store fetch timed out")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when the cache backend cannot be reached
	ErrCacheUnavailable = errors.New("cache service unavailable")
)
