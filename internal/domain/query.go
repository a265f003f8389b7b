package domain

// IntentKind tags the user goal inferred from the query text
type IntentKind int

const (
	IntentNone IntentKind = iota
	IntentPriceAscending
	IntentPremiumOnly
	IntentBrandFilter
)

// String returns the wire name for the intent kind
func (k IntentKind) String() string {
	switch k {
	case IntentPriceAscending:
		return "price_ascending"
	case IntentPremiumOnly:
		return "premium_only"
	case IntentBrandFilter:
		return "brand_filter"
	default:
		return "none"
	}
}

// Intent is the structured intent descriptor. At most one kind is active per
// query; Brand is set only for IntentBrandFilter.
type Intent struct {
	Kind  IntentKind
	Brand string
}

// Query is the immutable per-request query value. Created once, never
// mutated after intent classification.
type Query struct {
	RawText       string
	CorrectedText string
	Tokens        []string
	Intent        Intent
}

// IsEmpty reports whether the corrected query carries no tokens
func (q Query) IsEmpty() bool {
	return len(q.Tokens) == 0
}

// SearchResult is the all-stores mode outcome: a flat, deduplicated listing
// sequence plus fetch metadata. FailedStores lists the stores that timed out
// or errored; the query proceeded without them.
type SearchResult struct {
	Query        Query
	Listings     []NormalizedListing
	FailedStores []string
	Dropped      int // malformed listings removed during normalization
}

// RecommendationResult is the recommendations mode outcome
type RecommendationResult struct {
	Query           Query
	Recommendations []ScoredProduct
	FailedStores    []string
}

// ComparisonResult is the compare-prices mode outcome
type ComparisonResult struct {
	Query        Query
	Comparisons  []PriceComparison
	FailedStores []string
}

// StatisticsResult is the statistics mode outcome
type StatisticsResult struct {
	Query        Query
	Statistics   []PriceStatistics
	FailedStores []string
}
