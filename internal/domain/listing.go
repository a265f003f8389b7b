package domain

import (
	"sort"
	"strings"
)

// RawListing is one product offer exactly as a store fetcher returned it.
// Owned by the fetch layer; read-only to the pipeline. Price stays raw text
// because HTML storefronts emit values like "S/ 2,499.00"; numeric parsing
// is the normalizer's job.
type RawListing struct {
	StoreName  string `json:"store_name"`
	StoreURL   string `json:"store_url"`
	Title      string `json:"title"`
	Price      string `json:"price"`
	ProductURL string `json:"product_url"`
}

// NormalizedListing is the canonical listing record. Immutable once built.
type NormalizedListing struct {
	StoreName   string  `json:"store_name"`
	ProductName string  `json:"product_name"` // original title, untouched
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	URL         string  `json:"url"`

	// ComparisonKey is the sorted normalized token signature used to test
	// product equivalence across stores. Not guaranteed unique across
	// distinct products: a "Pro" suffix yields a different key, which can
	// split listings of arguably the same product. Accepted limitation.
	ComparisonKey []string `json:"-"`
}

// KeyString renders the comparison key as a single join key
func (l NormalizedListing) KeyString() string {
	return strings.Join(l.ComparisonKey, " ")
}

// ProductCluster groups listings that share an equal comparison key.
// Within a cluster store names are unique: if a store appeared twice only
// the lower-priced listing was retained. Built fresh per query.
type ProductCluster struct {
	Key         string
	ProductName string // shortest original title among members
	Listings    []NormalizedListing
}

// Count returns the number of listings in the cluster
func (c *ProductCluster) Count() int {
	return len(c.Listings)
}

// Stores maps store name to that store's price within the cluster
func (c *ProductCluster) Stores() map[string]float64 {
	stores := make(map[string]float64, len(c.Listings))
	for _, l := range c.Listings {
		stores[l.StoreName] = l.Price
	}
	return stores
}

// Cheapest returns the lowest-priced listing (ties: first seen)
func (c *ProductCluster) Cheapest() NormalizedListing {
	best := c.Listings[0]
	for _, l := range c.Listings[1:] {
		if l.Price < best.Price {
			best = l
		}
	}
	return best
}

// MostExpensive returns the highest-priced listing (ties: first seen)
func (c *ProductCluster) MostExpensive() NormalizedListing {
	best := c.Listings[0]
	for _, l := range c.Listings[1:] {
		if l.Price > best.Price {
			best = l
		}
	}
	return best
}

// MinPrice returns the lowest price in the cluster
func (c *ProductCluster) MinPrice() float64 {
	return c.Cheapest().Price
}

// MaxPrice returns the highest price in the cluster
func (c *ProductCluster) MaxPrice() float64 {
	return c.MostExpensive().Price
}

// AveragePrice returns the mean price across the cluster's listings
func (c *ProductCluster) AveragePrice() float64 {
	if len(c.Listings) == 0 {
		return 0
	}
	var sum float64
	for _, l := range c.Listings {
		sum += l.Price
	}
	return sum / float64(len(c.Listings))
}

// MedianPrice returns the median price; for even counts, the mean of the
// two middle values
func (c *ProductCluster) MedianPrice() float64 {
	n := len(c.Listings)
	if n == 0 {
		return 0
	}
	prices := make([]float64, n)
	for i, l := range c.Listings {
		prices[i] = l.Price
	}
	sort.Float64s(prices)
	if n%2 == 1 {
		return prices[n/2]
	}
	return (prices[n/2-1] + prices[n/2]) / 2
}

// ScoredProduct is a listing with its derived recommendation score and the
// human-readable justification fragments joined with "; "
type ScoredProduct struct {
	Product NormalizedListing `json:"product"`
	Reason  string            `json:"reason"`
	Score   float64           `json:"score"` // 0-100
}

// StorePrice identifies one store's price inside a comparison
type StorePrice struct {
	StoreName string  `json:"store_name"`
	Price     float64 `json:"price"`
}

// PriceComparison is the compare-prices view of a multi-store cluster
type PriceComparison struct {
	ProductName       string             `json:"product_name"`
	Cheapest          StorePrice         `json:"cheapest"`
	MostExpensive     StorePrice         `json:"most_expensive"`
	PriceDifference   float64            `json:"price_difference"`
	AveragePrice      float64            `json:"average_price"`
	SavingsPercentage float64            `json:"savings_percentage"`
	Stores            map[string]float64 `json:"stores"`
}

// PriceStatistics is the statistics view of a cluster
type PriceStatistics struct {
	ProductName  string             `json:"product_name"`
	Count        int                `json:"count"`
	MinPrice     float64            `json:"min_price"`
	MaxPrice     float64            `json:"max_price"`
	AveragePrice float64            `json:"average_price"`
	MedianPrice  float64            `json:"median_price"`
	Stores       map[string]float64 `json:"stores"`
}
