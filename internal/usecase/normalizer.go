package usecase

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/buscaprecios/backend/internal/domain"
)

// priceTextReplacer strips the currency markers the Peruvian storefronts
// emit around amounts ("S/ 2,499.00", "S/. 129", NBSP-padded variants).
// Thousands separators go too; the remainder must parse as a number.
var priceTextReplacer = strings.NewReplacer(
	"S/.", "",
	"S/", "",
	"s/.", "",
	"s/", "",
	" ", "",
	",", "",
	" ", "",
)

// ListingNormalizer maps raw per-store listings into canonical records with
// a comparison key. The stopword table is injected configuration.
type ListingNormalizer struct {
	stopwords map[string]bool
}

// NewListingNormalizer creates a normalizer with the given marketing and
// currency stopword table
func NewListingNormalizer(stopwords []string) *ListingNormalizer {
	n := &ListingNormalizer{
		stopwords: make(map[string]bool, len(stopwords)),
	}
	for _, w := range stopwords {
		n.stopwords[foldText(w)] = true
	}
	return n
}

// Normalize converts a raw listing into its canonical form. It returns
// ErrMalformedListing when the price is missing, non-numeric, negative or
// zero, or when the title is blank; such listings are dropped from the
// pipeline, never surfaced to the end user. Titles are normalized on their
// own - query correction never touches them.
func (n *ListingNormalizer) Normalize(raw domain.RawListing) (domain.NormalizedListing, error) {
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		return domain.NormalizedListing{}, fmt.Errorf("%w: empty title", domain.ErrMalformedListing)
	}

	price, err := ParsePrice(raw.Price)
	if err != nil {
		return domain.NormalizedListing{}, fmt.Errorf("%w: %v", domain.ErrMalformedListing, err)
	}
	if price <= 0 {
		return domain.NormalizedListing{}, fmt.Errorf("%w: non-positive price %v", domain.ErrMalformedListing, price)
	}

	return domain.NormalizedListing{
		StoreName:     raw.StoreName,
		ProductName:   title,
		Price:         price,
		Currency:      "PEN",
		URL:           raw.ProductURL,
		ComparisonKey: n.comparisonKey(title),
	}, nil
}

// ParsePrice parses a scraped price text into a decimal amount
func ParsePrice(text string) (float64, error) {
	cleaned := priceTextReplacer.Replace(strings.TrimSpace(text))
	if cleaned == "" {
		return 0, fmt.Errorf("missing price")
	}

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric price %q", text)
	}
	return price, nil
}

// comparisonKey builds the normalized token signature for a title:
// lowercase, fold diacritics, drop punctuation, drop stopwords and tokens
// shorter than two characters, then sort and deduplicate. The same title
// always yields the same key. Model modifiers like "pro" are deliberately
// not stopwords, so a "Pro" suffix produces a different key - an accepted
// source of split clusters.
func (n *ListingNormalizer) comparisonKey(title string) []string {
	folded := foldText(title)
	cleaned := nonAlphanumericRegex.ReplaceAllString(folded, " ")

	seen := make(map[string]bool)
	var key []string
	for _, tok := range strings.Fields(cleaned) {
		if len(tok) < 2 {
			continue
		}
		if n.stopwords[tok] {
			continue
		}
		if seen[tok] {
			continue
		}
		seen[tok] = true
		key = append(key, tok)
	}

	sort.Strings(key)
	return key
}
