package usecase

import (
	"github.com/buscaprecios/backend/internal/domain"
)

// IntentClassifier derives the user goal from a corrected query. The
// keyword tables are injected configuration; the evaluation order is not:
// price sensitivity is checked before premium, premium before brand, and
// classification stops at the first match. A query carrying both a price
// word and a brand name classifies as PriceAscending - the brand token
// stays available downstream as a plain query token.
type IntentClassifier struct {
	priceWords   map[string]bool
	premiumWords map[string]bool
	brands       map[string]string // folded keyword -> display brand
}

// NewIntentClassifier creates a classifier over the given keyword tables
func NewIntentClassifier(priceWords, premiumWords []string, brands map[string]string) *IntentClassifier {
	c := &IntentClassifier{
		priceWords:   make(map[string]bool, len(priceWords)),
		premiumWords: make(map[string]bool, len(premiumWords)),
		brands:       make(map[string]string, len(brands)),
	}
	for _, w := range priceWords {
		c.priceWords[foldText(w)] = true
	}
	for _, w := range premiumWords {
		c.premiumWords[foldText(w)] = true
	}
	for keyword, brand := range brands {
		c.brands[foldText(keyword)] = brand
	}
	return c
}

// Classify scans the corrected text for intent signals. No match means
// IntentNone; at most one intent tag is ever active.
func (c *IntentClassifier) Classify(correctedText string) domain.Intent {
	tokens := foldedFields(correctedText)

	for _, tok := range tokens {
		if c.priceWords[tok] {
			return domain.Intent{Kind: domain.IntentPriceAscending}
		}
	}

	for _, tok := range tokens {
		if c.premiumWords[tok] {
			return domain.Intent{Kind: domain.IntentPremiumOnly}
		}
	}

	for _, tok := range tokens {
		if brand, ok := c.brands[tok]; ok {
			return domain.Intent{Kind: domain.IntentBrandFilter, Brand: brand}
		}
	}

	return domain.Intent{Kind: domain.IntentNone}
}
