package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/buscaprecios/backend/internal/domain"
)

// Default scoring weights, used when the configured value is zero
const (
	defaultBaseScore         = 50.0
	defaultGoodPriceBonus    = 20.0
	defaultGoodPriceRatio    = 0.8
	defaultTrustedStoreBonus = 15.0
	defaultRankBonus         = 10.0
)

// Reason fragments, appended in bonus application order and joined
// with "; "
const (
	reasonGoodPrice    = "Muy buen precio"
	reasonTrustedStore = "Vendido por %s"
	reasonFallback     = "Producto relevante"
)

// ScoringParams holds the scoring weights and the trusted-store set
type ScoringParams struct {
	BaseScore         float64
	GoodPriceBonus    float64
	GoodPriceRatio    float64
	TrustedStoreBonus float64
	RankBonus         float64
	TrustedStores     []string
}

// Scorer computes 0-100 recommendation scores from price, store trust and
// rank-position signals
type Scorer struct {
	baseScore         float64
	goodPriceBonus    float64
	goodPriceRatio    float64
	trustedStoreBonus float64
	rankBonus         float64
	trustedStores     map[string]bool
}

// NewScorer creates a scorer with the given weights, falling back to the
// defaults for anything left zero
func NewScorer(params ScoringParams) *Scorer {
	s := &Scorer{
		baseScore:         params.BaseScore,
		goodPriceBonus:    params.GoodPriceBonus,
		goodPriceRatio:    params.GoodPriceRatio,
		trustedStoreBonus: params.TrustedStoreBonus,
		rankBonus:         params.RankBonus,
		trustedStores:     make(map[string]bool, len(params.TrustedStores)),
	}
	if s.baseScore == 0 {
		s.baseScore = defaultBaseScore
	}
	if s.goodPriceBonus == 0 {
		s.goodPriceBonus = defaultGoodPriceBonus
	}
	if s.goodPriceRatio == 0 {
		s.goodPriceRatio = defaultGoodPriceRatio
	}
	if s.trustedStoreBonus == 0 {
		s.trustedStoreBonus = defaultTrustedStoreBonus
	}
	if s.rankBonus == 0 {
		s.rankBonus = defaultRankBonus
	}
	for _, store := range params.TrustedStores {
		s.trustedStores[store] = true
	}
	return s
}

// Score scores every candidate against the context average price.
// Additive rule, clamped to [0,100], starting from the base:
//   - good-price bonus when the price is at or below ratio x average
//   - trusted-store bonus when the store is in the trusted set
//   - rank bonus scaled by 1 - normalizedRank, where rank is the 0-based
//     index after sorting candidates ascending by price (a lone candidate
//     takes the full bonus; no reason fragment for this one)
//
// The result is ordered descending by score, ties ascending by price,
// remaining ties by store name.
func (s *Scorer) Score(candidates []domain.NormalizedListing, avgPrice float64) []domain.ScoredProduct {
	if len(candidates) == 0 {
		return nil
	}

	ranked := make([]domain.NormalizedListing, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Price < ranked[j].Price
	})

	scored := make([]domain.ScoredProduct, 0, len(ranked))
	for rank, listing := range ranked {
		score := s.baseScore
		var reasons []string

		if avgPrice > 0 && listing.Price <= avgPrice*s.goodPriceRatio {
			score += s.goodPriceBonus
			reasons = append(reasons, reasonGoodPrice)
		}

		if s.trustedStores[listing.StoreName] {
			score += s.trustedStoreBonus
			reasons = append(reasons, fmt.Sprintf(reasonTrustedStore, listing.StoreName))
		}

		normalizedRank := 0.0
		if len(ranked) > 1 {
			normalizedRank = float64(rank) / float64(len(ranked)-1)
		}
		score += s.rankBonus * (1 - normalizedRank)

		if score > 100 {
			score = 100
		}
		if score < 0 {
			score = 0
		}

		reason := reasonFallback
		if len(reasons) > 0 {
			reason = strings.Join(reasons, "; ")
		}

		scored = append(scored, domain.ScoredProduct{
			Product: listing,
			Reason:  reason,
			Score:   score,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].Product.Price != scored[j].Product.Price {
			return scored[i].Product.Price < scored[j].Product.Price
		}
		return scored[i].Product.StoreName < scored[j].Product.StoreName
	})

	return scored
}
