package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/buscaprecios/backend/internal/domain"
	"github.com/buscaprecios/backend/internal/infrastructure/metrics"
	"github.com/buscaprecios/backend/pkg/logging"
)

// SearchServiceConfig holds configuration for the search service
type SearchServiceConfig struct {
	StoreTimeout       time.Duration
	CacheTTL           time.Duration
	MaxResults         int // flat search cap, 0 = unlimited
	MaxRecommendations int
}

// SearchService drives the query pipeline: correct, classify intent, fan
// out to the store fetchers, normalize, filter, cluster, score, and shape
// one of the four response modes. Per-query execution is stateless; the
// only shared state is the read-only lexicon and keyword tables behind the
// corrector and classifier.
type SearchService struct {
	corrector  *Corrector
	classifier *IntentClassifier
	normalizer *ListingNormalizer
	scorer     *Scorer
	fetchers   []domain.StoreFetcher
	cache      domain.ListingCache
	logger     *logging.Logger

	storeTimeout       time.Duration
	cacheTTL           time.Duration
	maxResults         int
	maxRecommendations int
}

// NewSearchService creates the orchestrator with its pipeline stages and
// fetch collaborators
func NewSearchService(
	corrector *Corrector,
	classifier *IntentClassifier,
	normalizer *ListingNormalizer,
	scorer *Scorer,
	fetchers []domain.StoreFetcher,
	cache domain.ListingCache,
	logger *logging.Logger,
	config SearchServiceConfig,
) *SearchService {
	if logger == nil {
		logger = logging.NewNop()
	}

	storeTimeout := config.StoreTimeout
	if storeTimeout == 0 {
		storeTimeout = 10 * time.Second
	}
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}
	maxRecommendations := config.MaxRecommendations
	if maxRecommendations == 0 {
		maxRecommendations = 10
	}

	return &SearchService{
		corrector:          corrector,
		classifier:         classifier,
		normalizer:         normalizer,
		scorer:             scorer,
		fetchers:           fetchers,
		cache:              cache,
		logger:             logger,
		storeTimeout:       storeTimeout,
		cacheTTL:           cacheTTL,
		maxResults:         config.MaxResults,
		maxRecommendations: maxRecommendations,
	}
}

// SearchAllStores runs the all-stores pipeline: a flat listing sequence,
// intent-filtered, deduplicated across stores and sorted ascending by price
func (s *SearchService) SearchAllStores(ctx context.Context, rawQuery string) (*domain.SearchResult, error) {
	query := s.prepare(rawQuery)
	result := &domain.SearchResult{Query: query}
	if query.IsEmpty() {
		return result, nil
	}

	raw, failed := s.fetchAll(ctx, query.CorrectedText)
	result.FailedStores = failed

	listings, dropped := s.normalizeAll(raw)
	result.Dropped = dropped

	listings = s.applyIntent(listings, query.Intent)
	listings = dedupAcrossStores(listings)

	sort.SliceStable(listings, func(i, j int) bool {
		if listings[i].Price != listings[j].Price {
			return listings[i].Price < listings[j].Price
		}
		return listings[i].StoreName < listings[j].StoreName
	})

	if s.maxResults > 0 && len(listings) > s.maxResults {
		listings = listings[:s.maxResults]
	}

	result.Listings = listings
	return result, nil
}

// Recommend runs the recommendations pipeline: cluster, score each
// cluster's cheapest representative against the representative-set average,
// and keep the top entries by score
func (s *SearchService) Recommend(ctx context.Context, rawQuery string) (*domain.RecommendationResult, error) {
	query := s.prepare(rawQuery)
	result := &domain.RecommendationResult{Query: query}
	if query.IsEmpty() {
		return result, nil
	}

	raw, failed := s.fetchAll(ctx, query.CorrectedText)
	result.FailedStores = failed

	listings, _ := s.normalizeAll(raw)
	clusters := Cluster(listings)
	if len(clusters) == 0 {
		return result, nil
	}

	representatives := make([]domain.NormalizedListing, 0, len(clusters))
	var sum float64
	for i := range clusters {
		cheapest := clusters[i].Cheapest()
		representatives = append(representatives, cheapest)
		sum += cheapest.Price
	}
	avgPrice := sum / float64(len(representatives))

	scored := s.scorer.Score(representatives, avgPrice)
	if len(scored) > s.maxRecommendations {
		scored = scored[:s.maxRecommendations]
	}

	result.Recommendations = scored
	return result, nil
}

// ComparePrices runs the compare-prices pipeline: clusters present in at
// least two stores, sorted descending by potential savings
func (s *SearchService) ComparePrices(ctx context.Context, rawQuery string) (*domain.ComparisonResult, error) {
	query := s.prepare(rawQuery)
	result := &domain.ComparisonResult{Query: query}
	if query.IsEmpty() {
		return result, nil
	}

	raw, failed := s.fetchAll(ctx, query.CorrectedText)
	result.FailedStores = failed

	listings, _ := s.normalizeAll(raw)
	clusters := Cluster(listings)

	var comparisons []domain.PriceComparison
	for i := range clusters {
		c := &clusters[i]
		if c.Count() < 2 {
			continue
		}

		cheapest := c.Cheapest()
		mostExpensive := c.MostExpensive()
		avg := c.AveragePrice()

		savings := 0.0
		if avg > 0 {
			savings = round2((mostExpensive.Price - cheapest.Price) / avg * 100)
		}

		comparisons = append(comparisons, domain.PriceComparison{
			ProductName:       c.ProductName,
			Cheapest:          domain.StorePrice{StoreName: cheapest.StoreName, Price: cheapest.Price},
			MostExpensive:     domain.StorePrice{StoreName: mostExpensive.StoreName, Price: mostExpensive.Price},
			PriceDifference:   round2(mostExpensive.Price - cheapest.Price),
			AveragePrice:      round2(avg),
			SavingsPercentage: savings,
			Stores:            c.Stores(),
		})
	}

	sort.SliceStable(comparisons, func(i, j int) bool {
		if comparisons[i].SavingsPercentage != comparisons[j].SavingsPercentage {
			return comparisons[i].SavingsPercentage > comparisons[j].SavingsPercentage
		}
		return comparisons[i].ProductName < comparisons[j].ProductName
	})

	result.Comparisons = comparisons
	return result, nil
}

// Statistics runs the statistics pipeline: price stats for every cluster
// regardless of size, in stable first-seen order
func (s *SearchService) Statistics(ctx context.Context, rawQuery string) (*domain.StatisticsResult, error) {
	query := s.prepare(rawQuery)
	result := &domain.StatisticsResult{Query: query}
	if query.IsEmpty() {
		return result, nil
	}

	raw, failed := s.fetchAll(ctx, query.CorrectedText)
	result.FailedStores = failed

	listings, _ := s.normalizeAll(raw)
	clusters := Cluster(listings)

	statistics := make([]domain.PriceStatistics, 0, len(clusters))
	for i := range clusters {
		c := &clusters[i]
		statistics = append(statistics, domain.PriceStatistics{
			ProductName:  c.ProductName,
			Count:        c.Count(),
			MinPrice:     c.MinPrice(),
			MaxPrice:     c.MaxPrice(),
			AveragePrice: round2(c.AveragePrice()),
			MedianPrice:  round2(c.MedianPrice()),
			Stores:       c.Stores(),
		})
	}

	result.Statistics = statistics
	return result, nil
}

// prepare builds the immutable per-request query value: correct the raw
// text, tokenize, classify intent. Nothing mutates it afterwards.
func (s *SearchService) prepare(rawText string) domain.Query {
	corrected := s.corrector.Correct(rawText)
	query := domain.Query{
		RawText:       rawText,
		CorrectedText: corrected,
		Tokens:        foldedFields(corrected),
	}
	query.Intent = s.classifier.Classify(corrected)

	if corrected != rawText {
		s.logger.Info("query corrected", "raw", rawText, "corrected", corrected, "intent", query.Intent.Kind.String())
	}
	return query
}

// fetchOutcome carries one store's fan-out result to the fan-in barrier
type fetchOutcome struct {
	store    string
	listings []domain.RawListing
	err      error
}

// fetchAll fans out to every configured store concurrently, each under its
// own per-store timeout, and joins at a barrier before normalization. A
// failed or timed-out store never fails the query: its name lands in the
// returned failure list and the pipeline proceeds with the rest. Listings
// are returned in configured store order so the pipeline stays
// deterministic given the fetched set.
func (s *SearchService) fetchAll(ctx context.Context, query string) ([]domain.RawListing, []string) {
	outcomes := make(chan fetchOutcome, len(s.fetchers))

	var wg sync.WaitGroup
	for _, fetcher := range s.fetchers {
		wg.Add(1)
		go func(f domain.StoreFetcher) {
			defer wg.Done()
			listings, err := s.fetchStore(ctx, f, query)
			outcomes <- fetchOutcome{store: f.Name(), listings: listings, err: err}
		}(fetcher)
	}
	wg.Wait()
	close(outcomes)

	byStore := make(map[string][]domain.RawListing, len(s.fetchers))
	var failed []string
	for outcome := range outcomes {
		if outcome.err != nil {
			failed = append(failed, outcome.store)
			continue
		}
		byStore[outcome.store] = outcome.listings
	}
	sort.Strings(failed)

	var all []domain.RawListing
	for _, fetcher := range s.fetchers {
		all = append(all, byStore[fetcher.Name()]...)
	}
	return all, failed
}

// fetchStore fetches one store's listings, consulting the cache first and
// storing successful fetches after
func (s *SearchService) fetchStore(ctx context.Context, fetcher domain.StoreFetcher, query string) ([]domain.RawListing, error) {
	cacheKey := fmt.Sprintf("listings:%s:%s", fetcher.Name(), foldText(query))

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			return cached, nil
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	start := time.Now()
	listings, err := fetcher.Fetch(fetchCtx, query)
	metrics.StoreFetchDuration.WithLabelValues(fetcher.Name()).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.StoreFetchFailures.WithLabelValues(fetcher.Name()).Inc()
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn("store fetch timed out", "store", fetcher.Name(), "timeout", s.storeTimeout)
			return nil, fmt.Errorf("%w: %s", domain.ErrStoreTimeout, fetcher.Name())
		}
		s.logger.Warn("store fetch failed", "store", fetcher.Name(), "error", err)
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrStoreFetch, fetcher.Name(), err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, listings, s.cacheTTL); err != nil {
			s.logger.Warn("cache set failed", "store", fetcher.Name(), "error", err)
		}
	}

	return listings, nil
}

// normalizeAll normalizes the fetched listings, dropping and counting
// malformed ones. Drops are recorded, never surfaced to the caller.
func (s *SearchService) normalizeAll(raw []domain.RawListing) ([]domain.NormalizedListing, int) {
	listings := make([]domain.NormalizedListing, 0, len(raw))
	dropped := 0

	for _, r := range raw {
		normalized, err := s.normalizer.Normalize(r)
		if err != nil {
			dropped++
			metrics.MalformedListingsTotal.Inc()
			s.logger.Debug("malformed listing dropped", "store", r.StoreName, "title", r.Title, "error", err)
			continue
		}
		listings = append(listings, normalized)
	}

	if dropped > 0 {
		s.logger.Info("malformed listings dropped", "count", dropped)
	}
	return listings, dropped
}

// applyIntent filters the flat listing set by the classified intent.
// PriceAscending needs no filter here - the final sort is ascending by
// price anyway. PremiumOnly keeps the top price quartile. BrandFilter
// keeps listings whose comparison key contains the brand token.
func (s *SearchService) applyIntent(listings []domain.NormalizedListing, intent domain.Intent) []domain.NormalizedListing {
	switch intent.Kind {
	case domain.IntentPremiumOnly:
		return topQuartile(listings)
	case domain.IntentBrandFilter:
		brand := foldText(intent.Brand)
		var kept []domain.NormalizedListing
		for _, l := range listings {
			for _, tok := range l.ComparisonKey {
				if tok == brand {
					kept = append(kept, l)
					break
				}
			}
		}
		return kept
	default:
		return listings
	}
}

// topQuartile keeps listings priced at or above the 75th percentile of the
// result set
func topQuartile(listings []domain.NormalizedListing) []domain.NormalizedListing {
	if len(listings) == 0 {
		return listings
	}

	prices := make([]float64, len(listings))
	for i, l := range listings {
		prices[i] = l.Price
	}
	sort.Float64s(prices)

	idx := 3 * len(prices) / 4
	if idx >= len(prices) {
		idx = len(prices) - 1
	}
	threshold := prices[idx]

	var kept []domain.NormalizedListing
	for _, l := range listings {
		if l.Price >= threshold {
			kept = append(kept, l)
		}
	}
	return kept
}

// dedupAcrossStores removes repeated (store, comparison key) pairs, first
// seen winning
func dedupAcrossStores(listings []domain.NormalizedListing) []domain.NormalizedListing {
	seen := make(map[string]bool, len(listings))
	var unique []domain.NormalizedListing
	for _, l := range listings {
		key := l.StoreName + "|" + l.KeyString()
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, l)
	}
	return unique
}

// round2 rounds to two decimals
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
