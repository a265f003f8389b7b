package main

import (
	"context"
	"fmt"
	"time"

	"github.com/buscaprecios/backend/config"
	httpDelivery "github.com/buscaprecios/backend/internal/delivery/http"
	"github.com/buscaprecios/backend/internal/domain"
	"github.com/buscaprecios/backend/internal/infrastructure/cache"
	"github.com/buscaprecios/backend/internal/infrastructure/stores"
	"github.com/buscaprecios/backend/internal/usecase"
	"github.com/buscaprecios/backend/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger depends on config; nothing fancier available yet
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger := logging.New(cfg.Server.LogLevel, cfg.Server.Environment)
	defer logger.Sync()

	logger.Info("starting buscaprecios backend",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
		"cache", cfg.Cache.Type,
		"stores", len(cfg.Stores.Entries),
	)

	// The lexicon is the only fatal startup dependency: without a
	// vocabulary the corrector cannot run at all.
	lexicon, err := usecase.NewLexicon(cfg.Lexicon.Brands, cfg.Lexicon.Categories, cfg.Lexicon.Modifiers)
	if err != nil {
		logger.Fatal("failed to build lexicon", "error", err)
	}

	listingCache, err := buildCache(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize cache", "error", err)
	}

	fetchers, err := buildFetchers(cfg, logger)
	if err != nil {
		logger.Fatal("failed to build store fetchers", "error", err)
	}

	corrector := usecase.NewCorrector(lexicon, logger)
	classifier := usecase.NewIntentClassifier(cfg.Intent.PriceWords, cfg.Intent.PremiumWords, cfg.Intent.Brands)
	normalizer := usecase.NewListingNormalizer(cfg.Lexicon.Stopwords)
	scorer := usecase.NewScorer(usecase.ScoringParams{
		BaseScore:         cfg.Scoring.BaseScore,
		GoodPriceBonus:    cfg.Scoring.GoodPriceBonus,
		GoodPriceRatio:    cfg.Scoring.GoodPriceRatio,
		TrustedStoreBonus: cfg.Scoring.TrustedStoreBonus,
		RankBonus:         cfg.Scoring.RankBonus,
		TrustedStores:     cfg.Scoring.TrustedStores,
	})

	service := usecase.NewSearchService(
		corrector,
		classifier,
		normalizer,
		scorer,
		fetchers,
		listingCache,
		logger,
		usecase.SearchServiceConfig{
			StoreTimeout:       cfg.Stores.Timeout,
			CacheTTL:           cfg.Cache.TTL,
			MaxResults:         cfg.Search.MaxResults,
			MaxRecommendations: cfg.Search.MaxRecommendations,
		},
	)

	handler := httpDelivery.NewHandler(service, logger)
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("server listening", "addr", addr)

	if err := router.Run(addr); err != nil {
		logger.Fatal("server stopped", "error", err)
	}
}

// buildCache selects the cache backend from configuration
func buildCache(cfg *config.Config, logger *logging.Logger) (domain.ListingCache, error) {
	if cfg.Cache.Type == "redis" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
	}
	return cache.NewMemoryCache(), nil
}

// buildFetchers wires one fetch collaborator per configured store entry.
// Adding a store is a config entry plus, for a new backend kind, a fetcher.
func buildFetchers(cfg *config.Config, logger *logging.Logger) ([]domain.StoreFetcher, error) {
	fetchers := make([]domain.StoreFetcher, 0, len(cfg.Stores.Entries))
	for _, entry := range cfg.Stores.Entries {
		switch entry.Kind {
		case "vtex":
			fetchers = append(fetchers, stores.NewVTEXFetcher(entry.Name, entry.BaseURL, cfg.Stores.FetchLimit, logger))
		case "algolia":
			fetchers = append(fetchers, stores.NewAlgoliaFetcher(entry.Name, entry.BaseURL, stores.AlgoliaCredentials{
				AppID:  cfg.Stores.Algolia.AppID,
				APIKey: cfg.Stores.Algolia.APIKey,
				Index:  cfg.Stores.Algolia.Index,
			}, logger))
		case "hiraoka":
			fetchers = append(fetchers, stores.NewHiraokaFetcher(entry.Name, entry.BaseURL, logger))
		case "falabella":
			fetchers = append(fetchers, stores.NewFalabellaFetcher(entry.Name, entry.BaseURL, logger))
		default:
			return nil, fmt.Errorf("unknown store kind %q for store %q", entry.Kind, entry.Name)
		}
	}
	return fetchers, nil
}
