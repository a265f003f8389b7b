package stores

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/buscaprecios/backend/internal/domain"
	"github.com/buscaprecios/backend/pkg/logging"
)

const algoliaHitsPerPage = 50

// AlgoliaCredentials identifies the Algolia application the store's
// frontend searches against
type AlgoliaCredentials struct {
	AppID  string
	APIKey string
	Index  string
}

// algoliaHit is the slice of an Inkafarma product hit we care about
type algoliaHit struct {
	Name         string  `json:"name"`
	Presentation string  `json:"presentation"`
	Brand        string  `json:"brand"`
	PricePromo   float64 `json:"pricePromo"`
	PriceList    float64 `json:"priceList"`
	URI          string  `json:"uri"`
}

type algoliaResponse struct {
	Hits []algoliaHit `json:"hits"`
}

// AlgoliaFetcher fetches listings from a store whose search runs on
// Algolia (Inkafarma). It POSTs the query to the index endpoint with the
// store's public frontend credentials.
type AlgoliaFetcher struct {
	name     string
	baseURL  string // store site, for product URLs
	endpoint string
	creds    AlgoliaCredentials
	client   *httpClient
	logger   *logging.Logger
}

// NewAlgoliaFetcher creates a fetcher for one Algolia-backed store
func NewAlgoliaFetcher(name, baseURL string, creds AlgoliaCredentials, logger *logging.Logger) *AlgoliaFetcher {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &AlgoliaFetcher{
		name:     name,
		baseURL:  strings.TrimRight(baseURL, "/"),
		endpoint: fmt.Sprintf("https://%s-dsn.algolia.net/1/indexes/%s/query", creds.AppID, creds.Index),
		creds:    creds,
		client:   newHTTPClient(logger),
		logger:   logger,
	}
}

// Name returns the configured store name
func (f *AlgoliaFetcher) Name() string {
	return f.name
}

// Fetch queries the Algolia index and returns raw listings. The promo
// price wins when present, the list price otherwise.
func (f *AlgoliaFetcher) Fetch(ctx context.Context, query string) ([]domain.RawListing, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"query":       query,
		"hitsPerPage": algoliaHitsPerPage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode algolia query: %w", err)
	}

	body, err := f.client.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Algolia-Application-Id", f.creds.AppID)
		req.Header.Set("X-Algolia-API-Key", f.creds.APIKey)
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("algolia search failed: %w", err)
	}

	var resp algoliaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode algolia response: %w", err)
	}

	listings := make([]domain.RawListing, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		title := strings.TrimSpace(hit.Name)
		if title == "" {
			continue
		}
		if presentation := strings.TrimSpace(hit.Presentation); presentation != "" {
			title = title + " - " + presentation
		}
		title = withBrand(title, hit.Brand)

		price := hit.PricePromo
		if price <= 0 {
			price = hit.PriceList
		}

		productURL := ""
		if uri := strings.TrimSpace(hit.URI); uri != "" {
			productURL = fmt.Sprintf("%s/producto/%s", f.baseURL, uri)
		}

		listings = append(listings, domain.RawListing{
			StoreName:  f.name,
			StoreURL:   f.baseURL,
			Title:      title,
			Price:      formatPrice(price),
			ProductURL: productURL,
		})
	}

	f.logger.Debug("algolia fetch done", "store", f.name, "query", query, "listings", len(listings))
	return listings, nil
}
