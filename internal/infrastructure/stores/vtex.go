package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/buscaprecios/backend/internal/domain"
	"github.com/buscaprecios/backend/pkg/logging"
)

// vtexProduct is the slice of the VTEX catalog search payload we care
// about. Promart, Oechsle and PlazaVea all run VTEX storefronts.
type vtexProduct struct {
	ProductName string `json:"productName"`
	Brand       string `json:"brand"`
	Link        string `json:"link"`
	LinkText    string `json:"linkText"`
	Items       []struct {
		Sellers []struct {
			CommertialOffer struct {
				Price float64 `json:"Price"`
			} `json:"commertialOffer"`
		} `json:"sellers"`
	} `json:"items"`
}

// VTEXFetcher fetches listings from a VTEX storefront via the public
// catalog search API:
// GET {base}/api/catalog_system/pub/products/search/?ft={q}&_from=0&_to=N
type VTEXFetcher struct {
	name    string
	baseURL string
	limit   int
	client  *httpClient
	logger  *logging.Logger
}

// NewVTEXFetcher creates a fetcher for one VTEX store. The limit is
// clamped to [1,50]; zero means the default page of 25.
func NewVTEXFetcher(name, baseURL string, limit int, logger *logging.Logger) *VTEXFetcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	if limit <= 0 {
		limit = 25
	}
	if limit > 50 {
		limit = 50
	}

	return &VTEXFetcher{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		limit:   limit,
		client:  newHTTPClient(logger),
		logger:  logger,
	}
}

// Name returns the configured store name
func (f *VTEXFetcher) Name() string {
	return f.name
}

// Fetch searches the store's catalog and returns raw listings
func (f *VTEXFetcher) Fetch(ctx context.Context, query string) ([]domain.RawListing, error) {
	endpoint := f.baseURL + "/api/catalog_system/pub/products/search/"
	params := url.Values{}
	params.Add("ft", query)
	params.Add("_from", "0")
	params.Add("_to", strconv.Itoa(f.limit-1))
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	body, err := f.client.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("vtex search failed: %w", err)
	}

	var products []vtexProduct
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("failed to decode vtex response: %w", err)
	}

	listings := make([]domain.RawListing, 0, len(products))
	for _, p := range products {
		title := strings.TrimSpace(p.ProductName)
		if title == "" {
			continue
		}
		title = withBrand(title, p.Brand)

		listings = append(listings, domain.RawListing{
			StoreName:  f.name,
			StoreURL:   f.baseURL,
			Title:      title,
			Price:      formatPrice(vtexPrice(p)),
			ProductURL: f.productURL(p),
		})
	}

	f.logger.Debug("vtex fetch done", "store", f.name, "query", query, "listings", len(listings))
	return listings, nil
}

// vtexPrice digs out items[0].sellers[0].commertialOffer.Price; zero when
// the item carries no offer, which the normalizer later drops as malformed
func vtexPrice(p vtexProduct) float64 {
	if len(p.Items) == 0 || len(p.Items[0].Sellers) == 0 {
		return 0
	}
	return p.Items[0].Sellers[0].CommertialOffer.Price
}

// productURL prefers the absolute link, falling back to the canonical
// {base}/{linkText}/p form
func (f *VTEXFetcher) productURL(p vtexProduct) string {
	if link := strings.TrimSpace(p.Link); link != "" {
		if strings.HasPrefix(link, "/") {
			return f.baseURL + link
		}
		return link
	}
	if linkText := strings.TrimSpace(p.LinkText); linkText != "" {
		return fmt.Sprintf("%s/%s/p", f.baseURL, linkText)
	}
	return ""
}

// withBrand prepends the brand to the title when it is not already there,
// so cross-store comparison keys line up for stores that report the brand
// separately
func withBrand(title, brand string) string {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		return title
	}
	if strings.Contains(strings.ToLower(title), strings.ToLower(brand)) {
		return title
	}
	return brand + " " + title
}

// formatPrice renders a numeric price as the raw text the normalizer
// expects from every fetcher
func formatPrice(price float64) string {
	if price == 0 {
		return ""
	}
	return strconv.FormatFloat(price, 'f', 2, 64)
}
