package stores

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/buscaprecios/backend/internal/domain"
	"github.com/buscaprecios/backend/pkg/logging"
)

// FalabellaFetcher scrapes Falabella search results. Products render as
// pod anchors: the brand in b.pod-title, the product name in
// b.pod-subTitle, the price in li[data-event-price].
type FalabellaFetcher struct {
	name    string
	baseURL string
	client  *httpClient
	logger  *logging.Logger
}

// NewFalabellaFetcher creates the Falabella scraper
func NewFalabellaFetcher(name, baseURL string, logger *logging.Logger) *FalabellaFetcher {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &FalabellaFetcher{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(logger),
		logger:  logger,
	}
}

// Name returns the configured store name
func (f *FalabellaFetcher) Name() string {
	return f.name
}

// Fetch scrapes the search results page. Falabella reports the brand
// separately from the product name, so the brand is folded into the title
// to keep cross-store comparison keys aligned.
func (f *FalabellaFetcher) Fetch(ctx context.Context, query string) ([]domain.RawListing, error) {
	params := url.Values{}
	params.Add("Ntt", query)
	reqURL := fmt.Sprintf("%s/falabella-pe/search?%s", f.baseURL, params.Encode())

	body, err := f.client.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("falabella search failed: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse falabella page: %w", err)
	}

	var listings []domain.RawListing
	doc.Find("a[data-pod='catalyst-pod']").Each(func(_ int, pod *goquery.Selection) {
		name := strings.TrimSpace(pod.Find("b.pod-subTitle").First().Text())
		if name == "" {
			return
		}
		brand := strings.TrimSpace(pod.Find("b.pod-title").First().Text())
		title := withBrand(name, brand)

		priceLi := pod.Find("li[data-event-price]").First()
		price, ok := priceLi.Attr("data-event-price")
		if !ok || strings.TrimSpace(price) == "" {
			price = strings.TrimSpace(priceLi.Find("span").First().Text())
		}

		listings = append(listings, domain.RawListing{
			StoreName:  f.name,
			StoreURL:   f.baseURL,
			Title:      title,
			Price:      price,
			ProductURL: f.absoluteURL(pod),
		})
	})

	f.logger.Debug("falabella fetch done", "query", query, "listings", len(listings))
	return listings, nil
}

func (f *FalabellaFetcher) absoluteURL(pod *goquery.Selection) string {
	href, ok := pod.Attr("href")
	if !ok {
		return ""
	}
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "/") {
		return f.baseURL + href
	}
	return href
}
