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

// HiraokaFetcher scrapes the Hiraoka search page (Magento markup).
// Each result card is a div.product-item-info; the title and product URL
// sit in a.product-item-link, the price in the price-box.
type HiraokaFetcher struct {
	name    string
	baseURL string
	client  *httpClient
	logger  *logging.Logger
}

// NewHiraokaFetcher creates the Hiraoka scraper
func NewHiraokaFetcher(name, baseURL string, logger *logging.Logger) *HiraokaFetcher {
	if logger == nil {
		logger = logging.NewNop()
	}

	return &HiraokaFetcher{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(logger),
		logger:  logger,
	}
}

// Name returns the configured store name
func (f *HiraokaFetcher) Name() string {
	return f.name
}

// Fetch scrapes the search results page for the query. Prices stay raw
// text ("S/ 2,499.00" or the data-price-amount attribute) - parsing them
// is the normalizer's job.
func (f *HiraokaFetcher) Fetch(ctx context.Context, query string) ([]domain.RawListing, error) {
	params := url.Values{}
	params.Add("q", query)
	reqURL := fmt.Sprintf("%s/gpsearch/?%s", f.baseURL, params.Encode())

	body, err := f.client.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("hiraoka search failed: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse hiraoka page: %w", err)
	}

	var listings []domain.RawListing
	doc.Find("div.product-item-info").Each(func(_ int, card *goquery.Selection) {
		link := card.Find("a.product-item-link").First()
		title := strings.TrimSpace(link.Text())
		if title == "" {
			return
		}

		price, ok := card.Find("[data-price-amount]").First().Attr("data-price-amount")
		if !ok || strings.TrimSpace(price) == "" {
			price = strings.TrimSpace(card.Find("div.price-box span.price").First().Text())
		}

		listings = append(listings, domain.RawListing{
			StoreName:  f.name,
			StoreURL:   f.baseURL,
			Title:      title,
			Price:      price,
			ProductURL: f.absoluteURL(link),
		})
	})

	f.logger.Debug("hiraoka fetch done", "query", query, "listings", len(listings))
	return listings, nil
}

func (f *HiraokaFetcher) absoluteURL(link *goquery.Selection) string {
	href, ok := link.Attr("href")
	if !ok {
		return ""
	}
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "/") {
		return f.baseURL + href
	}
	return href
}
