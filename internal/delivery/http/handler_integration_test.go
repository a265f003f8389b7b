package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/buscaprecios/backend/config"
	"github.com/buscaprecios/backend/internal/domain"
	"github.com/buscaprecios/backend/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// stubFetcher serves canned listings for router tests
type stubFetcher struct {
	name     string
	listings []domain.RawListing
	err      error
}

func (f *stubFetcher) Name() string { return f.name }

func (f *stubFetcher) Fetch(ctx context.Context, query string) ([]domain.RawListing, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.listings, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:3000", "https://*.buscaprecios.pe"},
		},
		Cache: config.CacheConfig{Type: "memory"},
	}
}

// setupTestRouter wires the full pipeline over stub fetchers
func setupTestRouter(t *testing.T, fetchers ...domain.StoreFetcher) *gin.Engine {
	t.Helper()

	lexicon, err := usecase.NewLexicon(
		[]string{"huawei", "samsung", "iphone"},
		[]string{"celular", "laptop"},
		[]string{"pura", "pro"},
	)
	if err != nil {
		t.Fatalf("NewLexicon() error = %v", err)
	}

	service := usecase.NewSearchService(
		usecase.NewCorrector(lexicon, nil),
		usecase.NewIntentClassifier(
			[]string{"barato"},
			[]string{"premium"},
			map[string]string{"huawei": "Huawei", "samsung": "Samsung"},
		),
		usecase.NewListingNormalizer([]string{"nuevo", "oferta"}),
		usecase.NewScorer(usecase.ScoringParams{
			TrustedStores: []string{"Hiraoka Online"},
		}),
		fetchers,
		nil,
		nil,
		usecase.SearchServiceConfig{},
	)

	return SetupRouter(testConfig(), NewHandler(service, nil), nil)
}

func defaultFetchers() []domain.StoreFetcher {
	return []domain.StoreFetcher{
		&stubFetcher{name: "Hiraoka Online", listings: []domain.RawListing{
			{StoreName: "Hiraoka Online", Title: "Celular Huawei Pura 80", Price: "S/ 2,499.00"},
		}},
		&stubFetcher{name: "Falabella Online", listings: []domain.RawListing{
			{StoreName: "Falabella Online", Title: "HUAWEI Celular Pura 80", Price: "2599"},
		}},
	}
}

func doRequest(router *gin.Engine, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	return body
}

func TestHealthCheckEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(router, http.MethodGet, "/health")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := decodeBody(t, w)
	if body["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", body["status"])
	}
	if body["service"] != "buscaprecios-backend" {
		t.Errorf("service = %v, want buscaprecios-backend", body["service"])
	}
}

func TestSearchEndpoint(t *testing.T) {
	t.Run("returns listings across stores", func(t *testing.T) {
		router := setupTestRouter(t, defaultFetchers()...)

		w := doRequest(router, http.MethodGet, "/api/v1/search?q=celular+huawei")

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
		body := decodeBody(t, w)
		if body["total"] != float64(2) {
			t.Errorf("total = %v, want 2", body["total"])
		}

		results, ok := body["results"].([]interface{})
		if !ok || len(results) != 2 {
			t.Fatalf("results = %v, want two entries", body["results"])
		}
		first := results[0].(map[string]interface{})
		if first["price"] != float64(2499) {
			t.Errorf("first price = %v, want the cheapest 2499", first["price"])
		}
		if first["currency"] != "PEN" {
			t.Errorf("currency = %v, want PEN", first["currency"])
		}

		message, _ := body["message"].(string)
		if !strings.Contains(message, "2 tiendas") || !strings.Contains(message, "2 productos") {
			t.Errorf("message = %q, want store and product counts", message)
		}
	})

	t.Run("reports the corrected query", func(t *testing.T) {
		router := setupTestRouter(t, defaultFetchers()...)

		w := doRequest(router, http.MethodGet, "/api/v1/search?q=celuar+hauwei")

		body := decodeBody(t, w)
		if body["corrected_query"] != "celular huawei" {
			t.Errorf("corrected_query = %v, want %q", body["corrected_query"], "celular huawei")
		}
		message, _ := body["message"].(string)
		if !strings.Contains(message, "búsqueda corregida: 'celular huawei'") {
			t.Errorf("message = %q, want the correction notice", message)
		}
	})

	t.Run("blank query yields an empty result set", func(t *testing.T) {
		router := setupTestRouter(t, defaultFetchers()...)

		w := doRequest(router, http.MethodGet, "/api/v1/search")

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
		body := decodeBody(t, w)
		if body["total"] != float64(0) {
			t.Errorf("total = %v, want 0", body["total"])
		}
	})

	t.Run("failed stores surface as a JSON array", func(t *testing.T) {
		router := setupTestRouter(t,
			defaultFetchers()[0],
			&stubFetcher{name: "PlazaVea", err: errors.New("connection refused")},
		)

		w := doRequest(router, http.MethodGet, "/api/v1/search?q=celular")

		body := decodeBody(t, w)
		failed, ok := body["failed_stores"].([]interface{})
		if !ok {
			t.Fatalf("failed_stores = %v, want a JSON array", body["failed_stores"])
		}
		if len(failed) != 1 || failed[0] != "PlazaVea" {
			t.Errorf("failed_stores = %v, want [PlazaVea]", failed)
		}
		if body["total"] != float64(1) {
			t.Errorf("total = %v, want 1 from the healthy store", body["total"])
		}
	})

	t.Run("failed stores stay an array when empty", func(t *testing.T) {
		router := setupTestRouter(t, defaultFetchers()...)

		w := doRequest(router, http.MethodGet, "/api/v1/search?q=celular")

		if _, ok := decodeBody(t, w)["failed_stores"].([]interface{}); !ok {
			t.Error("failed_stores is not a JSON array")
		}
	})
}

func TestRecommendationsEndpoint(t *testing.T) {
	router := setupTestRouter(t, defaultFetchers()...)

	w := doRequest(router, http.MethodGet, "/api/v1/search/recommendations?q=celular+huawei")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := decodeBody(t, w)
	recs, ok := body["recommendations"].([]interface{})
	if !ok || len(recs) != 1 {
		t.Fatalf("recommendations = %v, want one cluster representative", body["recommendations"])
	}

	rec := recs[0].(map[string]interface{})
	score, _ := rec["score"].(float64)
	if score < 0 || score > 100 {
		t.Errorf("score = %v, want within [0,100]", score)
	}
	if rec["reason"] == "" {
		t.Error("reason is empty")
	}
	product, _ := rec["product"].(map[string]interface{})
	if product["store_name"] != "Hiraoka Online" {
		t.Errorf("store_name = %v, want the cheapest representative's store", product["store_name"])
	}
	message, _ := body["message"].(string)
	if !strings.Contains(message, "1 recomendaciones") {
		t.Errorf("message = %q, want the recommendation count", message)
	}
}

func TestComparePricesEndpoint(t *testing.T) {
	router := setupTestRouter(t, defaultFetchers()...)

	w := doRequest(router, http.MethodGet, "/api/v1/search/compare-prices?q=celular+huawei")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := decodeBody(t, w)
	comparisons, ok := body["comparisons"].([]interface{})
	if !ok || len(comparisons) != 1 {
		t.Fatalf("comparisons = %v, want one multi-store cluster", body["comparisons"])
	}

	cmp := comparisons[0].(map[string]interface{})
	cheapest, _ := cmp["cheapest"].(map[string]interface{})
	if cheapest["store_name"] != "Hiraoka Online" || cheapest["price"] != float64(2499) {
		t.Errorf("cheapest = %v, want Hiraoka Online at 2499", cheapest)
	}
	if cmp["price_difference"] != float64(100) {
		t.Errorf("price_difference = %v, want 100", cmp["price_difference"])
	}
	if cmp["savings_percentage"] != float64(3.92) {
		t.Errorf("savings_percentage = %v, want 3.92", cmp["savings_percentage"])
	}
	stores, _ := cmp["stores"].(map[string]interface{})
	if len(stores) != 2 {
		t.Errorf("stores = %v, want both stores", stores)
	}
}

func TestStatisticsEndpoint(t *testing.T) {
	router := setupTestRouter(t, defaultFetchers()...)

	w := doRequest(router, http.MethodGet, "/api/v1/search/statistics?q=celular+huawei")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := decodeBody(t, w)
	statistics, ok := body["statistics"].([]interface{})
	if !ok || len(statistics) != 1 {
		t.Fatalf("statistics = %v, want one cluster", body["statistics"])
	}

	stat := statistics[0].(map[string]interface{})
	if stat["count"] != float64(2) {
		t.Errorf("count = %v, want 2", stat["count"])
	}
	if stat["min_price"] != float64(2499) || stat["max_price"] != float64(2599) {
		t.Errorf("min/max = %v/%v, want 2499/2599", stat["min_price"], stat["max_price"])
	}
	if stat["average_price"] != float64(2549) || stat["median_price"] != float64(2549) {
		t.Errorf("average/median = %v/%v, want 2549/2549", stat["average_price"], stat["median_price"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(router, http.MethodGet, "/metrics")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("metrics body missing runtime metrics")
	}
}

func TestUnknownRoute(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/unknown")

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
