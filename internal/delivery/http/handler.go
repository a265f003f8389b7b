package http

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/buscaprecios/backend/internal/domain"
	"github.com/buscaprecios/backend/internal/usecase"
	"github.com/buscaprecios/backend/pkg/logging"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	service *usecase.SearchService
	logger  *logging.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(service *usecase.SearchService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "buscaprecios-backend",
		"version": "1.0.0",
	})
}

// searchListing is the wire shape of one flat search result
type searchListing struct {
	StoreName   string  `json:"store_name"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	URL         string  `json:"url"`
}

// Search handles the all-stores search mode.
// A blank query is not an error: it yields an empty result set.
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("q")

	result, err := h.service.SearchAllStores(c.Request.Context(), query)
	if err != nil {
		h.serverError(c, err)
		return
	}

	results := make([]searchListing, 0, len(result.Listings))
	storeSet := make(map[string]bool)
	for _, l := range result.Listings {
		storeSet[l.StoreName] = true
		results = append(results, searchListing{
			StoreName:   l.StoreName,
			ProductName: l.ProductName,
			Price:       round2(l.Price),
			Currency:    l.Currency,
			URL:         l.URL,
		})
	}

	message := fmt.Sprintf("Búsqueda en %d tiendas: %d productos encontrados", len(storeSet), len(results))
	if result.Query.CorrectedText != result.Query.RawText {
		message += fmt.Sprintf(" (búsqueda corregida: '%s')", result.Query.CorrectedText)
	}

	c.JSON(http.StatusOK, gin.H{
		"results":         results,
		"total":           len(results),
		"failed_stores":   failedStores(result.FailedStores),
		"corrected_query": result.Query.CorrectedText,
		"message":         message,
	})
}

// Recommendations handles the recommendations mode
func (h *Handler) Recommendations(c *gin.Context) {
	query := c.Query("q")

	result, err := h.service.Recommend(c.Request.Context(), query)
	if err != nil {
		h.serverError(c, err)
		return
	}

	recommendations := make([]gin.H, 0, len(result.Recommendations))
	for _, r := range result.Recommendations {
		recommendations = append(recommendations, gin.H{
			"product": searchListing{
				StoreName:   r.Product.StoreName,
				ProductName: r.Product.ProductName,
				Price:       round2(r.Product.Price),
				Currency:    r.Product.Currency,
				URL:         r.Product.URL,
			},
			"reason": r.Reason,
			"score":  r.Score,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"recommendations": recommendations,
		"total":           len(recommendations),
		"failed_stores":   failedStores(result.FailedStores),
		"message":         fmt.Sprintf("Se generaron %d recomendaciones", len(recommendations)),
	})
}

// ComparePrices handles the compare-prices mode
func (h *Handler) ComparePrices(c *gin.Context) {
	query := c.Query("q")

	result, err := h.service.ComparePrices(c.Request.Context(), query)
	if err != nil {
		h.serverError(c, err)
		return
	}

	comparisons := make([]gin.H, 0, len(result.Comparisons))
	for _, cmp := range result.Comparisons {
		comparisons = append(comparisons, gin.H{
			"product_name":       cmp.ProductName,
			"cheapest":           storePrice(cmp.Cheapest),
			"most_expensive":     storePrice(cmp.MostExpensive),
			"price_difference":   cmp.PriceDifference,
			"average_price":      cmp.AveragePrice,
			"savings_percentage": cmp.SavingsPercentage,
			"stores":             roundPrices(cmp.Stores),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"comparisons":   comparisons,
		"total":         len(comparisons),
		"failed_stores": failedStores(result.FailedStores),
		"message":       fmt.Sprintf("Se encontraron %d productos en múltiples tiendas", len(comparisons)),
	})
}

// Statistics handles the statistics mode
func (h *Handler) Statistics(c *gin.Context) {
	query := c.Query("q")

	result, err := h.service.Statistics(c.Request.Context(), query)
	if err != nil {
		h.serverError(c, err)
		return
	}

	statistics := make([]gin.H, 0, len(result.Statistics))
	for _, s := range result.Statistics {
		statistics = append(statistics, gin.H{
			"product_name":  s.ProductName,
			"count":         s.Count,
			"min_price":     round2(s.MinPrice),
			"max_price":     round2(s.MaxPrice),
			"average_price": s.AveragePrice,
			"median_price":  s.MedianPrice,
			"stores":        roundPrices(s.Stores),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"statistics":    statistics,
		"total":         len(statistics),
		"failed_stores": failedStores(result.FailedStores),
		"message":       fmt.Sprintf("Estadísticas de %d productos encontrados", len(statistics)),
	})
}

func (h *Handler) serverError(c *gin.Context, err error) {
	h.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "internal server error",
	})
}

func storePrice(sp domain.StorePrice) gin.H {
	return gin.H{
		"store_name": sp.StoreName,
		"price":      round2(sp.Price),
	}
}

// failedStores keeps the failures list a JSON array, never null
func failedStores(failed []string) []string {
	if failed == nil {
		return []string{}
	}
	return failed
}

func roundPrices(stores map[string]float64) map[string]float64 {
	rounded := make(map[string]float64, len(stores))
	for store, price := range stores {
		rounded[store] = round2(price)
	}
	return rounded
}

// round2 rounds money fields to two decimals at the delivery boundary
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
