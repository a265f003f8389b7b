package usecase

import (
	"testing"

	"github.com/buscaprecios/backend/internal/domain"
)

func testClassifier() *IntentClassifier {
	return NewIntentClassifier(
		[]string{"barato", "economico", "oferta", "descuento", "rebajado"},
		[]string{"premium", "caro", "lujo", "top", "mejor"},
		map[string]string{
			"apple":   "Apple",
			"samsung": "Samsung",
			"huawei":  "Huawei",
			"xiaomi":  "Xiaomi",
			"sony":    "Sony",
		},
	)
}

func TestClassify(t *testing.T) {
	c := testClassifier()

	testCases := []struct {
		name      string
		query     string
		wantKind  domain.IntentKind
		wantBrand string
	}{
		{
			name:     "price word yields price ascending",
			query:    "celular barato",
			wantKind: domain.IntentPriceAscending,
		},
		{
			name:     "accented price word folds before matching",
			query:    "celular económico",
			wantKind: domain.IntentPriceAscending,
		},
		{
			name:     "premium word yields premium only",
			query:    "laptop premium",
			wantKind: domain.IntentPremiumOnly,
		},
		{
			name:      "brand keyword yields brand filter",
			query:     "celular huawei",
			wantKind:  domain.IntentBrandFilter,
			wantBrand: "Huawei",
		},
		{
			name:     "no keyword yields none",
			query:    "televisor 55 pulgadas",
			wantKind: domain.IntentNone,
		},
		{
			name:     "empty query yields none",
			query:    "",
			wantKind: domain.IntentNone,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			intent := c.Classify(tc.query)
			if intent.Kind != tc.wantKind {
				t.Errorf("Classify(%q).Kind = %v, want %v", tc.query, intent.Kind, tc.wantKind)
			}
			if intent.Brand != tc.wantBrand {
				t.Errorf("Classify(%q).Brand = %q, want %q", tc.query, intent.Brand, tc.wantBrand)
			}
		})
	}
}

// The evaluation order is contractual: price before premium before brand,
// first match wins, never more than one active tag.
func TestClassifyEvaluationOrder(t *testing.T) {
	c := testClassifier()

	testCases := []struct {
		name     string
		query    string
		wantKind domain.IntentKind
	}{
		{
			name:     "price word beats brand word",
			query:    "samsung barato",
			wantKind: domain.IntentPriceAscending,
		},
		{
			name:     "price word beats premium word",
			query:    "premium barato",
			wantKind: domain.IntentPriceAscending,
		},
		{
			name:     "premium word beats brand word",
			query:    "sony caro",
			wantKind: domain.IntentPremiumOnly,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			intent := c.Classify(tc.query)
			if intent.Kind != tc.wantKind {
				t.Errorf("Classify(%q).Kind = %v, want %v", tc.query, intent.Kind, tc.wantKind)
			}
			if intent.Kind != domain.IntentBrandFilter && intent.Brand != "" {
				t.Errorf("Classify(%q).Brand = %q, want empty outside brand filter", tc.query, intent.Brand)
			}
		})
	}
}
