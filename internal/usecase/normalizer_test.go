package usecase

import (
	"errors"
	"reflect"
	"testing"

	"github.com/buscaprecios/backend/internal/domain"
)

func testNormalizer() *ListingNormalizer {
	return NewListingNormalizer([]string{
		"nuevo", "nueva", "original", "oferta", "promocion", "promo",
		"descuento", "oficial", "garantia", "sellado", "gratis", "envio",
		"regalo", "liberado", "libre", "incluye", "soles", "sol", "pen",
		"precio",
	})
}

func TestParsePrice(t *testing.T) {
	testCases := []struct {
		name    string
		in      string
		want    float64
		wantErr bool
	}{
		{name: "plain number", in: "2499", want: 2499},
		{name: "decimal number", in: "2499.90", want: 2499.9},
		{name: "currency prefix", in: "S/ 2,499.00", want: 2499},
		{name: "currency prefix with dot", in: "S/. 129", want: 129},
		{name: "lowercase currency prefix", in: "s/ 59.90", want: 59.9},
		{name: "thousands separator", in: "1,299,499.50", want: 1299499.5},
		{name: "non-breaking space padding", in: "S/ 2,499.00", want: 2499},
		{name: "zero parses as zero", in: "0", want: 0},
		{name: "negative parses", in: "-15", want: -15},
		{name: "empty is an error", in: "", wantErr: true},
		{name: "whitespace only is an error", in: "   ", wantErr: true},
		{name: "currency marker only is an error", in: "S/", wantErr: true},
		{name: "letters are an error", in: "gratis", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParsePrice(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Errorf("ParsePrice(%q) error = nil, want error", tc.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePrice(%q) error = %v, want nil", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("ParsePrice(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	n := testNormalizer()

	t.Run("builds a canonical listing", func(t *testing.T) {
		listing, err := n.Normalize(domain.RawListing{
			StoreName:  "Hiraoka Online",
			StoreURL:   "https://hiraoka.com.pe",
			Title:      "Huawei Pura 80",
			Price:      "S/ 2,499.00",
			ProductURL: "https://hiraoka.com.pe/huawei-pura-80",
		})
		if err != nil {
			t.Fatalf("Normalize() error = %v, want nil", err)
		}
		if listing.StoreName != "Hiraoka Online" {
			t.Errorf("StoreName = %q, want Hiraoka Online", listing.StoreName)
		}
		if listing.ProductName != "Huawei Pura 80" {
			t.Errorf("ProductName = %q, want original title", listing.ProductName)
		}
		if listing.Price != 2499 {
			t.Errorf("Price = %v, want 2499", listing.Price)
		}
		if listing.Currency != "PEN" {
			t.Errorf("Currency = %q, want PEN", listing.Currency)
		}
		want := []string{"80", "huawei", "pura"}
		if !reflect.DeepEqual(listing.ComparisonKey, want) {
			t.Errorf("ComparisonKey = %v, want %v", listing.ComparisonKey, want)
		}
	})

	malformed := []struct {
		name string
		raw  domain.RawListing
	}{
		{name: "empty title", raw: domain.RawListing{Title: "", Price: "100"}},
		{name: "blank title", raw: domain.RawListing{Title: "   ", Price: "100"}},
		{name: "missing price", raw: domain.RawListing{Title: "Huawei Pura 80", Price: ""}},
		{name: "non-numeric price", raw: domain.RawListing{Title: "Huawei Pura 80", Price: "consultar"}},
		{name: "negative price", raw: domain.RawListing{Title: "Huawei Pura 80", Price: "-50"}},
		{name: "zero price", raw: domain.RawListing{Title: "Huawei Pura 80", Price: "0"}},
	}

	for _, tc := range malformed {
		t.Run(tc.name+" is malformed", func(t *testing.T) {
			_, err := n.Normalize(tc.raw)
			if !errors.Is(err, domain.ErrMalformedListing) {
				t.Errorf("Normalize() error = %v, want ErrMalformedListing", err)
			}
		})
	}
}

func TestComparisonKey(t *testing.T) {
	n := testNormalizer()

	key := func(t *testing.T, title string) []string {
		t.Helper()
		listing, err := n.Normalize(domain.RawListing{Title: title, Price: "100"})
		if err != nil {
			t.Fatalf("Normalize(%q) error = %v", title, err)
		}
		return listing.ComparisonKey
	}

	testCases := []struct {
		name  string
		title string
		want  []string
	}{
		{
			name:  "lowercases and sorts tokens",
			title: "Pura HUAWEI 80",
			want:  []string{"80", "huawei", "pura"},
		},
		{
			name:  "strips marketing stopwords",
			title: "Huawei Pura 80 Nuevo Original Oferta",
			want:  []string{"80", "huawei", "pura"},
		},
		{
			name:  "strips punctuation",
			title: "Huawei, Pura-80!",
			want:  []string{"80", "huawei", "pura"},
		},
		{
			name:  "drops single-character tokens",
			title: "Huawei Pura 80 X",
			want:  []string{"80", "huawei", "pura"},
		},
		{
			name:  "folds diacritics",
			title: "Batería Huawei",
			want:  []string{"bateria", "huawei"},
		},
		{
			name:  "deduplicates repeated tokens",
			title: "Huawei Huawei Pura",
			want:  []string{"huawei", "pura"},
		},
		{
			name:  "pro modifier is not a stopword",
			title: "Huawei Pura 80 Pro",
			want:  []string{"80", "huawei", "pro", "pura"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := key(t, tc.title)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("comparisonKey(%q) = %v, want %v", tc.title, got, tc.want)
			}
		})
	}

	t.Run("same title always yields the same key", func(t *testing.T) {
		a := key(t, "Huawei Pura 80 Nuevo")
		b := key(t, "Huawei Pura 80 Nuevo")
		if !reflect.DeepEqual(a, b) {
			t.Errorf("keys differ for identical title: %v vs %v", a, b)
		}
	})

	t.Run("titles differing only in case, order and stopwords share a key", func(t *testing.T) {
		a := key(t, "Huawei Pura 80")
		b := key(t, "PURA 80 huawei - Oferta!")
		if !reflect.DeepEqual(a, b) {
			t.Errorf("keys differ: %v vs %v", a, b)
		}
	})
}
