package usecase

import (
	"github.com/buscaprecios/backend/internal/domain"
)

// Cluster groups normalized listings into product clusters by exact
// comparison-key equality. Fuzziness lives upstream in the corrector and
// normalizer; two keys either match or they don't. Within a cluster a
// store appears at most once - a duplicate store keeps only its lower
// price. The cluster's display name is the shortest original title among
// members (shortest titles carry the least marketing text), ties going to
// the first seen. Output order is first-seen key order; any final ordering
// belongs to the scorer and the response shapers.
//
// Clusters partition the input: every listing lands in exactly one cluster.
func Cluster(listings []domain.NormalizedListing) []domain.ProductCluster {
	var order []string
	groups := make(map[string]*domain.ProductCluster)
	// per cluster: store name -> index into Listings, for the dedup rule
	storeIdx := make(map[string]map[string]int)

	for _, l := range listings {
		key := l.KeyString()

		cluster, ok := groups[key]
		if !ok {
			groups[key] = &domain.ProductCluster{
				Key:      key,
				Listings: []domain.NormalizedListing{l},
			}
			storeIdx[key] = map[string]int{l.StoreName: 0}
			order = append(order, key)
			continue
		}

		if idx, dup := storeIdx[key][l.StoreName]; dup {
			if l.Price < cluster.Listings[idx].Price {
				cluster.Listings[idx] = l
			}
		} else {
			storeIdx[key][l.StoreName] = len(cluster.Listings)
			cluster.Listings = append(cluster.Listings, l)
		}
	}

	clusters := make([]domain.ProductCluster, 0, len(order))
	for _, key := range order {
		cluster := groups[key]
		cluster.ProductName = displayName(cluster.Listings)
		clusters = append(clusters, *cluster)
	}
	return clusters
}

// displayName picks the shortest original title among the surviving
// members, first seen winning ties
func displayName(members []domain.NormalizedListing) string {
	name := members[0].ProductName
	for _, l := range members[1:] {
		if len(l.ProductName) < len(name) {
			name = l.ProductName
		}
	}
	return name
}
