package app

import (
	"encoding/json"
	"net/http"

	"gobevtrend_api/internal/catalog/models"
	"gobevtrend_api/internal/trend"
)

// Read surface the product lookup endpoint needs from the repositories.
type ProductReader interface {
	GetByID(id string) (*models.Product, error)
}

type AliasLister interface {
	ListForProduct(productID string) ([]models.ProductAlias, error)
}

type TrendReader interface {
	GetCurrent(productID string) (*trend.CurrentScore, error)
}

// productStatusHandler serves one product's catalog entry, its distributor
// aliases and its current trend score: GET /products?id=<uuid>.
func productStatusHandler(products ProductReader, aliases AliasLister, trends TrendReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "missing id parameter", http.StatusBadRequest)
			return
		}

		product, err := products.GetByID(id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if product == nil {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}

		aliasRows, err := aliases.ListForProduct(id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		current, err := trends.GetCurrent(id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"product": product,
			"aliases": aliasRows,
			"trend":   current,
		})
	}
}
