package models

import (
	"time"
)

// PriceType describes what unit a distributor price refers to.
type PriceType string

const (
	PriceWholesale PriceType = "wholesale"
	PriceCase      PriceType = "case"
	PriceBottle    PriceType = "bottle"
	PriceKeg       PriceType = "keg"
	PriceUnit      PriceType = "unit"
)

// RawProduct is a normalized listing as emitted by a distributor adapter.
// It is transient: only derived fields are persisted.
type RawProduct struct {
	ExternalID      string                 `json:"external_id"`
	Name            string                 `json:"name"`
	Brand           string                 `json:"brand,omitempty"`
	Category        string                 `json:"category,omitempty"`
	Subcategory     string                 `json:"subcategory,omitempty"`
	VolumeML        *int                   `json:"volume_ml,omitempty"`
	ABV             *float64               `json:"abv,omitempty"`
	Price           *float64               `json:"price,omitempty"`
	PriceType       PriceType              `json:"price_type,omitempty"`
	Inventory       *int                   `json:"inventory,omitempty"`
	InStock         *bool                  `json:"in_stock,omitempty"`
	AvailableStates []string               `json:"available_states,omitempty"`
	UPC             string                 `json:"upc,omitempty"`
	URL             string                 `json:"url,omitempty"`
	ImageURL        string                 `json:"image_url,omitempty"`
	Description     string                 `json:"description,omitempty"`
	RawData         map[string]interface{} `json:"raw_data,omitempty"`
}

// Product is the canonical catalog entity.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Brand       string   `json:"brand,omitempty"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory,omitempty"`
	VolumeML    *int     `json:"volume_ml,omitempty"`
	ABV         *float64 `json:"abv,omitempty"`
	UPC         string   `json:"upc,omitempty"`
	IsActive    bool     `json:"is_active"`
}

// ProductAlias is a durable cross-reference from a (source, external_id)
// pair to a canonical product. Unique on (source, external_id).
type ProductAlias struct {
	ProductID    string    `json:"product_id"`
	Source       string    `json:"source"`
	ExternalID   string    `json:"external_id"`
	ExternalName string    `json:"external_name,omitempty"`
	ExternalURL  string    `json:"external_url,omitempty"`
	Confidence   float64   `json:"confidence"`
	CreatedAt    time.Time `json:"created_at"`
}

// MatchType identifies which cascade step produced a match.
type MatchType string

const (
	MatchUPC    MatchType = "upc"
	MatchAlias  MatchType = "alias"
	MatchFuzzy  MatchType = "fuzzy"
	MatchNew    MatchType = "new"
	MatchReview MatchType = "review"
)

// MatchResult is the outcome of resolving one raw product.
type MatchResult struct {
	Matched    bool      `json:"matched"`
	ProductID  string    `json:"product_id,omitempty"`
	Confidence float64   `json:"confidence"`
	MatchType  MatchType `json:"match_type"`
	IsNew      bool      `json:"is_new"`
}

// NeedsReview reports whether the match fell in the ambiguous band and
// must be routed to manual review instead of being auto-linked.
func (m MatchResult) NeedsReview() bool {
	return m.MatchType == MatchReview
}
