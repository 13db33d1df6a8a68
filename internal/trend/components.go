package trend

import (
	"math"
	"time"
)

const (
	ComponentRetail    = "retail"
	ComponentPrice     = "price"
	ComponentInventory = "inventory"
	ComponentMedia     = "media"
	ComponentSeasonal  = "seasonal"
	ComponentSocial    = "social"
)

// PricePoint is one observed price inside the signal window.
type PricePoint struct {
	Price      float64
	RecordedAt time.Time
}

// InventoryPoint is one observed stock level inside the signal window.
type InventoryPoint struct {
	Inventory  int
	InStock    bool
	RecordedAt time.Time
}

// ProductSignals is the aggregate signal window one score calculation
// consumes. Zero values mean the signal is absent for the window.
type ProductSignals struct {
	ProductID        string
	Category         string
	DistributorCount int
	NewListings      int
	StateCount       int
	PricePoints      []PricePoint
	InventoryPoints  []InventoryPoint
	MediaMentions    int
	MediaSentiment   float64 // -1..1
	SocialMentions   int
	SignalCount      int
}

type componentFunc func(signals *ProductSignals, asOf time.Time) int

var componentFuncs = map[string]componentFunc{
	ComponentRetail:    retailScore,
	ComponentPrice:     priceScore,
	ComponentInventory: inventoryScore,
	ComponentMedia:     mediaScore,
	ComponentSeasonal:  seasonalScore,
	ComponentSocial:    socialScore,
}

// retailScore: base from distinct-distributor presence, boosted for new
// listings inside the window and for state-availability breadth.
func retailScore(s *ProductSignals, _ time.Time) int {
	base := s.DistributorCount * 15
	if base > 60 {
		base = 60
	}
	if s.NewListings > 0 {
		base += 20
	}
	breadth := s.StateCount * 2
	if breadth > 20 {
		breadth = 20
	}
	return clampScore(base + breadth)
}

// priceScore: base from price-volatility banding (coefficient of variation),
// boosted when the latest observation is a discount against the window mean.
func priceScore(s *ProductSignals, _ time.Time) int {
	if len(s.PricePoints) == 0 {
		return 50
	}
	mean, stddev := priceStats(s.PricePoints)
	if mean <= 0 {
		return 50
	}
	cov := stddev / mean

	var base int
	switch {
	case cov >= 0.15:
		base = 80
	case cov >= 0.08:
		base = 65
	case cov >= 0.03:
		base = 50
	default:
		base = 35
	}
	latest := s.PricePoints[len(s.PricePoints)-1].Price
	if latest < mean*0.95 {
		base += 15
	}
	return clampScore(base)
}

// inventoryScore: base from in-stock percentage, boosted by net
// stock-decrease velocity across the window (sell-through).
func inventoryScore(s *ProductSignals, _ time.Time) int {
	if len(s.InventoryPoints) == 0 {
		return 50
	}
	inStock := 0
	for _, p := range s.InventoryPoints {
		if p.InStock {
			inStock++
		}
	}
	pct := float64(inStock) / float64(len(s.InventoryPoints))
	base := int(pct * 60)

	first := s.InventoryPoints[0].Inventory
	last := s.InventoryPoints[len(s.InventoryPoints)-1].Inventory
	if first > 0 && last < first {
		velocity := float64(first-last) / float64(first)
		base += int(velocity * 40)
	}
	return clampScore(base)
}

// mediaScore: mention count plus a sentiment shift. No mentions means no
// buzz, not a neutral signal.
func mediaScore(s *ProductSignals, _ time.Time) int {
	if s.MediaMentions == 0 {
		return 0
	}
	base := s.MediaMentions * 10
	if base > 70 {
		base = 70
	}
	base += int((s.MediaSentiment + 1) / 2 * 30)
	return clampScore(base)
}

// socialScore: alternative buzz component for deployments tracking social
// feeds instead of inventory movement.
func socialScore(s *ProductSignals, _ time.Time) int {
	if s.SocialMentions == 0 {
		return 0
	}
	base := s.SocialMentions * 5
	return clampScore(base)
}

// seasonalScore reads a static calendar: month base per category with
// holiday spikes. See seasonal.go.
func seasonalScore(s *ProductSignals, asOf time.Time) int {
	return clampScore(seasonalBase(s.Category, asOf))
}

func priceStats(points []PricePoint) (mean, stddev float64) {
	for _, p := range points {
		mean += p.Price
	}
	mean /= float64(len(points))
	if len(points) < 2 {
		return mean, 0
	}
	var sumSq float64
	for _, p := range points {
		d := p.Price - mean
		sumSq += d * d
	}
	return mean, math.Sqrt(sumSq / float64(len(points)-1))
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
