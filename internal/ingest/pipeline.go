package ingest

import (
	"io"
	"time"

	"gobevtrend_api/internal/catalog/matching"
	"gobevtrend_api/internal/catalog/models"
	"gobevtrend_api/metrics"
	"gobevtrend_api/pkg/logger"
)

// HistoryStore receives the per-observation history rows the pipeline emits.
type HistoryStore interface {
	RecordPrice(productID, distributorSlug string, price float64, priceType models.PriceType, recordedAt time.Time) error
	RecordInventory(productID, distributorSlug string, inventory *int, inStock bool, availableStates []string, recordedAt time.Time) error
}

// Stats summarizes one processed batch.
type Stats struct {
	Matched int `json:"matched"`
	Created int `json:"created"`
	Queued  int `json:"queued"`
	Failed  int `json:"failed"`
}

func (s Stats) Total() int {
	return s.Matched + s.Created + s.Queued + s.Failed
}

// Pipeline glues a batch of raw products through the matcher and the
// history writers. One malformed item never aborts the batch.
type Pipeline struct {
	matcher  *matching.Matcher
	history  HistoryStore
	counters *metrics.IngestMetrics
	log      logger.Logger
}

func NewPipeline(matcher *matching.Matcher, history HistoryStore, counters *metrics.IngestMetrics, writer io.Writer) *Pipeline {
	if counters == nil {
		counters = &metrics.IngestMetrics{}
	}
	return &Pipeline{
		matcher:  matcher,
		history:  history,
		counters: counters,
		log:      logger.NewLogger(writer, "[Pipeline]"),
	}
}

// Process resolves each raw product and records observations for auto-linked
// matches. The matcher session, and with it the candidate cache, lives for
// exactly one invocation.
func (p *Pipeline) Process(rawProducts []models.RawProduct, distributorSlug string) Stats {
	session := p.matcher.NewSession()
	now := time.Now().UTC()

	var stats Stats
	for i := range rawProducts {
		raw := &rawProducts[i]

		result, err := session.Match(raw, distributorSlug)
		if err != nil {
			p.log.Log("match failed for %s/%s: %v", distributorSlug, raw.ExternalID, err)
			stats.Failed++
			continue
		}
		if !result.Matched {
			stats.Failed++
			continue
		}
		metrics.RecordMatch(string(result.MatchType))

		if result.NeedsReview() {
			// Ambiguous: no alias, no history. Routed to manual review.
			stats.Queued++
			continue
		}

		// A lost observation is an item failure: the product link exists but
		// the data point this batch was supposed to capture does not.
		if err := p.recordHistory(raw, result.ProductID, distributorSlug, now); err != nil {
			p.log.Log("history write failed for %s/%s: %v", distributorSlug, raw.ExternalID, err)
			stats.Failed++
			continue
		}
		if result.IsNew {
			stats.Created++
		} else {
			stats.Matched++
		}
	}

	p.counters.MatchedCount.Add(int32(stats.Matched))
	p.counters.CreatedCount.Add(int32(stats.Created))
	p.counters.QueuedCount.Add(int32(stats.Queued))
	p.counters.FailedCount.Add(int32(stats.Failed))
	p.counters.SessionsCount.Add(1)

	p.log.Log("batch %s: %d matched, %d created, %d queued, %d failed",
		distributorSlug, stats.Matched, stats.Created, stats.Queued, stats.Failed)
	return stats
}

func (p *Pipeline) recordHistory(raw *models.RawProduct, productID, distributorSlug string, recordedAt time.Time) error {
	if raw.Price != nil {
		priceType := raw.PriceType
		if priceType == "" {
			priceType = models.PriceWholesale
		}
		if err := p.history.RecordPrice(productID, distributorSlug, *raw.Price, priceType, recordedAt); err != nil {
			return err
		}
	}
	if raw.Inventory != nil || raw.InStock != nil {
		inStock := raw.Inventory != nil && *raw.Inventory > 0
		if raw.InStock != nil {
			inStock = *raw.InStock
		}
		if err := p.history.RecordInventory(productID, distributorSlug, raw.Inventory, inStock, raw.AvailableStates, recordedAt); err != nil {
			return err
		}
	}
	return nil
}
