package ingest

import (
	"fmt"
	"io"
	"testing"
	"time"

	"gobevtrend_api/internal/catalog/matching"
	"gobevtrend_api/internal/catalog/models"
	"gobevtrend_api/metrics"
)

type fakeProductStore struct {
	products []models.Product
}

func (f *fakeProductStore) GetByUPC(upc string) (*models.Product, error) {
	for i := range f.products {
		if f.products[i].UPC == upc && f.products[i].IsActive {
			return &f.products[i], nil
		}
	}
	return nil, nil
}

func (f *fakeProductStore) Create(product *models.Product) error {
	f.products = append(f.products, *product)
	return nil
}

func (f *fakeProductStore) ActiveCandidates(category string, limit int) ([]models.Product, error) {
	var out []models.Product
	for _, p := range f.products {
		if !p.IsActive {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, p)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

type fakeAliasStore struct {
	aliases map[string]models.ProductAlias
}

func newFakeAliasStore() *fakeAliasStore {
	return &fakeAliasStore{aliases: make(map[string]models.ProductAlias)}
}

func (f *fakeAliasStore) Find(source, externalID string) (*models.ProductAlias, error) {
	if alias, ok := f.aliases[source+"|"+externalID]; ok {
		return &alias, nil
	}
	return nil, nil
}

func (f *fakeAliasStore) Create(alias *models.ProductAlias) error {
	key := alias.Source + "|" + alias.ExternalID
	if _, ok := f.aliases[key]; ok {
		return nil
	}
	f.aliases[key] = *alias
	return nil
}

type priceRow struct {
	productID string
	price     float64
	priceType models.PriceType
}

type inventoryRow struct {
	productID string
	inStock   bool
}

type fakeHistoryStore struct {
	prices      []priceRow
	inventories []inventoryRow
	failFor     string
}

func (f *fakeHistoryStore) RecordPrice(productID, _ string, price float64, priceType models.PriceType, _ time.Time) error {
	if f.failFor == productID {
		return fmt.Errorf("history write failed")
	}
	f.prices = append(f.prices, priceRow{productID: productID, price: price, priceType: priceType})
	return nil
}

func (f *fakeHistoryStore) RecordInventory(productID, _ string, _ *int, inStock bool, _ []string, _ time.Time) error {
	if f.failFor == productID {
		return fmt.Errorf("history write failed")
	}
	f.inventories = append(f.inventories, inventoryRow{productID: productID, inStock: inStock})
	return nil
}

func newTestPipeline(products *fakeProductStore, history *fakeHistoryStore, counters *metrics.IngestMetrics) *Pipeline {
	matcher := matching.NewMatcher(products, newFakeAliasStore(), matching.Config{AllowCreate: true}, io.Discard)
	return NewPipeline(matcher, history, counters, io.Discard)
}

func TestProcessCountsEveryOutcome(t *testing.T) {
	volume := 750
	price := 24.99
	inventory := 12
	newPrice := 39.0
	reviewPrice := 18.5

	products := &fakeProductStore{products: []models.Product{
		{ID: "p1", Name: "Eagle Rare 10 Year", Category: "spirits", UPC: "12345678905", IsActive: true},
		{ID: "p2", Name: "Eagle Rare Kentucky Rare Straight", Category: "spirits",
			VolumeML: &volume, IsActive: true},
	}}
	history := &fakeHistoryStore{}
	pipeline := newTestPipeline(products, history, nil)

	batch := []models.RawProduct{
		// Exact UPC hit with both observations.
		{ExternalID: "x-1", Name: "Eagle Rare 10yr", UPC: "012345678905",
			Price: &price, Inventory: &inventory},
		// Unseen listing, becomes a new product with a price row.
		{ExternalID: "x-2", Name: "Casa Noble Anejo", Category: "Tequila", Price: &newPrice},
		// Ambiguous band against p2.
		{ExternalID: "x-3", Name: "Eagle Rare Kentucky Rare", Category: "bourbon", Price: &reviewPrice},
		// No usable name.
		{ExternalID: "x-4", Name: "   750ml  "},
	}

	stats := pipeline.Process(batch, "libdib")
	want := Stats{Matched: 1, Created: 1, Queued: 1, Failed: 1}
	if stats != want {
		t.Fatalf("stats: want %+v got %+v", want, stats)
	}
	if stats.Total() != len(batch) {
		t.Fatalf("total: want %d got %d", len(batch), stats.Total())
	}

	if len(history.prices) != 2 {
		t.Fatalf("price rows: want 2 got %d", len(history.prices))
	}
	for _, row := range history.prices {
		if row.productID == "p2" {
			t.Fatalf("ambiguous match must not write history, got price row for p2")
		}
	}
	if len(history.inventories) != 1 {
		t.Fatalf("inventory rows: want 1 got %d", len(history.inventories))
	}
	if got := history.inventories[0]; got.productID != "p1" || !got.inStock {
		t.Fatalf("inventory row: want p1 in stock, got %+v", got)
	}
}

func TestProcessDefaultsPriceType(t *testing.T) {
	price := 12.5
	products := &fakeProductStore{products: []models.Product{
		{ID: "p1", Name: "Weller Special Reserve", Category: "spirits", UPC: "12345678905", IsActive: true},
	}}
	history := &fakeHistoryStore{}
	pipeline := newTestPipeline(products, history, nil)

	pipeline.Process([]models.RawProduct{
		{ExternalID: "x-1", Name: "Weller Special Rsv", UPC: "12345678905", Price: &price},
	}, "sgws")

	if len(history.prices) != 1 {
		t.Fatalf("price rows: want 1 got %d", len(history.prices))
	}
	if history.prices[0].priceType != models.PriceWholesale {
		t.Fatalf("price type: want wholesale got %s", history.prices[0].priceType)
	}
}

func TestHistoryWriteFailureCountsAsFailed(t *testing.T) {
	price := 24.99
	otherPrice := 31.0
	products := &fakeProductStore{products: []models.Product{
		{ID: "p1", Name: "Eagle Rare 10 Year", Category: "spirits", UPC: "12345678905", IsActive: true},
		{ID: "p2", Name: "Weller Special Reserve", Category: "spirits", UPC: "99945678905", IsActive: true},
	}}
	history := &fakeHistoryStore{failFor: "p1"}
	pipeline := newTestPipeline(products, history, nil)

	stats := pipeline.Process([]models.RawProduct{
		{ExternalID: "x-1", Name: "Eagle Rare 10yr", UPC: "12345678905", Price: &price},
		{ExternalID: "x-2", Name: "Weller Special Rsv", UPC: "99945678905", Price: &otherPrice},
	}, "libdib")

	// The lost observation fails its item; the rest of the batch proceeds.
	want := Stats{Matched: 1, Failed: 1}
	if stats != want {
		t.Fatalf("stats: want %+v got %+v", want, stats)
	}
	if len(history.prices) != 1 || history.prices[0].productID != "p2" {
		t.Fatalf("surviving item should still record history: %+v", history.prices)
	}
}

func TestProcessAccumulatesCounters(t *testing.T) {
	products := &fakeProductStore{}
	counters := &metrics.IngestMetrics{}
	pipeline := newTestPipeline(products, &fakeHistoryStore{}, counters)

	pipeline.Process([]models.RawProduct{
		{ExternalID: "x-1", Name: "Casa Noble Anejo", Category: "tequila"},
	}, "rndc")
	pipeline.Process([]models.RawProduct{
		{ExternalID: "x-1", Name: "Casa Noble Anejo", Category: "tequila"},
	}, "rndc")

	// First run creates, second resolves through the stored alias.
	if got := counters.CreatedCount.Load(); got != 1 {
		t.Fatalf("created counter: want 1 got %d", got)
	}
	if got := counters.MatchedCount.Load(); got != 1 {
		t.Fatalf("matched counter: want 1 got %d", got)
	}
	if got := counters.SessionsCount.Load(); got != 2 {
		t.Fatalf("sessions counter: want 2 got %d", got)
	}
}
