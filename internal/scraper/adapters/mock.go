package adapters

import (
	"context"
	"fmt"

	"gobevtrend_api/internal/catalog/models"
	"gobevtrend_api/internal/scraper"
)

// MockScraper is an offline-safe DistributorScraper: deterministic catalog,
// no network. It stands in for real adapters in wiring and tests.
type MockScraper struct {
	Slug         string
	CatalogSize  int
	categories   []scraper.Category
	FailAuth     bool
	homepageHits int
}

func NewMockScraper(slug string, catalogSize int) *MockScraper {
	return &MockScraper{
		Slug:        slug,
		CatalogSize: catalogSize,
		categories: []scraper.Category{
			{ID: "spirits", Name: "Spirits"},
			{ID: "wine", Name: "Wine"},
			{ID: "beer", Name: "Beer"},
		},
	}
}

func (m *MockScraper) Authenticate(_ context.Context) (bool, error) {
	return !m.FailAuth, nil
}

func (m *MockScraper) GetCategories(_ context.Context) ([]scraper.Category, error) {
	out := make([]scraper.Category, len(m.categories))
	copy(out, m.categories)
	return out, nil
}

func (m *MockScraper) GetProducts(_ context.Context, category *scraper.Category, limit, offset int) ([]models.RawProduct, error) {
	categoryID := "spirits"
	if category != nil {
		categoryID = category.ID
	}

	var products []models.RawProduct
	for i := offset; i < offset+limit && i < m.CatalogSize; i++ {
		price := 18.50 + float64(i%40)
		volume := 750
		inventory := 12 + i%60
		inStock := true
		products = append(products, models.RawProduct{
			ExternalID: fmt.Sprintf("%s-%s-%04d", m.Slug, categoryID, i),
			Name:       fmt.Sprintf("Sample %s Item %d 750ml", categoryID, i),
			Brand:      fmt.Sprintf("House %d", i%7),
			Category:   categoryID,
			VolumeML:   &volume,
			Price:      &price,
			PriceType:  models.PriceWholesale,
			Inventory:  &inventory,
			InStock:    &inStock,
			RawData:    map[string]interface{}{"mock": true},
		})
	}
	return products, nil
}

func (m *MockScraper) VisitHomepage(_ context.Context) error {
	m.homepageHits++
	return nil
}
