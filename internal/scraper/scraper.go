package scraper

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gobevtrend_api/internal/catalog/models"
)

// Category is one browsable section of a distributor's catalog.
type Category struct {
	ID   string
	Name string
}

// DistributorScraper is the capability each distributor adapter implements.
// Implementations must distinguish authentication failure (false, nil) from
// "no more data" (empty slice, nil) from transient errors (non-nil error).
// A transient error may still return the partial page collected before it.
type DistributorScraper interface {
	Authenticate(ctx context.Context) (bool, error)
	GetCategories(ctx context.Context) ([]Category, error)
	GetProducts(ctx context.Context, category *Category, limit, offset int) ([]models.RawProduct, error)
}

// HomepageVisitor is an optional capability used for noise actions. Adapters
// without it simply get fewer noise variants.
type HomepageVisitor interface {
	VisitHomepage(ctx context.Context) error
}

// Registry maps distributor slugs to their adapters. Dispatch by slug
// replaces per-distributor subclassing.
type Registry struct {
	mu       sync.RWMutex
	scrapers map[string]DistributorScraper
}

func NewRegistry() *Registry {
	return &Registry{scrapers: make(map[string]DistributorScraper)}
}

func (r *Registry) Register(slug string, scraper DistributorScraper) {
	r.mu.Lock()
	r.scrapers[slug] = scraper
	r.mu.Unlock()
}

func (r *Registry) Get(slug string) (DistributorScraper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	scraper, ok := r.scrapers[slug]
	if !ok {
		return nil, fmt.Errorf("no scraper registered for distributor %q", slug)
	}
	return scraper, nil
}

func (r *Registry) Slugs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	slugs := make([]string, 0, len(r.scrapers))
	for slug := range r.scrapers {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}
