package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"testing"
	"time"

	"gobevtrend_api/internal/catalog/models"
	"gobevtrend_api/internal/ingest"
)

type fakeStateStore struct {
	states map[string]*ScraperState
	errors []string
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{states: make(map[string]*ScraperState)}
}

func (f *fakeStateStore) key(slug string, day time.Time) string {
	return slug + "|" + day.Format("2006-01-02")
}

func (f *fakeStateStore) GetForDay(slug string, day time.Time) (*ScraperState, error) {
	if state, ok := f.states[f.key(slug, day)]; ok {
		copied := *state
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeStateStore) RecordSession(slug string, day time.Time, items, dailyLimit int, lastCategory, lastError string) error {
	key := f.key(slug, day)
	state, ok := f.states[key]
	if !ok {
		state = &ScraperState{DistributorSlug: slug, Date: day, DailyLimit: dailyLimit}
		f.states[key] = state
	}
	state.ItemsScraped += items
	state.LastOffset += items
	state.SessionsToday++
	state.LastCategory = lastCategory
	state.LastError = lastError
	now := time.Now()
	state.LastSessionAt = &now
	return nil
}

func (f *fakeStateStore) RecordError(slug string, day time.Time, dailyLimit int, message string) error {
	f.errors = append(f.errors, message)
	return nil
}

type fakeSink struct {
	batches [][]models.RawProduct
	slugs   []string
}

func (f *fakeSink) Process(rawProducts []models.RawProduct, distributorSlug string) ingest.Stats {
	f.batches = append(f.batches, rawProducts)
	f.slugs = append(f.slugs, distributorSlug)
	return ingest.Stats{Matched: len(rawProducts)}
}

type fakeNotifier struct {
	events []string
}

func (f *fakeNotifier) Notify(event string, _ interface{}) {
	f.events = append(f.events, event)
}

// fakeScraper serves a fixed catalog; failAfter (when >0) fails the request
// once that many products have been served, returning the partial page.
type fakeScraper struct {
	authOK     bool
	catalog    int
	served     int
	failAfter  int
	categories []Category
}

func (f *fakeScraper) Authenticate(context.Context) (bool, error) {
	return f.authOK, nil
}

func (f *fakeScraper) GetCategories(context.Context) ([]Category, error) {
	return f.categories, nil
}

func (f *fakeScraper) GetProducts(_ context.Context, category *Category, limit, offset int) ([]models.RawProduct, error) {
	var page []models.RawProduct
	for i := 0; i < limit && offset+i < f.catalog; i++ {
		if f.failAfter > 0 && f.served >= f.failAfter {
			return page, fmt.Errorf("connection reset")
		}
		page = append(page, models.RawProduct{
			ExternalID: fmt.Sprintf("item-%d", offset+i),
			Name:       fmt.Sprintf("Item %d", offset+i),
		})
		f.served++
	}
	return page, nil
}

func newTestOrchestrator(t *testing.T, scraperImpl DistributorScraper, states StateStore, sink ProductSink, notifier Notifier, config Config) *Orchestrator {
	t.Helper()
	registry := NewRegistry()
	registry.Register("libdib", scraperImpl)
	config.Hours = mustHours(t, 0, 24, false)
	o := NewOrchestrator(registry, states, sink, notifier, map[string]Config{"libdib": config}, io.Discard)
	o.sleep = func(time.Duration) {}
	o.rng = rand.New(rand.NewSource(1))
	o.now = func() time.Time { return time.Date(2026, 3, 4, 11, 0, 0, 0, time.UTC) }
	return o
}

func TestSessionConsumesBudget(t *testing.T) {
	states := newFakeStateStore()
	sink := &fakeSink{}
	scraperImpl := &fakeScraper{authOK: true, catalog: 1000, categories: []Category{{ID: "c1", Name: "Spirits"}}}
	o := newTestOrchestrator(t, scraperImpl, states, sink, &fakeNotifier{}, Config{
		DailyLimit: 50, BatchSize: 20,
	})

	report, err := o.RunSession(context.Background(), "libdib")
	if err != nil {
		t.Fatalf("run session: %v", err)
	}
	if report.Skipped || report.Items != 20 {
		t.Fatalf("want 20 items, got %+v", report)
	}

	state, _ := states.GetForDay("libdib", o.now())
	if state.ItemsScraped != 20 || state.SessionsToday != 1 || state.LastOffset != 20 {
		t.Fatalf("state after session: %+v", state)
	}
	if state.LastError != "" {
		t.Fatalf("clean session must clear the error text, got %q", state.LastError)
	}
}

func TestSessionCapsAtRemainingBudget(t *testing.T) {
	states := newFakeStateStore()
	day := time.Date(2026, 3, 4, 11, 0, 0, 0, time.UTC)
	states.RecordSession("libdib", day, 45, 50, "Spirits", "")

	sink := &fakeSink{}
	scraperImpl := &fakeScraper{authOK: true, catalog: 1000, categories: []Category{{ID: "c1", Name: "Spirits"}}}
	o := newTestOrchestrator(t, scraperImpl, states, sink, &fakeNotifier{}, Config{
		DailyLimit: 50, BatchSize: 20,
	})

	report, err := o.RunSession(context.Background(), "libdib")
	if err != nil {
		t.Fatalf("run session: %v", err)
	}
	if report.Items != 5 {
		t.Fatalf("want 5 items (remaining budget), got %d", report.Items)
	}
	state, _ := states.GetForDay("libdib", day)
	if state.ItemsScraped != 50 || state.SessionsToday != 2 {
		t.Fatalf("state after capped session: %+v", state)
	}
}

func TestExhaustedBudgetSkipsWithoutMutation(t *testing.T) {
	states := newFakeStateStore()
	day := time.Date(2026, 3, 4, 11, 0, 0, 0, time.UTC)
	states.RecordSession("libdib", day, 50, 50, "Spirits", "")

	notifier := &fakeNotifier{}
	sink := &fakeSink{}
	scraperImpl := &fakeScraper{authOK: true, catalog: 1000}
	o := newTestOrchestrator(t, scraperImpl, states, sink, notifier, Config{
		DailyLimit: 50, BatchSize: 20,
	})

	report, err := o.RunSession(context.Background(), "libdib")
	if err != nil {
		t.Fatalf("run session: %v", err)
	}
	if !report.Skipped || report.Items != 0 {
		t.Fatalf("want skipped report, got %+v", report)
	}
	state, _ := states.GetForDay("libdib", day)
	if state.SessionsToday != 1 || state.ItemsScraped != 50 {
		t.Fatalf("exhausted budget must not mutate state: %+v", state)
	}
	if len(sink.batches) != 0 {
		t.Fatalf("exhausted budget must not scrape")
	}
	if len(notifier.events) != 1 || notifier.events[0] != "budget_exhausted" {
		t.Fatalf("want budget_exhausted notification, got %v", notifier.events)
	}
}

func TestOutsideBusinessHoursSkipPurity(t *testing.T) {
	states := newFakeStateStore()
	scraperImpl := &fakeScraper{authOK: true, catalog: 1000}
	registry := NewRegistry()
	registry.Register("libdib", scraperImpl)

	config := Config{DailyLimit: 50, BatchSize: 20, Hours: mustHours(t, 9, 17, false)}
	o := NewOrchestrator(registry, states, &fakeSink{}, &fakeNotifier{}, map[string]Config{"libdib": config}, io.Discard)
	o.sleep = func(time.Duration) {}
	o.now = func() time.Time { return time.Date(2026, 3, 4, 22, 0, 0, 0, time.UTC) }

	report, err := o.RunSession(context.Background(), "libdib")
	if err != nil {
		t.Fatalf("run session: %v", err)
	}
	if !report.Skipped || report.SkipReason != "outside business hours" {
		t.Fatalf("want outside-hours skip, got %+v", report)
	}
	if len(states.states) != 0 || len(states.errors) != 0 {
		t.Fatalf("outside-hours skip must leave state untouched")
	}
}

func TestAuthenticationFailureConsumesNoBudget(t *testing.T) {
	states := newFakeStateStore()
	notifier := &fakeNotifier{}
	scraperImpl := &fakeScraper{authOK: false, catalog: 1000}
	o := newTestOrchestrator(t, scraperImpl, states, &fakeSink{}, notifier, Config{
		DailyLimit: 50, BatchSize: 20,
	})

	_, err := o.RunSession(context.Background(), "libdib")
	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("want AuthenticationError, got %v", err)
	}
	if len(notifier.events) != 1 || notifier.events[0] != "authentication_failure" {
		t.Fatalf("want authentication_failure notification, got %v", notifier.events)
	}
	state, _ := states.GetForDay("libdib", o.now())
	if state != nil && state.ItemsScraped != 0 {
		t.Fatalf("auth failure must not consume budget: %+v", state)
	}
	if len(states.errors) != 1 {
		t.Fatalf("auth failure must be recorded for the status surface")
	}
}

func TestTransientFailureKeepsPartialResults(t *testing.T) {
	states := newFakeStateStore()
	sink := &fakeSink{}
	// Pages of 25; the second page fails after 30 served items, returning a
	// 5-item partial page.
	scraperImpl := &fakeScraper{authOK: true, catalog: 1000, failAfter: 30,
		categories: []Category{{ID: "c1", Name: "Spirits"}}}
	o := newTestOrchestrator(t, scraperImpl, states, sink, &fakeNotifier{}, Config{
		DailyLimit: 200, BatchSize: 100,
	})

	report, err := o.RunSession(context.Background(), "libdib")
	if err != nil {
		t.Fatalf("partial session should not error: %v", err)
	}
	if report.Items != 30 {
		t.Fatalf("want 30 partial items kept, got %d", report.Items)
	}
	state, _ := states.GetForDay("libdib", o.now())
	if state.ItemsScraped != 30 || state.LastOffset != 30 || state.SessionsToday != 1 {
		t.Fatalf("partial progress must be persisted: %+v", state)
	}
	if state.LastError == "" {
		t.Fatalf("early session end must keep its error text on the ledger")
	}
	if len(sink.batches) != 1 || len(sink.batches[0]) != 30 {
		t.Fatalf("partial products must be pipelined")
	}
}

func TestCategoryRotationFollowsSessionCount(t *testing.T) {
	states := newFakeStateStore()
	day := time.Date(2026, 3, 4, 11, 0, 0, 0, time.UTC)
	// Two sessions already ran today: the next category index is 2.
	states.RecordSession("libdib", day, 10, 500, "Spirits", "")
	states.RecordSession("libdib", day, 10, 500, "Wine", "")

	sink := &fakeSink{}
	scraperImpl := &fakeScraper{authOK: true, catalog: 1000, categories: []Category{
		{ID: "c1", Name: "Spirits"}, {ID: "c2", Name: "Wine"}, {ID: "c3", Name: "Beer"},
	}}
	o := newTestOrchestrator(t, scraperImpl, states, sink, &fakeNotifier{}, Config{
		DailyLimit: 500, BatchSize: 10,
	})

	if _, err := o.RunSession(context.Background(), "libdib"); err != nil {
		t.Fatalf("run session: %v", err)
	}
	state, _ := states.GetForDay("libdib", day)
	if state.LastCategory != "Beer" {
		t.Fatalf("category rotation: want Beer got %q", state.LastCategory)
	}
}

func TestRoundRobinSurvivesOneFailure(t *testing.T) {
	states := newFakeStateStore()
	sink := &fakeSink{}
	registry := NewRegistry()
	registry.Register("libdib", &fakeScraper{authOK: false, catalog: 100})
	registry.Register("sgws", &fakeScraper{authOK: true, catalog: 100,
		categories: []Category{{ID: "c1", Name: "Spirits"}}})

	hours := mustHours(t, 0, 24, false)
	configs := map[string]Config{
		"libdib": {DailyLimit: 50, BatchSize: 10, Hours: hours},
		"sgws":   {DailyLimit: 50, BatchSize: 10, Hours: hours},
	}
	o := NewOrchestrator(registry, states, sink, &fakeNotifier{}, configs, io.Discard)
	o.sleep = func(time.Duration) {}
	o.rng = rand.New(rand.NewSource(1))
	o.now = func() time.Time { return time.Date(2026, 3, 4, 11, 0, 0, 0, time.UTC) }

	reports := o.RunRoundRobin(context.Background(), []string{"libdib", "sgws"})
	if len(reports) != 2 {
		t.Fatalf("want 2 reports, got %d", len(reports))
	}
	if reports[1].Items != 10 {
		t.Fatalf("second distributor should proceed after first fails: %+v", reports[1])
	}
}
