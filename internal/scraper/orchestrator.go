package scraper

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"golang.org/x/time/rate"

	"gobevtrend_api/internal/catalog/models"
	"gobevtrend_api/internal/ingest"
	"gobevtrend_api/metrics"
	"gobevtrend_api/pkg/logger"
)

const (
	// requestPageSize is how many items one underlying catalog request asks
	// for. Sessions page through the batch so human-like delays can be
	// injected between requests.
	requestPageSize = 25

	// Round-robin runs wait noticeably longer between distributors than
	// between pages of one session.
	interDistributorMinDelay = 60 * time.Second
	interDistributorMaxDelay = 180 * time.Second

	defaultAuthTimeout    = 45 * time.Second
	defaultRequestTimeout = 10 * time.Second
)

// Config is the per-distributor stealth tuning.
type Config struct {
	DailyLimit     int
	BatchSize      int
	MinDelay       time.Duration
	MaxDelay       time.Duration
	NoiseRatio     float64
	Hours          BusinessHours
	AuthTimeout    time.Duration
	RequestTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.AuthTimeout == 0 {
		c.AuthTimeout = defaultAuthTimeout
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.BatchSize <= 0 {
		c.BatchSize = requestPageSize
	}
	return c
}

// StateStore is the persisted session ledger the orchestrator drives.
type StateStore interface {
	GetForDay(slug string, day time.Time) (*ScraperState, error)
	RecordSession(slug string, day time.Time, items, dailyLimit int, lastCategory, lastError string) error
	RecordError(slug string, day time.Time, dailyLimit int, message string) error
}

// ProductSink receives a session's scraped products.
type ProductSink interface {
	Process(rawProducts []models.RawProduct, distributorSlug string) ingest.Stats
}

// Notifier is the fire-and-forget operator channel.
type Notifier interface {
	Notify(event string, payload interface{})
}

// SessionReport describes one orchestrator invocation.
type SessionReport struct {
	Distributor string       `json:"distributor"`
	Items       int          `json:"items"`
	Stats       ingest.Stats `json:"stats"`
	Skipped     bool         `json:"skipped"`
	SkipReason  string       `json:"skip_reason,omitempty"`
}

// Orchestrator runs stealth scrape sessions: one distributor at a time,
// inside business hours, under the daily budget, with human-like pacing.
// Sessions are deliberately serialized; parallel sessions would defeat the
// timing camouflage that is the whole point.
type Orchestrator struct {
	registry *Registry
	states   StateStore
	sink     ProductSink
	notifier Notifier
	configs  map[string]Config
	limiters map[string]*rate.Limiter
	rng      *rand.Rand
	sleep    func(time.Duration)
	now      func() time.Time
	log      logger.Logger
}

func NewOrchestrator(registry *Registry, states StateStore, sink ProductSink, notifier Notifier, configs map[string]Config, writer io.Writer) *Orchestrator {
	limiters := make(map[string]*rate.Limiter, len(configs))
	normalized := make(map[string]Config, len(configs))
	for slug, config := range configs {
		config = config.withDefaults()
		normalized[slug] = config
		// Pacing floor: even with zero-length random delays no distributor
		// sees more than a page request every MinDelay.
		interval := config.MinDelay
		if interval <= 0 {
			interval = time.Second
		}
		limiters[slug] = rate.NewLimiter(rate.Every(interval), 1)
	}
	return &Orchestrator{
		registry: registry,
		states:   states,
		sink:     sink,
		notifier: notifier,
		configs:  normalized,
		limiters: limiters,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:    time.Sleep,
		now:      time.Now,
		log:      logger.NewLogger(writer, "[Orchestrator]"),
	}
}

// RunSession executes one scrape-then-pipeline cycle for a distributor.
// Guard conditions (outside hours, exhausted budget) return a skipped report
// with nil error and mutate nothing.
func (o *Orchestrator) RunSession(ctx context.Context, slug string) (*SessionReport, error) {
	config, ok := o.configs[slug]
	if !ok {
		return nil, fmt.Errorf("no configuration for distributor %q", slug)
	}
	report := &SessionReport{Distributor: slug}
	now := o.now()

	if !config.Hours.Within(now) {
		report.Skipped = true
		report.SkipReason = "outside business hours"
		return report, nil
	}

	day := now.In(config.Hours.Location)
	state, err := o.states.GetForDay(slug, day)
	if err != nil {
		return nil, err
	}
	remaining := config.DailyLimit
	sessionsToday := 0
	offset := 0
	if state != nil {
		remaining = state.Remaining()
		sessionsToday = state.SessionsToday
		offset = state.LastOffset
	}
	if remaining <= 0 {
		report.Skipped = true
		report.SkipReason = "daily budget exhausted"
		o.notifier.Notify("budget_exhausted", map[string]interface{}{
			"distributor": slug,
			"daily_limit": config.DailyLimit,
		})
		return report, nil
	}

	scraper, err := o.registry.Get(slug)
	if err != nil {
		return nil, err
	}

	authCtx, cancel := context.WithTimeout(ctx, config.AuthTimeout)
	authenticated, err := scraper.Authenticate(authCtx)
	cancel()
	if err != nil || !authenticated {
		authErr := &AuthenticationError{Distributor: slug, Err: err}
		o.notifier.Notify("authentication_failure", map[string]interface{}{
			"distributor": slug,
			"error":       authErr.Error(),
		})
		if storeErr := o.states.RecordError(slug, day, config.DailyLimit, authErr.Error()); storeErr != nil {
			o.log.Log("failed to record auth error for %s: %v", slug, storeErr)
		}
		return report, authErr
	}

	// Warm-up noise before any real request.
	o.maybeNoise(ctx, slug, scraper, config)

	categories, err := scraper.GetCategories(ctx)
	if err != nil {
		scrapeErr := &TransientScrapeError{Distributor: slug, Err: err}
		if storeErr := o.states.RecordError(slug, day, config.DailyLimit, scrapeErr.Error()); storeErr != nil {
			o.log.Log("failed to record scrape error for %s: %v", slug, storeErr)
		}
		return report, scrapeErr
	}

	var category *Category
	categoryName := ""
	if len(categories) > 0 {
		category = &categories[sessionsToday%len(categories)]
		categoryName = category.Name
	}

	want := config.BatchSize
	if remaining < want {
		want = remaining
	}

	products, scrapeErr := o.scrapePages(ctx, slug, scraper, config, category, want, offset)
	if scrapeErr != nil && len(products) == 0 {
		// Nothing collected: state stays untouched.
		if storeErr := o.states.RecordError(slug, day, config.DailyLimit, scrapeErr.Error()); storeErr != nil {
			o.log.Log("failed to record scrape error for %s: %v", slug, storeErr)
		}
		return report, scrapeErr
	}
	lastError := ""
	if scrapeErr != nil {
		lastError = scrapeErr.Error()
		o.log.Log("session for %s ended early, keeping %d partial items: %v", slug, len(products), scrapeErr)
	}

	report.Items = len(products)
	report.Stats = o.sink.Process(products, slug)
	metrics.RecordSession(slug, len(products))

	// Partial progress already pipelined is persisted; the budget and offset
	// advance exactly by what was collected.
	if err := o.states.RecordSession(slug, day, len(products), config.DailyLimit, categoryName, lastError); err != nil {
		return report, err
	}

	o.notifier.Notify("session_complete", map[string]interface{}{
		"distributor": slug,
		"items":       report.Items,
		"stats":       report.Stats,
	})
	o.log.Log("session for %s: %d items (category=%q offset=%d)", slug, report.Items, categoryName, offset)
	return report, nil
}

// scrapePages pages through the distributor catalog with human-like pacing,
// keeping whatever was collected when a page fails.
func (o *Orchestrator) scrapePages(ctx context.Context, slug string, scraper DistributorScraper, config Config, category *Category, want, offset int) ([]models.RawProduct, error) {
	var collected []models.RawProduct
	limiter := o.limiters[slug]

	for len(collected) < want {
		if err := limiter.Wait(ctx); err != nil {
			return collected, &TransientScrapeError{Distributor: slug, Err: err}
		}

		pageSize := requestPageSize
		if rest := want - len(collected); rest < pageSize {
			pageSize = rest
		}

		requestCtx, cancel := context.WithTimeout(ctx, config.RequestTimeout)
		page, err := scraper.GetProducts(requestCtx, category, pageSize, offset+len(collected))
		cancel()
		if err != nil {
			collected = append(collected, page...)
			return collected, &TransientScrapeError{Distributor: slug, Err: err}
		}
		collected = append(collected, page...)
		if len(page) < pageSize {
			// No more data in this category.
			break
		}
		if len(collected) >= want {
			break
		}

		o.randomDelay(config)
		o.maybeNoise(ctx, slug, scraper, config)
	}
	return collected, nil
}

// maybeNoise performs one data-less browsing action with probability
// NoiseRatio. Noise exists purely for timing camouflage; failures are
// swallowed.
func (o *Orchestrator) maybeNoise(ctx context.Context, slug string, scraper DistributorScraper, config Config) {
	if config.NoiseRatio <= 0 || o.rng.Float64() >= config.NoiseRatio {
		return
	}

	noiseCtx, cancel := context.WithTimeout(ctx, config.RequestTimeout)
	defer cancel()

	switch o.rng.Intn(3) {
	case 0:
		if visitor, ok := scraper.(HomepageVisitor); ok {
			if err := visitor.VisitHomepage(noiseCtx); err != nil {
				o.log.Log("noise visit for %s failed (ignored): %v", slug, err)
			}
			break
		}
		fallthrough
	case 1:
		// Browse a category without persisting anything.
		if categories, err := scraper.GetCategories(noiseCtx); err == nil && len(categories) > 0 {
			category := &categories[o.rng.Intn(len(categories))]
			if _, err := scraper.GetProducts(noiseCtx, category, requestPageSize, 0); err != nil {
				o.log.Log("noise browse for %s failed (ignored): %v", slug, err)
			}
		}
	default:
		// Idle.
	}
	o.randomDelay(config)
}

func (o *Orchestrator) randomDelay(config Config) {
	if config.MaxDelay <= 0 || config.MaxDelay < config.MinDelay {
		return
	}
	span := config.MaxDelay - config.MinDelay
	delay := config.MinDelay
	if span > 0 {
		delay += time.Duration(o.rng.Int63n(int64(span)))
	}
	o.sleep(delay)
}

// RunRoundRobin serializes sessions across distributors in the order given,
// with a long randomized pause between them. One distributor's failure never
// halts the rest.
func (o *Orchestrator) RunRoundRobin(ctx context.Context, slugs []string) []SessionReport {
	reports := make([]SessionReport, 0, len(slugs))
	for i, slug := range slugs {
		report, err := o.RunSession(ctx, slug)
		if err != nil {
			o.log.Log("session for %s failed: %v", slug, err)
		}
		if report != nil {
			reports = append(reports, *report)
		}

		if i < len(slugs)-1 {
			span := interDistributorMaxDelay - interDistributorMinDelay
			o.sleep(interDistributorMinDelay + time.Duration(o.rng.Int63n(int64(span))))
		}
	}
	return reports
}
