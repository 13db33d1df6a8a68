package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"gobevtrend_api/config"
	"gobevtrend_api/internal/catalog/matching"
	catalogstorage "gobevtrend_api/internal/catalog/storage"
	"gobevtrend_api/internal/ingest"
	ingeststorage "gobevtrend_api/internal/ingest/storage"
	"gobevtrend_api/internal/notify"
	"gobevtrend_api/internal/scheduler"
	"gobevtrend_api/internal/scraper"
	"gobevtrend_api/internal/trend"
	trendstorage "gobevtrend_api/internal/trend/storage"
	"gobevtrend_api/metrics"
	"gobevtrend_api/migrations/bevtrend"
	"gobevtrend_api/pkg/dbconnect"
	"gobevtrend_api/pkg/dbconnect/migration"
	"gobevtrend_api/pkg/logger"
	"gobevtrend_api/pkg/middleware"
)

// Server wires config, storage, the orchestrator and the scheduler into one
// long-running process.
type Server struct {
	dbconnect.Database
	config   *config.AppConfig
	registry *scraper.Registry
	writer   io.Writer
	log      logger.Logger
}

func NewServer(connector dbconnect.Database, appConfig *config.AppConfig, writer io.Writer) *Server {
	return &Server{
		Database: connector,
		config:   appConfig,
		registry: scraper.NewRegistry(),
		writer:   writer,
		log:      logger.NewLogger(writer, "[Server]"),
	}
}

// Registry exposes the adapter registry so deployments can register their
// distributor scrapers before Run.
func (s *Server) Registry() *scraper.Registry {
	return s.registry
}

func (s *Server) Run(ctx context.Context) error {
	db, err := s.Connect()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := s.migrate(db); err != nil {
		return err
	}

	hours, err := scraper.NewBusinessHours(
		s.config.Hours.StartHour, s.config.Hours.EndHour,
		s.config.Hours.WeekdaysOnly, s.config.Hours.Timezone,
	)
	if err != nil {
		return err
	}

	var notifier scraper.Notifier = notify.NopNotifier{}
	if s.config.Notify.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(s.config.Notify.WebhookURL, s.writer)
	}

	productRepo := catalogstorage.NewProductRepository(db)
	aliasRepo := catalogstorage.NewAliasRepository(db)
	matcher := matching.NewMatcher(productRepo, aliasRepo, matching.Config{AllowCreate: true}, s.writer)
	counters := &metrics.IngestMetrics{}
	pipeline := ingest.NewPipeline(matcher, ingeststorage.NewHistoryRepository(db), counters, s.writer)

	stateRepo := scraper.NewStateRepository(db)
	configs := make(map[string]scraper.Config, len(s.config.Distributors))
	slugs := make([]string, 0, len(s.config.Distributors))
	for _, d := range s.config.Distributors {
		d = s.config.Resolve(d)
		configs[d.Slug] = scraper.Config{
			DailyLimit: d.DailyLimit,
			BatchSize:  d.BatchSize,
			MinDelay:   time.Duration(d.MinDelaySeconds) * time.Second,
			MaxDelay:   time.Duration(d.MaxDelaySeconds) * time.Second,
			NoiseRatio: d.NoiseRatio,
			Hours:      hours,
		}
		slugs = append(slugs, d.Slug)
	}
	orchestrator := scraper.NewOrchestrator(s.registry, stateRepo, pipeline, notifier, configs, s.writer)

	weights := trend.ComponentWeights(s.config.Trend.Weights)
	if len(weights) == 0 {
		weights = trend.DefaultWeights()
	}
	trendRepo := trendstorage.NewTrendRepository(db)
	scorer, err := trend.NewScorer(trendstorage.NewSignalRepository(db), trendRepo, weights, s.writer)
	if err != nil {
		return err
	}

	sched := scheduler.NewScheduler(s.writer)
	err = sched.AddJob(s.config.Scheduler.ScrapeSpec, "scrape-round-robin", 4*time.Hour, func(ctx context.Context) {
		orchestrator.RunRoundRobin(ctx, slugs)
	})
	if err != nil {
		return err
	}
	err = sched.AddJob(s.config.Scheduler.TrendSpec, "trend-batch", time.Hour, func(context.Context) {
		if _, err := scorer.CalculateAll(time.Time{}); err != nil {
			s.log.Log("trend batch failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	go s.serveMetrics(stateRepo, counters, productRepo, aliasRepo, trendRepo)

	s.log.Log("running with %d distributors, adapters registered for %v", len(slugs), s.registry.Slugs())
	<-ctx.Done()
	return nil
}

func (s *Server) migrate(db *sql.DB) error {
	migrationApply := []migration.MigrationInterface{
		&bevtrend.MigrationsBootstrap{},
		&bevtrend.CreateProductsTable{},
		&bevtrend.CreateProductAliasesTable{},
		&bevtrend.CreatePriceHistoryTable{},
		&bevtrend.CreateInventoryHistoryTable{},
		&bevtrend.CreateScraperStateTable{},
		&bevtrend.CreateTrendScoresTable{},
		&bevtrend.CreateCurrentTrendScoresTable{},
		&bevtrend.CreateMediaMentionsTable{},
	}
	for _, m := range migrationApply {
		if err := m.UpMigration(db); err != nil {
			return err
		}
	}
	log.Println("Migrations applied successfully!")
	return nil
}

// serveMetrics exposes Prometheus metrics, the per-distributor status
// surface and the product lookup on the metrics listener.
func (s *Server) serveMetrics(states *scraper.StateRepository, counters *metrics.IngestMetrics, products ProductReader, aliases AliasLister, trends TrendReader) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.MetricsHandler())
	mux.HandleFunc("/products", productStatusHandler(products, aliases, trends))
	mux.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
		dayStates, err := states.ListForDay(time.Now())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"distributors": dayStates,
			"ingest": map[string]int32{
				"matched":  counters.MatchedCount.Load(),
				"created":  counters.CreatedCount.Load(),
				"queued":   counters.QueuedCount.Load(),
				"failed":   counters.FailedCount.Load(),
				"sessions": counters.SessionsCount.Load(),
			},
		})
	})

	if err := http.ListenAndServe(s.config.MetricsAddr, middleware.PrometheusMiddleware(mux)); err != nil {
		s.log.Log("metrics listener stopped: %v", err)
	}
}
