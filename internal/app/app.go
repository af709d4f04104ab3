package app

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/prepscores/external/maxpreps"
	"github.com/riskibarqy/prepscores/internal/config"
	"github.com/riskibarqy/prepscores/internal/domain/game"
	"github.com/riskibarqy/prepscores/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/prepscores/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/prepscores/internal/interfaces/httpapi"
	"github.com/riskibarqy/prepscores/internal/platform/cache"
	"github.com/riskibarqy/prepscores/internal/platform/logging"
	"github.com/riskibarqy/prepscores/internal/platform/resilience"
	"github.com/riskibarqy/prepscores/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

// App wires the configured repositories, services, and HTTP server.
type App struct {
	Server    *http.Server
	Scheduler *usecase.SchedulerService

	services *Services
}

// Services groups the wired score pipeline for the HTTP server and the CLI.
type Services struct {
	Scrape   *usecase.ScrapeService
	Finalize *usecase.FinalizeService
	Sweep    *usecase.SweepService

	db *sqlx.DB
}

// Close releases the database pool, if one was opened.
func (s *Services) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// NewServices builds the repository, scoreboard client, and score services
// from configuration.
func NewServices(cfg config.Config, logger *logging.Logger) (*Services, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repo, db, err := newGameRepository(cfg, logger)
	if err != nil {
		return nil, err
	}

	var pageCache *cache.Store
	if cfg.CacheEnabled {
		pageCache = cache.NewStore(cfg.CacheTTL)
	}

	provider := maxpreps.NewClient(maxpreps.ClientConfig{
		BaseURL:    cfg.MaxPrepsBaseURL,
		Timeout:    cfg.ScrapeTimeout,
		MaxRetries: cfg.ScrapeRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.MaxPrepsCircuitEnabled,
			FailureThreshold: cfg.MaxPrepsCircuitFailureCount,
			OpenTimeout:      cfg.MaxPrepsCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.MaxPrepsCircuitHalfOpenReq,
		},
		Cache: pageCache,
	})

	scrapeSvc := usecase.NewScrapeService(provider, repo, logger, usecase.ScrapeConfig{
		Concurrency: cfg.ScrapeConcurrency,
		BatchPause:  cfg.ScrapeBatchPause,
	})
	finalizeSvc := usecase.NewFinalizeService(repo, logger)
	sweepSvc := usecase.NewSweepService(scrapeSvc, finalizeSvc, logger)

	return &Services{
		Scrape:   scrapeSvc,
		Finalize: finalizeSvc,
		Sweep:    sweepSvc,
		db:       db,
	}, nil
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	services, err := NewServices(cfg, logger)
	if err != nil {
		return nil, err
	}

	var scheduler *usecase.SchedulerService
	var schedulerStatus httpapi.SchedulerStatusProvider
	if cfg.SchedulerEnabled {
		scheduler = usecase.NewSchedulerService(services.Scrape, services.Finalize, logger, cfg.SchedulerTick)
		schedulerStatus = scheduler
	}

	handler := httpapi.NewHandler(
		services.Scrape,
		services.Finalize,
		services.Sweep,
		schedulerStatus,
		cfg.DefaultStates,
		cfg.DefaultSport,
		logger,
	)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.ServiceKey)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{
		Server:    server,
		Scheduler: scheduler,
		services:  services,
	}, nil
}

// Close releases resources held by the wired services.
func (a *App) Close() error {
	if a.services == nil {
		return nil
	}
	return a.services.Close()
}

// newGameRepository opens an instrumented Postgres pool when DATABASE_URL is
// configured, and falls back to the in-process store otherwise.
func newGameRepository(cfg config.Config, logger *logging.Logger) (game.Repository, *sqlx.DB, error) {
	if strings.TrimSpace(cfg.DBURL) == "" {
		logger.Info("database url not configured, using in-memory score store")
		return memory.NewGameRepository(), nil, nil
	}

	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}

	return postgres.NewGameRepository(db, logger), db, nil
}
