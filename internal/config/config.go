package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/prepscores/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                      string
	ServiceName                 string
	ServiceVersion              string
	HTTPAddr                    string
	DBURL                       string
	DBDisablePreparedBinary     bool
	CacheEnabled                bool
	CacheTTL                    time.Duration
	CORSAllowedOrigins          []string
	ReadTimeout                 time.Duration
	WriteTimeout                time.Duration
	PprofEnabled                bool
	PprofAddr                   string
	UptraceEnabled              bool
	UptraceDSN                  string
	ServiceKey                  string
	DefaultStates               []string
	DefaultSport                string
	ScrapeConcurrency           int
	ScrapeBatchPause            time.Duration
	ScrapeRetries               int
	ScrapeTimeout               time.Duration
	MaxPrepsBaseURL             string
	MaxPrepsCircuitEnabled      bool
	MaxPrepsCircuitFailureCount int
	MaxPrepsCircuitOpenTimeout  time.Duration
	MaxPrepsCircuitHalfOpenReq  int
	SchedulerEnabled            bool
	SchedulerTick               time.Duration
	SweepWorkers                int
	LogLevel                    logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	scrapeConcurrency, err := getEnvAsInt("SCRAPE_CONCURRENCY", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRAPE_CONCURRENCY: %w", err)
	}
	if scrapeConcurrency < 1 {
		return Config{}, fmt.Errorf("SCRAPE_CONCURRENCY must be >= 1")
	}

	scrapeBatchPauseMs, err := getEnvAsInt("SCRAPE_BATCH_PAUSE_MS", 150)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRAPE_BATCH_PAUSE_MS: %w", err)
	}
	if scrapeBatchPauseMs < 0 {
		return Config{}, fmt.Errorf("SCRAPE_BATCH_PAUSE_MS must be >= 0")
	}

	scrapeRetries, err := getEnvAsInt("SCRAPE_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRAPE_RETRIES: %w", err)
	}
	if scrapeRetries < 0 {
		return Config{}, fmt.Errorf("SCRAPE_RETRIES must be >= 0")
	}

	scrapeTimeout, err := time.ParseDuration(getEnv("SCRAPE_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCRAPE_TIMEOUT: %w", err)
	}
	if scrapeTimeout <= 0 {
		return Config{}, fmt.Errorf("SCRAPE_TIMEOUT must be > 0")
	}

	maxprepsCircuitEnabled, err := strconv.ParseBool(getEnv("MAXPREPS_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse MAXPREPS_CIRCUIT_ENABLED: %w", err)
	}
	maxprepsCircuitFailureCount, err := getEnvAsInt("MAXPREPS_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse MAXPREPS_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if maxprepsCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("MAXPREPS_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	maxprepsCircuitOpenTimeout, err := time.ParseDuration(getEnv("MAXPREPS_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse MAXPREPS_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if maxprepsCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("MAXPREPS_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	maxprepsCircuitHalfOpenReq, err := getEnvAsInt("MAXPREPS_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse MAXPREPS_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if maxprepsCircuitHalfOpenReq < 1 {
		return Config{}, fmt.Errorf("MAXPREPS_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	schedulerEnabled, err := strconv.ParseBool(getEnv("SCHEDULER_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCHEDULER_ENABLED: %w", err)
	}
	schedulerTick, err := time.ParseDuration(getEnv("SCHEDULER_TICK", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCHEDULER_TICK: %w", err)
	}
	if schedulerTick <= 0 {
		return Config{}, fmt.Errorf("SCHEDULER_TICK must be > 0")
	}
	// A tick of a minute or more can skip matching minutes entirely.
	if schedulerTick >= time.Minute {
		return Config{}, fmt.Errorf("SCHEDULER_TICK must be under 1m")
	}

	sweepWorkers, err := getEnvAsInt("SWEEP_WORKERS", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SWEEP_WORKERS: %w", err)
	}
	if sweepWorkers < 1 {
		return Config{}, fmt.Errorf("SWEEP_WORKERS must be >= 1")
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	cfg := Config{
		AppEnv:                      appEnv,
		ServiceName:                 getEnv("APP_SERVICE_NAME", "prepscores-api"),
		ServiceVersion:              getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                    httpAddr(),
		DBURL:                       getEnv("DATABASE_URL", ""),
		DBDisablePreparedBinary:     dbDisablePreparedBinary,
		CacheEnabled:                cacheEnabled,
		CacheTTL:                    cacheTTL,
		CORSAllowedOrigins:          splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeout:                 readTimeout,
		WriteTimeout:                writeTimeout,
		PprofEnabled:                pprofEnabled,
		PprofAddr:                   pprofAddr,
		UptraceEnabled:              uptraceEnabled,
		UptraceDSN:                  uptraceDSN,
		ServiceKey:                  strings.TrimSpace(getEnv("ALA_SCORE_PROCESSOR_SECRET", "")),
		DefaultStates:               splitCSV(strings.ToLower(getEnv("STATES", "al"))),
		DefaultSport:                strings.ToLower(strings.TrimSpace(getEnv("SPORT", "football"))),
		ScrapeConcurrency:           scrapeConcurrency,
		ScrapeBatchPause:            time.Duration(scrapeBatchPauseMs) * time.Millisecond,
		ScrapeRetries:               scrapeRetries,
		ScrapeTimeout:               scrapeTimeout,
		MaxPrepsBaseURL:             strings.TrimSpace(getEnv("MAXPREPS_BASE_URL", "https://www.maxpreps.com")),
		MaxPrepsCircuitEnabled:      maxprepsCircuitEnabled,
		MaxPrepsCircuitFailureCount: maxprepsCircuitFailureCount,
		MaxPrepsCircuitOpenTimeout:  maxprepsCircuitOpenTimeout,
		MaxPrepsCircuitHalfOpenReq:  maxprepsCircuitHalfOpenReq,
		SchedulerEnabled:            schedulerEnabled,
		SchedulerTick:               schedulerTick,
		SweepWorkers:                sweepWorkers,
		LogLevel:                    parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}

	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if len(cfg.DefaultStates) == 0 {
		return Config{}, fmt.Errorf("STATES cannot be empty")
	}
	if cfg.DefaultSport == "" {
		return Config{}, fmt.Errorf("SPORT cannot be empty")
	}

	return cfg, nil
}

// httpAddr prefers the explicit listen address, falling back to the PORT
// convention used by the container runtime.
func httpAddr() string {
	if addr := strings.TrimSpace(os.Getenv("APP_HTTP_ADDR")); addr != "" {
		return addr
	}
	return ":" + getEnv("PORT", "8080")
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
