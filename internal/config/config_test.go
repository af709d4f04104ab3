package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_HTTPAddr(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default port", func(t *testing.T) {
		t.Setenv("APP_HTTP_ADDR", "")
		t.Setenv("PORT", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.HTTPAddr != ":8080" {
			t.Fatalf("unexpected default http addr: %q", cfg.HTTPAddr)
		}
	})

	t.Run("PORT convention", func(t *testing.T) {
		t.Setenv("APP_HTTP_ADDR", "")
		t.Setenv("PORT", "9090")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.HTTPAddr != ":9090" {
			t.Fatalf("unexpected http addr: %q", cfg.HTTPAddr)
		}
	})

	t.Run("explicit addr wins", func(t *testing.T) {
		t.Setenv("APP_HTTP_ADDR", "127.0.0.1:3000")
		t.Setenv("PORT", "9090")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.HTTPAddr != "127.0.0.1:3000" {
			t.Fatalf("unexpected http addr: %q", cfg.HTTPAddr)
		}
	})
}

func TestLoad_ScrapeDefaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("SCRAPE_CONCURRENCY", "")
	t.Setenv("SCRAPE_BATCH_PAUSE_MS", "")
	t.Setenv("SCRAPE_RETRIES", "")
	t.Setenv("SCRAPE_TIMEOUT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ScrapeConcurrency != 2 {
		t.Fatalf("unexpected default scrape concurrency: %d", cfg.ScrapeConcurrency)
	}
	if cfg.ScrapeBatchPause != 150*time.Millisecond {
		t.Fatalf("unexpected default batch pause: %s", cfg.ScrapeBatchPause)
	}
	if cfg.ScrapeRetries != 2 {
		t.Fatalf("unexpected default scrape retries: %d", cfg.ScrapeRetries)
	}
	if cfg.ScrapeTimeout != 20*time.Second {
		t.Fatalf("unexpected default scrape timeout: %s", cfg.ScrapeTimeout)
	}
}

func TestLoad_ScrapeValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("concurrency must be positive", func(t *testing.T) {
		t.Setenv("SCRAPE_CONCURRENCY", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for SCRAPE_CONCURRENCY=0")
		}
	})

	t.Run("retries cannot be negative", func(t *testing.T) {
		t.Setenv("SCRAPE_CONCURRENCY", "")
		t.Setenv("SCRAPE_RETRIES", "-1")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for SCRAPE_RETRIES=-1")
		}
	})
}

func TestLoad_StatesAndSportParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("STATES", " AL, GA ,tx ")
	t.Setenv("SPORT", "Volleyball-Girls")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.DefaultStates) != 3 {
		t.Fatalf("unexpected states length: %d", len(cfg.DefaultStates))
	}
	if cfg.DefaultStates[0] != "al" || cfg.DefaultStates[1] != "ga" || cfg.DefaultStates[2] != "tx" {
		t.Fatalf("unexpected states: %+v", cfg.DefaultStates)
	}
	if cfg.DefaultSport != "volleyball-girls" {
		t.Fatalf("unexpected sport: %q", cfg.DefaultSport)
	}
}

func TestLoad_SchedulerConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("SCHEDULER_ENABLED", "")
		t.Setenv("SCHEDULER_TICK", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.SchedulerEnabled {
			t.Fatalf("expected scheduler enabled by default")
		}
		if cfg.SchedulerTick != 30*time.Second {
			t.Fatalf("unexpected default scheduler tick: %s", cfg.SchedulerTick)
		}
	})

	t.Run("invalid tick", func(t *testing.T) {
		t.Setenv("SCHEDULER_TICK", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid SCHEDULER_TICK")
		}
	})

	t.Run("tick of a minute or more is rejected", func(t *testing.T) {
		t.Setenv("SCHEDULER_TICK", "60s")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for SCHEDULER_TICK >= 1m")
		}
	})

	t.Run("tick just under a minute is accepted", func(t *testing.T) {
		t.Setenv("SCHEDULER_TICK", "59s")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.SchedulerTick != 59*time.Second {
			t.Fatalf("unexpected scheduler tick: %s", cfg.SchedulerTick)
		}
	})
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[0] != "https://a.example.com" {
			t.Fatalf("unexpected first CORS origin: %s", cfg.CORSAllowedOrigins[0])
		}
	})
}

func TestLoad_DBDisablePreparedBinaryResultParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default true", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.DBDisablePreparedBinary {
			t.Fatalf("expected DBDisablePreparedBinary=true by default")
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "not-bool")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid DB_DISABLE_PREPARED_BINARY_RESULT")
		}
	})
}

func TestLoad_CacheConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CACHE_ENABLED", "")
		t.Setenv("CACHE_TTL", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.CacheEnabled {
			t.Fatalf("expected cache enabled by default")
		}
		if cfg.CacheTTL != 60*time.Second {
			t.Fatalf("unexpected default cache ttl: %s", cfg.CacheTTL)
		}
	})

	t.Run("invalid ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid CACHE_TTL")
		}
	})
}

func TestLoad_MaxPrepsCircuitParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("MAXPREPS_CIRCUIT_ENABLED", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.MaxPrepsCircuitEnabled {
			t.Fatalf("expected circuit enabled by default")
		}
		if cfg.MaxPrepsCircuitFailureCount != 5 {
			t.Fatalf("unexpected failure count: %d", cfg.MaxPrepsCircuitFailureCount)
		}
		if cfg.MaxPrepsCircuitOpenTimeout != 15*time.Second {
			t.Fatalf("unexpected open timeout: %s", cfg.MaxPrepsCircuitOpenTimeout)
		}
	})

	t.Run("failure count must be positive", func(t *testing.T) {
		t.Setenv("MAXPREPS_CIRCUIT_FAILURE_COUNT", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for MAXPREPS_CIRCUIT_FAILURE_COUNT=0")
		}
	})
}
