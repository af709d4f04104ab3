package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/prepscores/internal/domain/game"
	"github.com/riskibarqy/prepscores/internal/domain/schedule"
	idgen "github.com/riskibarqy/prepscores/internal/platform/id"
	"github.com/riskibarqy/prepscores/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

const (
	defaultScrapeConcurrency = 2
	defaultScrapeBatchPause  = 150 * time.Millisecond
	defaultStateStagger      = 15 * time.Millisecond

	skipReasonOutsideWindow = "outside scrape window"
)

// ScoreboardProvider fetches one state scoreboard page and returns the parsed
// contest rows.
type ScoreboardProvider interface {
	FetchScoreboard(ctx context.Context, stateCode, sportName, gameDate string) ([]game.Record, error)
}

type ScrapeConfig struct {
	Concurrency  int
	BatchPause   time.Duration
	StateStagger time.Duration
}

type ScrapeInput struct {
	States []string
	Sport  string
	// Date is an M/D/YYYY or YYYY-MM-DD override. Empty means today in US
	// Eastern, and an explicit value bypasses the scrape window gate like
	// Force does.
	Date  string
	Force bool
}

type ScrapeResult struct {
	OK           bool     `json:"ok"`
	Sport        string   `json:"sport"`
	States       []string `json:"states"`
	Date         string   `json:"date"`
	Rows         int      `json:"rows"`
	RowsUpserted int      `json:"rowsUpserted"`
	FailedStates []string `json:"failedStates,omitempty"`
	Skipped      string   `json:"skipped,omitempty"`
	// Sample holds the first rows of the run for spot checks.
	Sample []game.Record `json:"sample,omitempty"`
}

const scrapeSampleSize = 2

// ScrapeService pulls scoreboard pages state by state, parses them, and
// upserts the deduplicated rows.
type ScrapeService struct {
	provider     ScoreboardProvider
	repo         game.Repository
	logger       *logging.Logger
	concurrency  int
	batchPause   time.Duration
	stateStagger time.Duration
	idGen        idgen.Generator
	now          func() time.Time
}

func NewScrapeService(provider ScoreboardProvider, repo game.Repository, logger *logging.Logger, cfg ScrapeConfig) *ScrapeService {
	if logger == nil {
		logger = logging.Default()
	}
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = defaultScrapeConcurrency
	}
	batchPause := cfg.BatchPause
	if batchPause < 0 {
		batchPause = defaultScrapeBatchPause
	}
	stateStagger := cfg.StateStagger
	if stateStagger <= 0 {
		stateStagger = defaultStateStagger
	}

	return &ScrapeService{
		provider:     provider,
		repo:         repo,
		logger:       logger,
		concurrency:  concurrency,
		batchPause:   batchPause,
		stateStagger: stateStagger,
		idGen:        idgen.NewRandomGenerator(),
		now:          time.Now,
	}
}

func (s *ScrapeService) Scrape(ctx context.Context, input ScrapeInput) (ScrapeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScrapeService.Scrape")
	defer span.End()

	if s.provider == nil || s.repo == nil {
		return ScrapeResult{}, fmt.Errorf("%w: scrape service is not fully configured", ErrDependencyUnavailable)
	}

	states, err := normalizeStates(input.States)
	if err != nil {
		return ScrapeResult{}, err
	}
	sport, err := normalizeSport(input.Sport)
	if err != nil {
		return ScrapeResult{}, err
	}

	gameDate, err := game.NormalizeDate(input.Date)
	if err != nil {
		return ScrapeResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	dateOverride := gameDate != ""
	if !dateOverride {
		gameDate = game.FormatDate(s.now().In(schedule.DefaultLocation()))
	}

	// A run id ties the per-state warnings and the summary line together.
	runID, _ := s.idGen.NewID()
	logger := s.logger.With("run_id", runID)

	result := ScrapeResult{
		OK:     true,
		Sport:  sport,
		States: states,
		Date:   gameDate,
	}

	// Forced runs and explicit dates skip the window gate. Cron-driven runs
	// arrive forced because their schedules already encode the windows.
	if !input.Force && !dateOverride && !schedule.InScrapeWindow(s.now()) {
		result.Skipped = skipReasonOutsideWindow
		logger.InfoContext(ctx, "scrape skipped", "sport", sport, "reason", result.Skipped)
		return result, nil
	}

	records, failedStates := s.collectStates(ctx, logger, states, sport, gameDate)
	if err := ctx.Err(); err != nil {
		return ScrapeResult{}, err
	}

	records = game.Dedupe(records)
	result.Rows = len(records)
	if len(records) > 0 {
		sample := records
		if len(sample) > scrapeSampleSize {
			sample = sample[:scrapeSampleSize]
		}
		result.Sample = sample
	}
	result.FailedStates = failedStates
	if len(failedStates) > 0 {
		result.OK = false
	}

	if len(records) > 0 {
		upserted, err := s.repo.UpsertRecords(ctx, records)
		if err != nil {
			return ScrapeResult{}, fmt.Errorf("upsert scraped rows sport=%s: %w", sport, err)
		}
		result.RowsUpserted = upserted
	}

	logger.InfoContext(ctx, "scrape finished",
		"sport", sport,
		"date", gameDate,
		"states", len(states),
		"rows", result.Rows,
		"upserted", result.RowsUpserted,
		"failed_states", len(failedStates),
	)
	return result, nil
}

// collectStates walks the states in batches of the configured concurrency,
// staggering requests inside a batch and pausing between batches so the
// provider never sees a burst.
func (s *ScrapeService) collectStates(ctx context.Context, logger *logging.Logger, states []string, sport, gameDate string) ([]game.Record, []string) {
	var mu sync.Mutex
	records := make([]game.Record, 0, len(states)*8)
	failed := make([]string, 0)

	for start := 0; start < len(states); start += s.concurrency {
		end := start + s.concurrency
		if end > len(states) {
			end = len(states)
		}
		batch := states[start:end]

		p := pool.New().WithMaxGoroutines(len(batch))
		for idx, stateCode := range batch {
			idx, stateCode := idx, stateCode
			p.Go(func() {
				if err := sleepContext(ctx, time.Duration(idx)*s.stateStagger); err != nil {
					return
				}

				rows, err := s.provider.FetchScoreboard(ctx, stateCode, sport, gameDate)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failed = append(failed, stateCode)
					logger.WarnContext(ctx, "state scrape failed", "state", stateCode, "sport", sport, "error", err)
					return
				}
				records = append(records, rows...)
			})
		}
		p.Wait()

		if end < len(states) {
			if err := sleepContext(ctx, s.batchPause); err != nil {
				break
			}
		}
	}

	sort.Strings(failed)
	return records, failed
}

func normalizeStates(input []string) ([]string, error) {
	seen := make(map[string]struct{}, len(input))
	out := make([]string, 0, len(input))
	for _, item := range input {
		state := strings.ToLower(strings.TrimSpace(item))
		if state == "" {
			continue
		}
		if _, ok := seen[state]; ok {
			continue
		}
		seen[state] = struct{}{}
		out = append(out, state)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: at least one state is required", ErrInvalidInput)
	}
	return out, nil
}

func normalizeSport(input string) (string, error) {
	sport := strings.ToLower(strings.TrimSpace(input))
	if sport == "" {
		return "", fmt.Errorf("%w: sport is required", ErrInvalidInput)
	}
	return sport, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
