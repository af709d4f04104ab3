package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/prepscores/internal/domain/schedule"
	"github.com/riskibarqy/prepscores/internal/platform/logging"
)

const (
	sweepStatusSuccess = "success"
	sweepStatusFailed  = "failed"

	sweepKindScrape   = "scrape"
	sweepKindFinalize = "finalize"
)

type SweepInput struct {
	Sport string
	// Date only applies to scrape sweeps; finalize sweeps are dateless.
	Date       string
	Force      bool
	MaxWorkers int
}

type SweepResult struct {
	OK           bool              `json:"ok"`
	Kind         string            `json:"kind"`
	Sport        string            `json:"sport"`
	TaskCount    int               `json:"taskCount"`
	SuccessCount int               `json:"successCount"`
	FailedCount  int               `json:"failedCount"`
	WorkerCount  int               `json:"workerCount"`
	Tasks        []SweepTaskResult `json:"tasks"`
}

type SweepTaskResult struct {
	Timezone   string `json:"timezone"`
	Status     string `json:"status"`
	Rows       int    `json:"rows"`
	DurationMs int64  `json:"durationMs"`
	Message    string `json:"message,omitempty"`
}

// SweepService runs one sport across every timezone group at once, fanning
// the per-timezone runs out over a small worker pool.
type SweepService struct {
	scrape   *ScrapeService
	finalize *FinalizeService
	logger   *logging.Logger
}

func NewSweepService(scrape *ScrapeService, finalize *FinalizeService, logger *logging.Logger) *SweepService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SweepService{
		scrape:   scrape,
		finalize: finalize,
		logger:   logger,
	}
}

// SweepScrape scrapes the sport in every timezone group. Sweeps are operator
// initiated, so they run forced regardless of the window gate.
func (s *SweepService) SweepScrape(ctx context.Context, input SweepInput) (SweepResult, error) {
	if s.scrape == nil {
		return SweepResult{}, fmt.Errorf("%w: sweep service is not fully configured", ErrDependencyUnavailable)
	}
	return s.run(ctx, sweepKindScrape, input, func(ctx context.Context, tz schedule.Timezone) (int, error) {
		out, err := s.scrape.Scrape(ctx, ScrapeInput{
			States: tz.States,
			Sport:  input.Sport,
			Date:   input.Date,
			Force:  true,
		})
		if err != nil {
			return out.Rows, err
		}
		if !out.OK {
			return out.Rows, fmt.Errorf("failed states: %s", strings.Join(out.FailedStates, ","))
		}
		return out.Rows, nil
	})
}

// SweepFinalize finalizes the sport in every timezone group.
func (s *SweepService) SweepFinalize(ctx context.Context, input SweepInput) (SweepResult, error) {
	if s.finalize == nil {
		return SweepResult{}, fmt.Errorf("%w: sweep service is not fully configured", ErrDependencyUnavailable)
	}
	return s.run(ctx, sweepKindFinalize, input, func(ctx context.Context, tz schedule.Timezone) (int, error) {
		out, err := s.finalize.Finalize(ctx, FinalizeInput{
			States: tz.States,
			Sport:  input.Sport,
		})
		return out.RowsSuccessfullyUpdated, err
	})
}

func (s *SweepService) run(
	ctx context.Context,
	kind string,
	input SweepInput,
	task func(ctx context.Context, tz schedule.Timezone) (int, error),
) (SweepResult, error) {
	sport, err := normalizeSport(input.Sport)
	if err != nil {
		return SweepResult{}, err
	}

	timezones := schedule.Timezones
	workerCount := normalizeSweepWorkerCount(input.MaxWorkers, len(timezones))

	result := SweepResult{
		OK:          true,
		Kind:        kind,
		Sport:       sport,
		TaskCount:   len(timezones),
		WorkerCount: workerCount,
		Tasks:       make([]SweepTaskResult, 0, len(timezones)),
	}
	if len(timezones) == 0 {
		return result, nil
	}

	results := make(chan SweepTaskResult, len(timezones))

	var successCount atomic.Int32
	var failedCount atomic.Int32

	workerPool, err := ants.NewPool(workerCount)
	if err != nil {
		return SweepResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer workerPool.Release()

	var workers sync.WaitGroup
	for _, tz := range timezones {
		tz := tz
		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := SweepTaskResult{Timezone: tz.Name}

			rows, err := task(ctx, tz)
			row.Rows = rows
			row.DurationMs = time.Since(start).Milliseconds()
			if err != nil {
				row.Status = sweepStatusFailed
				row.Message = err.Error()
				failedCount.Add(1)
				s.logger.WarnContext(ctx, "sweep task failed", "kind", kind, "timezone", tz.Name, "sport", sport, "error", err)
			} else {
				row.Status = sweepStatusSuccess
				successCount.Add(1)
			}

			results <- row
		}); err != nil {
			workers.Done()
			return SweepResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	for row := range results {
		result.Tasks = append(result.Tasks, row)
	}

	sort.SliceStable(result.Tasks, func(i, j int) bool {
		return result.Tasks[i].Timezone < result.Tasks[j].Timezone
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())
	result.OK = result.FailedCount == 0
	return result, nil
}

func normalizeSweepWorkerCount(value int, taskCount int) int {
	if taskCount <= 0 {
		return 1
	}
	if value <= 0 {
		value = 2
	}
	if value > taskCount {
		value = taskCount
	}
	return value
}
