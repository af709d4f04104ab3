package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/prepscores/internal/domain/schedule"
	"github.com/riskibarqy/prepscores/internal/platform/cron"
	"github.com/riskibarqy/prepscores/internal/platform/logging"
)

const (
	defaultSchedulerTick = 30 * time.Second
	schedulerMinuteKey   = "2006-01-02 15:04"
)

type SchedulerTaskStatus struct {
	Task       string `json:"task"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	FiredAt    string `json:"firedAt"`
	DurationMs int64  `json:"durationMs"`
}

type SchedulerStatus struct {
	Running     bool                  `json:"running"`
	Tick        string                `json:"tick"`
	TaskCount   int                   `json:"taskCount"`
	LastFired   map[string]string     `json:"lastFired"`
	LastResults []SchedulerTaskStatus `json:"lastResults"`
}

// SchedulerService evaluates the cron tables every tick and fires matching
// scrape and finalize tasks. Expressions are written in UTC, and a task fires
// at most once per UTC minute.
type SchedulerService struct {
	scrape   *ScrapeService
	finalize *FinalizeService
	logger   *logging.Logger
	tick     time.Duration
	tasks    []schedule.TaskSpec
	now      func() time.Time

	mu          sync.Mutex
	running     bool
	lastFired   map[string]string
	lastResults map[string]SchedulerTaskStatus
}

func NewSchedulerService(scrape *ScrapeService, finalize *FinalizeService, logger *logging.Logger, tick time.Duration) *SchedulerService {
	if logger == nil {
		logger = logging.Default()
	}
	if tick <= 0 {
		tick = defaultSchedulerTick
	}
	return &SchedulerService{
		scrape:      scrape,
		finalize:    finalize,
		logger:      logger,
		tick:        tick,
		tasks:       schedule.Tasks(),
		now:         time.Now,
		lastFired:   make(map[string]string),
		lastResults: make(map[string]SchedulerTaskStatus),
	}
}

// Run blocks until ctx is cancelled.
func (s *SchedulerService) Run(ctx context.Context) {
	s.setRunning(true)
	defer s.setRunning(false)

	s.logger.InfoContext(ctx, "scheduler started", "tick", s.tick.String(), "tasks", len(s.tasks))

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "scheduler stopped")
			return
		case <-ticker.C:
			s.runDue(ctx)
		}
	}
}

// runDue fires every task whose sport is in season, whose expression matches
// the current UTC minute, and that has not already fired this minute. Due
// tasks run inline one after another, so a slow task delays the entries
// behind it rather than racing them.
func (s *SchedulerService) runDue(ctx context.Context) {
	now := s.now().UTC()
	minuteKey := now.Format(schedulerMinuteKey)
	month := s.now().In(schedule.DefaultLocation()).Month()

	for _, task := range s.tasks {
		if !schedule.IsSportInSeason(task.Sport, month) {
			continue
		}
		if !cron.Matches(task.Expr, now) {
			continue
		}
		if !s.claimMinute(task.Name, minuteKey) {
			continue
		}

		s.runTask(ctx, task, minuteKey)
	}
}

// claimMinute marks the task as fired for the minute before the task runs,
// so a failing task never re-fires inside the same minute.
func (s *SchedulerService) claimMinute(name, minuteKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastFired[name] == minuteKey {
		return false
	}
	s.lastFired[name] = minuteKey
	return true
}

func (s *SchedulerService) runTask(ctx context.Context, task schedule.TaskSpec, minuteKey string) {
	tz, ok := schedule.TimezoneByName(task.Timezone)
	if !ok {
		s.recordResult(task.Name, SchedulerTaskStatus{
			Task:    task.Name,
			Status:  "failed",
			Message: "unknown timezone " + task.Timezone,
			FiredAt: minuteKey,
		})
		return
	}

	start := s.now()
	var err error
	switch task.Kind {
	case schedule.TaskKindFinalize:
		_, err = s.finalize.Finalize(ctx, FinalizeInput{
			States: tz.States,
			Sport:  task.Sport,
		})
	default:
		// Cron tables already encode the scrape windows, so scheduled runs
		// bypass the window gate.
		_, err = s.scrape.Scrape(ctx, ScrapeInput{
			States: tz.States,
			Sport:  task.Sport,
			Force:  true,
		})
	}

	status := SchedulerTaskStatus{
		Task:       task.Name,
		Status:     "success",
		FiredAt:    minuteKey,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		status.Status = "failed"
		status.Message = err.Error()
		s.logger.WarnContext(ctx, "scheduled task failed", "task", task.Name, "error", err)
	} else {
		s.logger.InfoContext(ctx, "scheduled task finished", "task", task.Name, "duration_ms", status.DurationMs)
	}
	s.recordResult(task.Name, status)
}

func (s *SchedulerService) recordResult(name string, status SchedulerTaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastResults[name] = status
}

func (s *SchedulerService) setRunning(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = v
}

// Status returns a point-in-time snapshot safe to serialize.
func (s *SchedulerService) Status() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	lastFired := make(map[string]string, len(s.lastFired))
	for name, minute := range s.lastFired {
		lastFired[name] = minute
	}
	results := make([]SchedulerTaskStatus, 0, len(s.lastResults))
	for _, status := range s.lastResults {
		results = append(results, status)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Task < results[j].Task
	})

	return SchedulerStatus{
		Running:     s.running,
		Tick:        s.tick.String(),
		TaskCount:   len(s.tasks),
		LastFired:   lastFired,
		LastResults: results,
	}
}
