package usecase

import (
	"context"
	"testing"

	"github.com/riskibarqy/prepscores/internal/domain/game"
	"github.com/riskibarqy/prepscores/internal/domain/schedule"
	"github.com/riskibarqy/prepscores/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSweepService(provider *fakeScoreboardProvider, repo *fakeGameRepo) *SweepService {
	scrape := newTestScrapeService(provider, repo)
	finalize := newTestFinalizeService(repo)
	return NewSweepService(scrape, finalize, logging.NewNop())
}

func TestSweepScrape_CoversEveryTimezone(t *testing.T) {
	provider := &fakeScoreboardProvider{
		rowsByPage: map[string][]game.Record{
			"hi": {{ID: "g1", StateCode: "hi"}},
		},
	}
	repo := &fakeGameRepo{}
	svc := newTestSweepService(provider, repo)

	out, err := svc.SweepScrape(context.Background(), SweepInput{Sport: "football"})
	require.NoError(t, err)

	assert.True(t, out.OK)
	assert.Equal(t, "scrape", out.Kind)
	assert.Equal(t, len(schedule.Timezones), out.TaskCount)
	assert.Equal(t, len(schedule.Timezones), out.SuccessCount)
	assert.Zero(t, out.FailedCount)
	require.Len(t, out.Tasks, len(schedule.Timezones))

	// Rows are sorted by timezone name for stable output.
	for i := 1; i < len(out.Tasks); i++ {
		assert.LessOrEqual(t, out.Tasks[i-1].Timezone, out.Tasks[i].Timezone)
	}

	// Every state in every timezone group was fetched.
	total := 0
	for _, tz := range schedule.Timezones {
		total += len(tz.States)
	}
	assert.Equal(t, total, provider.callCount())
}

func TestSweepScrape_ReportsFailedTimezones(t *testing.T) {
	provider := &fakeScoreboardProvider{
		failStates: map[string]bool{"hi": true},
	}
	repo := &fakeGameRepo{}
	svc := newTestSweepService(provider, repo)

	out, err := svc.SweepScrape(context.Background(), SweepInput{Sport: "football"})
	require.NoError(t, err)

	// A failed state marks the timezone run failed, but other timezones
	// still complete.
	assert.False(t, out.OK)
	assert.Equal(t, len(schedule.Timezones), out.SuccessCount+out.FailedCount)
	assert.GreaterOrEqual(t, out.SuccessCount, 1)
}

func TestSweepFinalize_RunsPerTimezone(t *testing.T) {
	repo := &fakeGameRepo{
		finalizeRows: []game.Record{
			{ID: "g1", ContestState: game.StateInProgress},
		},
	}
	svc := newTestSweepService(&fakeScoreboardProvider{}, repo)

	out, err := svc.SweepFinalize(context.Background(), SweepInput{Sport: "basketball-boys", Date: "1/2/2026"})
	require.NoError(t, err)

	assert.True(t, out.OK)
	assert.Equal(t, "finalize", out.Kind)
	assert.Equal(t, "basketball-boys", out.Sport)
	assert.Equal(t, len(schedule.Timezones), out.SuccessCount)
}

func TestSweep_WorkerCountClamped(t *testing.T) {
	assert.Equal(t, 1, normalizeSweepWorkerCount(5, 0))
	assert.Equal(t, 2, normalizeSweepWorkerCount(0, 6))
	assert.Equal(t, 3, normalizeSweepWorkerCount(3, 6))
	assert.Equal(t, 6, normalizeSweepWorkerCount(10, 6))
}

func TestSweep_InvalidSport(t *testing.T) {
	svc := newTestSweepService(&fakeScoreboardProvider{}, &fakeGameRepo{})
	_, err := svc.SweepScrape(context.Background(), SweepInput{Sport: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
