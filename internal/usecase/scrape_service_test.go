package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/prepscores/internal/domain/game"
	"github.com/riskibarqy/prepscores/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScoreboardProvider struct {
	mu         sync.Mutex
	calls      []string
	rowsByPage map[string][]game.Record
	failStates map[string]bool
}

func (f *fakeScoreboardProvider) FetchScoreboard(_ context.Context, stateCode, sportName, gameDate string) ([]game.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, stateCode)
	if f.failStates[stateCode] {
		return nil, fmt.Errorf("provider status=503")
	}
	return f.rowsByPage[stateCode], nil
}

func (f *fakeScoreboardProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeGameRepo struct {
	mu           sync.Mutex
	upserted     []game.Record
	finalizeRows []game.Record
	listSport    string
	listStates   []string
	updates      []game.FinalizeUpdate
	upsertErr    error
	listErr      error
	applyErr     error
}

func (f *fakeGameRepo) UpsertRecords(_ context.Context, records []game.Record) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return 0, f.upsertErr
	}
	f.upserted = append(f.upserted, records...)
	return len(records), nil
}

func (f *fakeGameRepo) ListForFinalize(_ context.Context, sport string, states []string) ([]game.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listSport = sport
	f.listStates = states
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.finalizeRows, nil
}

func (f *fakeGameRepo) ApplyFinalizeUpdates(_ context.Context, updates []game.FinalizeUpdate) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.applyErr != nil {
		return 0, f.applyErr
	}
	f.updates = append(f.updates, updates...)
	return len(updates), nil
}

// Tuesday noon US Eastern, well outside the Thu-Sat evening window.
var outsideWindow = time.Date(2025, 9, 2, 16, 0, 0, 0, time.UTC)

func newTestScrapeService(provider *fakeScoreboardProvider, repo *fakeGameRepo) *ScrapeService {
	svc := NewScrapeService(provider, repo, logging.NewNop(), ScrapeConfig{
		Concurrency:  2,
		BatchPause:   time.Millisecond,
		StateStagger: time.Millisecond,
	})
	svc.now = func() time.Time { return outsideWindow }
	return svc
}

func TestScrape_SkipsOutsideWindow(t *testing.T) {
	provider := &fakeScoreboardProvider{}
	repo := &fakeGameRepo{}
	svc := newTestScrapeService(provider, repo)

	out, err := svc.Scrape(context.Background(), ScrapeInput{
		States: []string{"al"},
		Sport:  "football",
	})
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, "outside scrape window", out.Skipped)
	assert.Zero(t, provider.callCount())
	assert.Empty(t, repo.upserted)
}

func TestScrape_ForceBypassesWindow(t *testing.T) {
	provider := &fakeScoreboardProvider{
		rowsByPage: map[string][]game.Record{
			"al": {{ID: "g1", StateCode: "al"}},
		},
	}
	repo := &fakeGameRepo{}
	svc := newTestScrapeService(provider, repo)

	out, err := svc.Scrape(context.Background(), ScrapeInput{
		States: []string{"al"},
		Sport:  "football",
		Force:  true,
	})
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Empty(t, out.Skipped)
	assert.Equal(t, 1, out.Rows)
	assert.Equal(t, 1, out.RowsUpserted)
	// No date override means today in US Eastern.
	assert.Equal(t, "9/2/2025", out.Date)
}

func TestScrape_DateOverrideBypassesWindow(t *testing.T) {
	provider := &fakeScoreboardProvider{
		rowsByPage: map[string][]game.Record{
			"al": {{ID: "g1", StateCode: "al"}},
		},
	}
	repo := &fakeGameRepo{}
	svc := newTestScrapeService(provider, repo)

	out, err := svc.Scrape(context.Background(), ScrapeInput{
		States: []string{"al"},
		Sport:  "football",
		Date:   "9/5/2025",
	})
	require.NoError(t, err)
	assert.Empty(t, out.Skipped)
	assert.Equal(t, "9/5/2025", out.Date)
	assert.Equal(t, 1, out.RowsUpserted)
}

func TestScrape_AcceptsISODate(t *testing.T) {
	provider := &fakeScoreboardProvider{
		rowsByPage: map[string][]game.Record{
			"al": {{ID: "g1", StateCode: "al"}},
		},
	}
	repo := &fakeGameRepo{}
	svc := newTestScrapeService(provider, repo)

	out, err := svc.Scrape(context.Background(), ScrapeInput{
		States: []string{"al"},
		Sport:  "football",
		Date:   "2025-09-05",
	})
	require.NoError(t, err)
	assert.Equal(t, "9/5/2025", out.Date)
}

func TestScrape_RejectsMalformedDate(t *testing.T) {
	svc := newTestScrapeService(&fakeScoreboardProvider{}, &fakeGameRepo{})

	_, err := svc.Scrape(context.Background(), ScrapeInput{
		States: []string{"al"},
		Sport:  "football",
		Date:   "yesterday",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestScrape_DedupesAcrossStates(t *testing.T) {
	provider := &fakeScoreboardProvider{
		rowsByPage: map[string][]game.Record{
			"al": {{ID: "g1", StateCode: "al"}, {ID: "g2", StateCode: "al"}},
			"ga": {{ID: "g1", StateCode: "ga"}, {ID: "g3", StateCode: "ga"}},
		},
	}
	repo := &fakeGameRepo{}
	svc := newTestScrapeService(provider, repo)

	out, err := svc.Scrape(context.Background(), ScrapeInput{
		States: []string{"al", "ga"},
		Sport:  "football",
		Force:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Rows)
	assert.Equal(t, 3, out.RowsUpserted)
	assert.Len(t, repo.upserted, 3)
	// The response carries a short sample of the deduplicated rows.
	assert.Len(t, out.Sample, 2)
}

func TestScrape_FailedStateDoesNotAbortOthers(t *testing.T) {
	provider := &fakeScoreboardProvider{
		rowsByPage: map[string][]game.Record{
			"ga": {{ID: "g3", StateCode: "ga"}},
		},
		failStates: map[string]bool{"al": true},
	}
	repo := &fakeGameRepo{}
	svc := newTestScrapeService(provider, repo)

	out, err := svc.Scrape(context.Background(), ScrapeInput{
		States: []string{"al", "ga"},
		Sport:  "football",
		Force:  true,
	})
	require.NoError(t, err)
	assert.False(t, out.OK)
	assert.Equal(t, []string{"al"}, out.FailedStates)
	assert.Equal(t, 1, out.RowsUpserted)
}

func TestScrape_InputValidation(t *testing.T) {
	svc := newTestScrapeService(&fakeScoreboardProvider{}, &fakeGameRepo{})

	_, err := svc.Scrape(context.Background(), ScrapeInput{Sport: "football"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Scrape(context.Background(), ScrapeInput{States: []string{"al"}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestScrape_NormalizesStates(t *testing.T) {
	provider := &fakeScoreboardProvider{
		rowsByPage: map[string][]game.Record{},
	}
	repo := &fakeGameRepo{}
	svc := newTestScrapeService(provider, repo)

	out, err := svc.Scrape(context.Background(), ScrapeInput{
		States: []string{" AL ", "al", "", "GA"},
		Sport:  "football",
		Force:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"al", "ga"}, out.States)
	assert.Equal(t, 2, provider.callCount())
}
