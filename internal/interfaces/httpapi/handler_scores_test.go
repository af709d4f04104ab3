package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/prepscores/internal/domain/game"
	"github.com/riskibarqy/prepscores/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/prepscores/internal/platform/logging"
	"github.com/riskibarqy/prepscores/internal/usecase"
)

const testServiceKey = "test-service-key"

type stubScoreboardProvider struct {
	records []game.Record
}

func (p *stubScoreboardProvider) FetchScoreboard(_ context.Context, stateCode, _, _ string) ([]game.Record, error) {
	out := make([]game.Record, 0, len(p.records))
	for _, record := range p.records {
		record.StateCode = stateCode
		out = append(out, record)
	}
	return out, nil
}

func newTestRouter(t *testing.T, serviceKey string) (http.Handler, *memory.GameRepository) {
	t.Helper()

	repo := memory.NewGameRepository()
	provider := &stubScoreboardProvider{records: []game.Record{
		{ID: "g1", ContestState: game.StateInProgress, IsLive: true},
		{ID: "g2", ContestState: game.StateBoxscore},
	}}

	logger := logging.Default()
	scrape := usecase.NewScrapeService(provider, repo, logger, usecase.ScrapeConfig{
		Concurrency:  2,
		BatchPause:   1,
		StateStagger: 1,
	})
	finalize := usecase.NewFinalizeService(repo, logger)
	sweep := usecase.NewSweepService(scrape, finalize, logger)

	handler := NewHandler(scrape, finalize, sweep, nil, []string{"al"}, "football", logger)
	return NewRouter(handler, logger, []string{"*"}, serviceKey), repo
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	return body
}

func TestRouter_HealthzNeedsNoKey(t *testing.T) {
	router, _ := newTestRouter(t, testServiceKey)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestRouter_SeasonsIsPublic(t *testing.T) {
	router, _ := newTestRouter(t, testServiceKey)

	req := httptest.NewRequest(http.MethodGet, "/v1/seasons", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	body := decodeEnvelope(t, rec)
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %v", body)
	}
	if season, _ := data["season"].(string); season == "" {
		t.Fatalf("expected a season name, got %v", data["season"])
	}
}

func TestRouter_ScrapeRejectsMissingKey(t *testing.T) {
	router, _ := newTestRouter(t, testServiceKey)

	req := httptest.NewRequest(http.MethodPost, "/v1/scrape", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestRouter_ScrapeRejectsWrongKey(t *testing.T) {
	router, _ := newTestRouter(t, testServiceKey)

	req := httptest.NewRequest(http.MethodPost, "/v1/scrape", strings.NewReader(`{}`))
	req.Header.Set(serviceKeyHeader, "wrong-key")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestRouter_ScrapeUnavailableWithoutConfiguredKey(t *testing.T) {
	router, _ := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodPost, "/v1/scrape", strings.NewReader(`{}`))
	req.Header.Set(serviceKeyHeader, "anything")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
}

func TestRouter_ScrapeStoresRows(t *testing.T) {
	router, repo := newTestRouter(t, testServiceKey)

	// An explicit date bypasses the live scoreboard window.
	body := `{"states":["al","ga"],"sport":"football","date":"9/5/2025"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/scrape", strings.NewReader(body))
	req.Header.Set(serviceKeyHeader, testServiceKey)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	envelope := decodeEnvelope(t, rec)
	data, ok := envelope["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %v", envelope)
	}
	if ok, _ := data["ok"].(bool); !ok {
		t.Fatalf("expected ok=true, got %v", data["ok"])
	}
	if got, _ := data["skipped"].(bool); got {
		t.Fatalf("did not expect the run to be skipped")
	}

	// Same ids across states dedupe to one row each.
	if repo.Len() != 2 {
		t.Fatalf("expected 2 stored rows, got %d", repo.Len())
	}
}

func TestRouter_ScrapeRejectsUnknownField(t *testing.T) {
	router, _ := newTestRouter(t, testServiceKey)

	req := httptest.NewRequest(http.MethodPost, "/v1/scrape", strings.NewReader(`{"bogus":true}`))
	req.Header.Set(serviceKeyHeader, testServiceKey)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestRouter_TimezoneScrapeUnknownTimezone(t *testing.T) {
	router, _ := newTestRouter(t, testServiceKey)

	req := httptest.NewRequest(http.MethodPost, "/v1/timezones/atlantis/scrape", strings.NewReader(`{}`))
	req.Header.Set(serviceKeyHeader, testServiceKey)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestRouter_TimezoneScrapeStoresRows(t *testing.T) {
	router, repo := newTestRouter(t, testServiceKey)

	req := httptest.NewRequest(http.MethodPost, "/v1/timezones/hawaii/scrape", strings.NewReader(`{}`))
	req.Header.Set(serviceKeyHeader, testServiceKey)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if repo.Len() != 2 {
		t.Fatalf("expected 2 stored rows, got %d", repo.Len())
	}
}

func TestRouter_FinalizeSportFromQuery(t *testing.T) {
	router, _ := newTestRouter(t, testServiceKey)

	req := httptest.NewRequest(http.MethodPost, "/v1/finalize?sport=volleyball", nil)
	req.Header.Set(serviceKeyHeader, testServiceKey)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	envelope := decodeEnvelope(t, rec)
	data, ok := envelope["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %v", envelope)
	}
	if sport, _ := data["sport"].(string); sport != "volleyball" {
		t.Fatalf("expected sport volleyball from the query, got %v", data["sport"])
	}
}

func TestRouter_SchedulerStatusUnavailableWhenDisabled(t *testing.T) {
	router, _ := newTestRouter(t, testServiceKey)

	req := httptest.NewRequest(http.MethodGet, "/v1/scheduler/status", nil)
	req.Header.Set(serviceKeyHeader, testServiceKey)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
}

func TestRouter_FinalizeEmptyBodyUsesDefaults(t *testing.T) {
	router, _ := newTestRouter(t, testServiceKey)

	req := httptest.NewRequest(http.MethodPost, "/v1/finalize", nil)
	req.Header.Set(serviceKeyHeader, testServiceKey)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	envelope := decodeEnvelope(t, rec)
	data, ok := envelope["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %v", envelope)
	}
	if sport, _ := data["sport"].(string); sport != "football" {
		t.Fatalf("expected default sport football, got %v", data["sport"])
	}
}
