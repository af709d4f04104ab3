package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/prepscores/internal/domain/game"
	"github.com/riskibarqy/prepscores/internal/domain/schedule"
	"github.com/riskibarqy/prepscores/internal/usecase"
)

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// Scrape runs a scrape over the requested states, or the configured defaults
// when the body omits them. The force query param mirrors the body flag.
func (h *Handler) Scrape(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Scrape")
	defer span.End()

	req, err := decodeScoreJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.scrapeService.Scrape(ctx, usecase.ScrapeInput{
		States: h.statesOrDefault(req.States),
		Sport:  h.resolveSport(r, req.Sport),
		Date:   req.Date,
		Force:  req.Force || forceFromQuery(r),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "scrape request failed", "sport", req.Sport, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Finalize")
	defer span.End()

	req, err := decodeScoreJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.finalizeService.Finalize(ctx, usecase.FinalizeInput{
		States: h.statesOrDefault(req.States),
		Sport:  h.resolveSport(r, req.Sport),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "finalize request failed", "sport", req.Sport, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

// TimezoneScrape scrapes every state in one timezone group. Manual timezone
// runs are always forced, and the default date follows that group's clock.
func (h *Handler) TimezoneScrape(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TimezoneScrape")
	defer span.End()

	tz, err := h.timezoneFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	req, err := decodeScoreJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	gameDate := strings.TrimSpace(req.Date)
	if gameDate == "" {
		gameDate = game.FormatDate(h.now().In(tz.LoadLocation()))
	}

	result, err := h.scrapeService.Scrape(ctx, usecase.ScrapeInput{
		States: tz.States,
		Sport:  h.resolveSport(r, req.Sport),
		Date:   gameDate,
		Force:  true,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "timezone scrape request failed", "timezone", tz.Name, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) TimezoneFinalize(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TimezoneFinalize")
	defer span.End()

	tz, err := h.timezoneFromPath(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	req, err := decodeScoreJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.finalizeService.Finalize(ctx, usecase.FinalizeInput{
		States: tz.States,
		Sport:  h.resolveSport(r, req.Sport),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "timezone finalize request failed", "timezone", tz.Name, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) SweepScrape(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SweepScrape")
	defer span.End()

	req, err := decodeScoreJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.sweepService.SweepScrape(ctx, usecase.SweepInput{
		Sport:      h.resolveSport(r, req.Sport),
		Date:       req.Date,
		MaxWorkers: req.Workers,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "sweep scrape request failed", "sport", req.Sport, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) SweepFinalize(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SweepFinalize")
	defer span.End()

	req, err := decodeScoreJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.sweepService.SweepFinalize(ctx, usecase.SweepInput{
		Sport:      h.resolveSport(r, req.Sport),
		Date:       req.Date,
		MaxWorkers: req.Workers,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "sweep finalize request failed", "sport", req.Sport, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) SchedulerStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SchedulerStatus")
	defer span.End()

	if h.scheduler == nil {
		writeError(ctx, w, fmt.Errorf("%w: scheduler is not enabled", usecase.ErrDependencyUnavailable))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, h.scheduler.Status())
}

type seasonDTO struct {
	Season       string   `json:"season"`
	Sports       []string `json:"sports"`
	ActiveSports []string `json:"activeSports"`
}

// ListSeasons reports the season the clock currently falls in and which of
// its sports have scrape support.
func (h *Handler) ListSeasons(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSeasons")
	defer span.End()

	month := h.now().In(schedule.DefaultLocation()).Month()
	season := schedule.CurrentSeason(month)

	writeSuccess(ctx, w, http.StatusOK, seasonDTO{
		Season:       season.Name,
		Sports:       append([]string(nil), season.Sports...),
		ActiveSports: schedule.ActiveSports(month),
	})
}

func (h *Handler) timezoneFromPath(r *http.Request) (schedule.Timezone, error) {
	name := strings.ToLower(strings.TrimSpace(r.PathValue("timezone")))
	tz, ok := schedule.TimezoneByName(name)
	if !ok {
		return schedule.Timezone{}, fmt.Errorf("%w: unknown timezone %q", usecase.ErrNotFound, name)
	}
	return tz, nil
}

func forceFromQuery(r *http.Request) bool {
	return r.URL.Query().Get("force") == "1"
}
