package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/prepscores/internal/platform/logging"
	"github.com/riskibarqy/prepscores/internal/usecase"
)

// SchedulerStatusProvider exposes the scheduler snapshot without binding the
// handler to the scheduler lifecycle.
type SchedulerStatusProvider interface {
	Status() usecase.SchedulerStatus
}

type Handler struct {
	scrapeService   *usecase.ScrapeService
	finalizeService *usecase.FinalizeService
	sweepService    *usecase.SweepService
	scheduler       SchedulerStatusProvider
	defaultStates   []string
	defaultSport    string
	logger          *logging.Logger
	validator       *validator.Validate
	now             func() time.Time
}

func NewHandler(
	scrapeService *usecase.ScrapeService,
	finalizeService *usecase.FinalizeService,
	sweepService *usecase.SweepService,
	scheduler SchedulerStatusProvider,
	defaultStates []string,
	defaultSport string,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		scrapeService:   scrapeService,
		finalizeService: finalizeService,
		sweepService:    sweepService,
		scheduler:       scheduler,
		defaultStates:   defaultStates,
		defaultSport:    defaultSport,
		logger:          logger,
		validator:       validator.New(),
		now:             time.Now,
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// scoreJobRequest is shared by the scrape, finalize, and sweep endpoints.
// Every field is optional, so an empty body falls back to the configured
// defaults.
type scoreJobRequest struct {
	States  []string `json:"states" validate:"omitempty,dive,len=2"`
	Sport   string   `json:"sport" validate:"omitempty,max=40"`
	Date    string   `json:"date" validate:"omitempty,max=10"`
	Force   bool     `json:"force"`
	Workers int      `json:"workers" validate:"omitempty,gte=0,lte=6"`
}

func decodeScoreJobRequest(r *http.Request) (scoreJobRequest, error) {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req scoreJobRequest
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return scoreJobRequest{}, nil
		}
		return scoreJobRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return req, nil
}

func (h *Handler) statesOrDefault(states []string) []string {
	if len(states) > 0 {
		return states
	}
	return h.defaultStates
}

// resolveSport prefers the body sport, then the sport query param, then the
// configured default.
func (h *Handler) resolveSport(r *http.Request, bodySport string) string {
	if sport := strings.TrimSpace(bodySport); sport != "" {
		return sport
	}
	if sport := strings.TrimSpace(r.URL.Query().Get("sport")); sport != "" {
		return sport
	}
	return h.defaultSport
}
