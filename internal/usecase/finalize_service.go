package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/prepscores/internal/domain/game"
	"github.com/riskibarqy/prepscores/internal/platform/logging"
)

type FinalizeInput struct {
	States []string
	Sport  string
}

type FinalizeResult struct {
	OK                      bool     `json:"ok"`
	Sport                   string   `json:"sport"`
	States                  []string `json:"states"`
	Rows                    int      `json:"rows"`
	RowsNeedingVerification int      `json:"rowsNeedingVerification"`
	RowsMissingScore        int      `json:"rowsMissingScore"`
	RowsSuccessfullyUpdated int      `json:"rowsSuccessfullyUpdated"`
}

// FinalizeService sweeps rows still marked in progress after the games ended
// and settles their contest state. It deliberately takes no game date: the
// finalize crons fire after local midnight, the morning after game day.
type FinalizeService struct {
	repo   game.Repository
	logger *logging.Logger
}

func NewFinalizeService(repo game.Repository, logger *logging.Logger) *FinalizeService {
	if logger == nil {
		logger = logging.Default()
	}
	return &FinalizeService{
		repo:   repo,
		logger: logger,
	}
}

func (s *FinalizeService) Finalize(ctx context.Context, input FinalizeInput) (FinalizeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FinalizeService.Finalize")
	defer span.End()

	if s.repo == nil {
		return FinalizeResult{}, fmt.Errorf("%w: finalize service is not fully configured", ErrDependencyUnavailable)
	}

	states, err := normalizeStates(input.States)
	if err != nil {
		return FinalizeResult{}, err
	}
	sport, err := normalizeSport(input.Sport)
	if err != nil {
		return FinalizeResult{}, err
	}

	// Rows are stored under the uppercase base sport, without the gender
	// suffix of compound names like volleyball-girls.
	storedSport := strings.ToUpper(baseSport(sport))

	rows, err := s.repo.ListForFinalize(ctx, storedSport, states)
	if err != nil {
		return FinalizeResult{}, fmt.Errorf("list rows to finalize sport=%s: %w", sport, err)
	}

	result := FinalizeResult{
		OK:     true,
		Sport:  sport,
		States: states,
		Rows:   len(rows),
	}

	updates := make([]game.FinalizeUpdate, 0, len(rows))
	for _, row := range rows {
		if !row.NeedsFinalize() {
			continue
		}

		state := game.StateNeedsReview
		if !row.HasAnyScore() {
			state = game.StateNotReported
			result.RowsMissingScore++
		} else {
			result.RowsNeedingVerification++
		}

		updates = append(updates, game.FinalizeUpdate{
			ID:           row.ID,
			ContestState: state,
			IsLive:       false,
			Details:      game.FinalDetails,
		})
	}

	if len(updates) > 0 {
		updated, err := s.repo.ApplyFinalizeUpdates(ctx, updates)
		if err != nil {
			return FinalizeResult{}, fmt.Errorf("apply finalize updates sport=%s: %w", sport, err)
		}
		result.RowsSuccessfullyUpdated = updated
	}

	s.logger.InfoContext(ctx, "finalize finished",
		"sport", sport,
		"rows", result.Rows,
		"needs_verification", result.RowsNeedingVerification,
		"missing_score", result.RowsMissingScore,
		"updated", result.RowsSuccessfullyUpdated,
	)
	return result, nil
}

func baseSport(sport string) string {
	if idx := strings.IndexByte(sport, '-'); idx >= 0 {
		return sport[:idx]
	}
	return sport
}
