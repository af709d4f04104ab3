package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prepscores/internal/domain/game"
	"github.com/riskibarqy/prepscores/internal/platform/logging"
	qb "github.com/riskibarqy/prepscores/internal/platform/querybuilder"
)

// upsertChunkSize bounds a single multi-row insert. lib/pq caps placeholders
// at 65535 and each row carries 21 columns.
const upsertChunkSize = 500

var scoreColumns = []string{
	"id", "state_code", "page_url", "game_url", "game_date",
	"contest_state", "is_live", "details", "teams_attr",
	"team1_name", "team1_score", "team1_winner", "team1_result",
	"team2_name", "team2_score", "team2_winner", "team2_result",
	"sport", "gender", "scraped_at", "updated_at",
}

const scoreUpsertSuffix = `ON CONFLICT (id)
DO UPDATE SET
    state_code = EXCLUDED.state_code,
    page_url = EXCLUDED.page_url,
    game_url = EXCLUDED.game_url,
    game_date = EXCLUDED.game_date,
    contest_state = EXCLUDED.contest_state,
    is_live = EXCLUDED.is_live,
    details = EXCLUDED.details,
    teams_attr = EXCLUDED.teams_attr,
    team1_name = EXCLUDED.team1_name,
    team1_score = EXCLUDED.team1_score,
    team1_winner = EXCLUDED.team1_winner,
    team1_result = EXCLUDED.team1_result,
    team2_name = EXCLUDED.team2_name,
    team2_score = EXCLUDED.team2_score,
    team2_winner = EXCLUDED.team2_winner,
    team2_result = EXCLUDED.team2_result,
    sport = EXCLUDED.sport,
    gender = EXCLUDED.gender,
    scraped_at = EXCLUDED.scraped_at,
    updated_at = NOW()`

type GameRepository struct {
	db        *sqlx.DB
	logger    *logging.Logger
	chunkSize int

	// execChunk writes one chunk; tests swap it to exercise the chunking
	// walk without a live database.
	execChunk func(ctx context.Context, chunk []game.Record) error
}

func NewGameRepository(db *sqlx.DB, logger *logging.Logger) *GameRepository {
	if logger == nil {
		logger = logging.Default()
	}
	r := &GameRepository{db: db, logger: logger, chunkSize: upsertChunkSize}
	r.execChunk = r.upsertChunk
	return r
}

// UpsertRecords writes scraped rows in chunks. A failed chunk is logged and
// skipped rather than aborting the run, and the returned count includes every
// row handed to a successful chunk.
func (r *GameRepository) UpsertRecords(ctx context.Context, records []game.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	total := 0
	for start := 0; start < len(records); start += r.chunkSize {
		end := start + r.chunkSize
		if end > len(records) {
			end = len(records)
		}
		chunk := records[start:end]

		if err := r.execChunk(ctx, chunk); err != nil {
			r.logger.WarnContext(ctx, "score upsert chunk failed",
				"offset", start,
				"size", len(chunk),
				"error", err,
			)
			continue
		}
		total += len(chunk)
	}

	return total, nil
}

func (r *GameRepository) upsertChunk(ctx context.Context, chunk []game.Record) error {
	builder := qb.InsertInto(game.TableMaxPrepsScores).
		Columns(scoreColumns...).
		Suffix(scoreUpsertSuffix)
	for _, row := range chunk {
		builder.Values(
			row.ID, row.StateCode, row.PageURL, row.GameURL, row.GameDate,
			row.ContestState, row.IsLive, row.Details, row.TeamsAttr,
			row.Team1Name, row.Team1Score, row.Team1Winner, row.Team1Result,
			row.Team2Name, row.Team2Score, row.Team2Winner, row.Team2Result,
			row.Sport, row.Gender, row.ScrapedAt, row.UpdatedAt,
		)
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return fmt.Errorf("build score upsert query: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert scores: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert score chunk: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert scores tx: %w", err)
	}
	return nil
}

// ListForFinalize returns rows for the sport and states that have not settled
// into boxscore and are past pregame. There is no game-date predicate: the
// finalize crons fire after local midnight, so the previous evening's rows
// must stay visible.
func (r *GameRepository) ListForFinalize(ctx context.Context, sport string, states []string) ([]game.Record, error) {
	stateValues := make([]any, 0, len(states))
	for _, state := range states {
		stateValues = append(stateValues, state)
	}

	query, args, err := qb.Select(scoreColumns...).
		From(game.TableMaxPrepsScores).
		Where(
			qb.Eq("sport", sport),
			qb.In("state_code", stateValues),
			qb.Expr("contest_state NOT IN (?, ?)", game.StateBoxscore, game.StatePregame),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build finalize list query: %w", err)
	}

	out := make([]game.Record, 0, 64)
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list rows to finalize sport=%s: %w", sport, err)
	}
	return out, nil
}

// ApplyFinalizeUpdates upserts the settled contest state onto each row by id.
func (r *GameRepository) ApplyFinalizeUpdates(ctx context.Context, updates []game.FinalizeUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx finalize updates: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	updated := 0
	for _, update := range updates {
		query, args, err := qb.Update(game.TableMaxPrepsScores).
			Set("contest_state", update.ContestState).
			Set("is_live", update.IsLive).
			Set("details", update.Details).
			SetExpr("updated_at", "NOW()").
			Where(qb.Eq("id", update.ID)).
			ToSQL()
		if err != nil {
			return 0, fmt.Errorf("build finalize update query: %w", err)
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("finalize row id=%s: %w", update.ID, err)
		}
		if rows, err := res.RowsAffected(); err == nil {
			updated += int(rows)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit finalize updates tx: %w", err)
	}
	return updated, nil
}
