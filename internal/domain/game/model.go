// Package game defines the scoreboard row persisted for every scraped
// contest and the repository contract around it.
package game

import (
	"strings"
	"time"
)

// Contest states observed on scoreboard pages. "contest-in-progress" rows
// that never reached boxscore are what the finalizer reconciles.
const (
	StateBoxscore       = "boxscore"
	StatePregame        = "pregame"
	StateInProgress     = "contest-in-progress"
	StateNotReported    = "score-not-reported"
	StateNeedsReview    = "needs-verification"
	FinalDetails        = "Final"
	TableMaxPrepsScores = "ala_max_prep_scores"
)

// Record is one contest row keyed by the provider's contest id.
type Record struct {
	ID           string     `db:"id" json:"id"`
	StateCode    string     `db:"state_code" json:"state_code"`
	PageURL      string     `db:"page_url" json:"page_url"`
	GameURL      string     `db:"game_url" json:"game_url"`
	GameDate     string     `db:"game_date" json:"game_date"`
	ContestState string     `db:"contest_state" json:"contest_state"`
	IsLive       bool       `db:"is_live" json:"is_live"`
	Details      string     `db:"details" json:"details"`
	TeamsAttr    string     `db:"teams_attr" json:"teams_attr"`
	Team1Name    string     `db:"team1_name" json:"team1_name"`
	Team1Score   *int       `db:"team1_score" json:"team1_score"`
	Team1Winner  bool       `db:"team1_winner" json:"team1_winner"`
	Team1Result  string     `db:"team1_result" json:"team1_result"`
	Team2Name    string     `db:"team2_name" json:"team2_name"`
	Team2Score   *int       `db:"team2_score" json:"team2_score"`
	Team2Winner  bool       `db:"team2_winner" json:"team2_winner"`
	Team2Result  string     `db:"team2_result" json:"team2_result"`
	Sport        string     `db:"sport" json:"sport"`
	Gender       string     `db:"gender" json:"gender"`
	ScrapedAt    time.Time  `db:"scraped_at" json:"scraped_at"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// FinalizeUpdate is the narrow upsert the finalizer applies to stale rows.
type FinalizeUpdate struct {
	ID           string `db:"id" json:"id"`
	ContestState string `db:"contest_state" json:"contest_state"`
	IsLive       bool   `db:"is_live" json:"is_live"`
	Details      string `db:"details" json:"details"`
}

// Dedupe drops rows with an empty contest id and keeps the first occurrence
// of every remaining id, preserving input order.
func Dedupe(records []Record) []Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, record := range records {
		id := strings.TrimSpace(record.ID)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, record)
	}
	return out
}

// NeedsFinalize reports whether a row is still marked live-in-progress.
func (r Record) NeedsFinalize() bool {
	return r.ContestState == StateInProgress
}

// HasAnyScore reports whether at least one side has a reported score.
func (r Record) HasAnyScore() bool {
	return r.Team1Score != nil || r.Team2Score != nil
}
