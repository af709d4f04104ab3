// Package memory backs the repositories with in-process maps for local runs
// and tests, where no database is configured.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/prepscores/internal/domain/game"
)

type GameRepository struct {
	mu   sync.RWMutex
	rows map[string]game.Record
}

func NewGameRepository() *GameRepository {
	return &GameRepository{rows: make(map[string]game.Record)}
}

func (r *GameRepository) UpsertRecords(_ context.Context, records []game.Record) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	stored := 0
	for _, record := range records {
		if record.ID == "" {
			continue
		}
		if _, exists := r.rows[record.ID]; exists {
			record.UpdatedAt = &now
		}
		r.rows[record.ID] = record
		stored++
	}
	return stored, nil
}

func (r *GameRepository) ListForFinalize(_ context.Context, sport string, states []string) ([]game.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stateSet := make(map[string]struct{}, len(states))
	for _, state := range states {
		stateSet[state] = struct{}{}
	}

	out := make([]game.Record, 0)
	for _, record := range r.rows {
		if record.Sport != sport {
			continue
		}
		if _, ok := stateSet[record.StateCode]; !ok {
			continue
		}
		if record.ContestState == game.StateBoxscore || record.ContestState == game.StatePregame {
			continue
		}
		out = append(out, record)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *GameRepository) ApplyFinalizeUpdates(_ context.Context, updates []game.FinalizeUpdate) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	updated := 0
	for _, update := range updates {
		record, ok := r.rows[update.ID]
		if !ok {
			continue
		}
		record.ContestState = update.ContestState
		record.IsLive = update.IsLive
		record.Details = update.Details
		record.UpdatedAt = &now
		r.rows[update.ID] = record
		updated++
	}
	return updated, nil
}

// Get returns a stored row by contest id.
func (r *GameRepository) Get(id string) (game.Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.rows[id]
	return record, ok
}

// Len returns the number of stored rows.
func (r *GameRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows)
}
