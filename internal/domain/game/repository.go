package game

import "context"

// Repository persists scraped contest rows.
type Repository interface {
	// UpsertRecords writes rows keyed by contest id and returns how many
	// rows were actually persisted. Implementations may write in chunks and
	// skip a failed chunk rather than abort the whole batch.
	UpsertRecords(ctx context.Context, records []Record) (int, error)

	// ListForFinalize returns rows for the sport and states that are not
	// already settled (boxscore) and not still pregame, regardless of game
	// date, so evening games are still visible to an after-midnight pass.
	ListForFinalize(ctx context.Context, sport string, states []string) ([]Record, error)

	// ApplyFinalizeUpdates upserts the finalizer's state transitions and
	// returns how many rows were updated.
	ApplyFinalizeUpdates(ctx context.Context, updates []FinalizeUpdate) (int, error)
}
