package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/legendtrack/internal/domain"
)

// TrophyEventRepository implements usecase.TrophyEventRepository. The table
// is append-only: rows are inserted, range-deleted by the sweeper, and never
// updated.
type TrophyEventRepository struct {
	pool *pgxpool.Pool
}

// NewTrophyEventRepository creates a new TrophyEventRepository.
func NewTrophyEventRepository(pool *pgxpool.Pool) *TrophyEventRepository {
	return &TrophyEventRepository{pool: pool}
}

const eventColumns = `id, player_id, previous_trophies, new_trophies, delta, is_attack, recorded_at`

// Append inserts one classified event.
func (r *TrophyEventRepository) Append(ctx context.Context, e *domain.TrophyEvent) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO trophy_events (id, player_id, previous_trophies, new_trophies, delta, is_attack, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.PlayerID, e.PreviousTrophies, e.NewTrophies, e.Delta, e.IsAttack, e.RecordedAt,
	)

	return domain.NewStorageError("append trophy event", err)
}

// ListRecent returns the newest events first.
func (r *TrophyEventRepository) ListRecent(ctx context.Context, playerID string, limit int) ([]*domain.TrophyEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM trophy_events
		 WHERE player_id = $1
		 ORDER BY recorded_at DESC, id DESC
		 LIMIT $2`,
		playerID, limit)
	if err != nil {
		return nil, domain.NewStorageError("list recent trophy events", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// ListRange returns events with recorded_at in [from, to), oldest first.
func (r *TrophyEventRepository) ListRange(ctx context.Context, playerID string, from, to time.Time) ([]*domain.TrophyEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM trophy_events
		 WHERE player_id = $1 AND recorded_at >= $2 AND recorded_at < $3
		 ORDER BY recorded_at ASC, id ASC`,
		playerID, from, to)
	if err != nil {
		return nil, domain.NewStorageError("list trophy events in range", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// DeleteBefore removes events strictly older than cutoff.
func (r *TrophyEventRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ct, err := r.pool.Exec(ctx,
		`DELETE FROM trophy_events WHERE recorded_at < $1`, cutoff)
	if err != nil {
		return 0, domain.NewStorageError("delete trophy events", err)
	}

	return ct.RowsAffected(), nil
}

func collectEvents(rows pgx.Rows) ([]*domain.TrophyEvent, error) {
	var events []*domain.TrophyEvent
	for rows.Next() {
		var e domain.TrophyEvent
		if err := rows.Scan(&e.ID, &e.PlayerID, &e.PreviousTrophies, &e.NewTrophies, &e.Delta, &e.IsAttack, &e.RecordedAt); err != nil {
			return nil, domain.NewStorageError("scan trophy event", err)
		}
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list trophy events", err)
	}

	return events, nil
}
