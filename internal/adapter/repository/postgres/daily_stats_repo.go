package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/legendtrack/internal/domain"
)

// DailyStatsRepository implements usecase.DailyStatsRepository. Every merge
// is a single additive upsert, so replays of the same cycle converge instead
// of double-counting, and concurrent pollers never lose increments.
type DailyStatsRepository struct {
	pool    *pgxpool.Pool
	retrier *Retrier
}

// NewDailyStatsRepository creates a new DailyStatsRepository.
func NewDailyStatsRepository(pool *pgxpool.Pool, retrier *Retrier) *DailyStatsRepository {
	return &DailyStatsRepository{pool: pool, retrier: retrier}
}

const statsColumns = `player_id, day, offense_count, offense_total, defense_count, defense_total, net_change`

// EnsureDay creates a zero row for (playerID, day) if none exists.
func (r *DailyStatsRepository) EnsureDay(ctx context.Context, playerID string, day domain.GameDay) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO daily_stats (player_id, day)
		VALUES ($1, $2::date)
		ON CONFLICT (player_id, day) DO NOTHING`,
		playerID, day.String(),
	)

	return domain.NewStorageError("ensure daily stats row", err)
}

// MergeEvent folds one event into the aggregate row. The counters are
// accumulated inside the upsert itself, never read back and rewritten.
func (r *DailyStatsRepository) MergeEvent(ctx context.Context, playerID string, day domain.GameDay, e *domain.TrophyEvent) error {
	delta := domain.NewDailyStats(playerID, day)
	delta.Apply(e)

	err := r.retrier.Retry(ctx, func() error {
		_, execErr := r.pool.Exec(ctx, `
			INSERT INTO daily_stats (player_id, day, offense_count, offense_total, defense_count, defense_total, net_change)
			VALUES ($1, $2::date, $3, $4, $5, $6, $7)
			ON CONFLICT (player_id, day) DO UPDATE SET
				offense_count = daily_stats.offense_count + EXCLUDED.offense_count,
				offense_total = daily_stats.offense_total + EXCLUDED.offense_total,
				defense_count = daily_stats.defense_count + EXCLUDED.defense_count,
				defense_total = daily_stats.defense_total + EXCLUDED.defense_total,
				net_change    = daily_stats.net_change + EXCLUDED.net_change`,
			playerID, day.String(),
			delta.OffenseCount, delta.OffenseTotal,
			delta.DefenseCount, delta.DefenseTotal,
			delta.NetChange,
		)

		return execErr
	})

	return domain.NewStorageError("merge trophy event", err)
}

// GetDay returns the aggregate row for one game day, or nil when the player
// has no row for that day.
func (r *DailyStatsRepository) GetDay(ctx context.Context, playerID string, day domain.GameDay) (*domain.DailyStats, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+statsColumns+` FROM daily_stats
		 WHERE player_id = $1 AND day = $2::date`,
		playerID, day.String())

	stats, err := scanDailyStats(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, domain.NewStorageError("get daily stats", err)
	}

	return stats, nil
}

// GetSince returns rows with day >= from, newest day first.
func (r *DailyStatsRepository) GetSince(ctx context.Context, playerID string, from domain.GameDay) ([]*domain.DailyStats, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+statsColumns+` FROM daily_stats
		 WHERE player_id = $1 AND day >= $2::date
		 ORDER BY day DESC`,
		playerID, from.String())
	if err != nil {
		return nil, domain.NewStorageError("get daily stats since", err)
	}
	defer rows.Close()

	return collectDailyStats(rows)
}

// GetBefore returns rows with day < before, newest day first. Retention
// keeps the table shallow, so the scan is naturally bounded.
func (r *DailyStatsRepository) GetBefore(ctx context.Context, playerID string, before domain.GameDay) ([]*domain.DailyStats, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+statsColumns+` FROM daily_stats
		 WHERE player_id = $1 AND day < $2::date
		 ORDER BY day DESC`,
		playerID, before.String())
	if err != nil {
		return nil, domain.NewStorageError("get daily stats before", err)
	}
	defer rows.Close()

	return collectDailyStats(rows)
}

// ListForDay returns every player's row for one game day.
func (r *DailyStatsRepository) ListForDay(ctx context.Context, day domain.GameDay) ([]*domain.DailyStats, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+statsColumns+` FROM daily_stats
		 WHERE day = $1::date
		 ORDER BY net_change DESC, player_id ASC`,
		day.String())
	if err != nil {
		return nil, domain.NewStorageError("list daily stats for day", err)
	}
	defer rows.Close()

	return collectDailyStats(rows)
}

// DeleteBefore removes rows with day strictly before cutoffDay.
func (r *DailyStatsRepository) DeleteBefore(ctx context.Context, cutoffDay domain.GameDay) (int64, error) {
	ct, err := r.pool.Exec(ctx,
		`DELETE FROM daily_stats WHERE day < $1::date`, cutoffDay.String())
	if err != nil {
		return 0, domain.NewStorageError("delete daily stats", err)
	}

	return ct.RowsAffected(), nil
}

func scanDailyStats(row pgx.Row) (*domain.DailyStats, error) {
	var (
		s   domain.DailyStats
		day time.Time
	)
	err := row.Scan(
		&s.PlayerID, &day,
		&s.OffenseCount, &s.OffenseTotal,
		&s.DefenseCount, &s.DefenseTotal,
		&s.NetChange,
	)
	if err != nil {
		return nil, err
	}
	s.Day = domain.GameDay(day.Format("2006-01-02"))

	return &s, nil
}

func collectDailyStats(rows pgx.Rows) ([]*domain.DailyStats, error) {
	var stats []*domain.DailyStats
	for rows.Next() {
		s, err := scanDailyStats(rows)
		if err != nil {
			return nil, domain.NewStorageError("scan daily stats", err)
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list daily stats", err)
	}

	return stats, nil
}
