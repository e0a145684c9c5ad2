package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/legendtrack/internal/domain"
)

// PlayerRepository implements usecase.PlayerRepository.
type PlayerRepository struct {
	pool *pgxpool.Pool
}

// NewPlayerRepository creates a new PlayerRepository.
func NewPlayerRepository(pool *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{pool: pool}
}

const playerColumns = `id, tag, name, clan_name, current_trophies, is_tracking, last_updated, created_at`

// GetByTag retrieves a player by normalized tag.
func (r *PlayerRepository) GetByTag(ctx context.Context, tag string) (*domain.Player, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+playerColumns+` FROM players WHERE tag = $1`, tag)

	player, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlayerNotFound
		}

		return nil, domain.NewStorageError("get player", err)
	}

	return player, nil
}

// Upsert creates the player or refreshes its mutable fields.
func (r *PlayerRepository) Upsert(ctx context.Context, p *domain.Player) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO players (id, tag, name, clan_name, current_trophies, is_tracking, last_updated, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (tag) DO UPDATE SET
			name             = EXCLUDED.name,
			clan_name        = EXCLUDED.clan_name,
			current_trophies = EXCLUDED.current_trophies,
			is_tracking      = EXCLUDED.is_tracking,
			last_updated     = EXCLUDED.last_updated`,
		p.ID, p.Tag, p.Name, p.ClanName, p.CurrentTrophies, p.IsTracking, p.LastUpdated, p.CreatedAt,
	)

	return domain.NewStorageError("upsert player", err)
}

// ListTracking returns tracking-enabled players ordered by trophies
// descending; ties keep first-tracked order so leaderboard ranking stays
// stable between cycles.
func (r *PlayerRepository) ListTracking(ctx context.Context) ([]*domain.Player, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+playerColumns+` FROM players
		 WHERE is_tracking
		 ORDER BY current_trophies DESC, created_at ASC, id ASC`)
	if err != nil {
		return nil, domain.NewStorageError("list tracking players", err)
	}
	defer rows.Close()

	var players []*domain.Player
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, domain.NewStorageError("scan player", err)
		}
		players = append(players, player)
	}

	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("list tracking players", err)
	}

	return players, nil
}

// SetTracking flips the tracking flag without touching history.
func (r *PlayerRepository) SetTracking(ctx context.Context, tag string, tracking bool) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE players SET is_tracking = $2 WHERE tag = $1`, tag, tracking)
	if err != nil {
		return domain.NewStorageError("set tracking", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrPlayerNotFound
	}

	return nil
}

func scanPlayer(row pgx.Row) (*domain.Player, error) {
	var p domain.Player
	err := row.Scan(
		&p.ID, &p.Tag, &p.Name, &p.ClanName,
		&p.CurrentTrophies, &p.IsTracking, &p.LastUpdated, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &p, nil
}
