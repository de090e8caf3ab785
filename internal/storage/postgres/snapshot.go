package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crucible-games/skirmish/internal/sim/entity"
	"github.com/crucible-games/skirmish/internal/sim/world"
)

// ErrSaveNotFound is returned when a save game lookup yields no results.
var ErrSaveNotFound = errors.New("save game not found")

// SaveSummary is one row of the save list, without the snapshot payload.
type SaveSummary struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Tick      uint64
	Units     int
}

// SnapshotRepository persists world save games.
type SnapshotRepository struct {
	db *pgxpool.Pool
}

// NewSnapshotRepository creates a SnapshotRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSnapshotRepository(db *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Save inserts a save game, snapshots serialized as JSONB.
//
// Precondition: sg must be non-nil with a non-zero ID.
// Postcondition: The save is durably stored under sg.ID.
func (r *SnapshotRepository) Save(ctx context.Context, sg *world.SaveGame) error {
	payload, err := json.Marshal(sg.Snapshots)
	if err != nil {
		return fmt.Errorf("encoding snapshots: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO save_games (id, created_at, tick, snapshots)
		VALUES ($1, $2, $3, $4)`,
		sg.ID, sg.CreatedAt, int64(sg.Tick), payload,
	)
	if err != nil {
		return fmt.Errorf("inserting save game: %w", err)
	}
	return nil
}

// Load retrieves a save game by its ID.
//
// Postcondition: Returns the SaveGame or ErrSaveNotFound.
func (r *SnapshotRepository) Load(ctx context.Context, id uuid.UUID) (*world.SaveGame, error) {
	var (
		sg      world.SaveGame
		tick    int64
		payload []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, created_at, tick, snapshots
		FROM save_games WHERE id = $1`,
		id,
	).Scan(&sg.ID, &sg.CreatedAt, &tick, &payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSaveNotFound
		}
		return nil, fmt.Errorf("querying save game: %w", err)
	}
	sg.Tick = uint64(tick)

	var snaps []entity.Snapshot
	if err := json.Unmarshal(payload, &snaps); err != nil {
		return nil, fmt.Errorf("decoding snapshots for save %s: %w", id, err)
	}
	sg.Snapshots = snaps
	return &sg, nil
}

// List returns summaries of all stored saves, newest first.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *SnapshotRepository) List(ctx context.Context) ([]SaveSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, created_at, tick, jsonb_array_length(snapshots)
		FROM save_games ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing save games: %w", err)
	}
	defer rows.Close()

	summaries := make([]SaveSummary, 0)
	for rows.Next() {
		var (
			s    SaveSummary
			tick int64
		)
		if err := rows.Scan(&s.ID, &s.CreatedAt, &tick, &s.Units); err != nil {
			return nil, fmt.Errorf("scanning save game row: %w", err)
		}
		s.Tick = uint64(tick)
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Delete removes a save game.
//
// Postcondition: Returns nil on success, ErrSaveNotFound if no row matched.
func (r *SnapshotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM save_games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting save game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSaveNotFound
	}
	return nil
}
