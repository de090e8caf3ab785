package world

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crucible-games/skirmish/internal/sim/entity"
	"github.com/crucible-games/skirmish/internal/sim/grid"
	"github.com/crucible-games/skirmish/internal/sim/unit"
)

// SaveGame is a point-in-time capture of the world's units. Projectiles are
// transient and not saved; equipment tiers, gold, and errands reset on
// restore (a known limitation of the snapshot format).
type SaveGame struct {
	ID        uuid.UUID         `json:"id" yaml:"id"`
	CreatedAt time.Time         `json:"created_at" yaml:"created_at"`
	Tick      uint64            `json:"tick" yaml:"tick"`
	Snapshots []entity.Snapshot `json:"snapshots" yaml:"snapshots"`
}

// Save captures every live or dying unit in registry order.
func (w *World) Save() *SaveGame {
	sg := &SaveGame{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Tick:      w.tick,
	}
	for _, a := range w.actors {
		if u, ok := a.(*unit.Unit); ok && u.State != entity.Dead {
			sg.Snapshots = append(sg.Snapshots, u.Snapshot())
		}
	}
	return sg
}

// Restore replaces the world's units with the save's snapshots. Buildings and
// their locked footprints persist across restores; in-flight projectiles are
// dropped.
//
// Postcondition: On success the registry holds exactly the save's units in
// snapshot order and the tick counter matches the save. A snapshot naming an
// unknown unit type or a blocked tile fails the whole restore, leaving the
// world cleared.
func (w *World) Restore(sg *SaveGame) error {
	w.clearActors()
	w.tick = sg.Tick

	for i, snap := range sg.Snapshots {
		u, err := w.SpawnUnit(snap.TypeID, snap.Team, grid.Tile{I: snap.TileI, J: snap.TileJ})
		if err != nil {
			return fmt.Errorf("restoring save %s snapshot %d: %w", sg.ID, i, err)
		}
		u.Restore(snap)
		if !u.Alive() {
			// A unit saved mid-death holds no cell.
			w.grid.Vacate(u.Tile.I, u.Tile.J)
		}
	}
	w.logger.Info("save restored",
		zap.String("save_id", sg.ID.String()),
		zap.Uint64("tick", sg.Tick),
		zap.Int("units", len(sg.Snapshots)),
	)
	return nil
}

// clearActors drops every registered actor and vacates their cells.
func (w *World) clearActors() {
	for _, a := range w.actors {
		if u, ok := a.(*unit.Unit); ok && u.Alive() {
			w.grid.Vacate(u.Tile.I, u.Tile.J)
		}
	}
	w.actors = nil
	w.units = make(map[entity.ID]*unit.Unit)
}
