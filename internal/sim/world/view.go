package world

import (
	"github.com/crucible-games/skirmish/internal/sim/entity"
	"github.com/crucible-games/skirmish/internal/sim/unit"
)

// UnitView is the read-only per-unit record the presentation layer renders
// from. Views are value copies taken between ticks; holding one across a tick
// shows stale data, never a torn write.
type UnitView struct {
	ID     entity.ID
	TypeID string
	Name   string

	TileI, TileJ int
	X, Y         float64
	Facing       int

	State     entity.State
	Health    int
	MaxHealth int
	Level     int
	Team      int

	Selected  bool
	HasTarget bool
}

// View returns the presentation view for one unit.
func (w *World) View(id entity.ID) (UnitView, bool) {
	u, ok := w.units[id]
	if !ok {
		return UnitView{}, false
	}
	return viewOf(u), true
}

// Views returns views of every registered unit, Dying included, in registry
// order. The renderer draws Dying units for the death presentation even
// though they are no longer valid targets.
func (w *World) Views() []UnitView {
	var out []UnitView
	for _, a := range w.actors {
		if u, ok := a.(*unit.Unit); ok {
			out = append(out, viewOf(u))
		}
	}
	return out
}

func viewOf(u *unit.Unit) UnitView {
	return UnitView{
		ID:        u.ID,
		TypeID:    u.Type.ID,
		Name:      u.Type.Name,
		TileI:     u.Tile.I,
		TileJ:     u.Tile.J,
		X:         u.X,
		Y:         u.Y,
		Facing:    u.Facing,
		State:     u.State,
		Health:    u.Health,
		MaxHealth: u.MaxHealth,
		Level:     u.Level,
		Team:      u.Team,
		Selected:  u.Selected,
		HasTarget: u.TargetID != entity.None,
	}
}
