// Package entity defines the shared base record for everything that lives on
// the grid: identity, position, health, lifecycle state, and the weak
// target/owner references resolved through the world registry.
package entity

import (
	"fmt"

	"github.com/crucible-games/skirmish/internal/sim/combat"
	"github.com/crucible-games/skirmish/internal/sim/grid"
)

// ID identifies a live entity. IDs are issued monotonically by the world
// registry; zero means "no entity" and is what a cleared target reads as.
type ID uint64

// None is the zero ID, used for absent target/owner references.
const None ID = 0

// State is the lifecycle state of an entity.
type State int

const (
	// Idle: standing on its tile, no path, free for AI decisions.
	Idle State = iota
	// Moving: consuming a waypoint path.
	Moving
	// Attacking: executed an attack this engagement; reverts to Idle when
	// the target dies or is cleared.
	Attacking
	// Dying: health reached zero; cell vacated, no further AI, awaiting
	// removal once the death presentation finishes.
	Dying
	// Dead: removable by the driver at the end of the tick.
	Dead
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Moving:
		return "moving"
	case Attacking:
		return "attacking"
	case Dying:
		return "dying"
	case Dead:
		return "dead"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Entity is the base record embedded by units and projectiles.
//
// The tile coordinate is authoritative; the continuous position tracks it in
// lockstep while idle and diverges smoothly while moving. Target and owner
// are weak references: holders must re-resolve them through the registry
// before every use and treat a failed resolution as "no target".
type Entity struct {
	ID   ID
	Tile grid.Tile

	// X, Y is the continuous world position under the isometric projection.
	X float64
	Y float64

	Health    int
	MaxHealth int
	Armor     int
	State     State

	// TargetID is the current combat target; None when unengaged.
	TargetID ID
	// OwnerID is the spawning entity for projectiles and summons; None for
	// free-standing units.
	OwnerID ID
	// Team is the faction tag used for hostility checks.
	Team int

	// Ledger is the victim-side experience ledger (nil for entities worth
	// no experience, e.g. projectiles).
	Ledger *combat.Ledger

	// Color is the visual tint tag carried through save games for the
	// presentation layer.
	Color int

	// Selected mirrors the presentation-layer selection flag.
	Selected bool
}

// Alive reports whether the entity is still an acceptable combat target.
func (e *Entity) Alive() bool {
	return e.Health > 0 && e.State != Dying && e.State != Dead
}

// TakeDamage applies damage, clamping health at zero. Reaching zero moves the
// entity to Dying and reports true; the caller is responsible for vacating
// the cell and dropping path/target state. Damage against an entity already
// Dying or Dead is ignored.
//
// Postcondition: Health >= 0.
func (e *Entity) TakeDamage(dmg int) (died bool) {
	if dmg <= 0 || e.State == Dying || e.State == Dead {
		return false
	}
	e.Health -= dmg
	if e.Health <= 0 {
		e.Health = 0
		e.State = Dying
		return true
	}
	return false
}

// SnapTo moves the entity's tile coordinate and re-derives the continuous
// position from g's projection. Used at spawn and on waypoint commit.
func (e *Entity) SnapTo(g *grid.Grid, t grid.Tile) {
	e.Tile = t
	e.X, e.Y = g.TileToWorld(t.I, t.J)
}
