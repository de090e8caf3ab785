package unit

import (
	"github.com/crucible-games/skirmish/internal/sim/building"
	"github.com/crucible-games/skirmish/internal/sim/entity"
	"github.com/crucible-games/skirmish/internal/sim/event"
	"github.com/crucible-games/skirmish/internal/sim/grid"
	"github.com/crucible-games/skirmish/internal/sim/rng"
)

// Context is the slice of the world a unit sees during its update. The world
// driver implements it; tests implement it with fixtures.
type Context interface {
	// Grid returns the shared spatial grid.
	Grid() *grid.Grid
	// Roller returns the world's randomness roller.
	Roller() *rng.Roller

	// UnitByID resolves a weak unit reference. Dead, dying, or unknown ids
	// resolve to (nil, false).
	UnitByID(id entity.ID) (*Unit, bool)
	// NearestHostile returns the closest live unit of another team within
	// from's sight range.
	NearestHostile(from *Unit) (*Unit, bool)

	// BuildingByID resolves a building reference.
	BuildingByID(id building.ID) (*building.Building, bool)
	// FriendlyBuildings returns team's placed buildings.
	FriendlyBuildings(team int) []*building.Building

	// LaunchProjectile spawns a tracked projectile carrying precomputed
	// damage from owner to target.
	LaunchProjectile(owner, target *Unit, damage int)

	// Publish delivers a fire-and-forget event to the audio/presentation
	// collaborators and any registered script hooks.
	Publish(ev event.Event)

	// ErrandAllowed consults the optional scripting precondition for a shop
	// errand. Absent hooks allow everything.
	ErrandAllowed(u *Unit, buildingKind string) bool
}
