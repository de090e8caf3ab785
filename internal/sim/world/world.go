// Package world ties the simulation together: the ordered entity registry,
// the single-threaded tick driver, spawning, the event bus, and the read-only
// presentation queries. The World is the one implementation of unit.Context.
package world

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/crucible-games/skirmish/internal/sim/building"
	"github.com/crucible-games/skirmish/internal/sim/entity"
	"github.com/crucible-games/skirmish/internal/sim/event"
	"github.com/crucible-games/skirmish/internal/sim/grid"
	"github.com/crucible-games/skirmish/internal/sim/projectile"
	"github.com/crucible-games/skirmish/internal/sim/rng"
	"github.com/crucible-games/skirmish/internal/sim/ruleset"
	"github.com/crucible-games/skirmish/internal/sim/unit"
)

// Hooks is the optional scripting extension point. The world forwards every
// published event and consults the errand precondition; a nil Hooks allows
// everything and observes nothing.
type Hooks interface {
	// OnEvent observes a published simulation event. Must not block.
	OnEvent(ev event.Event)
	// ErrandAllowed gates a unit's shop errand before it starts.
	ErrandAllowed(unitID uint64, buildingKind string) bool
}

// actor is anything the driver advances once per tick.
type actor interface {
	Update(unit.Context)
}

// World owns all live simulation state. It is not safe for concurrent use:
// the driver calls Tick from a single goroutine and all queries happen
// between ticks.
type World struct {
	grid   *grid.Grid
	rules  *ruleset.Registry
	roller *rng.Roller
	logger *zap.Logger
	sink   event.Sink
	hooks  Hooks
	tuning unit.Tuning

	// actors is the ordered registry; slice order is update order, so runs
	// with the same seed and spawn sequence replay identically.
	actors []actor
	units  map[entity.ID]*unit.Unit

	buildings   []*building.Building
	buildingIDs map[building.ID]*building.Building

	nextEntityID   entity.ID
	nextBuildingID building.ID

	tick uint64
}

// New creates an empty world over g using the static tables in rules.
//
// Precondition: g, rules, roller, and logger must be non-nil. sink and hooks
// may be nil.
func New(g *grid.Grid, rules *ruleset.Registry, roller *rng.Roller, logger *zap.Logger, sink event.Sink, hooks Hooks, tuning unit.Tuning) *World {
	return &World{
		grid:        g,
		rules:       rules,
		roller:      roller,
		logger:      logger,
		sink:        sink,
		hooks:       hooks,
		tuning:      tuning,
		units:       make(map[entity.ID]*unit.Unit),
		buildingIDs: make(map[building.ID]*building.Building),
	}
}

// Tick advances the world one step: every registered actor updates once, in
// registry order, then Dead actors are compacted out. Entities spawned during
// the pass (projectiles) first update on the next tick.
func (w *World) Tick() {
	w.tick++
	n := len(w.actors)
	for i := 0; i < n; i++ {
		w.actors[i].Update(w)
	}
	w.removeDead()
}

// Ticks returns the number of completed ticks.
func (w *World) Ticks() uint64 { return w.tick }

// removeDead compacts the registry, preserving order, and drops dead units
// from the resolution map. Cells were vacated at the Dying transition.
func (w *World) removeDead() {
	kept := w.actors[:0]
	for _, a := range w.actors {
		switch v := a.(type) {
		case *unit.Unit:
			if v.State == entity.Dead {
				delete(w.units, v.ID)
				w.logger.Debug("unit removed",
					zap.Uint64("id", uint64(v.ID)),
					zap.String("type", v.Type.ID),
				)
				continue
			}
		case *projectile.Projectile:
			if v.Done() {
				continue
			}
		}
		kept = append(kept, a)
	}
	for i := len(kept); i < len(w.actors); i++ {
		w.actors[i] = nil
	}
	w.actors = kept
}

// SpawnUnit creates a unit of the named type at tile at and registers it.
//
// Postcondition: On success the unit occupies its cell and updates on the
// next tick; the error cases (unknown type, blocked tile) leave the world
// unchanged.
func (w *World) SpawnUnit(typeID string, team int, at grid.Tile) (*unit.Unit, error) {
	ut, ok := w.rules.UnitType(typeID)
	if !ok {
		return nil, fmt.Errorf("spawning unit: unknown type %q", typeID)
	}
	if !w.grid.IsWalkable(at.I, at.J) {
		return nil, fmt.Errorf("spawning unit %q: tile %s is not walkable", typeID, at)
	}
	w.nextEntityID++
	u := unit.New(w.nextEntityID, ut, w.rules.Equipment(), w.tuning, team, at, w.grid)
	w.actors = append(w.actors, u)
	w.units[u.ID] = u
	w.logger.Debug("unit spawned",
		zap.Uint64("id", uint64(u.ID)),
		zap.String("type", typeID),
		zap.Int("team", team),
		zap.String("tile", at.String()),
	)
	return u, nil
}

// PlaceBuilding places a building of the named type with its footprint origin
// at origin, locking the footprint tiles. Buildings start unconstructed.
func (w *World) PlaceBuilding(typeID string, team int, origin grid.Tile) (*building.Building, error) {
	bt, ok := w.rules.BuildingType(typeID)
	if !ok {
		return nil, fmt.Errorf("placing building: unknown type %q", typeID)
	}
	for di := 0; di < bt.FootprintW; di++ {
		for dj := 0; dj < bt.FootprintH; dj++ {
			if w.grid.FlagAt(origin.I+di, origin.J+dj) != grid.Empty {
				return nil, fmt.Errorf("placing building %q: footprint tile (%d,%d) is not empty", typeID, origin.I+di, origin.J+dj)
			}
		}
	}
	w.nextBuildingID++
	b := building.New(w.nextBuildingID, bt, team, origin)
	b.LockFootprint(w.grid)
	w.buildings = append(w.buildings, b)
	w.buildingIDs[b.ID] = b
	w.logger.Info("building placed",
		zap.Uint64("id", uint64(b.ID)),
		zap.String("type", typeID),
		zap.Int("team", team),
		zap.String("origin", origin.String()),
	)
	return b, nil
}

// Unit resolves a live unit by id; dead, dying, or unknown ids are not
// resolvable. This is the weak-reference contract every held ID goes through.
func (w *World) Unit(id entity.ID) (*unit.Unit, bool) {
	u, ok := w.units[id]
	if !ok || !u.Alive() {
		return nil, false
	}
	return u, true
}

// Units returns the live units in registry order.
func (w *World) Units() []*unit.Unit {
	out := make([]*unit.Unit, 0, len(w.units))
	for _, a := range w.actors {
		if u, ok := a.(*unit.Unit); ok && u.State != entity.Dead {
			out = append(out, u)
		}
	}
	return out
}

// Building resolves a building by id.
func (w *World) Building(id building.ID) (*building.Building, bool) {
	b, ok := w.buildingIDs[id]
	return b, ok
}

// Buildings returns all placed buildings in placement order.
func (w *World) Buildings() []*building.Building { return w.buildings }

// Grid returns the shared spatial grid.
func (w *World) Grid() *grid.Grid { return w.grid }

// Roller returns the world's randomness roller.
func (w *World) Roller() *rng.Roller { return w.roller }

// UnitByID implements unit.Context.
func (w *World) UnitByID(id entity.ID) (*unit.Unit, bool) { return w.Unit(id) }

// BuildingByID implements unit.Context.
func (w *World) BuildingByID(id building.ID) (*building.Building, bool) { return w.Building(id) }

// FriendlyBuildings returns team's buildings in placement order.
func (w *World) FriendlyBuildings(team int) []*building.Building {
	var out []*building.Building
	for _, b := range w.buildings {
		if b.Team == team {
			out = append(out, b)
		}
	}
	return out
}

// NearestHostile scans the registry in order for the closest live unit of a
// different team within from's sight range. Registry order breaks distance
// ties, keeping acquisition deterministic.
func (w *World) NearestHostile(from *unit.Unit) (*unit.Unit, bool) {
	var best *unit.Unit
	bestDist := -1
	for _, a := range w.actors {
		u, ok := a.(*unit.Unit)
		if !ok || u == from || u.Team == from.Team || !u.Alive() {
			continue
		}
		d := from.Tile.Chebyshev(u.Tile)
		if d > from.SightRange {
			continue
		}
		if bestDist == -1 || d < bestDist {
			best, bestDist = u, d
		}
	}
	return best, best != nil
}

// LaunchProjectile implements unit.Context: the projectile registers at the
// end of the registry and first updates next tick.
func (w *World) LaunchProjectile(owner, target *unit.Unit, damage int) {
	w.nextEntityID++
	p := projectile.New(w.nextEntityID, owner, target, damage)
	w.actors = append(w.actors, p)
	w.logger.Debug("projectile launched",
		zap.Uint64("id", uint64(p.ID)),
		zap.Uint64("owner", uint64(owner.ID)),
		zap.Uint64("target", uint64(target.ID)),
		zap.Int("damage", damage),
	)
}

// Publish fans a simulation event out to the sink and the scripting hooks.
// Both are best-effort; a nil sink or hooks drops the event.
func (w *World) Publish(ev event.Event) {
	if w.sink != nil {
		w.sink.Publish(ev)
	}
	if w.hooks != nil {
		w.hooks.OnEvent(ev)
	}
}

// ErrandAllowed implements unit.Context by consulting the scripting hooks.
func (w *World) ErrandAllowed(u *unit.Unit, buildingKind string) bool {
	if w.hooks == nil {
		return true
	}
	return w.hooks.ErrandAllowed(uint64(u.ID), buildingKind)
}
