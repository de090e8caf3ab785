package unit

import (
	"math"

	"github.com/crucible-games/skirmish/internal/sim/entity"
	"github.com/crucible-games/skirmish/internal/sim/grid"
)

// MoveTo plans and begins a path to dest. The unit commits to the first step
// immediately so its cell accounting is correct from this tick on.
//
// Postcondition: Returns true iff a path was found and the unit is Moving.
// A dest equal to the current tile or an unreachable dest returns false and
// leaves the unit where it was.
func (u *Unit) MoveTo(ctx Context, dest grid.Tile) bool {
	p := ctx.Grid().FindPath(u.Tile, dest)
	if p == nil || len(p) < 2 {
		return false
	}
	// The path includes the starting tile; the unit is already there.
	u.path = p[1:]
	u.moveDest = dest
	u.State = entity.Moving
	u.departNext(ctx)
	return u.State == entity.Moving
}

// advanceMovement glides the continuous position toward the committed tile's
// center and, on arrival, departs for the next waypoint.
//
// Cell accounting is commit-at-departure: the authoritative tile (and the
// Occupied flag) moved when the step began, so two units can never commit to
// the same cell no matter how their glides interleave.
func (u *Unit) advanceMovement(ctx Context) {
	if u.State != entity.Moving {
		return
	}

	tx, ty := ctx.Grid().TileToWorld(u.Tile.I, u.Tile.J)
	dx, dy := tx-u.X, ty-u.Y
	dist := math.Hypot(dx, dy)
	if dist > u.Speed {
		u.X += dx / dist * u.Speed
		u.Y += dy / dist * u.Speed
		return
	}

	// Arrived at the committed tile's center.
	u.X, u.Y = tx, ty
	if len(u.path) == 0 {
		u.State = entity.Idle
		return
	}
	u.departNext(ctx)
}

// departNext commits the unit to its next waypoint: the new cell is checked,
// occupied, and made authoritative before the glide toward it starts. A
// waypoint that went stale (blocked since planning) aborts the whole path.
func (u *Unit) departNext(ctx Context) {
	next := u.path[0]
	g := ctx.Grid()
	if !g.IsWalkable(next.I, next.J) {
		u.stopMoving(ctx)
		return
	}
	u.Facing = faceToward(u.Tile, next)
	g.Vacate(u.Tile.I, u.Tile.J)
	g.Occupy(next.I, next.J)
	u.Tile = next
	u.path = u.path[1:]
}

// stopMoving abandons the current path and settles on the committed tile.
func (u *Unit) stopMoving(ctx Context) {
	u.path = nil
	u.moveDest = grid.Tile{}
	if u.State == entity.Moving {
		u.State = entity.Idle
	}
	u.X, u.Y = ctx.Grid().TileToWorld(u.Tile.I, u.Tile.J)
}

// faceToward maps a single-step tile delta to the 8-direction facing index
// (0 = north, clockwise).
func faceToward(from, to grid.Tile) int {
	di := sign(to.I - from.I)
	dj := sign(to.J - from.J)
	switch [2]int{di, dj} {
	case [2]int{0, -1}:
		return 0
	case [2]int{1, -1}:
		return 1
	case [2]int{1, 0}:
		return 2
	case [2]int{1, 1}:
		return 3
	case [2]int{0, 1}:
		return 4
	case [2]int{-1, 1}:
		return 5
	case [2]int{-1, 0}:
		return 6
	case [2]int{-1, -1}:
		return 7
	default:
		return 0
	}
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
