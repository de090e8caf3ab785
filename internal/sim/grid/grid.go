// Package grid implements the spatial grid for the simulation: per-tile
// occupancy flags, tile/world coordinate conversion, and A* pathfinding.
//
// The grid is a cache of entity positions, not the authority; entities own
// their tile coordinate and must vacate/occupy cells as they move. The tick
// loop serializes all mutation, so no locking is required here.
package grid

import "fmt"

// Flag is the tri-state occupancy marker for a single tile.
type Flag uint8

const (
	// Empty marks a walkable tile with no entity on it.
	Empty Flag = iota
	// Occupied marks a tile currently held by exactly one live entity.
	Occupied
	// Locked marks a permanently impassable tile (water, rock, building
	// footprint). Out-of-bounds queries also read as Locked.
	Locked
)

// String returns the flag name for logging.
func (f Flag) String() string {
	switch f {
	case Empty:
		return "empty"
	case Occupied:
		return "occupied"
	case Locked:
		return "locked"
	default:
		return fmt.Sprintf("flag(%d)", uint8(f))
	}
}

// Tile identifies a grid cell by integer coordinates.
type Tile struct {
	I int
	J int
}

// String returns "(i,j)" for logging and test failure output.
func (t Tile) String() string {
	return fmt.Sprintf("(%d,%d)", t.I, t.J)
}

// Adjacent8 reports whether o is one of t's eight neighbors.
func (t Tile) Adjacent8(o Tile) bool {
	di := t.I - o.I
	dj := t.J - o.J
	if di < 0 {
		di = -di
	}
	if dj < 0 {
		dj = -dj
	}
	return di <= 1 && dj <= 1 && (di != 0 || dj != 0)
}

// Chebyshev returns the Chebyshev (king-move) distance between t and o.
// One unit of attack range equals one Chebyshev step.
func (t Tile) Chebyshev(o Tile) int {
	di := t.I - o.I
	dj := t.J - o.J
	if di < 0 {
		di = -di
	}
	if dj < 0 {
		dj = -dj
	}
	if di > dj {
		return di
	}
	return dj
}

// TerrainFunc is the walkability predicate exposed by the map collaborator.
// It is consulted once at grid construction; terrain never changes afterward.
type TerrainFunc func(i, j int) bool

// Grid owns the occupancy flags for width × height tiles.
type Grid struct {
	width  int
	height int
	cells  []Flag

	tileW float64
	tileH float64
}

// Default isometric tile metrics, in world units. Overridable per grid for
// maps rendered at a different scale.
const (
	DefaultTileWidth  = 64.0
	DefaultTileHeight = 32.0
)

// New creates a grid of width × height tiles, all Empty.
//
// Precondition: width > 0 and height > 0.
func New(width, height int) *Grid {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("grid: New called with non-positive dimensions %dx%d", width, height))
	}
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]Flag, width*height),
		tileW:  DefaultTileWidth,
		tileH:  DefaultTileHeight,
	}
}

// NewFromTerrain creates a grid whose unwalkable terrain tiles are Locked.
//
// Precondition: width > 0, height > 0; terrain must be non-nil.
// Postcondition: Every tile where terrain(i,j) is false reads Locked; all
// others read Empty.
func NewFromTerrain(width, height int, terrain TerrainFunc) *Grid {
	g := New(width, height)
	for i := 0; i < width; i++ {
		for j := 0; j < height; j++ {
			if !terrain(i, j) {
				g.cells[j*width+i] = Locked
			}
		}
	}
	return g
}

// Width returns the grid width in tiles.
func (g *Grid) Width() int { return g.width }

// Height returns the grid height in tiles.
func (g *Grid) Height() int { return g.height }

// SetTileMetrics overrides the isometric tile size used by the coordinate
// conversions.
//
// Precondition: w > 0 and h > 0.
func (g *Grid) SetTileMetrics(w, h float64) {
	if w <= 0 || h <= 0 {
		panic("grid: SetTileMetrics called with non-positive metrics")
	}
	g.tileW = w
	g.tileH = h
}

// InBounds reports whether (i,j) lies inside the grid.
func (g *Grid) InBounds(i, j int) bool {
	return i >= 0 && i < g.width && j >= 0 && j < g.height
}

// FlagAt returns the occupancy flag at (i,j). Out-of-bounds tiles read as
// Locked; a bad lookup is never an error.
func (g *Grid) FlagAt(i, j int) Flag {
	if !g.InBounds(i, j) {
		return Locked
	}
	return g.cells[j*g.width+i]
}

// SetFlag stores flag at (i,j). Out-of-bounds writes are ignored.
func (g *Grid) SetFlag(i, j int, flag Flag) {
	if !g.InBounds(i, j) {
		return
	}
	g.cells[j*g.width+i] = flag
}

// IsWalkable reports whether (i,j) is in bounds and Empty.
func (g *Grid) IsWalkable(i, j int) bool {
	return g.FlagAt(i, j) == Empty
}

// Occupy marks (i,j) as held by an entity. Locked tiles stay Locked.
func (g *Grid) Occupy(i, j int) {
	if g.FlagAt(i, j) == Locked {
		return
	}
	g.SetFlag(i, j, Occupied)
}

// Vacate clears the Occupied flag at (i,j). Locked tiles stay Locked.
func (g *Grid) Vacate(i, j int) {
	if g.FlagAt(i, j) == Locked {
		return
	}
	g.SetFlag(i, j, Empty)
}

// TileToWorld converts a tile coordinate to the continuous world position of
// the tile's center under the standard isometric projection.
func (g *Grid) TileToWorld(i, j int) (x, y float64) {
	x = float64(i-j) * g.tileW / 2
	y = float64(i+j) * g.tileH / 2
	return x, y
}

// WorldToTile converts a continuous world position back to the containing
// tile coordinate. Inverse of TileToWorld up to rounding.
func (g *Grid) WorldToTile(x, y float64) Tile {
	fi := y/g.tileH + x/g.tileW
	fj := y/g.tileH - x/g.tileW
	return Tile{I: roundToInt(fi), J: roundToInt(fj)}
}

func roundToInt(f float64) int {
	if f >= 0 {
		return int(f + 0.5)
	}
	return int(f - 0.5)
}
