// Package building models the economy collaborator: constructed shop
// buildings that units visit on errands. Buildings never tick and are never
// depleted by purchases; units mutate only their own gold.
package building

import (
	"fmt"

	"github.com/crucible-games/skirmish/internal/sim/grid"
	"github.com/crucible-games/skirmish/internal/sim/ruleset"
)

// ID identifies a building.
type ID uint64

// Building is one placed instance of a building type.
type Building struct {
	ID   ID
	Type *ruleset.BuildingType
	// Team is the owning faction; units only run errands to friendly
	// buildings.
	Team int
	// Origin is the top-left tile of the footprint.
	Origin grid.Tile
	// Constructed gates all transactions; an unfinished building offers
	// nothing.
	Constructed bool

	researched map[string]bool
}

// New creates a building of type bt at origin for team.
//
// Precondition: bt must be non-nil.
// Postcondition: The building starts unconstructed with the type's research
// flags unset.
func New(id ID, bt *ruleset.BuildingType, team int, origin grid.Tile) *Building {
	if bt == nil {
		panic("building: New called with nil type")
	}
	return &Building{
		ID:         id,
		Type:       bt,
		Team:       team,
		Origin:     origin,
		researched: make(map[string]bool),
	}
}

// Footprint returns every tile the building covers.
func (b *Building) Footprint() []grid.Tile {
	tiles := make([]grid.Tile, 0, b.Type.FootprintW*b.Type.FootprintH)
	for di := 0; di < b.Type.FootprintW; di++ {
		for dj := 0; dj < b.Type.FootprintH; dj++ {
			tiles = append(tiles, grid.Tile{I: b.Origin.I + di, J: b.Origin.J + dj})
		}
	}
	return tiles
}

// Contains reports whether t lies inside the footprint.
func (b *Building) Contains(t grid.Tile) bool {
	return t.I >= b.Origin.I && t.I < b.Origin.I+b.Type.FootprintW &&
		t.J >= b.Origin.J && t.J < b.Origin.J+b.Type.FootprintH
}

// EntranceTile returns the tile a visiting unit paths to: the cell just
// below the footprint's left corner.
func (b *Building) EntranceTile() grid.Tile {
	return grid.Tile{I: b.Origin.I, J: b.Origin.J + b.Type.FootprintH}
}

// LockFootprint marks every footprint tile Locked on g. Called once at
// placement; the footprint never unlocks.
func (b *Building) LockFootprint(g *grid.Grid) {
	for _, t := range b.Footprint() {
		g.SetFlag(t.I, t.J, grid.Locked)
	}
}

// Offers reports whether the building currently serves errands of kind.
// An unconstructed building offers nothing.
func (b *Building) Offers(kind string) bool {
	return b.Constructed && b.Type.Kind == kind
}

// Research marks an item flag as researched.
//
// Precondition: flag must be listed in the building type's research table.
func (b *Building) Research(flag string) error {
	for _, f := range b.Type.Research {
		if f == flag {
			b.researched[flag] = true
			return nil
		}
	}
	return fmt.Errorf("building %q: unknown research flag %q", b.Type.ID, flag)
}

// HasResearch reports whether flag has been researched.
func (b *Building) HasResearch(flag string) bool {
	return b.researched[flag]
}
