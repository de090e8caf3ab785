package building_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crucible-games/skirmish/internal/sim/building"
	"github.com/crucible-games/skirmish/internal/sim/grid"
	"github.com/crucible-games/skirmish/internal/sim/ruleset"
)

func smithyType(t *testing.T) *ruleset.BuildingType {
	t.Helper()
	bt, err := ruleset.LoadBuildingTypeFromBytes([]byte(`
id: smithy
name: Smithy
kind: weaponsmith
footprint_w: 2
footprint_h: 3
research: [steel_blades]
`))
	require.NoError(t, err)
	return bt
}

func TestFootprintAndContains(t *testing.T) {
	b := building.New(1, smithyType(t), 0, grid.Tile{I: 4, J: 5})
	fp := b.Footprint()
	assert.Len(t, fp, 6)
	assert.True(t, b.Contains(grid.Tile{I: 4, J: 5}))
	assert.True(t, b.Contains(grid.Tile{I: 5, J: 7}))
	assert.False(t, b.Contains(grid.Tile{I: 6, J: 5}))
	assert.False(t, b.Contains(grid.Tile{I: 4, J: 8}))
}

func TestEntranceTile_BelowFootprint(t *testing.T) {
	b := building.New(1, smithyType(t), 0, grid.Tile{I: 4, J: 5})
	assert.Equal(t, grid.Tile{I: 4, J: 8}, b.EntranceTile())
}

func TestLockFootprint(t *testing.T) {
	g := grid.New(10, 10)
	b := building.New(1, smithyType(t), 0, grid.Tile{I: 4, J: 5})
	b.LockFootprint(g)
	for _, tile := range b.Footprint() {
		assert.Equal(t, grid.Locked, g.FlagAt(tile.I, tile.J))
	}
	assert.Equal(t, grid.Empty, g.FlagAt(4, 8), "entrance stays walkable")
}

func TestOffers_RequiresConstruction(t *testing.T) {
	b := building.New(1, smithyType(t), 0, grid.Tile{})
	assert.False(t, b.Offers(ruleset.BuildingWeaponsmith))
	b.Constructed = true
	assert.True(t, b.Offers(ruleset.BuildingWeaponsmith))
	assert.False(t, b.Offers(ruleset.BuildingArmorer))
}

func TestResearch(t *testing.T) {
	b := building.New(1, smithyType(t), 0, grid.Tile{})
	assert.False(t, b.HasResearch("steel_blades"))
	require.NoError(t, b.Research("steel_blades"))
	assert.True(t, b.HasResearch("steel_blades"))
	assert.Error(t, b.Research("plasma_rifles"))
}
