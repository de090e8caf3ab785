package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/crucible-games/skirmish/internal/sim/entity"
	"github.com/crucible-games/skirmish/internal/sim/grid"
)

func TestTakeDamage_Clamps(t *testing.T) {
	e := &entity.Entity{Health: 10, MaxHealth: 50, State: entity.Idle}
	died := e.TakeDamage(15)
	assert.True(t, died)
	assert.Equal(t, 0, e.Health)
	assert.Equal(t, entity.Dying, e.State)
}

func TestTakeDamage_Survives(t *testing.T) {
	e := &entity.Entity{Health: 10, MaxHealth: 50, State: entity.Idle}
	died := e.TakeDamage(4)
	assert.False(t, died)
	assert.Equal(t, 6, e.Health)
	assert.Equal(t, entity.Idle, e.State)
	assert.True(t, e.Alive())
}

func TestTakeDamage_IgnoredWhileDying(t *testing.T) {
	e := &entity.Entity{Health: 0, MaxHealth: 50, State: entity.Dying}
	assert.False(t, e.TakeDamage(10))
	assert.Equal(t, 0, e.Health)
	assert.Equal(t, entity.Dying, e.State)
}

func TestTakeDamage_NonPositiveIgnored(t *testing.T) {
	e := &entity.Entity{Health: 10, MaxHealth: 50, State: entity.Idle}
	assert.False(t, e.TakeDamage(0))
	assert.False(t, e.TakeDamage(-3))
	assert.Equal(t, 10, e.Health)
}

func TestTakeDamage_Property_HealthNeverNegative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		max := rapid.IntRange(1, 500).Draw(rt, "max")
		e := &entity.Entity{Health: max, MaxHealth: max, State: entity.Idle}
		hits := rapid.IntRange(1, 20).Draw(rt, "hits")
		for h := 0; h < hits; h++ {
			e.TakeDamage(rapid.IntRange(-50, 300).Draw(rt, "dmg"))
			assert.GreaterOrEqual(rt, e.Health, 0)
			assert.LessOrEqual(rt, e.Health, max)
		}
	})
}

func TestAlive(t *testing.T) {
	e := &entity.Entity{Health: 5, State: entity.Idle}
	assert.True(t, e.Alive())
	e.State = entity.Dying
	assert.False(t, e.Alive())
	e = &entity.Entity{Health: 0, State: entity.Idle}
	assert.False(t, e.Alive())
}

func TestSnapTo_KeepsPositionsInLockstep(t *testing.T) {
	g := grid.New(10, 10)
	e := &entity.Entity{}
	e.SnapTo(g, grid.Tile{I: 3, J: 7})
	assert.Equal(t, grid.Tile{I: 3, J: 7}, e.Tile)
	wantX, wantY := g.TileToWorld(3, 7)
	assert.Equal(t, wantX, e.X)
	assert.Equal(t, wantY, e.Y)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", entity.Idle.String())
	assert.Equal(t, "moving", entity.Moving.String())
	assert.Equal(t, "attacking", entity.Attacking.String())
	assert.Equal(t, "dying", entity.Dying.String())
	assert.Equal(t, "dead", entity.Dead.String())
}
