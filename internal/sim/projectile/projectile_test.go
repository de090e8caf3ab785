package projectile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/crucible-games/skirmish/internal/sim/building"
	"github.com/crucible-games/skirmish/internal/sim/entity"
	"github.com/crucible-games/skirmish/internal/sim/event"
	"github.com/crucible-games/skirmish/internal/sim/grid"
	"github.com/crucible-games/skirmish/internal/sim/projectile"
	"github.com/crucible-games/skirmish/internal/sim/rng"
	"github.com/crucible-games/skirmish/internal/sim/ruleset"
	"github.com/crucible-games/skirmish/internal/sim/unit"
)

type testCtx struct {
	g      *grid.Grid
	roller *rng.Roller
	units  map[entity.ID]*unit.Unit
	events []event.Event
}

func newTestCtx(t *testing.T) *testCtx {
	t.Helper()
	return &testCtx{
		g:      grid.New(20, 20),
		roller: rng.NewRoller(rng.NewSeeded(1), zaptest.NewLogger(t)),
		units:  make(map[entity.ID]*unit.Unit),
	}
}

func (c *testCtx) Grid() *grid.Grid    { return c.g }
func (c *testCtx) Roller() *rng.Roller { return c.roller }

func (c *testCtx) UnitByID(id entity.ID) (*unit.Unit, bool) {
	u, ok := c.units[id]
	if !ok || !u.Alive() {
		return nil, false
	}
	return u, true
}

func (c *testCtx) NearestHostile(*unit.Unit) (*unit.Unit, bool) { return nil, false }

func (c *testCtx) BuildingByID(building.ID) (*building.Building, bool) { return nil, false }

func (c *testCtx) FriendlyBuildings(int) []*building.Building { return nil }

func (c *testCtx) LaunchProjectile(*unit.Unit, *unit.Unit, int) {}

func (c *testCtx) Publish(ev event.Event) { c.events = append(c.events, ev) }

func (c *testCtx) ErrandAllowed(*unit.Unit, string) bool { return true }

func (c *testCtx) spawn(id entity.ID, team int, at grid.Tile) *unit.Unit {
	ut := &ruleset.UnitType{
		ID:             "archer",
		Name:           "Archer",
		Archetype:      ruleset.StatArtifice,
		AttackKind:     ruleset.AttackRanged,
		MaxHealth:      20,
		MinDamage:      4,
		MaxDamage:      4,
		AttackRange:    3,
		AttackCooldown: 10,
		Speed:          40,
		SightRange:     6,
		MaxLevel:       5,
		ExpToLevel:     100,
		DeadExp:        40,
		GoldMin:        6,
		GoldMax:        6,
	}
	equip := &ruleset.EquipmentTable{
		WeaponTiers:    []ruleset.WeaponTier{{Tier: 0}},
		ArmorTiers:     []ruleset.ArmorTier{{Tier: 0}},
		WeaponEnchants: []ruleset.EnchantTier{{Tier: 0}},
		ArmorEnchants:  []ruleset.EnchantTier{{Tier: 0}},
	}
	u := unit.New(id, ut, equip, unit.DefaultTuning(), team, at, c.g)
	c.units[id] = u
	return u
}

func eventsOf(evs []event.Event, kind event.Kind) []event.Event {
	var out []event.Event
	for _, ev := range evs {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func fly(ctx *testCtx, p *projectile.Projectile, limit int) int {
	for i := 0; i < limit; i++ {
		if p.Done() {
			return i
		}
		p.Update(ctx)
	}
	return limit
}

func TestImpact_AppliesCarriedDamageAndCreditsOwner(t *testing.T) {
	ctx := newTestCtx(t)
	owner := ctx.spawn(1, 0, grid.Tile{I: 1, J: 1})
	target := ctx.spawn(2, 1, grid.Tile{I: 8, J: 8})

	p := projectile.New(100, owner, target, 7)
	fly(ctx, p, 50)

	require.True(t, p.Done())
	assert.Equal(t, 13, target.Health)
	require.Len(t, eventsOf(ctx.events, event.AttackLanded), 1)
	// 7 damage at 2 exp per point (40 dead exp over 20 max health).
	assert.Equal(t, 14, owner.Exp)
}

func TestImpact_KillPaysGoldAndPublishesDeath(t *testing.T) {
	ctx := newTestCtx(t)
	owner := ctx.spawn(1, 0, grid.Tile{I: 1, J: 1})
	target := ctx.spawn(2, 1, grid.Tile{I: 8, J: 8})
	target.Health = 5
	owner.TargetID = target.ID

	p := projectile.New(100, owner, target, 7)
	fly(ctx, p, 50)

	assert.Equal(t, entity.Dying, target.State)
	assert.Len(t, eventsOf(ctx.events, event.UnitDied), 1)
	// 6 gold rounds to a zero tax share at 10%.
	assert.Equal(t, 6, owner.Gold)
	assert.Equal(t, 0, owner.TaxGold)
	assert.Equal(t, entity.None, owner.TargetID, "kill clears the owner's target")
}

func TestTargetDiedMidFlight_Fizzles(t *testing.T) {
	ctx := newTestCtx(t)
	owner := ctx.spawn(1, 0, grid.Tile{I: 1, J: 1})
	target := ctx.spawn(2, 1, grid.Tile{I: 8, J: 8})

	p := projectile.New(100, owner, target, 7)
	p.Update(ctx)
	require.False(t, p.Done())

	target.ApplyDamage(ctx, 100)
	p.Update(ctx)

	assert.True(t, p.Done())
	assert.Empty(t, eventsOf(ctx.events, event.AttackLanded))
}

func TestDeadOwner_DamageLandsWithoutCredit(t *testing.T) {
	ctx := newTestCtx(t)
	owner := ctx.spawn(1, 0, grid.Tile{I: 1, J: 1})
	target := ctx.spawn(2, 1, grid.Tile{I: 8, J: 8})

	p := projectile.New(100, owner, target, 7)
	owner.ApplyDamage(ctx, 100)
	fly(ctx, p, 50)

	require.True(t, p.Done())
	assert.Equal(t, 13, target.Health)
	assert.Equal(t, 0, owner.Exp)
}

func TestLifetimeCap_Expires(t *testing.T) {
	ctx := newTestCtx(t)
	owner := ctx.spawn(1, 0, grid.Tile{I: 1, J: 1})
	target := ctx.spawn(2, 1, grid.Tile{I: 18, J: 18})

	p := projectile.New(100, owner, target, 7)
	p.Speed = 0.001

	ticks := fly(ctx, p, projectile.DefaultLifetime+5)
	assert.True(t, p.Done())
	assert.LessOrEqual(t, ticks, projectile.DefaultLifetime+1)
	assert.Equal(t, 20, target.Health)
}
