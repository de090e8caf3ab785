package unit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/crucible-games/skirmish/internal/sim/building"
	"github.com/crucible-games/skirmish/internal/sim/entity"
	"github.com/crucible-games/skirmish/internal/sim/event"
	"github.com/crucible-games/skirmish/internal/sim/grid"
	"github.com/crucible-games/skirmish/internal/sim/rng"
	"github.com/crucible-games/skirmish/internal/sim/ruleset"
	"github.com/crucible-games/skirmish/internal/sim/unit"
)

// launched records one projectile request made through the fixture context.
type launched struct {
	owner, target *unit.Unit
	damage        int
}

// testCtx is a fixture implementation of unit.Context backed by plain maps.
type testCtx struct {
	g         *grid.Grid
	roller    *rng.Roller
	units     map[entity.ID]*unit.Unit
	buildings []*building.Building
	events    []event.Event
	shots     []launched
	veto      func(*unit.Unit, string) bool
}

func newTestCtx(t *testing.T, seed int64) *testCtx {
	t.Helper()
	return &testCtx{
		g:      grid.New(20, 20),
		roller: rng.NewRoller(rng.NewSeeded(seed), zaptest.NewLogger(t)),
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

func (c *testCtx) NearestHostile(from *unit.Unit) (*unit.Unit, bool) {
	var best *unit.Unit
	bestDist := -1
	for _, u := range c.units {
		if u.Team == from.Team || !u.Alive() {
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

func (c *testCtx) BuildingByID(id building.ID) (*building.Building, bool) {
	for _, b := range c.buildings {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}

func (c *testCtx) FriendlyBuildings(team int) []*building.Building {
	var out []*building.Building
	for _, b := range c.buildings {
		if b.Team == team {
			out = append(out, b)
		}
	}
	return out
}

func (c *testCtx) LaunchProjectile(owner, target *unit.Unit, damage int) {
	c.shots = append(c.shots, launched{owner: owner, target: target, damage: damage})
}

func (c *testCtx) Publish(ev event.Event) { c.events = append(c.events, ev) }

func (c *testCtx) ErrandAllowed(u *unit.Unit, kind string) bool {
	if c.veto == nil {
		return true
	}
	return c.veto(u, kind)
}

func (c *testCtx) eventsOf(kind event.Kind) []event.Event {
	var out []event.Event
	for _, ev := range c.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func (c *testCtx) spawn(id entity.ID, ut *ruleset.UnitType, team int, at grid.Tile) *unit.Unit {
	u := unit.New(id, ut, testEquipment(), unit.DefaultTuning(), team, at, c.g)
	c.units[id] = u
	return u
}

func footmanType() *ruleset.UnitType {
	return &ruleset.UnitType{
		ID:             "footman",
		Name:           "Footman",
		Archetype:      ruleset.StatStrength,
		AttackKind:     ruleset.AttackMelee,
		MaxHealth:      10,
		MinDamage:      5,
		MaxDamage:      5,
		AttackRange:    1,
		AttackCooldown: 10,
		Speed:          40,
		SightRange:     6,
		MaxLevel:       5,
		ExpToLevel:     10,
		DeadExp:        20,
		GoldMin:        10,
		GoldMax:        10,
		Stats:          ruleset.Stats{MeleeSkill: 200, Vitality: 4},
	}
}

func archerType() *ruleset.UnitType {
	ut := footmanType()
	ut.ID = "archer"
	ut.Name = "Archer"
	ut.Archetype = ruleset.StatArtifice
	ut.AttackKind = ruleset.AttackRanged
	ut.AttackRange = 3
	ut.Stats = ruleset.Stats{RangedSkill: 200, Vitality: 4}
	return ut
}

func testEquipment() *ruleset.EquipmentTable {
	return &ruleset.EquipmentTable{
		WeaponTiers: []ruleset.WeaponTier{
			{Tier: 0, DamageBonus: 0, Price: 0},
			{Tier: 1, DamageBonus: 3, Price: 10},
			{Tier: 2, DamageBonus: 6, Price: 25},
		},
		ArmorTiers: []ruleset.ArmorTier{
			{Tier: 0, ArmorBonus: 0, Price: 0},
			{Tier: 1, ArmorBonus: 5, Price: 10},
		},
		WeaponEnchants: []ruleset.EnchantTier{
			{Tier: 0, Bonus: 0, Price: 0},
			{Tier: 1, Bonus: 2, Price: 15},
		},
		ArmorEnchants: []ruleset.EnchantTier{
			{Tier: 0, Bonus: 0, Price: 0},
			{Tier: 1, Bonus: 1, Price: 15},
		},
	}
}

func tickUntil(t *testing.T, ctx *testCtx, u *unit.Unit, limit int, done func() bool) {
	t.Helper()
	for i := 0; i < limit; i++ {
		if done() {
			return
		}
		u.Update(ctx)
	}
	require.True(t, done(), "condition not reached within %d ticks", limit)
}

func TestNew_OccupiesCellAndDerivesStride(t *testing.T) {
	ctx := newTestCtx(t, 1)
	u := ctx.spawn(7, footmanType(), 0, grid.Tile{I: 3, J: 4})

	assert.Equal(t, grid.Occupied, ctx.g.FlagAt(3, 4))
	assert.Equal(t, entity.Idle, u.State)
	assert.Equal(t, 10, u.Health)
	assert.Equal(t, 5+7%6, u.AIStride())
	assert.Equal(t, 5, u.MinDamage, "base damage with zero stat and tier bonuses")
}

func TestMoveTo_CommitsFirstStepAtDeparture(t *testing.T) {
	ctx := newTestCtx(t, 1)
	u := ctx.spawn(1, footmanType(), 0, grid.Tile{I: 0, J: 0})

	require.True(t, u.MoveTo(ctx, grid.Tile{I: 3, J: 0}))

	assert.Equal(t, entity.Moving, u.State)
	assert.Equal(t, grid.Tile{I: 1, J: 0}, u.Tile, "first step committed immediately")
	assert.Equal(t, grid.Empty, ctx.g.FlagAt(0, 0))
	assert.Equal(t, grid.Occupied, ctx.g.FlagAt(1, 0))
}

func TestMoveTo_RejectsSameTileAndUnreachable(t *testing.T) {
	ctx := newTestCtx(t, 1)
	u := ctx.spawn(1, footmanType(), 0, grid.Tile{I: 5, J: 5})

	assert.False(t, u.MoveTo(ctx, grid.Tile{I: 5, J: 5}))
	ctx.g.SetFlag(9, 9, grid.Locked)
	assert.False(t, u.MoveTo(ctx, grid.Tile{I: 9, J: 9}))
	assert.Equal(t, entity.Idle, u.State)
}

func TestMovement_ArrivesAndSettles(t *testing.T) {
	ctx := newTestCtx(t, 1)
	u := ctx.spawn(1, footmanType(), 0, grid.Tile{I: 0, J: 0})
	dest := grid.Tile{I: 4, J: 4}
	require.True(t, u.MoveTo(ctx, dest))

	tickUntil(t, ctx, u, 100, func() bool { return u.State == entity.Idle })

	assert.Equal(t, dest, u.Tile)
	wx, wy := ctx.g.TileToWorld(dest.I, dest.J)
	assert.Equal(t, wx, u.X)
	assert.Equal(t, wy, u.Y)
	assert.Empty(t, u.Path())
	assert.Equal(t, grid.Occupied, ctx.g.FlagAt(dest.I, dest.J))
	assert.Equal(t, grid.Empty, ctx.g.FlagAt(0, 0))
}

func TestMovement_StaleWaypointAbortsPath(t *testing.T) {
	ctx := newTestCtx(t, 1)
	u := ctx.spawn(1, footmanType(), 0, grid.Tile{I: 0, J: 0})
	require.True(t, u.MoveTo(ctx, grid.Tile{I: 3, J: 0}))
	require.Equal(t, grid.Tile{I: 1, J: 0}, u.Tile)

	// Block the rest of the corridor after planning.
	ctx.g.Occupy(2, 0)

	tickUntil(t, ctx, u, 20, func() bool { return u.State == entity.Idle })
	assert.Equal(t, grid.Tile{I: 1, J: 0}, u.Tile, "stops on the committed tile")
	assert.Empty(t, u.Path())
}

func TestPursuit_AttacksAdjacentTarget(t *testing.T) {
	ctx := newTestCtx(t, 42)
	atk := ctx.spawn(1, footmanType(), 0, grid.Tile{I: 1, J: 1})
	def := ctx.spawn(2, footmanType(), 1, grid.Tile{I: 1, J: 2})
	atk.TargetID = def.ID

	atk.Update(ctx)

	assert.Equal(t, entity.Attacking, atk.State)
	assert.Equal(t, 5, def.Health, "skill 200 vs parry 0 always lands for 5")
	assert.Equal(t, footmanType().AttackCooldown, atk.Cooldown)
	require.Len(t, ctx.eventsOf(event.AttackLanded), 1)
	assert.Equal(t, uint64(def.ID), ctx.eventsOf(event.AttackLanded)[0].UnitID)
	assert.Equal(t, 10, atk.Exp, "5 damage at 2 exp per point, level 1")
}

func TestPursuit_HoldsDuringCooldown(t *testing.T) {
	ctx := newTestCtx(t, 42)
	atk := ctx.spawn(1, footmanType(), 0, grid.Tile{I: 1, J: 1})
	def := ctx.spawn(2, footmanType(), 1, grid.Tile{I: 1, J: 2})
	atk.TargetID = def.ID

	atk.Update(ctx)
	require.Equal(t, 5, def.Health)
	atk.Update(ctx)
	assert.Equal(t, 5, def.Health, "second tick is inside the cooldown")
	assert.Equal(t, entity.Attacking, atk.State)
}

func TestPursuit_KillPaysGoldMinusTaxAndClearsTarget(t *testing.T) {
	ctx := newTestCtx(t, 42)
	atk := ctx.spawn(1, footmanType(), 0, grid.Tile{I: 1, J: 1})
	def := ctx.spawn(2, footmanType(), 1, grid.Tile{I: 1, J: 2})
	def.Health = 5
	atk.TargetID = def.ID

	atk.Update(ctx)

	assert.Equal(t, entity.Dying, def.State)
	assert.Equal(t, grid.Empty, ctx.g.FlagAt(1, 2), "victim cell vacated on death")
	assert.Equal(t, 9, atk.Gold, "10 gold minus the 10%% tax share")
	assert.Equal(t, 1, atk.TaxGold)
	assert.Equal(t, entity.None, atk.TargetID)
	assert.Len(t, ctx.eventsOf(event.UnitDied), 1)
}

func TestPursuit_DanglingTargetCleared(t *testing.T) {
	ctx := newTestCtx(t, 1)
	atk := ctx.spawn(1, footmanType(), 0, grid.Tile{I: 1, J: 1})
	atk.TargetID = entity.ID(99)

	atk.Update(ctx)
	assert.Equal(t, entity.None, atk.TargetID)
}

func TestPursuit_RepositionsTowardDistantTarget(t *testing.T) {
	ctx := newTestCtx(t, 1)
	atk := ctx.spawn(1, footmanType(), 0, grid.Tile{I: 0, J: 0})
	def := ctx.spawn(2, footmanType(), 1, grid.Tile{I: 6, J: 6})
	atk.TargetID = def.ID

	atk.Update(ctx)
	assert.Equal(t, entity.Moving, atk.State)

	tickUntil(t, ctx, atk, 200, func() bool { return def.State == entity.Dying })
	assert.LessOrEqual(t, atk.Tile.Chebyshev(def.Tile), atk.AttackRange+1)
}

func TestPursuit_RangedHitLaunchesProjectileWithPrecomputedDamage(t *testing.T) {
	ctx := newTestCtx(t, 42)
	atk := ctx.spawn(1, archerType(), 0, grid.Tile{I: 1, J: 1})
	def := ctx.spawn(2, footmanType(), 1, grid.Tile{I: 1, J: 4})
	atk.TargetID = def.ID

	atk.Update(ctx)

	require.Len(t, ctx.shots, 1)
	assert.Same(t, atk, ctx.shots[0].owner)
	assert.Same(t, def, ctx.shots[0].target)
	assert.Equal(t, 5, ctx.shots[0].damage)
	assert.Equal(t, 10, def.Health, "damage applies on impact, not launch")
}

func TestPursuit_RangedMissLaunchesNothing(t *testing.T) {
	ctx := newTestCtx(t, 42)
	ut := archerType()
	ut.Stats.RangedSkill = 0
	atk := ctx.spawn(1, ut, 0, grid.Tile{I: 1, J: 1})
	dodgy := footmanType()
	dodgy.Stats.Dodge = 200
	def := ctx.spawn(2, dodgy, 1, grid.Tile{I: 1, J: 4})
	atk.TargetID = def.ID

	atk.Update(ctx)

	assert.Empty(t, ctx.shots)
	assert.Equal(t, footmanType().AttackCooldown, atk.Cooldown, "a miss still spends the attack")
}

func TestGainExperience_LevelsUpWithFullHeal(t *testing.T) {
	ctx := newTestCtx(t, 7)
	u := ctx.spawn(1, footmanType(), 0, grid.Tile{I: 0, J: 0})
	u.Health = 3
	before := *u

	u.GainExperience(ctx, 10)

	assert.Equal(t, 2, u.Level)
	assert.Equal(t, 0, u.Exp)
	assert.Equal(t, before.Stats.MeleeSkill, u.Stats.MeleeSkill, "already past the stat cap")
	assert.Equal(t, before.Stats.Parry+1, u.Stats.Parry)
	assert.Equal(t, before.Stats.Dodge+1, u.Stats.Dodge)
	assert.Equal(t, before.Stats.Strength, u.Stats.Strength, "primary stat only on odd levels")
	// Vitality 4: growth is 2 plus a roll in [1, 2].
	assert.GreaterOrEqual(t, u.MaxHealth, 13)
	assert.LessOrEqual(t, u.MaxHealth, 14)
	assert.Equal(t, u.MaxHealth, u.Health, "level-up fully heals")
	assert.Len(t, ctx.eventsOf(event.LevelUp), 1)
}

func TestGainExperience_OddLevelBumpsPrimaryStat(t *testing.T) {
	ctx := newTestCtx(t, 7)
	u := ctx.spawn(1, footmanType(), 0, grid.Tile{I: 0, J: 0})
	before := u.Stats.Strength

	u.GainExperience(ctx, 20)

	assert.Equal(t, 3, u.Level)
	assert.Equal(t, before+1, u.Stats.Strength, "level 3 is odd")
	assert.Len(t, ctx.eventsOf(event.LevelUp), 2)
}

func TestGainExperience_StopsAtMaxLevel(t *testing.T) {
	ctx := newTestCtx(t, 7)
	u := ctx.spawn(1, footmanType(), 0, grid.Tile{I: 0, J: 0})

	u.GainExperience(ctx, 1000)

	assert.Equal(t, u.MaxLevel, u.Level)
	assert.Equal(t, 1000-10*(u.MaxLevel-1), u.Exp, "overflow experience accumulates at the cap")
}

func TestDecide_AcquiresNearestHostileAndDropsErrand(t *testing.T) {
	ctx := newTestCtx(t, 1)
	u := ctx.spawn(1, footmanType(), 0, grid.Tile{I: 2, J: 2})
	hostile := ctx.spawn(2, footmanType(), 1, grid.Tile{I: 4, J: 4})

	u.Update(ctx)
	assert.Equal(t, hostile.ID, u.TargetID)
	assert.Nil(t, u.Errand())
}

func TestDecide_HostileOutOfSightIgnored(t *testing.T) {
	ctx := newTestCtx(t, 1)
	ut := footmanType()
	ut.WanderChance = 0
	u := ctx.spawn(1, ut, 0, grid.Tile{I: 0, J: 0})
	ctx.spawn(2, footmanType(), 1, grid.Tile{I: 15, J: 15})

	u.Update(ctx)
	assert.Equal(t, entity.None, u.TargetID)
	assert.Equal(t, entity.Idle, u.State)
}

func placeSmithy(ctx *testCtx, id building.ID, team int, origin grid.Tile) *building.Building {
	b := building.New(id, &ruleset.BuildingType{
		ID:         "smithy",
		Name:       "Smithy",
		Kind:       ruleset.BuildingWeaponsmith,
		FootprintW: 2,
		FootprintH: 2,
	}, team, origin)
	b.Constructed = true
	b.LockFootprint(ctx.g)
	ctx.buildings = append(ctx.buildings, b)
	return b
}

func TestErrand_BuysWeaponTierAtTheSmithy(t *testing.T) {
	ctx := newTestCtx(t, 3)
	ut := footmanType()
	ut.ShopChance = map[string]float64{ruleset.BuildingWeaponsmith: 1}
	u := ctx.spawn(1, ut, 0, grid.Tile{I: 0, J: 0})
	u.Gold = 12
	placeSmithy(ctx, 1, 0, grid.Tile{I: 5, J: 3})

	tickUntil(t, ctx, u, 300, func() bool { return u.WeaponTier == 1 })

	assert.Equal(t, 2, u.Gold, "tier 1 costs 10")
	assert.Nil(t, u.Errand())
	assert.Equal(t, 5+3, u.MinDamage, "weapon bonus folded into damage")
	assert.Len(t, ctx.eventsOf(event.ItemPurchased), 1)
}

func TestErrand_RequiresAffordableUpgrade(t *testing.T) {
	ctx := newTestCtx(t, 3)
	ut := footmanType()
	ut.ShopChance = map[string]float64{ruleset.BuildingWeaponsmith: 1}
	u := ctx.spawn(1, ut, 0, grid.Tile{I: 0, J: 0})
	u.Gold = 5
	placeSmithy(ctx, 1, 0, grid.Tile{I: 5, J: 3})

	u.Update(ctx)
	assert.Nil(t, u.Errand())
	assert.Equal(t, 0, u.WeaponTier)
}

func TestErrand_ScriptVetoBlocksErrand(t *testing.T) {
	ctx := newTestCtx(t, 3)
	ctx.veto = func(_ *unit.Unit, _ string) bool { return false }
	ut := footmanType()
	ut.ShopChance = map[string]float64{ruleset.BuildingWeaponsmith: 1}
	u := ctx.spawn(1, ut, 0, grid.Tile{I: 0, J: 0})
	u.Gold = 100
	placeSmithy(ctx, 1, 0, grid.Tile{I: 5, J: 3})

	u.Update(ctx)
	assert.Nil(t, u.Errand())
}

func TestErrand_CancelledWhenBuildingLost(t *testing.T) {
	ctx := newTestCtx(t, 3)
	ut := footmanType()
	ut.ShopChance = map[string]float64{ruleset.BuildingWeaponsmith: 1}
	u := ctx.spawn(1, ut, 0, grid.Tile{I: 0, J: 0})
	u.Gold = 100
	b := placeSmithy(ctx, 1, 0, grid.Tile{I: 5, J: 3})

	u.Update(ctx)
	require.NotNil(t, u.Errand())

	b.Constructed = false
	tickUntil(t, ctx, u, 50, func() bool { return u.Errand() == nil })
	assert.Equal(t, 0, u.WeaponTier)
}

func TestApplyDamage_DeathLingersThenReadsDead(t *testing.T) {
	ctx := newTestCtx(t, 1)
	u := ctx.spawn(1, footmanType(), 0, grid.Tile{I: 2, J: 2})

	require.True(t, u.ApplyDamage(ctx, 100))
	assert.Equal(t, entity.Dying, u.State)
	assert.Equal(t, grid.Empty, ctx.g.FlagAt(2, 2))

	for i := 0; i < unit.DefaultTuning().DeathTicks; i++ {
		assert.NotEqual(t, entity.Dead, u.State)
		u.Update(ctx)
	}
	assert.Equal(t, entity.Dead, u.State)
}

func TestSnapshotRestore_RoundTripsScalarState(t *testing.T) {
	ctx := newTestCtx(t, 1)
	u := ctx.spawn(1, footmanType(), 0, grid.Tile{I: 2, J: 2})
	u.GainExperience(ctx, 13)
	u.Health = 7

	snap := u.Snapshot()
	other := ctx.spawn(2, footmanType(), 1, grid.Tile{I: 4, J: 4})
	other.Restore(snap)

	assert.Equal(t, u.Level, other.Level)
	assert.Equal(t, u.Exp, other.Exp)
	assert.Equal(t, u.Health, other.Health)
	assert.Equal(t, u.MaxHealth, other.MaxHealth)
	assert.Equal(t, u.MinDamage, other.MinDamage)
	assert.Equal(t, u.Team, other.Team)
	assert.Equal(t, "footman", snap.TypeID)
}

func TestRestore_ZeroLevelClampsToOne(t *testing.T) {
	ctx := newTestCtx(t, 1)
	u := ctx.spawn(1, footmanType(), 0, grid.Tile{I: 2, J: 2})

	snap := u.Snapshot()
	snap.Level = 0
	u.Restore(snap)
	require.Equal(t, 1, u.Level)

	// A restored unit must still be able to credit damage.
	victim := ctx.spawn(2, footmanType(), 1, grid.Tile{I: 3, J: 2})
	victim.ApplyDamage(ctx, 4)
	u.CreditDamage(ctx, victim, 4, false)
	assert.Greater(t, u.Exp, 0)
}
