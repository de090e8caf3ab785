// Package unit implements the mobile combat unit: waypoint movement over the
// spatial grid, the attack/targeting state machine, the throttled AI
// decision loop, leveling, and shop errands.
package unit

import (
	"github.com/crucible-games/skirmish/internal/sim/combat"
	"github.com/crucible-games/skirmish/internal/sim/entity"
	"github.com/crucible-games/skirmish/internal/sim/grid"
	"github.com/crucible-games/skirmish/internal/sim/ruleset"
)

// Errand is a persistent AI goal to visit and transact with a building.
type Errand struct {
	Kind       string
	BuildingID uint64
}

// Unit is a live mobile unit on the grid.
type Unit struct {
	entity.Entity

	Type  *ruleset.UnitType
	Stats ruleset.Stats

	MinDamage   int
	MaxDamage   int
	AttackRange int
	// Cooldown is ticks remaining until the next attack; clamped at zero.
	Cooldown int
	// Facing is the 8-direction index (0 = north, clockwise).
	Facing int

	Level     int
	Exp       int
	ExpToNext int
	MaxLevel  int

	Gold    int
	TaxGold int

	WeaponTier    int
	ArmorTier     int
	WeaponEnchant int
	ArmorEnchant  int

	Speed      float64
	SightRange int

	tuning Tuning
	equip  *ruleset.EquipmentTable

	path []grid.Tile
	// moveDest is the final tile of the current path, kept for the reroute
	// check against a drifting target.
	moveDest grid.Tile

	errand *Errand

	// aiCounter counts down to the next throttled decision; zero at spawn
	// so newly spawned units decide immediately.
	aiCounter int
	aiStride  int

	deathTimer int
}

// New creates a live unit of type ut at tile at, occupying its cell on g.
//
// Precondition: ut, equip, and g must be non-nil; at must be walkable.
// Postcondition: The unit is Idle at full health with its cell Occupied and
// its first AI decision due on the next update.
func New(id entity.ID, ut *ruleset.UnitType, equip *ruleset.EquipmentTable, tuning Tuning, team int, at grid.Tile, g *grid.Grid) *Unit {
	u := &Unit{
		Entity: entity.Entity{
			ID:        id,
			Health:    ut.MaxHealth,
			MaxHealth: ut.MaxHealth,
			Armor:     ut.Armor,
			State:     entity.Idle,
			Team:      team,
			Ledger:    combat.NewLedger(ut.DeadExp, ut.MaxHealth),
		},
		Type:        ut,
		Stats:       ut.Stats,
		AttackRange: ut.AttackRange,
		Level:       1,
		ExpToNext:   ut.ExpToLevel,
		MaxLevel:    ut.MaxLevel,
		Speed:       ut.Speed,
		SightRange:  ut.SightRange,
		tuning:      tuning,
		equip:       equip,
		// Stride derived from the stable id so crowds of units spread
		// their decisions across ticks instead of spiking together.
		aiStride: tuning.AIStrideBase + int(uint64(id)%uint64(tuning.AIStrideSpread)),
	}
	u.SnapTo(g, at)
	g.Occupy(at.I, at.J)
	u.recomputeDamage()
	return u
}

// Update advances the unit by one tick: cooldown, combat pursuit
// (unconditional), movement, then the throttled AI decision.
func (u *Unit) Update(ctx Context) {
	switch u.State {
	case entity.Dead:
		return
	case entity.Dying:
		// The cell is already vacated; just run out the death presentation.
		u.deathTimer--
		if u.deathTimer <= 0 {
			u.State = entity.Dead
		}
		return
	}

	if u.Cooldown > 0 {
		u.Cooldown--
	}

	u.pursueTarget(ctx)
	u.advanceMovement(ctx)

	if u.aiCounter <= 0 {
		u.decide(ctx)
		u.aiCounter = u.aiStride
	}
	u.aiCounter--
}

// ApplyDamage routes damage through the shared entity contract and performs
// the unit-side death bookkeeping: vacating the cell, dropping path, target,
// and errand. Reports whether this blow killed the unit.
func (u *Unit) ApplyDamage(ctx Context, dmg int) (killed bool) {
	if !u.Entity.TakeDamage(dmg) {
		return false
	}
	ctx.Grid().Vacate(u.Tile.I, u.Tile.J)
	u.path = nil
	u.moveDest = grid.Tile{}
	u.TargetID = entity.None
	u.errand = nil
	u.deathTimer = u.tuning.DeathTicks
	return true
}

// EffectiveArmor is base armor plus the armor-tier bonus.
func (u *Unit) EffectiveArmor() int {
	return u.Armor + u.equip.ArmorBonus(u.ArmorTier)
}

// EnchantReduction is the flat post-mitigation damage reduction from the
// armor enchant tier.
func (u *Unit) EnchantReduction() int {
	return u.equip.ArmorEnchantBonus(u.ArmorEnchant)
}

// Errand returns the active errand, or nil.
func (u *Unit) Errand() *Errand { return u.errand }

// Path returns the remaining waypoints (shared slice; callers must not
// mutate).
func (u *Unit) Path() []grid.Tile { return u.path }

// AIStride returns the decision throttle stride derived from the unit's id.
func (u *Unit) AIStride() int { return u.aiStride }

// clearTarget drops the combat target and leaves the Attacking state.
func (u *Unit) clearTarget() {
	u.TargetID = entity.None
	if u.State == entity.Attacking {
		u.State = entity.Idle
	}
}

// recomputeDamage derives min/max damage from the type's base roll, the
// primary combat stat, and the weapon ladder.
func (u *Unit) recomputeDamage() {
	statBonus := 0
	switch u.Type.AttackKind {
	case ruleset.AttackMelee:
		statBonus = u.Stats.Strength / 4
	case ruleset.AttackRanged:
		statBonus = u.Stats.Artifice / 4
	case ruleset.AttackMagic:
		statBonus = u.Stats.Intelligence / 4
	}
	weapon := u.equip.WeaponBonus(u.WeaponTier) + u.equip.WeaponEnchantBonus(u.WeaponEnchant)
	u.MinDamage = u.Type.MinDamage + statBonus + weapon
	u.MaxDamage = u.Type.MaxDamage + statBonus + weapon
}

// Snapshot captures the persisted scalar state. Equipment tiers, gold, and
// errand state are intentionally not part of the snapshot.
func (u *Unit) Snapshot() entity.Snapshot {
	return entity.Snapshot{
		TileI:       u.Tile.I,
		TileJ:       u.Tile.J,
		TypeID:      u.Type.ID,
		Health:      u.Health,
		MaxHealth:   u.MaxHealth,
		State:       int(u.State),
		Level:       u.Level,
		Experience:  u.Exp,
		MinDamage:   u.MinDamage,
		MaxDamage:   u.MaxDamage,
		AttackRange: u.AttackRange,
		Team:        u.Team,
		Color:       u.Color,
	}
}

// Restore overwrites the persisted scalar fields from a snapshot. Derived
// and non-persisted state (equipment, gold, errand) keeps its spawn values.
func (u *Unit) Restore(s entity.Snapshot) {
	u.Health = s.Health
	u.MaxHealth = s.MaxHealth
	u.State = entity.State(s.State)
	// Level divides experience credits; a hand-edited or corrupt snapshot
	// must not restore below 1.
	u.Level = s.Level
	if u.Level < 1 {
		u.Level = 1
	}
	u.Exp = s.Experience
	u.MinDamage = s.MinDamage
	u.MaxDamage = s.MaxDamage
	u.AttackRange = s.AttackRange
	u.Team = s.Team
	u.Color = s.Color
}
