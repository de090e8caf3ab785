package unit

import (
	"github.com/crucible-games/skirmish/internal/sim/combat"
	"github.com/crucible-games/skirmish/internal/sim/entity"
	"github.com/crucible-games/skirmish/internal/sim/event"
	"github.com/crucible-games/skirmish/internal/sim/grid"
	"github.com/crucible-games/skirmish/internal/sim/ruleset"
)

// pursueTarget runs the per-tick engagement logic, ahead of and independent
// from the throttled AI decision. Priority: attack if in range, hold if an
// attack is cooling down, reposition if idle, reroute only when the target
// has drifted past the threshold.
func (u *Unit) pursueTarget(ctx Context) {
	if u.TargetID == entity.None {
		return
	}
	tgt, ok := ctx.UnitByID(u.TargetID)
	if !ok {
		u.clearTarget()
		return
	}

	if u.Tile.Chebyshev(tgt.Tile) <= u.AttackRange {
		if u.State == entity.Moving {
			u.stopMoving(ctx)
		}
		u.State = entity.Attacking
		u.Facing = faceToward(u.Tile, tgt.Tile)
		if u.Cooldown == 0 {
			u.attack(ctx, tgt)
		}
		return
	}

	if u.State != entity.Moving {
		u.pathToAttackPosition(ctx, tgt)
		return
	}
	// Already moving: keep the committed plan unless the target drifted too
	// far from where the plan was aimed. Constant replanning thrashes the
	// pathfinder with hundreds of units in play.
	if tgt.Tile.Chebyshev(u.moveDest) > u.tuning.RerouteThreshold {
		u.pathToAttackPosition(ctx, tgt)
	}
}

// attack executes one attack against tgt and starts the cooldown.
//
// Melee and magic resolve instantly. Ranged attacks roll to hit at launch
// and, on a hit, spawn a projectile carrying the precomputed damage; a miss
// launches nothing.
func (u *Unit) attack(ctx Context, tgt *Unit) {
	u.State = entity.Attacking
	u.Facing = faceToward(u.Tile, tgt.Tile)
	u.Cooldown = u.Type.AttackCooldown

	kind, atkSkill, defSkill := u.attackSkills(tgt)
	res := combat.RollHit(ctx.Roller().Source(), atkSkill, defSkill, 0)
	if !res.Hit {
		return
	}

	dmg := combat.RollDamage(ctx.Roller().Source(), combat.DamageInput{
		MinDamage:        u.MinDamage,
		MaxDamage:        u.MaxDamage,
		FlatBonus:        u.flatBonusAgainst(tgt),
		Armor:            tgt.EffectiveArmor(),
		EnchantReduction: tgt.EnchantReduction(),
	})

	if kind == combat.Ranged {
		ctx.LaunchProjectile(u, tgt, dmg)
		return
	}

	killed := tgt.ApplyDamage(ctx, dmg)
	ctx.Publish(event.Event{
		Kind:   event.AttackLanded,
		Sound:  "hit_" + kind.String(),
		X:      tgt.X,
		Y:      tgt.Y,
		UnitID: uint64(tgt.ID),
	})
	if killed {
		ctx.Publish(event.Event{Kind: event.UnitDied, Sound: "death", X: tgt.X, Y: tgt.Y, UnitID: uint64(tgt.ID)})
	}
	u.CreditDamage(ctx, tgt, dmg, killed)
}

// attackSkills selects the contested skill pairing for this unit's attack
// kind against tgt.
func (u *Unit) attackSkills(tgt *Unit) (combat.Kind, int, int) {
	switch u.Type.AttackKind {
	case ruleset.AttackRanged:
		return combat.Ranged, u.Stats.RangedSkill, tgt.Stats.Dodge
	case ruleset.AttackMagic:
		return combat.Magic, u.Stats.Intelligence, tgt.Stats.MagicResist
	default:
		return combat.Melee, u.Stats.MeleeSkill, tgt.Stats.Parry
	}
}

// flatBonusAgainst is the pre-mitigation flat damage bonus, currently only
// the anti-undead bonus.
func (u *Unit) flatBonusAgainst(tgt *Unit) int {
	if tgt.Type.Undead {
		return u.Type.VsUndeadBonus
	}
	return 0
}

// CreditDamage pays out the attacker-side rewards for dmg points dealt to
// victim: ledger-fair experience scaled down by the attacker's level, and on
// a kill the one-time gold reward minus the tax share.
//
// Exported because projectile impacts credit their owner through the same
// path as instant attacks.
func (u *Unit) CreditDamage(ctx Context, victim *Unit, dmg int, killed bool) {
	if victim.Ledger != nil {
		if award := victim.Ledger.Award(dmg); award > 0 {
			u.GainExperience(ctx, award/u.Level)
		}
	}
	if !killed {
		return
	}
	gold := combat.RollGold(ctx.Roller().Source(), victim.Type.GoldMin, victim.Type.GoldMax)
	tax := gold * u.tuning.TaxRatePercent / 100
	u.Gold += gold - tax
	u.TaxGold += tax
	u.clearTarget()
}

// pathToAttackPosition moves toward a walkable tile within attack range of
// tgt, preferring the ring at exactly AttackRange and falling back inward.
// No reachable position leaves the unit holding in place until the next
// pursuit tick.
func (u *Unit) pathToAttackPosition(ctx Context, tgt *Unit) {
	g := ctx.Grid()
	for r := u.AttackRange; r >= 1; r-- {
		best := grid.Tile{}
		bestDist := -1
		for di := -r; di <= r; di++ {
			for dj := -r; dj <= r; dj++ {
				if max(abs(di), abs(dj)) != r {
					continue
				}
				cand := grid.Tile{I: tgt.Tile.I + di, J: tgt.Tile.J + dj}
				if !g.IsWalkable(cand.I, cand.J) {
					continue
				}
				d := u.Tile.Chebyshev(cand)
				if bestDist == -1 || d < bestDist {
					best, bestDist = cand, d
				}
			}
		}
		if bestDist >= 0 && u.MoveTo(ctx, best) {
			return
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
