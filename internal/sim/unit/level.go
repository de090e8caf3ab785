package unit

import (
	"github.com/crucible-games/skirmish/internal/sim/event"
	"github.com/crucible-games/skirmish/internal/sim/ruleset"
)

// GainExperience adds exp and applies every level-up it pays for. Experience
// keeps accumulating at the level cap but triggers no further level-ups.
func (u *Unit) GainExperience(ctx Context, exp int) {
	if exp <= 0 {
		return
	}
	u.Exp += exp
	for u.Level < u.MaxLevel && u.Exp >= u.ExpToNext {
		u.Exp -= u.ExpToNext
		u.Level++
		u.applyLevelUp(ctx)
	}
}

// applyLevelUp applies one level's worth of growth: the archetype's primary
// stat on odd levels, the attack-kind skill plus parry and dodge every level,
// a vitality-scaled max health gain, a full heal, and rederived damage.
func (u *Unit) applyLevelUp(ctx Context) {
	if u.Level%2 == 1 {
		u.bumpStat(u.primaryStat())
	}

	switch u.Type.AttackKind {
	case ruleset.AttackMelee:
		u.bumpStat(&u.Stats.MeleeSkill)
	case ruleset.AttackRanged:
		u.bumpStat(&u.Stats.RangedSkill)
	case ruleset.AttackMagic:
		u.bumpStat(&u.Stats.Intelligence)
	}
	u.bumpStat(&u.Stats.Parry)
	u.bumpStat(&u.Stats.Dodge)

	gain := u.Stats.Vitality / 2
	roll := ctx.Roller().Between(1, maxInt(1, u.Stats.Vitality/2))
	u.MaxHealth += gain + roll
	u.Health = u.MaxHealth

	u.recomputeDamage()

	ctx.Publish(event.Event{
		Kind:   event.LevelUp,
		Sound:  "level_up",
		X:      u.X,
		Y:      u.Y,
		UnitID: uint64(u.ID),
	})
}

// primaryStat resolves the archetype's stat field.
func (u *Unit) primaryStat() *int {
	switch u.Type.Archetype {
	case ruleset.StatStrength:
		return &u.Stats.Strength
	case ruleset.StatIntelligence:
		return &u.Stats.Intelligence
	case ruleset.StatArtifice:
		return &u.Stats.Artifice
	case ruleset.StatWillpower:
		return &u.Stats.Willpower
	default:
		return &u.Stats.Vitality
	}
}

// bumpStat increments a stat unless it sits at the cap.
func (u *Unit) bumpStat(stat *int) {
	if *stat < u.tuning.StatCap {
		*stat++
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
