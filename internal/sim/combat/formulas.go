// Package combat provides the pure combat resolution formulas: contested hit
// rolls, damage rolls with armor mitigation, and the per-victim experience
// ledger. Everything here is stateless apart from the Ledger, and every roll
// goes through an injected rng.Source.
package combat

import "github.com/crucible-games/skirmish/internal/sim/rng"

// HitRollRange is the exclusive upper bound of the contested hit roll.
// A draw lands in [0, HitRollRange).
const HitRollRange = 200

// hitBias shifts the contested roll so that equal skills hit half the time.
const hitBias = 100

// ArmorMitigationCap bounds the fraction of raw damage armor can absorb.
// Armor never fully negates a landed hit.
const ArmorMitigationCap = 0.75

// Kind selects which skill pairing a hit check contests.
type Kind int

const (
	// Melee contests melee skill against parry.
	Melee Kind = iota
	// Ranged contests ranged skill against dodge.
	Ranged
	// Magic contests intelligence against magic resistance.
	Magic
)

// String returns the attack kind name.
func (k Kind) String() string {
	switch k {
	case Melee:
		return "melee"
	case Ranged:
		return "ranged"
	case Magic:
		return "magic"
	default:
		return "unknown"
	}
}

// HitResult records a single contested hit check for logging and tests.
type HitResult struct {
	Roll int  // raw draw in [0, HitRollRange)
	Hit  bool // whether the attack lands
}

// RollHit performs the symmetric contested roll shared by all attack kinds:
// draw roll in [0, 200); the attack lands iff
//
//	roll + attackerSkill >= defenderSkill + 100 + situational.
//
// Higher skill differential improves hit probability linearly; the roll range
// alone bounds it to [0%, 100%].
//
// Precondition: src must be non-nil.
func RollHit(src rng.Source, attackerSkill, defenderSkill, situational int) HitResult {
	roll := src.Intn(HitRollRange)
	return HitResult{
		Roll: roll,
		Hit:  roll+attackerSkill >= defenderSkill+hitBias+situational,
	}
}

// DamageInput bundles the parameters of a single damage roll.
type DamageInput struct {
	// MinDamage and MaxDamage bound the uniform base roll, inclusive.
	MinDamage int
	MaxDamage int
	// FlatBonus is added to the base roll before mitigation (e.g. a bonus
	// against undead).
	FlatBonus int
	// Armor is the defender's armor rating; mitigation is Armor/100 capped
	// at ArmorMitigationCap.
	Armor int
	// EnchantReduction is the defender's enchanted-armor flat reduction,
	// applied after percentage mitigation.
	EnchantReduction int
}

// RollDamage rolls damage for a landed hit.
//
// Pipeline: uniform [MinDamage, MaxDamage] + FlatBonus, then percentage
// armor mitigation capped at 75%, then the flat enchant reduction floored at
// zero, then the final floor of 1. A landed hit always deals at least one
// point of damage.
//
// Precondition: src must be non-nil; in.MaxDamage >= in.MinDamage.
// Postcondition: result >= 1.
func RollDamage(src rng.Source, in DamageInput) int {
	raw := rng.Between(src, in.MinDamage, in.MaxDamage) + in.FlatBonus

	mitigation := float64(in.Armor) / 100
	if mitigation > ArmorMitigationCap {
		mitigation = ArmorMitigationCap
	}
	if mitigation < 0 {
		mitigation = 0
	}
	dmg := int(float64(raw) * (1 - mitigation))

	dmg -= in.EnchantReduction
	if dmg < 0 {
		dmg = 0
	}
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}

// RollGold rolls the one-time kill reward from the victim's static table.
// Unlike experience, gold goes only to the killing blow's attacker.
//
// Precondition: src must be non-nil; max >= min >= 0.
func RollGold(src rng.Source, min, max int) int {
	if max <= min {
		return min
	}
	return rng.Between(src, min, max)
}
