package unit

import (
	"github.com/crucible-games/skirmish/internal/sim/building"
	"github.com/crucible-games/skirmish/internal/sim/entity"
	"github.com/crucible-games/skirmish/internal/sim/event"
	"github.com/crucible-games/skirmish/internal/sim/grid"
	"github.com/crucible-games/skirmish/internal/sim/ruleset"
)

// errandKinds is the deterministic order shop errand candidates are rolled
// in. The order matters: with a fixed seed the same unit always considers
// the same upgrade first.
var errandKinds = []string{
	ruleset.BuildingWeaponsmith,
	ruleset.BuildingArmorer,
	ruleset.BuildingEnchanter,
	ruleset.BuildingShop,
}

// decide is the throttled AI decision, ordered strictly by priority:
// an engaged unit stays engaged, a visible hostile is acquired, an active
// errand continues, a new errand may start, and only then does the unit
// consider wandering.
func (u *Unit) decide(ctx Context) {
	if u.TargetID != entity.None {
		return
	}

	if hostile, ok := ctx.NearestHostile(u); ok {
		u.TargetID = hostile.ID
		// Combat preempts shopping.
		u.errand = nil
		return
	}

	if u.errand != nil {
		u.continueErrand(ctx)
		return
	}

	if u.maybeStartErrand(ctx) {
		return
	}

	u.maybeWander(ctx)
}

// continueErrand walks the unit toward its errand building's entrance and
// transacts on arrival. A building that disappeared or lost construction
// cancels the errand.
func (u *Unit) continueErrand(ctx Context) {
	b, ok := ctx.BuildingByID(building.ID(u.errand.BuildingID))
	if !ok || !b.Offers(u.errand.Kind) {
		u.errand = nil
		return
	}

	entrance := b.EntranceTile()
	if u.Tile.Chebyshev(entrance) <= 1 {
		u.transact(ctx, b)
		u.errand = nil
		return
	}
	if u.State != entity.Moving {
		if !u.MoveTo(ctx, entrance) {
			// Entrance unreachable right now; give up rather than retry
			// every decision.
			u.errand = nil
		}
	}
}

// maybeStartErrand rolls the type's shop chances in deterministic kind order
// and adopts the first errand that passes its roll, has a serving friendly
// building, is affordable, and is allowed by the scripting hook.
func (u *Unit) maybeStartErrand(ctx Context) bool {
	if len(u.Type.ShopChance) == 0 {
		return false
	}
	for _, kind := range errandKinds {
		p, ok := u.Type.ShopChance[kind]
		if !ok || !ctx.Roller().Chance(p) {
			continue
		}
		b := u.findServingBuilding(ctx, kind)
		if b == nil {
			continue
		}
		price, upgradable := u.priceFor(kind, b)
		if !upgradable || u.Gold < price {
			continue
		}
		if !ctx.ErrandAllowed(u, kind) {
			continue
		}
		u.errand = &Errand{Kind: kind, BuildingID: uint64(b.ID)}
		u.continueErrand(ctx)
		return true
	}
	return false
}

// findServingBuilding returns the first friendly constructed building that
// offers kind, in the world's stable placement order.
func (u *Unit) findServingBuilding(ctx Context, kind string) *building.Building {
	for _, b := range ctx.FriendlyBuildings(u.Team) {
		if b.Offers(kind) {
			return b
		}
	}
	return nil
}

// priceFor returns the cost of the next purchase of kind at b and whether a
// purchase is possible at all (false once the relevant ladder is maxed).
func (u *Unit) priceFor(kind string, b *building.Building) (int, bool) {
	switch kind {
	case ruleset.BuildingWeaponsmith:
		if u.WeaponTier >= u.equip.MaxWeaponTier() {
			return 0, false
		}
		return u.equip.WeaponTiers[u.WeaponTier+1].Price, true
	case ruleset.BuildingArmorer:
		if u.ArmorTier >= u.equip.MaxArmorTier() {
			return 0, false
		}
		return u.equip.ArmorTiers[u.ArmorTier+1].Price, true
	case ruleset.BuildingEnchanter:
		// The enchanter upgrades whichever enchant ladder is lower, weapon
		// first on ties.
		if u.WeaponEnchant <= u.ArmorEnchant {
			if u.WeaponEnchant >= u.equip.MaxWeaponEnchant() {
				return 0, false
			}
			return u.equip.WeaponEnchants[u.WeaponEnchant+1].Price, true
		}
		if u.ArmorEnchant >= u.equip.MaxArmorEnchant() {
			return 0, false
		}
		return u.equip.ArmorEnchants[u.ArmorEnchant+1].Price, true
	case ruleset.BuildingShop:
		if u.Health >= u.MaxHealth {
			return 0, false
		}
		return b.Type.ItemPrice, true
	default:
		return 0, false
	}
}

// transact completes the errand's purchase. Affordability was checked when
// the errand started; gold spent since then makes this a no-op.
func (u *Unit) transact(ctx Context, b *building.Building) {
	price, upgradable := u.priceFor(u.errand.Kind, b)
	if !upgradable || u.Gold < price {
		return
	}
	u.Gold -= price

	switch u.errand.Kind {
	case ruleset.BuildingWeaponsmith:
		u.WeaponTier++
		u.recomputeDamage()
	case ruleset.BuildingArmorer:
		u.ArmorTier++
	case ruleset.BuildingEnchanter:
		if u.WeaponEnchant <= u.ArmorEnchant {
			u.WeaponEnchant++
			u.recomputeDamage()
		} else {
			u.ArmorEnchant++
		}
	case ruleset.BuildingShop:
		u.Health = u.MaxHealth
	}

	ctx.Publish(event.Event{
		Kind:   event.ItemPurchased,
		Sound:  "purchase",
		X:      u.X,
		Y:      u.Y,
		UnitID: uint64(u.ID),
	})
}

// maybeWander rolls the idle wander chance and, on success, strolls to a
// random walkable tile within the wander radius.
func (u *Unit) maybeWander(ctx Context) {
	if u.State != entity.Idle || u.Type.WanderChance <= 0 {
		return
	}
	if !ctx.Roller().Chance(u.Type.WanderChance) {
		return
	}
	r := u.tuning.WanderRadius
	dest := grid.Tile{
		I: u.Tile.I + ctx.Roller().Between(-r, r),
		J: u.Tile.J + ctx.Roller().Between(-r, r),
	}
	if dest == u.Tile || !ctx.Grid().IsWalkable(dest.I, dest.J) {
		return
	}
	u.MoveTo(ctx, dest)
}
