// Package projectile implements the tracked missiles spawned by ranged
// attacks. The hit was already rolled at launch: a projectile exists only for
// a successful attack and carries its final damage with it, so flight time
// changes when the damage lands but never whether it lands.
package projectile

import (
	"math"

	"github.com/crucible-games/skirmish/internal/sim/entity"
	"github.com/crucible-games/skirmish/internal/sim/event"
	"github.com/crucible-games/skirmish/internal/sim/unit"
)

// DefaultSpeed is world units of flight per tick.
const DefaultSpeed = 96

// DefaultLifetime caps flight in ticks so a projectile chasing an
// ever-retreating target cannot live forever.
const DefaultLifetime = 125

// Projectile is one missile in flight.
type Projectile struct {
	entity.Entity

	// Damage is the precomputed final damage applied on impact.
	Damage int
	// Speed is flight speed in world units per tick.
	Speed float64

	lifetime int
}

// New launches a projectile from owner's position toward target.
//
// Precondition: owner and target must be non-nil; damage >= 1.
func New(id entity.ID, owner, target *unit.Unit, damage int) *Projectile {
	return &Projectile{
		Entity: entity.Entity{
			ID:       id,
			X:        owner.X,
			Y:        owner.Y,
			State:    entity.Moving,
			Team:     owner.Team,
			OwnerID:  owner.ID,
			TargetID: target.ID,
		},
		Damage:   damage,
		Speed:    DefaultSpeed,
		lifetime: DefaultLifetime,
	}
}

// Done reports whether the driver can remove the projectile.
func (p *Projectile) Done() bool { return p.State == entity.Dead }

// Update advances the projectile one tick: re-resolve the target, home
// toward its current position, and impact on contact. A target that died or
// despawned mid-flight fizzles the projectile without damage.
func (p *Projectile) Update(ctx unit.Context) {
	if p.Done() {
		return
	}
	p.lifetime--
	if p.lifetime < 0 {
		p.State = entity.Dead
		return
	}

	tgt, ok := ctx.UnitByID(p.TargetID)
	if !ok {
		p.State = entity.Dead
		return
	}

	dx, dy := tgt.X-p.X, tgt.Y-p.Y
	dist := math.Hypot(dx, dy)
	if dist > p.Speed {
		p.X += dx / dist * p.Speed
		p.Y += dy / dist * p.Speed
		return
	}

	p.X, p.Y = tgt.X, tgt.Y
	p.impact(ctx, tgt)
}

// impact applies the carried damage and credits the owner through the same
// reward path as an instant attack. A dead owner forfeits the credit but the
// damage still lands.
func (p *Projectile) impact(ctx unit.Context, tgt *unit.Unit) {
	p.State = entity.Dead

	killed := tgt.ApplyDamage(ctx, p.Damage)
	ctx.Publish(event.Event{
		Kind:   event.AttackLanded,
		Sound:  "hit_ranged",
		X:      tgt.X,
		Y:      tgt.Y,
		UnitID: uint64(tgt.ID),
	})
	if killed {
		ctx.Publish(event.Event{Kind: event.UnitDied, Sound: "death", X: tgt.X, Y: tgt.Y, UnitID: uint64(tgt.ID)})
	}

	if owner, ok := ctx.UnitByID(p.OwnerID); ok {
		owner.CreditDamage(ctx, tgt, p.Damage, killed)
	}
}
