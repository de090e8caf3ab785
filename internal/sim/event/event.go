// Package event carries fire-and-forget notifications from the simulation
// core to the audio/presentation collaborators. Delivery is best-effort: the
// core never waits on a sink and a nil sink drops everything.
package event

// Kind classifies a simulation event.
type Kind int

const (
	// AttackLanded fires when a hit roll succeeds and damage is applied.
	AttackLanded Kind = iota
	// UnitDied fires when an entity transitions to Dying.
	UnitDied
	// LevelUp fires when a unit gains a level.
	LevelUp
	// ItemPurchased fires when a shop errand transacts.
	ItemPurchased
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case AttackLanded:
		return "attack_landed"
	case UnitDied:
		return "unit_died"
	case LevelUp:
		return "level_up"
	case ItemPurchased:
		return "item_purchased"
	default:
		return "unknown"
	}
}

// Event is one notification with a sound identifier and a world position for
// spatialized playback.
type Event struct {
	Kind  Kind
	Sound string
	X     float64
	Y     float64
	// UnitID is the primary subject (attacker, victim, leveler, buyer).
	UnitID uint64
}

// Sink receives events. Implementations must not block; the tick loop calls
// Publish inline.
type Sink interface {
	Publish(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

// Publish calls f.
func (f SinkFunc) Publish(e Event) { f(e) }
