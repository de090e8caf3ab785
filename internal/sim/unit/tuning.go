package unit

// Tuning bundles the gameplay constants the original balance depends on.
// These are configurable but the defaults are deliberate: changing the
// reroute threshold or the throttle stride changes emergent AI behavior
// under load.
type Tuning struct {
	// RerouteThreshold is how many tiles a pursued target must drift from a
	// mover's planned destination before the mover abandons and replans.
	RerouteThreshold int
	// AIStrideBase and AIStrideSpread derive the per-unit decision stride:
	// base + id mod spread, desynchronizing many units from deciding on the
	// same tick.
	AIStrideBase   int
	AIStrideSpread int
	// StatCap is the hard ceiling for every stat; increments beyond it are
	// no-ops.
	StatCap int
	// TaxRatePercent is the share of kill gold set aside in the tax ledger.
	TaxRatePercent int
	// DeathTicks is how long a Dying unit lingers before it reads Dead and
	// the driver removes it (covers the death presentation).
	DeathTicks int
	// WanderRadius bounds idle wandering in tiles.
	WanderRadius int
}

// DefaultTuning returns the stock constants.
func DefaultTuning() Tuning {
	return Tuning{
		RerouteThreshold: 2,
		AIStrideBase:     5,
		AIStrideSpread:   6,
		StatCap:          100,
		TaxRatePercent:   10,
		DeathTicks:       25,
		WanderRadius:     2,
	}
}
