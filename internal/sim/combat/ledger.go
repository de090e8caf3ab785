package combat

// Ledger tracks the experience a victim has already paid out to attackers
// (the "fair kick" rule). The victim precomputes experience-per-damage-point
// once; each point of damage pays that much experience to whoever dealt it,
// clamped so the cumulative payout never exceeds the victim's total value no
// matter how many attackers contribute or how much overkill damage lands.
//
// Invariant: Disbursed() <= Total() at all times, enforced by clamping at the
// point of payout. Overpayment requests are silently truncated, never errors.
type Ledger struct {
	total     int // fixed total experience value of the victim
	perPoint  int // experience paid per point of damage
	disbursed int // cumulative payout so far
}

// NewLedger creates a ledger for a victim worth deadExp with the given
// maximum health. Experience per damage point is the integer floor of
// deadExp / maxHealth.
//
// Precondition: maxHealth > 0; deadExp >= 0.
func NewLedger(deadExp, maxHealth int) *Ledger {
	if maxHealth <= 0 {
		panic("combat: NewLedger called with maxHealth <= 0")
	}
	if deadExp < 0 {
		deadExp = 0
	}
	return &Ledger{
		total:    deadExp,
		perPoint: deadExp / maxHealth,
	}
}

// Award pays out experience for damage points dealt by one attacker and
// returns the amount actually granted. The last payout before the cap may be
// partial or zero.
//
// Postcondition: Disbursed() <= Total(); return value >= 0.
func (l *Ledger) Award(damage int) int {
	if damage <= 0 {
		return 0
	}
	pay := l.perPoint * damage
	if remaining := l.total - l.disbursed; pay > remaining {
		pay = remaining
	}
	if pay < 0 {
		pay = 0
	}
	l.disbursed += pay
	return pay
}

// PerPoint returns the experience granted per point of damage.
func (l *Ledger) PerPoint() int { return l.perPoint }

// Total returns the victim's fixed total experience value.
func (l *Ledger) Total() int { return l.total }

// Disbursed returns the cumulative experience paid out so far.
func (l *Ledger) Disbursed() int { return l.disbursed }
