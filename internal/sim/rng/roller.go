package rng

import "go.uber.org/zap"

// Roller wraps a Source and logger so that every draw can be audited at
// debug level. The simulation passes a single Roller everywhere instead of
// reaching for an ambient global random source.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewRoller creates a Roller that draws from src and logs each draw to logger.
//
// Precondition: src and logger must be non-nil.
func NewRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Source returns the underlying Source for callers that need raw draws.
func (r *Roller) Source() Source {
	return r.src
}

// Intn returns a random int in [0, n), logged at debug level.
//
// Precondition: n > 0.
func (r *Roller) Intn(n int) int {
	v := r.src.Intn(n)
	r.logger.Debug("rng draw", zap.Int("n", n), zap.Int("value", v))
	return v
}

// Between returns a uniform random int in [min, max] inclusive, logged.
//
// Precondition: max >= min.
func (r *Roller) Between(min, max int) int {
	v := Between(r.src, min, max)
	r.logger.Debug("rng between",
		zap.Int("min", min),
		zap.Int("max", max),
		zap.Int("value", v),
	)
	return v
}

// Chance draws against probability p, logged with the outcome.
func (r *Roller) Chance(p float64) bool {
	ok := Chance(r.src, p)
	r.logger.Debug("rng chance", zap.Float64("p", p), zap.Bool("hit", ok))
	return ok
}
