// Package scripting provides a sandboxed GopherLua execution environment for
// gameplay hook scripts. It has no dependency on the simulation core beyond
// the event types; all world interactions are injected via Manager callback
// fields.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the maximum number of Lua opcodes allowed per
// hook invocation when no override is configured.
const DefaultInstructionLimit = 100_000

// countingContext is a context.Context that cancels itself after Done() has
// been called limit times. GopherLua's mainLoopWithContext calls Done() once
// per opcode, making this an exact instruction-count limit.
type countingContext struct {
	context.Context
	cancel    context.CancelFunc
	remaining *atomic.Int64
}

// Done returns the underlying cancellation channel. Each call decrements the
// remaining counter; when it reaches zero the cancel function fires,
// terminating the Lua VM on the next opcode boundary.
func (c *countingContext) Done() <-chan struct{} {
	if c.remaining.Add(-1) <= 0 {
		c.cancel()
	}
	return c.Context.Done()
}

// newCountingContext returns a context that cancels after limit calls to Done().
// Precondition: limit > 0.
func newCountingContext(limit int) (context.Context, context.CancelFunc) {
	base, cancel := context.WithCancel(context.Background())
	rem := &atomic.Int64{}
	rem.Store(int64(limit))
	return &countingContext{
		Context:   base,
		cancel:    cancel,
		remaining: rem,
	}, cancel
}

// Limiter owns the instruction budget of one sandboxed LState. The budget is
// per invocation, not cumulative: Arm replaces the VM's context with a fresh
// counting context, so a runaway script exhausts only its own call and the
// next invocation starts with a full budget.
type Limiter struct {
	limit  int
	cancel context.CancelFunc
}

// Arm resets L's instruction budget to the full limit.
//
// Precondition: L must not be mid-execution.
// Postcondition: L's next run may spend up to the full limit before being
// terminated.
func (lim *Limiter) Arm(L *lua.LState) {
	if lim.cancel != nil {
		lim.cancel()
	}
	ctx, cancel := newCountingContext(lim.limit)
	lim.cancel = cancel
	L.SetContext(ctx)
}

// Stop releases the current counting context. The LState must not run again
// until re-armed.
func (lim *Limiter) Stop() {
	if lim.cancel != nil {
		lim.cancel()
		lim.cancel = nil
	}
}

// NewSandboxedState creates a GopherLua LState with:
//   - Only safe stdlib loaded: base, table, string, math
//   - Dangerous globals removed: dofile, loadfile, load, collectgarbage, require
//   - Execution limited to at most instLimit Lua opcodes per invocation,
//     re-armed through the returned Limiter (deterministic)
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: Returns a non-nil LState ready for RegisterModules and
// DoFile, armed with a full budget. The caller owns the LState and must call
// L.Close() and the Limiter's Stop when done, and re-arm before each
// protected call.
func NewSandboxedState(instLimit int) (*lua.LState, *Limiter) {
	limit := instLimit
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	// Open only safe standard libraries.
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Strip dangerous globals left by OpenBase.
	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require"} {
		L.SetGlobal(name, lua.LNil)
	}

	lim := &Limiter{limit: limit}
	lim.Arm(L)

	return L, lim
}
