package scripting

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/crucible-games/skirmish/internal/sim/event"
)

// Hook names the world fires. A script defines any subset of these as global
// functions.
const (
	HookUnitDied      = "on_unit_died"
	HookLevelUp       = "on_level_up"
	HookPurchase      = "on_purchase"
	HookErrandAllowed = "errand_allowed"
)

// EngineHooks adapts a Manager to the world's hook interface: simulation
// events fan out to Lua hook functions and errand decisions consult the
// errand_allowed precondition.
type EngineHooks struct {
	mgr *Manager
}

// NewEngineHooks wraps mgr.
//
// Precondition: mgr must be non-nil.
func NewEngineHooks(mgr *Manager) *EngineHooks {
	return &EngineHooks{mgr: mgr}
}

// OnEvent dispatches a simulation event to its Lua hook. Attack events are
// deliberately not forwarded; they fire far too often for a scripting
// boundary crossing.
func (h *EngineHooks) OnEvent(ev event.Event) {
	switch ev.Kind {
	case event.UnitDied:
		h.mgr.CallHook(HookUnitDied, lua.LNumber(ev.UnitID)) //nolint:errcheck // hook errors are logged inside CallHook
	case event.LevelUp:
		h.mgr.CallHook(HookLevelUp, lua.LNumber(ev.UnitID)) //nolint:errcheck
	case event.ItemPurchased:
		h.mgr.CallHook(HookPurchase, lua.LNumber(ev.UnitID)) //nolint:errcheck
	}
}

// ErrandAllowed consults the errand_allowed Lua hook. Only an explicit false
// return vetoes the errand; an absent hook, nil return, or runtime error all
// allow it.
func (h *EngineHooks) ErrandAllowed(unitID uint64, buildingKind string) bool {
	ret, err := h.mgr.CallHook(HookErrandAllowed, lua.LNumber(unitID), lua.LString(buildingKind))
	if err != nil {
		return true
	}
	return ret != lua.LFalse
}
