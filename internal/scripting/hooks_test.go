package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/crucible-games/skirmish/internal/scripting"
	"github.com/crucible-games/skirmish/internal/sim/event"
)

func TestEngineHooks_OnEvent_DispatchesByKind(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		died = 0
		leveled = 0
		bought = 0
		function on_unit_died(id) died = id end
		function on_level_up(id) leveled = id end
		function on_purchase(id) bought = id end
		function get_died() return died end
		function get_leveled() return leveled end
		function get_bought() return bought end
	`)
	require.NoError(t, mgr.Load(dir, 0))
	hooks := scripting.NewEngineHooks(mgr)

	hooks.OnEvent(event.Event{Kind: event.UnitDied, UnitID: 3})
	hooks.OnEvent(event.Event{Kind: event.LevelUp, UnitID: 4})
	hooks.OnEvent(event.Event{Kind: event.ItemPurchased, UnitID: 5})
	// Attack events are not forwarded to Lua.
	hooks.OnEvent(event.Event{Kind: event.AttackLanded, UnitID: 6})

	for hook, want := range map[string]lua.LNumber{
		"get_died":    3,
		"get_leveled": 4,
		"get_bought":  5,
	} {
		ret, err := mgr.CallHook(hook)
		require.NoError(t, err)
		assert.Equal(t, want, ret, hook)
	}
}

func TestEngineHooks_ErrandAllowed_VetoOnExplicitFalse(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "errand.lua", `
		function errand_allowed(id, kind)
			return kind ~= "enchanter"
		end
	`)
	require.NoError(t, mgr.Load(dir, 0))
	hooks := scripting.NewEngineHooks(mgr)

	assert.True(t, hooks.ErrandAllowed(1, "weaponsmith"))
	assert.False(t, hooks.ErrandAllowed(1, "enchanter"))
}

func TestEngineHooks_ErrandAllowed_AbsentHookAllows(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(t.TempDir(), 0))
	hooks := scripting.NewEngineHooks(mgr)

	assert.True(t, hooks.ErrandAllowed(1, "shop"))
}

func TestEngineHooks_ErrandAllowed_RuntimeErrorAllows(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "errand.lua", `
		function errand_allowed(id, kind)
			error("boom")
		end
	`)
	require.NoError(t, mgr.Load(dir, 0))
	hooks := scripting.NewEngineHooks(mgr)

	assert.True(t, hooks.ErrandAllowed(1, "shop"))
}
