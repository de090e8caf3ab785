package scripting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/crucible-games/skirmish/internal/scripting"
)

func newTestManager(t testing.TB) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	mgr := scripting.NewManager(logger)
	t.Cleanup(mgr.Close)
	return mgr, logs
}

func writeTempLua(t testing.TB, filename, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(src), 0644))
	return dir
}

func TestManager_Load_CallsHook(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function test_hook(a, b)
			return a + b
		end
	`)
	require.NoError(t, mgr.Load(dir, 0))
	ret, err := mgr.CallHook("test_hook", lua.LNumber(3), lua.LNumber(4))
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(7), ret)
}

func TestManager_CallHook_MissingHook_NoOp(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "empty.lua", `-- no functions`)
	require.NoError(t, mgr.Load(dir, 0))
	ret, err := mgr.CallHook("nonexistent_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestManager_CallHook_NoVM_ReturnsNil(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret, err := mgr.CallHook("some_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestManager_CallHook_RuntimeError_WarnLogNoPanic(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "bad.lua", `
		function bad_hook()
			error("intentional error")
		end
	`)
	require.NoError(t, mgr.Load(dir, 0))
	ret, err := mgr.CallHook("bad_hook")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
	found := false
	for _, e := range logs.All() {
		if e.Level == zap.WarnLevel {
			found = true
			break
		}
	}
	assert.True(t, found, "expected Warn log for Lua runtime error")
}

func TestManager_Load_EmptyDir_NoError(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := t.TempDir() // no .lua files
	require.NoError(t, mgr.Load(dir, 0))
	ret, err := mgr.CallHook("anything")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestManager_Load_InvalidLua_ReturnsError(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "bad.lua", `this is not valid lua @@@@`)
	assert.Error(t, mgr.Load(dir, 0))
}

func TestManager_Load_MissingDir_ReturnsError(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Error(t, mgr.Load("/nonexistent/scripts", 0))
}

func TestManager_CallHook_BudgetIsPerInvocation(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "gate.lua", `
		function errand_allowed(unit_id, kind)
			return false
		end
	`)
	require.NoError(t, mgr.Load(dir, 5000))

	// Far more total opcodes than the limit allows cumulatively; every call
	// must still run on its own budget.
	for i := 0; i < 500; i++ {
		ret, err := mgr.CallHook("errand_allowed", lua.LNumber(i), lua.LString("shop"))
		require.NoError(t, err)
		require.Equal(t, lua.LFalse, ret, "call %d lost its budget", i)
	}
	for _, e := range logs.All() {
		assert.NotEqual(t, zap.WarnLevel, e.Level, "unexpected warn: %s", e.Message)
	}
}

func TestManager_CallHook_RunawayHookDoesNotStarveLaterCalls(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function spin()
			while true do end
		end
		function cheap()
			return 42
		end
	`)
	require.NoError(t, mgr.Load(dir, 1000))

	ret, err := mgr.CallHook("spin")
	require.NoError(t, err, "runaway hooks are contained, not propagated")
	assert.Equal(t, lua.LNil, ret)

	ret, err = mgr.CallHook("cheap")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(42), ret)
}

func TestManager_Reload_ReplacesVM(t *testing.T) {
	mgr, _ := newTestManager(t)
	first := writeTempLua(t, "a.lua", `function version() return 1 end`)
	require.NoError(t, mgr.Load(first, 0))

	second := writeTempLua(t, "a.lua", `function version() return 2 end`)
	require.NoError(t, mgr.Load(second, 0))

	ret, err := mgr.CallHook("version")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(2), ret)
}

func TestManager_Load_FailedReloadKeepsOldVM(t *testing.T) {
	mgr, _ := newTestManager(t)
	good := writeTempLua(t, "a.lua", `function version() return 1 end`)
	require.NoError(t, mgr.Load(good, 0))

	bad := writeTempLua(t, "a.lua", `@@@@`)
	require.Error(t, mgr.Load(bad, 0))

	ret, err := mgr.CallHook("version")
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(1), ret)
}
