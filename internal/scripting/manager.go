package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// UnitInfo is a snapshot of a unit's state passed to Lua callbacks.
type UnitInfo struct {
	ID        uint64
	TypeID    string
	Name      string
	Health    int
	MaxHealth int
	Level     int
	Team      int
	Gold      int
}

// Manager owns one sandboxed LState for the world's hook scripts and exposes
// hook dispatch.
//
// The LState is single-threaded; the mutex serializes CallHook so hooks fired
// from outside the tick goroutine cannot corrupt the VM.
type Manager struct {
	mu      sync.Mutex
	state   *lua.LState
	limiter *Limiter
	logger  *zap.Logger

	// GetUnit resolves a unit snapshot for the engine.unit Lua module.
	// Injected after construction; nil makes engine.unit return nil.
	GetUnit func(id uint64) *UnitInfo
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: logger must be non-nil.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger}
}

// Load creates the sandboxed VM, registers the engine.* modules, then
// executes every *.lua file in scriptDir in lexicographic order. Calling Load
// again replaces the previous VM.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: The VM is registered; returns an error on Lua load failure,
// in which case the previous VM (if any) stays active.
func (m *Manager) Load(scriptDir string, instLimit int) error {
	L, limiter := NewSandboxedState(instLimit)
	m.RegisterModules(L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		limiter.Stop()
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		// Each file gets the full budget.
		limiter.Arm(L)
		if err := L.DoFile(path); err != nil {
			limiter.Stop()
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	m.mu.Lock()
	if m.state != nil {
		if m.limiter != nil {
			m.limiter.Stop()
		}
		m.state.Close()
	}
	m.state = L
	m.limiter = limiter
	m.mu.Unlock()
	return nil
}

// Close shuts the VM down.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		if m.limiter != nil {
			m.limiter.Stop()
		}
		m.state.Close()
		m.state = nil
	}
}

// CallHook calls the named Lua global function. Returns (LNil, nil) if the
// hook is not defined or no VM is loaded. Lua runtime errors are logged at
// Warn level and never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == nil {
		m.logger.Debug("scripting: no VM loaded", zap.String("hook", hook))
		return lua.LNil, nil
	}

	fn := m.state.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	// Every invocation starts with a full instruction budget; one expensive
	// hook call cannot starve the ones after it.
	m.limiter.Arm(m.state)

	if err := m.state.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := m.state.Get(-1)
	m.state.Pop(1)
	return ret, nil
}
