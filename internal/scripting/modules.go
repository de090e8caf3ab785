package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers all engine.* Lua tables into L.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L with log and unit functions.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()

	L.SetField(engine, "log", L.NewFunction(func(ls *lua.LState) int {
		msg := ls.CheckString(1)
		m.logger.Info("lua", zap.String("message", msg))
		return 0
	}))

	L.SetField(engine, "unit", L.NewFunction(func(ls *lua.LState) int {
		id := uint64(ls.CheckNumber(1))
		if m.GetUnit == nil {
			ls.Push(lua.LNil)
			return 1
		}
		info := m.GetUnit(id)
		if info == nil {
			ls.Push(lua.LNil)
			return 1
		}
		t := ls.NewTable()
		ls.SetField(t, "id", lua.LNumber(info.ID))
		ls.SetField(t, "type", lua.LString(info.TypeID))
		ls.SetField(t, "name", lua.LString(info.Name))
		ls.SetField(t, "health", lua.LNumber(info.Health))
		ls.SetField(t, "max_health", lua.LNumber(info.MaxHealth))
		ls.SetField(t, "level", lua.LNumber(info.Level))
		ls.SetField(t, "team", lua.LNumber(info.Team))
		ls.SetField(t, "gold", lua.LNumber(info.Gold))
		ls.Push(t)
		return 1
	}))

	L.SetGlobal("engine", engine)
}
