package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// registerModules installs the "arena" table:
//
//	arena.log(msg)      -- logs msg at info level
//	arena.random(n)     -- uniform int in [1, n] from the session's random source
func (m *Manager) registerModules(L *lua.LState) {
	mod := L.NewTable()
	L.SetField(mod, "log", L.NewFunction(func(L *lua.LState) int {
		m.logger.Info("ai script", zap.String("msg", L.CheckString(1)))
		return 0
	}))
	L.SetField(mod, "random", L.NewFunction(func(L *lua.LState) int {
		n := L.CheckInt(1)
		if n <= 0 {
			L.ArgError(1, "n must be > 0")
			return 0
		}
		L.Push(lua.LNumber(m.src.Intn(n) + 1))
		return 1
	}))
	L.SetGlobal("arena", mod)
}
