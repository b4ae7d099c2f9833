package scripting

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/turnarena/internal/game/dice"
)

// Manager owns a single sandboxed VM and dispatches named hooks into it.
//
// Manager is safe for concurrent use; calls are serialized.
type Manager struct {
	mu     sync.Mutex
	L      *lua.LState
	limit  int
	src    dice.Source
	logger *zap.Logger
}

// NewManager creates a Manager with an empty VM.
//
// Precondition: src and logger must be non-nil; instLimit <= 0 uses DefaultInstructionLimit.
func NewManager(src dice.Source, logger *zap.Logger, instLimit int) *Manager {
	m := &Manager{
		L:      NewSandboxedState(),
		limit:  instLimit,
		src:    src,
		logger: logger,
	}
	m.registerModules(m.L)
	return m
}

// LoadFile executes the script at path in the VM.
//
// Postcondition: Returns an error if the script fails to load or run.
func (m *Manager) LoadFile(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := limited(m.L, m.limit, func() error { return m.L.DoFile(path) }); err != nil {
		return fmt.Errorf("scripting: loading %q: %w", path, err)
	}
	return nil
}

// LoadString executes src in the VM.
func (m *Manager) LoadString(src string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := limited(m.L, m.limit, func() error { return m.L.DoString(src) }); err != nil {
		return fmt.Errorf("scripting: loading chunk: %w", err)
	}
	return nil
}

// NewTable allocates a table in the VM for building hook arguments.
func (m *Manager) NewTable() *lua.LTable {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.L.NewTable()
}

// CallHook calls the named global function with args and returns its first
// result. Returns (LNil, nil) if the hook is not defined. Runtime errors,
// including an exhausted instruction budget, are logged and returned.
func (m *Manager) CallHook(hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fn := m.L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}
	err := limited(m.L, m.limit, func() error {
		return m.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...)
	})
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, err
	}
	ret := m.L.Get(-1)
	m.L.Pop(1)
	return ret, nil
}

// Close releases the VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.L.Close()
}
