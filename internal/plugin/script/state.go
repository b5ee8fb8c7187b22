package script

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/dshills/inkwell/internal/plugin/security"
	"github.com/dshills/inkwell/internal/tree"
)

// DefaultTimeout bounds a single script call.
const DefaultTimeout = time.Second

// State is a sandboxed Lua interpreter holding one plugin's script.
//
// gopher-lua states are not goroutine-safe; every entry point takes mu.
type State struct {
	mu sync.Mutex

	L       *lua.LState
	name    string
	timeout time.Duration
	logger  *zap.Logger
	caps    security.Set

	// ed is the editor bound for the duration of a handler call.
	ed     tree.Editor
	closed bool
}

// Option configures a State.
type Option func(*State)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *State) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger that receives print output and failures.
func WithLogger(l *zap.Logger) Option {
	return func(s *State) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCapabilities restricts the editor API to caps. The default grants
// every capability.
func WithCapabilities(caps security.Set) Option {
	return func(s *State) {
		s.caps = caps
	}
}

// WithName names the script in errors and logs.
func WithName(name string) Option {
	return func(s *State) {
		s.name = name
	}
}

// New creates a sandboxed state and runs source in it.
func New(source string, opts ...Option) (*State, error) {
	s := &State{
		name:    "script",
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
		caps:    security.FullSet(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("script").With(zap.String("script", s.name))

	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(s.L)
	s.sandbox()
	s.installEditorAPI()

	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.withTimeout(func() error {
		return s.L.DoString(source)
	})
	if err != nil {
		s.L.Close()
		return nil, fmt.Errorf("loading %s: %w", s.name, err)
	}
	return s, nil
}

// openSafeLibraries opens the libraries that cannot reach the host.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

func (s *State) sandbox() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		s.L.SetGlobal(name, lua.LNil)
	}
	s.L.SetGlobal("print", s.L.NewFunction(func(L *lua.LState) int {
		s.require(L, security.CapabilityLog, "print")
		parts := make([]string, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			parts = append(parts, L.Get(i).String())
		}
		s.logger.Info("print", zap.String("message", strings.Join(parts, "\t")))
		return 0
	}))
}

// withTimeout runs fn with the call timeout installed and converts Go
// panics raised inside the VM into errors.
func (s *State) withTimeout(fn func() error) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// call invokes a global function and returns its first result. The caller
// holds mu.
func (s *State) call(fn string, args ...lua.LValue) (lua.LValue, error) {
	if s.closed {
		return lua.LNil, ErrClosed
	}
	f := s.L.GetGlobal(fn)
	if f.Type() != lua.LTFunction {
		return lua.LNil, fmt.Errorf("%w: %s", ErrNoFunction, fn)
	}
	err := s.withTimeout(func() error {
		return s.L.CallByParam(lua.P{Fn: f, NRet: 1, Protect: true}, args...)
	})
	if err != nil {
		return lua.LNil, err
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)
	return ret, nil
}

// HasFunction reports whether name is a global function.
func (s *State) HasFunction(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	return s.L.GetGlobal(name).Type() == lua.LTFunction
}

// Name returns the script name.
func (s *State) Name() string {
	return s.name
}

// Close releases the interpreter. Handlers built from a closed state return
// ErrClosed.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.L.Close()
	return nil
}
