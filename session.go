package jsbridge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cryguy/jsbridge/host"
	"github.com/cryguy/jsbridge/internal/guard"
	"github.com/cryguy/jsbridge/internal/mirror"
	"github.com/cryguy/jsbridge/internal/quickjs"
	"github.com/cryguy/jsbridge/internal/wire"
	"go.uber.org/zap"
)

// MaxStackSize is the largest engine stack ceiling a session accepts and
// the one it starts with. The unit is the engine's stack accounting, which
// grows much slower than the Go stack the interpreter recurses on.
const MaxStackSize = quickjs.MaxStackSize

// Session is one engine runtime with one context. Operations from different
// goroutines are serialized; a goroutine already inside an operation (a host
// callable running under Eval, for example) gets ErrReentrantAccess.
type Session struct {
	guard  guard.Guard
	rt     *quickjs.Runtime
	closed atomic.Bool

	resolver host.Resolver
	log      *zap.Logger
	metrics  *Metrics
	timeout  time.Duration
}

// New creates a session, installs the bridge prelude and applies the
// configured limits.
func New(opts ...Option) (*Session, error) {
	o := buildOptions(opts)

	rt, err := quickjs.New()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineInit, err)
	}
	s := &Session{
		rt:       rt,
		resolver: o.resolver,
		log:      o.logger,
		metrics:  o.metrics,
		timeout:  o.timeout,
	}
	if err := s.init(o); err != nil {
		rt.Close()
		return nil, fmt.Errorf("%w: %w", ErrEngineInit, err)
	}
	s.metrics.sessionOpened()
	return s, nil
}

func (s *Session) init(o options) error {
	if err := s.rt.RegisterFunc(mirror.InvokeFunc, s.dispatch); err != nil {
		return fmt.Errorf("registering dispatcher: %w", err)
	}
	if err := s.rt.Eval(mirror.PreludeJS); err != nil {
		return fmt.Errorf("installing prelude: %w", err)
	}
	if o.memoryLimit > 0 {
		s.rt.SetMemoryLimit(uintptr(o.memoryLimit))
	}
	if !s.rt.Native() {
		s.log.Warn("native engine API unavailable, stack ceiling not enforced")
		if o.maxStackSize > 0 {
			return fmt.Errorf("setting stack size: %w", mapNative(quickjs.ErrNoNativeAPI))
		}
		return nil
	}
	if o.maxStackSize > 0 {
		if _, err := s.rt.SetMaxStackSize(uintptr(o.maxStackSize)); err != nil {
			return fmt.Errorf("setting stack size: %w", mapNative(err))
		}
	}
	return nil
}

// acquire takes the session guard, checking for Close on both sides of
// the wait.
func (s *Session) acquire() (func(), error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	release, err := s.guard.Acquire()
	if err != nil {
		return nil, err
	}
	if s.closed.Load() {
		release()
		return nil, ErrClosed
	}
	return release, nil
}

// do runs fn under the guard. While fn runs, a watchdog interrupts the
// engine once ctx is done; an error fn returns after an interrupt is
// reported as a *ScriptError wrapping ctx.Err().
func (s *Session) do(ctx context.Context, op string, fn func() error) error {
	release, err := s.acquire()
	if err != nil {
		return err
	}
	defer release()

	if s.timeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
	}
	if err := ctx.Err(); err != nil {
		return &ScriptError{Op: op, Diagnostic: err.Error(), Err: err}
	}

	start := time.Now()
	var (
		wd          sync.Mutex
		finished    bool
		interrupted bool
		stop        = make(chan struct{})
	)
	if done := ctx.Done(); done != nil {
		go func() {
			select {
			case <-done:
				wd.Lock()
				if !finished {
					interrupted = true
					s.rt.Interrupt()
				}
				wd.Unlock()
			case <-stop:
			}
		}()
	}

	err = fn()

	wd.Lock()
	finished = true
	wasInterrupted := interrupted
	wd.Unlock()
	close(stop)

	if err != nil && wasInterrupted {
		diag := err.Error()
		var se *ScriptError
		if errors.As(err, &se) {
			diag = se.Diagnostic
		}
		err = &ScriptError{Op: op, Diagnostic: diag, Err: ctx.Err()}
	}
	s.metrics.observe(op, start, err)
	if err != nil {
		s.log.Debug("session operation failed",
			zap.String("op", op),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
	}
	return err
}

// SetMemoryLimit sets the engine heap ceiling in bytes. Zero or a negative
// value removes it. A script that runs out of heap fails with a
// *ScriptError whose diagnostic reads "out of memory".
func (s *Session) SetMemoryLimit(bytes int64) error {
	release, err := s.acquire()
	if err != nil {
		return err
	}
	defer release()
	s.rt.SetMemoryLimit(uintptr(max(bytes, 0)))
	return nil
}

// SetMaxStackSize sets the engine stack ceiling. The unit is the engine's
// own stack accounting, not Go stack bytes. Zero, negative values and
// values above MaxStackSize install that maximum, so runaway
// recursion always ends in a *ScriptError.
func (s *Session) SetMaxStackSize(bytes int64) error {
	release, err := s.acquire()
	if err != nil {
		return err
	}
	defer release()
	_, err = s.rt.SetMaxStackSize(uintptr(max(bytes, 0)))
	return mapNative(err)
}

// GC runs a full engine garbage collection.
func (s *Session) GC() error {
	release, err := s.acquire()
	if err != nil {
		return err
	}
	defer release()
	return mapNative(s.rt.RunGC())
}

// MemoryUsage reports the bytes currently allocated by the engine heap.
func (s *Session) MemoryUsage() (int64, error) {
	release, err := s.acquire()
	if err != nil {
		return 0, err
	}
	defer release()
	n, err := s.rt.MemoryUsage()
	if err != nil {
		return 0, mapNative(err)
	}
	return n, nil
}

func mapNative(err error) error {
	if errors.Is(err, quickjs.ErrNoNativeAPI) {
		return fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	return err
}

// Eval runs src as global script and returns its completion value.
func (s *Session) Eval(src string) (host.Value, error) {
	return s.EvalContext(context.Background(), src)
}

// EvalContext is Eval bounded by ctx.
func (s *Session) EvalContext(ctx context.Context, src string) (host.Value, error) {
	return s.eval(ctx, "eval", src)
}

// EvalFile reads path and evaluates its contents.
func (s *Session) EvalFile(path string) (host.Value, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return host.Null(), fmt.Errorf("reading %s: %w", path, err)
	}
	return s.eval(context.Background(), "eval_file", string(src))
}

// EvalBundle bundles the ES module at entry with its imports and evaluates
// it. The result is the module's export object.
func (s *Session) EvalBundle(entry string) (host.Value, error) {
	src, err := Bundle(entry)
	if err != nil {
		return host.Null(), err
	}
	return s.eval(context.Background(), "eval_bundle", src+";\n"+BundleGlobal+";\n")
}

func (s *Session) eval(ctx context.Context, op, src string) (host.Value, error) {
	result := host.Null()
	err := s.do(ctx, op, func() error {
		if err := s.rt.EvalHold(src, mirror.HoldSlot); err != nil {
			return scriptError(op, err)
		}
		v, err := s.take(op)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	return result, err
}

// take collects the value parked in the hold slot.
func (s *Session) take(op string) (host.Value, error) {
	doc, err := s.rt.EvalString(mirror.Namespace + ".take(" + wire.Quote(mirror.HoldSlot) + ")")
	if err != nil {
		return host.Null(), scriptError(op, err)
	}
	return decode(doc)
}

func decode(doc string) (host.Value, error) {
	v, err := mirror.Decode(doc)
	if err != nil {
		return host.Null(), fmt.Errorf("mirroring engine value: %w", err)
	}
	return v, nil
}

// reviveExpr renders JS that rebuilds n as a live engine value.
func reviveExpr(n *wire.Node) (string, error) {
	doc, err := wire.Marshal(n)
	if err != nil {
		return "", err
	}
	return mirror.Namespace + ".revive(JSON.parse(" + wire.Quote(doc) + "))", nil
}

func globalRef(name string) string {
	return "globalThis[" + wire.Quote(name) + "]"
}

// SetGlobal mirrors v into the engine as a global. Existing globals are
// overwritten.
func (s *Session) SetGlobal(name string, v host.Value) error {
	return s.do(context.Background(), "set_global", func() error {
		expr, err := reviveExpr(mirror.ToNode(v))
		if err != nil {
			return err
		}
		if err := s.rt.Eval(globalRef(name) + " = " + expr + ";"); err != nil {
			return scriptError("set_global", err)
		}
		return nil
	})
}

// GetGlobal mirrors a global back to the host. A missing global is null.
func (s *Session) GetGlobal(name string) (host.Value, error) {
	result := host.Null()
	err := s.do(context.Background(), "get_global", func() error {
		doc, err := s.rt.EvalString(mirror.Namespace + ".encode(" + globalRef(name) + ")")
		if err != nil {
			return scriptError("get_global", err)
		}
		v, err := decode(doc)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	return result, err
}

// HasGlobal reports whether name is reachable on the global object,
// including through its prototype chain.
func (s *Session) HasGlobal(name string) (bool, error) {
	var found bool
	err := s.do(context.Background(), "has_global", func() error {
		ok, err := s.rt.EvalBool("(" + wire.Quote(name) + " in globalThis)")
		if err != nil {
			return scriptError("has_global", err)
		}
		found = ok
		return nil
	})
	return found, err
}

// TypeofGlobal classifies a global as one of undefined, null, boolean,
// number, string, array, function, object or unknown.
func (s *Session) TypeofGlobal(name string) (string, error) {
	var kind string
	err := s.do(context.Background(), "typeof_global", func() error {
		t, err := s.rt.EvalString(mirror.Namespace + ".typeOf(" + globalRef(name) + ")")
		if err != nil {
			return scriptError("typeof_global", err)
		}
		kind = t
		return nil
	})
	return kind, err
}

// Call invokes the global function name with args mirrored into the
// engine, and mirrors its return value back.
func (s *Session) Call(name string, args ...host.Value) (host.Value, error) {
	result := host.Null()
	err := s.do(context.Background(), "call", func() error {
		ok, err := s.rt.EvalBool("typeof " + globalRef(name) + ` === "function"`)
		if err != nil {
			return scriptError("call", err)
		}
		if !ok {
			return fmt.Errorf("%w: %q", ErrFunctionNotFound, name)
		}
		list, err := mirror.EncodeArgs(args)
		if err != nil {
			return err
		}
		js := globalRef(name) + ".apply(globalThis, JSON.parse(" + wire.Quote(list) + ").map(function(n) { return " + mirror.Namespace + ".revive(n); }))"
		if err := s.rt.EvalHold(js, mirror.HoldSlot); err != nil {
			return fmt.Errorf("%w: %q: %w", ErrCallFailed, name, scriptError("call", err))
		}
		v, err := s.take("call")
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	return result, err
}

// resolve validates a host callable name against the session resolver.
func (s *Session) resolve(hostName string) error {
	if _, err := s.resolver.Resolve(hostName); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidCallable, hostName, err)
	}
	return nil
}

// RegisterFunction exposes the host callable hostName as the global
// function jsName.
func (s *Session) RegisterFunction(jsName, hostName string) error {
	return s.do(context.Background(), "register_function", func() error {
		if err := s.resolve(hostName); err != nil {
			return err
		}
		js := globalRef(jsName) + " = " + mirror.Namespace + ".bridge(" + wire.Quote(hostName) + ");"
		if err := s.rt.Eval(js); err != nil {
			return scriptError("register_function", err)
		}
		return nil
	})
}

// RegisterObject materializes a snapshot of obj as the global jsName.
func (s *Session) RegisterObject(jsName string, obj *Object) error {
	spec := obj.snapshot()
	return s.do(context.Background(), "register_object", func() error {
		expr, err := reviveExpr(spec.Node())
		if err != nil {
			return err
		}
		if err := s.rt.Eval(globalRef(jsName) + " = " + expr + ";"); err != nil {
			return scriptError("register_object", err)
		}
		return nil
	})
}

// AddObjectMethod attaches the host callable hostName as method on the
// global object objName, creating the object when it does not exist.
func (s *Session) AddObjectMethod(objName, method, hostName string) error {
	return s.do(context.Background(), "add_object_method", func() error {
		if err := s.resolve(hostName); err != nil {
			return err
		}
		js := mirror.Namespace + ".ensure(" + wire.Quote(objName) + ")[" + wire.Quote(method) + "] = " +
			mirror.Namespace + ".bridge(" + wire.Quote(hostName) + ");"
		if err := s.rt.Eval(js); err != nil {
			return scriptError("add_object_method", err)
		}
		return nil
	})
}

// AddObjectProperty sets prop on the global object objName, creating the
// object when it does not exist.
func (s *Session) AddObjectProperty(objName, prop string, v host.Value) error {
	return s.do(context.Background(), "add_object_property", func() error {
		expr, err := reviveExpr(mirror.ToNode(v))
		if err != nil {
			return err
		}
		js := mirror.Namespace + ".ensure(" + wire.Quote(objName) + ")[" + wire.Quote(prop) + "] = " + expr + ";"
		if err := s.rt.Eval(js); err != nil {
			return scriptError("add_object_property", err)
		}
		return nil
	})
}

// reset clears per-use state before a pooled session is reused.
func (s *Session) reset() {
	release, err := s.acquire()
	if err != nil {
		return
	}
	defer release()
	_ = s.rt.Eval("delete globalThis[" + wire.Quote(mirror.HoldSlot) + "];")
}

// Close releases the engine. It waits for an operation in flight on
// another goroutine and is a no-op on a closed session.
func (s *Session) Close() error {
	release, err := s.guard.Acquire()
	if err != nil {
		return err
	}
	defer release()
	if s.closed.Swap(true) {
		return nil
	}
	s.rt.Close()
	s.metrics.sessionClosed()
	return nil
}
