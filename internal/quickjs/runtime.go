// Package quickjs wraps one QuickJS VM (a runtime plus one full context)
// behind the small surface the bridge needs. Runtime-wide controls that the
// Go wrapper does not expose (GC, stack ceiling, heap statistics) go
// straight to the libquickjs C API.
package quickjs

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"

	"modernc.org/libc"
	lib "modernc.org/libquickjs"
	"modernc.org/quickjs"
)

// ErrNoNativeAPI is returned by the C-API backed controls when the VM's
// internal pointers could not be located.
var ErrNoNativeAPI = errors.New("quickjs: native runtime API unavailable")

// MaxStackSize is the largest stack ceiling the runtime accepts, and the one
// every runtime starts with. The unit is the engine's own stack accounting,
// which tracks the C-translated call frames rather than the Go stack the
// interpreter actually recurses on. Past this value deep recursion exhausts
// the goroutine stack, a fatal error, before the engine's check can raise
// its InternalError.
const MaxStackSize = 64 << 10

// unlimited is QuickJS's own "no ceiling" heap limit (SIZE_MAX).
const unlimited = ^uintptr(0)

// Runtime is a single QuickJS VM. It is not safe for concurrent use.
type Runtime struct {
	vm *quickjs.VM

	// C API handles, cached from VM internals. Valid only when native.
	tls    *libc.TLS
	ctx    uintptr // JSContext*
	rt     uintptr // JSRuntime*
	native bool
}

// New creates a VM with its stack ceiling at MaxStackSize. The C-API
// handles are extracted best-effort; without them evaluation still works
// but GC, stack and usage controls report ErrNoNativeAPI, and runaway
// recursion is no longer caught by the engine.
func New() (*Runtime, error) {
	vm, err := quickjs.NewVM()
	if err != nil {
		return nil, fmt.Errorf("creating QuickJS VM: %w", err)
	}
	r := &Runtime{vm: vm}
	if err := r.tryExtractVMInternals(); err == nil {
		// Smoke-test: a trivial C API call must not fault.
		glob := lib.XJS_GetGlobalObject(r.tls, r.ctx)
		lib.XFreeValue(r.tls, r.ctx, glob)
		r.native = true
		lib.XJS_SetMaxStackSize(r.tls, r.rt, MaxStackSize)
	}
	return r, nil
}

// Native reports whether the C-API backed controls are available.
func (r *Runtime) Native() bool { return r.native }

// tryExtractVMInternals uses reflect+unsafe to cache the VM's tls, context
// and runtime pointers.
func (r *Runtime) tryExtractVMInternals() (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic extracting VM internals: %v", p)
		}
	}()

	vmType := reflect.TypeOf(r.vm).Elem()
	vmPtr := uintptr(unsafe.Pointer(r.vm))

	// cContext is the first field of VM (offset 0).
	r.ctx = *(*uintptr)(unsafe.Pointer(vmPtr))
	if r.ctx == 0 {
		return fmt.Errorf("JSContext is nil")
	}

	rtField, ok := vmType.FieldByName("runtime")
	if !ok {
		return fmt.Errorf("quickjs.VM missing 'runtime' field")
	}
	rtPtr := *(*uintptr)(unsafe.Pointer(vmPtr + rtField.Offset))
	if rtPtr == 0 {
		return fmt.Errorf("runtime pointer is nil")
	}

	// The wrapper's runtime struct starts with the JSRuntime pointer,
	// followed by the TLS.
	r.rt = *(*uintptr)(unsafe.Pointer(rtPtr))
	if r.rt == 0 {
		return fmt.Errorf("JSRuntime is nil")
	}
	r.tls = *(**libc.TLS)(unsafe.Pointer(rtPtr + unsafe.Sizeof(uintptr(0))))
	if r.tls == nil {
		return fmt.Errorf("TLS is nil")
	}
	return nil
}

// Eval evaluates global script and discards the completion value.
func (r *Runtime) Eval(js string) error {
	v, err := r.vm.EvalValue(js, quickjs.EvalGlobal)
	if err != nil {
		return err
	}
	v.Free()
	return nil
}

// EvalString evaluates global script and returns its result as a string.
func (r *Runtime) EvalString(js string) (string, error) {
	result, err := r.vm.Eval(js, quickjs.EvalGlobal)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", nil
	}
	s, ok := result.(string)
	if !ok {
		return fmt.Sprint(result), nil
	}
	return s, nil
}

// EvalBool evaluates global script and returns its result as a bool.
func (r *Runtime) EvalBool(js string) (bool, error) {
	result, err := r.vm.Eval(js, quickjs.EvalGlobal)
	if err != nil {
		return false, err
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("expected bool, got %T", result)
	}
	return b, nil
}

// EvalHold evaluates global script and parks its completion value in the
// global slot, where script can pick it up without copying it through Go.
func (r *Runtime) EvalHold(js, slot string) error {
	v, err := r.vm.EvalValue(js, quickjs.EvalGlobal)
	if err != nil {
		return err
	}
	defer v.Free()
	return r.SetGlobal(slot, v)
}

// RegisterFunc registers a Go function as a global JavaScript function.
// Arguments and results are converted by the quickjs wrapper.
func (r *Runtime) RegisterFunc(name string, fn any) error {
	return r.vm.RegisterFunc(name, fn, false)
}

// SetGlobal sets a global property on the VM's global object.
func (r *Runtime) SetGlobal(name string, value any) error {
	atom, err := r.vm.NewAtom(name)
	if err != nil {
		return fmt.Errorf("creating atom %q: %w", name, err)
	}
	glob := r.vm.GlobalObject()
	defer glob.Free()
	return glob.SetProperty(atom, value)
}

// SetMemoryLimit sets the runtime heap ceiling in bytes. Zero removes it;
// the wrapper would otherwise raise it to its 128 KiB floor.
func (r *Runtime) SetMemoryLimit(limit uintptr) {
	if limit == 0 {
		limit = unlimited
	}
	r.vm.SetMemoryLimit(limit)
}

// SetMaxStackSize sets the stack ceiling in engine stack units. Zero and
// values above MaxStackSize install MaxStackSize; the check can never be
// turned off. It returns the ceiling in effect.
func (r *Runtime) SetMaxStackSize(size uintptr) (uintptr, error) {
	if !r.native {
		return 0, ErrNoNativeAPI
	}
	if size == 0 || size > MaxStackSize {
		size = MaxStackSize
	}
	lib.XJS_SetMaxStackSize(r.tls, r.rt, lib.Tsize_t(size))
	return size, nil
}

// RunGC runs a full collection cycle.
func (r *Runtime) RunGC() error {
	if !r.native {
		return ErrNoNativeAPI
	}
	lib.XJS_RunGC(r.tls, r.rt)
	return nil
}

// MemoryUsage returns the bytes currently in use by the runtime heap.
func (r *Runtime) MemoryUsage() (int64, error) {
	if !r.native {
		return 0, ErrNoNativeAPI
	}
	var usage lib.TJSMemoryUsage
	lib.XJS_ComputeMemoryUsage(r.tls, r.rt, uintptr(unsafe.Pointer(&usage)))
	return int64(usage.Fmemory_used_size), nil
}

// Interrupt aborts the evaluation in flight. It may be called from any
// goroutine.
func (r *Runtime) Interrupt() {
	r.vm.Interrupt()
}

// Close releases the VM. Values it produced become invalid.
func (r *Runtime) Close() {
	r.vm.Close()
}
