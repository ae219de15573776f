package jsbridge

import (
	"fmt"
	"sync"

	"github.com/cryguy/jsbridge/host"
	"github.com/cryguy/jsbridge/internal/capture"
)

// Object accumulates the members of an engine object on the host side.
// Nothing touches an engine until the object is registered with a
// Session, and one Object can be registered with any number of sessions.
//
// Registering a name that already exists replaces the old member and moves
// the name to the end of the member order.
type Object struct {
	mu       sync.Mutex
	resolver host.Resolver
	spec     capture.ObjectSpec
}

// NewObject returns an empty builder. Function members are validated
// against resolver; nil means host.Default.
func NewObject(resolver host.Resolver) *Object {
	if resolver == nil {
		resolver = host.Default
	}
	return &Object{resolver: resolver}
}

// RegisterProperty captures v under name. Later changes to v do not
// affect the builder.
func (o *Object) RegisterProperty(name string, v host.Value) {
	c := capture.Capture(v)
	o.mu.Lock()
	defer o.mu.Unlock()
	o.spec.SetProperty(name, c)
}

// RegisterFunction records a method that dispatches to the host callable
// hostName. The name must resolve now.
func (o *Object) RegisterFunction(name, hostName string) error {
	if _, err := o.resolver.Resolve(hostName); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidCallable, hostName, err)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.spec.SetFunction(name, hostName)
	return nil
}

// RegisterObject stores a snapshot of nested under name. Changes made to
// nested afterwards are not seen.
func (o *Object) RegisterObject(name string, nested *Object) {
	snap := nested.snapshot()
	o.mu.Lock()
	defer o.mu.Unlock()
	o.spec.SetObject(name, snap)
}

// Names lists member names in materialization order.
func (o *Object) Names() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.spec.Names()
}

// Len returns the number of members.
func (o *Object) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.spec.Len()
}

// Has reports whether name is a member.
func (o *Object) Has(name string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.spec.Get(name)
	return ok
}

func (o *Object) snapshot() *capture.ObjectSpec {
	if o == nil {
		return &capture.ObjectSpec{}
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.spec.Clone()
}
