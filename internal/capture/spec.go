package capture

import (
	"github.com/cryguy/jsbridge/internal/wire"
)

// MemberKind tags an ObjectSpec member.
type MemberKind uint8

const (
	Property MemberKind = iota
	FunctionRef
	Nested
)

// Member is one named entry of an ObjectSpec.
type Member struct {
	Kind     MemberKind
	Value    Value       // Property
	Callable string      // FunctionRef: host callable name
	Object   *ObjectSpec // Nested
}

type namedMember struct {
	name   string
	member Member
}

// ObjectSpec is an ordered set of named members. Setting a name that is
// already present removes the old entry and appends the new one, so names
// stay unique and the latest write is last.
type ObjectSpec struct {
	members []namedMember
}

// Set stores m under name.
func (s *ObjectSpec) Set(name string, m Member) {
	for i, nm := range s.members {
		if nm.name == name {
			s.members = append(s.members[:i], s.members[i+1:]...)
			break
		}
	}
	s.members = append(s.members, namedMember{name: name, member: m})
}

// SetProperty captures a property member.
func (s *ObjectSpec) SetProperty(name string, v Value) {
	s.Set(name, Member{Kind: Property, Value: v})
}

// SetFunction stores a reference to a host callable.
func (s *ObjectSpec) SetFunction(name, callable string) {
	s.Set(name, Member{Kind: FunctionRef, Callable: callable})
}

// SetObject stores a copy of nested.
func (s *ObjectSpec) SetObject(name string, nested *ObjectSpec) {
	s.Set(name, Member{Kind: Nested, Object: nested.Clone()})
}

// Get returns the member stored under name.
func (s *ObjectSpec) Get(name string) (Member, bool) {
	for _, nm := range s.members {
		if nm.name == name {
			return nm.member, true
		}
	}
	return Member{}, false
}

// Len returns the number of members.
func (s *ObjectSpec) Len() int {
	if s == nil {
		return 0
	}
	return len(s.members)
}

// Names lists member names in order.
func (s *ObjectSpec) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.members))
	for i, nm := range s.members {
		out[i] = nm.name
	}
	return out
}

// Clone deep-copies s.
func (s *ObjectSpec) Clone() *ObjectSpec {
	out := &ObjectSpec{}
	if s == nil {
		return out
	}
	out.members = make([]namedMember, len(s.members))
	for i, nm := range s.members {
		m := nm.member
		switch m.Kind {
		case Property:
			m.Value = m.Value.Clone()
		case Nested:
			m.Object = m.Object.Clone()
		}
		out.members[i] = namedMember{name: nm.name, member: m}
	}
	return out
}

// Node builds the wire node that materializes s. A spec is always an
// engine object, even with no members.
func (s *ObjectSpec) Node() *wire.Node {
	n := wire.Object()
	if s == nil {
		return n
	}
	n.Props = make([]wire.Prop, 0, len(s.members))
	for _, nm := range s.members {
		var v *wire.Node
		switch nm.member.Kind {
		case Property:
			v = nm.member.Value.Node()
		case FunctionRef:
			v = wire.Func(nm.member.Callable)
		case Nested:
			v = nm.member.Object.Node()
		default:
			v = wire.Null()
		}
		n.Props = append(n.Props, wire.Prop{K: nm.name, V: v})
	}
	return n
}
