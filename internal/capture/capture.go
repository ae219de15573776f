// Package capture holds engine-independent snapshots of host data. A
// snapshot owns all of its data and can be materialized into any number of
// engine contexts, any number of times.
package capture

import (
	"github.com/cryguy/jsbridge/host"
	"github.com/cryguy/jsbridge/internal/mirror"
	"github.com/cryguy/jsbridge/internal/wire"
)

// Kind tags a captured Value.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Int
	Float
	String
	Array
)

// Value is a captured host value. Array entries keep their rendered string
// keys and their original order.
type Value struct {
	Kind  Kind
	B     bool
	I     int64
	F     float64
	S     string
	Items []Entry
}

// Entry is one captured array entry.
type Entry struct {
	Key   string
	Value Value
}

// Capture snapshots v. Kinds with no captured form become Null.
func Capture(v host.Value) Value {
	switch v.Kind() {
	case host.KindNull:
		return Value{Kind: Null}
	case host.KindBool:
		return Value{Kind: Bool, B: v.Bool()}
	case host.KindInt:
		return Value{Kind: Int, I: v.Int()}
	case host.KindFloat:
		return Value{Kind: Float, F: v.Float()}
	case host.KindString:
		return Value{Kind: String, S: v.Str()}
	case host.KindArray:
		a := v.Array()
		items := make([]Entry, 0, a.Len())
		for k, e := range a.All() {
			items = append(items, Entry{Key: k.String(), Value: Capture(e)})
		}
		return Value{Kind: Array, Items: items}
	default:
		return Value{Kind: Null}
	}
}

// Clone deep-copies v.
func (v Value) Clone() Value {
	if v.Kind != Array {
		return v
	}
	items := make([]Entry, len(v.Items))
	for i, e := range v.Items {
		items[i] = Entry{Key: e.Key, Value: e.Value.Clone()}
	}
	v.Items = items
	return v
}

// Node builds the wire node that materializes v. Arrays are classified by
// mirror.IsSequential over their parsed keys.
func (v Value) Node() *wire.Node {
	switch v.Kind {
	case Bool:
		return wire.Bool(v.B)
	case Int:
		return wire.Number(mirror.FormatInt(v.I))
	case Float:
		return wire.Number(mirror.FormatFloat(v.F))
	case String:
		return wire.String(v.S)
	case Array:
		keys := make([]host.Key, len(v.Items))
		for i, e := range v.Items {
			keys[i] = host.ParseKey(e.Key)
		}
		if mirror.IsSequential(keys) {
			items := make([]*wire.Node, len(v.Items))
			for i, e := range v.Items {
				items[i] = e.Value.Node()
			}
			return wire.Array(items...)
		}
		props := make([]wire.Prop, len(v.Items))
		for i, e := range v.Items {
			props[i] = wire.Prop{K: e.Key, V: e.Value.Node()}
		}
		return wire.Object(props...)
	default:
		return wire.Null()
	}
}
