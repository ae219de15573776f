// Package mirror converts between host values and wire nodes, the form in
// which values enter and leave the engine. It owns the one shape test that
// decides whether a container becomes an engine array or an engine object.
package mirror

import (
	"math"
	"math/big"
	"strconv"

	"github.com/cryguy/jsbridge/host"
	"github.com/cryguy/jsbridge/internal/wire"
)

// FunctionPlaceholder is what an engine function mirrors to. It is a plain
// string; it cannot be called back.
const FunctionPlaceholder = "[Function]"

// maxSafeInteger is 2^53, the largest magnitude at which every integer is
// an exact engine number.
const maxSafeInteger = 1 << 53

// IsSequential reports whether keys are exactly the integers 0..n-1 in
// order. Zero keys are sequential, so an empty container becomes an engine
// array. Every container classification in this module goes through here.
func IsSequential(keys []host.Key) bool {
	for i, k := range keys {
		n, ok := k.Int()
		if !ok || n != int64(i) {
			return false
		}
	}
	return true
}

// ToNode mirrors a host value into a wire node (to_engine). It never fails:
// kinds with no engine analog become null.
func ToNode(v host.Value) *wire.Node {
	switch v.Kind() {
	case host.KindNull:
		return wire.Null()
	case host.KindBool:
		return wire.Bool(v.Bool())
	case host.KindInt:
		return wire.Number(FormatInt(v.Int()))
	case host.KindFloat:
		return wire.Number(FormatFloat(v.Float()))
	case host.KindString:
		return wire.String(v.Str())
	case host.KindArray:
		return arrayNode(v.Array())
	default:
		return wire.Null()
	}
}

func arrayNode(a *host.Array) *wire.Node {
	if IsSequential(a.Keys()) {
		items := make([]*wire.Node, 0, a.Len())
		for _, e := range a.All() {
			items = append(items, ToNode(e))
		}
		return wire.Array(items...)
	}
	props := make([]wire.Prop, 0, a.Len())
	for k, e := range a.All() {
		props = append(props, wire.Prop{K: k.String(), V: ToNode(e)})
	}
	return wire.Object(props...)
}

// FormatInt renders an integer for the engine. Integers beyond ±2^53 are
// read by the engine as the nearest double.
func FormatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// FormatFloat renders a float so that the engine's Number() reads back the
// same value, including NaN, the infinities and negative zero.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// FromNode mirrors a wire node back into a host value (to_host). ok is
// false for a malformed node; callers drop such elements.
func FromNode(n *wire.Node) (host.Value, bool) {
	if n == nil {
		return host.Null(), false
	}
	switch n.T {
	case wire.TagNull:
		return host.Null(), true
	case wire.TagBool:
		return host.Bool(n.B), true
	case wire.TagNumber:
		return parseNumber(n.S)
	case wire.TagBigInt:
		return parseBigInt(n.S)
	case wire.TagString:
		return host.String(n.S), true
	case wire.TagEngineFunc:
		return host.String(FunctionPlaceholder), true
	case wire.TagArray:
		a := host.NewArray()
		for _, item := range n.Items {
			if v, ok := FromNode(item); ok {
				a.Append(v)
			}
		}
		return host.ArrayOf(a), true
	case wire.TagObject:
		a := host.NewArray()
		for _, p := range n.Props {
			if v, ok := FromNode(p.V); ok {
				a.SetString(p.K, v)
			}
		}
		return host.ArrayOf(a), true
	default:
		return host.Null(), false
	}
}

// parseNumber maps an engine number to Int when it is integral, finite,
// not negative zero and within ±2^53, and to Float otherwise.
func parseNumber(text string) (host.Value, bool) {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return host.Null(), false
	}
	if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) <= maxSafeInteger {
		if f == 0 && math.Signbit(f) {
			return host.Float(f), true
		}
		return host.Int(int64(f)), true
	}
	return host.Float(f), true
}

func parseBigInt(text string) (host.Value, bool) {
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return host.Int(i), true
	}
	b, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return host.Null(), false
	}
	f, _ := new(big.Float).SetInt(b).Float64()
	return host.Float(f), true
}

// EncodeArgs marshals a list of host values as a wire list.
func EncodeArgs(args []host.Value) (string, error) {
	nodes := make([]*wire.Node, len(args))
	for i, a := range args {
		nodes[i] = ToNode(a)
	}
	return wire.MarshalList(nodes)
}

// Decode unmarshals one wire node and mirrors it. A node that cannot be
// mirrored decodes to null.
func Decode(data string) (host.Value, error) {
	n, err := wire.Unmarshal(data)
	if err != nil {
		return host.Null(), err
	}
	v, _ := FromNode(n)
	return v, nil
}

// DecodeArgs unmarshals a wire list, dropping elements that cannot be
// mirrored.
func DecodeArgs(data string) ([]host.Value, error) {
	nodes, err := wire.UnmarshalList(data)
	if err != nil {
		return nil, err
	}
	out := make([]host.Value, 0, len(nodes))
	for _, n := range nodes {
		if v, ok := FromNode(n); ok {
			out = append(out, v)
		}
	}
	return out, nil
}
