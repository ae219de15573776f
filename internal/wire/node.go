// Package wire defines the tagged document that carries values across the
// host/engine boundary. Both sides speak it: Go marshals it with sonic, the
// engine-side prelude builds and walks it with JSON.parse/JSON.stringify.
package wire

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// api matches encoding/json: strings are validated and escaped, so the
// output can be spliced into engine source.
var api = sonic.ConfigStd

// Node tags.
const (
	TagNull   = "null"
	TagBool   = "bool"
	TagNumber = "num"
	TagBigInt = "big"
	TagString = "str"
	TagArray  = "arr"
	TagObject = "obj"
	// TagFunc references a host callable by name (host to engine).
	TagFunc = "fn"
	// TagEngineFunc stands in for an engine function (engine to host).
	TagEngineFunc = "func"
	// TagError carries a host-side failure back to the bridge caller.
	TagError = "err"
)

// Node is one value in a wire document. Numbers travel as decimal text so
// that NaN, the infinities and negative zero survive the trip.
type Node struct {
	T     string  `json:"t"`
	B     bool    `json:"b,omitempty"`
	S     string  `json:"s,omitempty"`
	Items []*Node `json:"items,omitempty"`
	Props []Prop  `json:"props,omitempty"`
}

// Prop is one ordered object property.
type Prop struct {
	K string `json:"k"`
	V *Node  `json:"v"`
}

func Null() *Node { return &Node{T: TagNull} }
func Bool(b bool) *Node { return &Node{T: TagBool, B: b} }
func Number(text string) *Node { return &Node{T: TagNumber, S: text} }
func String(s string) *Node { return &Node{T: TagString, S: s} }
func Func(name string) *Node { return &Node{T: TagFunc, S: name} }
func Error(msg string) *Node { return &Node{T: TagError, S: msg} }
func Array(items ...*Node) *Node { return &Node{T: TagArray, Items: items} }
func Object(props ...Prop) *Node { return &Node{T: TagObject, Props: props} }

// Marshal encodes n. The output is valid JSON and therefore also a valid
// JavaScript expression.
func Marshal(n *Node) (string, error) {
	if n == nil {
		n = Null()
	}
	s, err := api.MarshalToString(n)
	if err != nil {
		return "", fmt.Errorf("encoding wire node: %w", err)
	}
	return s, nil
}

// MarshalList encodes a list of nodes as a JSON array.
func MarshalList(nodes []*Node) (string, error) {
	if nodes == nil {
		nodes = []*Node{}
	}
	s, err := api.MarshalToString(nodes)
	if err != nil {
		return "", fmt.Errorf("encoding wire list: %w", err)
	}
	return s, nil
}

// Unmarshal decodes a single node.
func Unmarshal(data string) (*Node, error) {
	var n Node
	if err := api.UnmarshalFromString(data, &n); err != nil {
		return nil, fmt.Errorf("decoding wire node: %w", err)
	}
	return &n, nil
}

// UnmarshalList decodes a JSON array of nodes.
func UnmarshalList(data string) ([]*Node, error) {
	var nodes []*Node
	if err := api.UnmarshalFromString(data, &nodes); err != nil {
		return nil, fmt.Errorf("decoding wire list: %w", err)
	}
	return nodes, nil
}

// Quote renders s as a JavaScript string literal.
func Quote(s string) string {
	q, err := api.MarshalToString(s)
	if err != nil {
		// Strings always marshal; keep the signature simple for callers
		// that splice literals into generated source.
		panic(err)
	}
	return q
}
