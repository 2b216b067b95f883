package ingest

import (
	"encoding/json"
	"math"
	"sort"
)

// Node is an optional view over a decoded JSON value. Every accessor is
// total: a missing key, a wrong type or a nil receiver yields an absent Node
// (or zero value) instead of a panic.
type Node struct {
	v       any
	present bool
}

func NewNode(v any) Node { return Node{v: v, present: v != nil} }

func (n Node) Present() bool { return n.present }

// Get returns the child under key when n is an object.
func (n Node) Get(key string) Node {
	m, ok := n.v.(map[string]any)
	if !ok {
		return Node{}
	}
	child, ok := m[key]
	if !ok {
		return Node{}
	}
	return NewNode(child)
}

// Path walks successive object keys.
func (n Node) Path(keys ...string) Node {
	cur := n
	for _, k := range keys {
		cur = cur.Get(k)
	}
	return cur
}

// Index returns element i when n is an array.
func (n Node) Index(i int) Node {
	arr, ok := n.v.([]any)
	if !ok || i < 0 || i >= len(arr) {
		return Node{}
	}
	return NewNode(arr[i])
}

func (n Node) IsObject() bool {
	_, ok := n.v.(map[string]any)
	return ok
}

// Len is the element count of an array node, or -1 when n is not an array.
func (n Node) Len() int {
	arr, ok := n.v.([]any)
	if !ok {
		return -1
	}
	return len(arr)
}

// Keys returns an object's keys sorted, so callers iterate deterministically.
func (n Node) Keys() []string {
	m, ok := n.v.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Number reports the numeric value of n. Strings, booleans, NaN and
// infinities are not numbers.
func (n Node) Number() (float64, bool) {
	var f float64
	switch v := n.v.(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// NumberOr returns the numeric value of n or def.
func (n Node) NumberOr(def float64) float64 {
	if f, ok := n.Number(); ok {
		return f
	}
	return def
}
