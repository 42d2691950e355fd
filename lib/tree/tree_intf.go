package tree

import (
	"iter"

	"github.com/benz9527/xllrb/lib/infra"
)

type Color uint8

const (
	Black Color = iota
	Red
)

func (c Color) String() string {
	switch c {
	case Black:
		return "Black"
	case Red:
		return "Red"
	default:
	}
	return "Color(unknown)"
}

// LLRBNode is a read-only view of a tree node. The color is the color
// of the link from the node's parent to the node.
type LLRBNode[K infra.OrderedKey, V any] interface {
	Key() K
	Val() V
	Color() Color
	Size() int64
	Left() LLRBNode[K, V]
	Right() LLRBNode[K, V]
}

// LLRBTree is an ordered map backed by a left-leaning red-black tree
// augmented with subtree sizes.
//
// The tree is not safe for concurrent use. Callers sharing a tree
// between goroutines have to serialize every operation.
//
// Min, Max, Floor, Ceiling and Select panic with an *infra.ContractViolation
// when the answer does not exist. Check IsEmpty (or use the Ok variants)
// first.
type LLRBTree[K infra.OrderedKey, V any] interface {
	Len() int64
	IsEmpty() bool
	Root() LLRBNode[K, V]
	KeyCompare(i, j K) int64

	Insert(key K, val V)
	Delete(key K) bool
	DeleteMin() bool
	DeleteMax() bool

	Get(key K) (V, bool)
	Contains(key K) bool

	Min() K
	Max() K
	Floor(key K) K
	FloorOk(key K) (K, bool)
	Ceiling(key K) K
	CeilingOk(key K) (K, bool)
	Select(rank int64) K
	SelectVal(rank int64) (K, V)
	Rank(key K) int64

	Keys() iter.Seq[K]
	KeysInRange(lo, hi K) iter.Seq[K]
	All() iter.Seq2[K, V]
	Range(lo, hi K) iter.Seq2[K, V]
	SizeInRange(lo, hi K) int64

	Foreach(action func(idx int64, color Color, key K, val V) bool)
	Release()
}
