package tree

import (
	"github.com/benz9527/xllrb/lib/infra"
)

type llrbNode[K infra.OrderedKey, V any] struct {
	left  *llrbNode[K, V]
	right *llrbNode[K, V]
	key   K
	val   V
	size  int64
	color Color
}

func (node *llrbNode[K, V]) Key() K {
	return node.key
}

func (node *llrbNode[K, V]) Val() V {
	return node.val
}

func (node *llrbNode[K, V]) Color() Color {
	return node.color
}

func (node *llrbNode[K, V]) Size() int64 {
	return sizeOf(node)
}

// Left and Right return an untyped nil for the absent subtree,
// a typed nil pointer would not compare equal to nil.
func (node *llrbNode[K, V]) Left() LLRBNode[K, V] {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *llrbNode[K, V]) Right() LLRBNode[K, V] {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

func isRed[K infra.OrderedKey, V any](node *llrbNode[K, V]) bool {
	return node != nil && node.color == Red
}

func sizeOf[K infra.OrderedKey, V any](node *llrbNode[K, V]) int64 {
	if node == nil {
		return 0
	}
	return node.size
}

func (node *llrbNode[K, V]) resize() {
	node.size = 1 + sizeOf(node.left) + sizeOf(node.right)
}

func (node *llrbNode[K, V]) minimum() *llrbNode[K, V] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (node *llrbNode[K, V]) maximum() *llrbNode[K, V] {
	aux := node
	for ; aux != nil && aux.right != nil; aux = aux.right {
	}
	return aux
}

/*
<X> is a RED link.
[X] is a BLACK link (or NIL).

	    [H]                        [X]
	    / \     rotateLeft(H)      / \
	  [A] <X>   ============>    <H> [C]
	      / \                    / \
	    [B] [C]                [A] [B]

X takes H's link color, H becomes red. H is resized before X,
it is X's child now.
*/
func (tree *llrbTree[K, V]) rotateLeft(h *llrbNode[K, V]) *llrbNode[K, V] {
	if h == nil || h.right == nil {
		// impossible run to here
		panic( /* debug assertion */ "[llrb] left rotate node h is nil or h.right is nil")
	}
	x := h.right
	h.right, x.left = x.left, h
	x.color, h.color = h.color, Red
	h.resize()
	x.resize()
	tree.stats.IncreaseRotateCount()
	return x
}

/*
	      [H]                      [X]
	      / \   rotateRight(H)     / \
	    <X> [C] ============>    [A] <H>
	    / \                          / \
	  [A] [B]                      [B] [C]
*/
func (tree *llrbTree[K, V]) rotateRight(h *llrbNode[K, V]) *llrbNode[K, V] {
	if h == nil || h.left == nil {
		// impossible run to here
		panic( /* debug assertion */ "[llrb] right rotate node h is nil or h.left is nil")
	}
	x := h.left
	h.left, x.right = x.right, h
	x.color, h.color = h.color, Red
	h.resize()
	x.resize()
	tree.stats.IncreaseRotateCount()
	return x
}

// flipColors splits (or, on the way down a deletion, merges) a temporary 4-node.
//
//	  [H]                <H>
//	  / \    flip(H)     / \
//	<A> <B>  ======>   [A] [B]
func (tree *llrbTree[K, V]) flipColors(h *llrbNode[K, V]) {
	if h == nil || h.left == nil || h.right == nil {
		// impossible run to here
		panic( /* debug assertion */ "[llrb] flip colors node h or its children are nil")
	}
	h.color ^= 1
	h.left.color ^= 1
	h.right.color ^= 1
	tree.stats.IncreaseFlipCount()
}

// balance restores the left-leaning rules on the way back up from an
// insertion or a deletion, then refreshes the subtree size.
func (tree *llrbTree[K, V]) balance(h *llrbNode[K, V]) *llrbNode[K, V] {
	if isRed(h.right) && !isRed(h.left) {
		h = tree.rotateLeft(h)
	}
	if isRed(h.left) && isRed(h.left.left) {
		h = tree.rotateRight(h)
	}
	if isRed(h.left) && isRed(h.right) {
		tree.flipColors(h)
	}
	h.resize()
	return h
}

// moveRedLeft assumes h is red and both h.left and h.left.left are black.
// Makes h.left or one of its children red, borrowing from the right
// sibling when that sibling is a 3-node.
func (tree *llrbTree[K, V]) moveRedLeft(h *llrbNode[K, V]) *llrbNode[K, V] {
	tree.flipColors(h)
	if isRed(h.right.left) {
		h.right = tree.rotateRight(h.right)
		h = tree.rotateLeft(h)
		tree.flipColors(h)
	}
	return h
}

// moveRedRight assumes h is red and both h.right and h.right.left are black.
// Makes h.right or one of its children red.
func (tree *llrbTree[K, V]) moveRedRight(h *llrbNode[K, V]) *llrbNode[K, V] {
	tree.flipColors(h)
	if isRed(h.left.left) {
		h = tree.rotateRight(h)
		tree.flipColors(h)
	}
	return h
}
