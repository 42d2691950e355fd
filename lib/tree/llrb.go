package tree

import (
	"iter"

	"github.com/benz9527/xllrb/lib/infra"
)

// References:
// https://sedgewick.io/wp-content/themes/sedgewick/papers/2008LLRB.pdf
// https://algs4.cs.princeton.edu/33balanced/RedBlackBST.java.html
//
// LLRB properties:
// p1. Red links lean left.
// p2. No node has two red links connected to it. (red-violation)
// p3. Every path from the root to a NIL link crosses the same
//   number of black links. (black-violation)
// p4. The root link is black.
// p5. size(node) = 1 + size(left) + size(right).
//
// Every mutation takes a subtree root and returns the (possibly
// different) subtree root, the caller stores it back into the
// slot it came from. Nodes carry no parent pointer.

var _ LLRBTree[int, struct{}] = (*llrbTree[int, struct{}])(nil)

type llrbTree[K infra.OrderedKey, V any] struct {
	root   *llrbNode[K, V]
	cmp    infra.OrderedKeyComparator[K]
	stats  *llrbStats
	isDesc bool
}

func (tree *llrbTree[K, V]) KeyCompare(i, j K) int64 {
	return tree.cmp(i, j)
}

func (tree *llrbTree[K, V]) Len() int64 {
	return sizeOf(tree.root)
}

func (tree *llrbTree[K, V]) IsEmpty() bool {
	return tree.root == nil
}

func (tree *llrbTree[K, V]) Root() LLRBNode[K, V] {
	if tree.root == nil {
		return nil
	}
	return tree.root
}

func (tree *llrbTree[K, V]) search(key K) *llrbNode[K, V] {
	for aux := tree.root; aux != nil; {
		res := tree.cmp(key, aux.key)
		if /* equal */ res == 0 {
			return aux
		} else /* less */ if res < 0 {
			aux = aux.left
		} else /* greater */ {
			aux = aux.right
		}
	}
	return nil
}

func (tree *llrbTree[K, V]) Get(key K) (V, bool) {
	if x := tree.search(key); x != nil {
		return x.val, true
	}
	var zero V
	return zero, false
}

func (tree *llrbTree[K, V]) Contains(key K) bool {
	return tree.search(key) != nil
}

// Insert adds the key or overwrites the value of an existing key.
func (tree *llrbTree[K, V]) Insert(key K, val V) {
	tree.root = tree.insert(tree.root, key, val)
	tree.root.color = Black
}

/*
New node X is a red leaf, linked by a red link to its parent.
On the way back up, for each node H:

i1: Right link is red and left link is black, rotate H left.

	  [H]                  [X]
	  / \                  / \
	[A] <X>     ====>    <H>
	                     /
	                   [A]

i2: Left link and left-left link are red, rotate H right.

	      [H]             [X]
	      /               / \
	    <X>     ====>   <A> <H>
	    /
	  <A>

i3: Both links are red, flip colors. The red link goes up one level.
*/
func (tree *llrbTree[K, V]) insert(h *llrbNode[K, V], key K, val V) *llrbNode[K, V] {
	if h == nil {
		tree.stats.IncreaseInsertCount()
		return &llrbNode[K, V]{
			key:   key,
			val:   val,
			size:  1,
			color: Red,
		}
	}

	res := tree.cmp(key, h.key)
	if /* equal */ res == 0 {
		h.val = val
		tree.stats.IncreaseUpdateCount()
	} else /* less */ if res < 0 {
		h.left = tree.insert(h.left, key, val)
	} else /* greater */ {
		h.right = tree.insert(h.right, key, val)
	}
	return tree.balance(h)
}

// Delete removes the key. It reports false and leaves the tree
// untouched if the key is absent.
func (tree *llrbTree[K, V]) Delete(key K) bool {
	if !tree.Contains(key) {
		return false
	}

	// Borrowing starts at a red root link, unless the root is
	// already the upper part of a 3-node.
	if !isRed(tree.root.left) && !isRed(tree.root.right) {
		tree.root.color = Red
	}
	tree.root = tree.delete(tree.root, key)
	if tree.root != nil {
		tree.root.color = Black
	}
	tree.stats.IncreaseDeleteCount()
	return true
}

/*
Top-down 2-3 deletion. The invariant on the way down is that either
the current node or its child on the search path is red, so the key
is finally removed from a 3-node (or a temporary 4-node) and the
black height stays unchanged.

d1: Go left. If the left child is a 2-node (left and left-left links
are black), move a red link down to the left (moveRedLeft).

d2: Go right. A red left link is rotated right first, so the right
side has a red link to consume.
If the key is found without a right child, the node is a leaf of the
2-3 tree, remove it directly.
If the right child is a 2-node, move a red link down to the right
(moveRedRight).
If the key is found with a right child, replace the node with its
successor, then remove the successor from the right subtree by deleteMin.
*/
func (tree *llrbTree[K, V]) delete(h *llrbNode[K, V], key K) *llrbNode[K, V] {
	if /* d1 */ tree.cmp(key, h.key) < 0 {
		if h.left != nil && !isRed(h.left) && !isRed(h.left.left) {
			h = tree.moveRedLeft(h)
		}
		h.left = tree.delete(h.left, key)
	} else /* d2 */ {
		if isRed(h.left) {
			h = tree.rotateRight(h)
		}
		if tree.cmp(key, h.key) == 0 && h.right == nil {
			return nil
		}
		if h.right != nil && !isRed(h.right) && !isRed(h.right.left) {
			h = tree.moveRedRight(h)
		}
		if tree.cmp(key, h.key) == 0 {
			succ := h.right.minimum()
			h.key, h.val = succ.key, succ.val
			h.right = tree.deleteMin(h.right)
		} else {
			h.right = tree.delete(h.right, key)
		}
	}
	return tree.balance(h)
}

// DeleteMin removes the smallest key. It reports false on an empty tree.
func (tree *llrbTree[K, V]) DeleteMin() bool {
	if tree.root == nil {
		return false
	}
	if !isRed(tree.root.left) && !isRed(tree.root.right) {
		tree.root.color = Red
	}
	tree.root = tree.deleteMin(tree.root)
	if tree.root != nil {
		tree.root.color = Black
	}
	tree.stats.IncreaseDeleteCount()
	return true
}

func (tree *llrbTree[K, V]) deleteMin(h *llrbNode[K, V]) *llrbNode[K, V] {
	if h.left == nil {
		// Left-leaning, so there is no right child either.
		return nil
	}
	if !isRed(h.left) && !isRed(h.left.left) {
		h = tree.moveRedLeft(h)
	}
	h.left = tree.deleteMin(h.left)
	return tree.balance(h)
}

// DeleteMax removes the largest key. It reports false on an empty tree.
func (tree *llrbTree[K, V]) DeleteMax() bool {
	if tree.root == nil {
		return false
	}
	if !isRed(tree.root.left) && !isRed(tree.root.right) {
		tree.root.color = Red
	}
	tree.root = tree.deleteMax(tree.root)
	if tree.root != nil {
		tree.root.color = Black
	}
	tree.stats.IncreaseDeleteCount()
	return true
}

func (tree *llrbTree[K, V]) deleteMax(h *llrbNode[K, V]) *llrbNode[K, V] {
	if isRed(h.left) {
		h = tree.rotateRight(h)
	}
	if h.right == nil {
		return nil
	}
	if !isRed(h.right) && !isRed(h.right.left) {
		h = tree.moveRedRight(h)
	}
	h.right = tree.deleteMax(h.right)
	return tree.balance(h)
}

func (tree *llrbTree[K, V]) Min() K {
	if tree.root == nil {
		infra.Violate("llrb.Min", ErrEmptyTree)
	}
	return tree.root.minimum().key
}

func (tree *llrbTree[K, V]) Max() K {
	if tree.root == nil {
		infra.Violate("llrb.Max", ErrEmptyTree)
	}
	return tree.root.maximum().key
}

// Floor returns the largest key less than or equal to the given key.
func (tree *llrbTree[K, V]) Floor(key K) K {
	if tree.root == nil {
		infra.Violate("llrb.Floor", ErrEmptyTree)
	}
	x := tree.floor(key)
	if x == nil {
		infra.Violate("llrb.Floor", ErrNoSuchKey)
	}
	return x.key
}

func (tree *llrbTree[K, V]) FloorOk(key K) (K, bool) {
	if x := tree.floor(key); x != nil {
		return x.key, true
	}
	var zero K
	return zero, false
}

func (tree *llrbTree[K, V]) floor(key K) *llrbNode[K, V] {
	var candidate *llrbNode[K, V]
	for aux := tree.root; aux != nil; {
		res := tree.cmp(key, aux.key)
		if res == 0 {
			return aux
		} else if res < 0 {
			aux = aux.left
		} else {
			// aux fits, a larger one may still be on the right.
			candidate = aux
			aux = aux.right
		}
	}
	return candidate
}

// Ceiling returns the smallest key greater than or equal to the given key.
func (tree *llrbTree[K, V]) Ceiling(key K) K {
	if tree.root == nil {
		infra.Violate("llrb.Ceiling", ErrEmptyTree)
	}
	x := tree.ceiling(key)
	if x == nil {
		infra.Violate("llrb.Ceiling", ErrNoSuchKey)
	}
	return x.key
}

func (tree *llrbTree[K, V]) CeilingOk(key K) (K, bool) {
	if x := tree.ceiling(key); x != nil {
		return x.key, true
	}
	var zero K
	return zero, false
}

func (tree *llrbTree[K, V]) ceiling(key K) *llrbNode[K, V] {
	var candidate *llrbNode[K, V]
	for aux := tree.root; aux != nil; {
		res := tree.cmp(key, aux.key)
		if res == 0 {
			return aux
		} else if res > 0 {
			aux = aux.right
		} else {
			candidate = aux
			aux = aux.left
		}
	}
	return candidate
}

// Select returns the key of the given 0-based rank.
func (tree *llrbTree[K, V]) Select(rank int64) K {
	if rank < 0 || rank >= tree.Len() {
		infra.Violate("llrb.Select", ErrRankOutOfRange)
	}
	return tree.selectNode(rank).key
}

func (tree *llrbTree[K, V]) SelectVal(rank int64) (K, V) {
	if rank < 0 || rank >= tree.Len() {
		infra.Violate("llrb.SelectVal", ErrRankOutOfRange)
	}
	x := tree.selectNode(rank)
	return x.key, x.val
}

func (tree *llrbTree[K, V]) selectNode(rank int64) *llrbNode[K, V] {
	aux := tree.root
	for aux != nil {
		leftSize := sizeOf(aux.left)
		if rank < leftSize {
			aux = aux.left
		} else if rank > leftSize {
			rank -= leftSize + 1
			aux = aux.right
		} else {
			return aux
		}
	}
	// impossible run to here
	panic( /* debug assertion */ "[llrb] select rank escaped from the tree")
}

// Rank returns the number of keys strictly less than the given key.
func (tree *llrbTree[K, V]) Rank(key K) int64 {
	rank := int64(0)
	for aux := tree.root; aux != nil; {
		res := tree.cmp(key, aux.key)
		if res < 0 {
			aux = aux.left
		} else if res > 0 {
			rank += 1 + sizeOf(aux.left)
			aux = aux.right
		} else {
			return rank + sizeOf(aux.left)
		}
	}
	return rank
}

// SizeInRange counts the keys in [lo, hi].
func (tree *llrbTree[K, V]) SizeInRange(lo, hi K) int64 {
	if tree.cmp(lo, hi) > 0 {
		return 0
	}
	if tree.Contains(hi) {
		return tree.Rank(hi) - tree.Rank(lo) + 1
	}
	return tree.Rank(hi) - tree.Rank(lo)
}

// Keys yields all keys in order. Each call of the returned
// sequence walks the tree again.
func (tree *llrbTree[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		tree.walk(tree.root, func(key K, _ V) bool {
			return yield(key)
		})
	}
}

// KeysInRange yields the keys in [lo, hi] in order.
func (tree *llrbTree[K, V]) KeysInRange(lo, hi K) iter.Seq[K] {
	return func(yield func(K) bool) {
		if tree.cmp(lo, hi) > 0 {
			return
		}
		tree.walkRange(tree.root, lo, hi, func(key K, _ V) bool {
			return yield(key)
		})
	}
}

func (tree *llrbTree[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		tree.walk(tree.root, yield)
	}
}

func (tree *llrbTree[K, V]) Range(lo, hi K) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		if tree.cmp(lo, hi) > 0 {
			return
		}
		tree.walkRange(tree.root, lo, hi, yield)
	}
}

func (tree *llrbTree[K, V]) walk(h *llrbNode[K, V], yield func(K, V) bool) bool {
	if h == nil {
		return true
	}
	return tree.walk(h.left, yield) && yield(h.key, h.val) && tree.walk(h.right, yield)
}

// walkRange prunes the subtrees that cannot hold keys in [lo, hi].
func (tree *llrbTree[K, V]) walkRange(h *llrbNode[K, V], lo, hi K, yield func(K, V) bool) bool {
	if h == nil {
		return true
	}
	loRes, hiRes := tree.cmp(lo, h.key), tree.cmp(hi, h.key)
	if loRes < 0 && !tree.walkRange(h.left, lo, hi, yield) {
		return false
	}
	if loRes <= 0 && hiRes >= 0 && !yield(h.key, h.val) {
		return false
	}
	if hiRes > 0 && !tree.walkRange(h.right, lo, hi, yield) {
		return false
	}
	return true
}

// Foreach is an inorder traversal exposing the link colors.
func (tree *llrbTree[K, V]) Foreach(action func(idx int64, color Color, key K, val V) bool) {
	aux := tree.root
	if aux == nil {
		return
	}

	stack := make([]*llrbNode[K, V], 0, 64)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size := len(stack); size > 0; size = len(stack) {
		if aux = stack[size-1]; !action(idx, aux.color, aux.key, aux.val) {
			return
		}
		idx++
		stack = stack[:size-1]
		for aux = aux.right; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
}

// Release drops all nodes. The tree is empty and reusable afterwards.
func (tree *llrbTree[K, V]) Release() {
	aux := tree.root
	tree.root = nil
	if aux == nil {
		return
	}
	tree.stats.RecordRelease(sizeOf(aux))

	stack := make([]*llrbNode[K, V], 0, 64)
	defer func() {
		clear(stack)
	}()
	stack = append(stack, aux)
	for size := len(stack); size > 0; size = len(stack) {
		aux = stack[size-1]
		stack = stack[:size-1]
		if aux.left != nil {
			stack = append(stack, aux.left)
		}
		if aux.right != nil {
			stack = append(stack, aux.right)
		}
		aux.left, aux.right = nil, nil
	}
}

type LLRBTreeOption[K infra.OrderedKey, V any] func(*llrbTree[K, V])

// WithLLRBTreeDesc orders the keys from the largest to the smallest.
func WithLLRBTreeDesc[K infra.OrderedKey, V any]() LLRBTreeOption[K, V] {
	return func(tree *llrbTree[K, V]) {
		tree.isDesc = true
	}
}

// WithLLRBTreeStats records the tree operations by the global
// otel meter provider. The name tags every measurement.
func WithLLRBTreeStats[K infra.OrderedKey, V any](name string) LLRBTreeOption[K, V] {
	return func(tree *llrbTree[K, V]) {
		tree.stats = newLLRBStats(name)
	}
}

func NewLLRBTree[K infra.OrderedKey, V any](opts ...LLRBTreeOption[K, V]) LLRBTree[K, V] {
	tree := &llrbTree[K, V]{
		isDesc: false,
	}
	for _, o := range opts {
		if o != nil {
			o(tree)
		}
	}
	if tree.isDesc {
		tree.cmp = infra.DescComparator[K]
	} else {
		tree.cmp = infra.AscComparator[K]
	}
	return tree
}
