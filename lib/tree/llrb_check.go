package tree

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/benz9527/xllrb/lib/infra"
)

// LLRB rule validation utilities. They only read the tree through
// the LLRBTree and LLRBNode views and are meant for tests and
// stress runs, not for production call paths.

// Check runs every validator. Use multierr.Errors to split the
// result into the violated categories.
func Check[K infra.OrderedKey, V any](tree LLRBTree[K, V]) error {
	return multierr.Combine(
		BSTViolationValidate[K, V](tree),
		SizeViolationValidate[K, V](tree),
		RankViolationValidate[K, V](tree),
		RedViolationValidate[K, V](tree),
		BlackViolationValidate[K, V](tree),
	)
}

// BSTViolationValidate checks that every key of a left subtree is less
// than its root and every key of a right subtree is greater.
func BSTViolationValidate[K infra.OrderedKey, V any](tree LLRBTree[K, V]) error {
	return bstValidate[K, V](tree, tree.Root(), nil, nil)
}

func bstValidate[K infra.OrderedKey, V any](tree LLRBTree[K, V], node LLRBNode[K, V], lo, hi *K) error {
	if node == nil {
		return nil
	}
	key := node.Key()
	if lo != nil && tree.KeyCompare(key, *lo) <= 0 {
		return fmt.Errorf("%w: key %v is not greater than %v", ErrBSTViolation, key, *lo)
	}
	if hi != nil && tree.KeyCompare(key, *hi) >= 0 {
		return fmt.Errorf("%w: key %v is not less than %v", ErrBSTViolation, key, *hi)
	}
	if err := bstValidate[K, V](tree, node.Left(), lo, &key); err != nil {
		return err
	}
	return bstValidate[K, V](tree, node.Right(), &key, hi)
}

// SizeViolationValidate checks size(node) = 1 + size(left) + size(right).
func SizeViolationValidate[K infra.OrderedKey, V any](tree LLRBTree[K, V]) error {
	_, err := sizeValidate[K, V](tree.Root())
	return err
}

func sizeValidate[K infra.OrderedKey, V any](node LLRBNode[K, V]) (int64, error) {
	if node == nil {
		return 0, nil
	}
	l, err := sizeValidate[K, V](node.Left())
	if err != nil {
		return 0, err
	}
	r, err := sizeValidate[K, V](node.Right())
	if err != nil {
		return 0, err
	}
	if node.Size() != 1+l+r {
		return 0, fmt.Errorf("%w: key %v holds size %d, counted %d",
			ErrSizeViolation, node.Key(), node.Size(), 1+l+r)
	}
	return node.Size(), nil
}

// RankViolationValidate checks that Rank and Select are inverse
// functions over the whole key set.
func RankViolationValidate[K infra.OrderedKey, V any](tree LLRBTree[K, V]) error {
	for i := int64(0); i < tree.Len(); i++ {
		if r := tree.Rank(tree.Select(i)); r != i {
			return fmt.Errorf("%w: rank(select(%d)) = %d", ErrRankViolation, i, r)
		}
	}
	for key := range tree.Keys() {
		if k := tree.Select(tree.Rank(key)); tree.KeyCompare(k, key) != 0 {
			return fmt.Errorf("%w: select(rank(%v)) = %v", ErrRankViolation, key, k)
		}
	}
	return nil
}

// RedViolationValidate checks the left-leaning 2-3 shape:
// the root link is black, no right link is red, and no red
// link is followed by another red link on the left.
func RedViolationValidate[K infra.OrderedKey, V any](tree LLRBTree[K, V]) error {
	root := tree.Root()
	if root == nil {
		return nil
	}
	if root.Color() == Red {
		return fmt.Errorf("%w: red root %v", ErrRedViolation, root.Key())
	}

	stack := make([]LLRBNode[K, V], 0, 64)
	defer func() {
		clear(stack)
	}()
	stack = append(stack, root)
	for size := len(stack); size > 0; size = len(stack) {
		aux := stack[size-1]
		stack = stack[:size-1]
		l, r := aux.Left(), aux.Right()
		if r != nil && r.Color() == Red {
			return fmt.Errorf("%w: red right link under %v", ErrRedViolation, aux.Key())
		}
		if aux.Color() == Red && l != nil && l.Color() == Red {
			return fmt.Errorf("%w: two red links in a row at %v", ErrRedViolation, aux.Key())
		}
		if l != nil {
			stack = append(stack, l)
		}
		if r != nil {
			stack = append(stack, r)
		}
	}
	return nil
}

/*
<X> is linked by a RED link.
[X] is linked by a BLACK link (or NIL).

	         [5]
	         / \
	       [3] [8]
	       / \  / \
	     [1][4]<7>[9]

2-3 tree like:

	          [5]
	         /   \
	      [3]     [7 - 8]
	      / \     /  |  \
	    [1][4]

Every path from the root to a NIL link crosses the same number of
black links. The reference count comes from the leftmost path.
*/
func BlackViolationValidate[K infra.OrderedKey, V any](tree LLRBTree[K, V]) error {
	black := 0
	for aux := tree.Root(); aux != nil; aux = aux.Left() {
		if aux.Color() == Black {
			black++
		}
	}
	return blackValidate[K, V](tree.Root(), black)
}

func blackValidate[K infra.OrderedKey, V any](node LLRBNode[K, V], black int) error {
	if node == nil {
		if black != 0 {
			return fmt.Errorf("%w: black height differs by %d", ErrBlackViolation, black)
		}
		return nil
	}
	if node.Color() == Black {
		black--
	}
	if err := blackValidate[K, V](node.Left(), black); err != nil {
		return err
	}
	return blackValidate[K, V](node.Right(), black)
}
