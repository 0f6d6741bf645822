// Package avl implements a height-balanced binary search tree that keeps
// duplicate keys. Equal keys always descend into the right subtree, so the
// tree behaves as an ordered multiset.
//
// A Tree is not safe for concurrent use; see package pqueue for a guarded
// facade.
package avl

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// ErrEmpty is returned when an extreme element is requested from an empty tree.
var ErrEmpty = errors.New("avl: empty structure")

// Direction selects which end of the ordering an extreme operation targets.
type Direction int

const (
	// Min is the leftmost (smallest) element.
	Min Direction = iota
	// Max is the rightmost (largest) element.
	Max
)

func (d Direction) String() string {
	switch d {
	case Min:
		return "min"
	case Max:
		return "max"
	}
	return "unknown"
}

type node[T constraints.Ordered] struct {
	value       T
	height      int
	left, right *node[T]
}

// Tree is an AVL tree. The zero value is an empty tree ready to use.
type Tree[T constraints.Ordered] struct {
	root *node[T]
	size int
}

// New returns an empty tree.
func New[T constraints.Ordered]() *Tree[T] {
	return &Tree[T]{}
}

// Len returns the number of stored values, duplicates included.
func (t *Tree[T]) Len() int {
	return t.size
}

// IsEmpty reports whether the tree holds no values.
func (t *Tree[T]) IsEmpty() bool {
	return t.root == nil
}

// Height returns the height of the root; 0 for an empty tree.
func (t *Tree[T]) Height() int {
	return height(t.root)
}

// Insert adds value to the tree. Duplicates are retained.
func (t *Tree[T]) Insert(value T) {
	t.root = insert(t.root, value)
	t.size++
}

// FindExtreme returns the smallest (Min) or largest (Max) value.
func (t *Tree[T]) FindExtreme(dir Direction) (T, error) {
	var zero T
	if t.root == nil {
		return zero, ErrEmpty
	}
	n := t.root
	if dir == Max {
		for n.right != nil {
			n = n.right
		}
	} else {
		for n.left != nil {
			n = n.left
		}
	}
	return n.value, nil
}

// RemoveExtreme removes one instance of the smallest (Min) or largest (Max)
// value and returns it.
func (t *Tree[T]) RemoveExtreme(dir Direction) (T, error) {
	var zero T
	if t.root == nil {
		return zero, ErrEmpty
	}
	var removed *node[T]
	if dir == Max {
		t.root, removed = removeMax(t.root)
	} else {
		t.root, removed = removeMin(t.root)
	}
	t.size--
	return removed.value, nil
}

// Walk calls fn for every value in ascending order until fn returns false.
func (t *Tree[T]) Walk(fn func(T) bool) {
	walk(t.root, fn)
}

// WalkReverse calls fn for every value in descending order until fn returns false.
func (t *Tree[T]) WalkReverse(fn func(T) bool) {
	walkReverse(t.root, fn)
}

// Clear drops every node. The tree is empty afterwards.
func (t *Tree[T]) Clear() {
	release(t.root)
	t.root = nil
	t.size = 0
}

// ---------- Node helpers ----------

func height[T constraints.Ordered](n *node[T]) int {
	if n == nil {
		return 0
	}
	return n.height
}

func balance[T constraints.Ordered](n *node[T]) int {
	if n == nil {
		return 0
	}
	return height(n.left) - height(n.right)
}

func fixHeight[T constraints.Ordered](n *node[T]) {
	n.height = 1 + max(height(n.left), height(n.right))
}

// rotateRight lifts n.left into n's position. A nil pivot or one without a
// left child is returned unchanged.
func rotateRight[T constraints.Ordered](n *node[T]) *node[T] {
	if n == nil || n.left == nil {
		return n
	}
	pivot := n.left
	n.left = pivot.right
	pivot.right = n
	fixHeight(n)
	fixHeight(pivot)
	return pivot
}

// rotateLeft lifts n.right into n's position. A nil pivot or one without a
// right child is returned unchanged.
func rotateLeft[T constraints.Ordered](n *node[T]) *node[T] {
	if n == nil || n.right == nil {
		return n
	}
	pivot := n.right
	n.right = pivot.left
	pivot.left = n
	fixHeight(n)
	fixHeight(pivot)
	return pivot
}

// ---------- Insertion ----------

func insert[T constraints.Ordered](n *node[T], value T) *node[T] {
	if n == nil {
		return &node[T]{value: value, height: 1}
	}
	if value < n.value {
		n.left = insert(n.left, value)
	} else {
		n.right = insert(n.right, value)
	}
	fixHeight(n)

	bf := balance(n)
	switch {
	case bf > 1 && value < n.left.value:
		return rotateRight(n)
	case bf < -1 && value >= n.right.value:
		return rotateLeft(n)
	case bf > 1 && value >= n.left.value:
		n.left = rotateLeft(n.left)
		return rotateRight(n)
	case bf < -1 && value < n.right.value:
		n.right = rotateRight(n.right)
		return rotateLeft(n)
	}
	return n
}

// ---------- Removal ----------

// removeMin detaches the leftmost node of the subtree rooted at n. It returns
// the new subtree root and the detached node.
func removeMin[T constraints.Ordered](n *node[T]) (*node[T], *node[T]) {
	if n.left == nil {
		rest := n.right
		n.right = nil
		return rest, n
	}
	var removed *node[T]
	n.left, removed = removeMin(n.left)
	return rebalance(n), removed
}

// removeMax detaches the rightmost node of the subtree rooted at n.
func removeMax[T constraints.Ordered](n *node[T]) (*node[T], *node[T]) {
	if n.right == nil {
		rest := n.left
		n.left = nil
		return rest, n
	}
	var removed *node[T]
	n.right, removed = removeMax(n.right)
	return rebalance(n), removed
}

// rebalance restores the AVL invariant at n after a removal below it. The
// rotation case is chosen from the balance of the heavier child.
func rebalance[T constraints.Ordered](n *node[T]) *node[T] {
	fixHeight(n)
	bf := balance(n)
	switch {
	case bf > 1 && balance(n.left) >= 0:
		return rotateRight(n)
	case bf > 1:
		n.left = rotateLeft(n.left)
		return rotateRight(n)
	case bf < -1 && balance(n.right) <= 0:
		return rotateLeft(n)
	case bf < -1:
		n.right = rotateRight(n.right)
		return rotateLeft(n)
	}
	return n
}

// ---------- Traversal ----------

func walk[T constraints.Ordered](n *node[T], fn func(T) bool) bool {
	if n == nil {
		return true
	}
	if !walk(n.left, fn) {
		return false
	}
	if !fn(n.value) {
		return false
	}
	return walk(n.right, fn)
}

func walkReverse[T constraints.Ordered](n *node[T], fn func(T) bool) bool {
	if n == nil {
		return true
	}
	if !walkReverse(n.right, fn) {
		return false
	}
	if !fn(n.value) {
		return false
	}
	return walkReverse(n.left, fn)
}

func release[T constraints.Ordered](n *node[T]) {
	if n == nil {
		return
	}
	release(n.left)
	release(n.right)
	n.left, n.right = nil, nil
}
