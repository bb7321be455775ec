package sway

import (
	"cmp"
	"slices"
)

// nodeIDCounter is a plain counter; sway is single-threaded.
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// Node is an element handle: the thing an observer watches, a pointer hovers
// and an animation writes to. Nodes form a tree rooted at Scene.Root and
// inherit their parent's transform and alpha.
type Node struct {
	// Identity
	ID      uint32
	Name    string
	Classes []string

	// Hierarchy
	Parent   *Node
	children []*Node

	// Transform (local)
	X, Y     float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64
	PivotX   float64
	PivotY   float64

	// Width and Height are the node's local size. Containers with zero size
	// are never hit and never intersect the viewport.
	Width, Height float64

	// Computed, refreshed at the start of every Scene step.
	worldTransform [6]float64
	worldAlpha     float64
	transformDirty bool

	// Visibility & interaction
	Alpha        float64
	Visible      bool
	Interactable bool

	// Ordering
	ZIndex int

	// Metadata
	UserData any
	EntityID uint32
	data     map[string]string

	// Hit testing
	HitShape HitShape

	// Internal
	teardown       []*teardownEntry
	disposed       bool
	childrenSorted bool
	sortedChildren []*Node // reused buffer for ZIndex-sorted traversal order
}

type teardownEntry struct {
	fn func()
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.ScaleX = 1
	n.ScaleY = 1
	n.Alpha = 1
	n.Visible = true
	n.transformDirty = true
	n.childrenSorted = true
}

// NewContainer creates a group node with no size of its own. Containers are
// interactable so their descendants take part in hit testing.
func NewContainer(name string) *Node {
	n := &Node{Name: name, Interactable: true}
	nodeDefaults(n)
	return n
}

// NewBox creates a sized, interactable node. Boxes are the usual targets for
// hover, click and visibility tracking.
func NewBox(name string, width, height float64) *Node {
	n := &Node{Name: name, Width: width, Height: height, Interactable: true}
	nodeDefaults(n)
	return n
}

// --- Attributes ---

// SetData sets a data attribute. Selectors match it with [key] or
// [key=value].
func (n *Node) SetData(key, value string) {
	if n.data == nil {
		n.data = make(map[string]string)
	}
	n.data[key] = value
}

// Data returns a data attribute and whether it is set.
func (n *Node) Data(key string) (string, bool) {
	v, ok := n.data[key]
	return v, ok
}

// RemoveData deletes a data attribute.
func (n *Node) RemoveData(key string) {
	delete(n.data, key)
}

// AddClass adds class unless the node already carries it.
func (n *Node) AddClass(class string) {
	if !n.HasClass(class) {
		n.Classes = append(n.Classes, class)
	}
}

func (n *Node) HasClass(class string) bool {
	return slices.Contains(n.Classes, class)
}

func (n *Node) RemoveClass(class string) {
	if i := slices.Index(n.Classes, class); i >= 0 {
		n.Classes = slices.Delete(n.Classes, i, i+1)
	}
}

// --- Tree manipulation ---

// AddChild reparents child under n, appending it last. Adding nil or an
// ancestor of n panics.
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("sway: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	if isAncestor(child, n) {
		panic("sway: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	n.childrenSorted = false
	markSubtreeDirty(child)
	if globalDebug {
		debugCheckTreeDepth(child)
	}
}

// RemoveChild detaches child, which must be a direct child of n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("sway: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	n.childrenSorted = false
	markSubtreeDirty(child)
}

func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Children returns n's children in insertion order. Callers must not modify
// the slice.
func (n *Node) Children() []*Node {
	return n.children
}

func (n *Node) NumChildren() int {
	return len(n.children)
}

func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// SetZIndex changes the node's hit-test order among its siblings. Higher
// values are tested first.
func (n *Node) SetZIndex(z int) {
	if n.ZIndex == z {
		return
	}
	n.ZIndex = z
	if n.Parent != nil {
		n.Parent.childrenSorted = false
	}
}

// Contains reports whether other is n or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	return other != nil && isAncestor(n, other)
}

// --- Disposal ---

// OnDispose registers fn to run when the node is disposed. The returned
// function unregisters it; observers and subscriptions call it when they are
// torn down first so nothing runs twice. On an already disposed node fn runs
// immediately.
func (n *Node) OnDispose(fn func()) (unregister func()) {
	if n.disposed {
		fn()
		return func() {}
	}
	e := &teardownEntry{fn: fn}
	n.teardown = append(n.teardown, e)
	return func() {
		if i := slices.Index(n.teardown, e); i >= 0 {
			n.teardown = slices.Delete(n.teardown, i, i+1)
		}
	}
}

// Dispose detaches n and tears down the whole subtree. Each node runs its
// OnDispose hooks newest first before its children are disposed.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	hooks := n.teardown
	n.teardown = nil
	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i].fn()
	}
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.sortedChildren = nil
	n.Parent = nil
	n.HitShape = nil
	n.UserData = nil
	n.data = nil
}

func (n *Node) IsDisposed() bool {
	return n.disposed
}

// isAncestor reports whether candidate is node or lies on its parent chain.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr drops child from n.children. child.Parent is left for the
// caller.
func (n *Node) removeChildByPtr(child *Node) {
	if i := slices.Index(n.children, child); i >= 0 {
		n.children = slices.Delete(n.children, i, i+1)
	}
}

func markSubtreeDirty(node *Node) {
	node.transformDirty = true
	for _, child := range node.children {
		markSubtreeDirty(child)
	}
}

// sortedChildrenOf returns n's children ordered by ZIndex, ties kept in
// insertion order. The result is cached until the child set or a ZIndex
// changes.
func sortedChildrenOf(n *Node) []*Node {
	if n.childrenSorted {
		if n.sortedChildren != nil {
			return n.sortedChildren
		}
		return n.children
	}
	n.sortedChildren = append(n.sortedChildren[:0], n.children...)
	slices.SortStableFunc(n.sortedChildren, func(a, b *Node) int {
		return cmp.Compare(a.ZIndex, b.ZIndex)
	})
	n.childrenSorted = true
	return n.sortedChildren
}
