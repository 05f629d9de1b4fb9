// Package crawler walks the mutable scene tree. Every operation is a pure
// function of the tree state at call time — nothing is cached across host
// mutations, so a stale result is simply superseded by the next call.
package crawler

import (
	"sort"

	"github.com/keyline-tools/keyline/internal/scene"
)

// Crawler operates on an initial node set within one registry snapshot.
type Crawler struct {
	reg   *scene.Registry
	nodes []*scene.Node
}

func New(reg *scene.Registry, nodes []*scene.Node) *Crawler {
	return &Crawler{reg: reg, nodes: nodes}
}

// Walk visits every node reachable by descending from the initial set,
// inclusive, in depth-first pre-order. Returning false from visit stops the
// walk. The traversal uses an explicit stack: deep documents must not grow
// the call stack, and the order stays auditable independent of host
// iterator behavior.
func (c *Crawler) Walk(visit func(*scene.Node) bool) {
	stack := make([]string, 0, len(c.nodes))
	for i := len(c.nodes) - 1; i >= 0; i-- {
		stack = append(stack, c.nodes[i].ID)
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := c.reg.Lookup(id)
		if n == nil {
			// Deleted between scheduling and visit — skip, never fail.
			continue
		}
		if !visit(n) {
			return
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
}

// All collects the full pre-order flattening of the initial set.
func (c *Crawler) All() []*scene.Node {
	var out []*scene.Node
	c.Walk(func(n *scene.Node) bool {
		out = append(out, n)
		return true
	})
	return out
}

// TopFrames returns the distinct highest-level container frames enclosing
// the initial nodes, in first-encountered order of the initial set (not
// spatial order — callers depend on selection order here). A node that is
// itself a top frame resolves to itself; a node with no qualifying frame
// ancestor is skipped. A broken parent chain terminates the ascent and the
// node is treated as parentless.
func (c *Crawler) TopFrames() []*scene.Node {
	var out []*scene.Node
	seen := make(map[string]struct{})
	for _, n := range c.nodes {
		top := c.topFrameOf(n)
		if top == nil {
			continue
		}
		if _, ok := seen[top.ID]; ok {
			continue
		}
		seen[top.ID] = struct{}{}
		out = append(out, top)
	}
	return out
}

// topFrameOf ascends from n, remembering the highest frame seen below the
// page boundary.
func (c *Crawler) topFrameOf(n *scene.Node) *scene.Node {
	var top *scene.Node
	for cur := n; cur != nil; cur = c.reg.Parent(cur) {
		if cur.Type == scene.TypePage {
			break
		}
		if cur.Type == scene.TypeFrame {
			top = cur
		}
	}
	return top
}

// Sorted reorders the initial set to match on-canvas visual hierarchy:
// an ancestor precedes its descendants, and siblings read top-to-bottom
// then left-to-right by bounds. Identical positions keep input order (the
// sort is stable). Node ids never participate — they are opaque.
func (c *Crawler) Sorted() []*scene.Node {
	out := make([]*scene.Node, len(c.nodes))
	copy(out, c.nodes)

	// Root-to-node ancestor paths, computed once. A node whose chain is
	// broken gets itself as the whole path and sorts as its own unit.
	paths := make(map[string][]*scene.Node, len(out))
	for _, n := range out {
		paths[n.ID] = c.pathOf(n)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return pathLess(paths[out[i].ID], paths[out[j].ID])
	})
	return out
}

// pathOf returns the ancestor chain from the topmost reachable node down to
// n, inclusive.
func (c *Crawler) pathOf(n *scene.Node) []*scene.Node {
	var rev []*scene.Node
	for cur := n; cur != nil; cur = c.reg.Parent(cur) {
		rev = append(rev, cur)
	}
	path := make([]*scene.Node, len(rev))
	for i, node := range rev {
		path[len(rev)-1-i] = node
	}
	return path
}

// pathLess compares two ancestor paths: walk down from the top, and at the
// first divergence compare those two nodes' bounds top-to-bottom then
// left-to-right. A path that is a strict prefix (the ancestor) sorts first.
// Equal all the way down reports false so the stable sort keeps input order.
func pathLess(a, b []*scene.Node) bool {
	i := 0
	for i < len(a) && i < len(b) && a[i].ID == b[i].ID {
		i++
	}
	if i == len(a) || i == len(b) {
		return len(a) < len(b)
	}
	na, nb := a[i], b[i]
	if na.Bounds.Y != nb.Bounds.Y {
		return na.Bounds.Y < nb.Bounds.Y
	}
	if na.Bounds.X != nb.Bounds.X {
		return na.Bounds.X < nb.Bounds.X
	}
	return false
}
