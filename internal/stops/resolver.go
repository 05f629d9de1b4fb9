package stops

import (
	"github.com/keyline-tools/keyline/api"
	"github.com/keyline-tools/keyline/internal/crawler"
	"github.com/keyline-tools/keyline/internal/peerdata"
	"github.com/keyline-tools/keyline/internal/scene"
)

// Resolver computes the authoritative ordered list of nodes to annotate for
// a kind and scope. Previously annotated nodes keep their recorded relative
// order; only genuinely new nodes are appended, in visual-hierarchy order.
// Re-running with an unchanged tree therefore never shuffles numbering.
type Resolver struct {
	reg   *scene.Registry
	index *Index
	peer  *peerdata.Store
}

func NewResolver(reg *scene.Registry) *Resolver {
	return &Resolver{
		reg:   reg,
		index: NewIndex(reg),
		peer:  peerdata.NewStore(reg),
	}
}

// Index exposes the underlying annotation index, for callers that persist a
// new order after drawing.
func (r *Resolver) Index() *Index {
	return r.index
}

// OrderedStopNodes resolves the node list to annotate for kind.
//
// The working set is explicit when non-empty, otherwise the live selection.
// Container scoping always derives from the selection — containers are where
// persisted lists live, and an explicit caller still operates inside the
// selected containers. With newOnly set, only the appended portion (nodes
// not previously annotated) is returned.
//
// A selection resolving to zero top frames yields an empty result.
func (r *Resolver) OrderedStopNodes(kind api.Kind, selection []*scene.Node, newOnly bool, explicit []*scene.Node) []*scene.Node {
	fromSelection := len(explicit) == 0
	working := make([]*scene.Node, 0, len(selection))
	if fromSelection {
		working = append(working, selection...)
	} else {
		working = append(working, explicit...)
	}

	topFrames := crawler.New(r.reg, selection).TopFrames()
	if len(topFrames) == 0 {
		// No resolvable container means no scope to annotate in. Empty
		// result, not an error — the next selection recomputes everything.
		return nil
	}
	frameSet := make(map[string]struct{}, len(topFrames))
	for _, f := range topFrames {
		frameSet[f.ID] = struct{}{}
	}

	// Previously annotated nodes first, in recorded order, one frame at a
	// time. Resolving from a live selection also resets each frame's stored
	// list: this cycle re-derives it, and the caller persists the new order
	// after drawing. Explicit callers manage their own list lifecycle, so
	// their resolution never touches stored state.
	var ordered []*scene.Node
	inOrdered := make(map[string]struct{})
	for _, frame := range topFrames {
		for _, n := range r.FrameAnnotatedNodes(kind, frame, fromSelection) {
			if _, dup := inOrdered[n.ID]; dup {
				continue
			}
			inOrdered[n.ID] = struct{}{}
			ordered = append(ordered, n)
		}
	}

	// Selection scope also picks up assignable descendants of each frame,
	// so selecting a frame annotates its eligible content without the user
	// clicking every node.
	if fromSelection {
		inWorking := make(map[string]struct{}, len(working))
		for _, n := range working {
			inWorking[n.ID] = struct{}{}
		}
		for _, frame := range topFrames {
			exclude := func(id string) bool {
				if _, ok := inOrdered[id]; ok {
					return true
				}
				if _, ok := inWorking[id]; ok {
					return true
				}
				_, ok := frameSet[id]
				return ok
			}
			for _, n := range r.assignedChildren(r.reg.ChildNodes(frame), exclude, kind) {
				if _, dup := inWorking[n.ID]; dup {
					continue
				}
				inWorking[n.ID] = struct{}{}
				working = append(working, n)
			}
		}
	}

	// New nodes are whatever is left after removing already-ordered nodes
	// and the frames themselves, sorted by visual hierarchy.
	var remainder []*scene.Node
	seen := make(map[string]struct{}, len(working))
	for _, n := range working {
		if _, dup := seen[n.ID]; dup {
			continue
		}
		seen[n.ID] = struct{}{}
		if _, ok := inOrdered[n.ID]; ok {
			continue
		}
		if _, ok := frameSet[n.ID]; ok {
			continue
		}
		remainder = append(remainder, n)
	}
	remainder = crawler.New(r.reg, remainder).Sorted()

	if newOnly {
		return remainder
	}
	return append(ordered, remainder...)
}

// FrameAnnotatedNodes returns the frame's previously annotated nodes that
// are still live, in recorded order. With resetData set, the frame's stored
// list is cleared as a side effect — the caller is about to renumber from
// scratch and persist a fresh list.
func (r *Resolver) FrameAnnotatedNodes(kind api.Kind, frame *scene.Node, resetData bool) []*scene.Node {
	nodes := r.index.ResolveLive(frame, kind)
	if resetData {
		r.index.Reset(frame, kind)
	}
	return nodes
}

// AssignedChildNodes scans children (and, policy permitting, their subtrees)
// for nodes whose peer metadata marks them eligible for kind. Nodes in the
// exclusion list are not collected but their subtrees still follow the same
// descent policy. The scan descends below an assignable node only when the
// kind passes through: label-family kinds always do, a keystop must opt in.
func (r *Resolver) AssignedChildNodes(children []*scene.Node, exclusion []*scene.Node, kind api.Kind) []*scene.Node {
	excluded := make(map[string]struct{}, len(exclusion))
	for _, n := range exclusion {
		excluded[n.ID] = struct{}{}
	}
	return r.assignedChildren(children, func(id string) bool {
		_, ok := excluded[id]
		return ok
	}, kind)
}

func (r *Resolver) assignedChildren(children []*scene.Node, excluded func(string) bool, kind api.Kind) []*scene.Node {
	var out []*scene.Node
	stack := make([]string, 0, len(children))
	for i := len(children) - 1; i >= 0; i-- {
		stack = append(stack, children[i].ID)
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := r.reg.Lookup(id)
		if n == nil {
			continue
		}
		assignable := r.peer.Assignable(n, kind)
		if assignable && !excluded(n.ID) {
			out = append(out, n)
		}
		if !assignable || r.peer.PassesThrough(n, kind) {
			for i := len(n.Children) - 1; i >= 0; i-- {
				stack = append(stack, n.Children[i])
			}
		}
	}
	return out
}
