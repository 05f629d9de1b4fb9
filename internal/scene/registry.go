package scene

import (
	"errors"

	"github.com/RoaringBitmap/roaring"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("node not found")

// Registry is the arena of scene nodes, addressed by id. The host document
// owns the real tree; the registry mirrors it for one invocation at a time.
// There is one logical actor, so access is not synchronized.
type Registry struct {
	nodes map[string]*Node
	pages []string // page root IDs, document order

	// Roaring bitmap index: page ID → set of member node internal IDs.
	// Gives O(1) page-membership checks instead of a subtree scan.
	pageMembers map[string]*roaring.Bitmap
	nodeIntID   map[string]uint32
	intToNodeID []string
	nextIntID   uint32
}

func NewRegistry() *Registry {
	return &Registry{
		nodes:       make(map[string]*Node),
		pageMembers: make(map[string]*roaring.Bitmap),
		nodeIntID:   make(map[string]uint32),
	}
}

// NewNodeID mints a fresh opaque node id.
func NewNodeID() string {
	return uuid.NewString()
}

// AddPage registers a node as a page root and adds it to the arena.
// Pages must be declared explicitly — there is no heuristic.
func (r *Registry) AddPage(n *Node) {
	if n.ID == "" {
		n.ID = NewNodeID()
	}
	n.Type = TypePage
	n.ParentID = ""
	r.nodes[n.ID] = n
	for _, p := range r.pages {
		if p == n.ID {
			return
		}
	}
	r.pages = append(r.pages, n.ID)
}

// Add inserts a non-page node into the arena and indexes it under its page.
// The node's ParentID must already resolve for page indexing to take effect;
// a detached node is stored but belongs to no page.
func (r *Registry) Add(n *Node) {
	if n.ID == "" {
		n.ID = NewNodeID()
	}
	r.nodes[n.ID] = n
	r.indexNode(n)
}

// AppendChild wires child under the parent id and inserts it: sets ParentID,
// appends to the parent's child list, and indexes the subtree's page.
func (r *Registry) AppendChild(parentID string, child *Node) {
	child.ParentID = parentID
	r.Add(child)
	if p, ok := r.nodes[parentID]; ok {
		p.Children = append(p.Children, child.ID)
	}
}

// indexNode assigns an internal bitmap ID and registers the node in the
// page-membership index. No-op for pages and detached nodes.
func (r *Registry) indexNode(n *Node) {
	page := r.PageOf(n)
	if page == nil || page.ID == n.ID {
		return
	}
	intID, ok := r.nodeIntID[n.ID]
	if !ok {
		intID = r.nextIntID
		r.nextIntID++
		r.nodeIntID[n.ID] = intID
		for uint32(len(r.intToNodeID)) <= intID {
			r.intToNodeID = append(r.intToNodeID, "")
		}
		r.intToNodeID[intID] = n.ID
	}
	bm, exists := r.pageMembers[page.ID]
	if !exists {
		bm = roaring.New()
		r.pageMembers[page.ID] = bm
	}
	bm.Add(intID)
}

// Get returns the node for id, or ErrNotFound.
func (r *Registry) Get(id string) (*Node, error) {
	n, ok := r.nodes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return n, nil
}

// Lookup is the tolerant form of Get: nil when the id does not resolve.
// Crawl and resolve paths use this so stale ids degrade silently.
func (r *Registry) Lookup(id string) *Node {
	return r.nodes[id]
}

// Parent resolves the weak parent reference, nil for detached nodes, page
// roots, and broken chains.
func (r *Registry) Parent(n *Node) *Node {
	if n == nil || n.ParentID == "" {
		return nil
	}
	return r.nodes[n.ParentID]
}

// ChildNodes resolves a node's ordered child ids, skipping dangling entries.
func (r *Registry) ChildNodes(n *Node) []*Node {
	if n == nil || len(n.Children) == 0 {
		return nil
	}
	out := make([]*Node, 0, len(n.Children))
	for _, id := range n.Children {
		if c, ok := r.nodes[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Pages returns the page roots in document order.
func (r *Registry) Pages() []*Node {
	out := make([]*Node, 0, len(r.pages))
	for _, id := range r.pages {
		if p, ok := r.nodes[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// PageOf ascends the parent chain to the owning page. A broken chain yields
// nil — the node is treated as parentless, not an error.
func (r *Registry) PageOf(n *Node) *Node {
	for n != nil {
		if n.Type == TypePage {
			return n
		}
		n = r.Parent(n)
	}
	return nil
}

// InPage reports page membership via the bitmap index.
func (r *Registry) InPage(pageID, nodeID string) bool {
	bm, ok := r.pageMembers[pageID]
	if !ok {
		return false
	}
	intID, ok := r.nodeIntID[nodeID]
	if !ok {
		return false
	}
	return bm.Contains(intID)
}

// LookupInPage resolves id to a live node only when it belongs to the given
// page. O(1) via the bitmap index — no subtree scan.
func (r *Registry) LookupInPage(pageID, nodeID string) *Node {
	if !r.InPage(pageID, nodeID) {
		return nil
	}
	return r.nodes[nodeID]
}

// Remove deletes a node and its whole subtree, scrubs the parent's child
// list, and drops the subtree from the page index. Mirrors the host's
// delete semantics so resolvers can be exercised against real deletions.
func (r *Registry) Remove(id string) {
	n, ok := r.nodes[id]
	if !ok {
		return
	}
	page := r.PageOf(n)

	// Collect the subtree with an explicit stack.
	toDelete := []string{}
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node, ok := r.nodes[cur]
		if !ok {
			continue
		}
		toDelete = append(toDelete, cur)
		stack = append(stack, node.Children...)
	}

	deleteSet := make(map[string]struct{}, len(toDelete))
	for _, del := range toDelete {
		deleteSet[del] = struct{}{}
		delete(r.nodes, del)
		r.unindex(page, del)
	}

	// Scrub child pointers in the remaining nodes.
	for _, node := range r.nodes {
		if len(node.Children) == 0 {
			continue
		}
		kept := node.Children[:0]
		changed := false
		for _, c := range node.Children {
			if _, del := deleteSet[c]; del {
				changed = true
			} else {
				kept = append(kept, c)
			}
		}
		if changed {
			node.Children = kept
		}
	}

	// Page roots may be removed too.
	keptPages := r.pages[:0]
	for _, p := range r.pages {
		if _, del := deleteSet[p]; !del {
			keptPages = append(keptPages, p)
		}
	}
	r.pages = keptPages
}

// Detach severs a node from its parent, leaving it (and its subtree) in the
// arena as a parentless unit. The node leaves its page's membership index.
func (r *Registry) Detach(id string) {
	n, ok := r.nodes[id]
	if !ok || n.ParentID == "" {
		return
	}
	page := r.PageOf(n)
	if p, ok := r.nodes[n.ParentID]; ok {
		kept := p.Children[:0]
		for _, c := range p.Children {
			if c != id {
				kept = append(kept, c)
			}
		}
		p.Children = kept
	}
	n.ParentID = ""

	// The whole subtree leaves the page.
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node, ok := r.nodes[cur]
		if !ok {
			continue
		}
		r.unindex(page, cur)
		stack = append(stack, node.Children...)
	}
}

func (r *Registry) unindex(page *Node, nodeID string) {
	intID, ok := r.nodeIntID[nodeID]
	if !ok {
		return
	}
	if page != nil {
		if bm, ok := r.pageMembers[page.ID]; ok {
			bm.Remove(intID)
			if bm.IsEmpty() {
				delete(r.pageMembers, page.ID)
			}
		}
	}
	delete(r.nodeIntID, nodeID)
	if int(intID) < len(r.intToNodeID) {
		r.intToNodeID[intID] = ""
	}
}

// FindOne searches rootID's subtree (inclusive) in pre-order and returns the
// first node satisfying pred, or nil. The walk is iterative.
func (r *Registry) FindOne(rootID string, pred func(*Node) bool) *Node {
	stack := []string{rootID}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n, ok := r.nodes[cur]
		if !ok {
			continue
		}
		if pred(n) {
			return n
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return nil
}

// FindAll is FindOne's collect-everything form, pre-order.
func (r *Registry) FindAll(rootID string, pred func(*Node) bool) []*Node {
	var out []*Node
	stack := []string{rootID}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n, ok := r.nodes[cur]
		if !ok {
			continue
		}
		if pred(n) {
			out = append(out, n)
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return out
}

// Len reports the number of live nodes in the arena.
func (r *Registry) Len() int {
	return len(r.nodes)
}
