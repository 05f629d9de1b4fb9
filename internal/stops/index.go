// Package stops holds the annotation ordering core: the per-container
// persisted list (Index) and the resolver that merges it with the live tree.
package stops

import (
	"github.com/keyline-tools/keyline/api"
	"github.com/keyline-tools/keyline/internal/scene"
	"github.com/ohler55/ojg/oj"
)

// Index reads and writes the per-container ordered annotation list for a
// kind. The list lives as serialized JSON on the container itself; the ids
// inside are the only ground truth, and any of them may have gone stale
// since the last write.
type Index struct {
	reg *scene.Registry
}

func NewIndex(reg *scene.Registry) *Index {
	return &Index{reg: reg}
}

// Load deserializes the stored list for kind. Absent or malformed data
// yields an empty list — annotation state is best-effort, never an error.
func (x *Index) Load(container *scene.Node, kind api.Kind) []api.AnnotationEntry {
	raw := container.PluginValue(kind.ListKey())
	if raw == "" {
		return nil
	}
	var entries []api.AnnotationEntry
	if err := oj.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}
	return entries
}

// ResolveLive maps each stored entry to a currently-live node in the
// container's subtree (the container itself counts). Stale entries are
// silently dropped from the result; the stored list is left untouched —
// reading and compacting are separate concerns.
func (x *Index) ResolveLive(container *scene.Node, kind api.Kind) []*scene.Node {
	entries := x.Load(container, kind)
	if len(entries) == 0 {
		return nil
	}
	var out []*scene.Node
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		id := e.ID
		n := x.reg.FindOne(container.ID, func(c *scene.Node) bool {
			return c.ID == id
		})
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Reset overwrites the stored list with an empty one. Callers do this right
// before repainting and renumbering a container's annotations from scratch,
// so stale ids cannot leak into the next resolution cycle. The reset is
// scoped to this one container — never a blanket clear.
func (x *Index) Reset(container *scene.Node, kind api.Kind) {
	container.SetPluginValue(kind.ListKey(), "[]")
}

// Save persists a new ordered list on the container, replacing the old one.
func (x *Index) Save(container *scene.Node, kind api.Kind, entries []api.AnnotationEntry) error {
	if entries == nil {
		entries = []api.AnnotationEntry{}
	}
	b, err := oj.Marshal(entries)
	if err != nil {
		return err
	}
	container.SetPluginValue(kind.ListKey(), string(b))
	return nil
}
