// Package links resolves the connections between design nodes and their
// annotation artifacts: marker nodes, legend frames, and the page-level
// tracking tables that survive when live object handles do not. Every
// lookup tolerates deleted targets — a broken link answers nil, not an
// error, because the host tree mutates outside our control.
package links

import (
	"strings"

	"github.com/keyline-tools/keyline/api"
	"github.com/keyline-tools/keyline/internal/scene"
	"github.com/ohler55/ojg/oj"
)

type Resolver struct {
	reg *scene.Registry
}

func NewResolver(reg *scene.Registry) *Resolver {
	return &Resolver{reg: reg}
}

// ParentInstance finds the component instance that annotation actions on n
// should target. The node itself wins if it is an instance; otherwise the
// ascent finds the nearest enclosing instance and keeps climbing while the
// chain stays instances, so nested instances resolve to the outermost
// reusable unit. Nil when no instance encloses n.
func (r *Resolver) ParentInstance(n *scene.Node) *scene.Node {
	if n == nil {
		return nil
	}
	if n.Type == scene.TypeInstance {
		return n
	}
	cur := r.reg.Parent(n)
	for cur != nil && cur.Type != scene.TypePage {
		if cur.Type == scene.TypeInstance {
			// Extend upward through directly nested instances.
			top := cur
			for p := r.reg.Parent(top); p != nil && p.Type == scene.TypeInstance; p = r.reg.Parent(p) {
				top = p
			}
			return top
		}
		cur = r.reg.Parent(cur)
	}
	return nil
}

// TopComponent ascends to the enclosing component definition. Components do
// not nest on this host, so the first match is final. Nil when n sits
// outside any component.
func (r *Resolver) TopComponent(n *scene.Node) *scene.Node {
	for cur := n; cur != nil && cur.Type != scene.TypePage; cur = r.reg.Parent(cur) {
		if cur.Type == scene.TypeComponent {
			return cur
		}
	}
	return nil
}

// LegendFrame resolves the legend frame generated for frameID via the
// page's tracking table. Nil when the frame has no tracked legend or the
// legend node was deleted.
func (r *Resolver) LegendFrame(frameID string, page *scene.Node) *scene.Node {
	for _, e := range r.LegendTracking(page) {
		if e.ID != frameID || e.LegendID == "" {
			continue
		}
		return r.reg.LookupInPage(page.ID, e.LegendID)
	}
	return nil
}

// OrphanedLegendFrame recovers a legend whose tracking entry was lost (a
// prior crash, a manual copy/paste). It scans the page's direct children
// for one that is not in the tracking table but carries a legend-role link
// token with the expected shared link id.
func (r *Resolver) OrphanedLegendFrame(page *scene.Node, tracking []api.LegendEntry, frameLinkID string) *scene.Node {
	tracked := make(map[string]struct{}, len(tracking))
	for _, e := range tracking {
		if e.LegendID != "" {
			tracked[e.LegendID] = struct{}{}
		}
	}
	for _, child := range r.reg.ChildNodes(page) {
		if _, ok := tracked[child.ID]; ok {
			continue
		}
		token := r.linkToken(child, api.GeneralLinkKey)
		if token == nil {
			for _, kind := range api.Kinds {
				if token = r.linkToken(child, kind.LinkKey()); token != nil {
					break
				}
			}
		}
		if token != nil && token.Role == api.LinkRoleLegend && token.ID == frameLinkID {
			return child
		}
	}
	return nil
}

// DesignNodeFromAnnotation finds the design node a marker annotates. The
// marker's kind comes from its name (substring match against the kind
// vocabulary), falling back to the generic link token; the token's target
// id then resolves within the page. Nil when the target was deleted or the
// marker carries no usable token.
func (r *Resolver) DesignNodeFromAnnotation(page *scene.Node, marker *scene.Node) *scene.Node {
	if page == nil || marker == nil {
		return nil
	}
	var token *api.LinkToken
	name := strings.ToLower(marker.Name)
	for _, kind := range api.Kinds {
		if strings.Contains(name, string(kind)) {
			token = r.linkToken(marker, kind.LinkKey())
			break
		}
	}
	if token == nil {
		token = r.linkToken(marker, api.GeneralLinkKey)
	}
	if token == nil || token.Role != api.LinkRoleAnnotation {
		return nil
	}
	return r.reg.LookupInPage(page.ID, token.ID)
}

// LegendTracking loads the page's frame→legend table. Absent or malformed
// data is an empty table.
func (r *Resolver) LegendTracking(page *scene.Node) []api.LegendEntry {
	raw := page.PluginValue(api.LegendFramesKey)
	if raw == "" {
		return nil
	}
	var entries []api.LegendEntry
	if err := oj.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}
	return entries
}

// SaveLegendTracking persists the page's frame→legend table.
func (r *Resolver) SaveLegendTracking(page *scene.Node, entries []api.LegendEntry) error {
	if entries == nil {
		entries = []api.LegendEntry{}
	}
	b, err := oj.Marshal(entries)
	if err != nil {
		return err
	}
	page.SetPluginValue(api.LegendFramesKey, string(b))
	return nil
}

func (r *Resolver) linkToken(n *scene.Node, key string) *api.LinkToken {
	raw := n.PluginValue(key)
	if raw == "" {
		return nil
	}
	var t api.LinkToken
	if err := oj.Unmarshal([]byte(raw), &t); err != nil {
		return nil
	}
	if t.ID == "" {
		return nil
	}
	return &t
}
