package scene

import (
	"fmt"
	"os"

	"github.com/ohler55/ojg/oj"
)

// LoadJSON reads a document file and builds a Registry from it.
//
// Document shape:
//
//	{"version": "1", "pages": [ {node}, ... ]}
//
// where node is {"id", "name", "type", "bounds": {x,y,w,h},
// "plugin": {key: json-string}, "children": [node, ...]}.
func LoadJSON(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", path, err)
	}
	return ParseJSON(raw)
}

// ParseJSON builds a Registry from raw document JSON.
func ParseJSON(raw []byte) (*Registry, error) {
	doc, err := oj.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse document json: %w", err)
	}
	root, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("document root must be an object, got %T", doc)
	}

	reg := NewRegistry()
	pages, _ := root["pages"].([]any)
	for _, p := range pages {
		pm, ok := p.(map[string]any)
		if !ok {
			continue
		}
		page := nodeFromMap(pm)
		reg.AddPage(page)
		addChildren(reg, page, pm)
	}
	return reg, nil
}

// addChildren attaches a node map's children recursively. Document nesting
// follows scene nesting, which the host keeps shallow enough for this.
func addChildren(reg *Registry, parent *Node, m map[string]any) {
	children, _ := m["children"].([]any)
	for _, c := range children {
		cm, ok := c.(map[string]any)
		if !ok {
			continue
		}
		child := nodeFromMap(cm)
		reg.AppendChild(parent.ID, child)
		addChildren(reg, child, cm)
	}
}

func nodeFromMap(m map[string]any) *Node {
	n := &Node{
		ID:   str(m["id"]),
		Name: str(m["name"]),
		Type: ParseNodeType(str(m["type"])),
	}
	if b, ok := m["bounds"].(map[string]any); ok {
		n.Bounds = Rect{
			X: num(b["x"]),
			Y: num(b["y"]),
			W: num(b["w"]),
			H: num(b["h"]),
		}
	}
	if p, ok := m["plugin"].(map[string]any); ok {
		n.Plugin = make(map[string]string, len(p))
		for k, v := range p {
			if s, ok := v.(string); ok {
				n.Plugin[k] = s
			}
		}
	}
	return n
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func num(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	case int:
		return float64(x)
	}
	return 0
}
