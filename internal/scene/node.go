package scene

// NodeType enumerates the classes of nodes in the design tree.
type NodeType int

const (
	TypePage      NodeType = iota // document page, the crawl boundary
	TypeFrame                     // container frame, the "top frame" class
	TypeComponent                 // component definition
	TypeInstance                  // component instance
	TypeGroup                     // logical grouping
	TypeText                      // text leaf
	TypeShape                     // geometric leaf
)

func (t NodeType) String() string {
	switch t {
	case TypePage:
		return "page"
	case TypeFrame:
		return "frame"
	case TypeComponent:
		return "component"
	case TypeInstance:
		return "instance"
	case TypeGroup:
		return "group"
	case TypeText:
		return "text"
	case TypeShape:
		return "shape"
	default:
		return "unknown"
	}
}

// ParseNodeType maps a type tag back to its NodeType. Unknown tags come back
// as TypeShape so a document with a newer vocabulary still loads as leaves.
func ParseNodeType(s string) NodeType {
	switch s {
	case "page":
		return TypePage
	case "frame":
		return TypeFrame
	case "component":
		return TypeComponent
	case "instance":
		return TypeInstance
	case "group":
		return TypeGroup
	case "text":
		return TypeText
	default:
		return TypeShape
	}
}

// Rect is a node's on-canvas bounding box. Coordinates are absolute;
// only ordering comparisons consume them.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Node is the universal scene primitive. Parent and children are id
// references into the owning Registry, never structural pointers, so the
// deletion of a node cannot leave a dangling pointer in walk state.
type Node struct {
	ID       string
	Name     string
	Type     NodeType
	ParentID string   // "" means detached (or a page root)
	Children []string // ordered child node IDs
	Bounds   Rect
	Plugin   map[string]string // attached metadata: key → JSON string
}

// PluginValue returns the raw JSON string stored under key, or "" when the
// node carries no such entry.
func (n *Node) PluginValue(key string) string {
	if n.Plugin == nil {
		return ""
	}
	return n.Plugin[key]
}

// SetPluginValue attaches raw JSON under key, allocating the map on first use.
func (n *Node) SetPluginValue(key, value string) {
	if n.Plugin == nil {
		n.Plugin = make(map[string]string)
	}
	n.Plugin[key] = value
}
