package api

// Kind identifies an annotation category. Each kind has its own persisted
// list on the container, its own peer-data key on the node, and its own
// link-token key on marker nodes.
type Kind string

const (
	KindKeystop Kind = "keystop"
	KindLabel   Kind = "label"
	KindHeading Kind = "heading"
	KindMisc    Kind = "misc"
)

// Kinds lists every known annotation kind, in display order.
var Kinds = []Kind{KindKeystop, KindLabel, KindHeading, KindMisc}

// Valid reports whether k is a known annotation kind.
func (k Kind) Valid() bool {
	switch k {
	case KindKeystop, KindLabel, KindHeading, KindMisc:
		return true
	}
	return false
}

// ListKey is the container plugin key holding the persisted ordered list
// for this kind.
func (k Kind) ListKey() string { return string(k) + "List" }

// DataKey is the node plugin key holding the kind's peer metadata record.
func (k Kind) DataKey() string { return string(k) }

// LinkKey is the marker-node plugin key holding this kind's link token.
func (k Kind) LinkKey() string { return string(k) + "LinkId" }

// GeneralLinkKey is the fallback link-token key used when a marker carries
// no kind-specific token.
const GeneralLinkKey = "generalLinkId"

// LegendFramesKey is the page plugin key holding the frame→legend table.
const LegendFramesKey = "legendFrames"

// Role classifies what a labeled node is, roughly mirroring ARIA roles.
type Role string

const (
	RoleNone     Role = ""
	RoleButton   Role = "button"
	RoleCheckbox Role = "checkbox"
	RoleHeading  Role = "heading"
	RoleImage    Role = "image"
	RoleLink     Role = "link"
	RoleSlider   Role = "slider"
	RoleText     Role = "text"
	RoleTextbox  Role = "textbox"
)

// KeyToken is a single key assigned to a keyboard stop (e.g. "enter",
// "space", "arrows-updown").
type KeyToken string

// KeystopData is the peer metadata record for the keystop kind.
type KeystopData struct {
	// HasKeystop marks the node as a keyboard focus stop.
	HasKeystop bool `json:"hasKeystop"`
	// AllowPassthrough lets descendant scans continue below this node even
	// though it is itself a stop. Stops are atomic unless this is set.
	AllowPassthrough bool `json:"allowKeystopPassthrough"`
	// Keys lists the keys the stop responds to, in annotation order.
	Keys []KeyToken `json:"keys,omitempty"`
}

// Labels holds the text alternatives attached to a labeled node.
type Labels struct {
	A11y    string `json:"a11y,omitempty"`
	Visible string `json:"visible,omitempty"`
	Alt     string `json:"alt,omitempty"`
}

// LabelData is the peer metadata record for the label kind.
type LabelData struct {
	// Role makes the node assignable for the label kind when non-empty.
	Role   Role   `json:"role,omitempty"`
	Labels Labels `json:"labels,omitempty"`
}

// AnnotationEntry is one element of a container's persisted ordered list.
// Insertion order is annotation order; Position is the displayed number and
// is not required to match slice order (renumbering is the caller's job).
type AnnotationEntry struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}

// LinkRole says which side of an annotation link a marker node is on.
type LinkRole string

const (
	LinkRoleAnnotation LinkRole = "annotation"
	LinkRoleLegend     LinkRole = "legend"
)

// LinkToken is attached to a marker node and points back at the design node
// it annotates (or, for legends, the frame it summarizes).
type LinkToken struct {
	ID   string   `json:"id"`
	Role LinkRole `json:"role"`
}

// LegendEntry maps an annotated top frame to its generated legend frame.
// LegendID is empty when the frame has no legend.
type LegendEntry struct {
	ID       string `json:"id"`
	LegendID string `json:"legendId,omitempty"`
}
