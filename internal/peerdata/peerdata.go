// Package peerdata reads and writes the typed metadata attached directly to
// scene nodes. Payloads are JSON strings under kind-specific plugin keys;
// parsing happens once here at the boundary so everything above operates on
// typed records. Absent or corrupt payloads come back as nil — annotation
// state is best-effort and recoverable, never a hard error.
package peerdata

import (
	"github.com/keyline-tools/keyline/api"
	"github.com/keyline-tools/keyline/internal/scene"
	"github.com/ohler55/ojg/oj"
)

type Store struct {
	reg *scene.Registry
}

func NewStore(reg *scene.Registry) *Store {
	return &Store{reg: reg}
}

// Keystop returns the node's keystop record, nil when absent or malformed.
func (s *Store) Keystop(n *scene.Node) *api.KeystopData {
	raw := n.PluginValue(api.KindKeystop.DataKey())
	if raw == "" {
		return nil
	}
	var d api.KeystopData
	if err := oj.Unmarshal([]byte(raw), &d); err != nil {
		return nil
	}
	return &d
}

// Label returns the node's record for a role-based kind (label, heading,
// misc), nil when absent or malformed.
func (s *Store) Label(n *scene.Node, kind api.Kind) *api.LabelData {
	raw := n.PluginValue(kind.DataKey())
	if raw == "" {
		return nil
	}
	var d api.LabelData
	if err := oj.Unmarshal([]byte(raw), &d); err != nil {
		return nil
	}
	return &d
}

// Metadata returns the node's typed record for kind, or nil. The concrete
// type depends on the kind: *api.KeystopData or *api.LabelData.
func (s *Store) Metadata(n *scene.Node, kind api.Kind) any {
	if kind == api.KindKeystop {
		if d := s.Keystop(n); d != nil {
			return d
		}
		return nil
	}
	if d := s.Label(n, kind); d != nil {
		return d
	}
	return nil
}

// SetKeystop serializes and attaches a keystop record.
func (s *Store) SetKeystop(n *scene.Node, d *api.KeystopData) error {
	b, err := oj.Marshal(d)
	if err != nil {
		return err
	}
	n.SetPluginValue(api.KindKeystop.DataKey(), string(b))
	return nil
}

// SetLabel serializes and attaches a role-based record under kind's key.
func (s *Store) SetLabel(n *scene.Node, kind api.Kind, d *api.LabelData) error {
	b, err := oj.Marshal(d)
	if err != nil {
		return err
	}
	n.SetPluginValue(kind.DataKey(), string(b))
	return nil
}

// Assignable reports whether the node's metadata marks it eligible for kind:
// hasKeystop for keystops, a non-empty role for the label family.
func (s *Store) Assignable(n *scene.Node, kind api.Kind) bool {
	if kind == api.KindKeystop {
		d := s.Keystop(n)
		return d != nil && d.HasKeystop
	}
	d := s.Label(n, kind)
	return d != nil && d.Role != api.RoleNone
}

// PassesThrough reports whether a descendant scan may continue below an
// assignable node. Label-family kinds always pass through; keystops are
// atomic unless the node opts in.
func (s *Store) PassesThrough(n *scene.Node, kind api.Kind) bool {
	if kind != api.KindKeystop {
		return true
	}
	d := s.Keystop(n)
	return d != nil && d.AllowPassthrough
}
