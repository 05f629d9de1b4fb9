package peerdata

import (
	"testing"

	"github.com/keyline-tools/keyline/api"
	"github.com/keyline-tools/keyline/internal/scene"
)

func newNode() (*Store, *scene.Node) {
	reg := scene.NewRegistry()
	reg.AddPage(&scene.Node{ID: "p"})
	n := &scene.Node{ID: "n", Type: scene.TypeShape}
	reg.AppendChild("p", n)
	return NewStore(reg), n
}

func TestKeystopRoundTrip(t *testing.T) {
	store, n := newNode()

	in := &api.KeystopData{HasKeystop: true, Keys: []api.KeyToken{"enter", "space"}}
	if err := store.SetKeystop(n, in); err != nil {
		t.Fatalf("SetKeystop: %v", err)
	}

	out := store.Keystop(n)
	if out == nil || !out.HasKeystop {
		t.Fatalf("Keystop = %+v", out)
	}
	if len(out.Keys) != 2 || out.Keys[0] != "enter" {
		t.Errorf("Keys = %v", out.Keys)
	}
	if out.AllowPassthrough {
		t.Error("passthrough defaults to false")
	}
}

func TestAbsentAndMalformedAreNil(t *testing.T) {
	store, n := newNode()

	if store.Keystop(n) != nil {
		t.Error("absent keystop data should be nil")
	}
	n.SetPluginValue(api.KindKeystop.DataKey(), "{broken")
	if store.Keystop(n) != nil {
		t.Error("malformed keystop data should be nil, never an error")
	}
	n.SetPluginValue(api.KindLabel.DataKey(), "[1,2]")
	if store.Label(n, api.KindLabel) != nil {
		t.Error("malformed label data should be nil")
	}
}

func TestAssignable(t *testing.T) {
	store, n := newNode()

	if store.Assignable(n, api.KindKeystop) {
		t.Error("no metadata means not assignable")
	}
	_ = store.SetKeystop(n, &api.KeystopData{HasKeystop: false})
	if store.Assignable(n, api.KindKeystop) {
		t.Error("hasKeystop=false means not assignable")
	}
	_ = store.SetKeystop(n, &api.KeystopData{HasKeystop: true})
	if !store.Assignable(n, api.KindKeystop) {
		t.Error("hasKeystop=true means assignable")
	}

	if store.Assignable(n, api.KindLabel) {
		t.Error("label assignability needs a role")
	}
	_ = store.SetLabel(n, api.KindLabel, &api.LabelData{Role: api.RoleButton})
	if !store.Assignable(n, api.KindLabel) {
		t.Error("a set role means assignable")
	}
}

func TestPassThroughPolicy(t *testing.T) {
	store, n := newNode()

	// Label-family kinds always pass through, even without metadata.
	if !store.PassesThrough(n, api.KindLabel) {
		t.Error("label always passes through")
	}
	if !store.PassesThrough(n, api.KindHeading) {
		t.Error("heading always passes through")
	}

	// Keystops must opt in.
	if store.PassesThrough(n, api.KindKeystop) {
		t.Error("keystop without metadata must not pass through")
	}
	_ = store.SetKeystop(n, &api.KeystopData{HasKeystop: true})
	if store.PassesThrough(n, api.KindKeystop) {
		t.Error("keystop without the flag must not pass through")
	}
	_ = store.SetKeystop(n, &api.KeystopData{HasKeystop: true, AllowPassthrough: true})
	if !store.PassesThrough(n, api.KindKeystop) {
		t.Error("opted-in keystop passes through")
	}
}

func TestMetadataTypedVariant(t *testing.T) {
	store, n := newNode()
	_ = store.SetKeystop(n, &api.KeystopData{HasKeystop: true})
	_ = store.SetLabel(n, api.KindHeading, &api.LabelData{Role: api.RoleHeading})

	if _, ok := store.Metadata(n, api.KindKeystop).(*api.KeystopData); !ok {
		t.Errorf("keystop metadata variant = %T", store.Metadata(n, api.KindKeystop))
	}
	if _, ok := store.Metadata(n, api.KindHeading).(*api.LabelData); !ok {
		t.Errorf("heading metadata variant = %T", store.Metadata(n, api.KindHeading))
	}
	if store.Metadata(n, api.KindMisc) != nil {
		t.Error("absent metadata is nil")
	}
}
