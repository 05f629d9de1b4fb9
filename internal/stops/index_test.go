package stops

import (
	"testing"

	"github.com/keyline-tools/keyline/api"
	"github.com/keyline-tools/keyline/internal/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indexFixture() (*scene.Registry, *scene.Node) {
	reg := scene.NewRegistry()
	reg.AddPage(&scene.Node{ID: "page"})
	frame := &scene.Node{ID: "frame", Type: scene.TypeFrame}
	reg.AppendChild("page", frame)
	reg.AppendChild("frame", &scene.Node{ID: "n1", Type: scene.TypeShape})
	reg.AppendChild("frame", &scene.Node{ID: "n2", Type: scene.TypeShape})
	return reg, frame
}

func TestIndexLoad(t *testing.T) {
	reg, frame := indexFixture()
	x := NewIndex(reg)

	assert.Empty(t, x.Load(frame, api.KindKeystop), "absent list loads empty")

	frame.SetPluginValue("keystopList", `[{"id":"n1","position":1},{"id":"n2","position":2}]`)
	entries := x.Load(frame, api.KindKeystop)
	require.Len(t, entries, 2)
	assert.Equal(t, api.AnnotationEntry{ID: "n1", Position: 1}, entries[0])

	frame.SetPluginValue("keystopList", `{oops`)
	assert.Empty(t, x.Load(frame, api.KindKeystop), "malformed list loads empty, never errors")
}

func TestIndexResolveLive(t *testing.T) {
	reg, frame := indexFixture()
	x := NewIndex(reg)
	frame.SetPluginValue("keystopList", `[{"id":"n1","position":1},{"id":"gone","position":2},{"id":"n2","position":3}]`)

	nodes := x.ResolveLive(frame, api.KindKeystop)
	require.Len(t, nodes, 2)
	assert.Equal(t, "n1", nodes[0].ID)
	assert.Equal(t, "n2", nodes[1].ID)

	// Reading never compacts: the stale entry stays stored until a reset or
	// an explicit save.
	assert.Contains(t, frame.PluginValue("keystopList"), "gone")
}

func TestIndexResolveLive_ContainerItself(t *testing.T) {
	reg, frame := indexFixture()
	x := NewIndex(reg)
	frame.SetPluginValue("labelList", `[{"id":"frame","position":1}]`)

	nodes := x.ResolveLive(frame, api.KindLabel)
	require.Len(t, nodes, 1)
	assert.Equal(t, "frame", nodes[0].ID)
}

func TestIndexResolveLive_ScopedToSubtree(t *testing.T) {
	reg, frame := indexFixture()
	reg.AppendChild("page", &scene.Node{ID: "outside", Type: scene.TypeShape})
	x := NewIndex(reg)
	frame.SetPluginValue("keystopList", `[{"id":"outside","position":1}]`)

	assert.Empty(t, x.ResolveLive(frame, api.KindKeystop), "ids outside the container do not resolve")
}

func TestIndexResolveLive_DuplicateIDsCollapse(t *testing.T) {
	reg, frame := indexFixture()
	x := NewIndex(reg)
	frame.SetPluginValue("keystopList", `[{"id":"n1","position":1},{"id":"n1","position":2}]`)

	nodes := x.ResolveLive(frame, api.KindKeystop)
	require.Len(t, nodes, 1)
}

func TestIndexResetAndSave(t *testing.T) {
	reg, frame := indexFixture()
	x := NewIndex(reg)
	frame.SetPluginValue("keystopList", `[{"id":"n1","position":1}]`)

	x.Reset(frame, api.KindKeystop)
	assert.Equal(t, "[]", frame.PluginValue("keystopList"))
	assert.Empty(t, x.Load(frame, api.KindKeystop))

	require.NoError(t, x.Save(frame, api.KindKeystop, []api.AnnotationEntry{
		{ID: "n2", Position: 1},
	}))
	entries := x.Load(frame, api.KindKeystop)
	require.Len(t, entries, 1)
	assert.Equal(t, "n2", entries[0].ID)
}
