package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNode(t *testing.T) {
	g := New()

	g.AddNode("des")
	g.AddNode("pod")
	g.AddNode("des") // idempotent, keeps the first rank

	require.Equal(t, 2, g.g.Nodes().Len())
	assert.Equal(t, int64(0), g.ids["des"])
	assert.Equal(t, int64(1), g.ids["pod"])
	assert.Equal(t, []string{"des", "pod"}, g.Nodes())
}

func TestAddEdge(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := New()
		g.AddNode("des")
		g.AddNode("pod")

		require.NoError(t, g.AddEdge("des", "pod"))
		require.NoError(t, g.AddEdge("des", "pod"))

		assert.Equal(t, 1, g.g.From(g.ids["des"]).Len())
		assert.True(t, g.g.HasEdgeFromTo(g.ids["des"], g.ids["pod"]))
		assert.False(t, g.g.HasEdgeFromTo(g.ids["pod"], g.ids["des"]))
	})

	t.Run("error cases", func(t *testing.T) {
		g := New()
		g.AddNode("des")

		assert.ErrorContains(t, g.AddEdge("dne", "des"), "source node not found")
		assert.ErrorContains(t, g.AddEdge("des", "dne"), "destination node not found")
		assert.ErrorContains(t, g.AddEdge("des", "des"), "self-referential edge")
	})
}
