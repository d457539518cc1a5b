package graph_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/fine-structures/kwl/libwl/graph"
	"github.com/fine-structures/kwl/wl"
)

func TestAddNodeAndEdge(t *testing.T) {
	X := graph.NewLabeledGraph(false)
	a, err := X.AddNode(1)
	require.NoError(t, err)
	b, err := X.AddNode(2)
	require.NoError(t, err)
	assert.Equal(t, 0, a)
	assert.Equal(t, 1, b)

	require.NoError(t, X.AddEdge(a, b, 7))

	// undirected edges are materialized as a forward + reverse pair
	assert.Equal(t, 2, X.NumEdges())
	assert.Equal(t, []int{1}, X.OutboundAdjacent(a))
	assert.Equal(t, []int{0}, X.OutboundAdjacent(b))
	assert.Equal(t, []int{1}, X.InboundAdjacent(a))
	assert.Equal(t, []int{0}, X.Edges(a, b))
	assert.Equal(t, []int{1}, X.Edges(b, a))
	assert.Nil(t, X.Edges(a, a))
	assert.Equal(t, int64(7), X.EdgeLabel(1))
	assert.Equal(t, b, X.Source(1))
	assert.Equal(t, a, X.Destination(1))
	assert.False(t, X.HasOnlyUnlabeledEdges())
}

func TestDirectedMultiEdges(t *testing.T) {
	X := graph.NewLabeledGraph(true)
	X.AddNode(0)
	X.AddNode(0)
	require.NoError(t, X.AddEdge(0, 1, 0))
	require.NoError(t, X.AddEdge(0, 1, 0))
	require.NoError(t, X.AddEdge(1, 1, 0))

	assert.Equal(t, 3, X.NumEdges())
	assert.Equal(t, []int{0, 1}, X.Edges(0, 1))
	assert.Nil(t, X.Edges(1, 0))
	assert.Equal(t, []int{2}, X.Edges(1, 1))
	assert.Equal(t, []int{0, 0, 1}, X.InboundAdjacent(1))
	assert.Empty(t, X.InboundAdjacent(0))
	assert.True(t, X.HasOnlyUnlabeledEdges())
}

func TestBadInput(t *testing.T) {
	X := graph.NewLabeledGraph(true)
	_, err := X.AddNode(-1)
	assert.True(t, errors.Is(err, wl.ErrBadLabel))
	assert.Equal(t, 0, X.NumNodes())

	X.AddNode(0)
	assert.True(t, errors.Is(X.AddEdge(0, 0, -3), wl.ErrBadLabel))
	assert.True(t, errors.Is(X.AddEdge(0, 1, 0), wl.ErrBadNodeID))
	assert.True(t, errors.Is(X.AddEdge(-1, 0, 0), wl.ErrBadNodeID))
	assert.Equal(t, 0, X.NumEdges())
}

func TestParse(t *testing.T) {
	X, err := graph.Parse("graph { 0 [1]; 1 [1]; 2 [2]; 0 -- 1 -- 2 [5]; 3 }")
	require.NoError(t, err)

	assert.False(t, X.IsDirected())
	assert.Equal(t, 4, X.NumNodes())
	assert.Equal(t, []int64{1, 1, 2, 0}, X.NodeLabels())
	assert.Equal(t, 4, X.NumEdges())
	assert.Equal(t, []int64{5, 5, 5, 5}, X.EdgeLabels())
	assert.Equal(t, []int{0, 2}, X.OutboundAdjacent(1))

	Y, err := graph.Parse("digraph { 0 -> 1 -> 2; 2 -> 0 [3] }")
	require.NoError(t, err)
	assert.True(t, Y.IsDirected())
	assert.Equal(t, 3, Y.NumEdges())
	assert.Equal(t, []int64{0, 0, 3}, Y.EdgeLabels())
}

func TestParseErrors(t *testing.T) {
	for _, expr := range []string{
		"graph { 0 -> 1 }",
		"digraph { 0 -- 1 }",
		"graph { 0 [1]; 0 [2] }",
		"graph { 0 -- }",
		"tree { 0 }",
		"graph { 0 [-1] }",
	} {
		_, err := graph.Parse(expr)
		assert.True(t, errors.Is(err, wl.ErrBadGraphExpr), "expr %q: %v", expr, err)
	}
}

func TestExprRoundTrip(t *testing.T) {
	for _, expr := range []string{
		"graph { 0 [1]; 1 [2]; 2 [3]; 0 -- 1; 1 -- 2 [4]; 2 -- 2; }",
		"digraph { 0 [0]; 1 [9]; 0 -> 1; 1 -> 0 [2]; 0 -> 1; }",
	} {
		X := graph.MustParse(expr)
		Y := graph.MustParse(X.Expr())
		assert.Equal(t, X.NodeLabels(), Y.NodeLabels())
		assert.Equal(t, X.EdgeLabels(), Y.EdgeLabels())
		for v := 0; v < X.NumNodes(); v++ {
			assert.Equal(t, X.OutboundAdjacent(v), Y.OutboundAdjacent(v))
		}
	}
}

func TestWriteAsString(t *testing.T) {
	X := graph.MustParse("graph { 0 [1]; 1 [2]; 0 -- 1 }")
	str := X.String()
	assert.True(t, strings.HasPrefix(str, "Num nodes: 2\nNum edges: 2\n"))
	assert.Contains(t, str, "Undirected edges:")
	assert.Contains(t, str, "    0 : [1]")
}

func TestFromGonum(t *testing.T) {
	g := simple.NewUndirectedGraph()
	for _, ids := range [][2]int64{{10, 20}, {20, 30}, {30, 10}, {30, 40}} {
		g.SetEdge(simple.Edge{F: simple.Node(ids[0]), T: simple.Node(ids[1])})
	}

	X, err := graph.FromGonum(g, graph.GonumOpts{
		NodeLabel: func(n gonum.Node) int64 { return n.ID() / 10 },
	})
	require.NoError(t, err)
	assert.False(t, X.IsDirected())
	assert.Equal(t, 4, X.NumNodes())
	assert.Equal(t, 8, X.NumEdges())
	assert.Equal(t, []int64{1, 2, 3, 4}, X.NodeLabels())
	assert.ElementsMatch(t, []int{0, 1, 3}, X.OutboundAdjacent(2))

	dg := simple.NewDirectedGraph()
	dg.SetEdge(simple.Edge{F: simple.Node(1), T: simple.Node(2)})
	dg.SetEdge(simple.Edge{F: simple.Node(2), T: simple.Node(1)})
	dg.SetEdge(simple.Edge{F: simple.Node(2), T: simple.Node(3)})
	Y, err := graph.FromGonum(dg, graph.GonumOpts{})
	require.NoError(t, err)
	assert.True(t, Y.IsDirected())
	assert.Equal(t, 3, Y.NumEdges())
	assert.Equal(t, []int{0, 2}, Y.OutboundAdjacent(1))
}
