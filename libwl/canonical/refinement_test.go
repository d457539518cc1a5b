package canonical_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fine-structures/kwl/libwl/canonical"
	"github.com/fine-structures/kwl/libwl/graph"
	"github.com/fine-structures/kwl/wl"
)

func buildGraph(t *testing.T, directed bool, labels []int64, edges [][2]int) *graph.LabeledGraph {
	X := graph.NewLabeledGraph(directed)
	for _, label := range labels {
		_, err := X.AddNode(label)
		require.NoError(t, err)
	}
	for _, e := range edges {
		require.NoError(t, X.AddEdge(e[0], e[1], 0))
	}
	return X
}

func TestPath(t *testing.T) {
	X := graph.MustParse("graph { 0 -- 1 -- 2 }")

	R := canonical.NewRefinement()
	res, err := R.Calculate(X, true)
	require.NoError(t, err)

	// the unlabeled nodes start in class 0 and the split-off class is numbered past the largest label
	assert.Equal(t, []wl.Color{0, 1, 0}, res.Colors())
	assert.Equal(t, wl.Histogram{{0, 2}, {1, 1}}, res.Histogram())
	assert.Equal(t, [][]int{{0, 2}, {1}}, res.Partition())
	assert.Equal(t, 2, res.NumColors())
	assert.Equal(t, 1, R.ColoringFunctionSize())
	assert.Equal(t, wl.Color(1), res.MaxClassID())
	assert.Equal(t, 1, res.NumSplits())
	assert.Equal(t, []int64{0}, res.InitialLabels())
	assert.Equal(t, wl.FactorMatrix{
		{0, 0, 2}, {0, 1, 1},
		{1, 0, 2}, {1, 1, 1},
	}, res.FactorMatrix())
}

func TestStar(t *testing.T) {
	X := graph.MustParse("graph { 0 -- 1; 0 -- 2; 0 -- 3 }")

	res, err := canonical.NewRefinement().Calculate(X, false)
	require.NoError(t, err)

	assert.Equal(t, []wl.Color{1, 0, 0, 0}, res.Colors())
	assert.Equal(t, wl.Histogram{{0, 3}, {1, 1}}, res.Histogram())
	assert.Nil(t, res.FactorMatrix())

	_, err = res.QuotientDense()
	assert.True(t, errors.Is(err, wl.ErrNoFactorMatrix))
}

func TestRegularGraphIsNotSplit(t *testing.T) {
	X := graph.MustParse("graph { 0 -- 1 -- 2 -- 3 -- 4 -- 5 -- 0 }")

	res, err := canonical.NewRefinement().Calculate(X, true)
	require.NoError(t, err)

	assert.Equal(t, 1, res.NumColors())
	assert.Equal(t, 0, res.NumSplits())
	assert.Equal(t, wl.FactorMatrix{{0, 0, 6}}, res.FactorMatrix())
}

func TestSparseLabels(t *testing.T) {
	X := buildGraph(t, false, []int64{100, 5, 100, 0}, [][2]int{{0, 1}, {1, 2}})

	R := canonical.NewRefinement()
	res, err := R.Calculate(X, false)
	require.NoError(t, err)

	// initial classes take their label as class id
	assert.Equal(t, []int64{0, 5, 100}, res.InitialLabels())
	assert.Equal(t, []wl.Color{100, 5, 100, 0}, res.Colors())
	assert.Equal(t, wl.Histogram{{0, 1}, {5, 1}, {100, 2}}, res.Histogram())
	assert.Equal(t, 0, res.NumSplits())
	assert.Equal(t, 100, R.ColoringFunctionSize())

	sizes := res.ClassSizes()
	require.Len(t, sizes, 101)
	assert.Equal(t, 1, sizes[0])
	assert.Equal(t, 0, sizes[1])
	assert.Equal(t, 1, sizes[5])
	assert.Equal(t, 2, sizes[100])

	P := res.Partition()
	require.Len(t, P, 101)
	assert.Empty(t, P[1])
	assert.Equal(t, []int{0, 2}, P[100])
}

func TestClassIDsKeepLabels(t *testing.T) {
	R := canonical.NewRefinement()

	resA, err := R.Calculate(buildGraph(t, false, []int64{1, 2}, [][2]int{{0, 1}}), true)
	require.NoError(t, err)
	resB, err := R.Calculate(buildGraph(t, false, []int64{1, 3}, [][2]int{{0, 1}}), true)
	require.NoError(t, err)

	assert.Equal(t, wl.Histogram{{1, 1}, {2, 1}}, resA.Histogram())
	assert.Equal(t, wl.Histogram{{1, 1}, {3, 1}}, resB.Histogram())
	assert.Equal(t, wl.FactorMatrix{{1, 1, 1}, {1, 2, 1}, {2, 1, 1}, {2, 2, 1}}, resA.FactorMatrix())
	assert.Equal(t, wl.FactorMatrix{{1, 1, 1}, {1, 3, 1}, {3, 1, 1}, {3, 3, 1}}, resB.FactorMatrix())
	assert.Equal(t, []int{0, 1, 1}, resA.ClassSizes())
	assert.Equal(t, []int{0, 1, 0, 1}, resB.ClassSizes())

	// split classes are numbered after the largest label
	resC, err := R.Calculate(buildGraph(t, false, []int64{7, 7, 7, 2}, [][2]int{{0, 1}, {1, 2}}), false)
	require.NoError(t, err)
	assert.Equal(t, []wl.Color{7, 8, 7, 2}, resC.Colors())
	assert.Equal(t, 8, R.ColoringFunctionSize())
}

func TestLabelsNearTheLimit(t *testing.T) {
	R := canonical.NewRefinement()

	big := int64(math.MaxInt64 - 3)
	res, err := R.Calculate(buildGraph(t, false, []int64{big, big, big}, [][2]int{{0, 1}, {1, 2}}), false)
	require.NoError(t, err)
	assert.Equal(t, []wl.Color{wl.Color(big), wl.Color(big + 1), wl.Color(big)}, res.Colors())

	_, err = R.Calculate(buildGraph(t, false, []int64{math.MaxInt64, 0}, nil), false)
	assert.True(t, errors.Is(err, wl.ErrOverflow))
}

func TestEmptyGraph(t *testing.T) {
	res, err := canonical.NewRefinement().Calculate(graph.NewLabeledGraph(false), true)
	require.NoError(t, err)

	assert.Equal(t, 0, res.NumColors())
	assert.Empty(t, res.Histogram())
	assert.Empty(t, res.Colors())

	Q, err := res.QuotientDense()
	assert.NoError(t, err)
	assert.Nil(t, Q)
}

func TestRejectsBadInput(t *testing.T) {
	R := canonical.NewRefinement()

	_, err := R.Calculate(nil, false)
	assert.True(t, errors.Is(err, wl.ErrNilGraph))

	X := graph.MustParse("graph { 0 -- 1 [3] }")
	_, err = R.Calculate(X, false)
	assert.True(t, errors.Is(err, wl.ErrUnsupportedInput))
}

// Two planning states that differ only in where one object sits.
//
// The swapped nodes land in singleton classes in both graphs, so the class sizes agree; the quotient
// matrix is what tells them apart.
func TestDistinguishesNearTwins(t *testing.T) {
	labels := []int64{1, 1, 1, 1, 1, 2, 2, 3, 3, 4, 5, 5, 6, 7, 8, 9, 10}

	edges1 := [][2]int{
		{0, 5}, {0, 13}, {1, 6}, {1, 14}, {1, 16}, {2, 7}, {2, 10}, {3, 8}, {3, 11}, {4, 9}, {4, 12}, {4, 15},
		{5, 0}, {6, 1}, {7, 2}, {8, 3}, {9, 4}, {10, 2}, {11, 3}, {12, 4}, {12, 13}, {13, 0}, {13, 12},
		{14, 1}, {15, 4}, {15, 16}, {16, 1}, {16, 15},
	}
	edges2 := [][2]int{
		{0, 5}, {0, 12}, {1, 6}, {1, 14}, {1, 16}, {2, 7}, {2, 10}, {3, 8}, {3, 11}, {4, 9}, {4, 13}, {4, 15},
		{5, 0}, {6, 1}, {7, 2}, {8, 3}, {9, 4}, {10, 2}, {11, 3}, {12, 0}, {13, 4}, {13, 14}, {14, 1},
		{14, 13}, {15, 4}, {15, 16}, {16, 1}, {16, 15},
	}

	X1 := buildGraph(t, true, labels, edges1)
	X2 := buildGraph(t, true, labels, edges2)
	require.Equal(t, 28, X1.NumEdges())
	require.Equal(t, 28, X2.NumEdges())

	res1, err := canonical.NewRefinement().Calculate(X1, true)
	require.NoError(t, err)
	res2, err := canonical.NewRefinement().Calculate(X2, true)
	require.NoError(t, err)

	assert.Equal(t, res1.Histogram(), res2.Histogram())
	assert.NotEqual(t, res1.FactorMatrix(), res2.FactorMatrix())
}

func TestPermutationInvariance(t *testing.T) {
	labels := []int64{0, 0, 0, 1, 0, 0, 0, 1}
	edges := [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}, {5, 0}, {0, 6}, {6, 7}, {2, 7}, {1, 4}}
	perm := []int{5, 2, 7, 0, 3, 6, 1, 4}

	permLabels := make([]int64, len(labels))
	for v, label := range labels {
		permLabels[perm[v]] = label
	}
	permEdges := make([][2]int, len(edges))
	for i, e := range edges {
		permEdges[len(edges)-1-i] = [2]int{perm[e[1]], perm[e[0]]}
	}

	X1 := buildGraph(t, false, labels, edges)
	X2 := buildGraph(t, false, permLabels, permEdges)

	R := canonical.NewRefinement()
	res1, err := R.Calculate(X1, true)
	require.NoError(t, err)
	res2, err := R.Calculate(X2, true)
	require.NoError(t, err)

	assert.Equal(t, res1.Histogram(), res2.Histogram())
	assert.Equal(t, res1.FactorMatrix(), res2.FactorMatrix())
	assert.Equal(t, res1.InitialLabels(), res2.InitialLabels())

	c1, c2 := res1.Colors(), res2.Colors()
	for v := range c1 {
		assert.Equal(t, c1[v], c2[perm[v]], "vertex %d", v)
	}
}

func TestResultIsEquitableAndStable(t *testing.T) {
	X := graph.MustParse("graph { 0 -- 1 -- 2 -- 3 -- 4; 2 -- 5 -- 6; 6 -- 7; 6 -- 8; 0 -- 9 }")

	R := canonical.NewRefinement(canonical.WithDebug(0))
	res, err := R.Calculate(X, false)
	require.NoError(t, err)

	// every vertex of class i has the same number of neighbors in class j
	colors := res.Colors()
	P := res.Partition()
	for i := 0; i < len(P); i++ {
		require.NotEmpty(t, P[i])
		for j := 0; j < len(P); j++ {
			want := -1
			for _, v := range P[i] {
				n := 0
				for _, w := range X.OutboundAdjacent(v) {
					if colors[w] == wl.Color(j) {
						n++
					}
				}
				if want < 0 {
					want = n
				}
				assert.Equal(t, want, n, "class %d -> %d", i, j)
			}
		}
	}

	// refining an already equitable labeling performs no splits
	Y := graph.NewLabeledGraph(false)
	for _, c := range colors {
		Y.AddNode(int64(c))
	}
	for src := 0; src < X.NumNodes(); src++ {
		for _, dst := range X.OutboundAdjacent(src) {
			if src < dst {
				require.NoError(t, Y.AddEdge(src, dst, 0))
			}
		}
	}
	res2, err := R.Calculate(Y, false)
	require.NoError(t, err)
	assert.Equal(t, 0, res2.NumSplits())
	assert.Equal(t, res.Partition(), res2.Partition())
}

func TestRefinesLabelPartition(t *testing.T) {
	X := graph.MustParse("graph { 0 [1]; 3 [1]; 0 -- 1 -- 2 -- 3 -- 4 -- 5 -- 0 }")

	res, err := canonical.NewRefinement().Calculate(X, false)
	require.NoError(t, err)

	colors := res.Colors()
	for u := 0; u < X.NumNodes(); u++ {
		for v := 0; v < X.NumNodes(); v++ {
			if colors[u] == colors[v] {
				assert.Equal(t, X.NodeLabel(u), X.NodeLabel(v))
			}
		}
	}
	assert.Equal(t, colors[0], colors[3])
	assert.Equal(t, colors[1], colors[2])
	assert.NotEqual(t, colors[0], colors[1])
}

func TestSpectrum(t *testing.T) {
	X := graph.MustParse("graph { 0 -- 1; 0 -- 2; 0 -- 3 }")
	res, err := canonical.NewRefinement().Calculate(X, true)
	require.NoError(t, err)

	assert.Equal(t, wl.FactorMatrix{
		{0, 0, 3}, {0, 1, 1},
		{1, 0, 3}, {1, 1, 1},
	}, res.FactorMatrix())

	Q, err := res.QuotientDense()
	require.NoError(t, err)
	r, c := Q.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 0.0, Q.At(0, 0))
	assert.Equal(t, 1.0, Q.At(0, 1))
	assert.Equal(t, 3.0, Q.At(1, 0))
	assert.Equal(t, 0.0, Q.At(1, 1))

	// the quotient spectrum of K_{1,3} is +-sqrt(3)
	vals, err := res.Spectrum()
	require.NoError(t, err)
	require.Len(t, vals, 2)
	assert.InDelta(t, -math.Sqrt(3), real(vals[0]), 1e-9)
	assert.InDelta(t, math.Sqrt(3), real(vals[1]), 1e-9)
	assert.InDelta(t, 0, imag(vals[0]), 1e-9)
}

func TestColoringToHistogram(t *testing.T) {
	X := graph.MustParse("graph { 0 -- 1; 0 -- 2; 0 -- 3; 3 -- 4 }")
	res, err := canonical.NewRefinement().Calculate(X, false)
	require.NoError(t, err)

	assert.Equal(t, res.Histogram(), canonical.ColoringToHistogram(res.Colors()))
	assert.Equal(t, res.Histogram().Counts(), res.ClassSizes())
	assert.Equal(t, X.NumNodes(), res.Histogram().Total())
}
