package iterative

import (
	"github.com/fine-structures/kwl/libwl/color"
	"github.com/fine-structures/kwl/libwl/graph"
	"github.com/fine-structures/kwl/wl"
	"github.com/pkg/errors"
)

// WL2D is folklore 2-WL: it colors ordered node pairs (i, j), stored row-major at i*n + j.
//
// The initial color of (i, j) encodes both node labels and every edge between i and j, with
// self-loops tagged apart from ordinary edges.  Each round composes (color(i,k), color(k,j)) over all k,
// so a round is Θ(n³).
type WL2D struct {
	refiner
}

func NewWL2D(opts ...Option) *WL2D {
	o := newOptions(opts)
	return &WL2D{
		refiner: refiner{
			name: "wl2d",
			reg:  color.NewRegistry(o.ignoreCounting),
			opts: o,
		},
	}
}

// ComputeColoring refines X until stable or until maxIterations rounds (0 means unbounded).
func (W *WL2D) ComputeColoring(X *graph.LabeledGraph, maxIterations int) (*Outcome, error) {
	return computeColoring(W, W.name, W.opts.debug, X, maxIterations)
}

func (W *WL2D) ComputeInitialColoring(X *graph.LabeledGraph) (*color.Coloring, error) {
	if X == nil {
		return nil, wl.ErrNilGraph
	}

	// Every pairing is checked up front so that an overflow leaves the registry untouched.
	if err := checkPairings(X); err != nil {
		return nil, err
	}

	Nv := X.NumNodes()
	C := W.reg.NewColoring(Nv * Nv)
	for i := 0; i < Nv; i++ {
		for j := 0; j < Nv; j++ {
			C.Colors[i*Nv+j] = W.subgraphColor(X, i, j)
		}
	}
	return C, nil
}

// subgraphColor issues the color of the subgraph induced by nodes i and j.
func (W *WL2D) subgraphColor(X *graph.LabeledGraph, i, j int) wl.Color {
	li, lj := X.NodeLabel(i), X.NodeLabel(j)

	W.ctx.Color = -mustPair(li, lj) - 1
	W.ctx.First = appendEdgeTags(W.ctx.First[:0], X, X.Edges(i, j), 0, lj)
	W.ctx.First = appendEdgeTags(W.ctx.First, X, X.Edges(i, i), 1, li)
	W.ctx.Second = appendEdgeTags(W.ctx.Second[:0], X, X.Edges(j, i), 0, li)
	W.ctx.Second = appendEdgeTags(W.ctx.Second, X, X.Edges(j, j), 1, lj)
	return W.reg.ColorOf(&W.ctx)
}

func (W *WL2D) ComputeNextColoring(X *graph.LabeledGraph, cur, next *color.Coloring) (bool, error) {
	if X == nil {
		return false, wl.ErrNilGraph
	}
	Nv := X.NumNodes()
	if err := W.checkColorings(cur, next, Nv*Nv); err != nil {
		return false, err
	}

	for i := 0; i < Nv; i++ {
		for j := 0; j < Nv; j++ {
			ij := i*Nv + j
			W.ctx.Color = int64(cur.Colors[ij])
			W.ctx.First = W.ctx.First[:0]
			W.ctx.Second = W.ctx.Second[:0]
			for k := 0; k < Nv; k++ {
				W.ctx.First = append(W.ctx.First, color.AdjacentColor{
					A: int64(cur.Colors[i*Nv+k]),
					B: int64(cur.Colors[k*Nv+j]),
				})
			}
			next.Colors[ij] = W.reg.ColorOf(&W.ctx)
		}
	}

	return cur.IsIdenticalTo(next)
}

// appendEdgeTags appends (Pair(tag, edge label), nodeLabel) for each of the given edges.
func appendEdgeTags(dst []color.AdjacentColor, X *graph.LabeledGraph, edges []int, tag, nodeLabel int64) []color.AdjacentColor {
	for _, e := range edges {
		dst = append(dst, color.AdjacentColor{
			A: mustPair(tag, X.EdgeLabel(e)),
			B: nodeLabel,
		})
	}
	return dst
}

func checkPairings(X *graph.LabeledGraph) error {
	labels := make(map[int64]struct{})
	for _, label := range X.NodeLabels() {
		labels[label] = struct{}{}
	}
	for li := range labels {
		for lj := range labels {
			if _, err := wl.Pair(li, lj); err != nil {
				return errors.Wrapf(err, "node labels (%d, %d)", li, lj)
			}
		}
	}
	for _, label := range X.EdgeLabels() {
		for tag := int64(0); tag <= 1; tag++ {
			if _, err := wl.Pair(tag, label); err != nil {
				return errors.Wrapf(err, "edge label %d", label)
			}
		}
	}
	return nil
}

func mustPair(x, y int64) int64 {
	z, err := wl.Pair(x, y)
	if err != nil {
		panic(err)
	}
	return z
}
