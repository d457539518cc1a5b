package iterative

import (
	"github.com/fine-structures/kwl/libwl/color"
	"github.com/fine-structures/kwl/libwl/graph"
	"github.com/fine-structures/kwl/wl"
)

// WL1D is classic color refinement (1-WL) over directed, edge- and node-labeled multigraphs.
//
// A node's next color is derived from its current color plus the multiset of (neighbor color, edge label)
// over its outbound edges and, for directed graphs, over its inbound edges as well.
// All colors issued by one WL1D are comparable, including across graphs.
type WL1D struct {
	refiner
}

func NewWL1D(opts ...Option) *WL1D {
	o := newOptions(opts)
	return &WL1D{
		refiner: refiner{
			name: "wl1d",
			reg:  color.NewRegistry(o.ignoreCounting),
			opts: o,
		},
	}
}

// ComputeColoring refines X until stable or until maxIterations rounds (0 means unbounded).
func (W *WL1D) ComputeColoring(X *graph.LabeledGraph, maxIterations int) (*Outcome, error) {
	return computeColoring(W, W.name, W.opts.debug, X, maxIterations)
}

func (W *WL1D) ComputeInitialColoring(X *graph.LabeledGraph) (*color.Coloring, error) {
	if X == nil {
		return nil, wl.ErrNilGraph
	}

	Nv := X.NumNodes()
	C := W.reg.NewColoring(Nv)
	for v := 0; v < Nv; v++ {
		W.ctx.Color = -X.NodeLabel(v) - 1
		W.ctx.First = W.ctx.First[:0]
		W.ctx.Second = W.ctx.Second[:0]
		C.Colors[v] = W.reg.ColorOf(&W.ctx)
	}
	return C, nil
}

func (W *WL1D) ComputeNextColoring(X *graph.LabeledGraph, cur, next *color.Coloring) (bool, error) {
	if X == nil {
		return false, wl.ErrNilGraph
	}
	Nv := X.NumNodes()
	if err := W.checkColorings(cur, next, Nv); err != nil {
		return false, err
	}

	directed := X.IsDirected()
	for v := 0; v < Nv; v++ {
		W.ctx.Color = int64(cur.Colors[v])
		W.ctx.First = appendAdjacent(W.ctx.First[:0], X, cur, X.OutboundEdges(v), X.OutboundAdjacent(v))
		W.ctx.Second = W.ctx.Second[:0]
		if directed {
			W.ctx.Second = appendAdjacent(W.ctx.Second, X, cur, X.InboundEdges(v), X.InboundAdjacent(v))
		}
		next.Colors[v] = W.reg.ColorOf(&W.ctx)
	}

	return cur.IsIdenticalTo(next)
}

// appendAdjacent appends (neighbor color, edge label) for each edge / neighbor pair.
func appendAdjacent(dst []color.AdjacentColor, X *graph.LabeledGraph, cur *color.Coloring, edges, nbrs []int) []color.AdjacentColor {
	for i, e := range edges {
		dst = append(dst, color.AdjacentColor{
			A: int64(cur.Colors[nbrs[i]]),
			B: X.EdgeLabel(e),
		})
	}
	return dst
}
