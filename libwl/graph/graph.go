package graph

import (
	"fmt"
	"io"
	"strings"

	"github.com/fine-structures/kwl/wl"
	"github.com/pkg/errors"
)

// LabeledGraph is an append-only directed or undirected multigraph where every node and every edge carries a non-negative label.
//
// An undirected edge is materialized as a forward and a reverse edge, each with its own edge ID.
// Once a refinement run begins, a LabeledGraph is treated as immutable.
type LabeledGraph struct {
	directed   bool
	nodeLabels []int64
	edgeLabels []int64
	edgeSrc    []int
	edgeDst    []int
	outEdges   [][]int
	inEdges    [][]int
	outAdj     [][]int
	inAdj      [][]int
	between    []map[int][]int // between[src][dst] lists the edge IDs src -> dst
}

func NewLabeledGraph(directed bool) *LabeledGraph {
	return &LabeledGraph{
		directed: directed,
	}
}

// AddNode appends a node with the given label, returning its (zero-based) node ID.
func (X *LabeledGraph) AddNode(label int64) (int, error) {
	if label < 0 {
		return -1, errors.Wrapf(wl.ErrBadLabel, "node label %d", label)
	}

	node := len(X.nodeLabels)
	X.nodeLabels = append(X.nodeLabels, label)
	X.outEdges = append(X.outEdges, nil)
	X.inEdges = append(X.inEdges, nil)
	X.outAdj = append(X.outAdj, nil)
	X.inAdj = append(X.inAdj, nil)
	X.between = append(X.between, nil)
	return node, nil
}

// AddEdge appends an edge src -> dst (and dst -> src if this graph is undirected).
func (X *LabeledGraph) AddEdge(src, dst int, label int64) error {
	if label < 0 {
		return errors.Wrapf(wl.ErrBadLabel, "edge label %d", label)
	}
	Nv := len(X.nodeLabels)
	if src < 0 || src >= Nv || dst < 0 || dst >= Nv {
		return errors.Wrapf(wl.ErrBadNodeID, "edge %d -> %d (graph has %d nodes)", src, dst, Nv)
	}

	X.appendEdge(src, dst, label)
	if !X.directed {
		X.appendEdge(dst, src, label)
	}
	return nil
}

func (X *LabeledGraph) appendEdge(src, dst int, label int64) {
	edge := len(X.edgeLabels)
	X.edgeLabels = append(X.edgeLabels, label)
	X.edgeSrc = append(X.edgeSrc, src)
	X.edgeDst = append(X.edgeDst, dst)
	X.outEdges[src] = append(X.outEdges[src], edge)
	X.inEdges[dst] = append(X.inEdges[dst], edge)
	X.outAdj[src] = append(X.outAdj[src], dst)
	X.inAdj[dst] = append(X.inAdj[dst], src)

	if X.between[src] == nil {
		X.between[src] = make(map[int][]int)
	}
	X.between[src][dst] = append(X.between[src][dst], edge)
}

func (X *LabeledGraph) IsDirected() bool {
	return X.directed
}

func (X *LabeledGraph) NumNodes() int {
	return len(X.nodeLabels)
}

// NumEdges returns the number of materialized edges (an undirected edge counts twice).
func (X *LabeledGraph) NumEdges() int {
	return len(X.edgeLabels)
}

func (X *LabeledGraph) NodeLabel(node int) int64 {
	return X.nodeLabels[node]
}

func (X *LabeledGraph) EdgeLabel(edge int) int64 {
	return X.edgeLabels[edge]
}

func (X *LabeledGraph) NodeLabels() []int64 {
	return X.nodeLabels
}

func (X *LabeledGraph) EdgeLabels() []int64 {
	return X.edgeLabels
}

func (X *LabeledGraph) Source(edge int) int {
	return X.edgeSrc[edge]
}

func (X *LabeledGraph) Destination(edge int) int {
	return X.edgeDst[edge]
}

func (X *LabeledGraph) OutboundEdges(node int) []int {
	return X.outEdges[node]
}

func (X *LabeledGraph) InboundEdges(node int) []int {
	return X.inEdges[node]
}

// OutboundAdjacent returns the out-neighbors of node, parallel to OutboundEdges(node).
func (X *LabeledGraph) OutboundAdjacent(node int) []int {
	return X.outAdj[node]
}

// InboundAdjacent returns the in-neighbors of node, parallel to InboundEdges(node).
func (X *LabeledGraph) InboundAdjacent(node int) []int {
	return X.inAdj[node]
}

// Edges returns the IDs of all edges src -> dst (nil if there are none).
func (X *LabeledGraph) Edges(src, dst int) []int {
	if X.between[src] == nil {
		return nil
	}
	return X.between[src][dst]
}

// HasOnlyUnlabeledEdges returns true if every edge label is 0.
func (X *LabeledGraph) HasOnlyUnlabeledEdges() bool {
	for _, label := range X.edgeLabels {
		if label != 0 {
			return false
		}
	}
	return true
}

func (X *LabeledGraph) String() string {
	b := strings.Builder{}
	b.Grow(128)
	X.WriteAsString(&b, wl.PrintOpts{Graph: true})
	return b.String()
}

// WriteAsString writes the node count, edge count, labels and adjacency of this graph.
func (X *LabeledGraph) WriteAsString(out io.Writer, opts wl.PrintOpts) {
	if len(opts.Label) > 0 {
		fmt.Fprintf(out, "%s\n", opts.Label)
	}
	fmt.Fprintf(out, "Num nodes: %d\n", X.NumNodes())
	fmt.Fprintf(out, "Num edges: %d\n", X.NumEdges())
	fmt.Fprintf(out, "Node colors: %v\n", X.nodeLabels)
	fmt.Fprintf(out, "Edge colors: %v\n", X.edgeLabels)
	if !opts.Graph {
		return
	}

	if X.directed {
		io.WriteString(out, "Outbound adjacent:\n")
		for v := range X.outAdj {
			fmt.Fprintf(out, "    %d : %v\n", v, X.outAdj[v])
		}
		io.WriteString(out, "Inbound adjacent:\n")
		for v := range X.inAdj {
			fmt.Fprintf(out, "    %d : %v\n", v, X.inAdj[v])
		}
	} else {
		io.WriteString(out, "Undirected edges:\n")
		for v := range X.outAdj {
			fmt.Fprintf(out, "    %d : %v\n", v, X.outAdj[v])
		}
	}
}
