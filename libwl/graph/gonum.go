package graph

import (
	"sort"

	gonum "gonum.org/v1/gonum/graph"
)

// GonumOpts specifies how a gonum graph is imported into a LabeledGraph.
type GonumOpts struct {
	NodeLabel func(n gonum.Node) int64 // nil denotes label 0 for every node
	EdgeLabel func(e gonum.Edge) int64 // nil denotes label 0 for every edge
}

// FromGonum imports g, assigning dense node IDs in ascending order of gonum node ID.
//
// If g implements gonum's graph.Directed, the result is directed; otherwise every gonum edge is added once as an undirected edge.
func FromGonum(g gonum.Graph, opts GonumOpts) (*LabeledGraph, error) {
	_, directed := g.(gonum.Directed)

	nodes := gonum.NodesOf(g.Nodes())
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].ID() < nodes[j].ID()
	})

	X := NewLabeledGraph(directed)
	index := make(map[int64]int, len(nodes))
	for _, n := range nodes {
		label := int64(0)
		if opts.NodeLabel != nil {
			label = opts.NodeLabel(n)
		}
		v, err := X.AddNode(label)
		if err != nil {
			return nil, err
		}
		index[n.ID()] = v
	}

	for _, u := range nodes {
		uid := u.ID()
		to := gonum.NodesOf(g.From(uid))
		sort.Slice(to, func(i, j int) bool {
			return to[i].ID() < to[j].ID()
		})
		for _, w := range to {
			wid := w.ID()
			if !directed && wid < uid {
				continue // added when visiting from the lower ID
			}
			label := int64(0)
			if opts.EdgeLabel != nil {
				label = opts.EdgeLabel(g.Edge(uid, wid))
			}
			if err := X.AddEdge(index[uid], index[wid], label); err != nil {
				return nil, err
			}
		}
	}

	return X, nil
}
