package graph

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fine-structures/kwl/wl"
	"github.com/pkg/errors"
)

// GraphExpr is a DOT-like text form of a LabeledGraph:
//
//	graph { 0 [1]; 1 [1]; 2 [2]; 0 -- 1 -- 2 [5]; }
//	digraph { 0 -> 1; 1 -> 0 -> 2; }
//
// A statement without edges declares a node label; a statement with edges declares an edge run,
// and its optional label applies to every edge in the run.  Nodes are implied by the largest ID mentioned.
type GraphExpr struct {
	Kind  string  `@( "graph" | "digraph" )`
	Stmts []*Stmt `"{" ( @@ ";"? )* "}"`
}

type Stmt struct {
	Head  int64     `@Int`
	Edges []*EdgeTo `@@*`
	Label *int64    `( "[" @Int "]" )?`
}

type EdgeTo struct {
	Op  string `@( "-" ( "-" | ">" ) )`
	Dst int64  `@Int`
}

var parseGraphExpr = participle.MustBuild[GraphExpr]()

// Parse builds a new LabeledGraph from a graph expression (see GraphExpr).
func Parse(graphExpr string) (*LabeledGraph, error) {
	Xexpr, err := parseGraphExpr.ParseString("", graphExpr)
	if err != nil {
		return nil, errors.Wrap(wl.ErrBadGraphExpr, err.Error())
	}

	directed := Xexpr.Kind == "digraph"
	wantOp := "--"
	if directed {
		wantOp = "->"
	}

	// First pass: tally nodes and node labels
	maxID := int64(-1)
	nodeLabels := make(map[int64]int64)
	for _, stmt := range Xexpr.Stmts {
		if stmt.Head > maxID {
			maxID = stmt.Head
		}
		for _, e := range stmt.Edges {
			if e.Op != wantOp {
				return nil, errors.Wrapf(wl.ErrBadGraphExpr, "edge op %q in %s", e.Op, Xexpr.Kind)
			}
			if e.Dst > maxID {
				maxID = e.Dst
			}
		}
		if len(stmt.Edges) == 0 && stmt.Label != nil {
			if prev, exists := nodeLabels[stmt.Head]; exists && prev != *stmt.Label {
				return nil, errors.Wrapf(wl.ErrBadGraphExpr, "node %d labeled both %d and %d", stmt.Head, prev, *stmt.Label)
			}
			nodeLabels[stmt.Head] = *stmt.Label
		}
	}

	X := NewLabeledGraph(directed)
	for v := int64(0); v <= maxID; v++ {
		if _, err = X.AddNode(nodeLabels[v]); err != nil {
			return nil, err
		}
	}

	// Second pass: edge runs
	for _, stmt := range Xexpr.Stmts {
		label := int64(0)
		if stmt.Label != nil {
			label = *stmt.Label
		}
		src := stmt.Head
		for _, e := range stmt.Edges {
			if err = X.AddEdge(int(src), int(e.Dst), label); err != nil {
				return nil, err
			}
			src = e.Dst
		}
	}

	return X, nil
}

// MustParse is like Parse but panics on error.
func MustParse(graphExpr string) *LabeledGraph {
	X, err := Parse(graphExpr)
	if err != nil {
		panic(err)
	}
	return X
}

// WriteExpr writes this graph as a graph expression that Parse reads back into an equal graph.
func (X *LabeledGraph) WriteExpr(out io.Writer) {
	op := "--"
	step := 2 // undirected edges are stored as forward / reverse pairs
	if X.directed {
		io.WriteString(out, "digraph {")
		op = "->"
		step = 1
	} else {
		io.WriteString(out, "graph {")
	}

	for v, label := range X.nodeLabels {
		fmt.Fprintf(out, " %d [%d];", v, label)
	}
	for e := 0; e < len(X.edgeLabels); e += step {
		fmt.Fprintf(out, " %d %s %d", X.edgeSrc[e], op, X.edgeDst[e])
		if label := X.edgeLabels[e]; label != 0 {
			fmt.Fprintf(out, " [%d]", label)
		}
		io.WriteString(out, ";")
	}
	io.WriteString(out, " }")
}

func (X *LabeledGraph) Expr() string {
	b := strings.Builder{}
	b.Grow(16 * (len(X.nodeLabels) + len(X.edgeLabels)))
	X.WriteExpr(&b)
	return b.String()
}
