package canonical

import (
	"math"
	"sort"

	"github.com/fine-structures/kwl/libwl/graph"
	"github.com/fine-structures/kwl/wl"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// Refinement computes the coarsest equitable partition of a vertex-labeled graph that refines its
// label partition, in O((n+m) log n), using the Berkholz-Bonsma-Grohe canonical color refinement.
//
// Each initial class takes the value of its node label as its class id, and every class split off
// afterwards is numbered upward from the largest label.  The numbering depends only on graph structure
// and node labels, so histograms and factor matrices from separate runs (or separate instances) are
// directly comparable.
//
// A Refinement owns its scratch state and is not safe for concurrent use.
type Refinement struct {
	debug int

	P           partition
	work        worklist
	A           [][]int // A[c] are the vertices of class c with an out-neighbor in the class being processed
	cdeg        []int   // cdeg[v] is the number of out-neighbors of v in the class being processed
	maxcdeg     []int
	mincdeg     []int
	colorsAdj   []int // classes touched while processing the popped class
	inColorsAdj []bool
	colorsSplit []int
	numcdeg     []int
	f           []int

	k         int // classes are numbered 1..k internally, in the same order as their class ids
	numSplits int
	labels    []int64 // distinct node labels, ascending

	onSplit func(s int, before []int)
}

type Option func(R *Refinement)

// WithDebug sets the diagnostic verbosity (0 is silent, 1 traces stack pops, 2 traces every split).
func WithDebug(level int) Option {
	return func(R *Refinement) {
		R.debug = level
	}
}

func NewRefinement(opts ...Option) *Refinement {
	R := &Refinement{}
	for _, opt := range opts {
		opt(R)
	}
	return R
}

// ColoringFunctionSize returns the largest class id issued by the most recent Calculate.
func (R *Refinement) ColoringFunctionSize() int {
	return int(R.classID(R.k))
}

func (R *Refinement) reset(Nv int) {
	Nc := Nv + 1 // class 0 is a sentinel and every other class is nonempty, so k <= Nv

	R.P.reset(Nv, Nc)
	R.work.reset(Nc)
	R.cdeg = resizeInts(R.cdeg, Nv)
	R.maxcdeg = resizeInts(R.maxcdeg, Nc)
	R.mincdeg = resizeInts(R.mincdeg, Nc)
	for c := range R.mincdeg {
		R.mincdeg[c] = -1
	}

	if cap(R.A) < Nc {
		R.A = make([][]int, Nc)
	} else {
		R.A = R.A[:Nc]
	}
	for c := range R.A {
		R.A[c] = R.A[c][:0]
	}

	if cap(R.inColorsAdj) < Nc {
		R.inColorsAdj = make([]bool, Nc)
	} else {
		R.inColorsAdj = R.inColorsAdj[:Nc]
		for c := range R.inColorsAdj {
			R.inColorsAdj[c] = false
		}
	}
	R.colorsAdj = R.colorsAdj[:0]
	R.colorsSplit = R.colorsSplit[:0]
	R.k = 0
	R.numSplits = 0
	R.labels = R.labels[:0]
}

// classID maps an internal class number to its class id.
func (R *Refinement) classID(c int) wl.Color {
	d := len(R.labels)
	if c <= d {
		if c == 0 {
			return 0
		}
		return wl.Color(R.labels[c-1])
	}
	return wl.Color(R.labels[d-1]) + wl.Color(c-d)
}

// Calculate refines the label partition of X to its coarsest equitable refinement.
//
// Only vertex-labeled graphs are supported: any nonzero edge label returns wl.ErrUnsupportedInput before any work is done.
// If factorMatrix is set, the sparse quotient matrix of the result is also computed.
func (R *Refinement) Calculate(X *graph.LabeledGraph, factorMatrix bool) (*Result, error) {
	if X == nil {
		return nil, wl.ErrNilGraph
	}
	if !X.HasOnlyUnlabeledEdges() {
		return nil, errors.Wrap(wl.ErrUnsupportedInput, "graph has labeled edges")
	}

	Nv := X.NumNodes()
	for _, label := range X.NodeLabels() {
		if label > math.MaxInt64-int64(Nv) {
			return nil, errors.Wrapf(wl.ErrOverflow, "node label %d leaves no room for split class ids", label)
		}
	}
	R.reset(Nv)

	// Initial partition: one class per distinct node label.  Internal numbers follow ascending label order,
	// which keeps them in the same order as the class ids they stand for.
	R.labels = appendDistinctLabels(R.labels, X.NodeLabels())
	classOf := make(map[int64]int, len(R.labels))
	for i, label := range R.labels {
		classOf[label] = i + 1
	}
	for v := 0; v < Nv; v++ {
		R.P.add(v, classOf[X.NodeLabel(v)])
	}
	R.k = len(R.labels)

	for c := 1; c <= R.k; c++ {
		R.work.push(c)
	}

	if R.debug > 0 {
		klog.Infof("canonical: %d nodes, %d edges, %d initial classes", Nv, X.NumEdges(), R.k)
	}

	for !R.work.empty() {
		r := R.work.pop()
		if R.debug > 0 {
			klog.Infof("canonical: pop class %d (|C|=%d), stack %v", r, R.P.size(r), R.work.values())
		}

		// Compute color degrees, max color degrees, A[c], and colorsAdj
		for _, v := range R.P.classes[r] {
			for _, w := range X.InboundAdjacent(v) {
				cw := R.P.colour[w]
				R.cdeg[w]++
				if R.cdeg[w] == 1 {
					R.A[cw] = append(R.A[cw], w)
				}
				if !R.inColorsAdj[cw] {
					R.inColorsAdj[cw] = true
					R.colorsAdj = append(R.colorsAdj, cw)
				}
				if R.cdeg[w] > R.maxcdeg[cw] {
					R.maxcdeg[cw] = R.cdeg[w]
				}
			}
		}

		// Untouched vertices have color degree 0
		for _, c := range R.colorsAdj {
			if R.P.size(c) != len(R.A[c]) {
				R.mincdeg[c] = 0
			} else {
				R.mincdeg[c] = R.maxcdeg[c]
				for _, v := range R.A[c] {
					if R.cdeg[v] < R.mincdeg[c] {
						R.mincdeg[c] = R.cdeg[v]
					}
				}
			}
		}

		// Split in ascending class order so that the numbering of new classes is canonical
		R.colorsSplit = R.colorsSplit[:0]
		for _, c := range R.colorsAdj {
			if R.mincdeg[c] < R.maxcdeg[c] {
				R.colorsSplit = append(R.colorsSplit, c)
			}
		}
		sort.Ints(R.colorsSplit)

		for _, s := range R.colorsSplit {
			R.splitUpColor(s)
		}

		for _, c := range R.colorsAdj {
			for _, v := range R.A[c] {
				R.cdeg[v] = 0
			}
			R.mincdeg[c] = -1
			R.maxcdeg[c] = 0
			R.A[c] = R.A[c][:0]
			R.inColorsAdj[c] = false
		}
		R.colorsAdj = R.colorsAdj[:0]
	}

	res := R.exportResult()
	if factorMatrix {
		calcFactorMatrix(X, res, R.P.colour)
	}
	return res, nil
}

// splitUpColor splits class s by color degree.
//
// The bucket keeping class s is the one at mincdeg[s].  The largest bucket b is not scheduled
// unless s was already pending, which is what bounds the total work to O((n+m) log n).
func (R *Refinement) splitUpColor(s int) {
	maxcdeg := R.maxcdeg[s]
	R.numcdeg = resizeInts(R.numcdeg, maxcdeg+1)
	numcdeg := R.numcdeg

	As := R.A[s]
	for _, v := range As {
		numcdeg[R.cdeg[v]]++
	}
	numcdeg[0] = R.P.size(s) - len(As)

	b := 0
	for i := 1; i <= maxcdeg; i++ {
		if numcdeg[i] > numcdeg[b] {
			b = i
		}
	}

	inStack := R.work.contains(s)

	var before []int
	if R.onSplit != nil {
		before = append(before, R.P.classes[s]...)
	}

	R.f = resizeInts(R.f, maxcdeg+1)
	f := R.f
	for i := 0; i <= maxcdeg; i++ {
		f[i] = -1
		if numcdeg[i] == 0 {
			continue
		}
		if i == R.mincdeg[s] {
			f[i] = s
			if !inStack && i != b {
				R.work.push(s)
			}
		} else {
			R.k++
			f[i] = R.k
			if inStack || i != b {
				R.work.push(R.k)
			}
		}
	}

	if R.debug > 1 {
		klog.Infof("canonical: split class %d: numcdeg=%v b=%d inStack=%v f=%v", s, numcdeg, b, inStack, f)
	}

	for _, v := range As {
		if dst := f[R.cdeg[v]]; dst != s {
			R.P.moveVertex(v, s, dst)
		}
	}
	R.numSplits++

	if R.onSplit != nil {
		R.onSplit(s, before)
	}
}

func (R *Refinement) exportResult() *Result {
	res := &Result{
		ids:       make([]wl.Color, R.k),
		classes:   make([][]int, R.k),
		colours:   make([]wl.Color, len(R.P.colour)),
		labels:    append([]int64(nil), R.labels...),
		numSplits: R.numSplits,
	}

	// Trim the sentinel class 0
	for c := 1; c <= R.k; c++ {
		Cc := append([]int(nil), R.P.classes[c]...)
		sort.Ints(Cc)
		res.classes[c-1] = Cc
		res.ids[c-1] = R.classID(c)
	}
	for v, c := range R.P.colour {
		res.colours[v] = res.ids[c-1]
	}
	return res
}

func appendDistinctLabels(labels []int64, nodeLabels []int64) []int64 {
	labels = append(labels[:0], nodeLabels...)
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	L := 0
	for R := 1; R < len(labels); R++ {
		if labels[R] != labels[L] {
			L++
			labels[L] = labels[R]
		}
	}
	if len(labels) > 0 {
		labels = labels[:L+1]
	}
	return labels
}
