package canonical

import (
	"fmt"
	"io"
	"sort"

	"github.com/fine-structures/kwl/libwl/graph"
	"github.com/fine-structures/kwl/wl"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Result is the outcome of a canonical color refinement.
//
// Class ids are assigned deterministically (initial classes by label value, split classes upward from
// the largest label), so two isomorphic inputs produce identical histograms and factor matrices.
type Result struct {
	ids       []wl.Color // ids[i] is the id of classes[i], ascending
	classes   [][]int    // nonempty classes, each sorted ascending
	colours   []wl.Color // colours[v] is the class id of vertex v
	labels    []int64    // distinct node labels, ascending
	factor    wl.FactorMatrix
	selfDeg   []int // selfDeg[i] is the number of neighbors a vertex of classes[i] has within its own class
	numSplits int
}

// MaxClassID returns the largest class id in use, or -1 if there are no classes.
func (res *Result) MaxClassID() wl.Color {
	if len(res.ids) == 0 {
		return -1
	}
	return res.ids[len(res.ids)-1]
}

// Partition returns the vertex classes indexed by class id.  Ids that no vertex carries (labels absent
// from the graph) hold an empty class.
func (res *Result) Partition() [][]int {
	P := make([][]int, res.MaxClassID()+1)
	for i, Ci := range res.classes {
		P[res.ids[i]] = append([]int(nil), Ci...)
	}
	return P
}

// Colors returns the class id of each vertex.
func (res *Result) Colors() []wl.Color {
	return append([]wl.Color(nil), res.colours...)
}

// Histogram returns (class id, class size) for every nonempty class, in class id order.
func (res *Result) Histogram() wl.Histogram {
	hist := make(wl.Histogram, len(res.classes))
	for i, Ci := range res.classes {
		hist[i] = wl.HistogramEntry{
			Color: res.ids[i],
			Count: len(Ci),
		}
	}
	return hist
}

// ClassSizes returns the size of every class indexed by class id, with zero for ids no vertex carries.
func (res *Result) ClassSizes() []int {
	sizes := make([]int, res.MaxClassID()+1)
	for i, Ci := range res.classes {
		sizes[res.ids[i]] = len(Ci)
	}
	return sizes
}

// InitialLabels returns the distinct node labels of the graph, ascending.  Each is also the id of its initial class.
func (res *Result) InitialLabels() []int64 {
	return append([]int64(nil), res.labels...)
}

// FactorMatrix returns the sparse quotient matrix, or nil if it was not requested.
func (res *Result) FactorMatrix() wl.FactorMatrix {
	return res.factor
}

// NumColors returns the number of nonempty classes.
func (res *Result) NumColors() int {
	return len(res.classes)
}

// NumSplits is the number of class splits performed.  It is zero iff the label partition was already equitable.
func (res *Result) NumSplits() int {
	return res.numSplits
}

// indexOf returns the position of class id c among the nonempty classes.
func (res *Result) indexOf(c wl.Color) int {
	return sort.Search(len(res.ids), func(i int) bool { return res.ids[i] >= c })
}

// QuotientDense returns the quotient matrix of the equitable partition as a dense k x k matrix over the
// k nonempty classes in class id order (nil if there are no classes).
//
// Unlike FactorMatrix, whose diagonal holds class sizes, the diagonal here is the within-class degree.
func (res *Result) QuotientDense() (*mat.Dense, error) {
	if res.factor == nil && len(res.classes) > 0 {
		return nil, wl.ErrNoFactorMatrix
	}
	k := len(res.classes)
	if k == 0 {
		return nil, nil
	}
	Q := mat.NewDense(k, k, nil)
	for _, e := range res.factor {
		if e.Row != e.Col {
			Q.Set(res.indexOf(wl.Color(e.Row)), res.indexOf(wl.Color(e.Col)), float64(e.Count))
		}
	}
	for i, d := range res.selfDeg {
		Q.Set(i, i, float64(d))
	}
	return Q, nil
}

// Spectrum returns the eigenvalues of the quotient matrix, sorted by real part then imaginary part.
//
// The quotient spectrum is a subset of the adjacency spectrum of the graph.
func (res *Result) Spectrum() ([]complex128, error) {
	Q, err := res.QuotientDense()
	if err != nil || Q == nil {
		return nil, err
	}

	var eig mat.Eigen
	if !eig.Factorize(Q, mat.EigenNone) {
		return nil, errors.New("quotient eigen decomposition did not converge")
	}
	vals := eig.Values(nil)
	sort.Slice(vals, func(i, j int) bool {
		if real(vals[i]) != real(vals[j]) {
			return real(vals[i]) < real(vals[j])
		}
		return imag(vals[i]) < imag(vals[j])
	})
	return vals, nil
}

func (res *Result) WriteAsString(out io.Writer, opts wl.PrintOpts) {
	if opts.Label != "" {
		fmt.Fprintf(out, "%s  ", opts.Label)
	}
	fmt.Fprintf(out, "colors: %d  splits: %d\n", res.NumColors(), res.numSplits)
	if opts.Histogram {
		out.Write([]byte("  histogram: "))
		res.Histogram().WriteAsString(out)
		out.Write([]byte("\n"))
	}
	if opts.Factor && res.factor != nil {
		out.Write([]byte("  factor: "))
		res.factor.WriteAsString(out)
		out.Write([]byte("\n"))
	}
	if opts.Spectrum {
		if vals, err := res.Spectrum(); err == nil {
			out.Write([]byte("  spectrum:"))
			for _, v := range vals {
				if imag(v) == 0 {
					fmt.Fprintf(out, " %.4f", real(v))
				} else {
					fmt.Fprintf(out, " %.4f", v)
				}
			}
			out.Write([]byte("\n"))
		}
	}
}

// calcFactorMatrix emits, for each class in id order, the number of out-neighbors its
// smallest vertex has in every other class.  The diagonal holds the class size.
//
// colour holds the internal class number (1..k, in class id order) of each vertex.
func calcFactorMatrix(X *graph.LabeledGraph, res *Result, colour []int) {
	k := len(res.classes)
	res.selfDeg = make([]int, k)
	counts := make([]int, k+1)
	touched := make([]int, 0, k)

	var factor wl.FactorMatrix
	for i, Ci := range res.classes {
		row := i + 1
		rep := Ci[0]
		for _, w := range X.OutboundAdjacent(rep) {
			c := colour[w]
			if counts[c] == 0 {
				touched = append(touched, c)
			}
			counts[c]++
		}
		res.selfDeg[i] = counts[row]
		if counts[row] == 0 {
			touched = append(touched, row)
		}
		counts[row] = len(Ci)

		sort.Ints(touched)
		for _, c := range touched {
			factor = append(factor, wl.FactorEntry{
				Row:   int(res.ids[i]),
				Col:   int(res.ids[c-1]),
				Count: counts[c],
			})
			counts[c] = 0
		}
		touched = touched[:0]
	}
	res.factor = factor
}

// ColoringToHistogram tallies a per-vertex class assignment into (class id, size) pairs, sorted by class id.
func ColoringToHistogram(colors []wl.Color) wl.Histogram {
	counts := make(map[wl.Color]int)
	for _, c := range colors {
		counts[c]++
	}
	hist := make(wl.Histogram, 0, len(counts))
	for c, n := range counts {
		hist = append(hist, wl.HistogramEntry{Color: c, Count: n})
	}
	hist.Sort()
	return hist
}
