package iterative

import (
	"github.com/fine-structures/kwl/libwl/color"
	"github.com/fine-structures/kwl/libwl/graph"
	"github.com/fine-structures/kwl/wl"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// Outcome is the result of running a WL engine to a fixed point (or to its iteration bound).
type Outcome struct {
	Stabilized bool            // true if the last round made no new distinctions
	Iterations int             // number of refinement rounds performed
	Histogram  wl.Histogram    // (color, count) of the final coloring, sorted by color
	Coloring   *color.Coloring // final coloring
}

// Engine is the expert interface shared by WL1D, WL2D and WeisfeilerLeman.
type Engine interface {
	wl.Refiner

	IgnoreCounting() bool

	// ComputeInitialColoring colors X from its labels alone.
	ComputeInitialColoring(X *graph.LabeledGraph) (*color.Coloring, error)

	// ComputeNextColoring performs one refinement round from cur into next, returning true if next equals cur up to a constant shift.
	ComputeNextColoring(X *graph.LabeledGraph, cur, next *color.Coloring) (bool, error)
}

// refiner holds the state common to both dimensions.
type refiner struct {
	name string
	reg  *color.Registry
	opts options
	ctx  color.Context
}

func (R *refiner) IgnoreCounting() bool {
	return R.reg.IgnoreCounting()
}

func (R *refiner) ColoringFunctionSize() int {
	return R.reg.Size()
}

// checkColorings validates cur and next before a round touches any state.
func (R *refiner) checkColorings(cur, next *color.Coloring, N int) error {
	if cur == nil || next == nil {
		return errors.Wrap(wl.ErrColoringSize, "nil coloring")
	}
	if cur.Registry != R.reg.ID() || next.Registry != R.reg.ID() {
		return wl.ErrForeignColoring
	}
	if cur.Len() != N || next.Len() != N {
		return errors.Wrapf(wl.ErrColoringSize, "%s expects %d colors, got %d and %d", R.name, N, cur.Len(), next.Len())
	}
	return nil
}

// computeColoring runs E from the initial coloring until stable or until maxIterations rounds (0 means unbounded).
func computeColoring(E Engine, name string, debug int, X *graph.LabeledGraph, maxIterations int) (*Outcome, error) {
	cur, err := E.ComputeInitialColoring(X)
	if err != nil {
		return nil, err
	}
	next := cur.Clone()

	out := &Outcome{}
	for {
		out.Iterations++

		stable, err := E.ComputeNextColoring(X, cur, next)
		if err != nil {
			return nil, err
		}
		cur, next = next, cur

		if debug > 0 {
			klog.Infof("%s: iteration %d: %d colors (registry size %d)", name, out.Iterations, cur.NumColors(), E.ColoringFunctionSize())
		}

		if stable {
			out.Stabilized = true
			break
		}
		if out.Iterations == maxIterations {
			break
		}
	}

	out.Histogram = cur.Histogram()
	out.Coloring = cur
	return out, nil
}
