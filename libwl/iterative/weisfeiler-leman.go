package iterative

import (
	"github.com/fine-structures/kwl/libwl/color"
	"github.com/fine-structures/kwl/libwl/graph"
	"github.com/fine-structures/kwl/wl"
	"github.com/pkg/errors"
)

// WeisfeilerLeman dispatches to a WL1D (k = 1) or WL2D (k = 2) engine.
type WeisfeilerLeman struct {
	k    int
	opts options

	engine interface {
		Engine
		ComputeColoring(X *graph.LabeledGraph, maxIterations int) (*Outcome, error)
	}
}

// New returns a k-WL engine, where k is 1 or 2.
func New(k int, opts ...Option) (*WeisfeilerLeman, error) {
	if k < 1 || k > wl.MaxDimension {
		return nil, errors.Wrapf(wl.ErrBadDimension, "k = %d", k)
	}

	W := &WeisfeilerLeman{
		k:    k,
		opts: newOptions(opts),
	}
	switch k {
	case 1:
		W.engine = NewWL1D(opts...)
	case 2:
		W.engine = NewWL2D(opts...)
	}
	return W, nil
}

func (W *WeisfeilerLeman) K() int {
	return W.k
}

func (W *WeisfeilerLeman) IgnoreCounting() bool {
	return W.engine.IgnoreCounting()
}

func (W *WeisfeilerLeman) ColoringFunctionSize() int {
	return W.engine.ColoringFunctionSize()
}

// MaxIterations is the round bound used by Refine (0 means unbounded).
func (W *WeisfeilerLeman) MaxIterations() int {
	return W.opts.maxIterations
}

// ComputeColoring refines X until stable or until maxIterations rounds (0 means unbounded).
func (W *WeisfeilerLeman) ComputeColoring(X *graph.LabeledGraph, maxIterations int) (*Outcome, error) {
	return W.engine.ComputeColoring(X, maxIterations)
}

// Refine is ComputeColoring bounded by the WithMaxIterations option.
func (W *WeisfeilerLeman) Refine(X *graph.LabeledGraph) (*Outcome, error) {
	return W.engine.ComputeColoring(X, W.opts.maxIterations)
}

func (W *WeisfeilerLeman) ComputeInitialColoring(X *graph.LabeledGraph) (*color.Coloring, error) {
	return W.engine.ComputeInitialColoring(X)
}

func (W *WeisfeilerLeman) ComputeNextColoring(X *graph.LabeledGraph, cur, next *color.Coloring) (bool, error) {
	return W.engine.ComputeNextColoring(X, cur, next)
}
