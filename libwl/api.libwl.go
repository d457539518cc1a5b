package libwl

import (
	"fmt"
	"io"

	"github.com/fine-structures/kwl/libwl/canonical"
	"github.com/fine-structures/kwl/libwl/graph"
	"github.com/fine-structures/kwl/libwl/iterative"
	"github.com/fine-structures/kwl/wl"
)

// FingerprintKind is the leading varint of every Fingerprint.
type FingerprintKind uint64

const (

	// CanonicalKind fingerprints come from canonical color refinement and are comparable across processes.
	CanonicalKind FingerprintKind = 1

	// HistogramKind fingerprints come from a WL engine and are only comparable for the same engine instance.
	HistogramKind FingerprintKind = 2
)

// Item is a named graph travelling through a GraphStream, along with whatever stages have computed for it.
//
// Ownership of an Item travels with it through the stream.
type Item struct {
	Name        string
	Graph       *graph.LabeledGraph
	Canonical   *canonical.Result  // set by Refine
	Outcome     *iterative.Outcome // set by RefineWL
	Fingerprint wl.Fingerprint
	Err         error // first error a stage hit for this item
}

func (item *Item) WriteAsString(out io.Writer, opts wl.PrintOpts) {
	if opts.Label != "" {
		fmt.Fprintf(out, "%s,", opts.Label)
	}
	fmt.Fprintf(out, "%s", item.Name)

	if item.Err != nil {
		fmt.Fprintf(out, "  error: %v\n", item.Err)
		return
	}
	if item.Fingerprint != nil {
		fmt.Fprintf(out, "  fp: %x", []byte(item.Fingerprint))
	}
	out.Write([]byte("\n"))

	if opts.Graph && item.Graph != nil {
		item.Graph.WriteAsString(out, opts)
	}

	sub := opts
	sub.Label = ""
	if item.Canonical != nil {
		item.Canonical.WriteAsString(out, sub)
	}
	if item.Outcome != nil {
		fmt.Fprintf(out, "  stable: %v  iterations: %d  colors: %d\n", item.Outcome.Stabilized, item.Outcome.Iterations, len(item.Outcome.Histogram))
		if opts.Histogram {
			out.Write([]byte("  histogram: "))
			item.Outcome.Histogram.WriteAsString(out)
			out.Write([]byte("\n"))
		}
	}
}
