package wl

import "io"

const (

	// MaxDimension is the largest supported Weisfeiler-Leman dimension.
	MaxDimension = 2

	// DefaultCatalogDesig is the designation stamped into newly created catalogs.
	DefaultCatalogDesig = "K1"
)

// Color is a dense id issued by a color registry or a partition class id.
//
// A Color is only meaningful relative to the registry (or refinement run) that issued it.
type Color int64

// HistogramEntry is one (color, occurrence count) pair of a Histogram.
type HistogramEntry struct {
	Color Color
	Count int
}

// Histogram is a color frequency table, sorted ascending by Color.
type Histogram []HistogramEntry

// FactorEntry is a nonzero entry of a quotient ("factor") matrix.
// Row and Col are class ids.
type FactorEntry struct {
	Row   int
	Col   int
	Count int
}

// FactorMatrix is the sparse quotient matrix of an equitable partition, in row-major order.
type FactorMatrix []FactorEntry

// Fingerprint is a canonical binary encoding of a graph invariant, suitable as a hash or db key.
type Fingerprint []byte

// Refiner is implemented by engines that refine a coloring to a fixed point.
type Refiner interface {

	// ColoringFunctionSize returns the number of distinct colors this engine has issued.
	ColoringFunctionSize() int
}

// PrintOpts specifies what is printed for a refined graph
type PrintOpts struct {
	Label     string // Prefix label
	Graph     bool   // If set, prints the graph's nodes and adjacency
	Histogram bool   // If set, prints the (color, count) histogram
	Factor    bool   // If set, prints the sparse quotient matrix
	Spectrum  bool   // If set, prints the quotient matrix eigenvalues
}

// DefaultPrintOpts prints each result with its color histogram.
var DefaultPrintOpts = PrintOpts{
	Histogram: true,
}

// Printer is implemented by types that can write themselves in human readable form.
type Printer interface {
	WriteAsString(out io.Writer, opts PrintOpts)
}

// CatalogContext is a container for open / active Catalog instances.
type CatalogContext interface {

	// Attaches the given Catalog to this context.
	AttachCatalog(cat Catalog)

	// Detaches the given Catalog from this context.
	DetachCatalog(cat Catalog)

	// Closes all open catalogs then closes.
	Close()

	// Signals when Close() completed and all open Catalogs have been closed
	Done() <-chan struct{}
}

// CatalogOpts specifies params for opening a fingerprint Catalog
type CatalogOpts struct {
	DbPathName string // omit for in-memory db
	ReadOnly   bool   // open in read-only mode
}

// CatalogEntry is a fingerprint and the names of all graphs added under it.
type CatalogEntry struct {
	Fingerprint Fingerprint
	Names       []string
}

// OnEntryHit is a callback channel used to return catalog entries meeting a selection.
type OnEntryHit chan<- CatalogEntry

type GraphAdder interface {

	// Tries to add the named graph under the given fingerprint.
	// If true is returned, no graph with an equal fingerprint existed before this call.
	TryAddGraph(name string, fp Fingerprint) (bool, error)

	Close() error
}

// Catalog groups graph names by canonical fingerprint.
//
// Graphs sharing a fingerprint are indistinguishable by color refinement; graphs with
// differing fingerprints are certainly non-isomorphic.
type Catalog interface {
	GraphAdder

	// Returns true if this catalog was opened for read-only access.
	IsReadOnly() bool

	// Lookup returns the names of graphs added under fp (nil if none).
	Lookup(fp Fingerprint) ([]string, error)

	// NumGraphs returns the number of graphs added to this catalog.
	NumGraphs() int64

	// NumClasses returns the number of distinct fingerprints in this catalog.
	NumClasses() int64

	// Select sends every entry of this catalog to onHit, in fingerprint order.
	Select(onHit OnEntryHit) error
}
