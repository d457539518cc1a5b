package libwl

import (
	"io"
	"strings"

	"github.com/fine-structures/kwl/libwl/canonical"
	"github.com/fine-structures/kwl/libwl/graph"
	"github.com/fine-structures/kwl/libwl/iterative"
	"github.com/fine-structures/kwl/wl"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// GraphStream is one stage of a pipeline of named graphs.
//
// Each stage runs in its own goroutine, owns whatever engine it uses, and closes its Outlet once its inlet is drained.
type GraphStream struct {
	Outlet chan *Item
}

func NewGraphStream() *GraphStream {
	stream := &GraphStream{
		Outlet: make(chan *Item),
	}
	return stream
}

// StreamGraph returns a stream that emits a single named graph.
func StreamGraph(name string, X *graph.LabeledGraph) *GraphStream {
	return StreamItems([]*Item{{Name: name, Graph: X}})
}

// StreamItems returns a stream that emits the given items in order.
func StreamItems(items []*Item) *GraphStream {
	next := NewGraphStream()

	go func() {
		for _, item := range items {
			next.Outlet <- item
		}
		next.Close()
	}()

	return next
}

func (stream *GraphStream) Close() {
	if stream.Outlet != nil {
		close(stream.Outlet)
	}
}

func (stream *GraphStream) PushGraph(name string, X *graph.LabeledGraph) {
	stream.Outlet <- &Item{Name: name, Graph: X}
}

func (stream *GraphStream) PullItem() *Item {
	item := <-stream.Outlet
	return item
}

// PullAll drains this stream and returns the number of items received.
func (stream *GraphStream) PullAll() int {
	count := int(0)
	for range stream.Outlet {
		count++
	}
	return count
}

// PullErrs drains this stream and returns the number of items received without an error, along with the errors of the rest.
func (stream *GraphStream) PullErrs() (int, []error) {
	count := int(0)
	var errs []error
	for item := range stream.Outlet {
		if item.Err != nil {
			errs = append(errs, item.Err)
		} else {
			count++
		}
	}
	return count, errs
}

// Collect drains this stream and returns every item received.
func (stream *GraphStream) Collect() []*Item {
	var items []*Item
	for item := range stream.Outlet {
		items = append(items, item)
	}
	return items
}

// nextStage starts a goroutine that feeds every item of this stream to process; onDone (if given) runs once the inlet is drained.
func (stream *GraphStream) nextStage(process func(item *Item, next *GraphStream), onDone func()) *GraphStream {
	next := &GraphStream{
		Outlet: make(chan *Item, 1),
	}

	go func() {
		for item := range stream.Outlet {
			process(item, next)
		}
		if onDone != nil {
			onDone()
		}
		next.Close()
	}()

	return next
}

// Refine runs canonical color refinement (with factor matrix) on each item and sets its canonical fingerprint.
func (stream *GraphStream) Refine(opts ...canonical.Option) *GraphStream {
	R := canonical.NewRefinement(opts...)

	return stream.nextStage(func(item *Item, next *GraphStream) {
		if item.Err == nil {
			item.Canonical, item.Err = R.Calculate(item.Graph, true)
			if item.Err == nil {
				item.Fingerprint, item.Err = CanonicalFingerprint(item.Canonical)
			}
		}
		next.Outlet <- item
	}, nil)
}

// RefineWL runs W on each item and sets its histogram fingerprint.
//
// All items share W so that their fingerprints are comparable with each other.
func (stream *GraphStream) RefineWL(W *iterative.WeisfeilerLeman) *GraphStream {
	return stream.nextStage(func(item *Item, next *GraphStream) {
		if item.Err == nil {
			item.Outcome, item.Err = W.Refine(item.Graph)
			if item.Err == nil {
				item.Fingerprint = HistogramFingerprint(W.K(), item.Outcome.Histogram)
			}
		}
		next.Outlet <- item
	}, nil)
}

// AddTo files each item's fingerprint with target, passing on only the items that started a new class.
//
// Items that carry an error are passed on untouched, and an item that target fails to file is passed on
// with that error, so the consumer sees every failure.
func (stream *GraphStream) AddTo(target wl.GraphAdder) *GraphStream {
	return stream.addTo(target, nil)
}

func (stream *GraphStream) addTo(target wl.GraphAdder, onDone func()) *GraphStream {
	return stream.nextStage(func(item *Item, next *GraphStream) {
		if item.Err == nil {
			isNew, err := target.TryAddGraph(item.Name, item.Fingerprint)
			if err != nil {
				item.Err = errors.Wrapf(err, "adding %q", item.Name)
			} else if !isNew {
				klog.V(2).Infof("%q is a duplicate", item.Name)
				return
			}
		}
		next.Outlet <- item
	}, onDone)
}

// DropDupes passes on only the first item seen for each fingerprint (and every item that carries an error).
func (stream *GraphStream) DropDupes() *GraphStream {
	dupes := NewDropDupes(DropDupeOpts{})
	return stream.addTo(dupes, func() {
		dupes.Close()
	})
}

// Print writes each item to out, closing out once this stream is drained.
func (stream *GraphStream) Print(out io.WriteCloser, opts wl.PrintOpts) *GraphStream {
	buf := strings.Builder{}
	buf.Grow(256)

	return stream.nextStage(func(item *Item, next *GraphStream) {
		item.WriteAsString(&buf, opts)
		out.Write([]byte(buf.String()))
		buf.Reset()
		next.Outlet <- item
	}, func() {
		out.Close()
	})
}

// SelectFromCatalog streams one item per graph name filed in cat (Graph is nil).
//
// If the catalog walk fails, the stream ends with an item carrying that error.
func SelectFromCatalog(cat wl.Catalog) *GraphStream {
	next := &GraphStream{
		Outlet: make(chan *Item, 1),
	}

	onHit := make(chan wl.CatalogEntry, 4)
	selectErr := make(chan error, 1)

	go func() {
		selectErr <- cat.Select(onHit)
		close(onHit)
	}()

	go func() {
		for entry := range onHit {
			for _, name := range entry.Names {
				next.Outlet <- &Item{
					Name:        name,
					Fingerprint: entry.Fingerprint,
				}
			}
		}
		if err := <-selectErr; err != nil {
			next.Outlet <- &Item{
				Err: errors.Wrap(err, "catalog select"),
			}
		}
		next.Close()
	}()

	return next
}
