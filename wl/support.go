package wl

import (
	"fmt"
	"io"
	"math"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Pair is the Szudzik pairing function, injectively combining two non-negative integers into one.
//
// All arithmetic is checked: a result that does not fit in an int64 returns ErrOverflow
// rather than a wrapped value.
func Pair(x, y int64) (int64, error) {
	if x < 0 || y < 0 {
		return 0, errors.Wrapf(ErrBadLabel, "pairing (%d, %d)", x, y)
	}
	hi := max(x, y)
	if hi > 0 && hi > math.MaxInt64/hi {
		return 0, errors.Wrapf(ErrOverflow, "pairing (%d, %d)", x, y)
	}
	sq := hi * hi
	if x >= y {
		// x^2 + x + y
		if sq > math.MaxInt64-x || sq+x > math.MaxInt64-y {
			return 0, errors.Wrapf(ErrOverflow, "pairing (%d, %d)", x, y)
		}
		return sq + x + y, nil
	}

	// y^2 + x
	if sq > math.MaxInt64-x {
		return 0, errors.Wrapf(ErrOverflow, "pairing (%d, %d)", x, y)
	}
	return sq + x, nil
}

// Unpair is the inverse of Pair.
func Unpair(z int64) (x, y int64) {
	s := int64(math.Sqrt(float64(z)))
	for s > 0 && s > z/s {
		s--
	}
	for s+1 <= z/(s+1) {
		s++
	}
	d := z - s*s
	if d < s {
		return d, s
	}
	return s, d - s
}

// Sort orders this Histogram ascending by color.
func (hist Histogram) Sort() {
	sort.Slice(hist, func(i, j int) bool {
		if hist[i].Color != hist[j].Color {
			return hist[i].Color < hist[j].Color
		}
		return hist[i].Count < hist[j].Count
	})
}

// Total returns the sum of all counts.
func (hist Histogram) Total() int {
	N := 0
	for _, hi := range hist {
		N += hi.Count
	}
	return N
}

// IsEqual returns true if both histograms have identical entries in identical order.
func (hist Histogram) IsEqual(other Histogram) bool {
	return HistogramComparator(hist, other) == 0
}

// HistogramComparator orders histograms lexicographically by (color, count) entries.
func HistogramComparator(A, B Histogram) int {
	lenB := len(B)

	for i, ai := range A {
		if lenB == i {
			return 1
		}

		bi := B[i]
		if ai.Color != bi.Color {
			if ai.Color < bi.Color {
				return -1
			}
			return 1
		}
		if d := ai.Count - bi.Count; d != 0 {
			return d
		}
	}

	if len(A) < lenB {
		return -1
	}

	return 0
}

// Counts returns the counts of this histogram (in color order).
func (hist Histogram) Counts() []int {
	counts := make([]int, len(hist))
	for i, hi := range hist {
		counts[i] = hi.Count
	}
	return counts
}

func (hist Histogram) WriteAsString(out io.Writer) {
	io.WriteString(out, "[")
	for i, hi := range hist {
		if i > 0 {
			io.WriteString(out, " ")
		}
		fmt.Fprintf(out, "%d:%d", hi.Color, hi.Count)
	}
	io.WriteString(out, "]")
}

func (M FactorMatrix) WriteAsString(out io.Writer) {
	io.WriteString(out, "[")
	for i, e := range M {
		if i > 0 {
			io.WriteString(out, " ")
		}
		fmt.Fprintf(out, "(%d,%d)=%d", e.Row, e.Col, e.Count)
	}
	io.WriteString(out, "]")
}

func NewCatalogContext() CatalogContext {
	ctx := &catalogContext{
		openCatalogs: make(map[Catalog]struct{}),
		closing:      make(chan struct{}),
		closed:       make(chan struct{}),
	}
	ctx.openCount.Add(1)
	go func() {
		<-ctx.Closing()
		ctx.openCount.Done()
		ctx.openCount.Wait()
		close(ctx.closed)
	}()
	return ctx
}

type catalogContext struct {
	mu           sync.Mutex
	openCount    sync.WaitGroup
	openCatalogs map[Catalog]struct{}
	closing      chan struct{}
	closed       chan struct{}
	closeOnce    sync.Once
}

func (ctx *catalogContext) AttachCatalog(cat Catalog) {
	ctx.openCount.Add(1)
	ctx.mu.Lock()
	ctx.openCatalogs[cat] = struct{}{}
	ctx.mu.Unlock()
}

func (ctx *catalogContext) DetachCatalog(cat Catalog) {
	ctx.mu.Lock()
	if _, exists := ctx.openCatalogs[cat]; exists {
		delete(ctx.openCatalogs, cat)
		ctx.openCount.Done()
	}
	ctx.mu.Unlock()
}

func (ctx *catalogContext) Closing() <-chan struct{} {
	return ctx.closing
}

func (ctx *catalogContext) Done() <-chan struct{} {
	return ctx.closed
}

func (ctx *catalogContext) Close() {
	ctx.closeOnce.Do(func() {
		close(ctx.closing)
		ctx.mu.Lock()
		open := make([]Catalog, 0, len(ctx.openCatalogs))
		for cat := range ctx.openCatalogs {
			open = append(open, cat)
		}
		ctx.mu.Unlock()

		for _, cat := range open {
			go cat.Close()
		}
	})
}
