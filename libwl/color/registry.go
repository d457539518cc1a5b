package color

import (
	"encoding/binary"
	"sort"
	"sync/atomic"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/fine-structures/kwl/wl"
)

// AdjacentColor is a neighbor descriptor: typically (neighbor color, edge label) or a composed color pair.
type AdjacentColor struct {
	A int64
	B int64
}

// Context is the local structure a new color is derived from.
//
// Raw labels are carried in Color as negative values (-label-1) so they never collide with a registry-issued color.
type Context struct {
	Color  int64
	First  []AdjacentColor
	Second []AdjacentColor
}

// RegistryID identifies the Registry that issued a color.
type RegistryID uint64

var gRegistryCount uint64

// Registry canonically maps a Context to a dense color, issued in first-seen order.
//
// A Registry only grows: an issued color is never reassigned.  Colors are only comparable with
// other colors from the same Registry, which is why every Coloring is stamped with its RegistryID.
type Registry struct {
	id             RegistryID
	ignoreCounting bool
	colors         *redblacktree.Tree
	keyBuf         []byte
}

func NewRegistry(ignoreCounting bool) *Registry {
	return &Registry{
		id:             RegistryID(atomic.AddUint64(&gRegistryCount, 1)),
		ignoreCounting: ignoreCounting,
		colors:         redblacktree.NewWithStringComparator(),
		keyBuf:         make([]byte, 0, 256),
	}
}

func (reg *Registry) ID() RegistryID {
	return reg.id
}

func (reg *Registry) IgnoreCounting() bool {
	return reg.ignoreCounting
}

// Size returns the number of colors issued so far.
func (reg *Registry) Size() int {
	return reg.colors.Size()
}

// ColorOf returns the color for the given context, issuing the next color if ctx has not been seen before.
//
// ctx.First and ctx.Second are sorted in place (and deduplicated if this registry ignores counting).
func (reg *Registry) ColorOf(ctx *Context) wl.Color {
	ctx.First = reg.canonize(ctx.First)
	ctx.Second = reg.canonize(ctx.Second)

	key := string(reg.appendKey(reg.keyBuf[:0], ctx))
	if existing, found := reg.colors.Get(key); found {
		return existing.(wl.Color)
	}

	color := wl.Color(reg.colors.Size())
	reg.colors.Put(key, color)
	return color
}

// NewColoring returns a zeroed Coloring of the given length owned by this registry.
func (reg *Registry) NewColoring(N int) *Coloring {
	return &Coloring{
		Registry: reg.id,
		Colors:   make([]wl.Color, N),
	}
}

func (reg *Registry) canonize(seq []AdjacentColor) []AdjacentColor {
	sort.Slice(seq, func(i, j int) bool {
		if seq[i].A != seq[j].A {
			return seq[i].A < seq[j].A
		}
		return seq[i].B < seq[j].B
	})

	if reg.ignoreCounting && len(seq) > 1 {
		L := 0
		for R := 1; R < len(seq); R++ {
			if seq[R] != seq[L] {
				L++
				seq[L] = seq[R]
			}
		}
		seq = seq[:L+1]
	}
	return seq
}

// appendKey appends an injective binary encoding of ctx.
func (reg *Registry) appendKey(key []byte, ctx *Context) []byte {
	key = binary.AppendVarint(key, ctx.Color)
	for _, seq := range [2][]AdjacentColor{ctx.First, ctx.Second} {
		key = binary.AppendUvarint(key, uint64(len(seq)))
		for _, ci := range seq {
			key = binary.AppendVarint(key, ci.A)
			key = binary.AppendVarint(key, ci.B)
		}
	}
	reg.keyBuf = key[:0]
	return key
}
