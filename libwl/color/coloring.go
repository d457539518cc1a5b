package color

import (
	"github.com/fine-structures/kwl/wl"
	"github.com/pkg/errors"
)

// Coloring assigns a color to every node (1D) or every ordered node pair (2D, row-major i*n+j).
type Coloring struct {
	Registry RegistryID // Registry that issued Colors
	Colors   []wl.Color
}

func (C *Coloring) Len() int {
	return len(C.Colors)
}

// Frequencies returns how many times each color occurs.
func (C *Coloring) Frequencies() map[wl.Color]int {
	freq := make(map[wl.Color]int)
	for _, ci := range C.Colors {
		freq[ci]++
	}
	return freq
}

// Histogram returns the (color, count) pairs of this coloring, sorted by color.
func (C *Coloring) Histogram() wl.Histogram {
	freq := C.Frequencies()
	hist := make(wl.Histogram, 0, len(freq))
	for ci, count := range freq {
		hist = append(hist, wl.HistogramEntry{
			Color: ci,
			Count: count,
		})
	}
	hist.Sort()
	return hist
}

// NumColors returns the number of distinct colors in this coloring.
func (C *Coloring) NumColors() int {
	return len(C.Frequencies())
}

// IsIdenticalTo returns true if next equals this coloring up to a constant shift:
// next[x] == C[x] + d for every position x, where d = next[0] - C[0].
//
// Because a registry issues colors in first-seen order, a round that makes no new distinctions
// re-derives the same relative colors shifted by the number of colors it newly issued.
func (C *Coloring) IsIdenticalTo(next *Coloring) (bool, error) {
	if C.Registry != next.Registry {
		return false, wl.ErrForeignColoring
	}
	if len(C.Colors) != len(next.Colors) {
		return false, errors.Wrapf(wl.ErrColoringSize, "comparing %d colors to %d", len(C.Colors), len(next.Colors))
	}
	if len(C.Colors) == 0 {
		return true, nil
	}

	d := next.Colors[0] - C.Colors[0]
	for i, ci := range C.Colors {
		if ci+d != next.Colors[i] {
			return false, nil
		}
	}
	return true, nil
}

// Clone returns a deep copy of this coloring.
func (C *Coloring) Clone() *Coloring {
	return &Coloring{
		Registry: C.Registry,
		Colors:   append([]wl.Color(nil), C.Colors...),
	}
}
