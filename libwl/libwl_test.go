package libwl_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fine-structures/kwl/libwl"
	"github.com/fine-structures/kwl/libwl/catalog"
	"github.com/fine-structures/kwl/libwl/graph"
	"github.com/fine-structures/kwl/libwl/iterative"
	"github.com/fine-structures/kwl/wl"
)

var testGraphs = []struct {
	name string
	expr string
}{
	{"path", "graph { 0 -- 1 -- 2 -- 3 }"},
	{"path-permuted", "graph { 2 -- 0 -- 3 -- 1 }"},
	{"star", "graph { 0 -- 1; 0 -- 2; 0 -- 3 }"},
	{"cycle", "graph { 0 -- 1 -- 2 -- 3 -- 4 -- 5 -- 0 }"},
	{"triangles", "graph { 0 -- 1 -- 2 -- 0; 3 -- 4 -- 5 -- 3 }"},
}

func testItems() []*libwl.Item {
	items := make([]*libwl.Item, len(testGraphs))
	for i, tg := range testGraphs {
		items[i] = &libwl.Item{
			Name:  tg.name,
			Graph: graph.MustParse(tg.expr),
		}
	}
	return items
}

func names(items []*libwl.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Name
	}
	return out
}

type nopCloser struct {
	bytes.Buffer
	closed bool
}

func (b *nopCloser) Close() error {
	b.closed = true
	return nil
}

func TestCanonicalFingerprint(t *testing.T) {
	fp1, _, err := libwl.Fingerprint(graph.MustParse("graph { 0 -- 1 -- 2 -- 3 }"))
	require.NoError(t, err)
	fp2, _, err := libwl.Fingerprint(graph.MustParse("graph { 2 -- 0 -- 3 -- 1 }"))
	require.NoError(t, err)
	fp3, res3, err := libwl.Fingerprint(graph.MustParse("graph { 0 -- 1; 0 -- 2; 0 -- 3 }"))
	require.NoError(t, err)
	fp4, _, err := libwl.Fingerprint(graph.MustParse("graph { 0 [3]; 1 [3]; 2 [3]; 3 [3]; 0 -- 1 -- 2 -- 3 }"))
	require.NoError(t, err)

	assert.Equal(t, fp1, fp2)
	assert.NotEqual(t, fp1, fp3)
	assert.NotEqual(t, fp1, fp4, "node labels are part of the fingerprint")

	info, err := libwl.ParseFingerprint(fp3)
	require.NoError(t, err)
	assert.Equal(t, libwl.CanonicalKind, info.Kind)
	assert.Equal(t, []int64{0}, info.InitialLabels)
	assert.Equal(t, res3.Histogram(), info.Histogram)
	assert.Equal(t, res3.FactorMatrix(), info.Factor)

	// graphs labeled {1,2} and {1,3} are told apart
	fp5, _, err := libwl.Fingerprint(graph.MustParse("graph { 0 [1]; 1 [2]; 0 -- 1 }"))
	require.NoError(t, err)
	fp6, _, err := libwl.Fingerprint(graph.MustParse("graph { 0 [1]; 1 [3]; 0 -- 1 }"))
	require.NoError(t, err)
	assert.NotEqual(t, fp5, fp6)
}

// Two graphs whose canonical class sizes agree but whose quotient matrices differ.
func TestFingerprintSeesQuotient(t *testing.T) {
	labels := "0 [1]; 1 [1]; 2 [1]; 3 [1]; 4 [1]; 5 [2]; 6 [2]; 7 [3]; 8 [3]; 9 [4]; 10 [5]; 11 [5]; 12 [6]; 13 [7]; 14 [8]; 15 [9]; 16 [10]; "
	X1 := graph.MustParse("digraph { " + labels +
		"0 -> 5; 0 -> 13; 1 -> 6; 1 -> 14; 1 -> 16; 2 -> 7; 2 -> 10; 3 -> 8; 3 -> 11; 4 -> 9; 4 -> 12; 4 -> 15; " +
		"5 -> 0; 6 -> 1; 7 -> 2; 8 -> 3; 9 -> 4; 10 -> 2; 11 -> 3; 12 -> 4; 12 -> 13; 13 -> 0; 13 -> 12; " +
		"14 -> 1; 15 -> 4; 15 -> 16; 16 -> 1; 16 -> 15 }")
	X2 := graph.MustParse("digraph { " + labels +
		"0 -> 5; 0 -> 12; 1 -> 6; 1 -> 14; 1 -> 16; 2 -> 7; 2 -> 10; 3 -> 8; 3 -> 11; 4 -> 9; 4 -> 13; 4 -> 15; " +
		"5 -> 0; 6 -> 1; 7 -> 2; 8 -> 3; 9 -> 4; 10 -> 2; 11 -> 3; 12 -> 0; 13 -> 4; 13 -> 14; 14 -> 1; " +
		"14 -> 13; 15 -> 4; 15 -> 16; 16 -> 1; 16 -> 15 }")
	require.Equal(t, 28, X1.NumEdges())
	require.Equal(t, 28, X2.NumEdges())

	fp1, res1, err := libwl.Fingerprint(X1)
	require.NoError(t, err)
	fp2, res2, err := libwl.Fingerprint(X2)
	require.NoError(t, err)

	assert.Equal(t, res1.Histogram(), res2.Histogram())
	assert.NotEqual(t, fp1, fp2)
}

func TestParseFingerprintErrors(t *testing.T) {
	fp, _, err := libwl.Fingerprint(graph.MustParse("graph { 0 -- 1; 0 -- 2; 0 -- 3 }"))
	require.NoError(t, err)

	for _, bad := range []wl.Fingerprint{
		nil,
		fp[:len(fp)-1],
		append(append(wl.Fingerprint(nil), fp...), 0x00),
		{0x09},
	} {
		_, err := libwl.ParseFingerprint(bad)
		assert.True(t, errors.Is(err, wl.ErrBadFingerprint), "%x", []byte(bad))
	}
}

func TestHistogramFingerprint(t *testing.T) {
	hist := wl.Histogram{{3, 2}, {4, 1}}
	fp := libwl.HistogramFingerprint(2, hist)

	info, err := libwl.ParseFingerprint(fp)
	require.NoError(t, err)
	assert.Equal(t, libwl.HistogramKind, info.Kind)
	assert.Equal(t, 2, info.Dimension)
	assert.Equal(t, hist, info.Histogram)
	assert.NotEqual(t, fp, libwl.HistogramFingerprint(1, hist))
}

func TestDropDupes(t *testing.T) {
	dupes := libwl.NewDropDupes(libwl.DropDupeOpts{PoolSz: 4})
	defer dupes.Close()

	for _, fp := range []wl.Fingerprint{{1, 2, 3}, {1, 2}, {9, 9, 9, 9, 9, 9}} {
		isNew, err := dupes.TryAddGraph("x", fp)
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = dupes.TryAddGraph("y", append(wl.Fingerprint(nil), fp...))
		require.NoError(t, err)
		assert.False(t, isNew)
	}
}

func TestStreamCanonicalDropDupes(t *testing.T) {
	items := libwl.StreamItems(testItems()).Refine().DropDupes().Collect()

	// color refinement cannot tell a 6-cycle from two triangles
	assert.Equal(t, []string{"path", "star", "cycle"}, names(items))
	for _, item := range items {
		assert.NoError(t, item.Err)
		assert.NotNil(t, item.Canonical)
		assert.NotEmpty(t, item.Fingerprint)
	}
}

func TestStreamWLDropDupes(t *testing.T) {
	W, err := iterative.New(2)
	require.NoError(t, err)

	items := libwl.StreamItems(testItems()).RefineWL(W).DropDupes().Collect()
	assert.Equal(t, []string{"path", "star", "cycle", "triangles"}, names(items))
	for _, item := range items {
		require.NotNil(t, item.Outcome)
		assert.True(t, item.Outcome.Stabilized)
	}
}

func TestStreamErrorsPassThrough(t *testing.T) {
	items := testItems()
	items = append(items, &libwl.Item{
		Name:  "edge-labeled",
		Graph: graph.MustParse("graph { 0 -- 1 [4] }"),
	})

	out := &nopCloser{}
	got := libwl.StreamItems(items).
		Refine().
		Print(out, wl.PrintOpts{Label: "t", Histogram: true}).
		DropDupes().
		Collect()

	assert.Equal(t, []string{"path", "star", "cycle", "edge-labeled"}, names(got))
	assert.True(t, errors.Is(got[3].Err, wl.ErrUnsupportedInput))
	assert.True(t, out.closed)

	printed := out.String()
	assert.Equal(t, len(items), strings.Count(printed, "t,"))
	assert.Contains(t, printed, "t,edge-labeled  error:")
	assert.Contains(t, printed, "histogram: [0:2 1:2]")
}

func TestStreamToCatalog(t *testing.T) {
	ctx := wl.NewCatalogContext()
	defer func() {
		ctx.Close()
		<-ctx.Done()
	}()

	cat, err := catalog.OpenCatalog(ctx, wl.CatalogOpts{})
	require.NoError(t, err)

	added, errs := libwl.StreamItems(testItems()).Refine().AddTo(cat).PullErrs()
	assert.Equal(t, 3, added)
	assert.Empty(t, errs)
	assert.Equal(t, int64(5), cat.NumGraphs())
	assert.Equal(t, int64(3), cat.NumClasses())

	fp, _, err := libwl.Fingerprint(graph.MustParse("graph { 3 -- 2 -- 1 -- 0 }"))
	require.NoError(t, err)
	found, err := cat.Lookup(fp)
	require.NoError(t, err)
	assert.Equal(t, []string{"path", "path-permuted"}, found)

	selected := libwl.SelectFromCatalog(cat).Collect()
	assert.Len(t, selected, 5)
	assert.ElementsMatch(t, []string{"path", "path-permuted", "star", "cycle", "triangles"}, names(selected))
}

func TestStreamGraph(t *testing.T) {
	stream := libwl.StreamGraph("k2", graph.MustParse("graph { 0 -- 1 }")).Refine()
	item := stream.PullItem()
	require.NotNil(t, item)
	assert.Equal(t, "k2", item.Name)
	assert.Equal(t, 1, item.Canonical.NumColors())
	assert.Nil(t, stream.PullItem())
}

type refusingAdder struct{}

func (refusingAdder) TryAddGraph(name string, fp wl.Fingerprint) (bool, error) {
	return false, wl.ErrCatalogReadOnly
}

func (refusingAdder) Close() error {
	return nil
}

func TestAddToReportsFailures(t *testing.T) {
	got := libwl.StreamItems(testItems()).Refine().AddTo(refusingAdder{}).Collect()

	require.Len(t, got, len(testItems()))
	for _, item := range got {
		assert.True(t, errors.Is(item.Err, wl.ErrCatalogReadOnly), item.Name)
	}

	added, errs := libwl.StreamItems(testItems()).Refine().AddTo(refusingAdder{}).PullErrs()
	assert.Zero(t, added)
	assert.Len(t, errs, len(testItems()))
}
