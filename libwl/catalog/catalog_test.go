package catalog_test

import (
	"errors"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fine-structures/kwl/libwl/catalog"
	"github.com/fine-structures/kwl/wl"
)

var (
	fpA = wl.Fingerprint{0x01, 0x02}
	fpB = wl.Fingerprint{0x01, 0x02, 0x03}
	fpC = wl.Fingerprint{0x07}
)

func fillCatalog(t *testing.T, cat wl.Catalog) {
	isNew, err := cat.TryAddGraph("path4", fpA)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = cat.TryAddGraph("path4-relabeled", fpA)
	require.NoError(t, err)
	assert.False(t, isNew)

	// re-adding a name is a no-op
	isNew, err = cat.TryAddGraph("path4", fpA)
	require.NoError(t, err)
	assert.False(t, isNew)

	isNew, err = cat.TryAddGraph("star3", fpB)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = cat.TryAddGraph("k1", fpC)
	require.NoError(t, err)
	assert.True(t, isNew)
}

func TestInMemory(t *testing.T) {
	ctx := wl.NewCatalogContext()
	cat, err := catalog.OpenCatalog(ctx, wl.CatalogOpts{})
	require.NoError(t, err)

	fillCatalog(t, cat)
	assert.Equal(t, int64(4), cat.NumGraphs())
	assert.Equal(t, int64(3), cat.NumClasses())

	names, err := cat.Lookup(fpA)
	require.NoError(t, err)
	assert.Equal(t, []string{"path4", "path4-relabeled"}, names)

	names, err = cat.Lookup(wl.Fingerprint{0x01})
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = cat.TryAddGraph("empty", nil)
	assert.True(t, errors.Is(err, wl.ErrBadFingerprint))

	hits := make(chan wl.CatalogEntry, 8)
	require.NoError(t, cat.Select(hits))
	close(hits)

	var entries []wl.CatalogEntry
	for entry := range hits {
		entries = append(entries, entry)
	}
	assert.Equal(t, []wl.CatalogEntry{
		{Fingerprint: fpC, Names: []string{"k1"}},
		{Fingerprint: fpA, Names: []string{"path4", "path4-relabeled"}},
		{Fingerprint: fpB, Names: []string{"star3"}},
	}, entries)

	ctx.Close()
	<-ctx.Done()
}

func TestPersistence(t *testing.T) {
	dir, err := os.MkdirTemp("", "kwl-catalog*")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	opts := wl.CatalogOpts{
		DbPathName: path.Join(dir, "TestPersistence"),
	}

	ctx := wl.NewCatalogContext()
	cat, err := catalog.OpenCatalog(ctx, opts)
	require.NoError(t, err)
	fillCatalog(t, cat)
	require.NoError(t, cat.Close())

	cat, err = catalog.OpenCatalog(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, int64(4), cat.NumGraphs())
	assert.Equal(t, int64(3), cat.NumClasses())

	isNew, err := cat.TryAddGraph("star3-again", fpB)
	require.NoError(t, err)
	assert.False(t, isNew)
	require.NoError(t, cat.Close())

	opts.ReadOnly = true
	cat, err = catalog.OpenCatalog(ctx, opts)
	require.NoError(t, err)
	assert.True(t, cat.IsReadOnly())
	assert.Equal(t, int64(5), cat.NumGraphs())

	names, err := cat.Lookup(fpB)
	require.NoError(t, err)
	assert.Equal(t, []string{"star3", "star3-again"}, names)

	_, err = cat.TryAddGraph("nope", fpC)
	assert.True(t, errors.Is(err, wl.ErrCatalogReadOnly))

	ctx.Close()
	<-ctx.Done()
}

func TestReadOnlyNeedsPath(t *testing.T) {
	_, err := catalog.OpenCatalog(wl.NewCatalogContext(), wl.CatalogOpts{ReadOnly: true})
	assert.True(t, errors.Is(err, wl.ErrBadCatalogParam))
}
