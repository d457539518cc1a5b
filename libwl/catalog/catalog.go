package catalog

import (
	"bytes"
	"encoding/binary"
	"runtime"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/fine-structures/kwl/wl"
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

/***

Catalog database format:

	gCatalogStateKey => catalogState

	kClassPrefix, uvarint(len(fp)), fp                   => nil  (class header)
	kClassPrefix, uvarint(len(fp)), fp, NUL, graph name  => nil  (one per named graph)

A class header always sorts directly before the names filed under it, so a single prefix walk
yields every fingerprint with its names.  The length prefix keeps one fingerprint from being
mistaken for a prefix of another.

***/

var (
	gCatalogStateKey = []byte{0x00, 0x00, 0x01}
)

const (
	kClassPrefix = byte(0x01)

	kMajorVers = 2024
	kMinorVers = 1
)

type catalogState struct {
	MajorVers  uint64
	MinorVers  uint64
	Desig      string
	NumGraphs  uint64
	NumClasses uint64
}

func (state *catalogState) Marshal() ([]byte, error) {
	buf := proto.NewBuffer(make([]byte, 0, 32))
	for _, v := range []uint64{state.MajorVers, state.MinorVers} {
		if err := buf.EncodeVarint(v); err != nil {
			return nil, err
		}
	}
	if err := buf.EncodeStringBytes(state.Desig); err != nil {
		return nil, err
	}
	for _, v := range []uint64{state.NumGraphs, state.NumClasses} {
		if err := buf.EncodeVarint(v); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func (state *catalogState) Unmarshal(val []byte) error {
	buf := proto.NewBuffer(val)

	var err error
	if state.MajorVers, err = buf.DecodeVarint(); err != nil {
		return err
	}
	if state.MinorVers, err = buf.DecodeVarint(); err != nil {
		return err
	}
	if state.Desig, err = buf.DecodeStringBytes(); err != nil {
		return err
	}
	if state.NumGraphs, err = buf.DecodeVarint(); err != nil {
		return err
	}
	if state.NumClasses, err = buf.DecodeVarint(); err != nil {
		return err
	}
	return nil
}

// catalog is a badger db wrapper that files graph names by canonical fingerprint.
type catalog struct {
	mu         sync.Mutex
	ctx        wl.CatalogContext
	readOnly   bool
	stateDirty bool
	state      catalogState
	db         *badger.DB
}

// OpenCatalog opens (or creates) a fingerprint catalog and attaches it to ctx.
//
// If opts.DbPathName is empty, the catalog lives in memory.
func OpenCatalog(ctx wl.CatalogContext, opts wl.CatalogOpts) (wl.Catalog, error) {
	cat := &catalog{
		ctx:      ctx,
		readOnly: opts.ReadOnly,
	}

	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false // not needed so disable for performance
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(wl.ErrBadCatalogParam, "DbPathName must be specified for read-only catalog")
		}
		dbOpts.InMemory = true
	}

	var err error
	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening catalog %q", opts.DbPathName)
	}

	// Once the db is open, we consider the catalog ctx blocked until the catalog closes
	ctx.AttachCatalog(cat)

	err = cat.loadState()
	if err == badger.ErrKeyNotFound {
		err = nil
		cat.stateDirty = true
		cat.state = catalogState{
			MajorVers: kMajorVers,
			MinorVers: kMinorVers,
			Desig:     wl.DefaultCatalogDesig,
		}
	}

	if err == nil && (cat.state.MajorVers != kMajorVers || cat.state.MinorVers != kMinorVers) {
		err = errors.Errorf("catalog version %d.%d is incompatible", cat.state.MajorVers, cat.state.MinorVers)
	}

	if err != nil {
		cat.Close()
		return nil, err
	}

	klog.V(2).Infof("catalog %s opened (%d graphs in %d classes)", cat.state.Desig, cat.state.NumGraphs, cat.state.NumClasses)
	return cat, nil
}

func (cat *catalog) loadState() error {
	return cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return cat.state.Unmarshal(val)
		})
	})
}

func (cat *catalog) flushState() error {
	if !cat.stateDirty || cat.readOnly {
		return nil
	}
	err := cat.db.Update(func(txn *badger.Txn) error {
		stateBuf, err := cat.state.Marshal()
		if err != nil {
			return err
		}
		return txn.Set(gCatalogStateKey, stateBuf)
	})
	if err == nil {
		cat.stateDirty = false
	}
	return err
}

func (cat *catalog) Close() error {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	if cat.db == nil {
		return nil
	}

	err := cat.flushState()
	if err != nil {
		klog.Warningf("catalog %s: failed to flush state: %v", cat.state.Desig, err)
	}
	if closeErr := cat.db.Close(); err == nil {
		err = closeErr
	}
	cat.db = nil
	cat.ctx.DetachCatalog(cat)
	cat.ctx = nil

	klog.V(2).Infof("catalog %s closed", cat.state.Desig)
	return err
}

func (cat *catalog) IsReadOnly() bool {
	return cat.readOnly
}

func (cat *catalog) NumGraphs() int64 {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	return int64(cat.state.NumGraphs)
}

func (cat *catalog) NumClasses() int64 {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	return int64(cat.state.NumClasses)
}

func formClassKey(key []byte, fp wl.Fingerprint) []byte {
	key = append(key, kClassPrefix)
	key = binary.AppendUvarint(key, uint64(len(fp)))
	key = append(key, fp...)
	return key
}

func formNameKey(key []byte, fp wl.Fingerprint, name string) []byte {
	key = formClassKey(key, fp)
	key = append(key, 0)
	key = append(key, name...)
	return key
}

// TryAddGraph files the given graph name under fp.
//
// If true is returned, fp was not present and a new class was started.
// Adding a name already filed under fp is a no-op.
func (cat *catalog) TryAddGraph(name string, fp wl.Fingerprint) (bool, error) {
	if len(fp) == 0 {
		return false, errors.Wrap(wl.ErrBadFingerprint, "empty fingerprint")
	}
	if cat.readOnly {
		return false, wl.ErrCatalogReadOnly
	}

	cat.mu.Lock()
	defer cat.mu.Unlock()

	if cat.db == nil {
		return false, errors.New("catalog is closed")
	}

	classKey := formClassKey(nil, fp)
	nameKey := formNameKey(nil, fp, name)

	txn := cat.db.NewTransaction(true)
	defer txn.Discard()

	isNewClass := false
	isNewName := false
	_, err := txn.Get(classKey)
	if err == badger.ErrKeyNotFound {
		isNewClass = true
		isNewName = true
	} else if err == nil {
		_, err = txn.Get(nameKey)
		if err == badger.ErrKeyNotFound {
			isNewName = true
		} else if err != nil {
			return false, err
		}
	} else {
		return false, err
	}

	if !isNewName {
		return false, nil
	}

	if isNewClass {
		if err = txn.Set(classKey, nil); err != nil {
			return false, err
		}
	}
	if err = txn.Set(nameKey, nil); err != nil {
		return false, err
	}
	if err = txn.Commit(); err != nil {
		return false, err
	}

	cat.state.NumGraphs++
	if isNewClass {
		cat.state.NumClasses++
	}
	cat.stateDirty = true

	return isNewClass, nil
}

// Lookup returns the names filed under fp, in name order.
func (cat *catalog) Lookup(fp wl.Fingerprint) ([]string, error) {
	if len(fp) == 0 {
		return nil, errors.Wrap(wl.ErrBadFingerprint, "empty fingerprint")
	}

	cat.mu.Lock()
	defer cat.mu.Unlock()

	if cat.db == nil {
		return nil, errors.New("catalog is closed")
	}

	prefix := formNameKey(nil, fp, "")

	var names []string
	err := cat.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: false,
			Prefix:         prefix,
		})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			names = append(names, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	return names, err
}

// Select sends every (fingerprint, names) entry to onHit, ordered by fingerprint length then bytes.
func (cat *catalog) Select(onHit wl.OnEntryHit) error {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	if cat.db == nil {
		return errors.New("catalog is closed")
	}

	txn := cat.db.NewTransaction(false)
	defer txn.Discard()

	it := txn.NewIterator(badger.IteratorOptions{
		PrefetchValues: false,
		Prefix:         []byte{kClassPrefix},
	})
	defer it.Close()

	var entry *wl.CatalogEntry
	var classKey []byte

	flush := func() {
		if entry != nil {
			onHit <- *entry
			entry = nil
		}
	}

	for it.Rewind(); it.Valid(); it.Next() {
		key := it.Item().Key()

		if classKey != nil && len(key) > len(classKey) && bytes.HasPrefix(key, classKey) && key[len(classKey)] == 0 {
			entry.Names = append(entry.Names, string(key[len(classKey)+1:]))
			continue
		}

		// A key that is not a name under the current class must be the next class header
		fpLen, n := binary.Uvarint(key[1:])
		if n <= 0 || len(key) != 1+n+int(fpLen) {
			return errors.Wrapf(wl.ErrBadFingerprint, "unexpected catalog key %x", key)
		}

		flush()
		classKey = append(classKey[:0], key...)
		entry = &wl.CatalogEntry{
			Fingerprint: append(wl.Fingerprint(nil), key[1+n:]...),
		}
	}
	flush()

	return nil
}
