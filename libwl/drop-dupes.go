package libwl

import (
	"bytes"
	"hash/maphash"

	"github.com/fine-structures/kwl/wl"
)

type dropDupes struct {
	hashMap   map[uint64]wl.Fingerprint
	hasher    maphash.Hash
	bufPool   []byte
	bufPoolSz int
	opts      DropDupeOpts
}

const DefaultPoolSz = 32 * 1024

type DropDupeOpts struct {
	PoolSz int // 0 denotes DefaultPoolSz (32k)
}

// NewDropDupes returns an in-memory GraphAdder that only reports the first graph seen for each fingerprint.
func NewDropDupes(opts DropDupeOpts) wl.GraphAdder {
	if opts.PoolSz <= 0 {
		opts.PoolSz = DefaultPoolSz
	}
	return &dropDupes{
		hashMap: make(map[uint64]wl.Fingerprint),
		opts:    opts,
	}
}

func (cat *dropDupes) Reset() {
	cat.bufPoolSz = 0
	for k := range cat.hashMap {
		delete(cat.hashMap, k)
	}
}

func (cat *dropDupes) Close() error {
	cat.Reset()
	cat.hashMap = nil
	return nil
}

func (cat *dropDupes) TryAddGraph(name string, fp wl.Fingerprint) (bool, error) {
	cat.hasher.Reset()
	cat.hasher.Write(fp)
	hash := cat.hasher.Sum64()

	existing, found := cat.hashMap[hash]
	for found {
		if bytes.Equal(existing, fp) {
			return false, nil
		}
		hash++
		existing, found = cat.hashMap[hash]
	}

	// If we've gotten here, it means this is a new entry.
	// Place a copy of fp in our backing buf and start a new pool if we run out of space.
	pos := cat.bufPoolSz
	itemLen := len(fp)
	if pos+itemLen > cap(cat.bufPool) {
		allocSz := max(cat.opts.PoolSz, itemLen)
		cat.bufPool = make([]byte, allocSz)
		cat.bufPoolSz = 0
		pos = 0
	}

	cat.hashMap[hash] = append(cat.bufPool[pos:pos], fp...)
	cat.bufPoolSz += itemLen
	return true, nil
}
