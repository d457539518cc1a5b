package libwl

import (
	"bytes"

	"github.com/fine-structures/kwl/libwl/canonical"
	"github.com/fine-structures/kwl/libwl/graph"
	"github.com/fine-structures/kwl/wl"
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
)

// FingerprintInfo is the decoded content of a Fingerprint.
type FingerprintInfo struct {
	Kind          FingerprintKind
	Dimension     int     // HistogramKind only
	InitialLabels []int64 // CanonicalKind only
	Histogram     wl.Histogram
	Factor        wl.FactorMatrix // CanonicalKind only
}

// CanonicalFingerprint encodes the invariants of a canonical refinement: its initial labels, class sizes and factor matrix.
//
// Equal fingerprints mean the two graphs are indistinguishable by color refinement.
func CanonicalFingerprint(res *canonical.Result) (wl.Fingerprint, error) {
	factor := res.FactorMatrix()
	if factor == nil && res.NumColors() > 0 {
		return nil, wl.ErrNoFactorMatrix
	}

	info := FingerprintInfo{
		Kind:          CanonicalKind,
		InitialLabels: res.InitialLabels(),
		Histogram:     res.Histogram(),
		Factor:        factor,
	}
	return info.Append(nil), nil
}

// Fingerprint runs a canonical refinement on X and returns its fingerprint.
func Fingerprint(X *graph.LabeledGraph) (wl.Fingerprint, *canonical.Result, error) {
	res, err := canonical.NewRefinement().Calculate(X, true)
	if err != nil {
		return nil, nil, err
	}
	fp, err := CanonicalFingerprint(res)
	return fp, res, err
}

// HistogramFingerprint encodes a k-WL histogram.
func HistogramFingerprint(k int, hist wl.Histogram) wl.Fingerprint {
	info := FingerprintInfo{
		Kind:      HistogramKind,
		Dimension: k,
		Histogram: hist,
	}
	return info.Append(nil)
}

// Append appends the varint encoding of this FingerprintInfo to fp.
func (info *FingerprintInfo) Append(fp wl.Fingerprint) wl.Fingerprint {
	buf := proto.NewBuffer(fp)
	buf.EncodeVarint(uint64(info.Kind))

	switch info.Kind {
	case CanonicalKind:
		buf.EncodeVarint(uint64(len(info.InitialLabels)))
		for _, label := range info.InitialLabels {
			buf.EncodeVarint(uint64(label))
		}
		appendHistogram(buf, info.Histogram)
		buf.EncodeVarint(uint64(len(info.Factor)))
		for _, e := range info.Factor {
			buf.EncodeVarint(uint64(e.Row))
			buf.EncodeVarint(uint64(e.Col))
			buf.EncodeVarint(uint64(e.Count))
		}
	case HistogramKind:
		buf.EncodeVarint(uint64(info.Dimension))
		appendHistogram(buf, info.Histogram)
	}
	return wl.Fingerprint(buf.Bytes())
}

func appendHistogram(buf *proto.Buffer, hist wl.Histogram) {
	buf.EncodeVarint(uint64(len(hist)))
	for _, hi := range hist {
		buf.EncodeVarint(uint64(hi.Color))
		buf.EncodeVarint(uint64(hi.Count))
	}
}

// ParseFingerprint decodes a fingerprint made by CanonicalFingerprint or HistogramFingerprint.
func ParseFingerprint(fp wl.Fingerprint) (*FingerprintInfo, error) {
	buf := proto.NewBuffer(fp)

	var err error
	next := func() uint64 {
		if err != nil {
			return 0
		}
		var v uint64
		v, err = buf.DecodeVarint()
		return v
	}
	nextCount := func() int {
		n := next()
		if err == nil && n > uint64(len(fp)) {
			err = errors.Errorf("count %d exceeds fingerprint length", n)
		}
		return int(n)
	}

	info := &FingerprintInfo{
		Kind: FingerprintKind(next()),
	}

	switch info.Kind {
	case CanonicalKind:
		info.InitialLabels = make([]int64, nextCount())
		for i := range info.InitialLabels {
			info.InitialLabels[i] = int64(next())
		}
		info.Histogram = make(wl.Histogram, nextCount())
		for i := range info.Histogram {
			info.Histogram[i] = wl.HistogramEntry{
				Color: wl.Color(next()),
				Count: int(next()),
			}
		}
		info.Factor = make(wl.FactorMatrix, nextCount())
		for i := range info.Factor {
			info.Factor[i] = wl.FactorEntry{
				Row:   int(next()),
				Col:   int(next()),
				Count: int(next()),
			}
		}
	case HistogramKind:
		info.Dimension = int(next())
		info.Histogram = make(wl.Histogram, nextCount())
		for i := range info.Histogram {
			info.Histogram[i] = wl.HistogramEntry{
				Color: wl.Color(next()),
				Count: int(next()),
			}
		}
	default:
		if err == nil {
			err = errors.Errorf("unknown fingerprint kind %d", info.Kind)
		}
	}

	// Only a canonical encoding survives a round trip, which also rules out trailing bytes
	if err == nil && !bytes.Equal(info.Append(nil), fp) {
		err = errors.New("fingerprint is not canonically encoded")
	}
	if err != nil {
		return nil, errors.Wrap(wl.ErrBadFingerprint, err.Error())
	}
	return info, nil
}
