package wl

import "errors"

// Errors
var (
	ErrBadLabel         = errors.New("label must be non-negative")
	ErrBadNodeID        = errors.New("bad graph node ID")
	ErrUnsupportedInput = errors.New("only vertex colored graphs are supported")
	ErrBadDimension     = errors.New("k must be either 1 or 2")
	ErrOverflow         = errors.New("numeric overflow")
	ErrForeignColoring  = errors.New("coloring was produced by a different color registry")
	ErrColoringSize     = errors.New("coloring size does not match graph")
	ErrBadGraphExpr     = errors.New("bad graph expression")
	ErrBadCatalogParam  = errors.New("bad catalog param")
	ErrCatalogReadOnly  = errors.New("catalog is in read-only mode")
	ErrBadFingerprint   = errors.New("bad fingerprint encoding")
	ErrNilGraph         = errors.New("nil graph")
	ErrNoFactorMatrix   = errors.New("factor matrix was not requested")
)
