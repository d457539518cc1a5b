package iterative

type options struct {
	ignoreCounting bool
	debug          int
	maxIterations  int
}

// Option configures a WL engine.
type Option func(opts *options)

// WithIgnoreCounting treats neighbor descriptors as sets instead of multisets.
func WithIgnoreCounting(ignoreCounting bool) Option {
	return func(opts *options) {
		opts.ignoreCounting = ignoreCounting
	}
}

// WithDebug sets the diagnostic verbosity (0 is silent).
func WithDebug(level int) Option {
	return func(opts *options) {
		opts.debug = level
	}
}

// WithMaxIterations bounds Refine (0 means run until stable).
func WithMaxIterations(maxIterations int) Option {
	return func(opts *options) {
		if maxIterations < 0 {
			maxIterations = 0
		}
		opts.maxIterations = maxIterations
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
