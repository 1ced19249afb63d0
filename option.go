package avltriee

// Options configures engine behavior.
type Options struct {
	logger       Logger
	replaceEqual bool // Overwrite the payload when an update compares Equal to the stored value.
}

// DefaultOptions returns the default configuration: no logging, and updates
// that compare Equal to the stored value leave the row untouched.
//
//goland:noinspection GoUnusedExportedFunction
func DefaultOptions() Options {
	return Options{
		logger: DiscardLogger{},
	}
}

// Option configures engine options using the functional options pattern.
type Option func(*Options)

// WithLogger sets the logger used for arena growth and recovery messages.
// A *slog.Logger satisfies Logger directly.
//
//goland:noinspection GoUnusedExportedFunction
func WithLogger(logger Logger) Option {
	return func(opts *Options) {
		if logger == nil {
			logger = DiscardLogger{}
		}
		opts.logger = logger
	}
}

// WithReplaceEqual makes Update overwrite the stored payload when the new
// value compares Equal to the old one under the ordering. The tree shape is
// unchanged in that case, so the write happens in place.
//
// Without this option such an update is a no-op, which matters for orderings
// that only look at part of the value (a prefix, one field of a struct).
//
//goland:noinspection GoUnusedExportedFunction
func WithReplaceEqual() Option {
	return func(opts *Options) {
		opts.replaceEqual = true
	}
}
