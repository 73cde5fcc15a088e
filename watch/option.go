package watch

import "github.com/tarantool/go-objgraph/internal/options"

// Options holds the watch configuration resolved from Option values.
type Options struct {
	// Prefix forces the watched key to be treated as a prefix.
	Prefix bool
}

// Option configures a watch.
type Option = options.OptionCallback[Options]

// WithPrefix watches every key starting with the watched key.
func WithPrefix() Option {
	return func(opts *Options) {
		opts.Prefix = true
	}
}

// Apply resolves opts.
func Apply(opts []Option) Options {
	return options.ApplyOptions[Options](nil, opts)
}
