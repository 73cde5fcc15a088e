package objgraph

import (
	"go.uber.org/zap"

	"github.com/tarantool/go-objgraph/internal/options"
)

type contextOptions struct {
	logger *zap.Logger
}

func defaultContextOptions() contextOptions {
	return contextOptions{logger: zap.NewNop()}
}

// Option configures a SerializeContext or DeserializeContext.
type Option = options.OptionCallback[contextOptions]

// WithLogger sets the logger used for debug events. A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(opts *contextOptions) {
		if logger != nil {
			opts.logger = logger
		}
	}
}
