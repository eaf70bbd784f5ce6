package memoize

import "time"

// Option configures a Cache constructed by New.
type Option func(*options)

type options struct {
	ttl         time.Duration
	onEvict     func(value any)
	cacheErrors bool
}

func newOptions(ops []Option) *options {
	o := &options{}
	for _, op := range ops {
		op(o)
	}
	return o
}

// WithTTL bounds how long an entry remains eligible for reuse after it is
// inserted, regardless of whether its Imprint still matches. Zero (the
// default) means entries never expire on their own.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.ttl = ttl
	}
}

// WithOnEvict registers a callback invoked with a stored value when Call
// finds it expired under WithTTL. The callback must not call back into the
// Cache that invoked it.
func WithOnEvict(fn func(value any)) Option {
	return func(o *options) {
		o.onEvict = fn
	}
}

// WithErrorCaching makes Call cache a returned error alongside whatever
// value fn returned with it, the same way it caches a successful result, so a repeated incompatible-
// free call short-circuits straight to the same error instead of
// re-running the underlying function. Off by default: most callers want
// transient errors retried.
func WithErrorCaching() Option {
	return func(o *options) {
		o.cacheErrors = true
	}
}
