package repository

import "time"

// Option applies a configuration option to Load and Parse.
type Option func(*loadOptions)

type loadOptions struct {
	comma rune
	name  string
	now   func() time.Time
}

func defaultLoadOptions() loadOptions {
	return loadOptions{comma: ',', now: time.Now}
}

// WithComma sets the field delimiter. Zero keeps the default comma.
func WithComma(r rune) Option {
	return func(o *loadOptions) {
		if r != 0 {
			o.comma = r
		}
	}
}

// WithSourceName labels errors produced while parsing a reader.
func WithSourceName(name string) Option {
	return func(o *loadOptions) {
		o.name = name
	}
}

// WithClock overrides the load timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *loadOptions) {
		if now != nil {
			o.now = now
		}
	}
}
