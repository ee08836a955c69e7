// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package config

// Option defines a common functional options type which can be used in a
// variadic parameter pattern.
type Option func(interface{})

// ApplyOpts takes a pointer to the options struct as a set of default options
// and applies the slice of opts as overrides.
func ApplyOpts(opts interface{}, opt ...Option) {
	for _, o := range opt {
		if o == nil { // ignore any nil Options
			continue
		}
		o(opts)
	}
}

type options struct {
	withEnvironment map[string]string
}

func getOpts(opt ...Option) options {
	opts := options{}
	ApplyOpts(&opts, opt...)
	return opts
}

// WithEnvironment provides the environment variables to read instead of the
// process environment.
func WithEnvironment(environ map[string]string) Option {
	return func(o interface{}) {
		if v, ok := o.(*options); ok {
			v.withEnvironment = environ
		}
	}
}
