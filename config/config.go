/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package config

import (
	"github.com/go-logr/logr"

	"dirpx.dev/dix/apis"
)

const (
	// DefaultCapacity represents the default registration table size hint.
	// Most applications register a few dozen services at startup.
	DefaultCapacity = 16
)

// New constructs an apis.Config from the given options.
func New(opts ...Option) apis.Config {
	cfg := Default()
	for _, opt := range opts {
		opt(&cfg)
	}
	// Ensure Capacity is valid.
	if cfg.Capacity < 0 {
		cfg.Capacity = DefaultCapacity
	}
	return cfg
}

// Default is the default configuration used when none is provided.
func Default() apis.Config {
	return apis.Config{
		Logger:   logr.Discard(),
		Capacity: DefaultCapacity,
	}
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithLogger sets the logger receiving resolver lifecycle events.
func WithLogger(log logr.Logger) Option {
	return func(c *apis.Config) {
		c.Logger = log
	}
}

// WithCapacity sets the registration table size hint.
// A negative value resets to the default.
func WithCapacity(capacity int) Option {
	return func(c *apis.Config) {
		if capacity < 0 {
			c.Capacity = DefaultCapacity
			return
		}
		c.Capacity = capacity
	}
}
