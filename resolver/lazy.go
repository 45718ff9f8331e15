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

package resolver

import (
	"sync"
	"sync/atomic"

	"dirpx.dev/dix/apis"
)

// lazyValue defers a factory until first use and evaluates it at most once,
// with exactly-once publication even when multiple goroutines race to force
// it. Registered factories for lazy singletons return the wrapper itself;
// the read path forces and unwraps it transparently.
type lazyValue struct {
	once   sync.Once
	forced atomic.Bool
	fn     apis.Factory
	value  any
}

func newLazyValue(fn apis.Factory) *lazyValue {
	return &lazyValue{fn: fn}
}

// force evaluates the underlying factory on first call and returns the
// cached value thereafter.
func (l *lazyValue) force() any {
	l.once.Do(func() {
		l.value = l.fn()
		l.fn = nil
		l.forced.Store(true)
	})
	return l.value
}

// isForced reports whether the factory has run. Disposal consults this to
// avoid creating a singleton purely for the sake of tearing it down.
func (l *lazyValue) isForced() bool {
	return l.forced.Load()
}

// materialize invokes f and unwraps a lazy-singleton wrapper if present, so
// callers receive the singleton's value rather than the wrapper object.
func materialize(f apis.Factory) any {
	v := f()
	if l, ok := v.(*lazyValue); ok {
		return l.force()
	}
	return v
}
