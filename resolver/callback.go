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

// token implements apis.Token. A fresh token is handed to every callback
// invocation; disposing it from inside the callback requests removal.
type token struct {
	disposed atomic.Bool
}

var _ apis.Token = (*token)(nil)

func (t *token) Dispose() { t.disposed.Store(true) }

func (t *token) IsDisposed() bool { return t.disposed.Load() }

// disposedToken returns a token already marked disposed, used to signal
// teardown to observers.
func disposedToken() *token {
	t := &token{}
	t.Dispose()
	return t
}

// callbackEntry is one subscribed observer. The stopped flag is checked
// outside the gate by in-flight notification batches, so a callback that
// unsubscribed mid-batch is never invoked again.
type callbackEntry struct {
	fn      apis.Callback
	stopped atomic.Bool
}

func (e *callbackEntry) stop() { e.stopped.Store(true) }

func (e *callbackEntry) isStopped() bool { return e.stopped.Load() }

// invoke fires the callback once with a fresh token, unless the entry has
// already stopped. It reports whether the callback disposed its token,
// which stops the entry.
func (e *callbackEntry) invoke() (stopped bool) {
	if e.isStopped() {
		return true
	}
	t := &token{}
	e.fn(t)
	if t.IsDisposed() {
		e.stop()
		return true
	}
	return false
}

// subscription is the unsubscribe handle returned by
// ServiceRegistrationCallback. Close removes the callback from the
// resolver's observer table; it is safe to call any number of times.
type subscription struct {
	once sync.Once
	r    *Resolver
	k    key
	e    *callbackEntry
}

func (s *subscription) Close() error {
	s.once.Do(func() {
		s.e.stop()
		s.r.removeCallback(s.k, s.e)
	})
	return nil
}
