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

package dix

import (
	"io"
	"sync"
	"sync/atomic"

	"dirpx.dev/dix/apis"
	"dirpx.dev/dix/builder"
	"dirpx.dev/dix/config"
)

// init initializes the global slot state.
func init() {
	// Initialize state with the default cfg, bld, and resolver.
	b := builder.New()
	cfg := config.Default()
	res := b.BuildResolver(cfg)
	st.Store(&state{cfg: cfg, bld: b, read: res, mut: res})
}

// Current returns the process-wide read-only resolver.
// Safe for concurrent use; always reads the latest published snapshot.
func Current() apis.Resolver {
	return st.Load().read
}

// CurrentMutable returns the process-wide mutable resolver.
// Safe for concurrent use; always reads the latest published snapshot.
func CurrentMutable() apis.MutableResolver {
	return st.Load().mut
}

// SetResolver installs r as both the read-only and mutable process-wide
// resolver. The previous resolver is not disposed; ownership stays with
// whoever created it. Change callbacks fire unless notifications are
// currently suppressed. A nil r leaves the slot unchanged.
func SetResolver(r apis.MutableResolver) {
	if r == nil {
		return
	}

	slotMu.Lock()
	old := st.Load()
	st.Store(&state{
		cfg:      old.cfg,
		bld:      old.bld,
		read:     r,
		mut:      r,
		suppress: old.suppress,
	})
	subs, fire := snapshotChangeSubs(old.suppress)
	slotMu.Unlock()

	if fire {
		notifyChange(subs)
	}
}

// SetBuilder sets the builder used to construct the default resolver on the
// next Reset. A nil b leaves the slot unchanged.
func SetBuilder(b apis.Builder) {
	if b == nil {
		return
	}

	slotMu.Lock()
	defer slotMu.Unlock()

	old := st.Load()
	st.Store(&state{
		cfg:      old.cfg,
		bld:      b,
		read:     old.read,
		mut:      old.mut,
		suppress: old.suppress,
	})
}

// SetConfig sets the global configuration and rebuilds the process-wide
// resolver through the current builder. Change callbacks fire unless
// notifications are suppressed.
func SetConfig(cfg apis.Config) {
	slotMu.Lock()
	old := st.Load()
	res := old.bld.BuildResolver(cfg)
	st.Store(&state{
		cfg:      cfg,
		bld:      old.bld,
		read:     res,
		mut:      res,
		suppress: old.suppress,
	})
	subs, fire := snapshotChangeSubs(old.suppress)
	slotMu.Unlock()

	if fire {
		notifyChange(subs)
	}
}

// Config returns the global configuration.
func Config() apis.Config {
	return st.Load().cfg
}

// Reset rebuilds a clean default resolver through the current builder and
// configuration, then fires change callbacks. This is mainly used by tests
// to get a deterministic state between test cases.
func Reset() {
	slotMu.Lock()
	old := st.Load()
	res := old.bld.BuildResolver(old.cfg)
	st.Store(&state{
		cfg:  old.cfg,
		bld:  old.bld,
		read: res,
		mut:  res,
	})
	subs, fire := snapshotChangeSubs(false)
	slotMu.Unlock()

	if fire {
		notifyChange(subs)
	}
}

// OnResolverChange subscribes fn to process-wide resolver swaps. It fires
// once immediately for the already-installed resolver, so late subscribers
// need no separate bootstrap check. Closing the returned handle
// unsubscribes; Close is idempotent.
func OnResolverChange(fn func()) io.Closer {
	if fn == nil {
		return inertCloser{}
	}

	e := &changeEntry{fn: fn}
	slotMu.Lock()
	changeSubs = append(changeSubs, e)
	slotMu.Unlock()

	fn()
	return &changeSub{e: e}
}

// WithResolver installs r for the duration of a scope and returns the
// restore function. When suppress is true, change callbacks stay silent for
// both the swap-in and the swap-out. Callers are expected to defer the
// restore so the previous resolver and notification state come back on
// normal and panicking exits alike:
//
//	restore := dix.WithResolver(temp, true)
//	defer restore()
//
// The restore function is idempotent.
func WithResolver(r apis.MutableResolver, suppress bool) (restore func()) {
	if r == nil {
		return func() {}
	}

	slotMu.Lock()
	old := st.Load()
	st.Store(&state{
		cfg:      old.cfg,
		bld:      old.bld,
		read:     r,
		mut:      r,
		suppress: suppress,
	})
	subs, fire := snapshotChangeSubs(suppress)
	slotMu.Unlock()

	if fire {
		notifyChange(subs)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			slotMu.Lock()
			cur := st.Load()
			st.Store(&state{
				cfg:      cur.cfg,
				bld:      cur.bld,
				read:     old.read,
				mut:      old.mut,
				suppress: old.suppress,
			})
			subs, fire := snapshotChangeSubs(suppress)
			slotMu.Unlock()

			if fire {
				notifyChange(subs)
			}
		})
	}
}

// slotMu serializes slot writers (swaps/reconfigurations) so we never
// publish partially-built states, and guards the change-subscriber list.
var slotMu sync.Mutex

// st is the global slot state.
var st atomic.Pointer[state]

// changeSubs holds resolver-change subscribers. Guarded by slotMu;
// notification batches operate on a copy taken under it.
var changeSubs []*changeEntry

// state is the global slot snapshot.
// Immutable once published via st.Store; writers create a new state and
// swap it atomically, readers never lock.
type state struct {
	// cfg is the global configuration.
	cfg apis.Config
	// bld builds the default resolver on Reset/SetConfig.
	bld apis.Builder
	// read is the current read-only resolver.
	read apis.Resolver
	// mut is the current mutable resolver.
	mut apis.MutableResolver
	// suppress silences resolver-change callbacks while set.
	suppress bool
}

// changeEntry is one resolver-change subscriber. The stopped flag is read
// outside slotMu by in-flight notification batches.
type changeEntry struct {
	fn      func()
	stopped atomic.Bool
}

// snapshotChangeSubs copies the subscriber list under slotMu and reports
// whether the batch should fire at all.
func snapshotChangeSubs(suppress bool) ([]*changeEntry, bool) {
	if suppress || len(changeSubs) == 0 {
		return nil, false
	}
	subs := make([]*changeEntry, len(changeSubs))
	copy(subs, changeSubs)
	return subs, true
}

func notifyChange(subs []*changeEntry) {
	for _, e := range subs {
		if e.stopped.Load() {
			continue
		}
		e.fn()
	}
}

// changeSub is the unsubscribe handle returned by OnResolverChange.
type changeSub struct {
	once sync.Once
	e    *changeEntry
}

func (s *changeSub) Close() error {
	s.once.Do(func() {
		s.e.stopped.Store(true)
		slotMu.Lock()
		for i, cur := range changeSubs {
			if cur == s.e {
				changeSubs = append(changeSubs[:i:i], changeSubs[i+1:]...)
				break
			}
		}
		slotMu.Unlock()
	})
	return nil
}

// inertCloser is returned for subscriptions that can never fire.
type inertCloser struct{}

func (inertCloser) Close() error { return nil }
