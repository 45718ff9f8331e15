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
	"errors"
	"io"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-multierror"

	"dirpx.dev/dix/apis"
)

var (
	// ErrNilFactory is returned when a nil factory is registered.
	ErrNilFactory = errors.New("dix(resolver): nil factory provided")
	// ErrNilServiceType is returned when a registration callback is
	// subscribed with a nil service type.
	ErrNilServiceType = errors.New("dix(resolver): nil service type provided")
	// ErrNilCallback is returned when a nil registration callback is subscribed.
	ErrNilCallback = errors.New("dix(resolver): nil callback provided")
)

// Resolver is the built-in default dependency resolver.
//
// The zero value is not usable; construct instances with New.
type Resolver struct {
	// snap is the current snapshot. A nil slot means disposed: reads treat
	// it as permanently empty and writes no-op.
	snap atomic.Pointer[snapshot]

	// mu gates all mutation: snapshot replacement, the callback table, and
	// the dispose transition. Reads never take it.
	mu        sync.Mutex
	callbacks map[key][]*callbackEntry

	log logr.Logger
	cfg apis.Config
}

var _ apis.MutableResolver = (*Resolver)(nil)

// New constructs an empty resolver configured by cfg.
func New(cfg apis.Config) *Resolver {
	r := &Resolver{
		callbacks: make(map[key][]*callbackEntry),
		log:       cfg.Logger,
		cfg:       cfg,
	}
	r.snap.Store(newSnapshot(cfg.Capacity))
	return r
}

// Register appends factory to the end of the key's list via copy-on-write
// and publishes the new snapshot atomically. Subscribed callbacks for the
// key are then notified outside the gate: each fires once per registration
// the key now holds, every invocation with a fresh token.
func (r *Resolver) Register(factory apis.Factory, serviceType reflect.Type, contract string) error {
	if factory == nil {
		return ErrNilFactory
	}
	k := newKey(serviceType, contract)

	r.mu.Lock()
	cur := r.snap.Load()
	if cur == nil {
		r.mu.Unlock()
		return nil
	}
	old := cur.lookup(k)
	next := make([]apis.Factory, len(old)+1)
	copy(next, old)
	next[len(old)] = factory
	r.snap.Store(cur.with(k, next))

	count := len(next)
	var subs []*callbackEntry
	if entries := r.callbacks[k]; len(entries) > 0 {
		subs = make([]*callbackEntry, len(entries))
		copy(subs, entries)
	}
	r.mu.Unlock()

	r.log.V(1).Info("service registered", "type", k.typeName(), "contract", contract, "registrations", count)

	if len(subs) > 0 {
		r.notify(k, subs, count)
	}
	return nil
}

// RegisterLazySingleton registers a deferred exactly-once evaluation of
// factory. The stored factory always returns the same wrapper object, so
// every resolution observes the same singleton value.
func (r *Resolver) RegisterLazySingleton(factory apis.Factory, serviceType reflect.Type, contract string) error {
	if factory == nil {
		return ErrNilFactory
	}
	l := newLazyValue(factory)
	return r.Register(func() any { return l }, serviceType, contract)
}

// GetService returns the value of the most recently registered factory for
// the key, or nil when the key is absent or the resolver is disposed.
func (r *Resolver) GetService(serviceType reflect.Type, contract string) any {
	cur := r.snap.Load()
	if cur == nil {
		return nil
	}
	list := cur.lookup(newKey(serviceType, contract))
	if len(list) == 0 {
		return nil
	}
	return materialize(list[len(list)-1])
}

// GetServices returns every registered value for the key in insertion
// order. The result is never nil.
func (r *Resolver) GetServices(serviceType reflect.Type, contract string) []any {
	cur := r.snap.Load()
	if cur == nil {
		return []any{}
	}
	list := cur.lookup(newKey(serviceType, contract))
	out := make([]any, 0, len(list))
	for _, f := range list {
		out = append(out, materialize(f))
	}
	return out
}

// HasRegistration reports whether the key has at least one registration in
// the current snapshot.
func (r *Resolver) HasRegistration(serviceType reflect.Type, contract string) bool {
	cur := r.snap.Load()
	if cur == nil {
		return false
	}
	return len(cur.lookup(newKey(serviceType, contract))) > 0
}

// UnregisterCurrent pops the most recently added factory for the key.
// Callbacks observe additions only, so none fire here.
func (r *Resolver) UnregisterCurrent(serviceType reflect.Type, contract string) {
	k := newKey(serviceType, contract)

	r.mu.Lock()
	defer r.mu.Unlock()
	cur := r.snap.Load()
	if cur == nil {
		return
	}
	old := cur.lookup(k)
	if len(old) == 0 {
		return
	}
	next := make([]apis.Factory, len(old)-1)
	copy(next, old[:len(old)-1])
	r.snap.Store(cur.with(k, next))
	r.log.V(1).Info("service unregistered", "type", k.typeName(), "contract", contract, "registrations", len(next))
}

// UnregisterAll replaces the key's list with an empty one. The key itself
// survives so later registrations behave exactly like first ones.
func (r *Resolver) UnregisterAll(serviceType reflect.Type, contract string) {
	k := newKey(serviceType, contract)

	r.mu.Lock()
	defer r.mu.Unlock()
	cur := r.snap.Load()
	if cur == nil {
		return
	}
	r.snap.Store(cur.with(k, []apis.Factory{}))
	r.log.V(1).Info("all services unregistered", "type", k.typeName(), "contract", contract)
}

// ServiceRegistrationCallback subscribes callback under the key and
// synchronously replays one invocation per registration that already
// exists, so a late subscriber learns about prior registrations without
// scanning manually. The returned handle unsubscribes on Close.
func (r *Resolver) ServiceRegistrationCallback(serviceType reflect.Type, contract string, callback apis.Callback) (io.Closer, error) {
	if serviceType == nil {
		return nil, ErrNilServiceType
	}
	if callback == nil {
		return nil, ErrNilCallback
	}
	k := newKey(serviceType, contract)

	r.mu.Lock()
	cur := r.snap.Load()
	if cur == nil {
		r.mu.Unlock()
		// Disposed: nothing will ever fire, hand back an inert closer.
		return &subscription{e: &callbackEntry{fn: callback}, r: r, k: k}, nil
	}
	e := &callbackEntry{fn: callback}
	r.callbacks[k] = append(r.callbacks[k], e)
	count := len(cur.lookup(k))
	r.mu.Unlock()

	// Replay outside the gate; the callback may call back into the resolver.
	for i := 0; i < count; i++ {
		if e.invoke() {
			r.removeCallback(k, e)
			break
		}
	}

	return &subscription{r: r, k: k, e: e}, nil
}

// Duplicate returns a new resolver seeded with a per-key copy of the
// current registrations. Callback subscriptions are not duplicated.
// A disposed source yields a fresh empty resolver.
func (r *Resolver) Duplicate() apis.MutableResolver {
	dup := New(r.cfg)
	cur := r.snap.Load()
	if cur != nil {
		dup.snap.Store(cur.deepCopy())
	}
	return dup
}

// Close disposes the resolver exactly once. The snapshot slot is swapped to
// nil under the gate; racing writers either complete before the swap (and
// are cleaned up here) or observe the nil slot and no-op. Remaining
// callbacks are notified once each with a pre-disposed token, then every
// factory in the captured snapshot is materialized — except lazy singletons
// that were never forced — and each instance implementing io.Closer is
// closed. Failures never abort the pass; the aggregate is returned after it
// completes.
func (r *Resolver) Close() error {
	r.mu.Lock()
	prior := r.snap.Load()
	if prior == nil {
		r.mu.Unlock()
		return nil
	}
	r.snap.Store(nil)
	cbs := r.callbacks
	r.callbacks = nil
	r.mu.Unlock()

	for _, entries := range cbs {
		for _, e := range entries {
			if e.isStopped() {
				continue
			}
			e.fn(disposedToken())
			e.stop()
		}
	}

	var errs *multierror.Error
	for k, list := range prior.regs {
		for _, f := range list {
			v := f()
			if l, ok := v.(*lazyValue); ok {
				if !l.isForced() {
					continue
				}
				v = l.force()
			}
			c, ok := v.(io.Closer)
			if !ok {
				continue
			}
			if err := c.Close(); err != nil {
				r.log.Error(err, "failed to close service", "type", k.typeName(), "contract", k.contract)
				errs = multierror.Append(errs, err)
			}
		}
	}
	r.log.V(1).Info("resolver disposed", "keys", len(prior.regs))
	return errs.ErrorOrNil()
}

// notify delivers one notification batch for k to the copied subscriber
// list: count invocations per entry, stopping an entry as soon as it
// disposes a token. Entries stopped during the batch are pruned afterwards.
func (r *Resolver) notify(k key, subs []*callbackEntry, count int) {
	stale := false
	for _, e := range subs {
		for i := 0; i < count; i++ {
			if e.invoke() {
				stale = true
				break
			}
		}
	}
	if stale {
		r.pruneStopped(k)
	}
}

// removeCallback detaches e from the key's observer list under the gate.
func (r *Resolver) removeCallback(k key, e *callbackEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.callbacks == nil {
		return
	}
	entries := r.callbacks[k]
	for i, cur := range entries {
		if cur == e {
			r.callbacks[k] = append(entries[:i:i], entries[i+1:]...)
			break
		}
	}
	if len(r.callbacks[k]) == 0 {
		delete(r.callbacks, k)
	}
}

// pruneStopped drops every stopped entry for k before the next notification
// cycle for that key.
func (r *Resolver) pruneStopped(k key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.callbacks == nil {
		return
	}
	entries := r.callbacks[k]
	kept := entries[:0:0]
	for _, e := range entries {
		if !e.isStopped() {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		delete(r.callbacks, k)
		return
	}
	r.callbacks[k] = kept
}
