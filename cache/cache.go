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

// Package cache provides a memoizing most-recently-used cache: a
// capacity-bounded map whose values are computed on first access by a
// caller-supplied function, with the least recently used entries evicted
// once the capacity is exceeded. One mutex guards everything; the cache is
// a peer utility of the resolver, not part of its contract.
package cache

import (
	"container/list"
	"errors"
	"sync"

	"github.com/hashicorp/go-multierror"

	"dirpx.dev/dix/logging"
)

var (
	// ErrNilCalculate is returned when New is given a nil calculate function.
	ErrNilCalculate = errors.New("dix(cache): nil calculate function provided")
	// ErrInvalidSize is returned when New is given a non-positive capacity.
	ErrInvalidSize = errors.New("dix(cache): cache size must be positive")
)

// Cache memoizes calculate results per key, keeping at most size entries.
// All methods are safe for concurrent use.
type Cache[K comparable, V any] struct {
	mu        sync.Mutex
	calculate func(K) V
	release   func(V) error
	log       logging.Logger
	size      int

	entries map[K]*entry[K, V]
	order   *list.List // front = most recently used; holds K
}

type entry[K comparable, V any] struct {
	value V
	elem  *list.Element
}

// Option configures a Cache during construction.
type Option[V any] func(*options[V])

type options[V any] struct {
	release func(V) error
	log     logging.Logger
}

// WithRelease sets a hook invoked for every value leaving the cache, on
// eviction and invalidation. Release failures are reported where the
// operation's signature allows and logged otherwise.
func WithRelease[V any](release func(V) error) Option[V] {
	return func(o *options[V]) {
		o.release = release
	}
}

// WithLogger sets the logger receiving eviction release failures.
func WithLogger[V any](log logging.Logger) Option[V] {
	return func(o *options[V]) {
		o.log = log
	}
}

// New constructs a cache computing values with calculate and holding at
// most size entries.
func New[K comparable, V any](calculate func(K) V, size int, opts ...Option[V]) (*Cache[K, V], error) {
	if calculate == nil {
		return nil, ErrNilCalculate
	}
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	var o options[V]
	o.log = logging.Discard()
	for _, fn := range opts {
		fn(&o)
	}
	return &Cache[K, V]{
		calculate: calculate,
		release:   o.release,
		log:       o.log,
		size:      size,
		entries:   make(map[K]*entry[K, V], size),
		order:     list.New(),
	}, nil
}

// Get returns the cached value for k, computing and caching it on first
// access. The entry becomes the most recently used; if the cache is over
// capacity afterwards, the least recently used entry is evicted and its
// value released.
func (c *Cache[K, V]) Get(k K) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[k]; ok {
		c.order.MoveToFront(e.elem)
		return e.value
	}

	v := c.calculate(k)
	c.entries[k] = &entry[K, V]{value: v, elem: c.order.PushFront(k)}

	for c.order.Len() > c.size {
		oldest := c.order.Back()
		victim := oldest.Value.(K)
		c.evict(victim)
	}
	return v
}

// Peek returns the cached value for k without computing it or refreshing
// its recency.
func (c *Cache[K, V]) Peek(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[k]; ok {
		return e.value, true
	}
	var zero V
	return zero, false
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// CachedValues returns every cached value in most-to-least recently used order.
func (c *Cache[K, V]) CachedValues() []V {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]V, 0, c.order.Len())
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		out = append(out, c.entries[elem.Value.(K)].value)
	}
	return out
}

// Invalidate drops k's entry if present and releases its value, returning
// the release error.
func (c *Cache[K, V]) Invalidate(k K) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[k]
	if !ok {
		return nil
	}
	c.order.Remove(e.elem)
	delete(c.entries, k)
	if c.release == nil {
		return nil
	}
	return c.release(e.value)
}

// InvalidateAll drops every entry. Each value is released even when earlier
// releases fail; failures are returned aggregated after the full pass.
func (c *Cache[K, V]) InvalidateAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs *multierror.Error
	if c.release != nil {
		for elem := c.order.Front(); elem != nil; elem = elem.Next() {
			if err := c.release(c.entries[elem.Value.(K)].value); err != nil {
				errs = multierror.Append(errs, err)
			}
		}
	}
	c.entries = make(map[K]*entry[K, V], c.size)
	c.order.Init()
	return errs.ErrorOrNil()
}

// evict removes k and releases its value. Caller holds c.mu. Get has no
// error channel for eviction, so release failures are logged.
func (c *Cache[K, V]) evict(k K) {
	e := c.entries[k]
	c.order.Remove(e.elem)
	delete(c.entries, k)
	if c.release == nil {
		return
	}
	if err := c.release(e.value); err != nil {
		c.log.Error(err, "failed to release evicted value")
	}
}
