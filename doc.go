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

// Package dix provides a global, process-wide service location slot.
//
// dix lets libraries and applications register and resolve services by
// (type, contract) key without binding to a specific dependency-injection
// container. Libraries resolve through the slot; applications decide at
// startup what backs it.
//
// # Design
//
// The package holds an atomic pointer to an immutable state struct carrying
// four things:
//
//   - Config: construction knobs for resolvers (logger, capacity hint).
//     See dirpx.dev/dix/config for the functional options.
//
//   - Resolver pair: the current read-only view and the current mutable
//     resolver. Both reference the same instance unless an application
//     installs something more exotic. The default is the built-in
//     dirpx.dev/dix/resolver implementation.
//
//   - Builder: a pluggable factory that constructs the default resolver for
//     a given Config. Substituting the Builder is how an application backs
//     the slot with an adapter over a third-party container while keeping
//     the dix contract.
//
// Readers load the pointer, use it, and never mutate it. Writers build a
// brand-new state and atomically swap it in. This means slot lookups are
// lock-free on the hot path:
//
//	svc := resolver.Get[MyService](dix.Current())
//
// and concurrent callers always see a consistent snapshot.
//
// # Global API
//
// Read helpers:
//
//	Current() apis.Resolver
//	CurrentMutable() apis.MutableResolver
//	Config() apis.Config
//
// These are safe for concurrent use without additional locking.
//
// Mutation helpers:
//
//	SetResolver(r apis.MutableResolver)
//	SetBuilder(b apis.Builder)
//	SetConfig(cfg apis.Config)
//	Reset()
//
// Each of these acquires an internal slot lock, derives a new state, and
// publishes it atomically. Reset rebuilds a clean default resolver through
// the current builder; tests use it to get deterministic state between
// cases.
//
// Observation:
//
//	OnResolverChange(fn func()) io.Closer
//
// fires fn once immediately for the installed resolver and again on every
// subsequent swap, until the handle is closed.
//
// # Temporary scopes
//
// WithResolver swaps the slot for the duration of a scope and returns the
// restore function; deferring it guarantees the previous resolver and
// notification state come back on normal and panicking exits alike:
//
//	restore := dix.WithResolver(testResolver, true)
//	defer restore()
//
// Passing suppress=true keeps resolver-change callbacks silent for both the
// swap-in and the swap-out, which test harnesses use to avoid waking
// production observers.
//
// # Scope
//
// dix is intentionally small. It resolves flat (type, contract) keys; there
// is no dependency graph, no constructor injection, and no UI framework
// integration. The resolver contract lives in dirpx.dev/dix/apis; the
// default implementation and its typed helpers live in
// dirpx.dev/dix/resolver; dirpx.dev/dix/logging and dirpx.dev/dix/cache are
// peer utilities registered through, or used alongside, the slot.
package dix
