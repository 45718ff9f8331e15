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

// Package resolver provides the built-in default dependency resolver
// backing the dix process-wide slot.
//
// A Resolver maps (service type, contract) keys to ordered lists of
// factories. The full mapping lives in an immutable snapshot behind an
// atomic pointer: readers (GetService, GetServices, HasRegistration) load
// the pointer once and never take a lock, so they cannot block behind
// writers and always observe a fully-formed mapping. Writers (Register,
// UnregisterCurrent, UnregisterAll, Close) serialize through a single
// mutex, clone the mapping with only the affected key's list replaced, and
// publish the clone atomically.
//
// Singular lookups follow last-write-wins: the most recently registered
// factory for a key answers GetService, while GetServices returns every
// factory's value in insertion order.
//
// Registration activity per key can be observed through
// ServiceRegistrationCallback. The callback table is a separate,
// mutex-guarded structure consulted only on the write path; it never
// contaminates the lock-free reads.
//
// A nil snapshot pointer marks the resolver disposed. Disposal is
// idempotent and terminal: reads return empty results, writes silently do
// nothing, and every service materialized during the final cleanup pass
// that implements io.Closer is closed, with failures aggregated rather
// than aborting the pass. Lazy singletons that were never resolved are
// skipped instead of being created just to be torn down.
package resolver
