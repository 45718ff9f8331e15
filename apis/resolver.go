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

package apis

import (
	"io"
	"reflect"
)

// Factory produces a service instance on demand. A factory may return nil;
// callers treat a nil result the same as an absent registration value.
type Factory func() any

// Callback observes registration activity for a single watched
// (service type, contract) key.
//
// The token handed to each invocation is fresh for that invocation.
// Disposing it from inside the callback unsubscribes the callback once the
// current notification batch completes. During resolver teardown the
// callback is invoked one final time with a token that is already disposed,
// which lets observers distinguish teardown from a new registration.
type Callback func(token Token)

// Token is the disposal-signaling handle passed to a Callback invocation.
type Token interface {
	// Dispose marks the token disposed. Safe to call more than once.
	Dispose()
	// IsDisposed reports whether the token has been disposed.
	IsDisposed() bool
}

// Resolver is the read-only resolution surface.
//
// A nil serviceType is a valid key: it addresses registrations made against
// the nil type (legacy compatibility). An empty contract and "no contract"
// are the same key.
//
// Implementations must be safe for concurrent use; reads may not block
// behind writers on the same instance.
type Resolver interface {
	// GetService returns the most recently registered service for the key,
	// or nil when the key is absent or the resolver is disposed.
	GetService(serviceType reflect.Type, contract string) any

	// GetServices returns every service registered for the key in insertion
	// order. The result is never nil; it is empty when the key is absent or
	// the resolver is disposed.
	GetServices(serviceType reflect.Type, contract string) []any

	// HasRegistration reports whether the key has at least one registration.
	HasRegistration(serviceType reflect.Type, contract string) bool
}

// MutableResolver extends Resolver with registration, observation, and
// lifecycle operations.
//
// Every write on a disposed resolver is a silent no-op; disposal is a
// terminal but benign state, never an error condition.
type MutableResolver interface {
	Resolver

	// Register appends factory to the key's registration list.
	// Returns an error only when factory is nil.
	Register(factory Factory, serviceType reflect.Type, contract string) error

	// RegisterLazySingleton registers a factory whose value is computed at
	// most once, on first resolution, and cached thereafter. The underlying
	// factory runs exactly once even under concurrent first access.
	// Returns an error only when factory is nil.
	RegisterLazySingleton(factory Factory, serviceType reflect.Type, contract string) error

	// UnregisterCurrent removes the most recently added factory for the key.
	// No-op when the key is absent or empty.
	UnregisterCurrent(serviceType reflect.Type, contract string)

	// UnregisterAll removes every factory for the key. The key itself
	// survives so later registrations behave normally.
	UnregisterAll(serviceType reflect.Type, contract string)

	// ServiceRegistrationCallback subscribes callback to registration
	// activity for the key and synchronously replays one invocation per
	// registration that already exists. Closing the returned handle
	// unsubscribes; Close is idempotent. Returns an error when serviceType
	// or callback is nil.
	ServiceRegistrationCallback(serviceType reflect.Type, contract string, callback Callback) (io.Closer, error)

	// Duplicate returns a new resolver seeded with a copy of the current
	// registrations. The copy does not alias the source: mutations on
	// either side are invisible to the other. Duplicating a disposed
	// resolver yields a fresh empty resolver.
	Duplicate() MutableResolver

	// Close disposes the resolver: notifies remaining callbacks with a
	// pre-disposed token, closes every materialized service implementing
	// io.Closer, and leaves the resolver permanently empty. Close is
	// idempotent; individual close failures never abort the cleanup pass
	// and are returned aggregated after it completes.
	Close() error
}
