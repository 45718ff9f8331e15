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

package resolver_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/dix/apis"
	"dirpx.dev/dix/config"
	"dirpx.dev/dix/resolver"
)

// greeter is a plain registration target.
type greeter struct {
	name string
}

// countingCloser records how often it was closed and optionally fails.
type countingCloser struct {
	closed int
	err    error
}

func (c *countingCloser) Close() error {
	c.closed++
	return c.err
}

var greeterType = reflect.TypeOf(greeter{})

func newResolver(tb testing.TB) *resolver.Resolver {
	tb.Helper()
	return resolver.New(config.Default())
}

func factoryOf(v any) apis.Factory {
	return func() any { return v }
}

//
// -----------------------------------------------------------------------------
// Register / GetService / GetServices / HasRegistration
// -----------------------------------------------------------------------------

// TestRegister_NilFactory verifies nil factories are rejected before any mutation.
func TestRegister_NilFactory(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	err := r.Register(nil, greeterType, "")
	require.ErrorIs(t, err, resolver.ErrNilFactory)
	assert.False(t, r.HasRegistration(greeterType, ""))
}

// TestGetService_LastWriteWins verifies singular lookups return the most
// recently registered factory's value.
func TestGetService_LastWriteWins(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	first := &greeter{name: "first"}
	second := &greeter{name: "second"}
	require.NoError(t, r.Register(factoryOf(first), greeterType, ""))
	require.NoError(t, r.Register(factoryOf(second), greeterType, ""))

	got := r.GetService(greeterType, "")
	require.Same(t, second, got)
}

// TestGetServices_InsertionOrder verifies multi-value lookups preserve
// registration order.
func TestGetServices_InsertionOrder(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	first := &greeter{name: "first"}
	second := &greeter{name: "second"}
	require.NoError(t, r.Register(factoryOf(first), greeterType, ""))
	require.NoError(t, r.Register(factoryOf(second), greeterType, ""))

	got := r.GetServices(greeterType, "")
	require.Len(t, got, 2)
	assert.Same(t, first, got[0])
	assert.Same(t, second, got[1])
}

// TestGetService_Miss verifies absence is a nil return, never an error.
func TestGetService_Miss(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	assert.Nil(t, r.GetService(greeterType, ""))
	assert.NotNil(t, r.GetServices(greeterType, ""))
	assert.Empty(t, r.GetServices(greeterType, ""))
	assert.False(t, r.HasRegistration(greeterType, ""))
}

// TestContracts_SeparateKeys verifies contract-qualified registrations do
// not bleed into the unqualified key and vice versa.
func TestContracts_SeparateKeys(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	plain := &greeter{name: "plain"}
	named := &greeter{name: "named"}
	require.NoError(t, r.Register(factoryOf(plain), greeterType, ""))
	require.NoError(t, r.Register(factoryOf(named), greeterType, "named"))

	assert.Same(t, plain, r.GetService(greeterType, ""))
	assert.Same(t, named, r.GetService(greeterType, "named"))
	assert.Len(t, r.GetServices(greeterType, ""), 1)
	assert.False(t, r.HasRegistration(greeterType, "other"))
}

// TestNilServiceType_RoundTrip verifies registering and resolving against a
// nil service type works through the sentinel key, including with contracts.
func TestNilServiceType_RoundTrip(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	v := &greeter{name: "nil-keyed"}
	require.NoError(t, r.Register(factoryOf(v), nil, ""))

	assert.True(t, r.HasRegistration(nil, ""))
	assert.Same(t, v, r.GetService(nil, ""))

	qualified := &greeter{name: "nil-keyed-contract"}
	require.NoError(t, r.Register(factoryOf(qualified), nil, "q"))
	assert.Same(t, qualified, r.GetService(nil, "q"))
	assert.Same(t, v, r.GetService(nil, ""))
}

// TestFactoryReturningNil verifies a factory producing nil resolves to nil
// without errors.
func TestFactoryReturningNil(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	require.NoError(t, r.Register(func() any { return nil }, greeterType, ""))
	assert.True(t, r.HasRegistration(greeterType, ""))
	assert.Nil(t, r.GetService(greeterType, ""))
}

//
// -----------------------------------------------------------------------------
// Unregistration
// -----------------------------------------------------------------------------

// TestUnregisterCurrent_PopsNewest verifies only the most recent factory is
// removed.
func TestUnregisterCurrent_PopsNewest(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	first := &greeter{name: "first"}
	second := &greeter{name: "second"}
	require.NoError(t, r.Register(factoryOf(first), greeterType, ""))
	require.NoError(t, r.Register(factoryOf(second), greeterType, ""))

	r.UnregisterCurrent(greeterType, "")
	assert.Same(t, first, r.GetService(greeterType, ""))

	r.UnregisterCurrent(greeterType, "")
	assert.Nil(t, r.GetService(greeterType, ""))
	assert.False(t, r.HasRegistration(greeterType, ""))

	// Empty key: no-op, no panic.
	r.UnregisterCurrent(greeterType, "")
}

// TestUnregisterAll_ClearsButKeySurvives verifies the key keeps working
// after being emptied.
func TestUnregisterAll_ClearsButKeySurvives(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	require.NoError(t, r.Register(factoryOf(&greeter{}), greeterType, ""))
	require.NoError(t, r.Register(factoryOf(&greeter{}), greeterType, ""))

	r.UnregisterAll(greeterType, "")
	assert.False(t, r.HasRegistration(greeterType, ""))
	assert.Empty(t, r.GetServices(greeterType, ""))

	later := &greeter{name: "later"}
	require.NoError(t, r.Register(factoryOf(later), greeterType, ""))
	assert.Same(t, later, r.GetService(greeterType, ""))
}

//
// -----------------------------------------------------------------------------
// Lazy singletons
// -----------------------------------------------------------------------------

// TestLazySingleton_EvaluatesOnce verifies the factory runs at most once
// and every resolution returns the same instance.
func TestLazySingleton_EvaluatesOnce(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	calls := 0
	require.NoError(t, r.RegisterLazySingleton(func() any {
		calls++
		return &greeter{name: "single"}
	}, greeterType, ""))

	assert.Equal(t, 0, calls)

	a := r.GetService(greeterType, "")
	b := r.GetService(greeterType, "")
	require.NotNil(t, a)
	assert.Same(t, a, b)
	assert.Equal(t, 1, calls)

	// Multi-value lookups unwrap the same singleton.
	all := r.GetServices(greeterType, "")
	require.Len(t, all, 1)
	assert.Same(t, a, all[0])
	assert.Equal(t, 1, calls)
}

// TestLazySingleton_NilFactory verifies argument validation.
func TestLazySingleton_NilFactory(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	require.ErrorIs(t, r.RegisterLazySingleton(nil, greeterType, ""), resolver.ErrNilFactory)
}

//
// -----------------------------------------------------------------------------
// Registration callbacks
// -----------------------------------------------------------------------------

// TestCallback_ReplaysExistingRegistrations verifies a late subscriber is
// invoked synchronously once per pre-existing registration.
func TestCallback_ReplaysExistingRegistrations(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	require.NoError(t, r.Register(factoryOf(&greeter{}), greeterType, ""))
	require.NoError(t, r.Register(factoryOf(&greeter{}), greeterType, ""))

	fired := 0
	sub, err := r.ServiceRegistrationCallback(greeterType, "", func(tok apis.Token) {
		assert.False(t, tok.IsDisposed())
		fired++
	})
	require.NoError(t, err)
	defer sub.Close()

	assert.Equal(t, 2, fired)
}

// TestCallback_FiresOnRegister verifies subscribed callbacks observe
// additions, one invocation per registration the key holds after the add.
func TestCallback_FiresOnRegister(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	fired := 0
	sub, err := r.ServiceRegistrationCallback(greeterType, "", func(apis.Token) {
		fired++
	})
	require.NoError(t, err)
	defer sub.Close()

	// Nothing to replay on an empty key.
	assert.Equal(t, 0, fired)

	require.NoError(t, r.Register(factoryOf(&greeter{}), greeterType, ""))
	assert.Equal(t, 1, fired)

	require.NoError(t, r.Register(factoryOf(&greeter{}), greeterType, ""))
	assert.Equal(t, 3, fired)
}

// TestCallback_OtherKeysSilent verifies callbacks only observe their own key.
func TestCallback_OtherKeysSilent(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	fired := 0
	sub, err := r.ServiceRegistrationCallback(greeterType, "watched", func(apis.Token) {
		fired++
	})
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, r.Register(factoryOf(&greeter{}), greeterType, ""))
	require.NoError(t, r.Register(factoryOf(&greeter{}), reflect.TypeOf(0), "watched"))
	assert.Equal(t, 0, fired)
}

// TestCallback_NilArguments verifies argument validation.
func TestCallback_NilArguments(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	_, err := r.ServiceRegistrationCallback(nil, "", func(apis.Token) {})
	require.ErrorIs(t, err, resolver.ErrNilServiceType)

	_, err = r.ServiceRegistrationCallback(greeterType, "", nil)
	require.ErrorIs(t, err, resolver.ErrNilCallback)
}

// TestCallback_UnsubscribeStopsDelivery verifies a closed subscription is
// never invoked again and that Close is idempotent.
func TestCallback_UnsubscribeStopsDelivery(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	fired := 0
	sub, err := r.ServiceRegistrationCallback(greeterType, "", func(apis.Token) {
		fired++
	})
	require.NoError(t, err)

	require.NoError(t, r.Register(factoryOf(&greeter{}), greeterType, ""))
	assert.Equal(t, 1, fired)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())

	require.NoError(t, r.Register(factoryOf(&greeter{}), greeterType, ""))
	assert.Equal(t, 1, fired)
}

// TestCallback_SelfDisposeDuringInvocation verifies a callback that
// disposes its token mid-invocation is removed before the next cycle.
func TestCallback_SelfDisposeDuringInvocation(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	fired := 0
	sub, err := r.ServiceRegistrationCallback(greeterType, "", func(tok apis.Token) {
		fired++
		tok.Dispose()
	})
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, r.Register(factoryOf(&greeter{}), greeterType, ""))
	assert.Equal(t, 1, fired)

	require.NoError(t, r.Register(factoryOf(&greeter{}), greeterType, ""))
	assert.Equal(t, 1, fired)
}

// TestCallback_SelfDisposeDuringReplay verifies self-unsubscription also
// cuts the synchronous replay short.
func TestCallback_SelfDisposeDuringReplay(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	require.NoError(t, r.Register(factoryOf(&greeter{}), greeterType, ""))
	require.NoError(t, r.Register(factoryOf(&greeter{}), greeterType, ""))

	fired := 0
	sub, err := r.ServiceRegistrationCallback(greeterType, "", func(tok apis.Token) {
		fired++
		tok.Dispose()
	})
	require.NoError(t, err)
	defer sub.Close()

	assert.Equal(t, 1, fired)
}

//
// -----------------------------------------------------------------------------
// Disposal
// -----------------------------------------------------------------------------

// TestClose_Idempotent verifies a second Close neither fails nor
// double-closes instances.
func TestClose_Idempotent(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	c := &countingCloser{}
	require.NoError(t, r.Register(factoryOf(c), greeterType, ""))

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.Equal(t, 1, c.closed)
}

// TestClose_DisposesMaterializedInstances verifies every factory across
// every key is materialized and closed.
func TestClose_DisposesMaterializedInstances(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	a := &countingCloser{}
	b := &countingCloser{}
	require.NoError(t, r.Register(factoryOf(a), greeterType, ""))
	require.NoError(t, r.Register(factoryOf(b), greeterType, "other"))

	require.NoError(t, r.Close())
	assert.Equal(t, 1, a.closed)
	assert.Equal(t, 1, b.closed)
}

// TestClose_AggregatesFailures verifies the cleanup pass continues past
// individual failures and surfaces them all afterwards.
func TestClose_AggregatesFailures(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	errA := errors.New("close a")
	errB := errors.New("close b")
	a := &countingCloser{err: errA}
	b := &countingCloser{err: errB}
	ok := &countingCloser{}
	require.NoError(t, r.Register(factoryOf(a), greeterType, ""))
	require.NoError(t, r.Register(factoryOf(b), greeterType, "other"))
	require.NoError(t, r.Register(factoryOf(ok), greeterType, "fine"))

	err := r.Close()
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)

	// Every instance was attempted despite the failures.
	assert.Equal(t, 1, a.closed)
	assert.Equal(t, 1, b.closed)
	assert.Equal(t, 1, ok.closed)
}

// TestClose_SkipsUnforcedLazies verifies disposal never creates a singleton
// just to tear it down.
func TestClose_SkipsUnforcedLazies(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	calls := 0
	require.NoError(t, r.RegisterLazySingleton(func() any {
		calls++
		return &countingCloser{}
	}, greeterType, ""))

	require.NoError(t, r.Close())
	assert.Equal(t, 0, calls)
}

// TestClose_DisposesForcedLazies verifies a singleton that was resolved is
// closed like any other instance.
func TestClose_DisposesForcedLazies(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	c := &countingCloser{}
	require.NoError(t, r.RegisterLazySingleton(factoryOf(c), greeterType, ""))

	require.Same(t, c, r.GetService(greeterType, ""))
	require.NoError(t, r.Close())
	assert.Equal(t, 1, c.closed)
}

// TestClose_NotifiesCallbacksWithDisposedToken verifies observers learn
// about teardown through a pre-disposed token, exactly once.
func TestClose_NotifiesCallbacksWithDisposedToken(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	var tokens []bool
	sub, err := r.ServiceRegistrationCallback(greeterType, "", func(tok apis.Token) {
		tokens = append(tokens, tok.IsDisposed())
	})
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, r.Register(factoryOf(&greeter{}), greeterType, ""))
	require.NoError(t, r.Close())

	require.Len(t, tokens, 2)
	assert.False(t, tokens[0])
	assert.True(t, tokens[1])
}

// TestDisposed_WritesNoOpReadsEmpty verifies the terminal state: writes
// return normally and do nothing, reads come back empty.
func TestDisposed_WritesNoOpReadsEmpty(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	require.NoError(t, r.Register(factoryOf(&greeter{}), greeterType, ""))
	require.NoError(t, r.Close())

	require.NoError(t, r.Register(factoryOf(&greeter{}), greeterType, ""))
	require.NoError(t, r.RegisterLazySingleton(factoryOf(&greeter{}), greeterType, ""))
	r.UnregisterCurrent(greeterType, "")
	r.UnregisterAll(greeterType, "")

	assert.Nil(t, r.GetService(greeterType, ""))
	assert.NotNil(t, r.GetServices(greeterType, ""))
	assert.Empty(t, r.GetServices(greeterType, ""))
	assert.False(t, r.HasRegistration(greeterType, ""))

	sub, err := r.ServiceRegistrationCallback(greeterType, "", func(apis.Token) {
		t.Error("callback on disposed resolver must never fire")
	})
	require.NoError(t, err)
	require.NoError(t, sub.Close())
}

//
// -----------------------------------------------------------------------------
// Duplication
// -----------------------------------------------------------------------------

// TestDuplicate_Isolation verifies mutations on either side stay invisible
// to the other.
func TestDuplicate_Isolation(t *testing.T) {
	t.Parallel()

	r1 := newResolver(t)
	shared := &greeter{name: "shared"}
	require.NoError(t, r1.Register(factoryOf(shared), greeterType, ""))

	r2 := r1.Duplicate()
	assert.Same(t, shared, r2.GetService(greeterType, ""))

	otherType := reflect.TypeOf(0)
	require.NoError(t, r2.Register(factoryOf(42), otherType, ""))
	assert.False(t, r1.HasRegistration(otherType, ""))

	require.NoError(t, r2.Register(factoryOf(&greeter{}), greeterType, ""))
	assert.Len(t, r1.GetServices(greeterType, ""), 1)
	assert.Len(t, r2.GetServices(greeterType, ""), 2)

	r1.UnregisterAll(greeterType, "")
	assert.True(t, r2.HasRegistration(greeterType, ""))
}

// TestDuplicate_OfDisposed verifies duplicating a disposed resolver yields
// a fresh, usable, empty resolver.
func TestDuplicate_OfDisposed(t *testing.T) {
	t.Parallel()

	r1 := newResolver(t)
	require.NoError(t, r1.Register(factoryOf(&greeter{}), greeterType, ""))
	require.NoError(t, r1.Close())

	r2 := r1.Duplicate()
	assert.False(t, r2.HasRegistration(greeterType, ""))
	require.NoError(t, r2.Register(factoryOf(&greeter{}), greeterType, ""))
	assert.True(t, r2.HasRegistration(greeterType, ""))
}
