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
	"io"
	"reflect"

	"dirpx.dev/dix/apis"
)

// The typed helpers below mirror the reflect.Type operations with the type
// parameter supplying the key, so call sites stay free of reflect plumbing.
// The contract qualifier is optional; at most the first value is used.

func oneContract(contract []string) string {
	if len(contract) == 0 {
		return ""
	}
	return contract[0]
}

// Get resolves the most recently registered T, or T's zero value when the
// key is absent, the resolver is disposed, or the stored value is not a T.
func Get[T any](r apis.Resolver, contract ...string) T {
	var zero T
	v := r.GetService(reflect.TypeOf((*T)(nil)).Elem(), oneContract(contract))
	if v == nil {
		return zero
	}
	t, ok := v.(T)
	if !ok {
		return zero
	}
	return t
}

// GetAll resolves every registered T in insertion order. Values of other
// dynamic types registered under the same key are skipped.
func GetAll[T any](r apis.Resolver, contract ...string) []T {
	vs := r.GetServices(reflect.TypeOf((*T)(nil)).Elem(), oneContract(contract))
	out := make([]T, 0, len(vs))
	for _, v := range vs {
		if t, ok := v.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// Has reports whether T has at least one registration.
func Has[T any](r apis.Resolver, contract ...string) bool {
	return r.HasRegistration(reflect.TypeOf((*T)(nil)).Elem(), oneContract(contract))
}

// Register registers factory under T. Unlike the untyped path there is no
// nil service type to normalize; the type parameter is always concrete.
func Register[T any](r apis.MutableResolver, factory func() T, contract ...string) error {
	if factory == nil {
		return ErrNilFactory
	}
	return r.Register(func() any { return factory() }, reflect.TypeOf((*T)(nil)).Elem(), oneContract(contract))
}

// RegisterValue registers a constant value under T.
func RegisterValue[T any](r apis.MutableResolver, value T, contract ...string) error {
	return r.Register(func() any { return value }, reflect.TypeOf((*T)(nil)).Elem(), oneContract(contract))
}

// RegisterLazy registers factory as a lazy singleton under T: evaluated at
// most once, on first resolution.
func RegisterLazy[T any](r apis.MutableResolver, factory func() T, contract ...string) error {
	if factory == nil {
		return ErrNilFactory
	}
	return r.RegisterLazySingleton(func() any { return factory() }, reflect.TypeOf((*T)(nil)).Elem(), oneContract(contract))
}

// UnregisterCurrent removes the most recently added registration for T.
func UnregisterCurrent[T any](r apis.MutableResolver, contract ...string) {
	r.UnregisterCurrent(reflect.TypeOf((*T)(nil)).Elem(), oneContract(contract))
}

// UnregisterAll removes every registration for T.
func UnregisterAll[T any](r apis.MutableResolver, contract ...string) {
	r.UnregisterAll(reflect.TypeOf((*T)(nil)).Elem(), oneContract(contract))
}

// OnRegistration subscribes callback to registration activity for T.
func OnRegistration[T any](r apis.MutableResolver, callback apis.Callback, contract ...string) (io.Closer, error) {
	return r.ServiceRegistrationCallback(reflect.TypeOf((*T)(nil)).Elem(), oneContract(contract), callback)
}
