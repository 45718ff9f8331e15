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

import "reflect"

// nilService is the reserved internal type token substituted when a caller
// registers or resolves against a nil service type. It is never visible to
// user code and never collides with a real user type.
type nilService struct{}

// nilServiceType is the sentinel key component for nil service types.
var nilServiceType = reflect.TypeOf(nilService{})

// key identifies one registration list: a service type plus an optional
// contract qualifier.
type key struct {
	typ      reflect.Type
	contract string
}

// newKey normalizes (serviceType, contract) into a key. A nil serviceType
// maps to the reserved sentinel type; contract "" means "no contract", so
// the two are indistinguishable by construction. Equivalent inputs always
// produce equal keys.
func newKey(serviceType reflect.Type, contract string) key {
	if serviceType == nil {
		serviceType = nilServiceType
	}
	return key{typ: serviceType, contract: contract}
}

// typeName renders the key's type for log output.
func (k key) typeName() string {
	if k.typ == nilServiceType {
		return "<nil>"
	}
	return k.typ.String()
}
