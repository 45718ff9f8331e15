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

import "github.com/go-logr/logr"

// Config carries read-only construction knobs for resolvers.
// It is passed by value and should be treated as immutable by implementations.
type Config struct {
	// Logger receives resolver lifecycle events (registrations at verbose
	// levels, disposal failures via Error). The zero logr.Logger discards.
	Logger logr.Logger

	// Capacity hints the initial size of the registration table.
	Capacity int
}
