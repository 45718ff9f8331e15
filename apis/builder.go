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

// Builder constructs the resolver installed in the process-wide slot.
// Applications substitute a Builder to back the slot with a different
// resolver implementation (for example an adapter over a third-party
// container) while keeping the dix contract.
type Builder interface {
	// BuildResolver constructs a resolver for Config. Implementations may
	// pre-register default services (dix seeds its logging facade here).
	BuildResolver(cfg Config) MutableResolver
}
