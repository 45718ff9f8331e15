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

import "dirpx.dev/dix/apis"

// snapshot is a point-in-time view of every registration. Once published
// through the resolver's atomic slot, neither the map nor any of its lists
// is mutated again; all updates go through with, which replaces only the
// affected key's list in a fresh top-level map.
type snapshot struct {
	regs map[key][]apis.Factory
}

// newSnapshot returns an empty snapshot sized for capacity entries.
func newSnapshot(capacity int) *snapshot {
	if capacity < 0 {
		capacity = 0
	}
	return &snapshot{regs: make(map[key][]apis.Factory, capacity)}
}

// lookup returns the key's factory list, or nil when absent.
func (s *snapshot) lookup(k key) []apis.Factory {
	return s.regs[k]
}

// with produces a new snapshot in which k maps to factories and every other
// key keeps its existing list reference.
func (s *snapshot) with(k key, factories []apis.Factory) *snapshot {
	regs := make(map[key][]apis.Factory, len(s.regs)+1)
	for sk, list := range s.regs {
		regs[sk] = list
	}
	regs[k] = factories
	return &snapshot{regs: regs}
}

// deepCopy duplicates the snapshot with per-key list copies, so mutations
// derived from either side never alias the other.
func (s *snapshot) deepCopy() *snapshot {
	regs := make(map[key][]apis.Factory, len(s.regs))
	for k, list := range s.regs {
		dup := make([]apis.Factory, len(list))
		copy(dup, list)
		regs[k] = dup
	}
	return &snapshot{regs: regs}
}
