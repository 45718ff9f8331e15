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

package builder

import (
	"dirpx.dev/dix/apis"
	"dirpx.dev/dix/logging"
	"dirpx.dev/dix/resolver"
)

// New creates and returns a new instance of an apis.Builder.
func New() apis.Builder {
	return &builder{}
}

// builder is an empty struct to be used as a receiver for builder methods.
type builder struct{}

// BuildResolver builds the default resolver for the process-wide slot and
// seeds it with the baseline services every dix application expects: the
// logging facade derived from cfg.Logger.
func (b *builder) BuildResolver(cfg apis.Config) apis.MutableResolver {
	r := resolver.New(cfg)
	_ = resolver.RegisterValue(r, logging.New(cfg.Logger))
	return r
}
