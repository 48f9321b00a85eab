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
	"dirpx.dev/wref/apis"
	"dirpx.dev/wref/hook"
	"dirpx.dev/wref/slots"
)

// New creates and returns a new instance of an apis.Builder.
func New() apis.Builder {
	return &builder{}
}

// builder is an empty struct to be used as a receiver for builder methods.
type builder struct{}

// BuildTable builds and returns a new sharded apis.SlotTable for cfg.
func (b *builder) BuildTable(cfg apis.Config) apis.SlotTable {
	return slots.New(cfg)
}

// BuildHook builds the collector hook that nullifies counters held in tbl.
func (b *builder) BuildHook(_ apis.Config, tbl apis.SlotTable) apis.Hook {
	if tbl == nil {
		return nil
	}
	return hook.New(tbl)
}
