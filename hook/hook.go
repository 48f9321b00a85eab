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

package hook

import (
	"sync/atomic"

	"dirpx.dev/wref/apis"
)

// New constructs the collector apis.Hook serving tbl.
// The returned hook is safe for concurrent use provided tbl is.
func New(tbl apis.SlotTable) *Hook {
	return &Hook{tbl: tbl}
}

// Hook nullifies the Counter of each reclaimed object.
type Hook struct {
	tbl apis.SlotTable
	// nullified counts live-to-dead transitions performed by this hook.
	nullified atomic.Int64
}

// Ensure Hook implements apis.Hook.
var _ apis.Hook = (*Hook)(nil)

// Reclaimed tears down the slot for id and nullifies its Counter.
// Objects that were never weakly referenced cost a single table miss.
// It never blocks and never calls back into the collector. It is the only
// place a Counter goes from live to dead.
func (h *Hook) Reclaimed(id apis.ID) bool {
	c, ok := h.tbl.LocateReclaimed(id)
	if !ok {
		return false
	}
	if !c.Nullify() {
		return false
	}
	h.nullified.Add(1)
	return true
}

// Nullified returns how many Counters this hook has nullified.
func (h *Hook) Nullified() int64 {
	return h.nullified.Load()
}
