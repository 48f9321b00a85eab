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

// SlotTable binds object identities to their single Counter. It is the
// side-table equivalent of a per-object metaobject.
// Implementations must be safe for concurrent use without external locking.
type SlotTable interface {
	// GetOrCreate returns the Counter installed for obj, installing a new
	// one if none exists. Concurrent first calls for the same object all
	// observe the same Counter.
	GetOrCreate(obj Object) (Counter, error)
	// LocateReclaimed returns the Counter of a reclaimed object and tears
	// its slot down. It reports false if no slot was ever installed.
	LocateReclaimed(id ID) (Counter, bool)
	// Lookup returns the Counter installed for id without modifying the table.
	Lookup(id ID) (Counter, bool)
	// Entries returns a snapshot for diagnostics (order is unspecified).
	Entries() []Slot
	// Count returns the number of installed slots.
	Count() int
	// Stats returns a snapshot of the table's counters.
	Stats() Stats
}

// Slot is a single (identity, Counter) binding in a SlotTable snapshot.
type Slot struct {
	// ID is the identity of the tracked object.
	ID ID
	// Counter is the Counter owned by the slot.
	Counter Counter
}

// Stats is a point-in-time snapshot of slot table activity.
type Stats struct {
	// Installed is the number of slots ever installed.
	Installed int64
	// Discarded is the number of speculative Counters dropped by callers
	// that lost an install race.
	Discarded int64
	// Released is the number of slots torn down by LocateReclaimed.
	Released int64
	// Live is the number of slots currently installed.
	Live int64
}
