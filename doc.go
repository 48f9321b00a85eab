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

// Package wref provides process-wide weak references for an object model
// whose collector is driven from outside the Go runtime.
//
// A weak handle observes an object without keeping it alive. When the
// collector reclaims the object, every handle to it reports absence at
// once. wref achieves this with one level of indirection:
//
//	[ref1]  [ref2]
//	   \      /
//	    v    v
//	  [Counter] <-----+
//	      |           |
//	      v           |
//	  [Object] ---> [Slot]
//
// Handles and the object's slot own the Counter; the Counter's link to the
// object is weak. Reclaiming the object runs the collector hook, which finds
// the object's slot, tears it down and nullifies the Counter with a single
// atomic store. Objects nobody ever weakly referenced have no slot and cost
// nothing at reclamation time.
//
// # Design
//
// The package holds a read-mostly global snapshot (state):
//
//   - Config: shard count for the slot table and the diagnostics logger.
//
//   - SlotTable: a sharded side table mapping object identity to the
//     object's single Counter. First-handle creation installs a slot with a
//     compare-and-install; racing creators all end up sharing the winner's
//     Counter.
//
//   - Hook: the collector integration point. The collector calls
//     Reclaim(id) (or Hook().Reclaimed(id)) exactly once per reclaimed
//     object, after deciding it is unreachable.
//
//   - Builder: a pluggable factory that builds the SlotTable and Hook for
//     a Config.
//
// Readers load the snapshot atomically and never lock. Writers take a
// short build mutex, assemble a new snapshot and publish it.
//
// # Global API
//
//  1. Handles:
//
//     New[T](referent T) (*Ref[T], error)
//     ref.Get() (T, bool)
//     ref.Clear()
//
//     New fails with ErrInvalidReferent for nil referents. Get returning
//     false after reclamation is the normal outcome, not an error.
//
//  2. Collector side:
//
//     Reclaim(id apis.ID) bool
//     Hook() apis.Hook
//
//  3. Configuration and introspection:
//
//     Config() apis.Config
//     SetConfig(cfg apis.Config) error
//     SetBuilder(b apis.Builder) error
//     SetAll(...)
//     Table() apis.SlotTable
//     Stats() apis.Stats
//
//     SetConfig and SetBuilder replace the slot table, so they are refused
//     with ErrTableInUse while any slot is installed: a fresh table would
//     not know the old slots and their Counters would never be nullified.
//     Configure at startup, before the first handle is created.
//
// # Concurrency model
//
// Handle creation, Get, Clear and Reclaim are non-blocking and safe for
// concurrent use. The collector must serialize reclamation of an object
// with slot installation for that same object; package heap shows one way
// to do that.
package wref
