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

package wref

import (
	"errors"
	"sync"
	"sync/atomic"

	"dirpx.dev/wref/apis"
	"dirpx.dev/wref/builder"
	"dirpx.dev/wref/config"
	"dirpx.dev/wref/weak"
)

// init initializes the global wref state.
func init() {
	// Initialize state with default cfg, tbl and hk.
	s := &state{cfg: config.DefaultConfig()}
	b := builder.New()
	s.tbl = b.BuildTable(s.cfg)
	s.hk = b.BuildHook(s.cfg, s.tbl)
	s.bld = b
	// Store the initial state atomically.
	st.Store(s)
}

var (
	// ErrNilTable is returned when a builder returns a nil slot table.
	ErrNilTable = errors.New("wref: builder returned nil slot table")
	// ErrNilHook is returned when a builder returns a nil hook.
	ErrNilHook = errors.New("wref: builder returned nil hook")
	// ErrTableInUse is returned when reconfiguration would orphan live slots.
	ErrTableInUse = errors.New("wref: slot table has live slots")
	// ErrInvalidReferent is returned by New for nil or refused referents.
	ErrInvalidReferent = weak.ErrInvalidReferent
)

// Ref is a weak handle to a T.
type Ref[T apis.Object] = weak.Ref[T]

// New creates a weak handle to referent using the global slot table.
// Every handle to the same object shares the object's Counter.
func New[T apis.Object](referent T) (*Ref[T], error) {
	return weak.New(st.Load().tbl, referent)
}

// Reclaim is the collector entry point: it nullifies the Counter of the
// reclaimed object id, if any, and reports whether one was nullified.
// This is a convenience wrapper around the global hook.
func Reclaim(id apis.ID) bool {
	return st.Load().hk.Reclaimed(id)
}

// Config returns the global wref configuration.
func Config() apis.Config {
	return st.Load().cfg
}

// SetConfig sets the global configuration and rebuilds the table and hook.
// It fails with ErrTableInUse if the current table has live slots.
func SetConfig(cfg apis.Config) error {
	buildMu.Lock()
	defer buildMu.Unlock()

	// Load the old state.
	old := st.Load()
	if old.tbl.Count() > 0 {
		return ErrTableInUse
	}

	ntbl, nhk := build(old.bld, cfg)

	// Store the new state atomically.
	st.Store(
		&state{
			cfg: cfg,
			tbl: ntbl,
			hk:  nhk,
			bld: old.bld,
		},
	)
	return nil
}

// Builder returns the global wref builder.
func Builder() apis.Builder {
	return st.Load().bld
}

// SetBuilder replaces the global builder and rebuilds the table and hook.
// A nil builder is ignored. It fails with ErrTableInUse if the current
// table has live slots.
func SetBuilder(b apis.Builder) error {
	if b == nil {
		return nil
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	// Load the old state.
	old := st.Load()
	if old.tbl.Count() > 0 {
		return ErrTableInUse
	}

	ntbl, nhk := build(b, old.cfg)

	// Store the new state atomically.
	st.Store(
		&state{
			cfg: old.cfg,
			tbl: ntbl,
			hk:  nhk,
			bld: b,
		},
	)
	return nil
}

// SetAll explicitly sets all global wref state components.
//
// Nil arguments leave cfg and bld unchanged; a nil tbl or hk is rebuilt
// with the resulting builder. Live slots of the previous table are not
// carried over. This is mainly used by tests to get a clean state.
func SetAll(cfg *apis.Config, tbl apis.SlotTable, hk apis.Hook, bld apis.Builder) {
	buildMu.Lock()
	defer buildMu.Unlock()

	// Load the old state.
	old := st.Load()

	// Configuration
	ncfg := old.cfg
	if cfg != nil {
		ncfg = *cfg
	}

	// Builder
	nbld := old.bld
	if bld != nil {
		nbld = bld
	}

	// Table
	ntbl := tbl
	if ntbl == nil {
		ntbl = nbld.BuildTable(ncfg)
	}
	if ntbl == nil {
		panic(ErrNilTable)
	}

	// Hook
	nhk := hk
	if nhk == nil {
		nhk = nbld.BuildHook(ncfg, ntbl)
	}
	if nhk == nil {
		panic(ErrNilHook)
	}

	// Store the new state atomically.
	st.Store(
		&state{
			cfg: ncfg,
			tbl: ntbl,
			hk:  nhk,
			bld: nbld,
		},
	)
}

// Table returns the global slot table.
func Table() apis.SlotTable {
	return st.Load().tbl
}

// Hook returns the global collector hook.
func Hook() apis.Hook {
	return st.Load().hk
}

// Stats returns the global slot table's statistics.
func Stats() apis.Stats {
	return st.Load().tbl.Stats()
}

// build constructs a table and hook with b, panicking on nil results.
func build(b apis.Builder, cfg apis.Config) (apis.SlotTable, apis.Hook) {
	tbl := b.BuildTable(cfg)
	if tbl == nil {
		panic(ErrNilTable)
	}
	hk := b.BuildHook(cfg, tbl)
	if hk == nil {
		panic(ErrNilHook)
	}
	return tbl, hk
}

// buildMu serializes writers (reconfigurations/swaps) so we never publish
// partially-built snapshots.
var buildMu sync.Mutex

// st is the global wref state.
var st atomic.Pointer[state]

// state is the global wref state snapshot.
// Immutable snapshot published atomically via st.Store; never mutate fields
// of a published state. Writers create a new state and swap it atomically.
type state struct {
	// cfg is the global wref configuration.
	cfg apis.Config
	// tbl is the global slot table.
	tbl apis.SlotTable
	// hk is the global collector hook.
	hk apis.Hook
	// bld is the global builder.
	bld apis.Builder
}
