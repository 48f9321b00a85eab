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

package slots

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"dirpx.dev/wref/apis"
	"dirpx.dev/wref/config"
	"dirpx.dev/wref/counter"
	uref "dirpx.dev/wref/utils/reflect"
)

var (
	// ErrNilObject is returned when a nil object is provided.
	ErrNilObject = errors.New("wref(slots): nil object provided")
	// ErrZeroID is returned when an object reports the zero identity.
	ErrZeroID = errors.New("wref(slots): object has zero identity")
	// ErrReclaimed is returned when the object has already been reclaimed.
	ErrReclaimed = errors.New("wref(slots): object already reclaimed")
)

// New constructs a SlotTable sharded according to cfg.
// Only Shards and Logger are used here.
func New(cfg apis.Config) apis.SlotTable {
	n := config.ShardCount(cfg.Shards)
	log := cfg.Logger
	if log == nil {
		log = config.DiscardLogger()
	}
	return &table{
		log:    log,
		mask:   uint64(n - 1),
		shards: make([]shard, n),
	}
}

// table is a sharded SlotTable backed by sync.Map.
// Each map entry is one object's slot: identity -> *counter.Counter.
type table struct {
	// log receives install diagnostics.
	log *slog.Logger
	// mask selects a shard from a mixed identity.
	mask uint64
	// shards hold the slots.
	shards []shard
	// st tracks table activity.
	st stats
}

// shard is one independent slot map, padded to its own cache line.
type shard struct {
	m sync.Map // map[apis.ID]*counter.Counter
	_ cpu.CacheLinePad
}

// stats counters are written from different goroutines on different paths,
// so each gets its own cache line.
type stats struct {
	installed atomic.Int64
	_         cpu.CacheLinePad
	discarded atomic.Int64
	_         cpu.CacheLinePad
	released  atomic.Int64
	_         cpu.CacheLinePad
	live      atomic.Int64
}

// Ensure table implements apis.SlotTable.
var _ apis.SlotTable = (*table)(nil)

// shardFor spreads sequential identities across shards.
func (t *table) shardFor(id apis.ID) *shard {
	h := uint64(id) * 0x9E3779B97F4A7C15
	return &t.shards[(h>>32)&t.mask]
}

// GetOrCreate returns the Counter bound to obj, installing one if needed.
// Losers of a concurrent first install drop their speculative Counter and
// return the winner's.
func (t *table) GetOrCreate(obj apis.Object) (apis.Counter, error) {
	// Validate before allocating anything.
	if uref.IsNil(obj) {
		return nil, ErrNilObject
	}
	id := obj.ObjectID()
	if id == 0 {
		return nil, ErrZeroID
	}
	if r, ok := obj.(apis.Reclaimable); ok && r.Reclaimed() {
		return nil, ErrReclaimed
	}

	s := t.shardFor(id)

	// Fast path: slot already installed.
	if v, ok := s.m.Load(id); ok {
		return v.(*counter.Counter), nil
	}

	// Slow path: compare-and-install a fresh Counter.
	c := counter.New(obj)
	v, loaded := s.m.LoadOrStore(id, c)
	if loaded {
		t.st.discarded.Add(1)
		t.log.LogAttrs(context.Background(), slog.LevelDebug, "slot install lost race",
			slog.Uint64("id", uint64(id)))
		return v.(*counter.Counter), nil
	}

	t.st.installed.Add(1)
	t.st.live.Add(1)
	t.log.LogAttrs(context.Background(), slog.LevelDebug, "slot installed",
		slog.Uint64("id", uint64(id)))
	return c, nil
}

// LocateReclaimed removes the slot for id and returns its Counter.
func (t *table) LocateReclaimed(id apis.ID) (apis.Counter, bool) {
	v, ok := t.shardFor(id).m.LoadAndDelete(id)
	if !ok {
		return nil, false
	}
	t.st.released.Add(1)
	t.st.live.Add(-1)
	return v.(*counter.Counter), true
}

// Lookup returns the Counter installed for id, if any.
func (t *table) Lookup(id apis.ID) (apis.Counter, bool) {
	if v, ok := t.shardFor(id).m.Load(id); ok {
		return v.(*counter.Counter), true
	}
	return nil, false
}

// Entries returns a snapshot for diagnostics (order is unspecified).
func (t *table) Entries() []apis.Slot {
	entries := make([]apis.Slot, 0, t.Count())
	for i := range t.shards {
		t.shards[i].m.Range(func(key, value any) bool {
			entries = append(entries, apis.Slot{
				ID:      key.(apis.ID),
				Counter: value.(*counter.Counter),
			})
			return true
		})
	}
	return entries
}

// Count returns the number of installed slots.
func (t *table) Count() int {
	return int(t.st.live.Load())
}

// Stats returns a snapshot of table activity.
func (t *table) Stats() apis.Stats {
	return apis.Stats{
		Installed: t.st.installed.Load(),
		Discarded: t.st.discarded.Load(),
		Released:  t.st.released.Load(),
		Live:      t.st.live.Load(),
	}
}
