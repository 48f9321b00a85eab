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

// Package heap is a small stop-the-world mark/sweep object heap that drives
// the weak reference collector hook.
//
// It exists so the hook contract can be exercised end to end and embedded
// in tools that model an object graph. Objects are allocated with a stable
// identity, linked with strong edges, and kept alive by roots. Collect marks
// everything reachable from the roots and reclaims the rest, calling the
// hook exactly once per reclaimed object.
//
// Mutator code that creates weak handles should run inside Mutate. Collect
// waits for in-flight Mutate calls and blocks new ones, so a slot install
// can never interleave with the reclamation of the same object.
package heap

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"dirpx.dev/wref/apis"
	"dirpx.dev/wref/config"
)

var (
	// ErrForeignObject is returned for objects allocated by another heap.
	ErrForeignObject = errors.New("wref(heap): object belongs to another heap")
	// ErrFreed is returned when an operation targets a reclaimed object.
	ErrFreed = errors.New("wref(heap): object already reclaimed")
	// ErrRooted is returned by Free for an object that is still a root.
	ErrRooted = errors.New("wref(heap): object is rooted")
	// ErrReferenced is returned by Free for an object a live object links to.
	ErrReferenced = errors.New("wref(heap): object is referenced")
)

// Object is a heap-allocated value with a stable identity.
type Object struct {
	id    apis.ID
	value any
	heap  *Heap
	// refs are outgoing strong edges; guarded by heap.mu.
	refs []*Object
	dead atomic.Bool
}

// Ensure Object satisfies the identity contracts.
var (
	_ apis.Object      = (*Object)(nil)
	_ apis.Reclaimable = (*Object)(nil)
)

// ObjectID returns the object's identity.
func (o *Object) ObjectID() apis.ID { return o.id }

// Value returns the payload supplied to Alloc.
func (o *Object) Value() any { return o.value }

// Reclaimed reports whether the heap has reclaimed the object.
func (o *Object) Reclaimed() bool { return o.dead.Load() }

// Cycle summarises one collection.
type Cycle struct {
	// ID correlates the cycle's log records.
	ID uuid.UUID
	// Marked is the number of objects found reachable.
	Marked int
	// Reclaimed is the number of objects freed.
	Reclaimed int
	// Nullified is the number of weak counters the hook nullified.
	Nullified int
	// Elapsed is the wall time spent with the world stopped.
	Elapsed time.Duration
}

// Option configures a Heap.
type Option func(*Heap)

// WithLogger sets the heap's logger. A nil logger discards output.
func WithLogger(l *slog.Logger) Option {
	return func(h *Heap) {
		if l == nil {
			l = config.DiscardLogger()
		}
		h.log = l
	}
}

// Heap owns a set of objects and reclaims the unreachable ones.
type Heap struct {
	// world is held shared by mutators and exclusively by the collector.
	world sync.RWMutex
	// mu guards objects, roots and edges.
	mu      sync.Mutex
	objects map[apis.ID]*Object
	roots   map[apis.ID]int
	next    atomic.Uint64
	cycles  atomic.Int64

	hook apis.Hook
	log  *slog.Logger
}

// New returns an empty heap that reports reclamations to hook.
// A nil hook disables weak reference support.
func New(hook apis.Hook, opts ...Option) *Heap {
	h := &Heap{
		objects: make(map[apis.ID]*Object),
		roots:   make(map[apis.ID]int),
		hook:    hook,
		log:     config.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Alloc allocates a new unrooted object holding v.
func (h *Heap) Alloc(v any) *Object {
	o := &Object{
		id:    apis.ID(h.next.Add(1)),
		value: v,
		heap:  h,
	}
	h.mu.Lock()
	h.objects[o.id] = o
	h.mu.Unlock()
	return o
}

// Len returns the number of live objects.
func (h *Heap) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.objects)
}

// Lookup returns the live object with the given identity.
func (h *Heap) Lookup(id apis.ID) (*Object, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	o, ok := h.objects[id]
	return o, ok
}

// Cycles returns the number of completed collections.
func (h *Heap) Cycles() int64 {
	return h.cycles.Load()
}

// check validates that o is a live object of this heap. Caller holds mu.
func (h *Heap) check(o *Object) error {
	if o == nil || o.heap != h {
		return ErrForeignObject
	}
	if o.dead.Load() {
		return ErrFreed
	}
	return nil
}

// AddRoot pins o. Roots nest: each AddRoot needs a matching RemoveRoot.
func (h *Heap) AddRoot(o *Object) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.check(o); err != nil {
		return err
	}
	h.roots[o.id]++
	return nil
}

// RemoveRoot undoes one AddRoot. Removing a non-root is a no-op.
func (h *Heap) RemoveRoot(o *Object) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.check(o); err != nil {
		return err
	}
	if n := h.roots[o.id]; n > 1 {
		h.roots[o.id] = n - 1
	} else {
		delete(h.roots, o.id)
	}
	return nil
}

// Link adds a strong edge from -> to.
func (h *Heap) Link(from, to *Object) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.check(from); err != nil {
		return err
	}
	if err := h.check(to); err != nil {
		return err
	}
	from.refs = append(from.refs, to)
	return nil
}

// Unlink removes one strong edge from -> to, if present.
func (h *Heap) Unlink(from, to *Object) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.check(from); err != nil {
		return err
	}
	for i, r := range from.refs {
		if r == to {
			from.refs = append(from.refs[:i], from.refs[i+1:]...)
			break
		}
	}
	return nil
}

// Mutate runs fn as mutator code. Collections wait for fn to return.
// fn must not call Collect or Free.
func (h *Heap) Mutate(fn func()) {
	h.world.RLock()
	defer h.world.RUnlock()
	fn()
}

// Collect stops the world, marks from the roots and reclaims every
// unreachable object. It returns ctx.Err() without reclaiming anything if
// ctx is done before the sweep starts.
func (h *Heap) Collect(ctx context.Context) (Cycle, error) {
	cyc := Cycle{ID: uuid.New()}
	if err := ctx.Err(); err != nil {
		return cyc, err
	}

	h.world.Lock()
	defer h.world.Unlock()
	start := time.Now()

	h.mu.Lock()
	defer h.mu.Unlock()

	marked := h.mark()
	cyc.Marked = len(marked)

	if err := ctx.Err(); err != nil {
		return cyc, err
	}

	for id, o := range h.objects {
		if _, ok := marked[id]; ok {
			continue
		}
		if h.reclaim(o) {
			cyc.Nullified++
		}
		cyc.Reclaimed++
	}

	cyc.Elapsed = time.Since(start)
	h.cycles.Add(1)
	h.log.LogAttrs(ctx, slog.LevelInfo, "collection finished",
		slog.String("cycle", cyc.ID.String()),
		slog.Int("marked", cyc.Marked),
		slog.Int("reclaimed", cyc.Reclaimed),
		slog.Int("nullified", cyc.Nullified),
		slog.Duration("elapsed", cyc.Elapsed),
	)
	return cyc, nil
}

// Free reclaims a single object immediately. The object must be neither
// rooted nor referenced by another live object.
func (h *Heap) Free(o *Object) error {
	h.world.Lock()
	defer h.world.Unlock()
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.check(o); err != nil {
		return err
	}
	if h.roots[o.id] > 0 {
		return ErrRooted
	}
	for _, other := range h.objects {
		if other == o {
			continue
		}
		for _, r := range other.refs {
			if r == o {
				return ErrReferenced
			}
		}
	}

	nullified := h.reclaim(o)
	h.log.LogAttrs(context.Background(), slog.LevelDebug, "object freed",
		slog.Uint64("id", uint64(o.id)),
		slog.Bool("nullified", nullified),
	)
	return nil
}

// mark returns the set of objects reachable from the roots. Caller holds mu.
func (h *Heap) mark() map[apis.ID]struct{} {
	marked := make(map[apis.ID]struct{}, len(h.objects))
	stack := make([]*Object, 0, len(h.roots))
	for id := range h.roots {
		if o, ok := h.objects[id]; ok {
			stack = append(stack, o)
		}
	}
	for len(stack) > 0 {
		o := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := marked[o.id]; ok {
			continue
		}
		marked[o.id] = struct{}{}
		for _, r := range o.refs {
			if _, ok := marked[r.id]; !ok && !r.dead.Load() {
				stack = append(stack, r)
			}
		}
	}
	return marked
}

// reclaim marks o dead, runs the hook and drops it from the heap.
// The object is marked dead before the hook so no new slot can be bound to
// it afterwards. Caller holds mu and the world lock.
func (h *Heap) reclaim(o *Object) bool {
	o.dead.Store(true)
	nullified := false
	if h.hook != nil {
		nullified = h.hook.Reclaimed(o.id)
	}
	delete(h.objects, o.id)
	delete(h.roots, o.id)
	o.refs = nil
	return nullified
}
