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

// Package counter implements the shared indirection record that weak
// handles read through.
//
// A Counter holds the tracked object behind an atomic pointer. Readers load
// the pointer; the collector hook swaps it to nil exactly once. Because the
// whole reference lives in one pointer-sized word, a reader observes either
// the complete prior reference or nil, never a partial value.
package counter

import (
	"sync/atomic"

	"dirpx.dev/wref/apis"
)

// Counter is the apis.Counter implementation.
type Counter struct {
	// id is the identity of the tracked object; immutable.
	id apis.ID
	// ref boxes the tracked object. nil once nullified.
	ref atomic.Pointer[cell]
}

// cell boxes an apis.Object so it can live behind atomic.Pointer.
type cell struct {
	obj apis.Object
}

// Ensure Counter implements apis.Counter.
var _ apis.Counter = (*Counter)(nil)

// New returns a live Counter referencing obj.
// obj must be non-nil; callers validate the referent before allocating.
func New(obj apis.Object) *Counter {
	c := &Counter{id: obj.ObjectID()}
	c.ref.Store(&cell{obj: obj})
	return c
}

// ID returns the identity of the tracked object.
func (c *Counter) ID() apis.ID {
	return c.id
}

// Read returns the tracked object, or (nil, false) once nullified.
func (c *Counter) Read() (apis.Object, bool) {
	p := c.ref.Load()
	if p == nil {
		return nil, false
	}
	return p.obj, true
}

// Alive reports whether the Counter still references its object.
func (c *Counter) Alive() bool {
	return c.ref.Load() != nil
}

// Nullify drops the reference. Only the first call returns true.
// It does not allocate.
func (c *Counter) Nullify() bool {
	return c.ref.Swap(nil) != nil
}
