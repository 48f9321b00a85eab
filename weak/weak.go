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

// Package weak provides weak handles over a slot table.
//
// A Ref never references its object directly. It holds the object's shared
// Counter, so every Ref to the same object goes dead in the single step in
// which the collector hook nullifies that Counter.
package weak

import (
	"errors"
	"sync/atomic"

	"dirpx.dev/wref/apis"
	uref "dirpx.dev/wref/utils/reflect"
)

var (
	// ErrInvalidReferent is returned when a handle is constructed without a
	// usable referent.
	ErrInvalidReferent = errors.New("wref(weak): invalid referent")
	// ErrReferentGone is the panic value of MustGet on a dead or cleared handle.
	ErrReferentGone = errors.New("wref(weak): referent is gone")
	// ErrNilTable is returned when a handle is constructed against a nil table.
	ErrNilTable = errors.New("wref(weak): nil slot table")
)

// InvalidReferentError describes why a referent was rejected.
// It matches ErrInvalidReferent with errors.Is.
type InvalidReferentError struct {
	// Reason is a short description of the problem.
	Reason string
	// Err is the underlying table error, if any.
	Err error
}

// Error implements error.
func (e *InvalidReferentError) Error() string {
	return ErrInvalidReferent.Error() + ": " + e.Reason
}

// Unwrap returns ErrInvalidReferent and the underlying cause.
func (e *InvalidReferentError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidReferent}
	}
	return []error{ErrInvalidReferent, e.Err}
}

// Ref is a weak handle to a T.
// The zero Ref is a cleared handle.
type Ref[T apis.Object] struct {
	h atomic.Pointer[holder]
}

// holder pins the shared Counter for one handle.
type holder struct {
	c apis.Counter
}

// New returns a Ref observing referent. It fails with an
// *InvalidReferentError if referent is nil or the table refuses it; no
// Counter is allocated in that case.
func New[T apis.Object](tbl apis.SlotTable, referent T) (*Ref[T], error) {
	if tbl == nil {
		return nil, ErrNilTable
	}
	if uref.IsNil(referent) {
		return nil, &InvalidReferentError{Reason: "nil referent"}
	}
	c, err := tbl.GetOrCreate(referent)
	if err != nil {
		return nil, &InvalidReferentError{Reason: err.Error(), Err: err}
	}
	r := &Ref[T]{}
	r.h.Store(&holder{c: c})
	return r, nil
}

// Get returns the referent, or the zero T and false once it has been
// reclaimed or the handle cleared.
func (r *Ref[T]) Get() (T, bool) {
	var zero T
	h := r.h.Load()
	if h == nil {
		return zero, false
	}
	obj, ok := h.c.Read()
	if !ok {
		return zero, false
	}
	v, ok := obj.(T)
	return v, ok
}

// MustGet returns the referent or panics with ErrReferentGone.
func (r *Ref[T]) MustGet() T {
	v, ok := r.Get()
	if !ok {
		panic(ErrReferentGone)
	}
	return v
}

// Alive reports whether Get would currently return the referent.
func (r *Ref[T]) Alive() bool {
	h := r.h.Load()
	return h != nil && h.c.Alive()
}

// Clear drops this handle's Counter. Other handles are unaffected.
func (r *Ref[T]) Clear() {
	r.h.Store(nil)
}

// Counter returns the shared Counter, or nil once the handle is cleared.
func (r *Ref[T]) Counter() apis.Counter {
	h := r.h.Load()
	if h == nil {
		return nil
	}
	return h.c
}

// Shares reports whether r and other read through the same Counter.
// Cleared handles share nothing.
func (r *Ref[T]) Shares(other interface{ Counter() apis.Counter }) bool {
	if uref.IsNil(other) {
		return false
	}
	a, b := r.Counter(), other.Counter()
	return a != nil && a == b
}
