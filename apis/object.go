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

// ID is the stable identity of a tracked object. It is assigned by the
// allocator and never reused while the object is live. Zero is not a valid
// identity.
type ID uint64

// Object is anything a weak handle can observe. The only thing the weak
// reference machinery needs from an object is its identity.
type Object interface {
	// ObjectID returns the object's identity.
	ObjectID() ID
}

// Reclaimable is optionally implemented by objects whose allocator can
// report that they have already been reclaimed. Slot tables refuse to bind
// a Counter to such objects.
type Reclaimable interface {
	// Reclaimed reports whether the collector has reclaimed the object.
	Reclaimed() bool
}
