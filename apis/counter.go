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

// Counter is the shared indirection record between weak handles and the
// object they observe. Every handle to the same object shares one Counter.
//
// The Counter's reference is weak: it does not keep the object alive. It
// goes from "holds a reference" to "empty" exactly once and never back.
type Counter interface {
	// ID returns the identity of the object this Counter was created for.
	// It stays valid after the Counter has been nullified.
	ID() ID
	// Read returns the tracked object, or (nil, false) once nullified.
	Read() (Object, bool)
	// Alive reports whether Read would currently return an object.
	Alive() bool
	// Nullify atomically drops the reference. It returns true only for the
	// call that performed the transition; later calls are no-ops.
	Nullify() bool
}
