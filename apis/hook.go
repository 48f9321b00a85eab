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

// Hook is the collector's integration point. The collector calls Reclaimed
// exactly once per reclaimed object, after deciding the object is
// unreachable and before its memory is reused.
//
// Implementations must not allocate or block: they run while the collector
// is in the middle of reclamation.
type Hook interface {
	// Reclaimed nullifies the Counter of the object identified by id, if
	// any. It reports whether a live Counter was nullified.
	Reclaimed(id ID) bool
}
