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

import "log/slog"

// Config carries read-only knobs for slot tables and hooks.
// It is passed by value and should be treated as immutable by implementations.
type Config struct {
	// Shards is the number of independent slot-table shards. Values that
	// are not a power of two are rounded up.
	Shards int
	// Logger receives diagnostics from the slot table. A nil Logger
	// discards everything.
	Logger *slog.Logger
}
