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

package builder_test

import (
	"runtime"
	"sync"
	"testing"

	"dirpx.dev/wref/apis"
	"dirpx.dev/wref/builder"
	"dirpx.dev/wref/config"
)

type obj struct{ id apis.ID }

func (o *obj) ObjectID() apis.ID { return o.id }

// TestBuildTable_Basic asserts that BuildTable returns a non-nil, working
// SlotTable that supports GetOrCreate/Lookup/Entries/Count.
func TestBuildTable_Basic(t *testing.T) {
	b := builder.New()

	tbl := b.BuildTable(config.DefaultConfig())
	if tbl == nil {
		t.Fatal("BuildTable returned nil")
	}

	c, err := tbl.GetOrCreate(&obj{id: 1})
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if got, ok := tbl.Lookup(1); !ok || got != c {
		t.Fatalf("Lookup mismatch: ok=%v got=%v want=%v", ok, got, c)
	}
	if n := tbl.Count(); n != 1 {
		t.Fatalf("Count = %d, want 1", n)
	}
	if len(tbl.Entries()) != 1 {
		t.Fatal("Entries returned wrong snapshot")
	}
}

// TestBuildHook_ServesTable verifies the hook nullifies counters of the
// table it was built for.
func TestBuildHook_ServesTable(t *testing.T) {
	b := builder.New()
	cfg := config.DefaultConfig()
	tbl := b.BuildTable(cfg)

	h := b.BuildHook(cfg, tbl)
	if h == nil {
		t.Fatal("BuildHook returned nil")
	}

	c, _ := tbl.GetOrCreate(&obj{id: 9})
	if !h.Reclaimed(9) {
		t.Fatal("hook did not nullify the counter")
	}
	if c.Alive() {
		t.Fatal("counter alive after hook")
	}
}

func TestBuildHook_NilTable(t *testing.T) {
	if h := builder.New().BuildHook(config.DefaultConfig(), nil); h != nil {
		t.Fatalf("BuildHook(nil) = %v, want nil", h)
	}
}

// TestBuilder_ConcurrentBuilds verifies builds are independent and safe to
// run in parallel.
func TestBuilder_ConcurrentBuilds(t *testing.T) {
	b := builder.New()
	workers := runtime.GOMAXPROCS(0) * 2

	wg := sync.WaitGroup{}
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			cfg := config.NewConfig(config.WithShards(id + 1))
			tbl := b.BuildTable(cfg)
			h := b.BuildHook(cfg, tbl)
			for i := 1; i <= 100; i++ {
				if _, err := tbl.GetOrCreate(&obj{id: apis.ID(i)}); err != nil {
					t.Errorf("GetOrCreate: %v", err)
					return
				}
			}
			for i := 1; i <= 100; i++ {
				h.Reclaimed(apis.ID(i))
			}
			if tbl.Count() != 0 {
				t.Errorf("Count = %d after reclaiming everything", tbl.Count())
			}
		}(w)
	}
	wg.Wait()
}
