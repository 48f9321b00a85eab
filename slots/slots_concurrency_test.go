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

package slots_test

import (
	"runtime"
	"sync"
	"testing"

	"dirpx.dev/wref/apis"
	"dirpx.dev/wref/config"
	"dirpx.dev/wref/slots"
)

// TestConcurrentFirstInstall races many goroutines on the first
// GetOrCreate for the same object and checks a single Counter wins.
func TestConcurrentFirstInstall(t *testing.T) {
	tbl := slots.New(config.DefaultConfig())
	o := &obj{id: 1001}

	workers := runtime.GOMAXPROCS(0) * 4
	got := make([]apis.Counter, workers)
	start := make(chan struct{})

	wg := sync.WaitGroup{}
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(i int) {
			defer wg.Done()
			<-start
			c, err := tbl.GetOrCreate(o)
			if err != nil {
				t.Errorf("GetOrCreate: %v", err)
				return
			}
			got[i] = c
		}(w)
	}
	close(start)
	wg.Wait()

	for i, c := range got {
		if c != got[0] {
			t.Fatalf("worker %d observed a different Counter", i)
		}
	}

	st := tbl.Stats()
	if st.Installed != 1 {
		t.Fatalf("Installed = %d, want 1", st.Installed)
	}
	if st.Live != 1 || tbl.Count() != 1 {
		t.Fatalf("Live = %d Count = %d, want 1", st.Live, tbl.Count())
	}
	if st.Discarded > int64(workers-1) {
		t.Fatalf("Discarded = %d exceeds losers %d", st.Discarded, workers-1)
	}
}

// TestConcurrentInstallAndReclaim verifies that installs, lookups and
// teardowns over many objects are race-free and the accounting balances.
func TestConcurrentInstallAndReclaim(t *testing.T) {
	tbl := slots.New(config.NewConfig(config.WithShards(4)))
	const objects = 256

	objs := make([]*obj, objects)
	for i := range objs {
		objs[i] = &obj{id: apis.ID(i + 1)}
	}

	wg := sync.WaitGroup{}
	workers := runtime.GOMAXPROCS(0) * 4

	// Installers
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				o := objs[(i+id)%objects]
				if _, err := tbl.GetOrCreate(o); err != nil {
					t.Errorf("GetOrCreate(%d): %v", o.id, err)
					return
				}
				_ = tbl.Count()
			}
		}(w)
	}

	// Readers
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				_, _ = tbl.Lookup(apis.ID(i%objects + 1))
				_ = tbl.Entries()
			}
		}()
	}
	wg.Wait()

	if tbl.Count() != objects {
		t.Fatalf("Count = %d, want %d", tbl.Count(), objects)
	}

	// Tear everything down concurrently; each slot is released once.
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for _, o := range objs {
				if c, ok := tbl.LocateReclaimed(o.id); ok {
					c.Nullify()
				}
			}
		}()
	}
	wg.Wait()

	st := tbl.Stats()
	if st.Installed != objects || st.Released != objects || st.Live != 0 {
		t.Fatalf("Stats = %+v, want Installed=Released=%d Live=0", st, objects)
	}
	if n := len(tbl.Entries()); n != 0 {
		t.Fatalf("Entries after teardown = %d, want 0", n)
	}
}
