package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/jainsameer1991/object-storage/internal/model"
	"github.com/jainsameer1991/object-storage/internal/store"
	"pgregory.net/rapid"
)

// TestCluster_Properties drives random status transitions and checks the
// routing and placement invariants after every step.
func TestCluster_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ps := rapid.IntRange(1, 5).Draw(t, "partitionServers")
		en := rapid.IntRange(3, 8).Draw(t, "extentNodes")
		fileCount := rapid.IntRange(1, 12).Draw(t, "files")
		seed := rapid.Int64Range(1, 1<<40).Draw(t, "seed")

		files := make([]string, fileCount)
		for i := range files {
			files[i] = fmt.Sprintf("object-%02d.dat", i)
		}

		c, err := newTestCluster(ps, en, files, NewRandomPicker(seed), time.Hour)
		if err != nil {
			t.Fatalf("cluster: %v", err)
		}
		defer c.elections.Stop()

		initial := c.routing.Files()
		names := c.registry.Names()

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			name := rapid.SampledFrom(names).Draw(t, "component")
			status := model.StatusDown
			if rapid.Bool().Draw(t, "up") {
				status = model.StatusUp
			}

			change := c.status.SetStatus(name, status)
			for _, m := range change.Migrations {
				if m.From != name || c.statusOf(m.To) != model.StatusUp {
					t.Fatalf("bad migration %+v after %s -> %s", m, name, status)
				}
			}

			checkPlacement(t, c, initial)
			checkRouting(t, c)
		}

		// Restoring an up server a second time moves nothing.
		for _, server := range c.registry.PartitionServers() {
			if c.statusOf(server) != model.StatusUp {
				continue
			}
			_ = c.store.Update(func(tx store.Tx) error {
				c.assignments.RestorePartitionServer(tx, server)
				if again := c.assignments.RestorePartitionServer(tx, server); len(again) != 0 {
					t.Fatalf("restore of %s not idempotent: %v", server, again)
				}
				return nil
			})
		}
	})
}

func checkPlacement(t *rapid.T, c *testCluster, initial []model.File) {
	if err := c.store.Verify(); err != nil {
		t.Fatalf("store invariant: %v", err)
	}

	current := c.routing.Files()
	if len(current) != len(initial) {
		t.Fatalf("file count changed: %d -> %d", len(initial), len(current))
	}
	for i, f := range current {
		if f.Replicas != initial[i].Replicas {
			t.Fatalf("replicas of %s changed: %v -> %v", f.Name, initial[i].Replicas, f.Replicas)
		}
		if _, ok := c.registry.Lookup(f.PartitionServer); !ok {
			t.Fatalf("file %s assigned to unknown server %q", f.Name, f.PartitionServer)
		}
	}
}

func checkRouting(t *rapid.T, c *testCluster) {
	for _, f := range c.routing.Files() {
		sim := c.routing.Simulate(f.Name)

		for _, name := range sim.Path {
			if sim.Succeeded() && c.statusOf(name) != model.StatusUp {
				t.Fatalf("successful path for %s crosses down component %s", f.Name, name)
			}
		}

		firstUp := ""
		for _, n := range f.Replicas {
			if c.statusOf(n) == model.StatusUp {
				firstUp = n
				break
			}
		}

		if sim.Succeeded() {
			if sim.Last() != firstUp {
				t.Fatalf("%s served by %s, first up replica is %s", f.Name, sim.Last(), firstUp)
			}
			continue
		}
		if sim.Message == "" {
			t.Fatalf("failure for %s without a message", f.Name)
		}
		if sim.Message == MsgBlobUnavailable && firstUp != "" {
			t.Fatalf("%s reported unavailable while %s is up", f.Name, firstUp)
		}
	}
}
