package service

import (
	"time"

	"github.com/jainsameer1991/object-storage/internal/metrics"
	"github.com/jainsameer1991/object-storage/internal/model"
	"github.com/jainsameer1991/object-storage/internal/store"
	"github.com/jainsameer1991/object-storage/internal/topology"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockPicker is a mock implementation of Picker
type MockPicker struct {
	mock.Mock
}

func (m *MockPicker) Pick(candidates []string) string {
	args := m.Called(candidates)
	return args.String(0)
}

// testCluster wires the services the same way cmd/server does
type testCluster struct {
	registry    *topology.Registry
	store       *store.MemoryStore
	assignments *AssignmentService
	elections   *ElectionScheduler
	status      *StatusService
	routing     *RoutingService
}

func newTestCluster(partitionServers, extentNodes int, files []string, picker Picker, delay time.Duration) (*testCluster, error) {
	registry, err := topology.NewRegistry(partitionServers, extentNodes)
	if err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	m := metrics.NewMetrics()

	assignments := NewAssignmentService(registry, picker, logger)
	st := store.NewMemoryStore(registry.Names(), assignments.InitialAssign(files))
	elections := NewElectionScheduler(delay, logger)

	return &testCluster{
		registry:    registry,
		store:       st,
		assignments: assignments,
		elections:   elections,
		status:      NewStatusService(st, registry, assignments, elections, m, logger),
		routing:     NewRoutingService(st, registry, m, logger),
	}, nil
}

func (c *testCluster) file(name string) model.File {
	var f model.File
	_ = c.store.View(func(tx store.ReadTx) error {
		f, _ = tx.File(name)
		return nil
	})
	return f
}

func (c *testCluster) statusOf(name string) model.Status {
	for _, cs := range c.store.Statuses() {
		if cs.Name == name {
			return cs.Status
		}
	}
	return ""
}

func (c *testCluster) setAll(names []string, status model.Status) {
	for _, n := range names {
		c.status.SetStatus(n, status)
	}
}
