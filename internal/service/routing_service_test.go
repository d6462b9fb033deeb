package service

import (
	"strings"
	"testing"
	"time"

	apperrors "github.com/jainsameer1991/object-storage/internal/errors"
	"github.com/jainsameer1991/object-storage/internal/model"
	"github.com/jainsameer1991/object-storage/internal/store"
	"github.com/jainsameer1991/object-storage/internal/topology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoutingCluster(t *testing.T) *testCluster {
	t.Helper()
	c, err := newTestCluster(3, 5, topology.DefaultFiles, NewRandomPicker(11), time.Hour)
	require.NoError(t, err)
	t.Cleanup(c.elections.Stop)
	return c
}

func TestRoutingService_Simulate_AllUp(t *testing.T) {
	c := newRoutingCluster(t)
	f := c.file("report.pdf")

	sim := c.routing.Simulate("report.pdf")

	assert.Equal(t, model.OutcomeSuccess, sim.Result)
	assert.Equal(t, []string{
		topology.FrontEndName,
		topology.PartitionManagerName,
		f.PartitionServer,
		topology.StreamManagerName,
		f.Replicas.Primary(),
	}, sim.Path)
	assert.True(t, f.Replicas.Contains(sim.Last()))
	assert.Equal(t, c.store.Statuses(), sim.Components)
	assert.NotContains(t, sim.Message, "degraded")
}

func TestRoutingService_Simulate_CaseInsensitive(t *testing.T) {
	c := newRoutingCluster(t)

	sim := c.routing.Simulate("REPORT.PDF")
	assert.True(t, sim.Succeeded())
}

func TestRoutingService_Simulate_FrontEndDown(t *testing.T) {
	c := newRoutingCluster(t)
	c.status.SetStatus(topology.FrontEndName, model.StatusDown)
	c.status.SetStatus(topology.PartitionManagerName, model.StatusDown)

	sim := c.routing.Simulate("report.pdf")

	assert.Equal(t, model.OutcomeFailure, sim.Result)
	assert.Equal(t, []string{topology.FrontEndName}, sim.Path)
	assert.Equal(t, MsgFrontEndDown, sim.Message)
	assert.Contains(t, sim.Message, "System unavailable")
}

func TestRoutingService_Simulate_PartitionManagerDown(t *testing.T) {
	c := newRoutingCluster(t)
	c.status.SetStatus(topology.PartitionManagerName, model.StatusDown)

	sim := c.routing.Simulate("report.pdf")

	assert.Equal(t, model.OutcomeFailure, sim.Result)
	assert.Equal(t, []string{topology.FrontEndName, topology.PartitionManagerName}, sim.Path)
	assert.Contains(t, sim.Message, "Leader election in progress")
}

func TestRoutingService_Simulate_DegradedPartitionServer(t *testing.T) {
	c := newRoutingCluster(t)
	f := c.file("report.pdf")

	// Flip status without the failover rebalance so the file still points at the down server.
	require.NoError(t, c.store.Update(func(tx store.Tx) error {
		tx.SetStatus(f.PartitionServer, model.StatusDown)
		return nil
	}))

	var healthy string
	for _, ps := range c.registry.PartitionServers() {
		if ps != f.PartitionServer {
			healthy = ps
			break
		}
	}

	sim := c.routing.Simulate("report.pdf")

	assert.Equal(t, model.OutcomeSuccess, sim.Result)
	assert.Equal(t, healthy, sim.Path[2])
	assert.Contains(t, sim.Message, "degraded")
}

func TestRoutingService_Simulate_AllPartitionServersDown(t *testing.T) {
	c := newRoutingCluster(t)
	c.setAll(c.registry.PartitionServers(), model.StatusDown)

	sim := c.routing.Simulate("report.pdf")

	assert.Equal(t, model.OutcomeFailure, sim.Result)
	assert.Equal(t, MsgAllPartitionsDown, sim.Message)
	assert.Equal(t, []string{topology.FrontEndName, topology.PartitionManagerName}, sim.Path)
}

func TestRoutingService_Simulate_StreamManagerDown(t *testing.T) {
	c := newRoutingCluster(t)
	c.status.SetStatus(topology.StreamManagerName, model.StatusDown)

	sim := c.routing.Simulate("report.pdf")

	assert.Equal(t, model.OutcomeFailure, sim.Result)
	assert.Equal(t, topology.StreamManagerName, sim.Last())
	assert.Len(t, sim.Path, 4)
	assert.Equal(t, MsgStreamManagerDown, sim.Message)
}

func TestRoutingService_Simulate_ReplicaFailover(t *testing.T) {
	c := newRoutingCluster(t)
	f := c.file("photo.jpg")

	c.status.SetStatus(f.Replicas.Primary(), model.StatusDown)
	sim := c.routing.Simulate("photo.jpg")
	assert.True(t, sim.Succeeded())
	assert.Equal(t, f.Replicas.Secondary1(), sim.Last())
	assert.Contains(t, sim.Message, "secondary")

	c.status.SetStatus(f.Replicas.Secondary1(), model.StatusDown)
	sim = c.routing.Simulate("photo.jpg")
	assert.True(t, sim.Succeeded())
	assert.Equal(t, f.Replicas.Secondary2(), sim.Last())
}

func TestRoutingService_Simulate_BlobUnavailable(t *testing.T) {
	c := newRoutingCluster(t)
	f := c.file("report.pdf")
	c.setAll(f.Replicas[:], model.StatusDown)

	sim := c.routing.Simulate("report.pdf")

	assert.Equal(t, model.OutcomeFailure, sim.Result)
	assert.Contains(t, sim.Message, "Blob unavailable")
	assert.Equal(t, topology.StreamManagerName, sim.Last())
}

func TestRoutingService_Simulate_UnknownFile(t *testing.T) {
	c := newRoutingCluster(t)

	sim := c.routing.Simulate("missing.bin")

	assert.Equal(t, model.OutcomeFailure, sim.Result)
	assert.Equal(t, MsgFileNotFound, sim.Message)
	assert.Equal(t, []string{
		topology.FrontEndName,
		topology.PartitionManagerName,
		topology.PartitionServerName(1),
		topology.StreamManagerName,
	}, sim.Path)
}

func TestRoutingService_Lookup(t *testing.T) {
	c := newRoutingCluster(t)
	f := c.file("notes.txt")

	loc, err := c.routing.Lookup("notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", loc.Name)
	assert.Equal(t, f.Replicas.Primary(), loc.Location)
	assert.Equal(t, "Contacting Front-End Service...", loc.Steps[0])
	assert.Len(t, loc.Steps, 5)

	c.status.SetStatus(topology.FrontEndName, model.StatusDown)
	loc, err = c.routing.Lookup("notes.txt")
	require.NoError(t, err)
	assert.Empty(t, loc.Location)
	assert.Equal(t, MsgFrontEndDown, loc.Steps[len(loc.Steps)-1])
}

func TestRoutingService_Lookup_UnknownFile(t *testing.T) {
	c := newRoutingCluster(t)

	loc, err := c.routing.Lookup("missing.bin")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorCodeFileNotFound, apperrors.CodeOf(err))
	require.NotNil(t, loc)
	assert.Equal(t, MsgFileNotFound, loc.Steps[len(loc.Steps)-1])

	steps, ok := apperrors.DetailOf(err, "steps")
	require.True(t, ok)
	assert.Equal(t, loc.Steps, steps)
}

func TestRoutingService_Lookup_KnownFileWithUpstreamDown(t *testing.T) {
	tests := []struct {
		name     string
		down     []string
		lastStep string
	}{
		{"front end down", []string{topology.FrontEndName}, MsgFrontEndDown},
		{"partition manager down", []string{topology.PartitionManagerName}, MsgPartitionManagerDown},
		{"stream manager down", []string{topology.StreamManagerName}, MsgStreamManagerDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newRoutingCluster(t)
			c.setAll(tt.down, model.StatusDown)

			loc, err := c.routing.Lookup("report.pdf")
			require.NoError(t, err)
			assert.Equal(t, "report.pdf", loc.Name)
			assert.Empty(t, loc.Location)
			assert.Equal(t, tt.lastStep, loc.Steps[len(loc.Steps)-1])
		})
	}

	t.Run("unknown file still not found with front end down", func(t *testing.T) {
		c := newRoutingCluster(t)
		c.status.SetStatus(topology.FrontEndName, model.StatusDown)

		_, err := c.routing.Lookup("missing.bin")
		assert.Equal(t, apperrors.ErrorCodeFileNotFound, apperrors.CodeOf(err))
	})
}

func TestRoutingService_FailureMessages(t *testing.T) {
	tests := []struct {
		message string
		phrase  string
	}{
		{MsgFrontEndDown, "system unavailable"},
		{MsgPartitionManagerDown, "leader election in progress"},
		{MsgAllPartitionsDown, "all partition servers down"},
		{MsgStreamManagerDown, "cannot locate extent"},
		{MsgBlobUnavailable, "blob unavailable, all extent nodes down"},
	}

	for _, tt := range tests {
		assert.Contains(t, strings.ToLower(tt.message), tt.phrase)
	}
}

func TestRoutingService_Simulate_ComponentsMatchWalkSnapshot(t *testing.T) {
	c := newRoutingCluster(t)
	f := c.file("report.pdf")
	c.setAll(f.Replicas[:], model.StatusDown)

	sim := c.routing.Simulate("report.pdf")

	require.Len(t, sim.Components, len(c.registry.Names()))
	for i, name := range c.registry.Names() {
		assert.Equal(t, name, sim.Components[i].Name)
		assert.Equal(t, c.statusOf(name), sim.Components[i].Status)
	}
	for _, cs := range sim.Components {
		if f.Replicas.Contains(cs.Name) {
			assert.Equal(t, model.StatusDown, cs.Status)
		}
	}
	assert.Equal(t, MsgBlobUnavailable, sim.Message)
}

func TestRoutingService_ComponentQueries(t *testing.T) {
	c := newRoutingCluster(t)
	f := c.file("video.mp4")

	ps, err := c.routing.PartitionForKey("video.mp4")
	require.NoError(t, err)
	assert.Equal(t, c.assignments.IdealPartitionServer("video.mp4"), ps)

	_, err = c.routing.PartitionForKey("")
	assert.Equal(t, apperrors.ErrorCodeInvalidRequest, apperrors.CodeOf(err))

	extents, err := c.routing.ExtentMap("video.mp4")
	require.NoError(t, err)
	assert.Equal(t, f.Replicas, extents.Replicas)

	_, err = c.routing.ExtentMap("missing.bin")
	assert.Equal(t, apperrors.ErrorCodeFileNotFound, apperrors.CodeOf(err))

	node, err := c.routing.LocateReplica("video.mp4")
	require.NoError(t, err)
	assert.Equal(t, f.Replicas.Primary(), node)

	chunk, err := c.routing.RetrieveChunk(node)
	require.NoError(t, err)
	assert.Equal(t, ChunkData, chunk)

	_, err = c.routing.RetrieveChunk(topology.StreamManagerName)
	assert.Equal(t, apperrors.ErrorCodeComponentNotFound, apperrors.CodeOf(err))
}

func TestRoutingService_ComponentQueries_Unavailable(t *testing.T) {
	c := newRoutingCluster(t)
	f := c.file("video.mp4")
	c.setAll(f.Replicas[:], model.StatusDown)

	_, err := c.routing.LocateReplica("video.mp4")
	assert.Equal(t, apperrors.ErrorCodeServiceDown, apperrors.CodeOf(err))

	_, err = c.routing.RetrieveChunk(f.Replicas.Primary())
	assert.Equal(t, apperrors.ErrorCodeServiceDown, apperrors.CodeOf(err))

	c.status.SetStatus(f.Replicas.Secondary2(), model.StatusUp)
	c.status.SetStatus(topology.StreamManagerName, model.StatusDown)
	_, err = c.routing.LocateReplica("video.mp4")
	assert.Equal(t, apperrors.ErrorCodeServiceDown, apperrors.CodeOf(err))
}
