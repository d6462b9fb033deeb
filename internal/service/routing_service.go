package service

import (
	"fmt"

	"github.com/jainsameer1991/object-storage/internal/algorithm"
	apperrors "github.com/jainsameer1991/object-storage/internal/errors"
	"github.com/jainsameer1991/object-storage/internal/metrics"
	"github.com/jainsameer1991/object-storage/internal/model"
	"github.com/jainsameer1991/object-storage/internal/store"
	"github.com/jainsameer1991/object-storage/internal/topology"
	"go.uber.org/zap"
)

// ChunkData is the placeholder content every healthy extent node returns
const ChunkData = "dummy-chunk-data"

// Routing failure messages
const (
	MsgFrontEndDown         = "Front-End Service is down. System unavailable."
	MsgPartitionManagerDown = "Partition Manager is down. Leader election in progress."
	MsgAllPartitionsDown    = "All partition servers down. Cannot resolve file metadata."
	MsgStreamManagerDown    = "Stream Manager is down. Cannot locate extent."
	MsgFileNotFound         = "File not found in any Extent Node."
	MsgBlobUnavailable      = "Blob unavailable, all extent nodes down (HTTP 503)."
)

// RoutingService simulates how a lookup travels through the cluster and
// answers the per-component queries. It never mutates state.
type RoutingService struct {
	store    store.Store
	registry *topology.Registry
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewRoutingService creates a new routing service
func NewRoutingService(st store.Store, registry *topology.Registry, m *metrics.Metrics, logger *zap.Logger) *RoutingService {
	return &RoutingService{
		store:    st,
		registry: registry,
		metrics:  m,
		logger:   logger,
	}
}

// route is the outcome of walking the serving path once
type route struct {
	known   bool
	path    []string
	steps   []string
	result  model.Outcome
	message string
	node    string
}

func (r *route) visit(component, step string) {
	r.path = append(r.path, component)
	r.steps = append(r.steps, step)
}

func (r *route) fail(message string) *route {
	r.result = model.OutcomeFailure
	r.message = message
	r.steps = append(r.steps, message)
	return r
}

// walk evaluates the serving path against one consistent snapshot
func (s *RoutingService) walk(tx store.ReadTx, filename string) *route {
	r := &route{path: []string{}, steps: []string{}}

	// A file's existence does not depend on which component is up
	file, known := tx.File(filename)
	r.known = known

	r.visit(topology.FrontEndName, "Contacting Front-End Service...")
	if !tx.Status(topology.FrontEndName).IsUp() {
		return r.fail(MsgFrontEndDown)
	}

	r.visit(topology.PartitionManagerName, "Partition Manager locating partition server...")
	if !tx.Status(topology.PartitionManagerName).IsUp() {
		return r.fail(MsgPartitionManagerDown)
	}

	assigned := topology.PartitionServerName(1)
	if known {
		assigned = file.PartitionServer
	}

	serving := assigned
	if !tx.Status(assigned).IsUp() {
		serving = ""
		for _, ps := range s.registry.PartitionServers() {
			if tx.Status(ps).IsUp() {
				serving = ps
				break
			}
		}
		if serving == "" {
			return r.fail(MsgAllPartitionsDown)
		}
	}
	degraded := serving != assigned
	if degraded {
		r.visit(serving, fmt.Sprintf("%s is down. %s resolving extent map (degraded)...", assigned, serving))
	} else {
		r.visit(serving, fmt.Sprintf("%s resolving extent map...", serving))
	}

	r.visit(topology.StreamManagerName, "Stream Manager selecting a healthy replica...")
	if !tx.Status(topology.StreamManagerName).IsUp() {
		return r.fail(MsgStreamManagerDown)
	}

	if !known {
		return r.fail(MsgFileNotFound)
	}

	for i, node := range file.Replicas {
		if !tx.Status(node).IsUp() {
			continue
		}
		r.visit(node, fmt.Sprintf("%s serving file...", node))
		r.result = model.OutcomeSuccess
		r.node = node
		r.message = fmt.Sprintf("File %s served by %s.", file.Name, node)
		if i > 0 {
			r.message += fmt.Sprintf(" Primary %s is down, served from secondary replica.", file.Replicas.Primary())
		}
		if degraded {
			r.message += fmt.Sprintf(" %s is down, metadata served by %s (degraded).", assigned, serving)
		}
		return r
	}

	return r.fail(MsgBlobUnavailable)
}

// Simulate returns the step-by-step serving path of a lookup
func (s *RoutingService) Simulate(filename string) *model.Simulation {
	var r *route
	var components []model.ComponentStatus
	_ = s.store.View(func(tx store.ReadTx) error {
		r = s.walk(tx, filename)
		components = make([]model.ComponentStatus, 0, len(s.registry.Names()))
		for _, name := range s.registry.Names() {
			components = append(components, model.ComponentStatus{Name: name, Status: tx.Status(name)})
		}
		return nil
	})

	sim := &model.Simulation{
		Components: components,
		Path:       r.path,
		Result:     r.result,
		Message:    r.message,
	}

	s.metrics.RecordSimulation(string(sim.Result))
	s.logger.Debug("Lookup simulated",
		zap.String("file", filename),
		zap.Strings("path", sim.Path),
		zap.String("result", string(sim.Result)))

	return sim
}

// Lookup returns human-readable routing steps for a file. An unknown file
// yields a FILE_NOT_FOUND error whose "steps" detail holds the steps taken.
func (s *RoutingService) Lookup(filename string) (*model.FileLocation, error) {
	var r *route
	_ = s.store.View(func(tx store.ReadTx) error {
		r = s.walk(tx, filename)
		return nil
	})

	loc := &model.FileLocation{Steps: r.steps}
	if !r.known {
		return loc, apperrors.FileNotFound(filename).WithDetail("steps", r.steps)
	}

	loc.Name = filename
	loc.Location = r.node
	return loc, nil
}

// Files returns every file with its current assignment, in initial order
func (s *RoutingService) Files() []model.File {
	var files []model.File
	_ = s.store.View(func(tx store.ReadTx) error {
		files = tx.Files()
		return nil
	})
	return files
}

// PartitionForKey returns the hash-derived partition server for a key
func (s *RoutingService) PartitionForKey(key string) (string, error) {
	if key == "" {
		return "", apperrors.InvalidRequest("key is required")
	}
	return topology.PartitionServerName(algorithm.PartitionServerIndex(key, s.registry.PartitionServerCount())), nil
}

// ExtentMap returns the replica set of a file
func (s *RoutingService) ExtentMap(filename string) (model.File, error) {
	var (
		file  model.File
		found bool
	)
	_ = s.store.View(func(tx store.ReadTx) error {
		file, found = tx.File(filename)
		return nil
	})
	if !found {
		return model.File{}, apperrors.FileNotFound(filename)
	}
	return file, nil
}

// LocateReplica returns the first healthy replica of a file
func (s *RoutingService) LocateReplica(filename string) (string, error) {
	var node string
	err := s.store.View(func(tx store.ReadTx) error {
		file, found := tx.File(filename)
		if !found {
			return apperrors.FileNotFound(filename)
		}
		if !tx.Status(topology.StreamManagerName).IsUp() {
			return apperrors.Unavailable("%s is down", topology.StreamManagerName)
		}
		for _, n := range file.Replicas {
			if tx.Status(n).IsUp() {
				node = n
				return nil
			}
		}
		return apperrors.Unavailable("all extent nodes holding %s are down", file.Name).
			WithDetail("file", file.Name)
	})
	if err != nil {
		return "", err
	}
	return node, nil
}

// RetrieveChunk returns the chunk held by an extent node
func (s *RoutingService) RetrieveChunk(node string) (string, error) {
	c, ok := s.registry.Lookup(node)
	if !ok || c.Kind != model.KindExtentNode {
		return "", apperrors.ComponentNotFound(node)
	}

	var up bool
	_ = s.store.View(func(tx store.ReadTx) error {
		up = tx.Status(node).IsUp()
		return nil
	})
	if !up {
		return "", apperrors.Unavailable("%s is down", node).WithDetail("extent_node_id", node)
	}
	return ChunkData, nil
}
