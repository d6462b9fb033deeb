package service

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jainsameer1991/object-storage/internal/algorithm"
	"github.com/jainsameer1991/object-storage/internal/model"
	"github.com/jainsameer1991/object-storage/internal/store"
	"github.com/jainsameer1991/object-storage/internal/topology"
	"go.uber.org/zap"
)

// Picker chooses one partition server out of a non-empty candidate list
type Picker interface {
	Pick(candidates []string) string
}

// RandomPicker picks uniformly at random from a seedable source
type RandomPicker struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomPicker creates a picker. A zero seed uses the current time.
func NewRandomPicker(seed int64) *RandomPicker {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomPicker{rnd: rand.New(rand.NewSource(seed))}
}

// Pick implements Picker
func (p *RandomPicker) Pick(candidates []string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return candidates[p.rnd.Intn(len(candidates))]
}

// AssignmentService places files on partition servers and extent nodes and
// moves partition-server assignments on failover. Extent-node replicas are
// computed once by InitialAssign and never touched again.
type AssignmentService struct {
	registry *topology.Registry
	picker   Picker
	logger   *zap.Logger
	now      func() time.Time
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(registry *topology.Registry, picker Picker, logger *zap.Logger) *AssignmentService {
	return &AssignmentService{
		registry: registry,
		picker:   picker,
		logger:   logger,
		now:      time.Now,
	}
}

// InitialAssign computes the hash-derived placement of every file
func (s *AssignmentService) InitialAssign(files []string) []model.File {
	placements := algorithm.InitialAssign(files, s.registry.PartitionServerCount(), s.registry.ExtentNodeCount())

	out := make([]model.File, 0, len(placements))
	for _, p := range placements {
		f := model.File{
			Name:            p.File,
			PartitionServer: topology.PartitionServerName(p.PartitionServer),
		}
		for j, idx := range p.Replicas {
			f.Replicas[j] = topology.ExtentNodeName(idx)
		}
		out = append(out, f)
	}

	s.logger.Info("Initial file placement computed",
		zap.Int("files", len(out)),
		zap.Int("partition_servers", s.registry.PartitionServerCount()),
		zap.Int("extent_nodes", s.registry.ExtentNodeCount()))

	return out
}

// IdealPartitionServer returns the hash-derived partition server for a name
func (s *AssignmentService) IdealPartitionServer(name string) string {
	return topology.PartitionServerName(algorithm.PartitionServerIndex(name, s.registry.PartitionServerCount()))
}

// RebalancePartitionServer moves every file served by downName to a randomly
// picked partition server that is still up. With no server up the assignments
// are left unchanged and no migrations are produced.
func (s *AssignmentService) RebalancePartitionServer(tx store.Tx, downName string) []model.Migration {
	available := make([]string, 0, s.registry.PartitionServerCount())
	for _, ps := range s.registry.PartitionServers() {
		if ps != downName && tx.Status(ps).IsUp() {
			available = append(available, ps)
		}
	}

	migrations := []model.Migration{}
	for _, f := range tx.Files() {
		if f.PartitionServer != downName {
			continue
		}
		if len(available) == 0 {
			s.logger.Warn("No partition server available, leaving assignment unchanged",
				zap.String("file", f.Name),
				zap.String("partition_server", downName))
			continue
		}

		target := s.picker.Pick(available)
		if err := tx.AssignPartitionServer(f.Name, target); err != nil {
			s.logger.Error("Failed to reassign file", zap.String("file", f.Name), zap.Error(err))
			continue
		}

		m := model.Migration{
			ID:        uuid.New().String(),
			File:      f.Name,
			From:      downName,
			To:        target,
			CreatedAt: s.now(),
		}
		tx.AppendMigration(m)
		migrations = append(migrations, m)

		s.logger.Debug("File migrated",
			zap.String("file", f.Name),
			zap.String("from", downName),
			zap.String("to", target))
	}

	return migrations
}

// RestorePartitionServer assigns every file whose ideal partition server is
// upName back to it, whatever its current assignment. Returns the files moved.
func (s *AssignmentService) RestorePartitionServer(tx store.Tx, upName string) []string {
	var moved []string
	for _, f := range tx.Files() {
		if s.IdealPartitionServer(f.Name) != upName || f.PartitionServer == upName {
			continue
		}
		if err := tx.AssignPartitionServer(f.Name, upName); err != nil {
			s.logger.Error("Failed to restore file", zap.String("file", f.Name), zap.Error(err))
			continue
		}
		moved = append(moved, f.Name)
	}

	if len(moved) > 0 {
		s.logger.Info("Files restored to ideal partition server",
			zap.String("partition_server", upName),
			zap.Strings("files", moved))
	}

	return moved
}
