package service

import (
	"github.com/jainsameer1991/object-storage/internal/metrics"
	"github.com/jainsameer1991/object-storage/internal/model"
	"github.com/jainsameer1991/object-storage/internal/store"
	"github.com/jainsameer1991/object-storage/internal/topology"
	"go.uber.org/zap"
)

// StatusService applies operator status requests and their side effects:
// partition-server failover and restore, and partition-manager leader election.
type StatusService struct {
	store       store.Store
	registry    *topology.Registry
	assignments *AssignmentService
	elections   *ElectionScheduler
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewStatusService creates a new status service
func NewStatusService(
	st store.Store,
	registry *topology.Registry,
	assignments *AssignmentService,
	elections *ElectionScheduler,
	m *metrics.Metrics,
	logger *zap.Logger,
) *StatusService {
	return &StatusService{
		store:       st,
		registry:    registry,
		assignments: assignments,
		elections:   elections,
		metrics:     m,
		logger:      logger,
	}
}

// SetStatus sets a component's health. Unknown names are ignored and report
// the default status. Requesting the status a component already has is a no-op.
func (s *StatusService) SetStatus(name string, status model.Status) model.StatusChange {
	change := model.StatusChange{Name: name, Status: status, Migrations: []model.Migration{}}

	component, ok := s.registry.Lookup(name)
	if !ok {
		s.logger.Warn("Ignoring status change for unknown component",
			zap.String("component", name),
			zap.String("status", string(status)))
		change.Status = model.StatusUp
		return change
	}

	var (
		changed         bool
		restored        []string
		startedElection bool
	)
	err := s.store.Update(func(tx store.Tx) error {
		if tx.Status(name) == status {
			return nil
		}
		changed = true
		tx.SetStatus(name, status)

		switch component.Kind {
		case model.KindPartitionServer:
			if status == model.StatusDown {
				change.Migrations = s.assignments.RebalancePartitionServer(tx, name)
			} else {
				restored = s.assignments.RestorePartitionServer(tx, name)
			}
		case model.KindPartitionManager:
			if status == model.StatusDown {
				tx.AppendElectionEvent(model.ElectionStarted)
				startedElection = true
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to apply status change",
			zap.String("component", name),
			zap.String("status", string(status)),
			zap.Error(err))
		change.Status = s.statusOf(name)
		change.Migrations = []model.Migration{}
		return change
	}

	if !changed {
		s.logger.Debug("Component already in requested status",
			zap.String("component", name),
			zap.String("status", string(status)))
		return change
	}

	s.metrics.RecordStatusTransition(string(component.Kind), string(status))
	s.metrics.SetComponentUp(name, status.IsUp())
	if n := len(change.Migrations); n > 0 {
		s.metrics.RecordMigrations(n)
	}

	s.logger.Info("Component status changed",
		zap.String("component", name),
		zap.String("kind", string(component.Kind)),
		zap.String("status", string(status)),
		zap.Int("migrations", len(change.Migrations)),
		zap.Int("restored", len(restored)))

	if startedElection {
		s.startElection(name)
	}

	return change
}

// startElection schedules the partition manager's automatic recovery
func (s *StatusService) startElection(name string) {
	s.metrics.RecordElection("started")
	s.logger.Info("Leader election started",
		zap.String("component", name),
		zap.Duration("delay", s.elections.Delay()))

	scheduled := s.elections.Schedule(func() {
		err := s.store.Update(func(tx store.Tx) error {
			tx.SetStatus(name, model.StatusUp)
			tx.AppendElectionEvent(model.ElectionComplete)
			return nil
		})
		if err != nil {
			s.logger.Error("Leader election failed to restore partition manager",
				zap.String("component", name),
				zap.Error(err))
			return
		}

		s.metrics.RecordElection("complete")
		s.metrics.SetComponentUp(name, true)
		s.logger.Info("Leader election complete", zap.String("component", name))
	})
	if !scheduled {
		s.logger.Warn("Election scheduler stopped, partition manager stays down",
			zap.String("component", name))
	}
}

// statusOf reads one component's committed health
func (s *StatusService) statusOf(name string) model.Status {
	status := model.StatusUp
	if err := s.store.View(func(tx store.ReadTx) error {
		status = tx.Status(name)
		return nil
	}); err != nil {
		s.logger.Error("Failed to read component status",
			zap.String("component", name),
			zap.Error(err))
	}
	return status
}

// Statuses returns every component's health in registry order
func (s *StatusService) Statuses() []model.ComponentStatus {
	return s.store.Statuses()
}

// PartitionServers returns each partition server with its status and assigned files
func (s *StatusService) PartitionServers() []model.PartitionServerLoad {
	servers := s.registry.PartitionServers()
	out := make([]model.PartitionServerLoad, 0, len(servers))

	_ = s.store.View(func(tx store.ReadTx) error {
		files := tx.Files()
		for _, ps := range servers {
			load := model.PartitionServerLoad{Name: ps, Status: tx.Status(ps), Files: []string{}}
			for _, f := range files {
				if f.PartitionServer == ps {
					load.Files = append(load.Files, f.Name)
				}
			}
			out = append(out, load)
		}
		return nil
	})

	return out
}

// ElectionLog returns the leader-election messages, oldest first
func (s *StatusService) ElectionLog() []string {
	events := s.store.ElectionLog()
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Message)
	}
	return out
}

// Migrations returns the full migration history, oldest first
func (s *StatusService) Migrations() []model.Migration {
	return s.store.Migrations()
}
