package store

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jainsameer1991/object-storage/internal/model"
)

// MemoryStore implements Store with a single RWMutex guarding all state
type MemoryStore struct {
	mu          sync.RWMutex
	order       []string
	health      map[string]model.Status
	files       []*model.File
	fileIndex   map[string]int
	migrations  []model.Migration
	electionLog []model.ElectionEvent
	now         func() time.Time
}

// NewMemoryStore creates a store with every component up and the given initial assignments.
// components must be in registry order.
func NewMemoryStore(components []string, files []model.File) *MemoryStore {
	s := &MemoryStore{
		order:     append([]string(nil), components...),
		health:    make(map[string]model.Status, len(components)),
		files:     make([]*model.File, 0, len(files)),
		fileIndex: make(map[string]int, len(files)),
		now:       time.Now,
	}
	for _, name := range components {
		s.health[name] = model.StatusUp
	}
	for i := range files {
		f := files[i]
		s.fileIndex[strings.ToLower(f.Name)] = len(s.files)
		s.files = append(s.files, &f)
	}
	return s
}

// View runs fn under the read lock
func (s *MemoryStore) View(fn func(tx ReadTx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&memoryTx{store: s})
}

// Update runs fn under the write lock. Changes are rolled back if fn returns an error.
func (s *MemoryStore) Update(fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{store: s, writable: true}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// Statuses returns a health snapshot in registry order
func (s *MemoryStore) Statuses() []model.ComponentStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.ComponentStatus, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, model.ComponentStatus{Name: name, Status: s.statusLocked(name)})
	}
	return out
}

// Migrations returns the migration history, oldest first
func (s *MemoryStore) Migrations() []model.Migration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Migration(nil), s.migrations...)
}

// ElectionLog returns the leader-election log, oldest first
func (s *MemoryStore) ElectionLog() []model.ElectionEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.ElectionEvent(nil), s.electionLog...)
}

// Verify checks the store invariants: a health entry for every component and
// exactly one partition server plus three distinct replicas for every file.
func (s *MemoryStore) Verify() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, name := range s.order {
		if _, ok := s.health[name]; !ok {
			return fmt.Errorf("missing health entry for %s", name)
		}
	}
	for _, f := range s.files {
		if f.PartitionServer == "" {
			return fmt.Errorf("file %s has no partition server", f.Name)
		}
		seen := make(map[string]struct{}, model.ReplicaCount)
		for _, r := range f.Replicas {
			if r == "" {
				return fmt.Errorf("file %s has an empty replica slot", f.Name)
			}
			if _, dup := seen[r]; dup {
				return fmt.Errorf("file %s has duplicate replica %s", f.Name, r)
			}
			seen[r] = struct{}{}
		}
	}
	return nil
}

func (s *MemoryStore) statusLocked(name string) model.Status {
	if st, ok := s.health[name]; ok {
		return st
	}
	return model.StatusUp
}

// memoryTx reads and writes MemoryStore state directly; the caller holds the lock
type memoryTx struct {
	store    *MemoryStore
	writable bool
	undo     []func()
}

func (tx *memoryTx) Status(name string) model.Status {
	return tx.store.statusLocked(name)
}

func (tx *memoryTx) File(name string) (model.File, bool) {
	idx, ok := tx.store.fileIndex[strings.ToLower(name)]
	if !ok {
		return model.File{}, false
	}
	return *tx.store.files[idx], true
}

func (tx *memoryTx) Files() []model.File {
	out := make([]model.File, len(tx.store.files))
	for i, f := range tx.store.files {
		out[i] = *f
	}
	return out
}

func (tx *memoryTx) SetStatus(name string, status model.Status) {
	tx.mustWrite()
	prev, existed := tx.store.health[name]
	tx.store.health[name] = status
	tx.undo = append(tx.undo, func() {
		if existed {
			tx.store.health[name] = prev
		} else {
			delete(tx.store.health, name)
		}
	})
}

func (tx *memoryTx) AssignPartitionServer(file, server string) error {
	tx.mustWrite()
	idx, ok := tx.store.fileIndex[strings.ToLower(file)]
	if !ok {
		return fmt.Errorf("file %s: %w", file, ErrNotFound)
	}
	f := tx.store.files[idx]
	prev := f.PartitionServer
	f.PartitionServer = server
	tx.undo = append(tx.undo, func() { f.PartitionServer = prev })
	return nil
}

func (tx *memoryTx) AppendMigration(m model.Migration) {
	tx.mustWrite()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = tx.store.now()
	}
	n := len(tx.store.migrations)
	tx.store.migrations = append(tx.store.migrations, m)
	tx.undo = append(tx.undo, func() { tx.store.migrations = tx.store.migrations[:n] })
}

func (tx *memoryTx) AppendElectionEvent(message string) {
	tx.mustWrite()
	n := len(tx.store.electionLog)
	tx.store.electionLog = append(tx.store.electionLog, model.ElectionEvent{Message: message, At: tx.store.now()})
	tx.undo = append(tx.undo, func() { tx.store.electionLog = tx.store.electionLog[:n] })
}

func (tx *memoryTx) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}

func (tx *memoryTx) mustWrite() {
	if !tx.writable {
		panic("store: write in read-only transaction")
	}
}
