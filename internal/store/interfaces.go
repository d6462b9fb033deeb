package store

import (
	"errors"

	"github.com/jainsameer1991/object-storage/internal/model"
)

// ErrNotFound is returned when a file or component is not in the store
var ErrNotFound = errors.New("not found")

// ReadTx is a consistent read view of cluster state
type ReadTx interface {
	// Status returns the component's health; a missing entry reads as up
	Status(name string) model.Status
	// File looks a file up by name, ignoring case
	File(name string) (model.File, bool)
	// Files returns every file in initial assignment order
	Files() []model.File
}

// Tx is a read-write view of cluster state. Writes are undone if the
// enclosing Update returns an error.
type Tx interface {
	ReadTx
	SetStatus(name string, status model.Status)
	AssignPartitionServer(file, server string) error
	AppendMigration(m model.Migration)
	AppendElectionEvent(message string)
}

// Store owns the health map, file assignments, migration history and the
// leader-election log. Every compound operation goes through View or Update.
type Store interface {
	View(fn func(tx ReadTx) error) error
	Update(fn func(tx Tx) error) error

	// Statuses returns a health snapshot in registry order
	Statuses() []model.ComponentStatus
	Migrations() []model.Migration
	ElectionLog() []model.ElectionEvent
}
