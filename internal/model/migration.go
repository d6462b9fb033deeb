package model

import "time"

// Migration records a file moving from one partition server to another.
// Records are append-only and only produced by a partition server going down.
type Migration struct {
	ID        string    `json:"id"`
	File      string    `json:"file"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	CreatedAt time.Time `json:"created_at"`
}

// Leader election log messages
const (
	ElectionStarted  = "leader election started"
	ElectionComplete = "leader election complete"
)

// ElectionEvent is one entry of the partition manager leader-election log
type ElectionEvent struct {
	Message string
	At      time.Time
}
