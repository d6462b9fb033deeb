package algorithm

import (
	"github.com/zeebo/xxh3"

	"github.com/jainsameer1991/object-storage/internal/model"
)

// Placement is the hash-derived assignment of one file.
// Indexes are 1-based to match component names.
type Placement struct {
	File            string
	PartitionServer int
	Replicas        [model.ReplicaCount]int
}

// Hash computes the stable 64-bit hash used for every placement decision
func Hash(name string) uint64 {
	return xxh3.HashString(name)
}

// PartitionServerIndex returns the ideal 1-based partition server for a name
func PartitionServerIndex(name string, partitionServerCount int) int {
	return int(Hash(name)%uint64(partitionServerCount)) + 1
}

// ReplicaIndexes returns the 1-based extent nodes (base+j) mod E for j in 0..2
func ReplicaIndexes(name string, extentNodeCount int) [model.ReplicaCount]int {
	var out [model.ReplicaCount]int
	base := Hash(name) % uint64(extentNodeCount)
	for j := 0; j < model.ReplicaCount; j++ {
		out[j] = int((base+uint64(j))%uint64(extentNodeCount)) + 1
	}
	return out
}

// InitialAssign computes the placement of every file.
// extentNodeCount must be at least model.ReplicaCount for the replicas to be distinct.
func InitialAssign(files []string, partitionServerCount, extentNodeCount int) []Placement {
	placements := make([]Placement, 0, len(files))
	for _, f := range files {
		placements = append(placements, Placement{
			File:            f,
			PartitionServer: PartitionServerIndex(f, partitionServerCount),
			Replicas:        ReplicaIndexes(f, extentNodeCount),
		})
	}
	return placements
}
