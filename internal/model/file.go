package model

// ReplicaCount is the fixed size of every replica set
const ReplicaCount = 3

// ReplicaSet is the ordered (primary, secondary1, secondary2) extent-node assignment of a file
type ReplicaSet [ReplicaCount]string

// Primary returns the first replica
func (r ReplicaSet) Primary() string { return r[0] }

// Secondary1 returns the second replica
func (r ReplicaSet) Secondary1() string { return r[1] }

// Secondary2 returns the third replica
func (r ReplicaSet) Secondary2() string { return r[2] }

// Contains reports whether node is one of the replicas
func (r ReplicaSet) Contains(node string) bool {
	for _, n := range r {
		if n == node {
			return true
		}
	}
	return false
}

// File represents a demo file and its current placement.
// Replicas never change after initial assignment; PartitionServer is rebalanced on failover.
type File struct {
	Name            string
	PartitionServer string
	Replicas        ReplicaSet
}

// FileLocation is the answer to a single-file lookup
type FileLocation struct {
	Name     string   `json:"name,omitempty"`
	Steps    []string `json:"steps"`
	Location string   `json:"location,omitempty"`
}
