package model

// ComponentKind identifies the tier a simulated component belongs to
type ComponentKind string

const (
	// KindFrontEnd is the request entry point
	KindFrontEnd ComponentKind = "frontend"
	// KindPartitionManager owns partition-server assignment and leader election
	KindPartitionManager ComponentKind = "partition_manager"
	// KindPartitionServer maps a file to its extent-node replica set
	KindPartitionServer ComponentKind = "partition_server"
	// KindStreamManager resolves a healthy replica for a lookup
	KindStreamManager ComponentKind = "stream_manager"
	// KindExtentNode holds a replica of file content
	KindExtentNode ComponentKind = "extent_node"
)

// Status represents the up/down health of a component
type Status string

const (
	// StatusUp indicates the component is serving
	StatusUp Status = "up"
	// StatusDown indicates the component is unavailable
	StatusDown Status = "down"
)

// ParseStatus converts a wire value into a Status.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusUp:
		return StatusUp, true
	case StatusDown:
		return StatusDown, true
	default:
		return "", false
	}
}

// IsUp reports whether the status is StatusUp
func (s Status) IsUp() bool {
	return s == StatusUp
}

// Component represents one simulated process of the cluster
type Component struct {
	Name string
	Kind ComponentKind
}

// ComponentStatus pairs a component name with its current health
type ComponentStatus struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
}

// StatusChange is the outcome of an operator status request
type StatusChange struct {
	Name       string      `json:"name"`
	Status     Status      `json:"status"`
	Migrations []Migration `json:"migrations"`
}

// PartitionServerLoad lists the files a partition server currently serves
type PartitionServerLoad struct {
	Name   string   `json:"name"`
	Status Status   `json:"status"`
	Files  []string `json:"files"`
}
