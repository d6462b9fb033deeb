// Package topology defines the static set of simulated cluster components.
package topology

import (
	"fmt"

	"github.com/jainsameer1991/object-storage/internal/model"
)

// Fixed component names
const (
	FrontEndName         = "Front-End Service"
	PartitionManagerName = "Partition Manager"
	StreamManagerName    = "Stream Manager"

	partitionServerPrefix = "Partition Server"
	extentNodePrefix      = "Extent Node"
)

// Registry is the immutable list of components: one front-end, one partition manager,
// P partition servers, one stream manager and E extent nodes, in that order.
type Registry struct {
	components       []model.Component
	byName           map[string]model.Component
	partitionServers []string
	extentNodes      []string
}

// NewRegistry builds the registry for the given partition-server and extent-node counts.
func NewRegistry(partitionServers, extentNodes int) (*Registry, error) {
	if partitionServers < 1 {
		return nil, fmt.Errorf("at least one partition server is required, got %d", partitionServers)
	}
	if extentNodes < model.ReplicaCount {
		return nil, fmt.Errorf("at least %d extent nodes are required, got %d", model.ReplicaCount, extentNodes)
	}

	r := &Registry{
		byName: make(map[string]model.Component, partitionServers+extentNodes+3),
	}

	r.add(FrontEndName, model.KindFrontEnd)
	r.add(PartitionManagerName, model.KindPartitionManager)
	for i := 1; i <= partitionServers; i++ {
		name := PartitionServerName(i)
		r.add(name, model.KindPartitionServer)
		r.partitionServers = append(r.partitionServers, name)
	}
	r.add(StreamManagerName, model.KindStreamManager)
	for i := 1; i <= extentNodes; i++ {
		name := ExtentNodeName(i)
		r.add(name, model.KindExtentNode)
		r.extentNodes = append(r.extentNodes, name)
	}

	return r, nil
}

func (r *Registry) add(name string, kind model.ComponentKind) {
	c := model.Component{Name: name, Kind: kind}
	r.components = append(r.components, c)
	r.byName[name] = c
}

// PartitionServerName returns the name of the i-th (1-based) partition server
func PartitionServerName(i int) string {
	return fmt.Sprintf("%s %d", partitionServerPrefix, i)
}

// ExtentNodeName returns the name of the i-th (1-based) extent node
func ExtentNodeName(i int) string {
	return fmt.Sprintf("%s %d", extentNodePrefix, i)
}

// Names returns every component name in registry order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.components))
	for i, c := range r.components {
		names[i] = c.Name
	}
	return names
}

// Lookup finds a component by exact name.
func (r *Registry) Lookup(name string) (model.Component, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// PartitionServers returns partition server names in index order (1..P).
func (r *Registry) PartitionServers() []string {
	out := make([]string, len(r.partitionServers))
	copy(out, r.partitionServers)
	return out
}

// PartitionServerCount returns P
func (r *Registry) PartitionServerCount() int { return len(r.partitionServers) }

// ExtentNodeCount returns E
func (r *Registry) ExtentNodeCount() int { return len(r.extentNodes) }
