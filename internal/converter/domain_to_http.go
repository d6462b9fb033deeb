package converter

import (
	"github.com/jainsameer1991/object-storage/internal/model"
)

// DomainToHTTP handles conversion of domain values to HTTP responses.
type DomainToHTTP struct{}

// NewDomainToHTTP creates a new DomainToHTTP converter.
func NewDomainToHTTP() *DomainToHTTP {
	return &DomainToHTTP{}
}

// FileHTTPResponse represents one entry of the file listing.
type FileHTTPResponse struct {
	Name            string `json:"name"`
	PartitionServer string `json:"partition_server"`
	Primary         string `json:"primary"`
	Secondary1      string `json:"secondary1"`
	Secondary2      string `json:"secondary2"`
}

// ExtentMapHTTPResponse represents the partition server's view of a file.
type ExtentMapHTTPResponse struct {
	Filename   string `json:"filename"`
	Primary    string `json:"primary"`
	Secondary1 string `json:"secondary1"`
	Secondary2 string `json:"secondary2"`
}

// PartitionHTTPResponse represents the partition manager's answer for a key.
type PartitionHTTPResponse struct {
	Key             string `json:"key"`
	PartitionServer string `json:"partition_server"`
}

// ReplicaHTTPResponse represents the stream manager's choice of replica.
type ReplicaHTTPResponse struct {
	Filename     string `json:"filename"`
	ExtentNodeID string `json:"extent_node_id"`
}

// ChunkHTTPResponse represents the data an extent node returns.
type ChunkHTTPResponse struct {
	ExtentNodeID string `json:"extent_node_id"`
	Chunk        string `json:"chunk"`
}

// FilesResponse converts the file listing.
func (c *DomainToHTTP) FilesResponse(files []model.File) []FileHTTPResponse {
	out := make([]FileHTTPResponse, 0, len(files))
	for _, f := range files {
		out = append(out, FileHTTPResponse{
			Name:            f.Name,
			PartitionServer: f.PartitionServer,
			Primary:         f.Replicas.Primary(),
			Secondary1:      f.Replicas.Secondary1(),
			Secondary2:      f.Replicas.Secondary2(),
		})
	}
	return out
}

// ExtentMapResponse converts a file's replica set.
func (c *DomainToHTTP) ExtentMapResponse(f model.File) *ExtentMapHTTPResponse {
	return &ExtentMapHTTPResponse{
		Filename:   f.Name,
		Primary:    f.Replicas.Primary(),
		Secondary1: f.Replicas.Secondary1(),
		Secondary2: f.Replicas.Secondary2(),
	}
}

// PartitionResponse converts a key lookup.
func (c *DomainToHTTP) PartitionResponse(key, partitionServer string) *PartitionHTTPResponse {
	return &PartitionHTTPResponse{Key: key, PartitionServer: partitionServer}
}

// ReplicaResponse converts a replica choice.
func (c *DomainToHTTP) ReplicaResponse(filename, node string) *ReplicaHTTPResponse {
	return &ReplicaHTTPResponse{Filename: filename, ExtentNodeID: node}
}

// ChunkResponse converts a chunk read.
func (c *DomainToHTTP) ChunkResponse(node, chunk string) *ChunkHTTPResponse {
	return &ChunkHTTPResponse{ExtentNodeID: node, Chunk: chunk}
}

// ElectionLogResponse never returns nil so the body is always a JSON array.
func (c *DomainToHTTP) ElectionLogResponse(messages []string) []string {
	if messages == nil {
		return []string{}
	}
	return messages
}

// MigrationsResponse never returns nil so the body is always a JSON array.
func (c *DomainToHTTP) MigrationsResponse(migrations []model.Migration) []model.Migration {
	if migrations == nil {
		return []model.Migration{}
	}
	return migrations
}
