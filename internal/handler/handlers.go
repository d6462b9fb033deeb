// Package handler provides HTTP request handlers for the simulator API.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/jainsameer1991/object-storage/internal/converter"
	apperrors "github.com/jainsameer1991/object-storage/internal/errors"
	"github.com/jainsameer1991/object-storage/internal/service"
	"go.uber.org/zap"
)

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	status       *service.StatusService
	routing      *service.RoutingService
	httpToDomain *converter.HTTPToDomain
	domainToHTTP *converter.DomainToHTTP
	errorHandler *apperrors.Handler
	logger       *zap.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(
	status *service.StatusService,
	routing *service.RoutingService,
	errorHandler *apperrors.Handler,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		status:       status,
		routing:      routing,
		httpToDomain: converter.NewHTTPToDomain(),
		domainToHTTP: converter.NewDomainToHTTP(),
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// GetSystemStatus handles GET /files/system/status requests.
func (h *Handlers) GetSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSONResponse(w, http.StatusOK, h.status.Statuses())
}

// SetSystemStatus handles POST /files/system/status requests.
func (h *Handlers) SetSystemStatus(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get("X-Request-ID")

	name, status, err := h.httpToDomain.SetStatusRequest(r)
	if err != nil {
		h.errorHandler.WriteValidationError(w, err.Error(), requestID)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, h.status.SetStatus(name, status))
}

// ListPartitionServers handles GET /files/partition-servers requests.
func (h *Handlers) ListPartitionServers(w http.ResponseWriter, r *http.Request) {
	h.writeJSONResponse(w, http.StatusOK, h.status.PartitionServers())
}

// GetElectionLog handles GET /files/partition-manager/leader-election-log requests.
func (h *Handlers) GetElectionLog(w http.ResponseWriter, r *http.Request) {
	h.writeJSONResponse(w, http.StatusOK, h.domainToHTTP.ElectionLogResponse(h.status.ElectionLog()))
}

// ListMigrations handles GET /files/migrations requests.
func (h *Handlers) ListMigrations(w http.ResponseWriter, r *http.Request) {
	h.writeJSONResponse(w, http.StatusOK, h.domainToHTTP.MigrationsResponse(h.status.Migrations()))
}

// ListFiles handles GET /files requests.
func (h *Handlers) ListFiles(w http.ResponseWriter, r *http.Request) {
	h.writeJSONResponse(w, http.StatusOK, h.domainToHTTP.FilesResponse(h.routing.Files()))
}

// GetFile handles GET /files/{filename} requests.
// An unknown file answers 404 with the routing steps taken.
func (h *Handlers) GetFile(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get("X-Request-ID")

	filename, err := h.httpToDomain.PathVar(r, "filename")
	if err != nil {
		h.errorHandler.WriteValidationError(w, err.Error(), requestID)
		return
	}

	loc, err := h.routing.Lookup(filename)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.ErrorCodeFileNotFound && loc != nil {
			h.writeJSONResponse(w, http.StatusNotFound, loc)
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, loc)
}

// SimulateLookup handles POST /files/simulate requests.
func (h *Handlers) SimulateLookup(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get("X-Request-ID")

	filename, err := h.httpToDomain.FilenameRequest(r)
	if err != nil {
		h.errorHandler.WriteValidationError(w, err.Error(), requestID)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, h.routing.Simulate(filename))
}

// PartitionForKey handles GET /partition-manager/partition-for-key requests.
func (h *Handlers) PartitionForKey(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get("X-Request-ID")

	key, err := h.httpToDomain.KeyQuery(r)
	if err != nil {
		h.errorHandler.WriteValidationError(w, err.Error(), requestID)
		return
	}

	ps, err := h.routing.PartitionForKey(key)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, h.domainToHTTP.PartitionResponse(key, ps))
}

// GetExtentMap handles GET /partition-server/file/{filename} requests.
func (h *Handlers) GetExtentMap(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get("X-Request-ID")

	filename, err := h.httpToDomain.PathVar(r, "filename")
	if err != nil {
		h.errorHandler.WriteValidationError(w, err.Error(), requestID)
		return
	}

	file, err := h.routing.ExtentMap(filename)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, h.domainToHTTP.ExtentMapResponse(file))
}

// LocateReplica handles POST /stream-manager/get-file requests.
func (h *Handlers) LocateReplica(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get("X-Request-ID")

	filename, err := h.httpToDomain.FilenameRequest(r)
	if err != nil {
		h.errorHandler.WriteValidationError(w, err.Error(), requestID)
		return
	}

	node, err := h.routing.LocateReplica(filename)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, h.domainToHTTP.ReplicaResponse(filename, node))
}

// RetrieveChunk handles GET /extent-node/retrieve/{id} requests.
func (h *Handlers) RetrieveChunk(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get("X-Request-ID")

	node, err := h.httpToDomain.PathVar(r, "id")
	if err != nil {
		h.errorHandler.WriteValidationError(w, err.Error(), requestID)
		return
	}

	chunk, err := h.routing.RetrieveChunk(node)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, h.domainToHTTP.ChunkResponse(node, chunk))
}

// writeJSONResponse writes a JSON response to the HTTP response writer.
func (h *Handlers) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}
