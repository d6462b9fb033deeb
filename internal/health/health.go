// Package health provides health check endpoints for the simulator.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/jainsameer1991/object-storage/internal/metrics"
	"go.uber.org/zap"
)

// Verifier checks the consistency of cluster state.
type Verifier interface {
	Verify() error
}

// HealthCheck manages health check functionality.
type HealthCheck struct {
	verifier      Verifier
	metrics       *metrics.Metrics
	logger        *zap.Logger
	mu            sync.RWMutex
	ready         bool
	draining      bool
	lastErr       error
	checkInterval time.Duration
}

// NewHealthCheck creates a new HealthCheck instance.
func NewHealthCheck(verifier Verifier, m *metrics.Metrics, logger *zap.Logger) *HealthCheck {
	hc := &HealthCheck{
		verifier:      verifier,
		metrics:       m,
		logger:        logger,
		checkInterval: 5 * time.Second,
	}
	hc.check()
	return hc
}

// LivenessResponse represents the response for the liveness check.
type LivenessResponse struct {
	Status string `json:"status"`
}

// ReadinessResponse represents the response for the readiness check.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// LivenessHandler handles GET /health requests.
// Returns 200 OK if the process is running.
func (hc *HealthCheck) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LivenessResponse{Status: "healthy"})
}

// ReadinessHandler handles GET /ready requests.
// Returns 200 OK while cluster state is consistent and the process is not draining.
func (hc *HealthCheck) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	hc.mu.RLock()
	ready, draining, lastErr := hc.ready, hc.draining, hc.lastErr
	hc.mu.RUnlock()

	if !ready && !draining {
		// Re-check before reporting failure
		ready, lastErr = hc.check(), hc.err()
	}

	if draining {
		writeJSON(w, http.StatusServiceUnavailable, ReadinessResponse{
			Status: "not_ready",
			Checks: map[string]string{"server": "draining"},
		})
		return
	}

	if !ready {
		resp := ReadinessResponse{
			Status: "not_ready",
			Checks: map[string]string{"state": "inconsistent"},
		}
		if lastErr != nil {
			resp.Error = lastErr.Error()
		}
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	writeJSON(w, http.StatusOK, ReadinessResponse{
		Status: "ready",
		Checks: map[string]string{"state": "consistent"},
	})
}

// Run re-verifies cluster state periodically until ctx is done.
func (hc *HealthCheck) Run(ctx context.Context) error {
	ticker := time.NewTicker(hc.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			hc.check()
		}
	}
}

// check runs the verifier and records the outcome.
func (hc *HealthCheck) check() bool {
	err := hc.verifier.Verify()

	hc.mu.Lock()
	hc.ready = err == nil
	hc.lastErr = err
	draining := hc.draining
	hc.mu.Unlock()

	if err != nil {
		hc.logger.Warn("health check failed", zap.Error(err))
	}
	hc.metrics.SetHealthStatus(err == nil && !draining)
	return err == nil
}

func (hc *HealthCheck) err() error {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.lastErr
}

// SetDraining marks the process as shutting down so readiness fails.
func (hc *HealthCheck) SetDraining() {
	hc.mu.Lock()
	hc.draining = true
	hc.mu.Unlock()

	hc.metrics.SetHealthStatus(false)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
