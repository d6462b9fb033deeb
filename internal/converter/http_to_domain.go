// Package converter translates between HTTP payloads and domain types.
package converter

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/jainsameer1991/object-storage/internal/model"
)

// maxBodyBytes caps request bodies; every payload is a couple of short strings.
const maxBodyBytes = 64 << 10

// HTTPToDomain handles conversion of HTTP requests to domain values.
type HTTPToDomain struct{}

// NewHTTPToDomain creates a new HTTPToDomain converter.
func NewHTTPToDomain() *HTTPToDomain {
	return &HTTPToDomain{}
}

// SetStatusHTTPRequest represents the HTTP request body for SetStatus.
type SetStatusHTTPRequest struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// FilenameHTTPRequest represents the HTTP request body for Simulate and GetFile.
type FilenameHTTPRequest struct {
	Filename string `json:"filename"`
}

// SetStatusRequest parses a status change request.
func (c *HTTPToDomain) SetStatusRequest(r *http.Request) (string, model.Status, error) {
	var httpReq SetStatusHTTPRequest
	if err := decodeBody(r, &httpReq); err != nil {
		return "", "", err
	}

	if strings.TrimSpace(httpReq.Name) == "" {
		return "", "", fmt.Errorf("name is required")
	}

	status, ok := model.ParseStatus(strings.ToLower(httpReq.Status))
	if !ok {
		return "", "", fmt.Errorf("invalid status: %q (must be up or down)", httpReq.Status)
	}

	return httpReq.Name, status, nil
}

// FilenameRequest parses a body carrying a filename.
func (c *HTTPToDomain) FilenameRequest(r *http.Request) (string, error) {
	var httpReq FilenameHTTPRequest
	if err := decodeBody(r, &httpReq); err != nil {
		return "", err
	}

	if strings.TrimSpace(httpReq.Filename) == "" {
		return "", fmt.Errorf("filename is required")
	}

	return httpReq.Filename, nil
}

// PathVar returns a required mux route variable.
func (c *HTTPToDomain) PathVar(r *http.Request, name string) (string, error) {
	v := mux.Vars(r)[name]
	if v == "" {
		return "", fmt.Errorf("%s path parameter is required", name)
	}
	return v, nil
}

// KeyQuery returns the required key query parameter.
func (c *HTTPToDomain) KeyQuery(r *http.Request) (string, error) {
	key := r.URL.Query().Get("key")
	if key == "" {
		return "", fmt.Errorf("key query parameter is required")
	}
	return key, nil
}

func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read request body: %w", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse request body: %w", err)
	}
	return nil
}
