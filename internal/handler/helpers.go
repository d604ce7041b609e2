package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	models "github.com/banbrick/collector/internal/model"
)

var requiredFields = []string{"auth", "project", "item", "value"}

// DecodeEnvelope parses and validates the request envelope: auth, project
// and item must be non-empty strings, value must be present and either a
// string or null.
func DecodeEnvelope(body io.Reader) (models.CollectRequest, error) {
	var req models.CollectRequest

	data, err := io.ReadAll(body)
	if err != nil {
		return req, fmt.Errorf("failed to read request body: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return req, fmt.Errorf("invalid JSON: %w", err)
	}
	for _, name := range requiredFields {
		if _, ok := fields[name]; !ok {
			return req, fmt.Errorf("%s is a required property", name)
		}
	}

	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("invalid field type: %w", err)
	}
	if req.Auth == "" {
		return req, fmt.Errorf("auth must not be empty")
	}
	if req.Project == "" {
		return req, fmt.Errorf("project must not be empty")
	}
	if req.Item == "" {
		return req, fmt.Errorf("item must not be empty")
	}
	return req, nil
}

// WriteResponse writes the {ok, detail} envelope with the given status.
func WriteResponse(w http.ResponseWriter, status int, ok bool, detail any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.CollectResponse{OK: ok, Detail: detail})
}
