package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Request is one triple integral to evaluate. The function is always
// written in x, y and z; bounds are keyed by native variable and hold the
// lower and upper limit text.
type Request struct {
	Name     string              `json:"name,omitempty" yaml:"name,omitempty"`
	Function string              `json:"function" yaml:"function"`
	System   string              `json:"system" yaml:"system"`
	Order    []string            `json:"order,omitempty" yaml:"order,omitempty"` // innermost first
	Bounds   map[string][]string `json:"bounds" yaml:"bounds"`
}

// Validate checks that every field the engine needs is present.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Function) == "" {
		return &ValidationError{"function must not be empty"}
	}
	if strings.TrimSpace(r.System) == "" {
		return &ValidationError{"coordinate system must not be empty"}
	}
	if len(r.Order) != 0 && len(r.Order) != 3 {
		return &ValidationError{fmt.Sprintf("order must name exactly 3 variables, got %d", len(r.Order))}
	}
	if len(r.Bounds) == 0 {
		return &ValidationError{"bounds must not be empty"}
	}
	for v, pair := range r.Bounds {
		if len(pair) != 2 {
			return &ValidationError{fmt.Sprintf("bounds of %s need a lower and an upper limit, got %d values", v, len(pair))}
		}
		if strings.TrimSpace(pair[0]) == "" || strings.TrimSpace(pair[1]) == "" {
			return &ValidationError{fmt.Sprintf("bounds of %s must not be empty", v)}
		}
	}
	return nil
}

// ValidationError represents a request validation error
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

// LoadFromFile loads a request from a JSON or YAML problem file. The format
// follows the file extension.
func LoadFromFile(path string) (*Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var req Request
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &req)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &req)
	default:
		return nil, fmt.Errorf("unsupported problem file %s (use .json, .yaml or .yml)", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return &req, nil
}
