package core

import (
	"encoding/json"
	"io"
)

// MarshalDependencies pretty-prints dependencies as JSON for humans or pipelines.
func MarshalDependencies(w io.Writer, deps []Dependency) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(deps)
}

// UnmarshalDependencies decodes dependencies JSON, useful for ingestion tests.
func UnmarshalDependencies(r io.Reader) ([]Dependency, error) {
	var deps []Dependency
	if err := json.NewDecoder(r).Decode(&deps); err != nil {
		return nil, err
	}
	return deps, nil
}
