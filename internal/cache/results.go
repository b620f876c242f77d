package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/redactyl/licensebanner/internal/types"
)

// Summary is what the last build collected, kept for `report --last`.
type Summary struct {
	Dependencies []types.Dependency `json:"dependencies"`
	Artifacts    []string           `json:"artifacts,omitempty"`
	Timestamp    time.Time          `json:"timestamp"`
	Root         string             `json:"root"`
	Commit       string             `json:"commit,omitempty"`
	Count        int                `json:"count"`
}

func summaryPath(root string) string {
	gitDir := filepath.Join(root, ".git")
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		return filepath.Join(gitDir, "licensebanner_last_build.json")
	}
	return filepath.Join(root, ".licensebanner_last_build.json")
}

// SaveSummary stores the dependencies of the last build.
// commit is the VCS revision the build ran on, if known.
func SaveSummary(root, commit string, deps []types.Dependency, artifacts []string) error {
	s := Summary{
		Dependencies: deps,
		Artifacts:    artifacts,
		Timestamp:    time.Now(),
		Root:         root,
		Commit:       commit,
		Count:        len(deps),
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(summaryPath(root), b, 0o600)
}

// LoadSummary loads the summary saved by the last build.
func LoadSummary(root string) (Summary, error) {
	var s Summary
	b, err := os.ReadFile(summaryPath(root))
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return s, err
	}
	return s, nil
}
