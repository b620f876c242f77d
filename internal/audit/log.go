// Package audit keeps an append-only history of written builds so license
// drift between builds can be reviewed.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/redactyl/licensebanner/internal/report"
	"github.com/redactyl/licensebanner/internal/types"
)

// BuildRecord is one line of the history file.
type BuildRecord struct {
	Timestamp     time.Time      `json:"timestamp"`
	BuildID       string         `json:"build_id"`
	Root          string         `json:"root"`
	Commit        string         `json:"commit,omitempty"`
	Dependencies  int            `json:"dependencies"`
	LicenseCounts map[string]int `json:"license_counts"`
	Keys          []string       `json:"keys"`
	Added         []string       `json:"added,omitempty"`
	Removed       []string       `json:"removed,omitempty"`
	Violations    []string       `json:"violations,omitempty"`
	Chunks        int            `json:"chunks"`
	Duration      string         `json:"duration"`
}

// Log is the history file of one project.
type Log struct {
	logPath string
}

// IgnorePattern is the history file name used when root has no .git dir.
const IgnorePattern = ".licensebanner_history.jsonl"

// NewLog places the history under .git when root is a repository.
func NewLog(root string) *Log {
	gitDir := filepath.Join(root, ".git")
	logPath := filepath.Join(root, IgnorePattern)
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		logPath = filepath.Join(gitDir, "licensebanner_history.jsonl")
	}
	return &Log{logPath: logPath}
}

// LoadHistory returns every record, newest first. Undecodable lines are
// skipped.
func (a *Log) LoadHistory() ([]BuildRecord, error) {
	f, err := os.Open(a.logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open build history: %w", err)
	}
	defer f.Close()

	var records []BuildRecord
	decoder := json.NewDecoder(f)
	for decoder.More() {
		var record BuildRecord
		if err := decoder.Decode(&record); err != nil {
			break
		}
		records = append(records, record)
	}
	slices.Reverse(records)
	return records, nil
}

// LogBuild appends record, filling Added and Removed against the previous
// build.
func (a *Log) LogBuild(record BuildRecord) error {
	if record.BuildID == "" {
		record.BuildID = fmt.Sprintf("build_%d", record.Timestamp.Unix())
	}
	if prev, err := a.LoadHistory(); err == nil && len(prev) > 0 {
		record.Added, record.Removed = diffKeys(prev[0].Keys, record.Keys)
	}

	f, err := os.OpenFile(a.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open build history: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(record); err != nil {
		return fmt.Errorf("failed to write build record: %w", err)
	}
	return nil
}

// NewRecord summarizes one build. deps are expected in store order.
func NewRecord(root, commit string, deps []types.Dependency, violations []report.Violation, chunks int, duration time.Duration) BuildRecord {
	counts := make(map[string]int)
	keys := make([]string, 0, len(deps))
	for _, g := range report.GroupByLicense(deps) {
		counts[g.License] = len(g.Dependencies)
	}
	for _, d := range deps {
		keys = append(keys, d.Key())
	}
	var vs []string
	for _, v := range violations {
		vs = append(vs, v.String())
	}
	return BuildRecord{
		Timestamp:     time.Now(),
		Root:          root,
		Commit:        commit,
		Dependencies:  len(deps),
		LicenseCounts: counts,
		Keys:          keys,
		Violations:    vs,
		Chunks:        chunks,
		Duration:      duration.String(),
	}
}

func diffKeys(before, after []string) (added, removed []string) {
	old := make(map[string]bool, len(before))
	for _, k := range before {
		old[k] = true
	}
	cur := make(map[string]bool, len(after))
	for _, k := range after {
		cur[k] = true
		if !old[k] {
			added = append(added, k)
		}
	}
	for _, k := range before {
		if !cur[k] {
			removed = append(removed, k)
		}
	}
	return added, removed
}
