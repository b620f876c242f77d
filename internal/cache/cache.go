package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	xxhash "github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
)

// ErrEmpty is returned when saving a DB that was never initialised.
var ErrEmpty = zerr.New("empty cache")

// IgnorePatterns name the files written to the project root when it has no
// .git directory.
var IgnorePatterns = []string{".licensebanner_chunks.json", ".licensebanner_last_build.json"}

// DB remembers the content of every chunk the driver wrote, so a second run
// over the same output leaves already stamped chunks alone.
type DB struct {
	// Path relative to the project root -> content hash
	Entries map[string]string `json:"entries"`
}

func defaultPath(root string) string {
	// Prefer .git so the cache is never committed by accident.
	gitDir := filepath.Join(root, ".git")
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		return filepath.Join(gitDir, "licensebanner_chunks.json")
	}
	return filepath.Join(root, ".licensebanner_chunks.json")
}

// Hash returns the content hash stored in the DB.
func Hash(b []byte) string {
	return strconv.FormatUint(xxhash.Sum64(b), 16)
}

// Stamped reports whether rel was last written with exactly content.
func (db DB) Stamped(rel string, content []byte) bool {
	h, ok := db.Entries[rel]
	return ok && h == Hash(content)
}

// Record remembers content as the stamped version of rel.
func (db DB) Record(rel string, content []byte) {
	db.Entries[rel] = Hash(content)
}

// Load reads the DB for root. A missing or corrupt file yields an empty DB
// together with the error.
func Load(root string) (DB, error) {
	var db DB
	b, err := os.ReadFile(defaultPath(root))
	if err != nil {
		return DB{Entries: map[string]string{}}, err
	}
	if err := json.Unmarshal(b, &db); err != nil {
		return DB{Entries: map[string]string{}}, err
	}
	if db.Entries == nil {
		db.Entries = map[string]string{}
	}
	return db, nil
}

// Save writes the DB for root.
func Save(root string, db DB) error {
	if db.Entries == nil {
		return ErrEmpty
	}
	b, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(defaultPath(root), b, 0o600)
}
