// Package store accumulates the dependencies discovered during one build.
// Entries are keyed by name and version; inserting a known key merges the
// new metadata into the existing entry instead of replacing it.
package store

import (
	"cmp"
	"iter"
	"slices"
	"strconv"

	semver "github.com/blang/semver/v4"
	xxhash "github.com/cespare/xxhash/v2"
	"github.com/redactyl/licensebanner/internal/types"
)

// Result reports what an Upsert did.
type Result struct {
	Key       string
	Inserted  bool
	Changed   bool
	Conflicts []string
}

// Store is the deduplicating dependency collection of a single build. It is
// not safe for concurrent use; the host drives it sequentially.
type Store struct {
	entries    map[string]types.Dependency
	order      []string
	frozen     bool
	lateWrites int
}

// New returns an empty store.
func New() *Store {
	return &Store{entries: map[string]types.Dependency{}}
}

// Upsert inserts d or merges it into the entry with the same key. Repeating
// an Upsert with the same value leaves the store unchanged.
func (s *Store) Upsert(d types.Dependency) Result {
	key := d.Key()
	res := Result{Key: key}
	if s.frozen {
		s.lateWrites++
	}
	existing, ok := s.entries[key]
	if !ok {
		s.entries[key] = d.Clone()
		s.order = append(s.order, key)
		res.Inserted = true
		res.Changed = true
		return res
	}
	merged, conflicts := types.Merge(existing, d)
	res.Conflicts = conflicts
	if !types.Equal(existing, merged) {
		s.entries[key] = merged
		res.Changed = true
	}
	return res
}

// Get returns the entry stored for name and version.
func (s *Store) Get(name, version string) (types.Dependency, bool) {
	d, ok := s.entries[types.Key(name, version)]
	if !ok {
		return types.Dependency{}, false
	}
	return d.Clone(), true
}

// Len returns the number of distinct dependencies.
func (s *Store) Len() int {
	return len(s.order)
}

// All yields the entries in insertion order. The sequence can be ranged over
// any number of times.
func (s *Store) All() iter.Seq[types.Dependency] {
	return func(yield func(types.Dependency) bool) {
		for _, k := range s.order {
			if !yield(s.entries[k].Clone()) {
				return
			}
		}
	}
}

// Sorted yields the entries ordered by name, then by semantic version.
// Versions that do not parse are compared as plain strings, and versions
// that parse equal ("1.0" and "1.0.0") fall back to the key.
func (s *Store) Sorted() iter.Seq[types.Dependency] {
	return func(yield func(types.Dependency) bool) {
		keys := slices.Clone(s.order)
		slices.SortStableFunc(keys, func(a, b string) int {
			da, db := s.entries[a], s.entries[b]
			if c := cmp.Compare(da.Name, db.Name); c != 0 {
				return c
			}
			if c := compareVersions(da.Version, db.Version); c != 0 {
				return c
			}
			return cmp.Compare(a, b)
		})
		for _, k := range keys {
			if !yield(s.entries[k].Clone()) {
				return
			}
		}
	}
}

// Freeze marks the end of the load phase. Writes after Freeze still apply
// but are counted by LateWrites.
func (s *Store) Freeze() {
	s.frozen = true
}

// Frozen reports whether Freeze was called.
func (s *Store) Frozen() bool {
	return s.frozen
}

// LateWrites returns how many Upsert calls happened after Freeze.
func (s *Store) LateWrites() int {
	return s.lateWrites
}

// Fingerprint hashes the sorted store content. Two stores with the same
// entries have the same fingerprint regardless of insertion order.
func (s *Store) Fingerprint() uint64 {
	h := xxhash.New()
	write := func(v string) {
		_, _ = h.WriteString(v)
		_, _ = h.Write([]byte{0})
	}
	for d := range s.Sorted() {
		write(d.Name)
		write(d.Version)
		for _, l := range d.Licenses {
			write(l)
		}
		write(d.LicenseText)
		write(d.Author)
		write(d.Repository)
		write(d.Description)
		write(d.Homepage)
		write(strconv.FormatBool(d.Private))
		for _, p := range d.Contributors {
			write(p.String())
		}
		for _, p := range d.Maintainers {
			write(p.String())
		}
		write(d.PURL)
		_, _ = h.Write([]byte{1})
	}
	return h.Sum64()
}

func compareVersions(a, b string) int {
	va, errA := semver.ParseTolerant(a)
	vb, errB := semver.ParseTolerant(b)
	if errA != nil || errB != nil {
		return cmp.Compare(a, b)
	}
	return va.Compare(vb)
}
