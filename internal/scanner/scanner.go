// Package scanner resolves the package that owns a module file loaded by the
// build and records its license metadata in the dependency store.
package scanner

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
	"github.com/github/go-spdx/v2/spdxexp"
	"github.com/redactyl/licensebanner/internal/diag"
	"github.com/redactyl/licensebanner/internal/manifest"
	"github.com/redactyl/licensebanner/internal/store"
	"github.com/redactyl/licensebanner/internal/types"
)

// DefaultThirdPartyDirs matches files installed by a package manager.
var DefaultThirdPartyDirs = []string{"**/node_modules/**"}

// licenseFilePatterns are matched against lower-cased file names in a
// package directory. The first match in sorted order wins.
var licenseFilePatterns = []string{
	"license",
	"license.*",
	"license-*",
	"licence",
	"licence.*",
	"licence-*",
	"copying",
	"copying.*",
}

// Config controls how module paths are classified and resolved.
type Config struct {
	// Cwd is the project root. Relative module ids are resolved against it
	// and the parent walk never reads its package.json.
	Cwd string
	// ThirdPartyDirs are doublestar patterns; a module is third-party when
	// its slash path matches one of them.
	ThirdPartyDirs []string
	// Debug logs every newly discovered dependency.
	Debug bool
}

type resolved struct {
	dep types.Dependency
}

// Scanner feeds the store. It is not safe for concurrent use.
type Scanner struct {
	cfg   Config
	store *store.Store
	sink  diag.Sink
	// dirs caches the package resolved for a directory; nil means none.
	dirs map[string]*resolved
}

// New returns a scanner writing into st.
func New(cfg Config, st *store.Store, sink diag.Sink) *Scanner {
	if cfg.Cwd == "" {
		cfg.Cwd, _ = os.Getwd()
	}
	cfg.Cwd = filepath.Clean(cfg.Cwd)
	if len(cfg.ThirdPartyDirs) == 0 {
		cfg.ThirdPartyDirs = DefaultThirdPartyDirs
	}
	if sink == nil {
		sink = diag.Discard{}
	}
	return &Scanner{cfg: cfg, store: st, sink: sink, dirs: map[string]*resolved{}}
}

// Scan records the package owning path. First-party files, virtual modules
// and files without a resolvable manifest leave the store untouched. Scan
// never fails; metadata problems are reported to the sink.
func (s *Scanner) Scan(path string) {
	if path == "" || strings.HasPrefix(path, "\x00") {
		return
	}
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(s.cfg.Cwd, abs)
	}
	abs = filepath.Clean(abs)
	if !s.IsThirdParty(abs) {
		return
	}

	r := s.resolve(filepath.Dir(abs))
	if r == nil {
		return
	}
	res := s.store.Upsert(r.dep)
	if len(res.Conflicts) > 0 {
		s.sink.Warn("conflicting metadata for dependency, keeping first value",
			"dependency", res.Key, "fields", strings.Join(res.Conflicts, ","))
	}
	if res.Inserted && s.cfg.Debug {
		s.sink.Debug("found dependency", "dependency", res.Key, "license", r.dep.License(), "dir", r.dep.Dir)
	}
}

// IsThirdParty reports whether abs lies in a third-party dependency
// directory.
func (s *Scanner) IsThirdParty(abs string) bool {
	p := abs
	if rel, err := filepath.Rel(s.cfg.Cwd, abs); err == nil && !strings.HasPrefix(rel, "..") {
		p = rel
	}
	p = strings.TrimPrefix(filepath.ToSlash(p), "/")
	for _, pattern := range s.cfg.ThirdPartyDirs {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
	}
	return false
}

// resolve walks from dir towards the project root looking for the nearest
// named manifest. Every directory visited shares the outcome in the cache.
func (s *Scanner) resolve(dir string) *resolved {
	var visited []string
	var out *resolved
	for {
		if cached, ok := s.dirs[dir]; ok {
			out = cached
			break
		}
		if dir == s.cfg.Cwd {
			break
		}
		visited = append(visited, dir)

		m, found, ok := s.readManifest(dir)
		if !ok {
			break
		}
		if found {
			out = s.describe(dir, m)
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	for _, v := range visited {
		s.dirs[v] = out
	}
	return out
}

// readManifest reports found=false when dir has no usable manifest and the
// walk should continue, and ok=false when the walk must stop.
func (s *Scanner) readManifest(dir string) (m *manifest.Manifest, found, ok bool) {
	p := filepath.Join(dir, manifest.FileName)
	if _, err := os.Stat(p); err != nil {
		return nil, false, true
	}
	m, err := manifest.Read(p)
	if err != nil {
		s.sink.Warn("cannot read package manifest, skipping", "path", p, "error", err)
		return nil, false, false
	}
	if m.Name == "" {
		if s.cfg.Debug {
			s.sink.Debug("ignoring manifest without name", "path", p)
		}
		return nil, false, true
	}
	return m, true, true
}

func (s *Scanner) describe(dir string, m *manifest.Manifest) *resolved {
	d, err := m.Dependency(dir, s.licenseText(dir))
	if err != nil {
		s.sink.Warn("invalid package manifest, skipping", "dir", dir, "error", err)
		return nil
	}
	if len(d.Licenses) == 0 {
		s.sink.Warn("no license information found", "dependency", d.Key())
	} else if valid, invalid := spdxexp.ValidateLicenses(d.Licenses); !valid && s.cfg.Debug {
		s.sink.Debug("license is not a known SPDX expression", "dependency", d.Key(), "license", strings.Join(invalid, ","))
	}
	return &resolved{dep: d}
}

// licenseText returns the content of the conventional license file in dir,
// or "" when there is none.
func (s *Scanner) licenseText(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var candidates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if isLicenseFile(e.Name()) {
			candidates = append(candidates, e.Name())
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	slices.Sort(candidates)
	b, err := os.ReadFile(filepath.Join(dir, candidates[0]))
	if err != nil {
		s.sink.Warn("cannot read license file", "path", filepath.Join(dir, candidates[0]), "error", err)
		return ""
	}
	return string(b)
}

func isLicenseFile(name string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range licenseFilePatterns {
		if ok, _ := doublestar.Match(pattern, lower); ok {
			return true
		}
	}
	return false
}
