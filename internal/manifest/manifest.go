// Package manifest decodes package.json files into license metadata.
package manifest

import (
	"encoding/json"
	"os"
	"regexp"
	"strings"

	packageurl "github.com/package-url/packageurl-go"
	"github.com/redactyl/licensebanner/internal/types"
	"go.trai.ch/zerr"
)

// FileName is the manifest looked up in package directories.
const FileName = "package.json"

// ErrParse is returned when a manifest is not valid JSON.
var ErrParse = zerr.New("failed to parse manifest")

type packageJSON struct {
	Name         string      `json:"name"`
	Version      string      `json:"version"`
	Description  string      `json:"description"`
	License      interface{} `json:"license"`
	Licenses     interface{} `json:"licenses"`
	Author       interface{} `json:"author"`
	Contributors interface{} `json:"contributors"`
	Maintainers  interface{} `json:"maintainers"`
	Repository   interface{} `json:"repository"`
	Homepage     interface{} `json:"homepage"`
	Private      bool        `json:"private"`
}

// Manifest is the license-relevant subset of a package.json.
type Manifest struct {
	Name         string
	Version      string
	Description  string
	Licenses     []string
	Author       types.Person
	Contributors []types.Person
	Maintainers  []types.Person
	Repository   string
	Homepage     string
	Private      bool
}

// Read loads and decodes the manifest at path.
func Read(path string) (*Manifest, error) {
	b, err := os.ReadFile(path) //nolint:gosec // path comes from the build graph
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse decodes raw package.json bytes.
func Parse(b []byte) (*Manifest, error) {
	var raw packageJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, zerr.With(zerr.Wrap(ErrParse, ""), "cause", err.Error())
	}
	licenses := extractLicenses(raw.License)
	if len(licenses) == 0 {
		licenses = extractLicenses(raw.Licenses)
	}
	return &Manifest{
		Name:         strings.TrimSpace(raw.Name),
		Version:      strings.TrimSpace(raw.Version),
		Description:  raw.Description,
		Licenses:     licenses,
		Author:       extractPerson(raw.Author),
		Contributors: extractPeople(raw.Contributors),
		Maintainers:  extractPeople(raw.Maintainers),
		Repository:   extractRepoURL(raw.Repository),
		Homepage:     extractString(raw.Homepage),
		Private:      raw.Private,
	}, nil
}

// Dependency converts the manifest into a descriptor rooted at dir.
func (m *Manifest) Dependency(dir, licenseText string) (types.Dependency, error) {
	return types.NewDependency(types.Dependency{
		Name:         m.Name,
		Version:      m.Version,
		Licenses:     m.Licenses,
		LicenseText:  licenseText,
		Author:       m.Author.String(),
		Repository:   m.Repository,
		Description:  m.Description,
		Homepage:     m.Homepage,
		Private:      m.Private,
		Contributors: m.Contributors,
		Maintainers:  m.Maintainers,
		PURL:         PURL(m.Name, m.Version),
		Dir:          dir,
	})
}

// PURL returns the npm package URL for name and version. Scoped names keep
// their scope as the namespace.
func PURL(name, version string) string {
	if name == "" {
		return ""
	}
	namespace := ""
	if strings.HasPrefix(name, "@") {
		if i := strings.Index(name, "/"); i > 0 {
			namespace, name = name[:i], name[i+1:]
		}
	}
	return packageurl.NewPackageURL(packageurl.TypeNPM, namespace, name, version, nil, "").ToString()
}

func extractString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case map[string]interface{}:
		if u, ok := s["url"].(string); ok {
			return u
		}
	}
	return ""
}

func extractLicenses(v interface{}) []string {
	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	switch l := v.(type) {
	case string:
		add(l)
	case map[string]interface{}:
		if t, ok := l["type"].(string); ok {
			add(t)
		}
	case []interface{}:
		for _, item := range l {
			switch li := item.(type) {
			case string:
				add(li)
			case map[string]interface{}:
				if t, ok := li["type"].(string); ok {
					add(t)
				}
			}
		}
	}
	return out
}

func extractRepoURL(v interface{}) string {
	switch r := v.(type) {
	case string:
		return normalizeGitURL(r)
	case map[string]interface{}:
		if u, ok := r["url"].(string); ok {
			return normalizeGitURL(u)
		}
	case []interface{}:
		if len(r) > 0 {
			if m, ok := r[0].(map[string]interface{}); ok {
				if u, ok := m["url"].(string); ok {
					return normalizeGitURL(u)
				}
			}
		}
	}
	return ""
}

// shorthand repository forms: "github:user/repo", "gitlab:user/repo",
// "bitbucket:user/repo" and plain "user/repo" (GitHub).
var shorthandHosts = map[string]string{
	"github":    "https://github.com/",
	"gitlab":    "https://gitlab.com/",
	"bitbucket": "https://bitbucket.org/",
}

var bareShorthand = regexp.MustCompile(`^[\w.-]+/[\w.-]+$`)

func normalizeGitURL(u string) string {
	u = strings.TrimSpace(u)
	if i := strings.Index(u, ":"); i > 0 {
		if base, ok := shorthandHosts[u[:i]]; ok {
			return base + strings.TrimSuffix(u[i+1:], ".git")
		}
	}
	if bareShorthand.MatchString(u) && !strings.HasPrefix(u, "github.com/") {
		return "https://github.com/" + u
	}
	u = strings.TrimPrefix(u, "git+")
	if strings.HasPrefix(u, "git@github.com:") {
		u = "https://github.com/" + strings.TrimPrefix(u, "git@github.com:")
	}
	if strings.HasPrefix(u, "git://") {
		u = "https://" + strings.TrimPrefix(u, "git://")
	}
	u = strings.TrimSuffix(u, ".git")
	if strings.HasPrefix(u, "github.com/") {
		u = "https://" + u
	}
	return u
}

// personPattern matches "Name <email> (url)" with every part optional.
var personPattern = regexp.MustCompile(`^\s*([^<(]*?)\s*(?:<([^>]*)>)?\s*(?:\(([^)]*)\))?\s*$`)

func extractPerson(v interface{}) types.Person {
	switch p := v.(type) {
	case string:
		m := personPattern.FindStringSubmatch(p)
		if m == nil {
			return types.Person{Name: strings.TrimSpace(p)}
		}
		return types.Person{Name: m[1], Email: m[2], URL: m[3]}
	case map[string]interface{}:
		var out types.Person
		out.Name, _ = p["name"].(string)
		out.Email, _ = p["email"].(string)
		out.URL, _ = p["url"].(string)
		return out
	}
	return types.Person{}
}

func extractPeople(v interface{}) []types.Person {
	var out []types.Person
	switch l := v.(type) {
	case []interface{}:
		for _, item := range l {
			if p := extractPerson(item); !p.IsZero() {
				out = append(out, p)
			}
		}
	case string, map[string]interface{}:
		if p := extractPerson(l); !p.IsZero() {
			out = append(out, p)
		}
	}
	return out
}
