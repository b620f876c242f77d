package types

import (
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// ErrEmptyName is returned when a dependency is constructed without a name.
var ErrEmptyName = zerr.New("dependency name is empty")

// Person is an author, contributor or maintainer of a package.
type Person struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	URL   string `json:"url,omitempty"`
}

// String formats the person the way package.json shorthand does:
// "Name <email> (url)", leaving out whatever is unknown.
func (p Person) String() string {
	parts := make([]string, 0, 3)
	if p.Name != "" {
		parts = append(parts, p.Name)
	}
	if p.Email != "" {
		parts = append(parts, "<"+p.Email+">")
	}
	if p.URL != "" {
		parts = append(parts, "("+p.URL+")")
	}
	return strings.Join(parts, " ")
}

// IsZero reports whether no field of the person is known.
func (p Person) IsZero() bool {
	return p.Name == "" && p.Email == "" && p.URL == ""
}

// Dependency describes one third-party package pulled into a bundle together
// with its license metadata. Values are treated as immutable once built with
// NewDependency; the store hands out copies.
type Dependency struct {
	Name         string   `json:"name"`
	Version      string   `json:"version,omitempty"`
	Licenses     []string `json:"licenses,omitempty"`
	LicenseText  string   `json:"licenseText,omitempty"`
	Author       string   `json:"author,omitempty"`
	Repository   string   `json:"repository,omitempty"`
	Description  string   `json:"description,omitempty"`
	Homepage     string   `json:"homepage,omitempty"`
	Private      bool     `json:"private,omitempty"`
	Contributors []Person `json:"contributors,omitempty"`
	Maintainers  []Person `json:"maintainers,omitempty"`
	PURL         string   `json:"purl,omitempty"`
	Dir          string   `json:"-"`
}

// NewDependency validates d and returns a detached copy of it.
func NewDependency(d Dependency) (Dependency, error) {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return Dependency{}, ErrEmptyName
	}
	d.Version = strings.TrimSpace(d.Version)
	return d.Clone(), nil
}

// Key returns the deduplication key name@version.
func (d Dependency) Key() string {
	return Key(d.Name, d.Version)
}

// Key builds the identity key for a name and version pair.
func Key(name, version string) string {
	return name + "@" + version
}

// License joins the known license identifiers. Multiple entries are
// alternatives, as with the legacy package.json "licenses" array.
func (d Dependency) License() string {
	return strings.Join(d.Licenses, " OR ")
}

// Clone returns a copy that shares no slices with d.
func (d Dependency) Clone() Dependency {
	d.Licenses = slices.Clone(d.Licenses)
	d.Contributors = slices.Clone(d.Contributors)
	d.Maintainers = slices.Clone(d.Maintainers)
	return d
}

// Merge fills the gaps of into with the non-empty fields of from. A field
// that is already known is never replaced: when both sides carry different
// non-empty values, the field name is returned in conflicts and into keeps
// its value. People lists are merged append-unique.
func Merge(into, from Dependency) (Dependency, []string) {
	out := into.Clone()
	var conflicts []string

	fill := func(field string, dst *string, src string) {
		switch {
		case src == "":
		case *dst == "":
			*dst = src
		case *dst != src:
			conflicts = append(conflicts, field)
		}
	}
	fill("licenseText", &out.LicenseText, from.LicenseText)
	fill("author", &out.Author, from.Author)
	fill("repository", &out.Repository, from.Repository)
	fill("description", &out.Description, from.Description)
	fill("homepage", &out.Homepage, from.Homepage)
	fill("purl", &out.PURL, from.PURL)
	fill("dir", &out.Dir, from.Dir)

	switch {
	case len(from.Licenses) == 0:
	case len(out.Licenses) == 0:
		out.Licenses = slices.Clone(from.Licenses)
	case !slices.Equal(out.Licenses, from.Licenses):
		conflicts = append(conflicts, "licenses")
	}

	if from.Private {
		out.Private = true
	}
	for _, p := range from.Contributors {
		out.Contributors = appendUniquePerson(out.Contributors, p)
	}
	for _, p := range from.Maintainers {
		out.Maintainers = appendUniquePerson(out.Maintainers, p)
	}
	return out, conflicts
}

// Equal reports whether a and b carry the same metadata.
func Equal(a, b Dependency) bool {
	return a.Name == b.Name &&
		a.Version == b.Version &&
		slices.Equal(a.Licenses, b.Licenses) &&
		a.LicenseText == b.LicenseText &&
		a.Author == b.Author &&
		a.Repository == b.Repository &&
		a.Description == b.Description &&
		a.Homepage == b.Homepage &&
		a.Private == b.Private &&
		slices.Equal(a.Contributors, b.Contributors) &&
		slices.Equal(a.Maintainers, b.Maintainers) &&
		a.PURL == b.PURL &&
		a.Dir == b.Dir
}

func appendUniquePerson(list []Person, p Person) []Person {
	if p.IsZero() || slices.Contains(list, p) {
		return list
	}
	return append(list, p)
}
