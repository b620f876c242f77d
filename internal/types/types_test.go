package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDependency_RejectsEmptyName(t *testing.T) {
	_, err := NewDependency(Dependency{Name: "  ", Version: "1.0.0"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyName))
}

func TestNewDependency_DetachesSlices(t *testing.T) {
	licenses := []string{"MIT"}
	d, err := NewDependency(Dependency{Name: "lodash", Version: " 4.17.21 ", Licenses: licenses})
	require.NoError(t, err)
	licenses[0] = "GPL-3.0"
	assert.Equal(t, []string{"MIT"}, d.Licenses)
	assert.Equal(t, "4.17.21", d.Version)
	assert.Equal(t, "lodash@4.17.21", d.Key())
}

func TestPersonString(t *testing.T) {
	tests := []struct {
		name string
		p    Person
		want string
	}{
		{"full", Person{Name: "Jane", Email: "jane@example.com", URL: "https://jane.dev"}, "Jane <jane@example.com> (https://jane.dev)"},
		{"name only", Person{Name: "Jane"}, "Jane"},
		{"email only", Person{Email: "jane@example.com"}, "<jane@example.com>"},
		{"empty", Person{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.String())
		})
	}
}

func TestMerge_UnionOfDisjointFields(t *testing.T) {
	a := Dependency{Name: "pkg", Version: "1.0.0", Licenses: []string{"MIT"}, Author: "Jane"}
	b := Dependency{Name: "pkg", Version: "1.0.0", Repository: "https://github.com/acme/pkg", LicenseText: "MIT License"}

	got, conflicts := Merge(a, b)
	assert.Empty(t, conflicts)
	assert.Equal(t, []string{"MIT"}, got.Licenses)
	assert.Equal(t, "Jane", got.Author)
	assert.Equal(t, "https://github.com/acme/pkg", got.Repository)
	assert.Equal(t, "MIT License", got.LicenseText)
}

func TestMerge_FirstNonEmptyWinsOnConflict(t *testing.T) {
	a := Dependency{Name: "pkg", Licenses: []string{"MIT"}, Author: "Jane"}
	b := Dependency{Name: "pkg", Licenses: []string{"ISC"}, Author: "John"}

	got, conflicts := Merge(a, b)
	assert.Equal(t, []string{"MIT"}, got.Licenses)
	assert.Equal(t, "Jane", got.Author)
	assert.ElementsMatch(t, []string{"licenses", "author"}, conflicts)
}

func TestMerge_NeverBlanksKnownFields(t *testing.T) {
	a := Dependency{Name: "pkg", Licenses: []string{"MIT"}, Description: "a thing", Private: true}
	got, conflicts := Merge(a, Dependency{Name: "pkg"})
	assert.Empty(t, conflicts)
	assert.True(t, Equal(a, got))
}

func TestMerge_PeopleAppendUnique(t *testing.T) {
	jane := Person{Name: "Jane"}
	john := Person{Name: "John"}
	a := Dependency{Name: "pkg", Contributors: []Person{jane}}
	b := Dependency{Name: "pkg", Contributors: []Person{jane, john, {}}}

	got, _ := Merge(a, b)
	assert.Equal(t, []Person{jane, john}, got.Contributors)
	assert.Equal(t, []Person{jane}, a.Contributors, "input must not be mutated")
}

func TestLicense_JoinsAlternatives(t *testing.T) {
	assert.Equal(t, "MIT OR Apache-2.0", Dependency{Licenses: []string{"MIT", "Apache-2.0"}}.License())
	assert.Equal(t, "", Dependency{}.License())
}
